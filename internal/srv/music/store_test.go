package music

import (
	"testing"

	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlaylistStoreCanonicalKey(t *testing.T) {
	store := NewPlaylistStore(newTestSession(t))
	const uri = "spotify:track:4uLU6hMCjMI75M1A2tKUQC"

	for _, key := range []string{
		"4uLU6hMCjMI75M1A2tKUQC",
		" 4uLU6hMCjMI75M1A2tKUQC ",
		uri,
		"https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
		"https://open.spotify.com/intl-fr/track/4uLU6hMCjMI75M1A2tKUQC?si=abc",
	} {
		canonicalKey, err := store.CanonicalKey(key)
		require.NoError(t, err, key)
		assert.Equal(t, uri, canonicalKey, key)
	}

	for _, key := range []string{"", "spotify:album:4uLU6hMCjMI75M1A2tKUQC", "https://example.com/track/x"} {
		_, err := store.CanonicalKey(key)
		assert.ErrorIs(t, err, queue.ErrUnknownKey, key)
	}
}
