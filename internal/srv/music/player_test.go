package music

import (
	"testing"
	"time"

	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/stretchr/testify/assert"
)

func TestTrackEnded(t *testing.T) {
	const watched = "spotify:track:a"
	interval := time.Second
	playing := playbackSnapshot{Key: watched, Playing: true, Progress: 100 * time.Second, Duration: 200 * time.Second}
	nearEnd := playbackSnapshot{Key: watched, Playing: true, Progress: 199 * time.Second, Duration: 200 * time.Second}

	tests := []struct {
		name     string
		previous playbackSnapshot
		current  playbackSnapshot
		ended    bool
	}{
		{name: "first poll", previous: playbackSnapshot{}, current: playing, ended: false},
		{name: "still playing", previous: playing, current: nearEnd, ended: false},
		{name: "moved to another track", previous: nearEnd, current: playbackSnapshot{Key: "spotify:track:b", Playing: true}, ended: true},
		{name: "nothing left to play", previous: nearEnd, current: playbackSnapshot{}, ended: true},
		{name: "stopped and rewound", previous: nearEnd, current: playbackSnapshot{Key: watched}, ended: true},
		{name: "stopped at the end", previous: nearEnd, current: playbackSnapshot{Key: watched, Progress: 200 * time.Second}, ended: true},
		{name: "paused midway", previous: playing, current: playbackSnapshot{Key: watched, Progress: 101 * time.Second}, ended: false},
		{name: "already paused", previous: playbackSnapshot{Key: watched, Progress: 10 * time.Second}, current: playbackSnapshot{}, ended: false},
		{name: "other track before", previous: playbackSnapshot{Key: "spotify:track:b", Playing: true}, current: playbackSnapshot{}, ended: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ended, trackEnded(tt.previous, tt.current, watched, interval))
		})
	}
}

func TestPlayerState(t *testing.T) {
	assert.Equal(t, queue.PlayerIdle, playerState(playbackSnapshot{}, false))
	assert.Equal(t, queue.PlayerLoaded, playerState(playbackSnapshot{}, true))
	assert.Equal(t, queue.PlayerPlaying, playerState(playbackSnapshot{Key: "k", Playing: true}, true))
	assert.Equal(t, queue.PlayerPaused, playerState(playbackSnapshot{Key: "k", Progress: time.Second}, false))
	assert.Equal(t, queue.PlayerLoaded, playerState(playbackSnapshot{Key: "k"}, false))
}
