package queue

import (
	"context"

	"github.com/jypelle/sbox/apimodel"
)

// Playlist is an external ordered track list as loaded from a Store
type Playlist struct {
	Id     string
	Name   string
	Tracks []apimodel.Track
}

// Store is the externally hosted playlist the queue is mirrored into.
// Positions are zero based and refer to the whole playlist.
type Store interface {
	Load(ctx context.Context, playlistId string) (*Playlist, error)
	// CanonicalKey returns the form under which trackKey appears in a loaded playlist
	CanonicalKey(trackKey string) (string, error)
	Create(ctx context.Context, name string) (string, error)
	Append(ctx context.Context, playlistId string, trackKey string) (apimodel.Track, error)
	RemoveAt(ctx context.Context, playlistId string, index int) error
	TracksFrom(ctx context.Context, playlistId string, index int) ([]apimodel.Track, error)
}

type PlayerState int

const (
	PlayerIdle PlayerState = iota
	PlayerLoaded
	PlayerPlaying
	PlayerPaused
)

func (s PlayerState) String() string {
	switch s {
	case PlayerLoaded:
		return "loaded"
	case PlayerPlaying:
		return "playing"
	case PlayerPaused:
		return "paused"
	default:
		return "idle"
	}
}

// Player plays one track at a time
type Player interface {
	Load(ctx context.Context, trackKey string) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	State(ctx context.Context) (PlayerState, error)
}

// StateStore persists the queue positions and the bound playlist id
type StateStore interface {
	PlaylistId() string
	SetPlaylistId(playlistId string) error
	BaseOffset() int
	SetBaseOffset(baseOffset int) error
	Cursor() int
	SetCursor(cursor int) error
}
