package queue

import (
	"errors"
	"fmt"
)

var (
	// ErrServiceUnavailable reports a failed or timed out call to the music service
	ErrServiceUnavailable = errors.New("music service unavailable")
	// ErrNotOpen is returned until the playlist has been bound by Open
	ErrNotOpen = fmt.Errorf("%w: playlist not bound", ErrServiceUnavailable)
	// ErrTrackNotFound reports a removal matching no (track, contributor) pair
	ErrTrackNotFound = errors.New("track not found for user id")
	// ErrUnknownKey is returned when the catalog does not know a track, album or artist key
	ErrUnknownKey = errors.New("unknown catalog key")
)

func unavailable(operation string, err error) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("%s: %w", operation, err)
	}
	return fmt.Errorf("%s: %w: %w", operation, ErrServiceUnavailable, err)
}
