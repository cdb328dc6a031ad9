package music

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jypelle/sbox/apimodel"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/zmb3/spotify/v2"
)

const playlistPageSize = 100

// PlaylistStore mirrors the queue into a Spotify playlist of the session user
type PlaylistStore struct {
	session *Session
}

func NewPlaylistStore(session *Session) *PlaylistStore {
	return &PlaylistStore{session: session}
}

func (s *PlaylistStore) Load(ctx context.Context, playlistId string) (*queue.Playlist, error) {
	var fullPlaylist *spotify.FullPlaylist
	err := s.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		fullPlaylist, err = client.GetPlaylist(ctx, spotify.ID(playlistId))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("get playlist %s: %w", playlistId, err)
	}

	tracks, err := s.TracksFrom(ctx, playlistId, 0)
	if err != nil {
		return nil, err
	}

	return &queue.Playlist{
		Id:     string(fullPlaylist.ID),
		Name:   fullPlaylist.Name,
		Tracks: tracks,
	}, nil
}

func (s *PlaylistStore) Create(ctx context.Context, name string) (string, error) {
	var fullPlaylist *spotify.FullPlaylist
	err := s.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		fullPlaylist, err = client.CreatePlaylistForUser(ctx, s.session.UserId(), name, "Shared queue", false, false)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("create playlist %q: %w", name, err)
	}
	return string(fullPlaylist.ID), nil
}

func (s *PlaylistStore) CanonicalKey(trackKey string) (string, error) {
	trackId, err := parseKey(trackKey, "track")
	if err != nil {
		return "", fmt.Errorf("%w: %w", queue.ErrUnknownKey, err)
	}
	return trackURI(trackId), nil
}

func (s *PlaylistStore) Append(ctx context.Context, playlistId string, trackKey string) (apimodel.Track, error) {
	trackId, err := parseKey(trackKey, "track")
	if err != nil {
		return apimodel.Track{}, fmt.Errorf("%w: %w", queue.ErrUnknownKey, err)
	}

	var fullTrack *spotify.FullTrack
	err = s.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		fullTrack, err = client.GetTrack(ctx, trackId)
		return err
	})
	if err != nil {
		if isClientError(err) {
			return apimodel.Track{}, fmt.Errorf("%w: %s", queue.ErrUnknownKey, trackKey)
		}
		return apimodel.Track{}, fmt.Errorf("get track %s: %w", trackKey, err)
	}

	err = s.session.call(ctx, func(ctx context.Context, client *spotify.Client) error {
		_, err := client.AddTracksToPlaylist(ctx, spotify.ID(playlistId), trackId)
		return err
	})
	if err != nil {
		return apimodel.Track{}, fmt.Errorf("add track %s: %w", trackKey, err)
	}
	return projectTrack(fullTrack), nil
}

func (s *PlaylistStore) RemoveAt(ctx context.Context, playlistId string, index int) error {
	var page *spotify.PlaylistItemPage
	err := s.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		page, err = client.GetPlaylistItems(ctx, spotify.ID(playlistId), spotify.Limit(1), spotify.Offset(index))
		return err
	})
	if err != nil {
		return fmt.Errorf("get playlist item %d: %w", index, err)
	}
	if len(page.Items) == 0 || page.Items[0].Track.Track == nil {
		return fmt.Errorf("no track at position %d of playlist %s", index, playlistId)
	}

	toRemove := spotify.NewTrackToRemove(string(page.Items[0].Track.Track.ID), []int{index})
	err = s.session.call(ctx, func(ctx context.Context, client *spotify.Client) error {
		_, err := client.RemoveTracksFromPlaylistOpt(ctx, spotify.ID(playlistId), []spotify.TrackToRemove{toRemove}, "")
		return err
	})
	if err != nil {
		return fmt.Errorf("remove playlist item %d: %w", index, err)
	}
	return nil
}

func (s *PlaylistStore) TracksFrom(ctx context.Context, playlistId string, index int) ([]apimodel.Track, error) {
	tracks := []apimodel.Track{}
	for offset := index; ; offset += playlistPageSize {
		var page *spotify.PlaylistItemPage
		err := s.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
			page, err = client.GetPlaylistItems(ctx, spotify.ID(playlistId), spotify.Limit(playlistPageSize), spotify.Offset(offset))
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("get playlist items from %d: %w", offset, err)
		}

		for _, item := range page.Items {
			tracks = append(tracks, projectPlaylistItem(item))
		}
		if len(page.Items) < playlistPageSize {
			return tracks, nil
		}
	}
}

// isClientError reports a request the Web API refused as malformed or unknown
func isClientError(err error) bool {
	var apiErr spotify.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusNotFound
}
