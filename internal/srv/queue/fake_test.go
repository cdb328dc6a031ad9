package queue

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jypelle/sbox/apimodel"
)

type fakeStore struct {
	playlists map[string]*Playlist
	created   int
	err       error
}

func newFakeStore() *fakeStore {
	return &fakeStore{playlists: map[string]*Playlist{}}
}

func (s *fakeStore) put(playlistId string, name string, trackKeys ...string) {
	playlist := &Playlist{Id: playlistId, Name: name, Tracks: []apimodel.Track{}}
	for _, trackKey := range trackKeys {
		playlist.Tracks = append(playlist.Tracks, fakeTrack(trackKey))
	}
	s.playlists[playlistId] = playlist
}

func (s *fakeStore) keys(playlistId string) []string {
	return trackKeys(s.playlists[playlistId].Tracks)
}

func (s *fakeStore) Load(_ context.Context, playlistId string) (*Playlist, error) {
	if s.err != nil {
		return nil, s.err
	}
	playlist, ok := s.playlists[playlistId]
	if !ok {
		return nil, fmt.Errorf("no playlist %s", playlistId)
	}
	return &Playlist{Id: playlist.Id, Name: playlist.Name, Tracks: slices.Clone(playlist.Tracks)}, nil
}

// fakeLinkPrefix marks track links that the fake store stores under their bare key
const fakeLinkPrefix = "https://open.spotify.com/track/"

func (s *fakeStore) CanonicalKey(trackKey string) (string, error) {
	if strings.HasPrefix(trackKey, "bad:") {
		return "", ErrUnknownKey
	}
	return strings.TrimPrefix(trackKey, fakeLinkPrefix), nil
}

func (s *fakeStore) Create(_ context.Context, name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created++
	playlistId := fmt.Sprintf("created%d", s.created)
	s.put(playlistId, name)
	return playlistId, nil
}

func (s *fakeStore) Append(_ context.Context, playlistId string, trackKey string) (apimodel.Track, error) {
	if s.err != nil {
		return apimodel.Track{}, s.err
	}
	if strings.HasPrefix(trackKey, "bad:") {
		return apimodel.Track{}, ErrUnknownKey
	}
	track := fakeTrack(trackKey)
	s.playlists[playlistId].Tracks = append(s.playlists[playlistId].Tracks, track)
	return track, nil
}

func (s *fakeStore) RemoveAt(_ context.Context, playlistId string, index int) error {
	if s.err != nil {
		return s.err
	}
	playlist := s.playlists[playlistId]
	if index < 0 || index >= len(playlist.Tracks) {
		return fmt.Errorf("index %d out of range", index)
	}
	playlist.Tracks = slices.Delete(playlist.Tracks, index, index+1)
	return nil
}

func (s *fakeStore) TracksFrom(_ context.Context, playlistId string, index int) ([]apimodel.Track, error) {
	if s.err != nil {
		return nil, s.err
	}
	return slices.Clone(s.playlists[playlistId].Tracks[index:]), nil
}

type fakePlayer struct {
	state  PlayerState
	loads  []string
	pauses int
	err    error
}

func (p *fakePlayer) Load(_ context.Context, trackKey string) error {
	if p.err != nil {
		return p.err
	}
	p.loads = append(p.loads, trackKey)
	p.state = PlayerLoaded
	return nil
}

func (p *fakePlayer) Play(_ context.Context) error {
	if p.err != nil {
		return p.err
	}
	p.state = PlayerPlaying
	return nil
}

func (p *fakePlayer) Pause(_ context.Context) error {
	if p.err != nil {
		return p.err
	}
	p.pauses++
	p.state = PlayerPaused
	return nil
}

func (p *fakePlayer) State(_ context.Context) (PlayerState, error) {
	if p.err != nil {
		return PlayerIdle, p.err
	}
	return p.state, nil
}

type memLedger struct {
	entries []string
	saves   int
	err     error
}

func (l *memLedger) Load() ([]string, error) {
	return slices.Clone(l.entries), nil
}

func (l *memLedger) Save(ledger []string) error {
	if l.err != nil {
		return l.err
	}
	l.saves++
	l.entries = slices.Clone(ledger)
	return nil
}

func (l *memLedger) Close() error {
	return nil
}

type memState struct {
	playlistId string
	baseOffset int
	cursor     int
}

func (s *memState) PlaylistId() string { return s.playlistId }

func (s *memState) SetPlaylistId(playlistId string) error {
	s.playlistId = playlistId
	return nil
}

func (s *memState) BaseOffset() int { return s.baseOffset }

func (s *memState) SetBaseOffset(baseOffset int) error {
	s.baseOffset = baseOffset
	return nil
}

func (s *memState) Cursor() int { return s.cursor }

func (s *memState) SetCursor(cursor int) error {
	s.cursor = cursor
	return nil
}

var errBroken = errors.New("connection reset")

func fakeTrack(trackKey string) apimodel.Track {
	return apimodel.Track{Key: trackKey, Name: "name of " + trackKey}
}

func trackKeys(tracks []apimodel.Track) []string {
	keys := make([]string, 0, len(tracks))
	for _, track := range tracks {
		keys = append(keys, track.Key)
	}
	return keys
}
