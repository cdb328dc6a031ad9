package queue

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/jypelle/sbox/apimodel"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// PlaylistId pins the playlist. When empty the id kept in the state is used, and a new
	// playlist named PlaylistName is created if there is none.
	PlaylistId   string
	PlaylistName string
	// EnforceFairness turns a rejected evaluation into a deferred submission.
	// Otherwise the rejection is only logged and the track is appended.
	EnforceFairness bool
	// FollowCursor moves the base offset along with the playback cursor
	FollowCursor bool
}

// AddResult reports an admission. A deferred submission is not an error.
type AddResult struct {
	Admitted bool
	Track    apimodel.Track
	Rotation int
}

type Listing struct {
	Tracks     []apimodel.Track
	UserTracks []apimodel.Track
}

// Queue keeps the contributor ledger aligned with the external playlist and drives the player.
// Ledger, playlist tracks, base offset and cursor change together under one lock, held across
// the calls to the music service and the persistence of the result.
type Queue struct {
	lock sync.Mutex

	store       Store
	player      Player
	ledgerStore LedgerStore
	state       StateStore
	options     Options

	opened     bool
	playlistId string
	tracks     []apimodel.Track
	ledger     []string
}

func NewQueue(store Store, player Player, ledgerStore LedgerStore, state StateStore, options Options) *Queue {
	return &Queue{
		store:       store,
		player:      player,
		ledgerStore: ledgerStore,
		state:       state,
		options:     options,
	}
}

// Open binds the playlist, creating it when needed, and brings the ledger and positions back in line with it
func (q *Queue) Open(ctx context.Context) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	playlistId := q.options.PlaylistId
	if playlistId == "" {
		playlistId = q.state.PlaylistId()
	}
	if playlistId == "" {
		createdId, err := q.store.Create(ctx, q.options.PlaylistName)
		if err != nil {
			return unavailable("create playlist", err)
		}
		logrus.Infof("Playlist %q created with id %s", q.options.PlaylistName, createdId)
		if err = q.state.SetPlaylistId(createdId); err != nil {
			return err
		}
		playlistId = createdId
	}

	playlist, err := q.store.Load(ctx, playlistId)
	if err != nil {
		return unavailable("load playlist", err)
	}
	if q.options.PlaylistName != "" && playlist.Name != q.options.PlaylistName {
		logrus.Warnf("Playlist %s is named %q instead of %q", playlistId, playlist.Name, q.options.PlaylistName)
	}

	ledger, err := q.ledgerStore.Load()
	if err != nil {
		return err
	}

	q.playlistId = playlistId
	q.tracks = playlist.Tracks
	q.ledger = ledger
	if err = q.align(); err != nil {
		return err
	}
	q.opened = true

	logrus.Infof("Playlist %q bound: %d tracks, base offset %d, cursor %d",
		playlist.Name, len(q.tracks), q.state.BaseOffset(), q.state.Cursor())
	return nil
}

func (q *Queue) IsOpen() bool {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.opened
}

// Add appends trackKey on behalf of contributorId when the fairness policy lets them
func (q *Queue) Add(ctx context.Context, trackKey string, contributorId string) (AddResult, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if err := q.refresh(ctx); err != nil {
		return AddResult{}, err
	}
	trackKey, err := q.store.CanonicalKey(trackKey)
	if err != nil {
		return AddResult{}, err
	}

	admission := EvaluateAdmission(q.ledger[q.state.BaseOffset():], contributorId)
	if !admission.Admitted {
		if q.options.EnforceFairness {
			logrus.Infof("Submission of %s by %s deferred until the next rotation", trackKey, contributorId)
			return AddResult{Admitted: false, Rotation: admission.Rotation}, nil
		}
		logrus.Warnf("Submission of %s by %s breaks the rotation, appended anyway", trackKey, contributorId)
	}

	track, err := q.store.Append(ctx, q.playlistId, trackKey)
	if err != nil {
		if errors.Is(err, ErrUnknownKey) {
			return AddResult{}, err
		}
		return AddResult{}, unavailable("append track", err)
	}

	q.tracks = append(q.tracks, track)
	q.ledger = append(q.ledger, contributorId)
	if err = q.ledgerStore.Save(q.ledger); err != nil {
		logrus.Errorf("Unable to persist contributor ledger: %v", err)
	}

	logrus.Infof("Track %s added by %s at position %d", track.Key, contributorId, len(q.tracks)-1)
	return AddResult{Admitted: true, Track: track, Rotation: admission.Rotation}, nil
}

// Remove drops the first track of the whole queue matching both trackKey and contributorId
func (q *Queue) Remove(ctx context.Context, trackKey string, contributorId string) (apimodel.Track, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if err := q.refresh(ctx); err != nil {
		return apimodel.Track{}, err
	}
	trackKey, err := q.store.CanonicalKey(trackKey)
	if err != nil {
		return apimodel.Track{}, ErrTrackNotFound
	}

	index := -1
	for i := range q.tracks {
		if q.tracks[i].Key == trackKey && q.ledger[i] == contributorId {
			index = i
			break
		}
	}
	if index < 0 {
		return apimodel.Track{}, ErrTrackNotFound
	}

	if err = q.store.RemoveAt(ctx, q.playlistId, index); err != nil {
		return apimodel.Track{}, unavailable("remove track", err)
	}

	removed := q.tracks[index]
	q.tracks = slices.Delete(q.tracks, index, index+1)
	q.ledger = slices.Delete(q.ledger, index, index+1)
	if err := q.ledgerStore.Save(q.ledger); err != nil {
		logrus.Errorf("Unable to persist contributor ledger: %v", err)
	}
	if err := q.shiftPositions(index); err != nil {
		logrus.Errorf("Unable to persist queue positions: %v", err)
	}

	logrus.Infof("Track %s of %s removed from position %d", removed.Key, contributorId, index)
	return removed, nil
}

// List returns the active window and, when contributorId is set, the part of it they added
func (q *Queue) List(ctx context.Context, contributorId string) (Listing, error) {
	q.lock.Lock()
	defer q.lock.Unlock()

	if !q.opened {
		return Listing{}, ErrNotOpen
	}

	baseOffset := q.state.BaseOffset()
	tracks, err := q.store.TracksFrom(ctx, q.playlistId, baseOffset)
	if err != nil {
		return Listing{}, unavailable("list tracks", err)
	}

	listing := Listing{Tracks: tracks}
	if contributorId != "" {
		listing.UserTracks = []apimodel.Track{}
		for i := range tracks {
			position := baseOffset + i
			if position < len(q.ledger) && q.ledger[position] == contributorId {
				listing.UserTracks = append(listing.UserTracks, tracks[i])
			}
		}
	}
	return listing, nil
}

func (q *Queue) ActiveTracks(ctx context.Context) ([]apimodel.Track, error) {
	listing, err := q.List(ctx, "")
	return listing.Tracks, err
}

func (q *Queue) ContributorTracks(ctx context.Context, contributorId string) ([]apimodel.Track, error) {
	listing, err := q.List(ctx, contributorId)
	return listing.UserTracks, err
}

// Advance moves the cursor one track in direction and plays the track under it.
// It does nothing on an empty queue.
func (q *Queue) Advance(ctx context.Context, direction Direction) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if err := q.refresh(ctx); err != nil {
		return err
	}
	return q.advance(ctx, direction)
}

// TogglePause pauses a playing track, resumes a paused one, and starts the next track otherwise
func (q *Queue) TogglePause(ctx context.Context) error {
	q.lock.Lock()
	defer q.lock.Unlock()

	if !q.opened {
		return ErrNotOpen
	}

	playerState, err := q.player.State(ctx)
	if err != nil {
		return unavailable("player state", err)
	}

	switch playerState {
	case PlayerPlaying:
		if err = q.player.Pause(ctx); err != nil {
			return unavailable("pause", err)
		}
		logrus.Infof("Playback paused")
	case PlayerPaused:
		if err = q.player.Play(ctx); err != nil {
			return unavailable("resume", err)
		}
		logrus.Infof("Playback resumed")
	default:
		if err = q.refresh(ctx); err != nil {
			return err
		}
		return q.advance(ctx, Next)
	}
	return nil
}

// Cursor returns the position of the track last asked to play
func (q *Queue) Cursor() int {
	return q.state.Cursor()
}

func (q *Queue) BaseOffset() int {
	return q.state.BaseOffset()
}

func (q *Queue) advance(ctx context.Context, direction Direction) error {
	if len(q.tracks) == 0 {
		logrus.Debugf("Empty queue, nothing to play")
		return nil
	}

	cursor := step(q.state.Cursor(), direction, len(q.tracks))
	track := q.tracks[cursor]

	if err := q.player.Load(ctx, track.Key); err != nil {
		return unavailable("load track", err)
	}
	if err := q.player.Play(ctx); err != nil {
		return unavailable("play track", err)
	}

	if err := q.state.SetCursor(cursor); err != nil {
		return err
	}
	if q.options.FollowCursor {
		if err := q.state.SetBaseOffset(cursor); err != nil {
			return err
		}
	}

	logrus.Infof("Playing %q (%s) at position %d", track.Name, direction, cursor)
	return nil
}

// refresh reloads the playlist before a mutation and heals any drift against the ledger
func (q *Queue) refresh(ctx context.Context) error {
	if !q.opened {
		return ErrNotOpen
	}

	playlist, err := q.store.Load(ctx, q.playlistId)
	if err != nil {
		return unavailable("load playlist", err)
	}
	q.tracks = playlist.Tracks
	return q.align()
}

// align restores the ledger length and the validity of the base offset and cursor
func (q *Queue) align() error {
	ledger, err := Reconcile(q.ledgerStore, len(q.tracks), q.ledger)
	q.ledger = ledger
	if err != nil {
		return err
	}

	if _, err = validatePosition("Base offset", q.state.BaseOffset(), len(q.tracks), q.state.SetBaseOffset); err != nil {
		return err
	}
	if _, err = validatePosition("Cursor", q.state.Cursor(), len(q.tracks), q.state.SetCursor); err != nil {
		return err
	}
	return nil
}

func (q *Queue) shiftPositions(index int) error {
	if err := q.state.SetBaseOffset(shiftAfterRemoval(q.state.BaseOffset(), index, len(q.tracks))); err != nil {
		return err
	}
	if err := q.state.SetCursor(shiftAfterRemoval(q.state.Cursor(), index, len(q.tracks))); err != nil {
		return err
	}
	return nil
}
