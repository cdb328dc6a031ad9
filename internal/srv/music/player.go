package music

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jypelle/sbox/internal/srv/event"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
)

// Player drives the playback of the session user on a Spotify Connect device.
// A watcher polls the playback state and reports the end of every track it started.
type Player struct {
	lock     sync.Mutex
	session  *Session
	deviceId string
	interval time.Duration

	loadedKey  string
	watchedKey string
	last       playbackSnapshot

	askDone chan bool
	done    chan bool
}

// playbackSnapshot is what the watcher keeps of one poll
type playbackSnapshot struct {
	Key      string
	Playing  bool
	Progress time.Duration
	Duration time.Duration
}

func NewPlayer(session *Session, deviceId string, interval time.Duration) *Player {
	return &Player{
		session:  session,
		deviceId: deviceId,
		interval: interval,
		askDone:  make(chan bool),
		done:     make(chan bool),
	}
}

func (p *Player) Start() {
	logrus.Infof("Start spotify player watcher")
	go p.watch()
}

func (p *Player) Stop() {
	logrus.Infof("Stop spotify player watcher")
	p.askDone <- true
	<-p.done
}

// Load selects the track started by the next Play
func (p *Player) Load(_ context.Context, trackKey string) error {
	trackId, err := parseKey(trackKey, "track")
	if err != nil {
		return err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	p.loadedKey = trackURI(trackId)
	return nil
}

// Play starts the loaded track, or resumes the current one when nothing is loaded
func (p *Player) Play(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	opt := p.playOptions()
	if p.loadedKey != "" {
		opt.URIs = []spotify.URI{spotify.URI(p.loadedKey)}
	}
	err := p.session.call(ctx, func(ctx context.Context, client *spotify.Client) error {
		return client.PlayOpt(ctx, opt)
	})
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}

	if p.loadedKey != "" {
		p.watchedKey = p.loadedKey
		p.last = playbackSnapshot{}
		p.loadedKey = ""
	}
	return nil
}

func (p *Player) Pause(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()

	err := p.session.call(ctx, func(ctx context.Context, client *spotify.Client) error {
		return client.PauseOpt(ctx, p.playOptions())
	})
	if err != nil {
		return fmt.Errorf("pause: %w", err)
	}
	return nil
}

func (p *Player) State(ctx context.Context) (queue.PlayerState, error) {
	snapshot, err := p.snapshot(ctx)
	if err != nil {
		return queue.PlayerIdle, err
	}

	p.lock.Lock()
	defer p.lock.Unlock()
	return playerState(snapshot, p.loadedKey != ""), nil
}

func (p *Player) playOptions() *spotify.PlayOptions {
	opt := &spotify.PlayOptions{}
	if p.deviceId != "" {
		deviceId := spotify.ID(p.deviceId)
		opt.DeviceID = &deviceId
	}
	return opt
}

func (p *Player) snapshot(ctx context.Context) (playbackSnapshot, error) {
	var state *spotify.PlayerState
	err := p.session.call(ctx, func(ctx context.Context, client *spotify.Client) (err error) {
		state, err = client.PlayerState(ctx)
		return err
	})
	if err != nil {
		return playbackSnapshot{}, fmt.Errorf("player state: %w", err)
	}
	if state == nil || state.Item == nil {
		return playbackSnapshot{}, nil
	}
	return playbackSnapshot{
		Key:      string(state.Item.URI),
		Playing:  state.Playing,
		Progress: time.Duration(state.Progress) * time.Millisecond,
		Duration: time.Duration(state.Item.Duration) * time.Millisecond,
	}, nil
}

func (p *Player) watch() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for loop := true; loop; {
		select {
		case <-ticker.C:
			p.poll()
		case <-p.askDone:
			loop = false
		}
	}
	p.done <- true
}

func (p *Player) poll() {
	if !p.session.LoggedIn() {
		return
	}

	p.lock.Lock()
	watchedKey := p.watchedKey
	p.lock.Unlock()
	if watchedKey == "" {
		return
	}

	current, err := p.snapshot(context.Background())
	if err != nil {
		logrus.Debugf("Unable to poll playback state: %v", err)
		return
	}

	p.lock.Lock()
	defer p.lock.Unlock()

	// a Play may have happened while polling
	if p.watchedKey != watchedKey {
		return
	}
	previous := p.last
	p.last = current
	if trackEnded(previous, current, watchedKey, p.interval) {
		logrus.Debugf("Track %s finished", watchedKey)
		p.watchedKey = ""
		p.session.send(event.SessionEvent{Data: event.SessionEventTrackFinishedData{TrackKey: watchedKey}})
	}
}

// trackEnded tells from two consecutive polls if the watched track has run to its end:
// playback moved to another item, or stopped either rewound or within two polls of the end.
func trackEnded(previous playbackSnapshot, current playbackSnapshot, watchedKey string, interval time.Duration) bool {
	if previous.Key != watchedKey || !previous.Playing {
		return false
	}
	if current.Key != watchedKey {
		return true
	}
	if current.Playing {
		return false
	}
	return current.Progress == 0 || previous.Duration-previous.Progress <= 2*interval
}

func playerState(snapshot playbackSnapshot, loaded bool) queue.PlayerState {
	switch {
	case snapshot.Key != "" && snapshot.Playing:
		return queue.PlayerPlaying
	case loaded:
		return queue.PlayerLoaded
	case snapshot.Key != "" && snapshot.Progress > 0:
		return queue.PlayerPaused
	case snapshot.Key != "":
		return queue.PlayerLoaded
	default:
		return queue.PlayerIdle
	}
}
