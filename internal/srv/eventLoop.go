package srv

import (
	"context"
	"fmt"
	"time"

	"github.com/jypelle/sbox/internal/srv/event"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/sirupsen/logrus"
)

const eventTimeout = 30 * time.Second

func (s *ServerApp) eventLoop() {
	for loop := true; loop; {
		select {
		case ev := <-s.sessionEventChannel:
			s.handleSessionEvent(ev)
		case ev := <-s.apiEventChannel:
			ev.Result <- s.handleApiEvent(ev)
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}

func (s *ServerApp) handleSessionEvent(ev event.SessionEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch data := ev.Data.(type) {
	case event.SessionEventReadyData:
		logrus.Infof("Receive session ready event for %s", data.User)
		if err := s.jukebox.Open(ctx); err != nil {
			logrus.Errorf("Unable to open playlist: %v", err)
			return
		}
		if err := s.jukebox.Advance(ctx, queue.Next); err != nil {
			logrus.Errorf("Unable to start playback: %v", err)
		}
	case event.SessionEventTrackFinishedData:
		logrus.Infof("Receive track finished event for %s", data.TrackKey)
		if err := s.jukebox.Advance(ctx, queue.Next); err != nil {
			logrus.Errorf("Unable to play next track: %v", err)
		}
	}
}

func (s *ServerApp) handleApiEvent(ev event.ApiEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), eventTimeout)
	defer cancel()

	switch data := ev.Data.(type) {
	case event.ApiEventControlData:
		logrus.Debugf("Receive api control event %s", data.Action)
		switch data.Action {
		case event.ControlPause:
			return s.jukebox.TogglePause(ctx)
		case event.ControlNext:
			return s.jukebox.Advance(ctx, queue.Next)
		case event.ControlPrev:
			return s.jukebox.Advance(ctx, queue.Prev)
		}
		return fmt.Errorf("unknown control action %q", data.Action)
	}
	return fmt.Errorf("unexpected api event %T", ev.Data)
}
