package srv

import (
	"context"
	"errors"
	"testing"

	"github.com/jypelle/sbox/internal/srv/event"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJukebox struct {
	openErr error
	calls   []string
}

func (j *fakeJukebox) Open(_ context.Context) error {
	j.calls = append(j.calls, "open")
	return j.openErr
}

func (j *fakeJukebox) Advance(_ context.Context, direction queue.Direction) error {
	if direction == queue.Prev {
		j.calls = append(j.calls, "prev")
	} else {
		j.calls = append(j.calls, "next")
	}
	return nil
}

func (j *fakeJukebox) TogglePause(_ context.Context) error {
	j.calls = append(j.calls, "pause")
	return nil
}

func newTestServerApp(j jukebox) *ServerApp {
	return &ServerApp{
		jukebox:             j,
		sessionEventChannel: make(chan event.SessionEvent),
		apiEventChannel:     make(chan event.ApiEvent),
		eventLoopAskDone:    make(chan bool),
		eventLoopDone:       make(chan bool),
	}
}

func TestSessionReadyOpensAndStarts(t *testing.T) {
	j := &fakeJukebox{}
	s := newTestServerApp(j)

	s.handleSessionEvent(event.SessionEvent{Data: event.SessionEventReadyData{User: "dj"}})
	assert.Equal(t, []string{"open", "next"}, j.calls)
}

func TestSessionReadyOpenFailure(t *testing.T) {
	j := &fakeJukebox{openErr: queue.ErrServiceUnavailable}
	s := newTestServerApp(j)

	s.handleSessionEvent(event.SessionEvent{Data: event.SessionEventReadyData{User: "dj"}})
	assert.Equal(t, []string{"open"}, j.calls)
}

func TestTrackFinishedAdvances(t *testing.T) {
	j := &fakeJukebox{}
	s := newTestServerApp(j)

	s.handleSessionEvent(event.SessionEvent{Data: event.SessionEventTrackFinishedData{TrackKey: "t1"}})
	assert.Equal(t, []string{"next"}, j.calls)
}

func TestApiControlEvents(t *testing.T) {
	j := &fakeJukebox{}
	s := newTestServerApp(j)

	for _, action := range []event.ControlAction{event.ControlPause, event.ControlNext, event.ControlPrev} {
		require.NoError(t, s.handleApiEvent(event.ApiEvent{Data: event.ApiEventControlData{Action: action}}))
	}
	assert.Equal(t, []string{"pause", "next", "prev"}, j.calls)

	assert.Error(t, s.handleApiEvent(event.ApiEvent{Data: event.ApiEventControlData{Action: "rewind"}}))
	assert.Error(t, s.handleApiEvent(event.ApiEvent{Data: "nothing"}))
}

func TestEventLoopSerializesEvents(t *testing.T) {
	j := &fakeJukebox{}
	s := newTestServerApp(j)
	go s.eventLoop()

	s.sessionEventChannel <- event.SessionEvent{Data: event.SessionEventTrackFinishedData{TrackKey: "t1"}}

	result := make(chan error, 1)
	s.apiEventChannel <- event.ApiEvent{Result: result, Data: event.ApiEventControlData{Action: event.ControlPause}}
	assert.NoError(t, <-result)

	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	assert.Equal(t, []string{"next", "pause"}, j.calls)
}

func TestEventLoopReportsErrors(t *testing.T) {
	s := newTestServerApp(&fakeJukebox{})
	go s.eventLoop()

	result := make(chan error, 1)
	s.apiEventChannel <- event.ApiEvent{Result: result, Data: event.ApiEventControlData{Action: "rewind"}}
	err := <-result
	assert.Error(t, err)
	assert.False(t, errors.Is(err, queue.ErrServiceUnavailable))

	s.eventLoopAskDone <- true
	<-s.eventLoopDone
}
