package event

// Session
type SessionEvent struct {
	Data interface{}
}

// SessionEventReadyData is sent once the music session is logged in
type SessionEventReadyData struct {
	User string
}

// SessionEventTrackFinishedData is sent when the track started by the queue has ended
type SessionEventTrackFinishedData struct {
	TrackKey string
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ControlAction string

const (
	ControlPause ControlAction = "pause"
	ControlNext  ControlAction = "next"
	ControlPrev  ControlAction = "prev"
)

func (a ControlAction) IsValid() bool {
	switch a {
	case ControlPause, ControlNext, ControlPrev:
		return true
	}
	return false
}

type ApiEventControlData struct {
	Action ControlAction
}
