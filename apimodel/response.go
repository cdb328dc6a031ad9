package apimodel

type AddStatus string

const (
	AddStatusAdmitted AddStatus = "admitted"
	AddStatusDeferred AddStatus = "deferred"
)

type AddTrackResponse struct {
	Status  AddStatus `json:"status"`
	Track   *Track    `json:"track,omitempty"`
	Message string    `json:"message,omitempty"`
}

type RemoveTrackResponse struct {
	Track Track `json:"track"`
}

type PlaylistResponse struct {
	Tracks     []Track `json:"tracks"`
	UserTracks []Track `json:"user_tracks,omitempty"`
}

type LoginResponse struct {
	Admin bool `json:"admin"`
}

type ControlResponse struct {
	Control bool   `json:"control"`
	Action  string `json:"action,omitempty"`
}
