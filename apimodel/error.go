package apimodel

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

type ErrorMessage struct {
	ErrStatusCode int    `json:"status_code"`
	ErrMessage    string `json:"message"`
}

func NewErrorMessage(status int, message string) *ErrorMessage {
	return &ErrorMessage{ErrStatusCode: status, ErrMessage: message}
}

func (e *ErrorMessage) StatusCode() int {
	return e.ErrStatusCode
}

func (e *ErrorMessage) Error() string {
	if e.ErrMessage != "" {
		return strconv.Itoa(e.ErrStatusCode) + ":" + e.ErrMessage
	}
	return strconv.Itoa(e.ErrStatusCode)
}

// SendError writes the message as a JSON body, filling in a default text for the status when empty
func (e ErrorMessage) SendError(w http.ResponseWriter) {
	if e.ErrMessage == "" {
		e.ErrMessage = defaultMessage(e.ErrStatusCode)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.ErrStatusCode)
	if err := json.NewEncoder(w).Encode(e); err != nil {
		logrus.Warnf("Unable to encode error message: %v", err)
	}
}

func defaultMessage(status int) string {
	switch status {
	case http.StatusOK:
		return "Ok"
	case http.StatusNotFound:
		return "Page not found"
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusServiceUnavailable:
		return "Service unavailable"
	case http.StatusBadRequest:
		return "Bad request"
	default:
		return "Internal error"
	}
}

// errors message
var (
	WrongParametersErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusBadRequest,
		ErrMessage:    "unable to parse parameters",
	}
	MissingKeyErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusBadRequest,
		ErrMessage:    "specify key in query",
	}
	MissingIdErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusBadRequest,
		ErrMessage:    "specify id in query",
	}
	MissingQueryErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusBadRequest,
		ErrMessage:    "specify q in query",
	}
	TrackNotFoundErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusNotFound,
		ErrMessage:    "track not found for user id",
	}
	UnknownTrackErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusBadRequest,
		ErrMessage:    "unknown track key",
	}
	SessionNotAvailableErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusServiceUnavailable,
		ErrMessage:    "spotify not available",
	}
	SessionNotLoggedInErrorMessage = ErrorMessage{
		ErrStatusCode: http.StatusServiceUnavailable,
		ErrMessage:    "spotify not logged in",
	}
)
