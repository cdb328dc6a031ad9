package apimodel

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrackRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		request TrackRequest
		message string
	}{
		{name: "complete", request: TrackRequest{Key: "spotify:track:1", Id: "alice"}},
		{name: "missing key", request: TrackRequest{Id: "alice"}, message: "specify key in query"},
		{name: "blank key", request: TrackRequest{Key: "  ", Id: "alice"}, message: "specify key in query"},
		{name: "missing id", request: TrackRequest{Key: "spotify:track:1"}, message: "specify id in query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errorMessage := tt.request.Validate()
			if tt.message == "" {
				assert.Nil(t, errorMessage)
				return
			}
			if assert.NotNil(t, errorMessage) {
				assert.Equal(t, http.StatusBadRequest, errorMessage.StatusCode())
				assert.Equal(t, tt.message, errorMessage.ErrMessage)
			}
		})
	}
}

func TestSearchRequestValidateTrimsQuery(t *testing.T) {
	request := SearchRequest{Query: "  daft punk "}
	assert.Nil(t, request.Validate())
	assert.Equal(t, "daft punk", request.Query)

	empty := SearchRequest{}
	assert.Equal(t, &MissingQueryErrorMessage, empty.Validate())
}

func TestErrorMessageError(t *testing.T) {
	assert.Equal(t, "404:track not found for user id", TrackNotFoundErrorMessage.Error())
	assert.Equal(t, "503", NewErrorMessage(http.StatusServiceUnavailable, "").Error())
}
