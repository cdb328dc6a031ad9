package device

import (
	"testing"

	"github.com/jypelle/sbox/internal/srv/config"
	"github.com/jypelle/sbox/internal/version"
	"github.com/stretchr/testify/assert"
)

func TestAnnouncerTxtRecords(t *testing.T) {
	a := NewAnnouncer(config.AnnounceParam{Enabled: true, Name: "kitchen", Path: "/api", Proto: "https"}, 8443)

	assert.Equal(t, []string{
		"path=/api",
		"proto=https",
		"name=kitchen",
		"version=" + version.AppVersion.String(),
	}, a.txtRecords())
	assert.Equal(t, 8443, a.port)
}

func TestAnnouncerDisabled(t *testing.T) {
	a := NewAnnouncer(config.AnnounceParam{Enabled: false}, 8080)

	assert.NoError(t, a.Start())
	assert.Nil(t, a.server)
	a.Stop()
}
