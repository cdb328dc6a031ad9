package device

import (
	"fmt"

	"github.com/hashicorp/mdns"
	"github.com/jypelle/sbox/internal/srv/config"
	"github.com/jypelle/sbox/internal/version"
	"github.com/sirupsen/logrus"
)

const announceService = "_http._tcp"

// Announcer publishes the api on the local network
type Announcer struct {
	param  config.AnnounceParam
	port   int
	server *mdns.Server
}

func NewAnnouncer(param config.AnnounceParam, port int64) *Announcer {
	return &Announcer{
		param: param,
		port:  int(port),
	}
}

func (a *Announcer) Start() error {
	if !a.param.Enabled {
		return nil
	}
	logrus.Infof("Start announcer %s.%s on port %d", a.param.Name, announceService, a.port)

	service, err := mdns.NewMDNSService(a.param.Name, announceService, "", "", a.port, nil, a.txtRecords())
	if err != nil {
		return fmt.Errorf("unable to describe mdns service: %w", err)
	}
	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return fmt.Errorf("unable to start mdns server: %w", err)
	}
	a.server = server
	return nil
}

func (a *Announcer) Stop() {
	if a.server == nil {
		return
	}
	logrus.Infof("Stop announcer")
	if err := a.server.Shutdown(); err != nil {
		logrus.Warnf("Unable to stop announcer: %v", err)
	}
	a.server = nil
}

func (a *Announcer) txtRecords() []string {
	return []string{
		"path=" + a.param.Path,
		"proto=" + a.param.Proto,
		"name=" + a.param.Name,
		"version=" + version.AppVersion.String(),
	}
}
