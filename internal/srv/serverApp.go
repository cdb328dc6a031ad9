package srv

import (
	"context"
	"fmt"

	"github.com/jypelle/sbox/internal/srv/config"
	"github.com/jypelle/sbox/internal/srv/device"
	"github.com/jypelle/sbox/internal/srv/event"
	"github.com/jypelle/sbox/internal/srv/music"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/jypelle/sbox/internal/version"
	"github.com/sirupsen/logrus"
)

// jukebox is what the event loop drives on the shared queue
type jukebox interface {
	Open(ctx context.Context) error
	Advance(ctx context.Context, direction queue.Direction) error
	TogglePause(ctx context.Context) error
}

type ServerApp struct {
	*config.ServerConfig
	session         *music.Session
	playerDevice    *music.Player
	apiDevice       *device.Api
	announcerDevice *device.Announcer
	ledgerStore     queue.LedgerStore
	jukebox         jukebox

	sessionEventChannel chan event.SessionEvent
	apiEventChannel     chan event.ApiEvent

	eventLoopAskDone chan bool
	eventLoopDone    chan bool
}

func NewServerApp(configDir string, debugMode bool) (*ServerApp, error) {

	logrus.Debugf("Creation of sbox server %s ...", version.AppVersion.String())

	serverConfig, err := config.NewServerConfig(configDir, debugMode)
	if err != nil {
		return nil, err
	}

	app := &ServerApp{
		ServerConfig:     serverConfig,
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
	}

	app.ledgerStore, err = newLedgerStore(serverConfig)
	if err != nil {
		return nil, err
	}

	app.session = music.NewSession(app.SpotifyParam, app.GetCompleteTokenFilename())
	app.playerDevice = music.NewPlayer(app.session, app.SpotifyParam.DeviceId, app.SpotifyParam.GetPollInterval())
	q := queue.NewQueue(
		music.NewPlaylistStore(app.session),
		app.playerDevice,
		app.ledgerStore,
		app.ServerState,
		queue.Options{
			PlaylistId:      app.PlaylistParam.Id,
			PlaylistName:    app.PlaylistParam.Name,
			EnforceFairness: app.QueueParam.EnforceFairness,
			FollowCursor:    app.QueueParam.FollowCursor,
		},
	)
	app.jukebox = q
	app.apiDevice = device.NewApi(app.ServerConfig, q, music.NewCatalog(app.session), app.session)
	app.announcerDevice = device.NewAnnouncer(app.AnnounceParam, app.ApiParam.Port)

	app.sessionEventChannel = app.session.EventChannel()
	app.apiEventChannel = app.apiDevice.EventChannel()

	logrus.Debugln("Server created")

	return app, nil
}

func newLedgerStore(serverConfig *config.ServerConfig) (queue.LedgerStore, error) {
	filename := serverConfig.GetCompleteLedgerFilename()
	switch serverConfig.LedgerParam.Backend {
	case config.LedgerBackendSqlite:
		ledgerStore, err := queue.NewSQLiteLedger(filename)
		if err != nil {
			return nil, fmt.Errorf("unable to open ledger %s: %w", filename, err)
		}
		return ledgerStore, nil
	default:
		return queue.NewFileLedger(filename), nil
	}
}

func (s *ServerApp) Start() {
	logrus.Printf("Starting sbox server ...")

	// Start event loop
	go s.eventLoop()

	logrus.Printf("Starting devices ...")

	// Start spotify session, the event loop opens the queue once it is logged in
	s.session.Start(context.Background())

	// Start player watcher
	s.playerDevice.Start()

	// Start api device
	s.apiDevice.Start()

	// Start announcer
	if err := s.announcerDevice.Start(); err != nil {
		logrus.Warnf("Service announcement disabled: %v", err)
	}
}

func (s *ServerApp) Stop() {
	logrus.Printf("Stopping sbox server ...")

	// Stop api
	s.apiDevice.StopSendingEvent()

	// Stop announcer
	s.announcerDevice.Stop()

	// Stop spotify session events
	s.session.StopSendingEvent()

	// Stop event loop
	logrus.Infof("Stop event loop")
	s.eventLoopAskDone <- true
	<-s.eventLoopDone

	// Stop player watcher
	s.playerDevice.Stop()

	// Close ledger
	if err := s.ledgerStore.Close(); err != nil {
		logrus.Warnf("Unable to close ledger: %v", err)
	}

	logrus.Printf("Server stopped")
}
