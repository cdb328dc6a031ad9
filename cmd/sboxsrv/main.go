package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jypelle/sbox/internal/srv"
	"github.com/jypelle/sbox/internal/version"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

const configSuffix = "sbox"

func main() {

	// Logger
	configureLogger(false)

	// User config dir
	defaultConfigDir := "./." + configSuffix
	userConfigDir, err := os.UserConfigDir()
	if err == nil {
		defaultConfigDir = filepath.Join(userConfigDir, configSuffix)
	}

	app := &cli.Command{
		Name:    filepath.Base(os.Args[0]),
		Usage:   "A shared Spotify jukebox",
		Version: version.AppVersion.String(),
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug mode",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Location of sbox config folder",
				Value:   defaultConfigDir,
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run server",
				Action: runAction,
			},
			{
				Name:  "version",
				Usage: "Show the version number",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					fmt.Printf("sbox server version %s\n", version.AppVersion.String())
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logrus.Fatalf("%v", err)
	}
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	debugMode := cmd.Bool("debug")
	if debugMode {
		configureLogger(true)
		logrus.Printf("Debug mode activated")
	}

	serverApp, err := srv.NewServerApp(cmd.String("config"), debugMode)
	if err != nil {
		logrus.Fatalf("Unable to load sbox config: %v", err)
	}
	serverApp.Start()

	// Wait for a termination signal
	signalCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-signalCtx.Done()

	serverApp.Stop()
	return nil
}

func configureLogger(debugMode bool) {
	if !debugMode {
		logrus.SetLevel(logrus.InfoLevel)
		logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true})
		return
	}
	logrus.SetLevel(logrus.DebugLevel)
	logrus.SetFormatter(&logrus.TextFormatter{ForceColors: true, FullTimestamp: true, TimestampFormat: time.RFC3339Nano})
}
