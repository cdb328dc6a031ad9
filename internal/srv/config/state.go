package config

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerState is the runtime part of the configuration, written through on every change
type ServerState struct {
	serverStateConfig     ServerStateConfig
	lock                  sync.RWMutex
	completeStateFilename string
}

type ServerStateConfig struct {
	PlaylistId string `yaml:"playlist_id"`
	BaseOffset int    `yaml:"base_offset"`
	Cursor     int    `yaml:"cursor"`
}

func NewServerState(completeStateFilename string) (*ServerState, error) {
	serverState := &ServerState{
		completeStateFilename: completeStateFilename,
	}

	rawState, err := os.ReadFile(completeStateFilename)
	if err == nil {
		if err = yaml.Unmarshal(rawState, &serverState.serverStateConfig); err != nil {
			return nil, fmt.Errorf("unable to interpret state file: %w", err)
		}
		return serverState, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("unable to read state file: %w", err)
	}

	logrus.Infof("Create default state file")
	serverState.lock.Lock()
	defer serverState.lock.Unlock()
	if err = serverState.save(); err != nil {
		return nil, err
	}
	return serverState, nil
}

func (ss *ServerState) PlaylistId() string {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.PlaylistId
}

func (ss *ServerState) SetPlaylistId(playlistId string) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	ss.serverStateConfig.PlaylistId = playlistId
	return ss.save()
}

func (ss *ServerState) BaseOffset() int {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.BaseOffset
}

func (ss *ServerState) SetBaseOffset(baseOffset int) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.serverStateConfig.BaseOffset == baseOffset {
		return nil
	}
	ss.serverStateConfig.BaseOffset = baseOffset
	return ss.save()
}

func (ss *ServerState) Cursor() int {
	ss.lock.RLock()
	defer ss.lock.RUnlock()

	return ss.serverStateConfig.Cursor
}

func (ss *ServerState) SetCursor(cursor int) error {
	ss.lock.Lock()
	defer ss.lock.Unlock()

	if ss.serverStateConfig.Cursor == cursor {
		return nil
	}
	ss.serverStateConfig.Cursor = cursor
	return ss.save()
}

func (ss *ServerState) save() error {
	logrus.Debugf("Save state file: %s", ss.completeStateFilename)
	rawState, err := yaml.Marshal(&ss.serverStateConfig)
	if err != nil {
		return fmt.Errorf("unable to serialize state file: %w", err)
	}
	if err = renameio.WriteFile(ss.completeStateFilename, rawState, 0660); err != nil {
		return fmt.Errorf("unable to save state file: %w", err)
	}
	return nil
}
