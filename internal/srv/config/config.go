package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const paramFilename = "param.yaml"
const stateFilename = "state.yaml"
const tokenFilename = "token.json"

type ServerConfig struct {
	ConfigDir string
	DebugMode bool

	*ServerParam
	*ServerState
}

func NewServerConfig(configDir string, debugMode bool) (*ServerConfig, error) {
	serverConfig := &ServerConfig{
		ConfigDir: configDir,
		DebugMode: debugMode,
	}

	// Check configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("unable to access config folder %s: %w", configDir, err)
		}
		logrus.Printf("Creation of config folder: %s", configDir)
		if err = os.MkdirAll(configDir, 0770); err != nil {
			return nil, fmt.Errorf("unable to create config folder: %w", err)
		}
	}

	// Open param file
	serverConfig.ServerParam = &ServerParam{}
	rawParam, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		if err = yaml.Unmarshal(rawParam, serverConfig.ServerParam); err != nil {
			return nil, fmt.Errorf("unable to interpret param file: %w", err)
		}
	} else {
		logrus.Infof("Create default param file")
		if err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam); err != nil {
			return nil, fmt.Errorf("unable to interpret default param file: %w", err)
		}
		if err = serverConfig.SaveParam(); err != nil {
			return nil, err
		}
	}
	serverConfig.ServerParam.applyDefaults()
	if err = serverConfig.ServerParam.validate(); err != nil {
		return nil, fmt.Errorf("invalid param file %s: %w", serverConfig.GetCompleteParamFilename(), err)
	}

	// Open state file
	serverConfig.ServerState, err = NewServerState(serverConfig.GetCompleteStateFilename())
	if err != nil {
		return nil, err
	}

	return serverConfig, nil
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) GetCompleteStateFilename() string {
	return filepath.Join(sc.ConfigDir, stateFilename)
}

func (sc *ServerConfig) GetCompleteTokenFilename() string {
	return filepath.Join(sc.ConfigDir, tokenFilename)
}

func (sc *ServerConfig) GetCompleteLedgerFilename() string {
	if filepath.IsAbs(sc.LedgerParam.Path) {
		return sc.LedgerParam.Path
	}
	return filepath.Join(sc.ConfigDir, sc.LedgerParam.Path)
}

func (sc *ServerConfig) GetCompleteKeyFilename() string {
	return filepath.Join(sc.ConfigDir, "key.pem")
}

func (sc *ServerConfig) GetCompleteCertFilename() string {
	return filepath.Join(sc.ConfigDir, "cert.pem")
}

func (sc *ServerConfig) SaveParam() error {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawParam, err := yaml.Marshal(sc.ServerParam)
	if err != nil {
		return fmt.Errorf("unable to serialize param file: %w", err)
	}
	if err = renameio.WriteFile(sc.GetCompleteParamFilename(), rawParam, 0660); err != nil {
		return fmt.Errorf("unable to save param file: %w", err)
	}
	return nil
}
