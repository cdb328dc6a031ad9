package config

import (
	_ "embed"
	"fmt"
	"time"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	ApiParam      ApiParam      `yaml:"api"`
	SpotifyParam  SpotifyParam  `yaml:"spotify"`
	PlaylistParam PlaylistParam `yaml:"playlist"`
	QueueParam    QueueParam    `yaml:"queue"`
	LedgerParam   LedgerParam   `yaml:"ledger"`
	AnnounceParam AnnounceParam `yaml:"announce"`
}

type ApiParam struct {
	Host   string   `yaml:"host"`
	Port   int64    `yaml:"port"`
	Ssl    bool     `yaml:"ssl"`
	ApiKey string   `yaml:"api_key"`
	Admins []string `yaml:"admins"`
}

type SpotifyParam struct {
	ClientId          string  `yaml:"client_id"`
	ClientSecret      string  `yaml:"client_secret"`
	RedirectUrl       string  `yaml:"redirect_url"`
	DeviceId          string  `yaml:"device_id"`
	Market            string  `yaml:"market"`
	Timeout           int64   `yaml:"timeout"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	PollInterval      int64   `yaml:"poll_interval"`
}

type PlaylistParam struct {
	Id   string `yaml:"id"`
	Name string `yaml:"name"`
}

type QueueParam struct {
	EnforceFairness bool `yaml:"enforce_fairness"`
	FollowCursor    bool `yaml:"follow_cursor"`
}

const (
	LedgerBackendYaml   = "yaml"
	LedgerBackendSqlite = "sqlite"
)

type LedgerParam struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

type AnnounceParam struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
	Path    string `yaml:"path"`
	Proto   string `yaml:"proto"`
}

// applyDefaults fills the values an older or hand-written param file may leave empty
func (p *ServerParam) applyDefaults() {
	if p.ApiParam.Port == 0 {
		p.ApiParam.Port = 8080
	}
	if p.SpotifyParam.Timeout <= 0 {
		p.SpotifyParam.Timeout = 10
	}
	if p.SpotifyParam.RequestsPerSecond <= 0 {
		p.SpotifyParam.RequestsPerSecond = 5
	}
	if p.SpotifyParam.PollInterval <= 0 {
		p.SpotifyParam.PollInterval = 1000
	}
	if p.PlaylistParam.Name == "" {
		p.PlaylistParam.Name = "sbox"
	}
	if p.LedgerParam.Backend == "" {
		p.LedgerParam.Backend = LedgerBackendYaml
	}
	if p.LedgerParam.Path == "" {
		if p.LedgerParam.Backend == LedgerBackendSqlite {
			p.LedgerParam.Path = "users.db"
		} else {
			p.LedgerParam.Path = "users.yaml"
		}
	}
	if p.AnnounceParam.Name == "" {
		p.AnnounceParam.Name = "sbox"
	}
	if p.AnnounceParam.Path == "" {
		p.AnnounceParam.Path = "/api"
	}
	if p.AnnounceParam.Proto == "" {
		if p.ApiParam.Ssl {
			p.AnnounceParam.Proto = "https"
		} else {
			p.AnnounceParam.Proto = "http"
		}
	}
}

func (p *ServerParam) validate() error {
	switch p.LedgerParam.Backend {
	case LedgerBackendYaml, LedgerBackendSqlite:
	default:
		return fmt.Errorf("unknown ledger backend %q", p.LedgerParam.Backend)
	}
	if p.ApiParam.Port < 1 || p.ApiParam.Port > 65535 {
		return fmt.Errorf("invalid api port %d", p.ApiParam.Port)
	}
	return nil
}

func (p ApiParam) IsAdmin(id string) bool {
	for _, admin := range p.Admins {
		if admin == id {
			return true
		}
	}
	return false
}

func (p SpotifyParam) GetTimeout() time.Duration {
	return time.Duration(p.Timeout) * time.Second
}

func (p SpotifyParam) GetPollInterval() time.Duration {
	return time.Duration(p.PollInterval) * time.Millisecond
}
