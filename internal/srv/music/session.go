package music

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/renameio/v2"
	"github.com/google/uuid"
	"github.com/jypelle/sbox/internal/srv/config"
	"github.com/jypelle/sbox/internal/srv/event"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	authURL  = "https://accounts.spotify.com/authorize"
	tokenURL = "https://accounts.spotify.com/api/token"
)

var (
	ErrNotLoggedIn  = fmt.Errorf("%w: spotify not logged in", queue.ErrServiceUnavailable)
	ErrInvalidState = errors.New("invalid oauth state")
)

// Session is the logged in connection to the Spotify Web API shared by the playlist store,
// the player and the catalog. Every call goes through the same rate limiter and is bounded
// by the configured timeout.
type Session struct {
	lock         sync.RWMutex
	eventChannel chan event.SessionEvent
	sendEvent    bool

	oauthConfig   *oauth2.Config
	oauthState    string
	tokenFilename string
	limiter       *rate.Limiter
	timeout       time.Duration
	market        string

	client *spotify.Client
	userId string
}

func NewSession(param config.SpotifyParam, tokenFilename string) *Session {
	return &Session{
		eventChannel: make(chan event.SessionEvent),
		sendEvent:    true,
		oauthConfig: &oauth2.Config{
			ClientID:     param.ClientId,
			ClientSecret: param.ClientSecret,
			RedirectURL:  param.RedirectUrl,
			Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
			Scopes: []string{
				spotifyauth.ScopePlaylistReadPrivate,
				spotifyauth.ScopePlaylistModifyPublic,
				spotifyauth.ScopePlaylistModifyPrivate,
				spotifyauth.ScopeUserReadPlaybackState,
				spotifyauth.ScopeUserModifyPlaybackState,
				spotifyauth.ScopeUserReadCurrentlyPlaying,
			},
		},
		oauthState:    uuid.NewString(),
		tokenFilename: tokenFilename,
		limiter:       rate.NewLimiter(rate.Limit(param.RequestsPerSecond), 1),
		timeout:       param.GetTimeout(),
		market:        param.Market,
	}
}

// Start logs in with the saved token when there is one
func (s *Session) Start(ctx context.Context) {
	logrus.Infof("Start spotify session")

	token, err := s.loadToken()
	if err != nil {
		if !os.IsNotExist(err) {
			logrus.Warnf("Unable to read saved spotify token: %v", err)
		}
		logrus.Infof("Spotify login required, open /auth/login on the api")
		return
	}

	if err = s.login(ctx, token); err != nil {
		logrus.Warnf("Saved spotify token rejected, open /auth/login on the api: %v", err)
	}
}

func (s *Session) StopSendingEvent() {
	logrus.Infof("Stop sending events for spotify session")

	s.lock.Lock()
	defer s.lock.Unlock()

	s.sendEvent = false
}

func (s *Session) EventChannel() chan event.SessionEvent {
	return s.eventChannel
}

func (s *Session) LoggedIn() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.client != nil
}

// AuthCodeURL is where an operator grants the session access to their account
func (s *Session) AuthCodeURL() string {
	return s.oauthConfig.AuthCodeURL(s.oauthState)
}

// CompleteLogin exchanges the code received on the oauth callback and logs in
func (s *Session) CompleteLogin(ctx context.Context, state string, code string) error {
	if state != s.oauthState {
		return ErrInvalidState
	}
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("token exchange failed: %w", err)
	}
	if err = s.saveToken(token); err != nil {
		logrus.Warnf("Unable to save spotify token: %v", err)
	}
	return s.login(ctx, token)
}

func (s *Session) login(ctx context.Context, token *oauth2.Token) error {
	tokenSource := &savingTokenSource{
		base:        s.oauthConfig.TokenSource(context.Background(), token),
		session:     s,
		accessToken: token.AccessToken,
	}
	client := spotify.New(oauth2.NewClient(context.Background(), tokenSource), spotify.WithRetry(true))

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	user, err := client.CurrentUser(callCtx)
	if err != nil {
		return err
	}

	s.lock.Lock()
	s.client = client
	s.userId = user.ID
	s.lock.Unlock()

	logrus.Infof("Spotify session ready for %s", user.ID)
	s.send(event.SessionEvent{Data: event.SessionEventReadyData{User: user.ID}})
	return nil
}

// call runs fn with the session client once the rate limiter allows it, bounded by the session timeout.
// Failures are reported as ErrServiceUnavailable, still wrapping the Web API error.
func (s *Session) call(ctx context.Context, fn func(ctx context.Context, client *spotify.Client) error) error {
	s.lock.RLock()
	client := s.client
	s.lock.RUnlock()
	if client == nil {
		return ErrNotLoggedIn
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %w", queue.ErrServiceUnavailable, err)
	}
	if err := fn(ctx, client); err != nil {
		return fmt.Errorf("%w: %w", queue.ErrServiceUnavailable, err)
	}
	return nil
}

func (s *Session) UserId() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.userId
}

func (s *Session) send(ev event.SessionEvent) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.sendEvent {
		go func() {
			s.eventChannel <- ev
		}()
	}
}

type tokenData struct {
	Token *oauth2.Token `json:"token"`
}

func (s *Session) loadToken() (*oauth2.Token, error) {
	rawToken, err := os.ReadFile(s.tokenFilename)
	if err != nil {
		return nil, err
	}
	var data tokenData
	if err = json.Unmarshal(rawToken, &data); err != nil {
		return nil, err
	}
	if data.Token == nil {
		return nil, errors.New("empty token file")
	}
	return data.Token, nil
}

func (s *Session) saveToken(token *oauth2.Token) error {
	rawToken, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return renameio.WriteFile(s.tokenFilename, rawToken, 0600)
}

// savingTokenSource writes refreshed tokens back to the token file
type savingTokenSource struct {
	lock        sync.Mutex
	base        oauth2.TokenSource
	session     *Session
	accessToken string
}

func (ts *savingTokenSource) Token() (*oauth2.Token, error) {
	token, err := ts.base.Token()
	if err != nil {
		return nil, err
	}

	ts.lock.Lock()
	defer ts.lock.Unlock()
	if token.AccessToken != ts.accessToken {
		ts.accessToken = token.AccessToken
		logrus.Debugf("Spotify token refreshed")
		if err = ts.session.saveToken(token); err != nil {
			logrus.Warnf("Unable to save refreshed spotify token: %v", err)
		}
	}
	return token, nil
}
