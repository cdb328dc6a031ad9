package device

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/jypelle/sbox/apimodel"
	"github.com/jypelle/sbox/internal/srv/config"
	"github.com/jypelle/sbox/internal/srv/event"
	"github.com/jypelle/sbox/internal/srv/queue"
	"github.com/jypelle/sbox/internal/tool"
	"github.com/sirupsen/logrus"
)

// Jukebox is the shared queue as seen by remote callers
type Jukebox interface {
	IsOpen() bool
	Add(ctx context.Context, trackKey string, contributorId string) (queue.AddResult, error)
	Remove(ctx context.Context, trackKey string, contributorId string) (apimodel.Track, error)
	List(ctx context.Context, contributorId string) (queue.Listing, error)
}

type Catalog interface {
	Search(ctx context.Context, request apimodel.SearchRequest) (apimodel.SearchResult, error)
	Artist(ctx context.Context, key string) (apimodel.ArtistView, error)
	Album(ctx context.Context, key string) (apimodel.AlbumView, error)
}

// Login is the music session login flow
type Login interface {
	LoggedIn() bool
	AuthCodeURL() string
	CompleteLogin(ctx context.Context, state string, code string) error
}

type Api struct {
	eventChannel chan event.ApiEvent

	router    *mux.Router
	apiRouter *mux.Router
	server    *http.Server

	config  *config.ServerConfig
	jukebox Jukebox
	catalog Catalog
	login   Login
}

type requestIdKey struct{}

var apiRoutes = []string{
	"/api/search",
	"/api/playlist/add",
	"/api/playlist/remove",
	"/api/playlist",
	"/api/artist",
	"/api/album",
	"/api/login",
	"/api/control/{pause|next|prev}",
}

func NewApi(config *config.ServerConfig, jukebox Jukebox, catalog Catalog, login Login) *Api {
	api := &Api{
		config:       config,
		jukebox:      jukebox,
		catalog:      catalog,
		login:        login,
		eventChannel: make(chan event.ApiEvent),
	}

	api.router = mux.NewRouter().StrictSlash(false)

	// Music session login
	api.router.HandleFunc("/auth/login", api.authLoginAction).Methods("GET")
	api.router.HandleFunc("/auth/callback", api.authCallbackAction).Methods("GET")

	// API Routes
	api.apiRouter = api.router.PathPrefix("/api").Subrouter()
	api.apiRouter.NotFoundHandler = http.HandlerFunc(ErrorNotFoundAction)
	api.apiRouter.MethodNotAllowedHandler = http.HandlerFunc(ErrorMethodNotAllowedAction)
	api.apiRouter.Use(api.middleware)

	api.apiRouter.HandleFunc("/", api.indexAction).Methods("GET")
	api.apiRouter.HandleFunc("/is_alive",
		func(w http.ResponseWriter, r *http.Request) {
			ErrorStatusAction(w, r, http.StatusOK)
		}).Methods("GET")
	api.apiRouter.HandleFunc("/login", api.requireSession(api.loginAction)).Methods("POST")
	api.apiRouter.HandleFunc("/search", api.requireSession(api.searchAction)).Methods("GET", "POST")
	api.apiRouter.HandleFunc("/playlist", api.requireSession(api.playlistAction)).Methods("GET", "POST")
	api.apiRouter.HandleFunc("/playlist/add", api.requireSession(api.playlistAddAction)).Methods("POST")
	api.apiRouter.HandleFunc("/playlist/remove", api.requireSession(api.playlistRemoveAction)).Methods("POST")
	api.apiRouter.HandleFunc("/artist", api.requireSession(api.artistAction)).Methods("GET", "POST")
	api.apiRouter.HandleFunc("/album", api.requireSession(api.albumAction)).Methods("GET", "POST")
	api.apiRouter.HandleFunc("/control/{action}", api.requireSession(api.controlAction)).Methods("POST")

	// Tell the browser that it's OK for JS to communicate with the server
	headersOk := handlers.AllowedHeaders([]string{"Content-Type", "X-Api-Key"})
	originsOk := handlers.AllowedOrigins([]string{"*"})
	methodsOk := handlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"})

	api.server = &http.Server{
		Addr:         net.JoinHostPort(config.ApiParam.Host, strconv.FormatInt(config.ApiParam.Port, 10)),
		Handler:      handlers.CompressHandler(handlers.CORS(originsOk, headersOk, methodsOk)(api.router)),
		ReadTimeout:  time.Second * 240,
		WriteTimeout: time.Second * 240,
		IdleTimeout:  time.Second * 240,
	}

	return api
}

func (d *Api) Start() {
	logrus.Infof("Start api device on %s", d.server.Addr)

	if !d.config.ApiParam.Ssl {
		go func() {
			err := d.server.ListenAndServe()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logrus.Error(err)
			}
		}()
		return
	}

	hostnames := []string{"localhost"}
	if d.config.ApiParam.Host != "" {
		hostnames = append(hostnames, d.config.ApiParam.Host)
	}
	generated, err := tool.EnsureSelfSignedCertificate(
		d.config.GetCompleteKeyFilename(),
		d.config.GetCompleteCertFilename(),
		"Sbox Server",
		hostnames)
	if err != nil {
		logrus.Fatalf("Unable to generate cert and key files : %v\n", err)
	}
	if generated {
		logrus.Info("Self-signed cert and key files generated")
	}

	go func() {
		err := d.server.ListenAndServeTLS(d.config.GetCompleteCertFilename(), d.config.GetCompleteKeyFilename())
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Error(err)
		}
	}()
}

func (d *Api) StopSendingEvent() {
	logrus.Infof("Stop api device")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.server.Shutdown(ctx); err != nil {
		logrus.Warnf("Unable to stop api server cleanly: %v", err)
	}
}

func (d *Api) EventChannel() chan event.ApiEvent {
	return d.eventChannel
}

func (d *Api) Handler() http.Handler {
	return d.server.Handler
}

func (d *Api) middleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := uuid.NewString()
		logger := logrus.WithField("request_id", requestId)

		defer func() {
			if rec := recover(); rec != nil {
				logger.Warningf("recovered from panic : [%v] - stack trace : \n [%s]", rec, debug.Stack())
				GlobalErrorAction(w, fmt.Sprintf("%v", rec), http.StatusInternalServerError)
			}
		}()

		// Check API Key
		if apiKey := d.config.ApiParam.ApiKey; apiKey != "" && r.Header.Get("x-api-key") != apiKey {
			ErrorStatusAction(w, r, http.StatusForbidden)
			return
		}

		logger.Debugf("PATH: %s %s %s", r.Method, r.Host, r.URL.Path)

		w.Header().Set("X-Request-Id", requestId)
		handler.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIdKey{}, requestId)))
	})
}

// requireSession answers 503 until the music session is logged in and the playlist bound
func (d *Api) requireSession(action http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !d.login.LoggedIn() {
			apimodel.SessionNotLoggedInErrorMessage.SendError(w)
			return
		}
		if !d.jukebox.IsOpen() {
			apimodel.SessionNotAvailableErrorMessage.SendError(w)
			return
		}
		action(w, r)
	}
}

func (d *Api) indexAction(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"routes": apiRoutes})
}

func (d *Api) loginAction(w http.ResponseWriter, r *http.Request) {
	var request apimodel.ContributorRequest
	if err := decodeRequest(r, &request, func(form url.Values) {
		request.Id = form.Get("id")
	}); err != nil {
		apimodel.WrongParametersErrorMessage.SendError(w)
		return
	}
	if errorMessage := request.Validate(); errorMessage != nil {
		errorMessage.SendError(w)
		return
	}

	writeJSON(w, http.StatusOK, apimodel.LoginResponse{Admin: d.config.ApiParam.IsAdmin(request.Id)})
}

func (d *Api) searchAction(w http.ResponseWriter, r *http.Request) {
	var request apimodel.SearchRequest
	if err := decodeRequest(r, &request, func(form url.Values) {
		request.Query = form.Get("q")
		request.NoTracks = formFlag(form, "notracks")
		request.NoAlbums = formFlag(form, "noalbums")
		request.NoArtists = formFlag(form, "noartists")
	}); err != nil {
		apimodel.WrongParametersErrorMessage.SendError(w)
		return
	}
	if errorMessage := request.Validate(); errorMessage != nil {
		errorMessage.SendError(w)
		return
	}

	result, err := d.catalog.Search(r.Context(), request)
	if err != nil {
		sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (d *Api) playlistAction(w http.ResponseWriter, r *http.Request) {
	var request apimodel.ContributorRequest
	if err := decodeRequest(r, &request, func(form url.Values) {
		request.Id = form.Get("id")
	}); err != nil {
		apimodel.WrongParametersErrorMessage.SendError(w)
		return
	}
	request.Id = strings.TrimSpace(request.Id)

	listing, err := d.jukebox.List(r.Context(), request.Id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apimodel.PlaylistResponse{Tracks: listing.Tracks, UserTracks: listing.UserTracks})
}

func (d *Api) playlistAddAction(w http.ResponseWriter, r *http.Request) {
	request, ok := readTrackRequest(w, r)
	if !ok {
		return
	}

	result, err := d.jukebox.Add(r.Context(), request.Key, request.Id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	if !result.Admitted {
		writeJSON(w, http.StatusOK, apimodel.AddTrackResponse{
			Status:  apimodel.AddStatusDeferred,
			Message: "wait for the other contributors before adding another track",
		})
		return
	}
	writeJSON(w, http.StatusOK, apimodel.AddTrackResponse{Status: apimodel.AddStatusAdmitted, Track: &result.Track})
}

func (d *Api) playlistRemoveAction(w http.ResponseWriter, r *http.Request) {
	request, ok := readTrackRequest(w, r)
	if !ok {
		return
	}

	track, err := d.jukebox.Remove(r.Context(), request.Key, request.Id)
	if err != nil {
		sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, apimodel.RemoveTrackResponse{Track: track})
}

func (d *Api) artistAction(w http.ResponseWriter, r *http.Request) {
	request, ok := readCatalogRequest(w, r)
	if !ok {
		return
	}

	view, err := d.catalog.Artist(r.Context(), request.Key)
	if err != nil {
		sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (d *Api) albumAction(w http.ResponseWriter, r *http.Request) {
	request, ok := readCatalogRequest(w, r)
	if !ok {
		return
	}

	view, err := d.catalog.Album(r.Context(), request.Key)
	if err != nil {
		sendError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (d *Api) controlAction(w http.ResponseWriter, r *http.Request) {
	action := event.ControlAction(mux.Vars(r)["action"])

	var request apimodel.ContributorRequest
	if err := decodeRequest(r, &request, func(form url.Values) {
		request.Id = form.Get("id")
	}); err != nil {
		apimodel.WrongParametersErrorMessage.SendError(w)
		return
	}
	if errorMessage := request.Validate(); errorMessage != nil {
		errorMessage.SendError(w)
		return
	}
	if !d.config.ApiParam.IsAdmin(request.Id) {
		writeJSON(w, http.StatusForbidden, apimodel.LoginResponse{Admin: false})
		return
	}
	if !action.IsValid() {
		writeJSON(w, http.StatusBadRequest, apimodel.ControlResponse{Control: false})
		return
	}

	result := make(chan error, 1)
	select {
	case d.eventChannel <- event.ApiEvent{Result: result, Data: event.ApiEventControlData{Action: action}}:
	case <-r.Context().Done():
		ErrorStatusAction(w, r, http.StatusServiceUnavailable)
		return
	}

	select {
	case err := <-result:
		if err != nil {
			sendError(w, r, err)
			return
		}
		logrus.Infof("Control %s by %s", action, request.Id)
		writeJSON(w, http.StatusOK, apimodel.ControlResponse{Control: true, Action: string(action)})
	case <-r.Context().Done():
		ErrorStatusAction(w, r, http.StatusServiceUnavailable)
	}
}

func (d *Api) authLoginAction(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, d.login.AuthCodeURL(), http.StatusFound)
}

func (d *Api) authCallbackAction(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	if code == "" {
		GlobalErrorAction(w, fmt.Sprintf("authorization failed: %s", query.Get("error")), http.StatusBadRequest)
		return
	}

	if err := d.login.CompleteLogin(r.Context(), query.Get("state"), code); err != nil {
		logrus.Warnf("Spotify login failed: %v", err)
		GlobalErrorAction(w, err.Error(), http.StatusBadRequest)
		return
	}
	ErrorMessageAction(w, "logged in", http.StatusOK)
}

func readTrackRequest(w http.ResponseWriter, r *http.Request) (apimodel.TrackRequest, bool) {
	var request apimodel.TrackRequest
	if err := decodeRequest(r, &request, func(form url.Values) {
		request.Key = form.Get("key")
		request.Id = form.Get("id")
	}); err != nil {
		apimodel.WrongParametersErrorMessage.SendError(w)
		return request, false
	}
	if errorMessage := request.Validate(); errorMessage != nil {
		errorMessage.SendError(w)
		return request, false
	}
	return request, true
}

func readCatalogRequest(w http.ResponseWriter, r *http.Request) (apimodel.CatalogRequest, bool) {
	var request apimodel.CatalogRequest
	if err := decodeRequest(r, &request, func(form url.Values) {
		request.Key = form.Get("key")
	}); err != nil {
		apimodel.WrongParametersErrorMessage.SendError(w)
		return request, false
	}
	if errorMessage := request.Validate(); errorMessage != nil {
		errorMessage.SendError(w)
		return request, false
	}
	return request, true
}

// decodeRequest fills request from a JSON body, or from the query and form values through fromForm
func decodeRequest(r *http.Request, request interface{}, fromForm func(form url.Values)) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(request)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.Form)
	return nil
}

// formFlag is set when the parameter is present, unless it is explicitly false
func formFlag(form url.Values, name string) bool {
	if _, ok := form[name]; !ok {
		return false
	}
	switch strings.ToLower(form.Get(name)) {
	case "0", "false", "no":
		return false
	}
	return true
}

func sendError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, queue.ErrTrackNotFound):
		apimodel.TrackNotFoundErrorMessage.SendError(w)
	case errors.Is(err, queue.ErrUnknownKey):
		apimodel.UnknownTrackErrorMessage.SendError(w)
	case errors.Is(err, queue.ErrServiceUnavailable), errors.Is(err, context.DeadlineExceeded):
		requestLogger(r).Errorf("Music service unavailable: %v", err)
		apimodel.SessionNotAvailableErrorMessage.SendError(w)
	default:
		requestLogger(r).Errorf("Unexpected failure: %v", err)
		ErrorStatusAction(w, r, http.StatusInternalServerError)
	}
}

func requestLogger(r *http.Request) *logrus.Entry {
	requestId, _ := r.Context().Value(requestIdKey{}).(string)
	return logrus.WithField("request_id", requestId)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("Unable to encode response: %v", err)
	}
}

func ErrorNotFoundAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusNotFound)
}

func ErrorMethodNotAllowedAction(w http.ResponseWriter, r *http.Request) {
	ErrorStatusAction(w, r, http.StatusMethodNotAllowed)
}

func ErrorStatusAction(w http.ResponseWriter, r *http.Request, status int) {
	ErrorMessageAction(w, "", status)
}

func GlobalErrorAction(w http.ResponseWriter, message string, status int) {
	ErrorMessageAction(w, message, status)
}

func ErrorMessageAction(w http.ResponseWriter, title string, status int) {
	apimodel.NewErrorMessage(status, title).SendError(w)
}
