// Package fakebackend is an in-memory Moodly backend for tests and local CLI runs.
// It issues the same session cookies as the real service and lets tests expire
// sessions, revoke refresh tokens and inject failures per route.
package fakebackend

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/moodly/moodly-client/client"
)

const (
	AccessCookie  = "moodly_access"
	RefreshCookie = "moodly_refresh"
)

// Route names, usable with Calls and Fail.
const (
	RouteRegister         = "register"
	RouteLogin            = "login"
	RouteRefresh          = "refresh"
	RouteLogout           = "logout"
	RouteMe               = "me"
	RouteCountry          = "country"
	RoutePhoto            = "photo"
	RoutePassword         = "password"
	RouteDeleteAccount    = "delete-account"
	RouteCreateMood       = "create-mood"
	RouteLatestMood       = "latest-mood"
	RouteHistory          = "history"
	RouteDominant         = "dominant"
	RouteHappiness        = "happiness"
	RouteFrequency        = "frequency"
	RouteThroughDay       = "through-day"
	RouteGlobal           = "global"
	RouteSameToday        = "same-today"
	RouteCountries        = "countries"
	RouteHours            = "hours"
	RouteTrend            = "trend"
	RouteInsightsCurrent  = "insights-current"
	RouteInsightsPrevious = "insights-previous"
	RouteInsightsGenerate = "insights-generate"
)

type account struct {
	user     client.User
	password string
	moods    []client.MoodEntry
	insights []client.Insights
}

type failure struct {
	status int
	code   string
	raw    string
}

// Server is the fake backend. The zero value is not usable; call New.
type Server struct {
	mu       sync.Mutex
	accounts map[string]*account // by user id
	byEmail  map[string]string
	access   map[string]string // token -> user id
	refresh  map[string]string

	refreshCode    string
	refreshDelay   time.Duration
	generateDelay  time.Duration
	calls          map[string]int
	failures       map[string]failure
	lastLogoutBody []byte

	router *mux.Router
	ts     *httptest.Server
	now    func() time.Time
}

// New returns a Server with its routes registered but not listening.
func New() *Server {
	s := &Server{
		accounts: make(map[string]*account),
		byEmail:  make(map[string]string),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		calls:    make(map[string]int),
		failures: make(map[string]failure),
		now:      time.Now,
	}
	s.router = s.routes()
	return s
}

// Start returns a listening Server.
func Start() *Server {
	s := New()
	s.ts = httptest.NewServer(s.router)
	return s
}

// URL is the base URL of a started server.
func (s *Server) URL() string { return s.ts.URL }

// Close stops a started server.
func (s *Server) Close() {
	if s.ts != nil {
		s.ts.Close()
	}
}

// Handler exposes the router.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.instrument)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/auth/register", s.handleRegister).Methods(http.MethodPost).Name(RouteRegister)
	a.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost).Name(RouteLogin)
	a.HandleFunc("/auth/refresh", s.handleRefresh).Methods(http.MethodPost).Name(RouteRefresh)
	a.HandleFunc("/auth/logout", s.authed(s.handleLogout)).Methods(http.MethodPost).Name(RouteLogout)

	a.HandleFunc("/users/me", s.authed(s.handleMe)).Methods(http.MethodGet).Name(RouteMe)
	a.HandleFunc("/users/me", s.authed(s.handleDeleteAccount)).Methods(http.MethodDelete).Name(RouteDeleteAccount)
	a.HandleFunc("/users/me/country", s.authed(s.handleCountry)).Methods(http.MethodPatch).Name(RouteCountry)
	a.HandleFunc("/users/me/photo", s.authed(s.handlePhoto)).Methods(http.MethodPatch).Name(RoutePhoto)
	a.HandleFunc("/users/me/password", s.authed(s.handlePassword)).Methods(http.MethodPost).Name(RoutePassword)

	a.HandleFunc("/moods", s.authed(s.handleCreateMood)).Methods(http.MethodPost).Name(RouteCreateMood)
	a.HandleFunc("/moods/latest", s.authed(s.handleLatestMood)).Methods(http.MethodGet).Name(RouteLatestMood)
	a.HandleFunc("/moods/history", s.authed(s.handleHistory)).Methods(http.MethodGet).Name(RouteHistory)

	a.HandleFunc("/stats/dominant", s.authed(s.handleDominant)).Methods(http.MethodGet).Name(RouteDominant)
	a.HandleFunc("/stats/happiness", s.authed(s.handleHappiness)).Methods(http.MethodGet).Name(RouteHappiness)
	a.HandleFunc("/stats/frequency", s.authed(s.handleFrequency)).Methods(http.MethodGet).Name(RouteFrequency)
	a.HandleFunc("/stats/through-day", s.authed(s.handleThroughDay)).Methods(http.MethodGet).Name(RouteThroughDay)
	a.HandleFunc("/stats/global", s.handleGlobal).Methods(http.MethodGet).Name(RouteGlobal)
	a.HandleFunc("/stats/selected/same-today", s.authed(s.handleSameToday)).Methods(http.MethodGet).Name(RouteSameToday)
	a.HandleFunc("/stats/selected/countries", s.authed(s.handleCountries)).Methods(http.MethodGet).Name(RouteCountries)
	a.HandleFunc("/stats/selected/hours", s.authed(s.handleHours)).Methods(http.MethodGet).Name(RouteHours)
	a.HandleFunc("/stats/selected/trend", s.authed(s.handleTrend)).Methods(http.MethodGet).Name(RouteTrend)

	a.HandleFunc("/insights/current", s.authed(s.handleInsightsCurrent)).Methods(http.MethodGet).Name(RouteInsightsCurrent)
	a.HandleFunc("/insights/previous", s.authed(s.handleInsightsPrevious)).Methods(http.MethodGet).Name(RouteInsightsPrevious)
	a.HandleFunc("/insights/generate", s.authed(s.handleGenerate)).Methods(http.MethodPost).Name(RouteInsightsGenerate)
	return r
}

// instrument counts calls per route and serves injected failures.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		s.mu.Lock()
		s.calls[name]++
		f, failing := s.failures[name]
		s.mu.Unlock()

		if failing {
			if f.raw != "" {
				w.WriteHeader(f.status)
				_, _ = w.Write([]byte(f.raw))
				return
			}
			WriteError(w, f.status, f.code, "injected failure")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type authedHandler func(w http.ResponseWriter, r *http.Request, acct *account)

func (s *Server) authed(h authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(AccessCookie)
		if err != nil {
			WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing session")
			return
		}
		s.mu.Lock()
		id, ok := s.access[c.Value]
		acct := s.accounts[id]
		s.mu.Unlock()
		if !ok || acct == nil {
			WriteError(w, http.StatusUnauthorized, "TOKEN_EXPIRED", "access token expired")
			return
		}
		h(w, r, acct)
	}
}

// issueSession mints a token pair for id and sets both cookies. Callers hold s.mu.
func (s *Server) issueSession(w http.ResponseWriter, id string) {
	at, rt := uuid.NewString(), uuid.NewString()
	s.access[at] = id
	s.refresh[rt] = id
	http.SetCookie(w, &http.Cookie{Name: AccessCookie, Value: at, Path: "/", HttpOnly: true})
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: rt, Path: "/api/auth", HttpOnly: true})
}

func clearCookies(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{Name: AccessCookie, Value: "", Path: "/", MaxAge: -1})
	http.SetCookie(w, &http.Cookie{Name: RefreshCookie, Value: "", Path: "/api/auth", MaxAge: -1})
}

// ---- test controls ----

// Calls returns how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// ResetCalls zeroes every counter.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = make(map[string]int)
}

// Fail makes route answer status with a coded error body until Recover is called.
func (s *Server) Fail(route string, status int, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, code: code}
}

// FailRaw makes route answer status with a non-JSON body.
func (s *Server) FailRaw(route string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, raw: body}
}

// Recover clears an injected failure.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// ExpireAccess invalidates every access token; refresh tokens stay valid.
func (s *Server) ExpireAccess() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// RevokeRefresh makes every refresh attempt fail with code, e.g. REFRESH_TOKEN_REVOKED.
// An empty code restores normal refresh.
func (s *Server) RevokeRefresh(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshCode = code
}

// SetRefreshDelay slows the refresh endpoint so concurrent callers overlap.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// SetGenerateDelay slows insight generation.
func (s *Server) SetGenerateDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generateDelay = d
}

// LastLogoutBody returns the raw body of the most recent logout request.
func (s *Server) LastLogoutBody() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]byte(nil), s.lastLogoutBody...)
}

// ActiveSessions counts live access tokens.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.access)
}
