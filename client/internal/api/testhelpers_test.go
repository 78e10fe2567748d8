package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/moodly/moodly-client/client/internal/events"
	"github.com/moodly/moodly-client/client/internal/i18n"
	"github.com/moodly/moodly-client/client/internal/transport"
	"github.com/rs/zerolog"
)

// errRT is an http.RoundTripper that always returns an error (simulates network failure).
type errRT struct{}

func (e *errRT) RoundTrip(*http.Request) (*http.Response, error) { return nil, fmt.Errorf("boom") }

var tr = i18n.New("en")

func newDoer(t *testing.T, h http.HandlerFunc) *transport.Doer {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return transport.New(srv.Client(), srv.URL, events.NewBus(), zerolog.Nop())
}

func failingDoer() *transport.Doer {
	return transport.New(&http.Client{Transport: &errRT{}}, "http://unreachable.invalid", events.NewBus(), zerolog.Nop())
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
