// Package transport is the single HTTP entry point for every backend call. It
// attaches session cookies and JSON headers, and turns a 401 into one refresh
// attempt followed by one replay of the original request.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/moodly/moodly-client/client/internal/events"
	"github.com/rs/zerolog"
)

// Refresher renews the session. Implementations must be safe for concurrent use.
// A non-nil error means ctx ended before the refresh settled.
type Refresher interface {
	Refresh(ctx context.Context) (bool, error)
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	skipRefresh bool
	quiet       bool
	query       url.Values
}

// SkipRefresh disables refresh-and-retry. Used by the login, register and refresh
// endpoints, whose 401s must reach the caller unchanged.
func SkipRefresh() RequestOption {
	return func(o *requestOptions) { o.skipRefresh = true }
}

// NoExpiryEvent keeps refresh-and-retry but does not emit AuthExpired when the
// refresh fails. Used by logout, which tears the session down itself.
func NoExpiryEvent() RequestOption {
	return func(o *requestOptions) { o.quiet = true }
}

// WithQuery appends query parameters to the request path.
func WithQuery(q url.Values) RequestOption {
	return func(o *requestOptions) { o.query = q }
}

// Doer issues credentialed JSON requests against one backend.
type Doer struct {
	baseURL   string
	http      *http.Client
	refresher Refresher
	bus       *events.Bus
	headers   http.Header
	log       zerolog.Logger
}

// New returns a Doer. httpClient should carry the session cookie jar.
func New(httpClient *http.Client, baseURL string, bus *events.Bus, log zerolog.Logger) *Doer {
	return &Doer{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		bus:     bus,
		headers: make(http.Header),
		log:     log,
	}
}

// SetRefresher installs the refresh coordinator. It must be called before the Doer
// is shared; the coordinator itself issues requests through this Doer.
func (d *Doer) SetRefresher(r Refresher) { d.refresher = r }

// SetHeader adds a header sent with every request (e.g. X-Device-ID).
func (d *Doer) SetHeader(key, value string) { d.headers.Set(key, value) }

// Request sends method path with body JSON-encoded (nil for no body).
//
// A 401 triggers the refresher unless SkipRefresh is given. After a successful
// refresh the request is replayed exactly once and that response is returned as is.
// After a failed refresh AuthExpired is emitted and the original 401 is returned.
// If ctx ends while waiting on the refresh its error is returned and nothing is
// emitted. Transport errors are returned unchanged.
func (d *Doer) Request(ctx context.Context, method, path string, body any, opts ...RequestOption) (*http.Response, error) {
	var o requestOptions
	for _, opt := range opts {
		opt(&o)
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = b
	}

	target := d.baseURL + path
	if len(o.query) > 0 {
		target += "?" + o.query.Encode()
	}

	resp, err := d.send(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized || o.skipRefresh || d.refresher == nil {
		return resp, nil
	}

	// Buffer the 401 so it can still be handed back if the refresh fails.
	original, err := bufferResponse(resp)
	if err != nil {
		return nil, err
	}

	ok, err := d.refresher.Refresh(ctx)
	if err != nil {
		_ = original.Body.Close()
		return nil, err
	}
	if !ok {
		if o.quiet {
			d.log.Debug().Str("method", method).Str("path", path).Msg("session refresh failed")
			return original, nil
		}
		d.log.Warn().Str("method", method).Str("path", path).Msg("session refresh failed; emitting auth expired")
		d.bus.Emit(events.AuthExpired)
		return original, nil
	}

	d.log.Debug().Str("method", method).Str("path", path).Msg("session refreshed; replaying request")
	return d.send(ctx, method, target, payload)
}

func (d *Doer) send(ctx context.Context, method, target string, payload []byte) (*http.Response, error) {
	var rdr io.Reader
	if payload != nil {
		rdr = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rdr)
	if err != nil {
		return nil, err
	}
	for k, vs := range d.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := d.http.Do(req)
	if err != nil {
		return nil, err
	}
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

func bufferResponse(resp *http.Response) (*http.Response, error) {
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))
	return resp, nil
}
