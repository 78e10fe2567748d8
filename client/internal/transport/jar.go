package transport

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/moodly/moodly-client/internal/localstate"
	"github.com/rs/zerolog"
)

const cookiesKey = "session_cookies"

type savedCookie struct {
	Name    string    `json:"name"`
	Value   string    `json:"value"`
	Path    string    `json:"path,omitempty"`
	Expires time.Time `json:"expires,omitempty"`
}

// PersistentJar is a cookie jar for one backend whose cookies survive restarts by
// being mirrored into the state store.
type PersistentJar struct {
	mu    sync.Mutex
	jar   *cookiejar.Jar
	base  *url.URL
	store localstate.Store
	saved map[string]savedCookie
	log   zerolog.Logger
	now   func() time.Time
}

// NewPersistentJar restores cookies for baseURL from store.
func NewPersistentJar(store localstate.Store, baseURL string, log zerolog.Logger) (*PersistentJar, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	j := &PersistentJar{
		jar:   jar,
		base:  base,
		store: store,
		saved: make(map[string]savedCookie),
		log:   log,
		now:   time.Now,
	}
	j.restore()
	return j, nil
}

func (j *PersistentJar) restore() {
	raw, ok, err := j.store.Get(cookiesKey)
	if err != nil || !ok {
		return
	}
	var saved []savedCookie
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		j.log.Warn().Err(err).Msg("discarding unreadable saved cookies")
		_ = j.store.Remove(cookiesKey)
		return
	}
	now := j.now()
	var cookies []*http.Cookie
	for _, sc := range saved {
		if !sc.Expires.IsZero() && !sc.Expires.After(now) {
			continue
		}
		j.saved[sc.Name] = sc
		cookies = append(cookies, &http.Cookie{Name: sc.Name, Value: sc.Value, Path: sc.Path, Expires: sc.Expires})
	}
	j.jar.SetCookies(j.base, cookies)
}

// SetCookies implements http.CookieJar.
func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.jar.SetCookies(u, cookies)
	if u.Host != j.base.Host {
		return
	}
	now := j.now()
	for _, c := range cookies {
		expired := c.MaxAge < 0 || (!c.Expires.IsZero() && !c.Expires.After(now))
		if expired {
			delete(j.saved, c.Name)
			continue
		}
		exp := c.Expires
		if c.MaxAge > 0 {
			exp = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		j.saved[c.Name] = savedCookie{Name: c.Name, Value: c.Value, Path: c.Path, Expires: exp}
	}
	j.persistLocked()
}

// Cookies implements http.CookieJar.
func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Clear forgets every cookie, in memory and on disk.
func (j *PersistentJar) Clear() {
	j.mu.Lock()
	defer j.mu.Unlock()
	jar, _ := cookiejar.New(nil)
	j.jar = jar
	j.saved = make(map[string]savedCookie)
	if err := j.store.Remove(cookiesKey); err != nil {
		j.log.Warn().Err(err).Msg("failed to remove saved cookies")
	}
}

func (j *PersistentJar) persistLocked() {
	list := make([]savedCookie, 0, len(j.saved))
	for _, sc := range j.saved {
		list = append(list, sc)
	}
	b, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := j.store.Set(cookiesKey, string(b)); err != nil {
		j.log.Warn().Err(err).Msg("failed to persist cookies")
	}
}
