package fakebackend

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/moodly/moodly-client/client"
)

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_JSON", "invalid json")
		return false
	}
	return true
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in client.RegisterRequest
	if !decode(w, r, &in) {
		return
	}
	email := strings.ToLower(in.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[email]; taken {
		WriteError(w, http.StatusConflict, "EMAIL_TAKEN", "email already registered")
		return
	}
	acct := &account{
		user:     client.User{ID: uuid.NewString(), Email: email, Name: in.Name, Country: in.Country, CreatedAt: s.now().UTC()},
		password: in.Password,
	}
	s.accounts[acct.user.ID] = acct
	s.byEmail[email] = acct.user.ID
	s.issueSession(w, acct.user.ID)
	WriteJSON(w, http.StatusCreated, client.AuthResponse{User: acct.user})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in client.LoginRequest
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	acct := s.accounts[s.byEmail[strings.ToLower(in.Email)]]
	if acct == nil || acct.password != in.Password {
		WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
		return
	}
	s.issueSession(w, acct.user.ID)
	WriteJSON(w, http.StatusOK, client.AuthResponse{User: acct.user})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay, code := s.refreshDelay, s.refreshCode
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}
	if code != "" {
		WriteError(w, http.StatusUnauthorized, code, "refresh rejected")
		return
	}
	c, err := r.Cookie(RefreshCookie)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "missing refresh token")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.refresh[c.Value]
	if !ok {
		WriteError(w, http.StatusUnauthorized, "REFRESH_TOKEN_INVALID", "unknown refresh token")
		return
	}
	delete(s.refresh, c.Value)
	s.issueSession(w, id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, acct *account) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	s.lastLogoutBody = body
	for tok, id := range s.access {
		if id == acct.user.ID {
			delete(s.access, tok)
		}
	}
	for tok, id := range s.refresh {
		if id == acct.user.ID {
			delete(s.refresh, tok)
		}
	}
	s.mu.Unlock()
	clearCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	u := acct.user
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, client.AuthResponse{User: u})
}

func (s *Server) handleCountry(w http.ResponseWriter, r *http.Request, acct *account) {
	var in client.UpdateCountryRequest
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	acct.user.Country = in.Country
	u := acct.user
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, client.AuthResponse{User: u})
}

func (s *Server) handlePhoto(w http.ResponseWriter, r *http.Request, acct *account) {
	var in client.UpdatePhotoRequest
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	acct.user.PhotoURL = in.PhotoURL
	u := acct.user
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, client.AuthResponse{User: u})
}

func (s *Server) handlePassword(w http.ResponseWriter, r *http.Request, acct *account) {
	var in client.ChangePasswordRequest
	if !decode(w, r, &in) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if acct.password != in.CurrentPassword {
		WriteError(w, http.StatusBadRequest, "PASSWORD_MISMATCH", "current password is incorrect")
		return
	}
	acct.password = in.NewPassword
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	id := acct.user.ID
	delete(s.accounts, id)
	delete(s.byEmail, acct.user.Email)
	for tok, owner := range s.access {
		if owner == id {
			delete(s.access, tok)
		}
	}
	s.mu.Unlock()
	clearCookies(w)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreateMood(w http.ResponseWriter, r *http.Request, acct *account) {
	var in client.CreateMoodRequest
	if !decode(w, r, &in) {
		return
	}
	valid := false
	for _, m := range client.Moods {
		valid = valid || m == in.Mood
	}
	if !valid {
		WriteError(w, http.StatusBadRequest, "MOOD_INVALID", "unknown mood")
		return
	}
	s.mu.Lock()
	e := client.MoodEntry{ID: uuid.NewString(), Mood: in.Mood, Note: in.Note, CreatedAt: s.now().UTC()}
	acct.moods = append([]client.MoodEntry{e}, acct.moods...)
	s.mu.Unlock()
	WriteJSON(w, http.StatusCreated, e)
}

func (s *Server) handleLatestMood(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	var latest *client.MoodEntry
	if len(acct.moods) > 0 {
		e := acct.moods[0]
		latest = &e
	}
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, map[string]*client.MoodEntry{"entry": latest})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	entries := append([]client.MoodEntry{}, acct.moods...)
	s.mu.Unlock()
	WriteJSON(w, http.StatusOK, client.MoodHistoryResponse{Entries: entries, Count: len(entries)})
}

// periodMoods returns the account's entries inside the requested period.
func (s *Server) periodMoods(w http.ResponseWriter, q url.Values, acct *account) (client.Period, []client.MoodEntry, bool) {
	p := client.Period(q.Get("period"))
	var window time.Duration
	switch p {
	case client.PeriodToday:
		window = 24 * time.Hour
	case client.PeriodWeek:
		window = 7 * 24 * time.Hour
	case client.PeriodMonth:
		window = 30 * 24 * time.Hour
	default:
		WriteError(w, http.StatusBadRequest, "PERIOD_INVALID", "unknown period")
		return "", nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-window)
	var out []client.MoodEntry
	for _, e := range acct.moods {
		if e.CreatedAt.After(cutoff) {
			out = append(out, e)
		}
	}
	return p, out, true
}

func countMoods(entries []client.MoodEntry) map[client.Mood]int {
	counts := make(map[client.Mood]int)
	for _, e := range entries {
		counts[e.Mood]++
	}
	return counts
}

func dominant(counts map[client.Mood]int) (client.Mood, int) {
	var best client.Mood
	n := 0
	for _, m := range client.Moods {
		if counts[m] > n {
			best, n = m, counts[m]
		}
	}
	return best, n
}

func (s *Server) handleDominant(w http.ResponseWriter, r *http.Request, acct *account) {
	p, entries, ok := s.periodMoods(w, r.URL.Query(), acct)
	if !ok {
		return
	}
	out := client.DominantMood{Period: p, HasData: len(entries) > 0}
	if out.HasData {
		out.Mood, out.Count = dominant(countMoods(entries))
		out.Percentage = float64(out.Count) * 100 / float64(len(entries))
	}
	WriteJSON(w, http.StatusOK, out)
}

var moodScore = map[client.Mood]float64{
	client.MoodHappy: 100, client.MoodExcited: 90, client.MoodCalm: 75, client.MoodNeutral: 50,
	client.MoodTired: 35, client.MoodAnxious: 25, client.MoodSad: 15, client.MoodAngry: 10,
}

func (s *Server) handleHappiness(w http.ResponseWriter, r *http.Request, acct *account) {
	p, entries, ok := s.periodMoods(w, r.URL.Query(), acct)
	if !ok {
		return
	}
	out := client.HappinessIndex{Period: p, HasData: len(entries) > 0}
	for _, e := range entries {
		out.Index += moodScore[e.Mood]
	}
	if out.HasData {
		out.Index /= float64(len(entries))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleFrequency(w http.ResponseWriter, r *http.Request, acct *account) {
	p, entries, ok := s.periodMoods(w, r.URL.Query(), acct)
	if !ok {
		return
	}
	WriteJSON(w, http.StatusOK, client.MoodFrequency{Period: p, HasData: len(entries) > 0, Counts: countMoods(entries), Total: len(entries)})
}

func (s *Server) handleThroughDay(w http.ResponseWriter, r *http.Request, acct *account) {
	p, entries, ok := s.periodMoods(w, r.URL.Query(), acct)
	if !ok {
		return
	}
	byHour := make(map[int][]client.MoodEntry)
	for _, e := range entries {
		byHour[e.CreatedAt.Hour()] = append(byHour[e.CreatedAt.Hour()], e)
	}
	out := client.ThroughDay{Period: p, HasData: len(entries) > 0}
	for h := 0; h < 24; h++ {
		if len(byHour[h]) == 0 {
			continue
		}
		m, n := dominant(countMoods(byHour[h]))
		out.Buckets = append(out.Buckets, client.ThroughDayBucket{Hour: h, Mood: m, Count: n})
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) allMoods() []client.MoodEntry {
	var all []client.MoodEntry
	for _, a := range s.accounts {
		all = append(all, a.moods...)
	}
	return all
}

func (s *Server) handleGlobal(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	all := s.allMoods()
	users := len(s.accounts)
	now := s.now().UTC()
	s.mu.Unlock()

	counts := countMoods(all)
	out := client.GlobalStats{TotalUsers: users, TotalMoods: len(all), Distribution: make(map[client.Mood]float64), UpdatedAt: now}
	out.DominantMood, _ = dominant(counts)
	for m, n := range counts {
		out.Distribution[m] = float64(n) * 100 / float64(len(all))
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) selectedMood(w http.ResponseWriter, r *http.Request) (client.Mood, []client.MoodEntry, []string, bool) {
	m := client.Mood(r.URL.Query().Get("mood"))
	if _, known := moodScore[m]; !known {
		WriteError(w, http.StatusBadRequest, "MOOD_INVALID", "unknown mood")
		return "", nil, nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []client.MoodEntry
	var countries []string
	for _, a := range s.accounts {
		for _, e := range a.moods {
			if e.Mood == m {
				matched = append(matched, e)
				countries = append(countries, a.user.Country)
			}
		}
	}
	return m, matched, countries, true
}

func (s *Server) handleSameToday(w http.ResponseWriter, r *http.Request, _ *account) {
	_, matched, _, ok := s.selectedMood(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	cutoff := s.now().Add(-24 * time.Hour)
	total := 0
	for _, e := range s.allMoods() {
		if e.CreatedAt.After(cutoff) {
			total++
		}
	}
	s.mu.Unlock()
	out := client.SameMoodToday{}
	for _, e := range matched {
		if e.CreatedAt.After(cutoff) {
			out.Count++
		}
	}
	out.HasData = out.Count > 0
	if total > 0 {
		out.Percentage = float64(out.Count) * 100 / float64(total)
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request, _ *account) {
	_, _, countries, ok := s.selectedMood(w, r)
	if !ok {
		return
	}
	counts := make(map[string]int)
	for _, c := range countries {
		if c != "" {
			counts[c]++
		}
	}
	out := client.SelectedMoodCountries{HasData: len(counts) > 0, Countries: []client.CountryShare{}}
	for c, n := range counts {
		out.Countries = append(out.Countries, client.CountryShare{Country: c, Percentage: float64(n) * 100 / float64(len(countries))})
	}
	sort.Slice(out.Countries, func(i, j int) bool { return out.Countries[i].Percentage > out.Countries[j].Percentage })
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleHours(w http.ResponseWriter, r *http.Request, _ *account) {
	_, matched, _, ok := s.selectedMood(w, r)
	if !ok {
		return
	}
	var hours [24]int
	for _, e := range matched {
		hours[e.CreatedAt.Hour()]++
	}
	out := client.SelectedMoodHours{HasData: len(matched) > 0, Hours: []client.HourCount{}}
	for h, n := range hours {
		if n > 0 {
			out.Hours = append(out.Hours, client.HourCount{Hour: h, Count: n})
		}
	}
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request, _ *account) {
	_, matched, _, ok := s.selectedMood(w, r)
	if !ok {
		return
	}
	byDay := make(map[string]int)
	for _, e := range matched {
		byDay[e.CreatedAt.Format("2006-01-02")]++
	}
	out := client.SelectedMoodTrend{HasData: len(byDay) > 0, Points: []client.TrendPoint{}}
	for d, n := range byDay {
		out.Points = append(out.Points, client.TrendPoint{Date: d, Count: n})
	}
	sort.Slice(out.Points, func(i, j int) bool { return out.Points[i].Date < out.Points[j].Date })
	WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleInsightsCurrent(w http.ResponseWriter, r *http.Request, acct *account) {
	s.serveInsight(w, acct, 1)
}

func (s *Server) handleInsightsPrevious(w http.ResponseWriter, r *http.Request, acct *account) {
	s.serveInsight(w, acct, 2)
}

// serveInsight writes the n-th newest report.
func (s *Server) serveInsight(w http.ResponseWriter, acct *account, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(acct.insights) < n {
		WriteError(w, http.StatusNotFound, "INSIGHTS_NOT_FOUND", "no report")
		return
	}
	WriteJSON(w, http.StatusOK, acct.insights[len(acct.insights)-n])
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request, acct *account) {
	s.mu.Lock()
	delay := s.generateDelay
	s.mu.Unlock()
	if delay > 0 {
		time.Sleep(delay)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if len(acct.moods) == 0 {
		WriteError(w, http.StatusUnprocessableEntity, "INSIGHTS_NOT_ENOUGH", "not enough moods")
		return
	}
	now := s.now().UTC()
	top, _ := dominant(countMoods(acct.moods))
	next := now.Add(48 * time.Hour)
	ins := client.Insights{
		ID:              uuid.NewString(),
		Summary:         "Your most frequent mood lately is " + string(top) + ".",
		Highlights:      []string{"You logged " + strconv.Itoa(len(acct.moods)) + " moods."},
		Recommendations: []string{"Keep logging daily to see clearer patterns."},
		GeneratedAt:     now,
		NextAvailableAt: &next,
	}
	acct.insights = append(acct.insights, ins)
	WriteJSON(w, http.StatusCreated, ins)
}
