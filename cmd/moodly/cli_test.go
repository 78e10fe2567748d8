package main

import (
	"strings"
	"testing"

	"github.com/moodly/moodly-client/internal/fakebackend"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	b := &strings.Builder{}
	root := NewRootCmd()
	root.SetOut(b)
	root.SetErr(b)
	root.SetArgs(args)
	err := root.Execute()
	return b.String(), err
}

func TestCLI_RegisterLogStatsLogout(t *testing.T) {
	srv := fakebackend.Start()
	defer srv.Close()
	common := []string{"--service-url", srv.URL(), "--state-dir", t.TempDir()}
	with := func(args ...string) []string { return append(append([]string{}, args...), common...) }

	out, err := run(t, with("register", "--email", "cli@example.com", "--password", "password1", "--country", "GB")...)
	if err != nil {
		t.Fatalf("register cmd failed: %v", err)
	}
	if !strings.Contains(out, "Registered cli@example.com") {
		t.Fatalf("unexpected output: %q", out)
	}

	if _, err := run(t, with("log-mood", "--mood", "happy", "--note", "sunny")...); err != nil {
		t.Fatalf("log-mood cmd failed: %v", err)
	}

	out, err = run(t, with("stats", "dominant", "--period", "today")...)
	if err != nil {
		t.Fatalf("stats cmd failed: %v", err)
	}
	if !strings.Contains(out, `"mood": "happy"`) {
		t.Fatalf("unexpected stats output: %q", out)
	}

	// Served from the persisted cache on the second run.
	if _, err := run(t, with("stats", "dominant", "--period", "today")...); err != nil {
		t.Fatalf("stats cmd failed: %v", err)
	}
	if got := srv.Calls(fakebackend.RouteDominant); got != 1 {
		t.Fatalf("expected 1 dominant call, got %d", got)
	}

	out, err = run(t, with("whoami")...)
	if err != nil || !strings.Contains(out, "cli@example.com") {
		t.Fatalf("whoami failed: %v %q", err, out)
	}

	out, err = run(t, with("logout")...)
	if err != nil || !strings.Contains(out, "Signed out") {
		t.Fatalf("logout failed: %v %q", err, out)
	}

	if _, err := run(t, with("whoami")...); err == nil {
		t.Fatalf("expected whoami to fail after logout")
	}
}

func TestCLI_ValidationErrorBeforeNetwork(t *testing.T) {
	srv := fakebackend.Start()
	defer srv.Close()

	_, err := run(t, "log-mood", "--mood", "meh", "--service-url", srv.URL(), "--state-dir", t.TempDir())
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if srv.Calls(fakebackend.RouteCreateMood) != 0 {
		t.Fatalf("invalid mood reached the backend")
	}
}

func TestCLI_DeleteAccountNeedsConfirmation(t *testing.T) {
	if _, err := run(t, "delete-account", "--state-dir", t.TempDir()); err == nil {
		t.Fatalf("expected confirmation error")
	}
}

func TestCLI_FlushLogoutNothingPending(t *testing.T) {
	srv := fakebackend.Start()
	defer srv.Close()
	out, err := run(t, "flush-logout", "--service-url", srv.URL(), "--state-dir", t.TempDir())
	if err != nil || !strings.Contains(out, "No pending logout") {
		t.Fatalf("unexpected: %v %q", err, out)
	}
}
