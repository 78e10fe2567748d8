package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

type stubTranslator map[string]string

func (s stubTranslator) Message(code string, args ...any) string {
	if m, ok := s[code]; ok {
		if len(args) > 0 {
			return fmt.Sprintf(m, args...)
		}
		return m
	}
	return ""
}

var tr = stubTranslator{
	CodeNetworkError:   "Network error (HTTP %d)",
	CodeSessionExpired: "Your session has expired",
	CodeUnknown:        "Something went wrong",
	"MOOD_INVALID":     "That mood is not recognised",
}

func TestParseErrorBody(t *testing.T) {
	cases := []struct {
		body string
		code string
		ok   bool
	}{
		{`{"error":{"code":"MOOD_INVALID","message":"bad"}}`, "MOOD_INVALID", true},
		{`{"code":"EMAIL_TAKEN","message":"taken"}`, "EMAIL_TAKEN", true},
		{`{"detail":"nope"}`, "", false},
		{`<html>502</html>`, "", false},
		{``, "", false},
	}
	for _, c := range cases {
		code, _, ok := ParseErrorBody([]byte(c.body))
		if code != c.code || ok != c.ok {
			t.Fatalf("ParseErrorBody(%q) = %q,%v want %q,%v", c.body, code, ok, c.code, c.ok)
		}
	}
}

func TestFromStatus_Backend(t *testing.T) {
	err := FromStatus(http.StatusBadRequest, []byte(`{"error":{"code":"MOOD_INVALID"}}`), "create mood", tr)
	if err.Kind != KindBackend || err.Code != "MOOD_INVALID" {
		t.Fatalf("unexpected classification: %+v", err)
	}
	if err.Error() != "That mood is not recognised" {
		t.Fatalf("expected translated message, got %q", err.Error())
	}
}

func TestFromStatus_UnknownCodeFallsBackToServerMessage(t *testing.T) {
	err := FromStatus(http.StatusConflict, []byte(`{"code":"SOMETHING_NEW","message":"server says"}`), "op", tr)
	if err.Error() != "server says" {
		t.Fatalf("got %q", err.Error())
	}
	err = FromStatus(http.StatusConflict, []byte(`{"code":"SOMETHING_NEW"}`), "op", tr)
	if err.Error() != "Something went wrong" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestFromStatus_NonJSONIsNetworkError(t *testing.T) {
	err := FromStatus(http.StatusBadGateway, []byte("<html>bad gateway</html>"), "get stats", tr)
	if err.Kind != KindNetwork || err.StatusCode != http.StatusBadGateway {
		t.Fatalf("unexpected: %+v", err)
	}
	if err.Error() != "Network error (HTTP 502)" {
		t.Fatalf("got %q", err.Error())
	}
}

func TestFromStatus_TerminalAuth(t *testing.T) {
	for _, body := range []string{
		`{"error":{"code":"REFRESH_TOKEN_REVOKED"}}`,
		`not json`,
	} {
		err := FromStatus(http.StatusUnauthorized, []byte(body), "refresh", tr)
		if err.Kind != KindAuthExpired {
			t.Fatalf("expected auth expired for %q, got %v", body, err.Kind)
		}
		if !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired in chain")
		}
	}
}

func TestFromStatus_InvalidCredentialsIsNotSessionExpiry(t *testing.T) {
	err := FromStatus(http.StatusUnauthorized, []byte(`{"error":{"code":"INVALID_CREDENTIALS","message":"bad"}}`), "login", tr)
	if err.Kind != KindBackend {
		t.Fatalf("expected backend kind, got %v", err.Kind)
	}
	if errors.Is(err, ErrSessionExpired) {
		t.Fatal("credential failure must not look like session expiry")
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Fatal("nil is not user facing")
	}
	if IsUserFacing(fmt.Errorf("wrap: %w", ErrGenerationInProgress)) {
		t.Fatal("generation in progress must be filtered")
	}
	if !IsUserFacing(NewValidation("email", "Enter a valid email")) {
		t.Fatal("validation errors are user facing")
	}
	if !IsValidation(fmt.Errorf("x: %w", NewValidation("f", "m"))) {
		t.Fatal("IsValidation should unwrap")
	}
}

func TestIsTerminalAuthCode(t *testing.T) {
	for _, c := range []string{CodeRefreshTokenExpired, CodeRefreshTokenRevoked, CodeRefreshTokenInvalid} {
		if !IsTerminalAuthCode(c) {
			t.Fatalf("%s should be terminal", c)
		}
	}
	if IsTerminalAuthCode("RATE_LIMITED") {
		t.Fatal("RATE_LIMITED is not terminal")
	}
}
