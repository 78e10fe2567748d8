package errors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Translator turns a machine code into a localized, user-displayable message.
type Translator interface {
	Message(code string, args ...any) string
}

// Message codes the SDK synthesizes itself.
const (
	CodeNetworkError   = "NETWORK_ERROR"
	CodeSessionExpired = "SESSION_EXPIRED"
	CodeUnknown        = "UNKNOWN_ERROR"

	// CodeInvalidCredentials is the login/register 401; it is not a session failure.
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

// errorBody accepts both {"error":{"code":..,"message":..}} and {"code":..,"message":..}.
type errorBody struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ParseErrorBody extracts the backend code and message from an error response body.
// ok is false when the body is not a JSON error document.
func ParseErrorBody(body []byte) (code, message string, ok bool) {
	var eb errorBody
	if err := json.Unmarshal(bytes.TrimSpace(body), &eb); err != nil {
		return "", "", false
	}
	if eb.Error != nil && eb.Error.Code != "" {
		return eb.Error.Code, eb.Error.Message, true
	}
	if eb.Code != "" {
		return eb.Code, eb.Message, true
	}
	return "", "", false
}

// FromResponse builds an APIError from a non-success response, consuming its body.
func FromResponse(resp *http.Response, op string, tr Translator) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	return FromStatus(resp.StatusCode, body, op, tr)
}

// FromStatus classifies an HTTP failure given its status and raw body.
func FromStatus(status int, body []byte, op string, tr Translator) *APIError {
	code, serverMsg, ok := ParseErrorBody(body)
	if !ok {
		if status == http.StatusUnauthorized {
			return sessionExpired(op, status, "", tr)
		}
		return &APIError{
			Kind:       KindNetwork,
			Op:         op,
			StatusCode: status,
			Message:    tr.Message(CodeNetworkError, status),
			Underlying: fmt.Errorf("%s failed: HTTP %d", op, status),
		}
	}
	if IsTerminalAuthCode(code) || (status == http.StatusUnauthorized && code != CodeInvalidCredentials) {
		return sessionExpired(op, status, code, tr)
	}
	msg := tr.Message(code)
	if msg == "" {
		msg = serverMsg
	}
	if msg == "" {
		msg = tr.Message(CodeUnknown)
	}
	return &APIError{
		Kind:       KindBackend,
		Op:         op,
		StatusCode: status,
		Code:       code,
		Message:    msg,
		Underlying: fmt.Errorf("%s failed: HTTP %d (%s)", op, status, code),
	}
}

// NewDecodeError is used when a success response carries an unparseable body.
func NewDecodeError(op string, status int, err error, tr Translator) *APIError {
	return &APIError{
		Kind:       KindNetwork,
		Op:         op,
		StatusCode: status,
		Message:    tr.Message(CodeNetworkError, status),
		Underlying: fmt.Errorf("%s decode: %w", op, err),
	}
}

func sessionExpired(op string, status int, code string, tr Translator) *APIError {
	return &APIError{
		Kind:       KindAuthExpired,
		Op:         op,
		StatusCode: status,
		Code:       code,
		Message:    tr.Message(CodeSessionExpired),
		Underlying: fmt.Errorf("%s: %w", op, ErrSessionExpired),
	}
}
