// Package api holds one function per Moodly endpoint. Each validates its input,
// issues the request through a Doer and maps non-success responses to *errors.APIError.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	apierrors "github.com/moodly/moodly-client/client/internal/errors"
	"github.com/moodly/moodly-client/client/internal/transport"
)

// Doer is the transport used by every endpoint; *transport.Doer satisfies it.
type Doer interface {
	Request(ctx context.Context, method, path string, body any, opts ...transport.RequestOption) (*http.Response, error)
}

// Translator localizes error codes.
type Translator = apierrors.Translator

// call performs the request and decodes a JSON body into T when the status matches want.
func call[T any](ctx context.Context, d Doer, tr Translator, op, method, path string, body any, want int, opts ...transport.RequestOption) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	resp, err := d.Request(ctx, method, path, body, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != want {
		return nil, apierrors.FromResponse(resp, op, tr)
	}
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, apierrors.NewDecodeError(op, resp.StatusCode, err, tr)
	}
	return &out, nil
}

// callNoBody is call for endpoints whose success response carries nothing the SDK reads.
func callNoBody(ctx context.Context, d Doer, tr Translator, op, method, path string, body any, opts ...transport.RequestOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resp, err := d.Request(ctx, method, path, body, opts...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apierrors.FromResponse(resp, op, tr)
	}
	return nil
}
