// Package assets stores uploaded print artwork. The remote store is an
// external service consumed over HTTP; every call against it is treated as
// best-effort by callers, with the local store as fallback.
package assets

import (
	"context"
	"errors"
	"io"
)

// ErrUnavailable is returned by a disabled remote store so callers take the
// local fallback path.
var ErrUnavailable = errors.New("assets: remote store unavailable")

// RemoteStore uploads and deletes assets in an external storage service.
type RemoteStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (ref string, err error)
	Delete(ctx context.Context, ref string) error
}

// NewRemote returns an HTTP-backed remote store, or a disabled one when the
// endpoint is not configured. Missing storage credentials degrade uploads to
// local files; they never prevent startup.
func NewRemote(baseURL, apiKey string) RemoteStore {
	if baseURL == "" {
		return disabled{}
	}
	return NewHTTP(baseURL, apiKey)
}

type disabled struct{}

func (disabled) Upload(ctx context.Context, name string, r io.Reader) (string, error) {
	return "", ErrUnavailable
}

func (disabled) Delete(ctx context.Context, ref string) error {
	return ErrUnavailable
}
