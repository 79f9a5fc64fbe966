// SPDX-License-Identifier: Apache-2.0

// Package engine adapts trust verification engines: the collaborators that
// decode a media container, locate its embedded provenance record and
// verify signatures and certificate chains. An engine hands back the
// verified manifest store as JSON text.
package engine

import (
	"context"
	"errors"
)

// ErrNoProvenance reports media that carries no provenance record. It is a
// normal outcome, not a failure.
var ErrNoProvenance = errors.New("no provenance data present")

// Engine extracts the verified manifest store from media bytes.
//
// Extract returns the manifest store as JSON text, ErrNoProvenance (possibly
// wrapped) when the media has no record, or any other error when extraction
// failed.
type Engine interface {
	Extract(ctx context.Context, data []byte, mediaType string) (string, error)
	Name() string
}

// Static is an Engine returning a fixed outcome. It backs manifest
// normalization when the manifest text is already at hand.
type Static struct {
	Manifest string
	Err      error
}

func (s Static) Extract(_ context.Context, _ []byte, _ string) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Manifest, nil
}

func (s Static) Name() string {
	return "static"
}

type sourcePathKey struct{}

// WithSourcePath records the path the media was read from, for engines
// that locate data relative to it.
func WithSourcePath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, sourcePathKey{}, path)
}

// SourcePath returns the path set by WithSourcePath, or "".
func SourcePath(ctx context.Context) string {
	path, _ := ctx.Value(sourcePathKey{}).(string)
	return path
}
