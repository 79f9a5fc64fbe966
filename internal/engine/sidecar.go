// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// SidecarSuffix is appended to a media path to find its pre-extracted
// manifest store.
const SidecarSuffix = ".c2pa.json"

// Sidecar reads a manifest store that a verifier already extracted next to
// the media file. MediaPath binds it to one file; when empty the path is
// taken from the context (see WithSourcePath).
type Sidecar struct {
	MediaPath string
}

func (s Sidecar) Name() string {
	return "sidecar"
}

func (s Sidecar) Extract(ctx context.Context, _ []byte, _ string) (string, error) {
	mediaPath := s.MediaPath
	if mediaPath == "" {
		mediaPath = SourcePath(ctx)
	}
	if mediaPath == "" {
		return "", fmt.Errorf("%w: no media path to locate a sidecar", ErrNoProvenance)
	}
	path := mediaPath + SidecarSuffix
	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: no sidecar at %s", ErrNoProvenance, path)
		}
		return "", fmt.Errorf("failed to read sidecar: %w", err)
	}
	text := strings.TrimSpace(string(content))
	if text == "" {
		return "", fmt.Errorf("%w: empty sidecar %s", ErrNoProvenance, path)
	}
	return text, nil
}
