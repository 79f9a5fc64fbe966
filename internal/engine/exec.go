// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/aletheiaproj/aletheia/internal/media"
)

// DefaultCommand is the verifier invoked by Exec when none is configured.
const DefaultCommand = "c2patool"

// waitDelay bounds how long a killed verifier may hold its output pipes.
const waitDelay = 2 * time.Second

// noProvenanceMarkers are output fragments (lowercased) the verifier prints
// when the media simply has no manifest.
var noProvenanceMarkers = []string{
	"no claim found",
	"no manifest",
	"jumbf not found",
	"manifest not found",
}

// Exec runs an external verifier binary. The media is written to a
// temporary file whose extension matches the media type, the file path is
// appended to Args and the manifest store is read from stdout.
type Exec struct {
	Command string
	Args    []string
	Timeout time.Duration
	TempDir string
	Logger  *zap.Logger
}

// NewExec creates an Exec for command with a no-op logger.
func NewExec(command string, args ...string) *Exec {
	if command == "" {
		command = DefaultCommand
	}
	return &Exec{
		Command: command,
		Args:    args,
		Logger:  zap.NewNop(),
	}
}

func (e *Exec) Name() string {
	return "exec:" + e.Command
}

func (e *Exec) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e *Exec) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	if len(data) == 0 {
		return "", ErrNoProvenance
	}

	path, cleanup, err := e.writeTemp(data, mediaType)
	if err != nil {
		return "", err
	}
	defer cleanup()

	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	args := append(append([]string{}, e.Args...), path)
	cmd := exec.CommandContext(ctx, e.Command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	start := time.Now()
	runErr := cmd.Run()
	e.logger().Debug("verifier finished",
		zap.String("command", e.Command),
		zap.String("media_type", mediaType),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Error(runErr),
	)

	out := strings.TrimSpace(stdout.String())
	if runErr == nil && out != "" {
		return out, nil
	}
	if mentionsNoProvenance(stderr.String()) || mentionsNoProvenance(out) {
		return "", ErrNoProvenance
	}
	if runErr == nil {
		return "", ErrNoProvenance
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", fmt.Errorf("verifier %q: %w", e.Command, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		return "", fmt.Errorf("verifier %q exited with code %d: %s", e.Command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
	}
	return "", fmt.Errorf("verifier %q failed: %w", e.Command, runErr)
}

func (e *Exec) writeTemp(data []byte, mediaType string) (string, func(), error) {
	f, err := os.CreateTemp(e.TempDir, "aletheia-*"+ExtensionFor(mediaType))
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	cleanup := func() { _ = os.Remove(f.Name()) }
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to close temp file: %w", err)
	}
	return f.Name(), cleanup, nil
}

// ExtensionFor returns the file extension the verifier expects for a media
// type, ".bin" when unknown.
func ExtensionFor(mediaType string) string {
	if ext, ok := media.Extension(mediaType); ok {
		return ext
	}
	return ".bin"
}

func mentionsNoProvenance(output string) bool {
	lower := strings.ToLower(output)
	for _, marker := range noProvenanceMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
