// SPDX-License-Identifier: Apache-2.0

// Package batch verifies many media files or URLs concurrently.
package batch

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/aletheiaproj/aletheia/internal/media"
	"github.com/aletheiaproj/aletheia/internal/provenance"
)

// DefaultConcurrency bounds in-flight verifications when none is given.
const DefaultConcurrency = 4

// Verifier verifies one piece of media.
type Verifier interface {
	Verify(ctx context.Context, src provenance.MediaSource) provenance.VerificationResult
}

// Item is one file or URL of a batch and, after Run, its result.
type Item struct {
	Path      string                        `json:"path" yaml:"path"`
	MediaType string                        `json:"-" yaml:"-"`
	Result    provenance.VerificationResult `json:"result" yaml:"result"`
}

// ReadFunc loads the bytes of one item.
type ReadFunc func(ctx context.Context, path string) ([]byte, error)

// Reader returns a ReadFunc that fetches http(s) URLs with f and reads
// everything else from disk.
func Reader(f *media.Fetcher) ReadFunc {
	return func(ctx context.Context, path string) ([]byte, error) {
		if media.IsURL(path) {
			return f.Fetch(ctx, path)
		}
		return os.ReadFile(path)
	}
}

// Run verifies every item with at most concurrency verifications in flight
// and returns the items in input order. An item that cannot be read or
// fetched gets an error result; the other items are unaffected.
func Run(ctx context.Context, v Verifier, items []Item, concurrency int) []Item {
	return RunWithReader(ctx, v, items, concurrency, Reader(media.NewFetcher(nil)))
}

// RunWithReader is Run with a custom reader.
func RunWithReader(ctx context.Context, v Verifier, items []Item, concurrency int, read ReadFunc) []Item {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	out := make([]Item, len(items))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range items {
		g.Go(func() error {
			out[i] = verifyOne(gctx, v, item, read)
			return nil
		})
	}
	// Workers never return errors; every failure is captured in a result.
	_ = g.Wait()
	return out
}

func verifyOne(ctx context.Context, v Verifier, item Item, read ReadFunc) Item {
	if err := ctx.Err(); err != nil {
		item.Result = provenance.ErrorResult(fmt.Sprintf("verification of %s cancelled: %v", item.Path, err))
		return item
	}
	data, err := read(ctx, item.Path)
	switch {
	case err != nil && media.IsURL(item.Path):
		item.Result = provenance.ErrorResult(media.FailureMessage(err))
		return item
	case err != nil:
		item.Result = provenance.ErrorResult(fmt.Sprintf("failed to read %s: %v", item.Path, err))
		return item
	}
	item.Result = v.Verify(ctx, provenance.MediaSource{
		Content:   data,
		MediaType: item.MediaType,
		ID:        item.Path,
	})
	return item
}

// Paths builds items for paths sharing one declared media type.
func Paths(paths []string, mediaType string) []Item {
	items := make([]Item, len(paths))
	for i, p := range paths {
		items[i] = Item{Path: p, MediaType: mediaType}
	}
	return items
}
