// SPDX-License-Identifier: Apache-2.0

package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultMaxFetchBytes bounds the size of a fetched image.
	DefaultMaxFetchBytes int64 = 32 << 20

	defaultFetchTimeout = 30 * time.Second
)

// ErrTooLarge is returned when a fetched body exceeds the configured limit.
var ErrTooLarge = errors.New("image exceeds size limit")

// FetchError reports a non-2xx response from the image host.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("Failed to fetch image: %d", e.StatusCode)
}

// FailureMessage renders a fetch error the way it is reported in a result.
func FailureMessage(err error) string {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Error()
	}
	return "Failed to fetch image: " + err.Error()
}

// IsURL reports whether s is an http or https URL rather than a file path.
func IsURL(s string) bool {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetcher downloads images over HTTP.
type Fetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// NewFetcher returns a Fetcher using client, or a client with a default
// timeout when client is nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	return &Fetcher{Client: client, MaxBytes: DefaultMaxFetchBytes}
}

// Fetch GETs rawURL and returns the body. A non-2xx status yields a
// *FetchError; a body larger than MaxBytes yields ErrTooLarge.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, 4<<10)
		return nil, &FetchError{StatusCode: resp.StatusCode}
	}

	limit := f.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxFetchBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("%w of %d bytes", ErrTooLarge, limit)
	}
	return body, nil
}
