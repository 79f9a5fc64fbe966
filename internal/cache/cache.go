// SPDX-License-Identifier: Apache-2.0

// Package cache stores verification results keyed by media content.
// Verification is deterministic for identical bytes and media type, so a
// cached result is interchangeable with a fresh one.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

// Cache is a result store. Implementations are safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (*provenance.VerificationResult, bool, error)
	Put(ctx context.Context, key string, value provenance.VerificationResult, ttl time.Duration) error
}

// Key derives the cache key for media content.
func Key(data []byte, mediaType string) string {
	h := sha256.New()
	h.Write([]byte(mediaType))
	h.Write([]byte{0})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Cacheable reports whether a result may be stored. Error results depend on
// the environment (missing verifier, timeouts) rather than the content.
func Cacheable(r provenance.VerificationResult) bool {
	return r.Status != provenance.StatusError
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string) (*provenance.VerificationResult, bool, error) {
	return nil, false, nil
}

func (Nop) Put(context.Context, string, provenance.VerificationResult, time.Duration) error {
	return nil
}
