// SPDX-License-Identifier: Apache-2.0

// Package stats counts verifications and how many of them found content
// credentials.
package stats

import (
	"context"
	"math"
	"sync"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

// Stats are running totals.
type Stats struct {
	ImagesChecked    int64 `json:"images_checked" yaml:"images_checked"`
	CredentialsFound int64 `json:"credentials_found" yaml:"credentials_found"`
}

// Add returns s updated with one verification outcome. Every outcome counts
// as checked; only outcomes that found a provenance record count as found.
func (s Stats) Add(status provenance.StatusCode) Stats {
	s.ImagesChecked++
	if status.HasCredentials() {
		s.CredentialsFound++
	}
	return s
}

// SuccessRate is the percentage of checked images with credentials,
// rounded to one decimal place.
func (s Stats) SuccessRate() float64 {
	if s.ImagesChecked == 0 {
		return 0
	}
	rate := float64(s.CredentialsFound) / float64(s.ImagesChecked) * 100
	return math.Round(rate*10) / 10
}

// Store persists Stats.
type Store interface {
	Load(ctx context.Context) (Stats, error)
	Record(ctx context.Context, status provenance.StatusCode) (Stats, error)
	Close() error
}

// Memory keeps Stats for the lifetime of the process.
type Memory struct {
	mu    sync.Mutex
	stats Stats
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Load(context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stats, nil
}

func (m *Memory) Record(_ context.Context, status provenance.StatusCode) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = m.stats.Add(status)
	return m.stats, nil
}

func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
