// SPDX-License-Identifier: Apache-2.0

package cache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/aletheiaproj/aletheia/internal/provenance"
)

// Memory is an in-process cache bounded to maxEntries, evicting the oldest
// insertion first.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	now        func() time.Time
}

type memoryEntry struct {
	key       string
	value     provenance.VerificationResult
	expiresAt time.Time
	hasExpiry bool
}

// NewMemory creates a Memory cache. maxEntries <= 0 means unbounded; a nil
// now uses time.Now.
func NewMemory(maxEntries int, now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		now:        now,
	}
}

func (c *Memory) Get(_ context.Context, key string) (*provenance.VerificationResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	entry := elem.Value.(*memoryEntry)
	if entry.hasExpiry && c.now().After(entry.expiresAt) {
		c.remove(elem)
		return nil, false, nil
	}
	value := entry.value
	return &value, true, nil
}

func (c *Memory) Put(_ context.Context, key string, value provenance.VerificationResult, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry := &memoryEntry{key: key, value: value}
	if ttl > 0 {
		entry.hasExpiry = true
		entry.expiresAt = c.now().Add(ttl)
	}
	if elem, ok := c.entries[key]; ok {
		c.remove(elem)
	}
	c.entries[key] = c.order.PushBack(entry)
	for c.maxEntries > 0 && c.order.Len() > c.maxEntries {
		c.remove(c.order.Front())
	}
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Memory) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

func (c *Memory) remove(elem *list.Element) {
	entry := c.order.Remove(elem).(*memoryEntry)
	delete(c.entries, entry.key)
}

var _ Cache = (*Memory)(nil)
