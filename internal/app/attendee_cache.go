package app

import (
	"sync"
	"time"

	"events_notifier/internal/domain/attendee"

	"github.com/google/uuid"
)

// AttendeeCacheConfig holds configuration for the attendee cache
type AttendeeCacheConfig struct {
	TTL        time.Duration // How long entries stay valid
	MaxEntries int           // Maximum number of cached events
}

var DefaultAttendeeCacheConfig = AttendeeCacheConfig{
	TTL:        time.Minute,
	MaxEntries: 1000,
}

type attendeeEntry struct {
	attendees []*attendee.Attendee
	expiresAt time.Time
	storedAt  time.Time
}

// AttendeeCache keeps the attendee list of recently read events. It is owned
// by the service that reads through it.
type AttendeeCache struct {
	mu         sync.Mutex
	entries    map[uuid.UUID]*attendeeEntry
	ttl        time.Duration
	maxEntries int
	now        Clock
}

func NewAttendeeCache(cfg AttendeeCacheConfig, now Clock) *AttendeeCache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultAttendeeCacheConfig.TTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultAttendeeCacheConfig.MaxEntries
	}
	if now == nil {
		now = systemClock
	}
	return &AttendeeCache{
		entries:    make(map[uuid.UUID]*attendeeEntry),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		now:        now,
	}
}

// Get returns the cached attendees of an event if present and not expired.
func (c *AttendeeCache) Get(eventID uuid.UUID) ([]*attendee.Attendee, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[eventID]
	if !ok {
		return nil, false
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, eventID)
		return nil, false
	}
	return entry.attendees, true
}

func (c *AttendeeCache) Set(eventID uuid.UUID, attendees []*attendee.Attendee) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if _, ok := c.entries[eventID]; !ok && len(c.entries) >= c.maxEntries {
		c.evictLocked(now)
	}
	c.entries[eventID] = &attendeeEntry{
		attendees: attendees,
		expiresAt: now.Add(c.ttl),
		storedAt:  now,
	}
}

func (c *AttendeeCache) Invalidate(eventID uuid.UUID) {
	c.mu.Lock()
	delete(c.entries, eventID)
	c.mu.Unlock()
}

func (c *AttendeeCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictLocked drops expired entries, then the oldest one if the cache is
// still full.
func (c *AttendeeCache) evictLocked(now time.Time) {
	var (
		oldestID uuid.UUID
		oldestAt time.Time
	)
	for id, entry := range c.entries {
		if !now.Before(entry.expiresAt) {
			delete(c.entries, id)
			continue
		}
		if oldestAt.IsZero() || entry.storedAt.Before(oldestAt) {
			oldestID, oldestAt = id, entry.storedAt
		}
	}
	if len(c.entries) >= c.maxEntries {
		delete(c.entries, oldestID)
	}
}
