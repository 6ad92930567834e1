package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"cso2web/pkg/models"
)

const (
	// DefaultSize is the maximum number of cached users.
	DefaultSize = 100
	// DefaultTTL is how long a cached user stays valid.
	DefaultTTL = 15 * time.Second
)

// UserCache is a bounded, time-expiring read cache in front of user lookups.
//
// Entries are snapshots keyed by user ID. There is no write-through, no
// negative caching and no active invalidation; the staleness bound is purely
// the TTL. At capacity the least-recently-used entry is evicted first.
type UserCache struct {
	lru *expirable.LRU[int, *models.User]
}

// New creates a cache with the default size and TTL policy.
func New() *UserCache {
	return NewWithPolicy(DefaultSize, DefaultTTL)
}

// NewWithPolicy creates a cache with an explicit size and TTL.
func NewWithPolicy(size int, ttl time.Duration) *UserCache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &UserCache{
		lru: expirable.NewLRU[int, *models.User](size, nil, ttl),
	}
}

// Get returns the cached snapshot for userID, or nil on a miss.
// An entry past its TTL is treated as a miss.
func (c *UserCache) Get(userID int) *models.User {
	user, ok := c.lru.Get(userID)
	if !ok {
		return nil
	}
	return user
}

// Set inserts or overwrites the snapshot for userID, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *UserCache) Set(userID int, user *models.User) {
	c.lru.Add(userID, user)
}

// Len returns the number of live entries.
func (c *UserCache) Len() int {
	return c.lru.Len()
}
