package memory

import (
	"context"
	"sync"
)

// OwnershipCache is the fast-path answer to "who owns this room". It is
// eventually consistent with the persistent store: entries are written only
// after a successful store write, never before.
type OwnershipCache interface {
	// Set the owner of a room
	Set(ctx context.Context, channelID, ownerID int64)

	// Owner returns the cached owner of a room
	Owner(ctx context.Context, channelID int64) (int64, bool)

	// IsOwner reports whether userID is the cached owner of a room
	IsOwner(ctx context.Context, channelID, userID int64) bool

	// Remove a room from the cache
	Remove(ctx context.Context, channelID int64)

	// Len returns the number of cached rooms
	Len(ctx context.Context) int
}

type ownershipCache struct {
	owners map[int64]int64
	mu     sync.RWMutex
}

func NewOwnershipCache() OwnershipCache {
	return &ownershipCache{
		owners: make(map[int64]int64),
	}
}

func (c *ownershipCache) Set(_ context.Context, channelID, ownerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.owners[channelID] = ownerID
}

func (c *ownershipCache) Owner(_ context.Context, channelID int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ownerID, exists := c.owners[channelID]

	return ownerID, exists
}

func (c *ownershipCache) IsOwner(ctx context.Context, channelID, userID int64) bool {
	ownerID, exists := c.Owner(ctx, channelID)

	return exists && ownerID == userID
}

func (c *ownershipCache) Remove(_ context.Context, channelID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.owners, channelID)
}

func (c *ownershipCache) Len(_ context.Context) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.owners)
}
