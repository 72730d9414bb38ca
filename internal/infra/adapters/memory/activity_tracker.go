package memory

import (
	"context"
	"sync"
	"time"
)

// ActivityTracker keeps per (room, user) sliding windows of join/leave
// timestamps for spam detection, plus the "already prompted" marks that
// keep owner prompts from repeating. State is never persisted and is
// dropped together with the room.
type ActivityTracker interface {
	// Record a join or leave event for a user in a room
	Record(ctx context.Context, channelID, userID int64, window time.Duration)

	// Count returns the number of in-window events for a user in a room
	Count(ctx context.Context, channelID, userID int64, window time.Duration) int

	// TrackedUsers returns the users with recorded activity in a room
	TrackedUsers(ctx context.Context, channelID int64) []int64

	// WasRecentlyPrompted reports whether the owner was prompted about the
	// user within the cooldown
	WasRecentlyPrompted(ctx context.Context, channelID, userID int64, cooldown time.Duration) bool

	// MarkPrompted records that the owner has been prompted about the user
	MarkPrompted(ctx context.Context, channelID, userID int64)

	// CleanupRoom drops all state for a deleted room
	CleanupRoom(ctx context.Context, channelID int64)
}

type activityTracker struct {
	activity map[int64]map[int64][]time.Time
	prompted map[int64]map[int64]time.Time
	mu       sync.Mutex
	now      func() time.Time
}

func NewActivityTracker() ActivityTracker {
	return &activityTracker{
		activity: make(map[int64]map[int64][]time.Time),
		prompted: make(map[int64]map[int64]time.Time),
		now:      time.Now,
	}
}

func (t *activityTracker) Record(_ context.Context, channelID, userID int64, window time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.activity[channelID]
	if !ok {
		users = make(map[int64][]time.Time)
		t.activity[channelID] = users
	}

	now := t.now()
	users[userID] = append(prune(users[userID], now, window), now)
}

func (t *activityTracker) Count(_ context.Context, channelID, userID int64, window time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.activity[channelID]
	if !ok {
		return 0
	}

	pruned := prune(users[userID], t.now(), window)
	users[userID] = pruned

	return len(pruned)
}

func (t *activityTracker) TrackedUsers(_ context.Context, channelID int64) []int64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	users := t.activity[channelID]

	ids := make([]int64, 0, len(users))
	for userID := range users {
		ids = append(ids, userID)
	}

	return ids
}

func (t *activityTracker) WasRecentlyPrompted(_ context.Context, channelID, userID int64, cooldown time.Duration) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.prompted[channelID]
	if !ok {
		return false
	}

	promptedAt, ok := users[userID]
	if !ok {
		return false
	}

	return t.now().Sub(promptedAt) < cooldown
}

func (t *activityTracker) MarkPrompted(_ context.Context, channelID, userID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	users, ok := t.prompted[channelID]
	if !ok {
		users = make(map[int64]time.Time)
		t.prompted[channelID] = users
	}

	users[userID] = t.now()
}

func (t *activityTracker) CleanupRoom(_ context.Context, channelID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.activity, channelID)
	delete(t.prompted, channelID)
}

// prune drops timestamps that fell out of the rolling window.
func prune(stamps []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)

	i := 0
	for i < len(stamps) && stamps[i].Before(cutoff) {
		i++
	}

	return stamps[i:]
}
