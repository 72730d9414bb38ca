package memory

import (
	"context"
	"sync"
	"time"
)

// PendingUnmuteTTL is how long a bot-issued unmute marker stays valid.
// The matching state-change event normally arrives well within this window.
const PendingUnmuteTTL = 5 * time.Second

// PendingUnmuteRegistry distinguishes bot-initiated unmutes from manual
// ones. The reconciler marks a (guild, user) pair right before issuing the
// platform unmute, and the next matching unmute event consumes the marker
// instead of being treated as a manual unmute.
type PendingUnmuteRegistry interface {
	// Mark that the bot is about to unmute a user
	Mark(ctx context.Context, guildID, userID int64)

	// Consume removes the marker and reports whether it was still valid.
	// A stale or absent marker returns false.
	Consume(ctx context.Context, guildID, userID int64) bool
}

type guildUser struct {
	guildID int64
	userID  int64
}

type pendingUnmuteRegistry struct {
	marks map[guildUser]time.Time
	mu    sync.Mutex
	now   func() time.Time
}

func NewPendingUnmuteRegistry() PendingUnmuteRegistry {
	return &pendingUnmuteRegistry{
		marks: make(map[guildUser]time.Time),
		now:   time.Now,
	}
}

func (r *pendingUnmuteRegistry) Mark(_ context.Context, guildID, userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.marks[guildUser{guildID, userID}] = r.now()
}

func (r *pendingUnmuteRegistry) Consume(_ context.Context, guildID, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := guildUser{guildID, userID}

	issuedAt, ok := r.marks[key]
	if !ok {
		return false
	}

	delete(r.marks, key)

	return r.now().Sub(issuedAt) < PendingUnmuteTTL
}
