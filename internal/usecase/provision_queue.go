package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/application/metric"
	"github.com/roomwarden/roomwarden/internal/domain/models"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
)

// CreationRequest is one user waiting in a trigger channel.
type CreationRequest struct {
	GuildID          int64
	UserID           int64
	TriggerChannelID int64
	Kind             models.RoomKind
}

// ProvisionQueue serializes room creation: producers enqueue without ever
// blocking, a single worker drains at a fixed cadence. This is the only
// true serialization point in the system.
type ProvisionQueue struct {
	lifecycle    LifecycleUsecase
	gateway      platform.Gateway
	guildCfgRepo repository.GuildConfigRepository

	delay time.Duration

	mu      sync.Mutex
	backlog []CreationRequest
	wake    chan struct{}
}

func NewProvisionQueue(
	lifecycle LifecycleUsecase,
	gateway platform.Gateway,
	guildCfgRepo repository.GuildConfigRepository,
	delay time.Duration,
) *ProvisionQueue {
	return &ProvisionQueue{
		lifecycle:    lifecycle,
		gateway:      gateway,
		guildCfgRepo: guildCfgRepo,
		delay:        delay,
		wake:         make(chan struct{}, 1),
	}
}

// Enqueue appends a request to the unbounded backlog and returns
// immediately.
func (q *ProvisionQueue) Enqueue(req CreationRequest) {
	q.mu.Lock()
	q.backlog = append(q.backlog, req)
	depth := len(q.backlog)
	q.mu.Unlock()

	metric.SetProvisionQueueDepth(depth)

	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the current backlog depth.
func (q *ProvisionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.backlog)
}

func (q *ProvisionQueue) pop() (CreationRequest, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.backlog) == 0 {
		return CreationRequest{}, false
	}

	req := q.backlog[0]
	q.backlog = q.backlog[1:]

	metric.SetProvisionQueueDepth(len(q.backlog))

	return req, true
}

// Run drains the queue until the context is cancelled.
func (q *ProvisionQueue) Run(ctx context.Context) {
	slog.Info("provisioning queue worker started")

	for {
		req, ok := q.pop()
		if !ok {
			select {
			case <-ctx.Done():
				slog.Info("provisioning queue worker stopped")
				return
			case <-q.wake:
				continue
			}
		}

		q.process(ctx, req)

		// Fixed inter-creation delay bounds the room creation rate
		// regardless of burst size.
		select {
		case <-ctx.Done():
			slog.Info("provisioning queue worker stopped")
			return
		case <-time.After(q.delay):
		}
	}
}

func (q *ProvisionQueue) process(ctx context.Context, req CreationRequest) {
	// Membership may have changed while the request sat in the backlog.
	current, err := q.gateway.CurrentRoom(ctx, req.GuildID, req.UserID)
	if err != nil {
		slog.Error("verify trigger membership", slog.Int64("user_id", req.UserID), slog.Any(constant.Error, err))

		return
	}

	if current != req.TriggerChannelID {
		slog.Warn("dropping stale creation request",
			slog.Int64("user_id", req.UserID),
			slog.Int64("trigger_id", req.TriggerChannelID),
		)

		return
	}

	err = q.lifecycle.StartCreationFlow(ctx, req.GuildID, req.UserID, req.Kind)
	switch {
	case errors.Is(err, models.ErrNotConfigured):
		slog.Warn("creation flow skipped, guild not configured", slog.Int64("guild_id", req.GuildID))
	case err != nil:
		slog.Error("creation flow failed",
			slog.Int64("guild_id", req.GuildID),
			slog.Int64("user_id", req.UserID),
			slog.Any(constant.Error, err),
		)
	}
}

// StartupSweep enqueues every non-bot user already sitting in a trigger
// channel when the app comes up.
func (q *ProvisionQueue) StartupSweep(ctx context.Context) (int, error) {
	cfgs, err := q.guildCfgRepo.ListConfigured(ctx)
	if err != nil {
		return 0, err
	}

	var queued int

	for _, cfg := range cfgs {
		for _, kind := range []models.RoomKind{models.KindCasual, models.KindFocus} {
			if !cfg.Configured(kind) {
				continue
			}

			triggerID := *cfg.TriggerID(kind)

			members, err := q.gateway.RoomMembers(ctx, cfg.GuildID, triggerID)
			if err != nil {
				slog.Error("sweep trigger channel", slog.Int64("trigger_id", triggerID), slog.Any(constant.Error, err))
				continue
			}

			for _, m := range members {
				if m.IsBot {
					continue
				}

				q.Enqueue(CreationRequest{
					GuildID:          cfg.GuildID,
					UserID:           m.UserID,
					TriggerChannelID: triggerID,
					Kind:             kind,
				})
				queued++
			}
		}
	}

	slog.Info("startup sweep queued waiting users", slog.Int("count", queued))

	return queued, nil
}
