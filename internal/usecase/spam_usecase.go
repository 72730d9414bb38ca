package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roomwarden/roomwarden/internal/application/config"
	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/application/metric"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/memory"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
)

type SpamUsecase interface {
	// RecordJoin and RecordLeave feed the per (room, user) sliding window.
	RecordJoin(ctx context.Context, channelID, userID int64)
	RecordLeave(ctx context.Context, channelID, userID int64)

	// CheckSpam scans every tracked user of the room and escalates or
	// prompts according to the in-window event count.
	CheckSpam(ctx context.Context, guildID, channelID, ownerID int64) error

	// ResetLevel drops a user's escalation level, an external reset action.
	ResetLevel(ctx context.Context, guildID, userID int64) error

	// ResetStaleLevels zeroes every level older than the good-behavior
	// window; run periodically.
	ResetStaleLevels(ctx context.Context) (int64, error)
}

type spamUsecase struct {
	tracker  memory.ActivityTracker
	spamRepo repository.SpamRepository
	gateway  platform.Gateway
	notifier platform.Notifier

	cfg config.SpamConfig
	now func() time.Time
}

func NewSpamUsecase(
	tracker memory.ActivityTracker,
	spamRepo repository.SpamRepository,
	gateway platform.Gateway,
	notifier platform.Notifier,
	cfg config.SpamConfig,
) SpamUsecase {
	return &spamUsecase{
		tracker:  tracker,
		spamRepo: spamRepo,
		gateway:  gateway,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (uc *spamUsecase) RecordJoin(ctx context.Context, channelID, userID int64) {
	uc.tracker.Record(ctx, channelID, userID, uc.cfg.Window())
}

func (uc *spamUsecase) RecordLeave(ctx context.Context, channelID, userID int64) {
	uc.tracker.Record(ctx, channelID, userID, uc.cfg.Window())
}

func (uc *spamUsecase) CheckSpam(ctx context.Context, guildID, channelID, ownerID int64) error {
	for _, userID := range uc.tracker.TrackedUsers(ctx, channelID) {
		count := uc.tracker.Count(ctx, channelID, userID, uc.cfg.Window())

		switch {
		case count >= uc.cfg.TimeoutThreshold:
			if err := uc.escalate(ctx, guildID, userID); err != nil {
				return err
			}
		case count >= uc.cfg.PromptThreshold:
			uc.promptOwner(ctx, channelID, ownerID, userID)
		}
	}

	return nil
}

func (uc *spamUsecase) escalate(ctx context.Context, guildID, userID int64) error {
	status, err := uc.spamRepo.Get(ctx, guildID, userID)
	if err != nil {
		return err
	}

	// Good behavior decays the level before the new infraction counts.
	if status != nil && status.ShouldReset(uc.resetAfter(), uc.now()) {
		if err := uc.spamRepo.ResetLevel(ctx, guildID, userID); err != nil {
			return err
		}
	}

	status, err = uc.spamRepo.IncrementInfraction(ctx, guildID, userID)
	if err != nil {
		return err
	}

	duration := constant.TimeoutDuration(status.CurrentLevel)
	until := uc.now().Add(duration)

	slog.Info("applying spam timeout",
		slog.Int64("guild_id", guildID),
		slog.Int64("user_id", userID),
		slog.Int("level", status.CurrentLevel),
		slog.Duration("duration", duration),
	)

	if err := uc.gateway.TimeoutMember(ctx, guildID, userID, until); err != nil {
		slog.Warn("apply platform timeout", slog.Int64("user_id", userID), slog.Any(constant.Error, err))

		return nil
	}

	metric.SpamTimeoutApplied()

	return nil
}

func (uc *spamUsecase) promptOwner(ctx context.Context, channelID, ownerID, userID int64) {
	if uc.tracker.WasRecentlyPrompted(ctx, channelID, userID, uc.cfg.PromptCooldown()) {
		return
	}

	if err := uc.notifier.SendRoomMessage(ctx, channelID, spamPromptMessage(ownerID, userID)); err != nil {
		slog.Debug("send spam prompt", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))

		return
	}

	uc.tracker.MarkPrompted(ctx, channelID, userID)

	metric.SpamPromptSent()
}

func (uc *spamUsecase) ResetLevel(ctx context.Context, guildID, userID int64) error {
	if err := uc.spamRepo.ResetLevel(ctx, guildID, userID); err != nil {
		return fmt.Errorf("reset spam level: %w", err)
	}

	return nil
}

func (uc *spamUsecase) ResetStaleLevels(ctx context.Context) (int64, error) {
	return uc.spamRepo.ResetStale(ctx, uc.now().Add(-uc.resetAfter()))
}

func (uc *spamUsecase) resetAfter() time.Duration {
	return time.Duration(uc.cfg.ResetDays) * 24 * time.Hour
}
