package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/application/metric"
	"github.com/roomwarden/roomwarden/internal/domain/models"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/memory"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
)

// Delayed unmute outcomes, used for logs and metrics.
const (
	unmuteOutcomeGlobal  = "aborted_global"
	unmuteOutcomeKept    = "kept_in_room"
	unmuteOutcomeCleared = "cleared"
)

type MuteUsecase interface {
	// HandleMuteDetected classifies a raw unmuted→muted transition: a
	// room-owner mute inside a managed room, or a global mute elsewhere.
	HandleMuteDetected(ctx context.Context, guildID, userID, channelID int64) error

	// HandleUnmuteDetected classifies a raw muted→unmuted transition,
	// ignoring the bot's own delayed unmutes.
	HandleUnmuteDetected(ctx context.Context, guildID, userID, channelID int64) error

	// HandleMutedMemberLeft schedules the delayed-unmute task when a
	// non-owner leaves while holding an active non-admin mute.
	HandleMutedMemberLeft(ctx context.Context, guildID, userID, channelID int64) error

	// ReapplyOnJoin restores the platform mute when the user re-enters a
	// room where their record is still active.
	ReapplyOnJoin(ctx context.Context, guildID, userID, channelID int64) error

	// MuteUser applies a mute on behalf of an owner or admin.
	MuteUser(ctx context.Context, guildID, channelID, mutedUserID, mutedByUserID int64, isAdminMute bool) error

	// UnmuteUser lifts a room mute. Returns false when the user held no
	// active record (closing twice is a no-op).
	UnmuteUser(ctx context.Context, guildID, channelID, userID int64) (bool, error)
}

type muteUsecase struct {
	muteRepo       repository.MuteRepository
	globalMuteRepo repository.GlobalMuteRepository
	roomRepo       repository.RoomRepository
	pending        memory.PendingUnmuteRegistry
	gateway        platform.Gateway

	grace time.Duration
	sleep func(context.Context, time.Duration)
}

func NewMuteUsecase(
	muteRepo repository.MuteRepository,
	globalMuteRepo repository.GlobalMuteRepository,
	roomRepo repository.RoomRepository,
	pending memory.PendingUnmuteRegistry,
	gateway platform.Gateway,
	grace time.Duration,
) MuteUsecase {
	return &muteUsecase{
		muteRepo:       muteRepo,
		globalMuteRepo: globalMuteRepo,
		roomRepo:       roomRepo,
		pending:        pending,
		gateway:        gateway,
		grace:          grace,
		sleep: func(ctx context.Context, d time.Duration) {
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
		},
	}
}

func (uc *muteUsecase) HandleMuteDetected(ctx context.Context, guildID, userID, channelID int64) error {
	room, err := uc.roomRepo.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}

	if room == nil {
		// Not a managed room: a moderator muted the user directly.
		if err := uc.globalMuteRepo.Record(ctx, guildID, userID); err != nil {
			return err
		}

		metric.MuteRecorded("global")

		slog.Info("recorded global mute", slog.Int64("guild_id", guildID), slog.Int64("user_id", userID))

		return nil
	}

	existing, err := uc.muteRepo.GetActive(ctx, channelID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	rec := &models.MuteRecord{
		GuildID:       guildID,
		ChannelID:     channelID,
		MutedUserID:   userID,
		MutedByUserID: room.OwnerID,
		IsAdminMute:   false,
	}

	if err := uc.muteRepo.Create(ctx, rec); err != nil {
		return err
	}

	metric.MuteRecorded("room")

	slog.Info("recorded room mute",
		slog.Int64("channel_id", channelID),
		slog.Int64("user_id", userID),
		slog.Int64("owner_id", room.OwnerID),
	)

	return nil
}

func (uc *muteUsecase) HandleUnmuteDetected(ctx context.Context, guildID, userID, channelID int64) error {
	if uc.pending.Consume(ctx, guildID, userID) {
		slog.Debug("ignoring bot-initiated unmute", slog.Int64("guild_id", guildID), slog.Int64("user_id", userID))

		return nil
	}

	// Manual unmute is room-scoped: only this room's record closes.
	closed, err := uc.muteRepo.Close(ctx, channelID, userID)
	if err != nil {
		return err
	}

	if closed {
		slog.Info("closed room mute on manual unmute",
			slog.Int64("channel_id", channelID),
			slog.Int64("user_id", userID),
		)
	}

	// Whoever unmuted had elevated permission, so a global mute no longer
	// stands either.
	cleared, err := uc.globalMuteRepo.Clear(ctx, guildID, userID)
	if err != nil {
		return err
	}

	if cleared {
		slog.Info("cleared global mute on manual unmute",
			slog.Int64("guild_id", guildID),
			slog.Int64("user_id", userID),
		)
	}

	return nil
}

func (uc *muteUsecase) HandleMutedMemberLeft(ctx context.Context, guildID, userID, channelID int64) error {
	rec, err := uc.muteRepo.GetActive(ctx, channelID, userID)
	if err != nil {
		return err
	}

	if rec == nil || rec.IsAdminMute {
		return nil
	}

	// Fire-and-forget with an id snapshot; never cancelled, all state is
	// re-evaluated after the grace delay.
	task := delayedUnmute{GuildID: guildID, UserID: userID, ChannelID: channelID}
	detached := context.WithoutCancel(ctx)

	go func() {
		uc.sleep(detached, uc.grace)
		uc.runDelayedUnmute(detached, task)
	}()

	return nil
}

// delayedUnmute is the immutable input snapshot of a deferred unmute check.
type delayedUnmute struct {
	GuildID   int64
	UserID    int64
	ChannelID int64
}

func (uc *muteUsecase) runDelayedUnmute(ctx context.Context, task delayedUnmute) {
	// A globally muted user is never unmuted by the bot.
	globallyMuted, err := uc.globalMuteRepo.IsActive(ctx, task.GuildID, task.UserID)
	if err != nil {
		slog.Error("check global mute", slog.Int64("user_id", task.UserID), slog.Any(constant.Error, err))
		// Assume muted on error: keeping a mute in place is the safe side.
		globallyMuted = true
	}

	if globallyMuted {
		metric.DelayedUnmute(unmuteOutcomeGlobal)

		slog.Debug("delayed unmute aborted, global mute active", slog.Int64("user_id", task.UserID))

		return
	}

	// The user may have hopped into another room where they are muted too.
	current, err := uc.gateway.CurrentRoom(ctx, task.GuildID, task.UserID)
	if err != nil {
		slog.Error("read current room", slog.Int64("user_id", task.UserID), slog.Any(constant.Error, err))
		current = 0
	}

	if current != 0 {
		active, err := uc.muteRepo.GetActive(ctx, current, task.UserID)
		if err != nil {
			slog.Error("check mute in current room", slog.Int64("user_id", task.UserID), slog.Any(constant.Error, err))
			active = nil
		}

		if active != nil {
			metric.DelayedUnmute(unmuteOutcomeKept)

			slog.Debug("delayed unmute aborted, muted in current room",
				slog.Int64("user_id", task.UserID),
				slog.Int64("channel_id", current),
			)

			return
		}
	}

	// Lift the platform restriction so the user can speak elsewhere, but
	// keep the record open: the original room still considers them muted
	// and the mute is reapplied if they return.
	uc.pending.Mark(ctx, task.GuildID, task.UserID)

	if err := uc.gateway.SetServerMute(ctx, task.GuildID, task.UserID, false); err != nil {
		slog.Error("lift server mute", slog.Int64("user_id", task.UserID), slog.Any(constant.Error, err))

		return
	}

	metric.DelayedUnmute(unmuteOutcomeCleared)

	slog.Debug("lifted server mute after grace delay", slog.Int64("user_id", task.UserID))
}

func (uc *muteUsecase) ReapplyOnJoin(ctx context.Context, guildID, userID, channelID int64) error {
	rec, err := uc.muteRepo.GetActive(ctx, channelID, userID)
	if err != nil {
		return err
	}

	if rec == nil {
		return nil
	}

	if err := uc.gateway.SetServerMute(ctx, guildID, userID, true); err != nil {
		slog.Error("reapply mute on join", slog.Int64("user_id", userID), slog.Any(constant.Error, err))

		return nil
	}

	slog.Debug("reapplied mute on join", slog.Int64("channel_id", channelID), slog.Int64("user_id", userID))

	return nil
}

func (uc *muteUsecase) MuteUser(ctx context.Context, guildID, channelID, mutedUserID, mutedByUserID int64, isAdminMute bool) error {
	if err := uc.gateway.SetServerMute(ctx, guildID, mutedUserID, true); err != nil {
		return fmt.Errorf("apply server mute: %w", err)
	}

	rec := &models.MuteRecord{
		GuildID:       guildID,
		ChannelID:     channelID,
		MutedUserID:   mutedUserID,
		MutedByUserID: mutedByUserID,
		IsAdminMute:   isAdminMute,
	}

	if err := uc.muteRepo.Create(ctx, rec); err != nil {
		return err
	}

	metric.MuteRecorded("room")

	slog.Info("muted user",
		slog.Int64("channel_id", channelID),
		slog.Int64("user_id", mutedUserID),
		slog.Int64("by_user_id", mutedByUserID),
		slog.Bool("admin", isAdminMute),
	)

	return nil
}

func (uc *muteUsecase) UnmuteUser(ctx context.Context, guildID, channelID, userID int64) (bool, error) {
	closed, err := uc.muteRepo.Close(ctx, channelID, userID)
	if err != nil {
		return false, err
	}

	if !closed {
		return false, nil
	}

	if err := uc.gateway.SetServerMute(ctx, guildID, userID, false); err != nil {
		return true, fmt.Errorf("lift server mute: %w", err)
	}

	slog.Info("unmuted user", slog.Int64("channel_id", channelID), slog.Int64("user_id", userID))

	return true, nil
}
