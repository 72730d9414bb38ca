package usecase

import (
	"context"
	"log/slog"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/domain/events"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
)

// VoiceUsecase routes every membership-change event from the platform to
// the mute reconciler, the lifecycle coordinator and the spam detector.
// Handler errors are logged, never propagated: the event loop must keep
// draining.
type VoiceUsecase interface {
	HandleVoiceStateUpdate(ctx context.Context, update events.VoiceStateUpdate)
}

type voiceUsecase struct {
	mute         MuteUsecase
	lifecycle    LifecycleUsecase
	spam         SpamUsecase
	queue        *ProvisionQueue
	roomRepo     repository.RoomRepository
	guildCfgRepo repository.GuildConfigRepository
}

func NewVoiceUsecase(
	mute MuteUsecase,
	lifecycle LifecycleUsecase,
	spam SpamUsecase,
	queue *ProvisionQueue,
	roomRepo repository.RoomRepository,
	guildCfgRepo repository.GuildConfigRepository,
) VoiceUsecase {
	return &voiceUsecase{
		mute:         mute,
		lifecycle:    lifecycle,
		spam:         spam,
		queue:        queue,
		roomRepo:     roomRepo,
		guildCfgRepo: guildCfgRepo,
	}
}

func (uc *voiceUsecase) HandleVoiceStateUpdate(ctx context.Context, update events.VoiceStateUpdate) {
	old := update.Old
	state := update.New

	// Mute-flag transitions are only meaningful while the user stays in
	// the same channel; a channel hop would otherwise read as a mute event.
	if state.ChannelID != nil && old != nil && old.InChannel(*state.ChannelID) {
		switch {
		case !old.Muted && state.Muted:
			if err := uc.mute.HandleMuteDetected(ctx, state.GuildID, state.UserID, *state.ChannelID); err != nil {
				slog.Error("handle mute", slog.Int64("user_id", state.UserID), slog.Any(constant.Error, err))
			}
		case old.Muted && !state.Muted:
			if err := uc.mute.HandleUnmuteDetected(ctx, state.GuildID, state.UserID, *state.ChannelID); err != nil {
				slog.Error("handle unmute", slog.Int64("user_id", state.UserID), slog.Any(constant.Error, err))
			}
		}
	}

	// Join: the channel actually changed.
	if state.ChannelID != nil && (old == nil || !old.InChannel(*state.ChannelID)) {
		uc.handleJoin(ctx, state, *state.ChannelID)
	}

	// Leave: gone from the old channel, whether hopped or disconnected.
	if old != nil && old.ChannelID != nil && !state.InChannel(*old.ChannelID) {
		uc.handleLeave(ctx, state, *old.ChannelID)
	}
}

func (uc *voiceUsecase) handleJoin(ctx context.Context, state events.VoiceState, channelID int64) {
	cfg, kind, err := uc.guildCfgRepo.FindByTrigger(ctx, channelID)
	if err != nil {
		slog.Error("resolve trigger channel", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))

		return
	}

	if cfg != nil {
		if state.IsBot {
			return
		}

		uc.queue.Enqueue(CreationRequest{
			GuildID:          state.GuildID,
			UserID:           state.UserID,
			TriggerChannelID: channelID,
			Kind:             kind,
		})

		return
	}

	room, err := uc.roomRepo.Get(ctx, channelID)
	if err != nil {
		slog.Error("get room on join", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))

		return
	}
	if room == nil {
		return
	}

	uc.spam.RecordJoin(ctx, channelID, state.UserID)

	if err := uc.spam.CheckSpam(ctx, state.GuildID, channelID, room.OwnerID); err != nil {
		slog.Error("check spam", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))
	}

	// A user muted in this room before stays muted when they come back.
	if err := uc.mute.ReapplyOnJoin(ctx, state.GuildID, state.UserID, channelID); err != nil {
		slog.Error("reapply mute", slog.Int64("user_id", state.UserID), slog.Any(constant.Error, err))
	}
}

func (uc *voiceUsecase) handleLeave(ctx context.Context, state events.VoiceState, channelID int64) {
	room, err := uc.roomRepo.Get(ctx, channelID)
	if err != nil {
		slog.Error("get room on leave", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))

		return
	}
	if room == nil {
		return
	}

	uc.spam.RecordLeave(ctx, channelID, state.UserID)

	if state.UserID == room.OwnerID {
		if err := uc.lifecycle.HandleOwnerLeave(ctx, room); err != nil {
			slog.Error("handle owner leave", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))
		}

		return
	}

	if err := uc.mute.HandleMutedMemberLeft(ctx, state.GuildID, state.UserID, channelID); err != nil {
		slog.Error("schedule delayed unmute", slog.Int64("user_id", state.UserID), slog.Any(constant.Error, err))
	}
}
