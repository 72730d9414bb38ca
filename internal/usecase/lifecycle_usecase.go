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

// Deletion reasons, used for logs and metrics.
const (
	DeleteReasonEmpty    = "empty"
	DeleteReasonDeadline = "deadline"
	DeleteReasonOrphan   = "orphan"
)

type LifecycleUsecase interface {
	// StartCreationFlow creates a room for the user who entered a trigger
	// channel, applying their saved preference or starting the naming flow.
	StartCreationFlow(ctx context.Context, guildID, userID int64, kind models.RoomKind) error

	// ConfigureRoom names the room, saves the owner's preference and lifts
	// the naming deadline.
	ConfigureRoom(ctx context.Context, channelID int64, name string, tags models.Tags) error

	// UpdateTags replaces the room's tags.
	UpdateTags(ctx context.Context, channelID int64, tags models.Tags) error

	// ExtendDeadline pushes the naming deadline out again, used when the
	// owner re-enters the naming flow or a name was rejected.
	ExtendDeadline(ctx context.Context, channelID int64) error

	// HandleOwnerLeave transfers or deletes the room after its owner left.
	HandleOwnerLeave(ctx context.Context, room *models.Room) error

	// DeleteRoom removes the persisted record, the cache entry and,
	// best-effort, the platform channel.
	DeleteRoom(ctx context.Context, channelID int64, reason string) error

	// EnforceDeadlines deletes rooms whose naming deadline lapsed while
	// still unconfigured.
	EnforceDeadlines(ctx context.Context) error

	// ReconcileStartup drops persisted rooms that vanished from the
	// platform and adopts the survivors into the ownership cache.
	ReconcileStartup(ctx context.Context) error

	// CleanupEmptyRooms deletes rooms with no occupants, run at startup
	// after reconciliation.
	CleanupEmptyRooms(ctx context.Context) (int, error)
}

type lifecycleUsecase struct {
	roomRepo     repository.RoomRepository
	prefRepo     repository.PreferenceRepository
	guildCfgRepo repository.GuildConfigRepository
	cache        memory.OwnershipCache
	tracker      memory.ActivityTracker
	gateway      platform.Gateway
	notifier     platform.Notifier

	namingDeadline time.Duration
	now            func() time.Time
}

func NewLifecycleUsecase(
	roomRepo repository.RoomRepository,
	prefRepo repository.PreferenceRepository,
	guildCfgRepo repository.GuildConfigRepository,
	cache memory.OwnershipCache,
	tracker memory.ActivityTracker,
	gateway platform.Gateway,
	notifier platform.Notifier,
	namingDeadline time.Duration,
) LifecycleUsecase {
	return &lifecycleUsecase{
		roomRepo:       roomRepo,
		prefRepo:       prefRepo,
		guildCfgRepo:   guildCfgRepo,
		cache:          cache,
		tracker:        tracker,
		gateway:        gateway,
		notifier:       notifier,
		namingDeadline: namingDeadline,
		now:            time.Now,
	}
}

func (uc *lifecycleUsecase) StartCreationFlow(ctx context.Context, guildID, userID int64, kind models.RoomKind) error {
	cfg, err := uc.guildCfgRepo.Get(ctx, guildID)
	if err != nil {
		return fmt.Errorf("get guild config: %w", err)
	}

	if cfg == nil || !cfg.Configured(kind) {
		return models.ErrNotConfigured
	}

	pref, err := uc.prefRepo.Get(ctx, guildID, userID, kind)
	if err != nil {
		return fmt.Errorf("get preference: %w", err)
	}

	if pref != nil {
		// Saved preference applies verbatim, no naming flow.
		name := pref.Name
		_, err := uc.createRoom(ctx, cfg, guildID, userID, kind, &name, pref.Tags)

		return err
	}

	room, err := uc.createRoom(ctx, cfg, guildID, userID, kind, nil, nil)
	if err != nil {
		return err
	}

	deadline := &models.PendingDeadline{
		ChannelID:  room.ChannelID,
		GuildID:    guildID,
		OwnerID:    userID,
		DeadlineAt: uc.now().Add(uc.namingDeadline),
	}

	if err := uc.prefRepo.UpsertDeadline(ctx, deadline); err != nil {
		return fmt.Errorf("create naming deadline: %w", err)
	}

	uc.notify(ctx, room.ChannelID, namingPrompt(userID, uc.namingDeadline))

	return nil
}

func (uc *lifecycleUsecase) createRoom(
	ctx context.Context,
	cfg *models.GuildConfig,
	guildID, userID int64,
	kind models.RoomKind,
	name *string,
	tags models.Tags,
) (*models.Room, error) {
	categoryID := cfg.CategoryID(kind)
	if categoryID == nil {
		return nil, models.ErrNotConfigured
	}

	room := &models.Room{
		GuildID: guildID,
		OwnerID: userID,
		Kind:    kind,
		Name:    name,
		Tags:    tags,
	}

	channelID, err := uc.gateway.CreateVoiceRoom(ctx, platform.CreateRoomParams{
		GuildID:     guildID,
		CategoryID:  *categoryID,
		Name:        room.DisplayName(),
		MuteOwnerID: userID,
	})
	if err != nil {
		return nil, fmt.Errorf("create platform room: %w", err)
	}

	room.ChannelID = channelID

	// Persistence failure here leaves an orphaned platform room; startup
	// reconciliation is the recovery path.
	if err := uc.roomRepo.Create(ctx, room); err != nil {
		return nil, fmt.Errorf("persist room: %w", err)
	}

	uc.cache.Set(ctx, channelID, userID)

	if err := uc.gateway.MoveMember(ctx, guildID, userID, channelID); err != nil {
		slog.Error("move owner into room",
			slog.Int64("channel_id", channelID),
			slog.Int64("user_id", userID),
			slog.Any(constant.Error, err),
		)
	}

	if len(tags) > 0 {
		if err := uc.gateway.SetRoomStatus(ctx, channelID, tagStatus(tags)); err != nil {
			slog.Debug("set room status", slog.Any(constant.Error, err))
		}
	}

	uc.notify(ctx, channelID, welcomeMessage(userID, kind))

	metric.RoomCreated(kind.String())

	slog.Info("created room",
		slog.Int64("channel_id", channelID),
		slog.Int64("owner_id", userID),
		slog.String("kind", kind.String()),
	)

	return room, nil
}

func (uc *lifecycleUsecase) ConfigureRoom(ctx context.Context, channelID int64, name string, tags models.Tags) error {
	room, err := uc.roomRepo.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil
	}

	if err := uc.roomRepo.UpdateName(ctx, channelID, name, tags); err != nil {
		return err
	}

	if err := uc.gateway.EditRoomName(ctx, channelID, name); err != nil {
		slog.Error("rename platform room", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))
	}

	if len(tags) > 0 {
		if err := uc.gateway.SetRoomStatus(ctx, channelID, tagStatus(tags)); err != nil {
			slog.Debug("set room status", slog.Any(constant.Error, err))
		}
	}

	if _, err := uc.prefRepo.RemoveDeadline(ctx, channelID); err != nil {
		return err
	}

	pref := &models.RoomPreference{
		GuildID: room.GuildID,
		UserID:  room.OwnerID,
		Kind:    room.Kind,
		Name:    name,
		Tags:    tags,
	}

	if err := uc.prefRepo.Upsert(ctx, pref); err != nil {
		return err
	}

	return nil
}

func (uc *lifecycleUsecase) UpdateTags(ctx context.Context, channelID int64, tags models.Tags) error {
	room, err := uc.roomRepo.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil {
		return nil
	}

	if err := uc.roomRepo.UpdateTags(ctx, channelID, tags); err != nil {
		return err
	}

	status := ""
	if len(tags) > 0 {
		status = tagStatus(tags)
	}

	if err := uc.gateway.SetRoomStatus(ctx, channelID, status); err != nil {
		slog.Debug("set room status", slog.Any(constant.Error, err))
	}

	return nil
}

func (uc *lifecycleUsecase) ExtendDeadline(ctx context.Context, channelID int64) error {
	room, err := uc.roomRepo.Get(ctx, channelID)
	if err != nil {
		return fmt.Errorf("get room: %w", err)
	}
	if room == nil || room.Configured() {
		return nil
	}

	deadline := &models.PendingDeadline{
		ChannelID:  channelID,
		GuildID:    room.GuildID,
		OwnerID:    room.OwnerID,
		DeadlineAt: uc.now().Add(uc.namingDeadline),
	}

	return uc.prefRepo.UpsertDeadline(ctx, deadline)
}

func (uc *lifecycleUsecase) HandleOwnerLeave(ctx context.Context, room *models.Room) error {
	members, err := uc.gateway.RoomMembers(ctx, room.GuildID, room.ChannelID)
	if err != nil {
		slog.Error("read room membership",
			slog.Int64("channel_id", room.ChannelID),
			slog.Any(constant.Error, err),
		)

		return nil
	}

	if len(members) < 2 {
		return uc.DeleteRoom(ctx, room.ChannelID, DeleteReasonEmpty)
	}

	// First non-bot member in iteration order inherits the room.
	for _, m := range members {
		if m.IsBot || m.UserID == room.OwnerID {
			continue
		}

		return uc.transferOwnership(ctx, room, m.UserID)
	}

	// Only bots remain, nobody can own the room.
	return uc.DeleteRoom(ctx, room.ChannelID, DeleteReasonEmpty)
}

func (uc *lifecycleUsecase) transferOwnership(ctx context.Context, room *models.Room, newOwnerID int64) error {
	if err := uc.roomRepo.UpdateOwner(ctx, room.ChannelID, newOwnerID); err != nil {
		return err
	}

	uc.cache.Set(ctx, room.ChannelID, newOwnerID)

	if err := uc.gateway.SetMutePermission(ctx, room.ChannelID, room.OwnerID, false); err != nil {
		slog.Debug("revoke old owner permission", slog.Any(constant.Error, err))
	}

	if err := uc.gateway.SetMutePermission(ctx, room.ChannelID, newOwnerID, true); err != nil {
		slog.Debug("grant new owner permission", slog.Any(constant.Error, err))
	}

	metric.OwnershipTransferred()

	slog.Info("transferred room ownership",
		slog.Int64("channel_id", room.ChannelID),
		slog.Int64("old_owner_id", room.OwnerID),
		slog.Int64("new_owner_id", newOwnerID),
	)

	uc.notify(ctx, room.ChannelID, ownershipTransferMessage(newOwnerID))

	return nil
}

func (uc *lifecycleUsecase) DeleteRoom(ctx context.Context, channelID int64, reason string) error {
	if err := uc.roomRepo.Delete(ctx, channelID); err != nil {
		return err
	}

	uc.cache.Remove(ctx, channelID)
	uc.tracker.CleanupRoom(ctx, channelID)

	if _, err := uc.prefRepo.RemoveDeadline(ctx, channelID); err != nil {
		slog.Error("remove deadline on delete", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))
	}

	// The channel may already be gone on the platform side.
	if err := uc.gateway.DeleteRoom(ctx, channelID); err != nil {
		slog.Warn("delete platform room", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))
	}

	metric.RoomDeleted(reason)

	slog.Info("deleted room", slog.Int64("channel_id", channelID), slog.String("reason", reason))

	return nil
}

func (uc *lifecycleUsecase) EnforceDeadlines(ctx context.Context) error {
	expired, err := uc.prefRepo.ListExpiredDeadlines(ctx, uc.now())
	if err != nil {
		return fmt.Errorf("list expired deadlines: %w", err)
	}

	for _, d := range expired {
		room, err := uc.roomRepo.Get(ctx, d.ChannelID)
		if err != nil {
			slog.Error("look up room for deadline", slog.Int64("channel_id", d.ChannelID), slog.Any(constant.Error, err))
			continue
		}

		// The owner may have configured the room, or it may be gone already.
		if room != nil && !room.Configured() {
			if err := uc.DeleteRoom(ctx, d.ChannelID, DeleteReasonDeadline); err != nil {
				slog.Error("delete room on deadline", slog.Int64("channel_id", d.ChannelID), slog.Any(constant.Error, err))
				continue
			}

			if err := uc.notifier.SendDirectMessage(ctx, d.OwnerID, deadlineDeletionMessage(uc.namingDeadline)); err != nil {
				slog.Debug("DM former owner", slog.Int64("user_id", d.OwnerID), slog.Any(constant.Error, err))
			}
		}

		if _, err := uc.prefRepo.RemoveDeadline(ctx, d.ChannelID); err != nil {
			slog.Error("remove expired deadline", slog.Int64("channel_id", d.ChannelID), slog.Any(constant.Error, err))
		}
	}

	return nil
}

func (uc *lifecycleUsecase) ReconcileStartup(ctx context.Context) error {
	rooms, err := uc.roomRepo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}

	var adopted, removed int

	for _, room := range rooms {
		exists, err := uc.gateway.RoomExists(ctx, room.ChannelID)
		if err != nil {
			slog.Error("probe platform room", slog.Int64("channel_id", room.ChannelID), slog.Any(constant.Error, err))
			continue
		}

		if !exists {
			if err := uc.roomRepo.Delete(ctx, room.ChannelID); err != nil {
				slog.Error("remove vanished room", slog.Int64("channel_id", room.ChannelID), slog.Any(constant.Error, err))
				continue
			}

			uc.cache.Remove(ctx, room.ChannelID)
			metric.RoomDeleted(DeleteReasonOrphan)
			removed++

			continue
		}

		uc.cache.Set(ctx, room.ChannelID, room.OwnerID)
		adopted++
	}

	slog.Info("startup reconciliation done", slog.Int("adopted", adopted), slog.Int("removed", removed))

	return nil
}

func (uc *lifecycleUsecase) CleanupEmptyRooms(ctx context.Context) (int, error) {
	rooms, err := uc.roomRepo.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list rooms: %w", err)
	}

	var deleted int

	for _, room := range rooms {
		members, err := uc.gateway.RoomMembers(ctx, room.GuildID, room.ChannelID)
		if err != nil {
			slog.Error("read room membership", slog.Int64("channel_id", room.ChannelID), slog.Any(constant.Error, err))
			continue
		}

		if len(members) == 0 {
			if err := uc.DeleteRoom(ctx, room.ChannelID, DeleteReasonEmpty); err != nil {
				slog.Error("delete empty room", slog.Int64("channel_id", room.ChannelID), slog.Any(constant.Error, err))
				continue
			}

			deleted++
		}
	}

	return deleted, nil
}

func (uc *lifecycleUsecase) notify(ctx context.Context, channelID int64, msg platform.Message) {
	if err := uc.notifier.SendRoomMessage(ctx, channelID, msg); err != nil {
		slog.Debug("send room message", slog.Int64("channel_id", channelID), slog.Any(constant.Error, err))
	}
}
