package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/roomwarden/roomwarden/internal/domain/models"
)

type PreferenceRepository interface {
	// Get returns nil without error when the user has no saved preference
	// for the kind.
	Get(ctx context.Context, guildID, userID int64, kind models.RoomKind) (*models.RoomPreference, error)

	Upsert(ctx context.Context, pref *models.RoomPreference) error

	// UpsertDeadline creates or extends the naming deadline for a room.
	UpsertDeadline(ctx context.Context, d *models.PendingDeadline) error

	RemoveDeadline(ctx context.Context, channelID int64) (bool, error)
	ListExpiredDeadlines(ctx context.Context, now time.Time) ([]*models.PendingDeadline, error)
}

type preferenceRepo struct {
	db *sqlx.DB
}

func NewPreferenceRepo(db *sqlx.DB) PreferenceRepository {
	return &preferenceRepo{db: db}
}

func (r *preferenceRepo) Get(ctx context.Context, guildID, userID int64, kind models.RoomKind) (*models.RoomPreference, error) {
	var pref models.RoomPreference

	query := `
		SELECT id, guild_id, user_id, kind, name, tags, created_at, updated_at
		FROM room_preferences
		WHERE guild_id = $1 AND user_id = $2 AND kind = $3
	`

	err := r.db.GetContext(ctx, &pref, query, guildID, userID, kind.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room preference: %w", err)
	}

	return &pref, nil
}

func (r *preferenceRepo) Upsert(ctx context.Context, pref *models.RoomPreference) error {
	query := `
		INSERT INTO room_preferences (guild_id, user_id, kind, name, tags)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id, user_id, kind) DO UPDATE SET
			name = $4,
			tags = $5,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		pref.GuildID, pref.UserID, pref.Kind.String(), pref.Name, pref.Tags,
	).Scan(&pref.ID, &pref.CreatedAt, &pref.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert room preference: %w", err)
	}

	return nil
}

func (r *preferenceRepo) UpsertDeadline(ctx context.Context, d *models.PendingDeadline) error {
	query := `
		INSERT INTO pending_deadlines (channel_id, guild_id, owner_id, deadline_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (channel_id) DO UPDATE SET deadline_at = $4
	`

	if _, err := r.db.ExecContext(ctx, query, d.ChannelID, d.GuildID, d.OwnerID, d.DeadlineAt); err != nil {
		return fmt.Errorf("upsert pending deadline: %w", err)
	}

	return nil
}

func (r *preferenceRepo) RemoveDeadline(ctx context.Context, channelID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, "DELETE FROM pending_deadlines WHERE channel_id = $1", channelID)
	if err != nil {
		return false, fmt.Errorf("remove pending deadline: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("remove deadline rows affected: %w", err)
	}

	return affected > 0, nil
}

func (r *preferenceRepo) ListExpiredDeadlines(ctx context.Context, now time.Time) ([]*models.PendingDeadline, error) {
	var deadlines []*models.PendingDeadline

	query := `
		SELECT channel_id, guild_id, owner_id, deadline_at, created_at
		FROM pending_deadlines
		WHERE deadline_at <= $1
	`

	if err := r.db.SelectContext(ctx, &deadlines, query, now); err != nil {
		return nil, fmt.Errorf("list expired deadlines: %w", err)
	}

	return deadlines, nil
}
