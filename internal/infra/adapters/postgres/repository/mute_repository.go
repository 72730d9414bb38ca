package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roomwarden/roomwarden/internal/domain/models"
)

type MuteRepository interface {
	Create(ctx context.Context, rec *models.MuteRecord) error

	// GetActive returns the newest open record for (channel, user), nil when none.
	GetActive(ctx context.Context, channelID, userID int64) (*models.MuteRecord, error)

	ListActiveForRoom(ctx context.Context, channelID int64) ([]*models.MuteRecord, error)

	// Close stamps unmuted_at on the open record and reports whether one existed.
	Close(ctx context.Context, channelID, userID int64) (bool, error)
}

type muteRepo struct {
	db *sqlx.DB
}

func NewMuteRepo(db *sqlx.DB) MuteRepository {
	return &muteRepo{db: db}
}

func (r *muteRepo) Create(ctx context.Context, rec *models.MuteRecord) error {
	query := `
		INSERT INTO mute_records (guild_id, channel_id, muted_user_id, muted_by_user_id, is_admin_mute)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, muted_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		rec.GuildID, rec.ChannelID, rec.MutedUserID, rec.MutedByUserID, rec.IsAdminMute,
	).Scan(&rec.ID, &rec.MutedAt)
	if err != nil {
		return fmt.Errorf("create mute record: %w", err)
	}

	return nil
}

func (r *muteRepo) GetActive(ctx context.Context, channelID, userID int64) (*models.MuteRecord, error) {
	var rec models.MuteRecord

	query := `
		SELECT id, guild_id, channel_id, muted_user_id, muted_by_user_id, is_admin_mute, muted_at, unmuted_at
		FROM mute_records
		WHERE channel_id = $1 AND muted_user_id = $2 AND unmuted_at IS NULL
		ORDER BY muted_at DESC
		LIMIT 1
	`

	err := r.db.GetContext(ctx, &rec, query, channelID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active mute: %w", err)
	}

	return &rec, nil
}

func (r *muteRepo) ListActiveForRoom(ctx context.Context, channelID int64) ([]*models.MuteRecord, error) {
	var recs []*models.MuteRecord

	query := `
		SELECT id, guild_id, channel_id, muted_user_id, muted_by_user_id, is_admin_mute, muted_at, unmuted_at
		FROM mute_records
		WHERE channel_id = $1 AND unmuted_at IS NULL
		ORDER BY muted_at
	`

	if err := r.db.SelectContext(ctx, &recs, query, channelID); err != nil {
		return nil, fmt.Errorf("list active mutes: %w", err)
	}

	return recs, nil
}

func (r *muteRepo) Close(ctx context.Context, channelID, userID int64) (bool, error) {
	query := `
		UPDATE mute_records
		SET unmuted_at = NOW()
		WHERE channel_id = $1 AND muted_user_id = $2 AND unmuted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, channelID, userID)
	if err != nil {
		return false, fmt.Errorf("close mute record: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("close mute record rows affected: %w", err)
	}

	return affected > 0, nil
}
