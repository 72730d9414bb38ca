package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

type GlobalMuteRepository interface {
	// Record opens a global mute for (guild, user), refreshing detected_at
	// when one is already active.
	Record(ctx context.Context, guildID, userID int64) error

	IsActive(ctx context.Context, guildID, userID int64) (bool, error)

	// Clear closes the active global mute and reports whether one existed.
	Clear(ctx context.Context, guildID, userID int64) (bool, error)
}

type globalMuteRepo struct {
	db *sqlx.DB
}

func NewGlobalMuteRepo(db *sqlx.DB) GlobalMuteRepository {
	return &globalMuteRepo{db: db}
}

func (r *globalMuteRepo) Record(ctx context.Context, guildID, userID int64) error {
	query := `
		INSERT INTO global_mutes (guild_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (guild_id, user_id) WHERE unmuted_at IS NULL
		DO UPDATE SET detected_at = NOW()
	`

	if _, err := r.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("record global mute: %w", err)
	}

	return nil
}

func (r *globalMuteRepo) IsActive(ctx context.Context, guildID, userID int64) (bool, error) {
	var count int

	query := "SELECT COUNT(*) FROM global_mutes WHERE guild_id = $1 AND user_id = $2 AND unmuted_at IS NULL"

	if err := r.db.GetContext(ctx, &count, query, guildID, userID); err != nil {
		return false, fmt.Errorf("check global mute: %w", err)
	}

	return count > 0, nil
}

func (r *globalMuteRepo) Clear(ctx context.Context, guildID, userID int64) (bool, error) {
	query := `
		UPDATE global_mutes
		SET unmuted_at = NOW()
		WHERE guild_id = $1 AND user_id = $2 AND unmuted_at IS NULL
	`

	res, err := r.db.ExecContext(ctx, query, guildID, userID)
	if err != nil {
		return false, fmt.Errorf("clear global mute: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("clear global mute rows affected: %w", err)
	}

	return affected > 0, nil
}
