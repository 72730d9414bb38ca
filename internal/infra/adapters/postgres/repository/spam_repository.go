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

type SpamRepository interface {
	// Get returns nil without error when the user has no spam history.
	Get(ctx context.Context, guildID, userID int64) (*models.SpamStatus, error)

	// IncrementInfraction bumps the escalation level (capped) and the
	// infraction counters, creating the row when absent.
	IncrementInfraction(ctx context.Context, guildID, userID int64) (*models.SpamStatus, error)

	// ResetLevel drops the escalation level back to zero.
	ResetLevel(ctx context.Context, guildID, userID int64) error

	// ResetStale zeroes levels for every user whose last infraction is
	// older than the cutoff. Returns the number of rows touched.
	ResetStale(ctx context.Context, cutoff time.Time) (int64, error)
}

type spamRepo struct {
	db *sqlx.DB
}

func NewSpamRepo(db *sqlx.DB) SpamRepository {
	return &spamRepo{db: db}
}

const spamColumns = "guild_id, user_id, current_level, last_infraction_at, total_infractions, created_at, updated_at"

func (r *spamRepo) Get(ctx context.Context, guildID, userID int64) (*models.SpamStatus, error) {
	var status models.SpamStatus

	query := "SELECT " + spamColumns + " FROM spam_statuses WHERE guild_id = $1 AND user_id = $2"

	err := r.db.GetContext(ctx, &status, query, guildID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get spam status: %w", err)
	}

	return &status, nil
}

func (r *spamRepo) IncrementInfraction(ctx context.Context, guildID, userID int64) (*models.SpamStatus, error) {
	var status models.SpamStatus

	query := `
		INSERT INTO spam_statuses (guild_id, user_id, current_level, last_infraction_at, total_infractions)
		VALUES ($1, $2, 1, NOW(), 1)
		ON CONFLICT (guild_id, user_id) DO UPDATE SET
			current_level = LEAST(spam_statuses.current_level + 1, 7),
			last_infraction_at = NOW(),
			total_infractions = spam_statuses.total_infractions + 1,
			updated_at = NOW()
		RETURNING ` + spamColumns

	err := r.db.QueryRowxContext(ctx, query, guildID, userID).StructScan(&status)
	if err != nil {
		return nil, fmt.Errorf("increment infraction: %w", err)
	}

	return &status, nil
}

func (r *spamRepo) ResetLevel(ctx context.Context, guildID, userID int64) error {
	query := "UPDATE spam_statuses SET current_level = 0, updated_at = NOW() WHERE guild_id = $1 AND user_id = $2"

	if _, err := r.db.ExecContext(ctx, query, guildID, userID); err != nil {
		return fmt.Errorf("reset spam level: %w", err)
	}

	return nil
}

func (r *spamRepo) ResetStale(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `
		UPDATE spam_statuses
		SET current_level = 0, updated_at = NOW()
		WHERE current_level > 0 AND last_infraction_at IS NOT NULL AND last_infraction_at < $1
	`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("reset stale spam levels: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset stale rows affected: %w", err)
	}

	return affected, nil
}
