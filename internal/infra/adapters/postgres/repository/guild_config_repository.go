package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roomwarden/roomwarden/internal/domain/models"
)

type GuildConfigRepository interface {
	// Get returns nil without error when the guild has no config row.
	Get(ctx context.Context, guildID int64) (*models.GuildConfig, error)

	// FindByTrigger resolves a voice channel to the guild config that uses
	// it as a trigger, along with the room kind it triggers. Returns nil
	// when the channel is not a trigger anywhere.
	FindByTrigger(ctx context.Context, channelID int64) (*models.GuildConfig, models.RoomKind, error)

	ListConfigured(ctx context.Context) ([]*models.GuildConfig, error)
	Upsert(ctx context.Context, cfg *models.GuildConfig) error
}

type guildConfigRepo struct {
	db *sqlx.DB
}

func NewGuildConfigRepo(db *sqlx.DB) GuildConfigRepository {
	return &guildConfigRepo{db: db}
}

const guildConfigColumns = "guild_id, casual_trigger_id, focus_trigger_id, casual_category_id, focus_category_id, created_at, updated_at"

func (r *guildConfigRepo) Get(ctx context.Context, guildID int64) (*models.GuildConfig, error) {
	var cfg models.GuildConfig

	query := "SELECT " + guildConfigColumns + " FROM guild_configs WHERE guild_id = $1"

	err := r.db.GetContext(ctx, &cfg, query, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get guild config: %w", err)
	}

	return &cfg, nil
}

func (r *guildConfigRepo) FindByTrigger(ctx context.Context, channelID int64) (*models.GuildConfig, models.RoomKind, error) {
	var cfg models.GuildConfig

	query := "SELECT " + guildConfigColumns + " FROM guild_configs WHERE casual_trigger_id = $1 OR focus_trigger_id = $1"

	err := r.db.GetContext(ctx, &cfg, query, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("find guild config by trigger: %w", err)
	}

	kind := models.KindCasual
	if cfg.FocusTriggerID != nil && *cfg.FocusTriggerID == channelID {
		kind = models.KindFocus
	}

	return &cfg, kind, nil
}

func (r *guildConfigRepo) ListConfigured(ctx context.Context) ([]*models.GuildConfig, error) {
	var cfgs []*models.GuildConfig

	query := "SELECT " + guildConfigColumns + " FROM guild_configs WHERE casual_trigger_id IS NOT NULL OR focus_trigger_id IS NOT NULL"

	if err := r.db.SelectContext(ctx, &cfgs, query); err != nil {
		return nil, fmt.Errorf("list configured guilds: %w", err)
	}

	return cfgs, nil
}

func (r *guildConfigRepo) Upsert(ctx context.Context, cfg *models.GuildConfig) error {
	query := `
		INSERT INTO guild_configs (guild_id, casual_trigger_id, focus_trigger_id, casual_category_id, focus_category_id)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (guild_id) DO UPDATE SET
			casual_trigger_id = $2,
			focus_trigger_id = $3,
			casual_category_id = $4,
			focus_category_id = $5,
			updated_at = NOW()
	`

	_, err := r.db.ExecContext(
		ctx, query,
		cfg.GuildID, cfg.CasualTriggerID, cfg.FocusTriggerID, cfg.CasualCategoryID, cfg.FocusCategoryID,
	)
	if err != nil {
		return fmt.Errorf("upsert guild config: %w", err)
	}

	return nil
}
