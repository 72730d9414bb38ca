package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/roomwarden/roomwarden/internal/domain/models"
)

type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error

	// Get returns nil without error when the room is not managed.
	Get(ctx context.Context, channelID int64) (*models.Room, error)

	GetByOwner(ctx context.Context, guildID, ownerID int64) (*models.Room, error)
	ListAll(ctx context.Context) ([]*models.Room, error)
	UpdateOwner(ctx context.Context, channelID, ownerID int64) error
	UpdateName(ctx context.Context, channelID int64, name string, tags models.Tags) error
	UpdateTags(ctx context.Context, channelID int64, tags models.Tags) error
	Delete(ctx context.Context, channelID int64) error
}

type roomRepo struct {
	db *sqlx.DB
}

func NewRoomRepo(db *sqlx.DB) RoomRepository {
	return &roomRepo{db: db}
}

func (r *roomRepo) Create(ctx context.Context, room *models.Room) error {
	query := `
		INSERT INTO rooms (channel_id, guild_id, owner_id, kind, name, tags)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		room.ChannelID, room.GuildID, room.OwnerID,
		room.Kind.String(), room.Name, room.Tags,
	).Scan(&room.CreatedAt)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}

	return nil
}

func (r *roomRepo) Get(ctx context.Context, channelID int64) (*models.Room, error) {
	var room models.Room

	query := "SELECT channel_id, guild_id, owner_id, kind, name, tags, created_at FROM rooms WHERE channel_id = $1"

	err := r.db.GetContext(ctx, &room, query, channelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room: %w", err)
	}

	return &room, nil
}

func (r *roomRepo) GetByOwner(ctx context.Context, guildID, ownerID int64) (*models.Room, error) {
	var room models.Room

	query := "SELECT channel_id, guild_id, owner_id, kind, name, tags, created_at FROM rooms WHERE guild_id = $1 AND owner_id = $2"

	err := r.db.GetContext(ctx, &room, query, guildID, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get room by owner: %w", err)
	}

	return &room, nil
}

func (r *roomRepo) ListAll(ctx context.Context) ([]*models.Room, error) {
	var rooms []*models.Room

	query := "SELECT channel_id, guild_id, owner_id, kind, name, tags, created_at FROM rooms ORDER BY created_at"

	if err := r.db.SelectContext(ctx, &rooms, query); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	return rooms, nil
}

func (r *roomRepo) UpdateOwner(ctx context.Context, channelID, ownerID int64) error {
	query := "UPDATE rooms SET owner_id = $2 WHERE channel_id = $1"

	if _, err := r.db.ExecContext(ctx, query, channelID, ownerID); err != nil {
		return fmt.Errorf("update room owner: %w", err)
	}

	return nil
}

func (r *roomRepo) UpdateName(ctx context.Context, channelID int64, name string, tags models.Tags) error {
	query := "UPDATE rooms SET name = $2, tags = $3 WHERE channel_id = $1"

	if _, err := r.db.ExecContext(ctx, query, channelID, name, tags); err != nil {
		return fmt.Errorf("update room name: %w", err)
	}

	return nil
}

func (r *roomRepo) UpdateTags(ctx context.Context, channelID int64, tags models.Tags) error {
	query := "UPDATE rooms SET tags = $2 WHERE channel_id = $1"

	if _, err := r.db.ExecContext(ctx, query, channelID, tags); err != nil {
		return fmt.Errorf("update room tags: %w", err)
	}

	return nil
}

func (r *roomRepo) Delete(ctx context.Context, channelID int64) error {
	query := "DELETE FROM rooms WHERE channel_id = $1"

	if _, err := r.db.ExecContext(ctx, query, channelID); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	return nil
}
