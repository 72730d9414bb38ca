package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Member is one occupant of a voice room, as reported by the platform.
type Member struct {
	UserID int64 `json:"user_id"`
	IsBot  bool  `json:"is_bot"`
}

// CreateRoomParams describes the voice room to allocate. MuteOwnerID is
// granted a mute-members-only permission overwrite, never full channel
// management.
type CreateRoomParams struct {
	GuildID     int64  `json:"guild_id"`
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	MuteOwnerID int64  `json:"mute_owner_id"`
}

// Gateway is the platform control surface. Every call is fallible and may
// fail because the target object no longer exists; callers treat that as
// benign.
type Gateway interface {
	CreateVoiceRoom(ctx context.Context, p CreateRoomParams) (int64, error)
	EditRoomName(ctx context.Context, channelID int64, name string) error
	SetRoomStatus(ctx context.Context, channelID int64, status string) error
	DeleteRoom(ctx context.Context, channelID int64) error
	RoomExists(ctx context.Context, channelID int64) (bool, error)

	SetServerMute(ctx context.Context, guildID, userID int64, muted bool) error
	SetMutePermission(ctx context.Context, channelID, userID int64, allowed bool) error
	MoveMember(ctx context.Context, guildID, userID, channelID int64) error
	DisconnectMember(ctx context.Context, guildID, userID int64) error
	TimeoutMember(ctx context.Context, guildID, userID int64, until time.Time) error

	// RoomMembers reads live membership, in the platform's iteration order.
	RoomMembers(ctx context.Context, guildID, channelID int64) ([]Member, error)

	// CurrentRoom returns the voice channel the user occupies right now,
	// or 0 when they are not connected.
	CurrentRoom(ctx context.Context, guildID, userID int64) (int64, error)
}

// restGateway talks to the platform HTTP API. The pack carries no HTTP
// client library, so this rides on net/http directly.
type restGateway struct {
	baseURL string
	token   string
	client  *http.Client
}

func NewGateway(baseURL, token string) Gateway {
	return &restGateway{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *restGateway) CreateVoiceRoom(ctx context.Context, p CreateRoomParams) (int64, error) {
	var resp struct {
		ChannelID int64 `json:"channel_id"`
	}

	path := fmt.Sprintf("/guilds/%d/voice-channels", p.GuildID)

	if err := g.do(ctx, http.MethodPost, path, p, &resp); err != nil {
		return 0, fmt.Errorf("create voice room: %w", err)
	}

	return resp.ChannelID, nil
}

func (g *restGateway) EditRoomName(ctx context.Context, channelID int64, name string) error {
	body := map[string]string{"name": name}

	if err := g.do(ctx, http.MethodPatch, fmt.Sprintf("/channels/%d", channelID), body, nil); err != nil {
		return fmt.Errorf("edit room name: %w", err)
	}

	return nil
}

func (g *restGateway) SetRoomStatus(ctx context.Context, channelID int64, status string) error {
	body := map[string]string{"status": status}

	if err := g.do(ctx, http.MethodPut, fmt.Sprintf("/channels/%d/voice-status", channelID), body, nil); err != nil {
		return fmt.Errorf("set room status: %w", err)
	}

	return nil
}

func (g *restGateway) DeleteRoom(ctx context.Context, channelID int64) error {
	if err := g.do(ctx, http.MethodDelete, fmt.Sprintf("/channels/%d", channelID), nil, nil); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	return nil
}

func (g *restGateway) RoomExists(ctx context.Context, channelID int64) (bool, error) {
	err := g.do(ctx, http.MethodGet, fmt.Sprintf("/channels/%d", channelID), nil, nil)
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("probe room: %w", err)
	}

	return true, nil
}

func (g *restGateway) SetServerMute(ctx context.Context, guildID, userID int64, muted bool) error {
	body := map[string]bool{"mute": muted}

	path := fmt.Sprintf("/guilds/%d/members/%d", guildID, userID)

	if err := g.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("set server mute: %w", err)
	}

	return nil
}

func (g *restGateway) SetMutePermission(ctx context.Context, channelID, userID int64, allowed bool) error {
	body := map[string]any{"permission": "mute_members", "allowed": allowed}

	path := fmt.Sprintf("/channels/%d/permissions/%d", channelID, userID)

	if err := g.do(ctx, http.MethodPut, path, body, nil); err != nil {
		return fmt.Errorf("set mute permission: %w", err)
	}

	return nil
}

func (g *restGateway) MoveMember(ctx context.Context, guildID, userID, channelID int64) error {
	body := map[string]int64{"channel_id": channelID}

	path := fmt.Sprintf("/guilds/%d/members/%d", guildID, userID)

	if err := g.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("move member: %w", err)
	}

	return nil
}

func (g *restGateway) DisconnectMember(ctx context.Context, guildID, userID int64) error {
	body := map[string]any{"channel_id": nil}

	path := fmt.Sprintf("/guilds/%d/members/%d", guildID, userID)

	if err := g.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("disconnect member: %w", err)
	}

	return nil
}

func (g *restGateway) TimeoutMember(ctx context.Context, guildID, userID int64, until time.Time) error {
	body := map[string]string{"communication_disabled_until": until.UTC().Format(time.RFC3339)}

	path := fmt.Sprintf("/guilds/%d/members/%d", guildID, userID)

	if err := g.do(ctx, http.MethodPatch, path, body, nil); err != nil {
		return fmt.Errorf("timeout member: %w", err)
	}

	return nil
}

func (g *restGateway) RoomMembers(ctx context.Context, guildID, channelID int64) ([]Member, error) {
	var members []Member

	path := fmt.Sprintf("/guilds/%d/voice-channels/%d/members", guildID, channelID)

	if err := g.do(ctx, http.MethodGet, path, nil, &members); err != nil {
		return nil, fmt.Errorf("room members: %w", err)
	}

	return members, nil
}

func (g *restGateway) CurrentRoom(ctx context.Context, guildID, userID int64) (int64, error) {
	var resp struct {
		ChannelID *int64 `json:"channel_id"`
	}

	path := fmt.Sprintf("/guilds/%d/voice-states/%d", guildID, userID)

	err := g.do(ctx, http.MethodGet, path, nil, &resp)
	if isNotFound(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("current room: %w", err)
	}

	if resp.ChannelID == nil {
		return 0, nil
	}

	return *resp.ChannelID, nil
}

// apiError is a non-2xx platform response.
type apiError struct {
	Status int
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("platform api: status %d: %s", e.Status, e.Body)
}

func isNotFound(err error) bool {
	var apiErr *apiError

	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

func (g *restGateway) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Authorization", "Bot "+g.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

		return &apiError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
