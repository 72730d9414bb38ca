package events

import "encoding/json"

// Frame is the envelope for every event delivered over the gateway stream.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Frame types delivered by the platform gateway stream.
const (
	TypeVoiceState = "voice_state"
	TypeReady      = "ready"
)

// VoiceState is a member's voice presence inside a guild at one instant.
// ChannelID is nil when the member is not connected to any voice channel.
type VoiceState struct {
	GuildID   int64  `json:"guild_id"`
	UserID    int64  `json:"user_id"`
	ChannelID *int64 `json:"channel_id"`
	Muted     bool   `json:"muted"`
	IsBot     bool   `json:"is_bot"`
}

// InChannel reports whether the state places the user in channelID.
func (s *VoiceState) InChannel(channelID int64) bool {
	return s.ChannelID != nil && *s.ChannelID == channelID
}

// VoiceStateUpdate pairs the previous and current voice state of a member.
// Old is nil for the first state observed for the user.
type VoiceStateUpdate struct {
	Old *VoiceState
	New VoiceState
}
