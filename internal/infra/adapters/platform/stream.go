package platform

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/domain/events"
)

const reconnectDelay = 5 * time.Second

// VoiceStateHandler receives every membership-change event exactly once.
type VoiceStateHandler func(ctx context.Context, update events.VoiceStateUpdate)

// Stream consumes the platform gateway websocket and turns raw voice-state
// frames into old/new update pairs. The previous state of each (guild,
// user) is kept in memory, the way platform SDK caches do.
type Stream struct {
	url     string
	token   string
	handler VoiceStateHandler

	prev map[guildUser]events.VoiceState
	mu   sync.Mutex
}

type guildUser struct {
	guildID int64
	userID  int64
}

func NewStream(url, token string, handler VoiceStateHandler) *Stream {
	return &Stream{
		url:     url,
		token:   token,
		handler: handler,
		prev:    make(map[guildUser]events.VoiceState),
	}
}

// Run connects and reads until the context is cancelled, reconnecting on
// every failure.
func (s *Stream) Run(ctx context.Context) {
	for {
		if err := s.consume(ctx); err != nil {
			slog.Error("gateway stream disconnected", slog.Any(constant.Error, err))
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(reconnectDelay):
		}
	}
}

func (s *Stream) consume(ctx context.Context) error {
	header := http.Header{}
	header.Set("Authorization", "Bot "+s.token)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	slog.Info("connected to gateway stream", slog.String("url", s.url))

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var frame events.Frame

		if err := conn.ReadJSON(&frame); err != nil {
			return err
		}

		switch frame.Type {
		case events.TypeVoiceState:
			var state events.VoiceState

			if err := json.Unmarshal(frame.Data, &state); err != nil {
				slog.Warn("malformed voice state frame", slog.Any(constant.Error, err))
				continue
			}

			s.dispatch(ctx, state)
		case events.TypeReady:
			slog.Info("gateway stream ready")
		}
	}
}

func (s *Stream) dispatch(ctx context.Context, state events.VoiceState) {
	key := guildUser{state.GuildID, state.UserID}

	s.mu.Lock()
	var old *events.VoiceState
	if prev, ok := s.prev[key]; ok {
		copied := prev
		old = &copied
	}
	s.prev[key] = state
	s.mu.Unlock()

	s.handler(ctx, events.VoiceStateUpdate{Old: old, New: state})
}
