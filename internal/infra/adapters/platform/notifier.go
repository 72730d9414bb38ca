package platform

import (
	"context"
	"fmt"
	"net/http"
)

// Message is the notification payload. Components are opaque control
// element identifiers rendered by the platform client.
type Message struct {
	Title      string   `json:"title,omitempty"`
	Body       string   `json:"body"`
	Components []string `json:"components,omitempty"`
}

// Notifier delivers messages to rooms and users. Deliveries are
// best-effort: callers log failures and move on, business logic never
// blocks on a notification.
type Notifier interface {
	SendRoomMessage(ctx context.Context, channelID int64, msg Message) error
	SendDirectMessage(ctx context.Context, userID int64, msg Message) error
}

type restNotifier struct {
	gw *restGateway
}

func NewNotifier(baseURL, token string) Notifier {
	return &restNotifier{gw: NewGateway(baseURL, token).(*restGateway)}
}

func (n *restNotifier) SendRoomMessage(ctx context.Context, channelID int64, msg Message) error {
	path := fmt.Sprintf("/channels/%d/messages", channelID)

	if err := n.gw.do(ctx, http.MethodPost, path, msg, nil); err != nil {
		return fmt.Errorf("send room message: %w", err)
	}

	return nil
}

func (n *restNotifier) SendDirectMessage(ctx context.Context, userID int64, msg Message) error {
	path := fmt.Sprintf("/users/%d/messages", userID)

	if err := n.gw.do(ctx, http.MethodPost, path, msg, nil); err != nil {
		return fmt.Errorf("send direct message: %w", err)
	}

	return nil
}
