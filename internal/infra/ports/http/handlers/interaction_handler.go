package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/memory"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/dto"
	"github.com/roomwarden/roomwarden/internal/usecase"
)

// InteractionHandler receives component and modal interactions relayed from
// the platform and routes them to room actions. Only the room owner may act
// on their room.
type InteractionHandler struct {
	lifecycle usecase.LifecycleUsecase
	cache     memory.OwnershipCache
	gateway   platform.Gateway
}

func NewInteractionHandler(
	lifecycle usecase.LifecycleUsecase,
	cache memory.OwnershipCache,
	gateway platform.Gateway,
) *InteractionHandler {
	return &InteractionHandler{lifecycle: lifecycle, cache: cache, gateway: gateway}
}

func (h *InteractionHandler) HandleInteraction(c echo.Context) error {
	var req dto.InteractionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ctx := c.Request().Context()

	if !h.cache.IsOwner(ctx, req.ChannelID, req.UserID) {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "not the room owner"})
	}

	switch {
	case req.CustomID == "room:name-modal" || req.CustomID == "room:rename":
		name := strings.TrimSpace(req.Value)
		if name == "" {
			// Rejected input restarts the naming countdown.
			if err := h.lifecycle.ExtendDeadline(ctx, req.ChannelID); err != nil {
				slog.Error("extend naming deadline", slog.Any(constant.Error, err))
			}

			return c.JSON(http.StatusBadRequest, map[string]string{"error": "name must not be empty"})
		}

		if err := h.lifecycle.ConfigureRoom(ctx, req.ChannelID, name, req.Values); err != nil {
			slog.Error("configure room", slog.Any(constant.Error, err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to configure room"})
		}

	case req.CustomID == "room:tag-select" || req.CustomID == "room:retag":
		if err := h.lifecycle.UpdateTags(ctx, req.ChannelID, req.Values); err != nil {
			slog.Error("update tags", slog.Any(constant.Error, err))
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update tags"})
		}

	case strings.HasPrefix(req.CustomID, "spam:ban:"):
		targetID, err := strconv.ParseInt(strings.TrimPrefix(req.CustomID, "spam:ban:"), 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid target"})
		}

		if err := h.gateway.DisconnectMember(ctx, req.GuildID, targetID); err != nil {
			slog.Warn("disconnect member", slog.Int64("user_id", targetID), slog.Any(constant.Error, err))
		}

	case strings.HasPrefix(req.CustomID, "spam:ignore:"):
		// Dismissal only; nothing to change server-side.

	default:
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "unknown interaction"})
	}

	return c.NoContent(http.StatusOK)
}
