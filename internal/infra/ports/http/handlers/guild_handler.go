package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/domain/models"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/dto"
	"github.com/roomwarden/roomwarden/internal/usecase"
)

type GuildHandler struct {
	guildCfgRepo repository.GuildConfigRepository
	spamUC       usecase.SpamUsecase
}

func NewGuildHandler(guildCfgRepo repository.GuildConfigRepository, spamUC usecase.SpamUsecase) *GuildHandler {
	return &GuildHandler{guildCfgRepo: guildCfgRepo, spamUC: spamUC}
}

func (h *GuildHandler) GetConfigHandler(c echo.Context) error {
	guildID, err := guildIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid guild id"})
	}

	cfg, err := h.guildCfgRepo.Get(c.Request().Context(), guildID)
	if err != nil {
		slog.Error("get guild config", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get config"})
	}

	if cfg == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "guild not configured"})
	}

	return c.JSON(http.StatusOK, dto.NewGuildConfigResponseFromModel(cfg))
}

func (h *GuildHandler) PutConfigHandler(c echo.Context) error {
	guildID, err := guildIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid guild id"})
	}

	var req dto.GuildConfigRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	cfg := &models.GuildConfig{
		GuildID:          guildID,
		CasualTriggerID:  req.CasualTriggerID,
		FocusTriggerID:   req.FocusTriggerID,
		CasualCategoryID: req.CasualCategoryID,
		FocusCategoryID:  req.FocusCategoryID,
	}

	if err := h.guildCfgRepo.Upsert(c.Request().Context(), cfg); err != nil {
		slog.Error("upsert guild config", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save config"})
	}

	return c.JSON(http.StatusOK, dto.NewGuildConfigResponseFromModel(cfg))
}

func (h *GuildHandler) ResetSpamLevelHandler(c echo.Context) error {
	guildID, err := guildIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid guild id"})
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	if err := h.spamUC.ResetLevel(c.Request().Context(), guildID, userID); err != nil {
		slog.Error("reset spam level", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to reset level"})
	}

	return c.NoContent(http.StatusOK)
}

func guildIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
