package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/dto"
	"github.com/roomwarden/roomwarden/internal/usecase"
)

type RoomHandler struct {
	roomRepo  repository.RoomRepository
	muteRepo  repository.MuteRepository
	muteUC    usecase.MuteUsecase
	lifecycle usecase.LifecycleUsecase
}

func NewRoomHandler(
	roomRepo repository.RoomRepository,
	muteRepo repository.MuteRepository,
	muteUC usecase.MuteUsecase,
	lifecycle usecase.LifecycleUsecase,
) *RoomHandler {
	return &RoomHandler{
		roomRepo:  roomRepo,
		muteRepo:  muteRepo,
		muteUC:    muteUC,
		lifecycle: lifecycle,
	}
}

func (h *RoomHandler) ListRoomsHandler(c echo.Context) error {
	rooms, err := h.roomRepo.ListAll(c.Request().Context())
	if err != nil {
		slog.Error("list rooms", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list rooms"})
	}

	resp := dto.ListRoomsResponse{Rooms: make([]dto.RoomResponse, 0, len(rooms))}
	for _, room := range rooms {
		resp.Rooms = append(resp.Rooms, dto.NewRoomResponseFromModel(room))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *RoomHandler) GetRoomHandler(c echo.Context) error {
	channelID, err := channelIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid channel id"})
	}

	room, err := h.roomRepo.Get(c.Request().Context(), channelID)
	if err != nil {
		slog.Error("get room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get room"})
	}

	if room == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponseFromModel(room))
}

func (h *RoomHandler) DeleteRoomHandler(c echo.Context) error {
	channelID, err := channelIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid channel id"})
	}

	if err := h.lifecycle.DeleteRoom(c.Request().Context(), channelID, "admin"); err != nil {
		slog.Error("delete room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete room"})
	}

	return c.NoContent(http.StatusOK)
}

func (h *RoomHandler) ListMutesHandler(c echo.Context) error {
	channelID, err := channelIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid channel id"})
	}

	mutes, err := h.muteRepo.ListActiveForRoom(c.Request().Context(), channelID)
	if err != nil {
		slog.Error("list active mutes", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list mutes"})
	}

	resp := dto.ListMutesResponse{Mutes: make([]dto.MuteResponse, 0, len(mutes))}
	for _, m := range mutes {
		resp.Mutes = append(resp.Mutes, dto.NewMuteResponseFromModel(m))
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *RoomHandler) MuteUserHandler(c echo.Context) error {
	channelID, err := channelIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid channel id"})
	}

	var req dto.MuteUserRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if req.UserID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id is required"})
	}

	room, err := h.roomRepo.Get(c.Request().Context(), channelID)
	if err != nil {
		slog.Error("get room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get room"})
	}

	if room == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	}

	if err := h.muteUC.MuteUser(c.Request().Context(), room.GuildID, channelID, req.UserID, req.ByUserID, req.Admin); err != nil {
		slog.Error("mute user", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mute user"})
	}

	return c.NoContent(http.StatusCreated)
}

func (h *RoomHandler) UnmuteUserHandler(c echo.Context) error {
	channelID, err := channelIDParam(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid channel id"})
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid user id"})
	}

	room, err := h.roomRepo.Get(c.Request().Context(), channelID)
	if err != nil {
		slog.Error("get room", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get room"})
	}

	if room == nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "room not found"})
	}

	lifted, err := h.muteUC.UnmuteUser(c.Request().Context(), room.GuildID, channelID, userID)
	if err != nil {
		slog.Error("unmute user", slog.Any(constant.Error, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to unmute user"})
	}

	if !lifted {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "no active mute"})
	}

	return c.NoContent(http.StatusOK)
}

func channelIDParam(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
