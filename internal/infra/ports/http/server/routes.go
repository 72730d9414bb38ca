package server

import (
	"github.com/labstack/echo/v4"

	"github.com/roomwarden/roomwarden/internal/application/config"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/handlers"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	guildHandler *handlers.GuildHandler,
	interactionHandler *handlers.InteractionHandler,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	api := e.Group("/api")
	{
		v1 := api.Group("/v1")
		v1.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
		{
			v1.GET("/rooms", roomHandler.ListRoomsHandler)
			v1.GET("/rooms/:id", roomHandler.GetRoomHandler)
			v1.DELETE("/rooms/:id", roomHandler.DeleteRoomHandler)

			v1.GET("/rooms/:id/mutes", roomHandler.ListMutesHandler)
			v1.POST("/rooms/:id/mutes", roomHandler.MuteUserHandler)
			v1.DELETE("/rooms/:id/mutes/:user_id", roomHandler.UnmuteUserHandler)

			v1.GET("/guilds/:id/config", guildHandler.GetConfigHandler)
			v1.PUT("/guilds/:id/config", guildHandler.PutConfigHandler)
			v1.POST("/guilds/:id/spam/:user_id/reset", guildHandler.ResetSpamLevelHandler)

			v1.POST("/interactions", interactionHandler.HandleInteraction)
		}
	}

	return e
}
