package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/roomwarden/roomwarden/internal/application/config"
	"github.com/roomwarden/roomwarden/internal/application/constant"
	"github.com/roomwarden/roomwarden/internal/application/metric"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/memory"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/platform"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres"
	"github.com/roomwarden/roomwarden/internal/infra/adapters/postgres/repository"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/handlers"
	"github.com/roomwarden/roomwarden/internal/infra/ports/http/server"
	"github.com/roomwarden/roomwarden/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug))

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	roomRepo := repository.NewRoomRepo(dbConn)
	muteRepo := repository.NewMuteRepo(dbConn)
	globalMuteRepo := repository.NewGlobalMuteRepo(dbConn)
	spamRepo := repository.NewSpamRepo(dbConn)
	prefRepo := repository.NewPreferenceRepo(dbConn)
	guildCfgRepo := repository.NewGuildConfigRepo(dbConn)

	ownershipCache := memory.NewOwnershipCache()
	activityTracker := memory.NewActivityTracker()
	pendingUnmutes := memory.NewPendingUnmuteRegistry()

	gateway := platform.NewGateway(cfg.Platform.APIURL, cfg.Platform.Token)
	notifier := platform.NewNotifier(cfg.Platform.APIURL, cfg.Platform.Token)

	lifecycleUC := usecase.NewLifecycleUsecase(
		roomRepo, prefRepo, guildCfgRepo,
		ownershipCache, activityTracker, gateway, notifier,
		cfg.Rooms.NamingDeadline(),
	)
	muteUC := usecase.NewMuteUsecase(
		muteRepo, globalMuteRepo, roomRepo,
		pendingUnmutes, gateway,
		cfg.Rooms.UnmuteGrace(),
	)
	spamUC := usecase.NewSpamUsecase(activityTracker, spamRepo, gateway, notifier, cfg.Spam)
	queue := usecase.NewProvisionQueue(lifecycleUC, gateway, guildCfgRepo, cfg.Rooms.CreationDelay())
	voiceUC := usecase.NewVoiceUsecase(muteUC, lifecycleUC, spamUC, queue, roomRepo, guildCfgRepo)
	watchdog := usecase.NewDeadlineWatchdog(lifecycleUC, spamUC, cfg.Rooms.WatchdogTick())

	// Persisted state is reconciled against the live platform before any
	// event is consumed.
	if err := lifecycleUC.ReconcileStartup(ctx); err != nil {
		slog.Error("startup reconciliation", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	if deleted, err := lifecycleUC.CleanupEmptyRooms(ctx); err != nil {
		slog.Error("cleanup empty rooms", slog.Any(constant.Error, err))
	} else if deleted > 0 {
		slog.Info("cleaned up empty rooms", slog.Int("count", deleted))
	}

	if _, err := queue.StartupSweep(ctx); err != nil {
		slog.Error("startup sweep", slog.Any(constant.Error, err))
	}

	go queue.Run(ctx)

	if err := watchdog.Start(ctx); err != nil {
		slog.Error("start watchdog", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer watchdog.Stop()

	stream := platform.NewStream(cfg.Platform.GatewayURL, cfg.Platform.Token, voiceUC.HandleVoiceStateUpdate)
	go stream.Run(ctx)

	roomHandler := handlers.NewRoomHandler(roomRepo, muteRepo, muteUC, lifecycleUC)
	guildHandler := handlers.NewGuildHandler(guildCfgRepo, spamUC)
	interactionHandler := handlers.NewInteractionHandler(lifecycleUC, ownershipCache, gateway)

	echoSrv := server.New(cfg, roomHandler, guildHandler, interactionHandler)
	metricSrv := metric.NewServer()

	srvCh := make(chan error, 2)
	go func() {
		srvCh <- echoSrv.Start(":" + cfg.Port)
	}()
	go func() {
		srvCh <- metricSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down due to signal")
	case err := <-srvCh:
		slog.Error("HTTP server failed", slog.Any(constant.Error, err))
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown admin server", slog.Any(constant.Error, err))
	}

	if err := metricSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
