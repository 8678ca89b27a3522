package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/soundroomhq/soundroom/internal/application/config"
	"github.com/soundroomhq/soundroom/internal/application/constant"
	"github.com/soundroomhq/soundroom/internal/application/metric"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/memory"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/openai"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/postgres/repository"
	"github.com/soundroomhq/soundroom/internal/infra/adapters/s3"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/handlers"
	"github.com/soundroomhq/soundroom/internal/infra/ports/http/server"
	"github.com/soundroomhq/soundroom/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: slog.LevelInfo},
			),
		),
	)

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	dbConn, err := postgres.NewPostgres(ctx, cfg.Postgres.DSN())
	if err != nil {
		slog.Error("connect to postgres", slog.Any(constant.Error, err))
		os.Exit(1)
	}
	defer dbConn.Close()

	storage, err := s3.New(ctx, cfg.Storage.Bucket, cfg.Storage.Region)
	if err != nil {
		slog.Error("init object storage", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	intelligence := openai.New(cfg.OpenAI.APIKey)

	userRepo := repository.NewUserRepo(dbConn)
	tokenRepo := repository.NewRefreshTokenRepo(dbConn)
	trackRepo := repository.NewTrackRepo(dbConn)
	playlistRepo := repository.NewPlaylistRepo(dbConn)
	roomRepo := repository.NewRoomRepo(dbConn)
	membershipRepo := repository.NewMembershipRepo(dbConn)
	joinRequestRepo := repository.NewJoinRequestRepo(dbConn)
	messageRepo := repository.NewMessageRepo(dbConn)

	registry := memory.NewRoomRegistry()
	notifier := memory.NewJoinNotifier()

	authUsecase := usecase.NewAuthUsecase(
		[]byte(cfg.JWTSecret),
		time.Duration(cfg.AccessTokenTTLMinutes)*time.Minute,
		time.Duration(cfg.RefreshTokenTTLMinutes)*time.Minute,
		userRepo,
		tokenRepo,
	)
	trackUsecase := usecase.NewTrackUsecase(trackRepo, storage, intelligence)
	playlistUsecase := usecase.NewPlaylistUsecase(playlistRepo, trackRepo)
	roomUsecase := usecase.NewRoomUsecase(roomRepo, playlistRepo, membershipRepo, registry)
	membershipUsecase := usecase.NewMembershipUsecase(membershipRepo, joinRequestRepo, roomRepo, playlistRepo, registry)
	joinRequestUsecase := usecase.NewJoinRequestUsecase(joinRequestRepo, membershipRepo, roomRepo, userRepo, registry, notifier)
	chatUsecase := usecase.NewChatUsecase(messageRepo, membershipRepo)
	sessionUsecase := usecase.NewSessionUsecase(membershipUsecase, playlistUsecase, joinRequestUsecase, chatUsecase, roomRepo, registry)

	authHandler := handlers.NewAuthHandler(authUsecase)
	trackHandler := handlers.NewTrackHandler(trackUsecase)
	playlistHandler := handlers.NewPlaylistHandler(playlistUsecase)
	roomHandler := handlers.NewRoomHandler(roomUsecase, membershipUsecase, playlistUsecase, joinRequestUsecase, chatUsecase)
	sessionHandler := handlers.NewSessionHandler(cfg, sessionUsecase)
	joinNotifyHandler := handlers.NewJoinNotifyHandler(cfg, joinRequestUsecase, notifier)

	echoSrv := server.New(cfg, authHandler, trackHandler, playlistHandler, roomHandler, sessionHandler, joinNotifyHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	go func() {
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		slog.Error(
			"HTTP server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	case err := <-metricsSrvCh:
		slog.Error(
			"Metrics server failed",
			slog.Any(constant.Error, err),
		)
		os.Exit(1)
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
