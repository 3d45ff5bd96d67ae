// Command server runs the colonos REST API and event stream without Nakama.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"colonos/internal/app"
	"colonos/internal/bot"
	"colonos/internal/config"
	"colonos/internal/ports/httpapi"
	"colonos/internal/ports/jwtauth"
	"colonos/internal/ports/sqlite"
)

func main() {
	cfg, err := config.LoadServerConfig()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) error {
	if err := config.LoadGameConfig(cfg.GameConfig); err != nil {
		logger.Warn("using default game config", "err", err)
	}
	gameCfg := config.GetGameConfig()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := app.NewService(store, gameCfg.Rules(), nil)
	if boards, err := config.LoadBoards(cfg.Boards); err != nil {
		logger.Warn("no board templates loaded", "err", err)
	} else {
		n, err := svc.SeedBoards(ctx, boards)
		if err != nil {
			return err
		}
		logger.Info("seeded boards", "created", n, "templates", len(boards))
	}

	auth, err := jwtauth.New(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	if err != nil {
		return err
	}

	var opts []httpapi.Option
	if gameCfg.BotsEnabled {
		if err := bot.LoadIdentities(cfg.BotIdentities); err != nil {
			logger.Warn("using built-in bot identities", "err", err)
		}
		opts = append(opts, httpapi.WithBots(bot.NewRunner(svc, gameCfg.MaxBotSteps())))
	}

	hub := httpapi.NewHub(logger, cfg.AllowedOrigins)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewServer(svc, auth, hub, logger, opts...).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", "addr", cfg.Addr, "bots", gameCfg.BotsEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
