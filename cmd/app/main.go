// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-forward-bot/internal/application"
	"telegram-forward-bot/internal/config"
	"telegram-forward-bot/internal/domain/ports/repository"
	"telegram-forward-bot/internal/infra/adapters/mtproto"
	pg "telegram-forward-bot/internal/infra/db/postgres"
	httpapi "telegram-forward-bot/internal/infra/http"
	"telegram-forward-bot/internal/infra/logging"
	"telegram-forward-bot/internal/infra/metrics"
	red "telegram-forward-bot/internal/infra/redis"
	"telegram-forward-bot/internal/infra/state"
	tele "telegram-forward-bot/internal/infra/telegram"
	"telegram-forward-bot/internal/infra/worker"
	"telegram-forward-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "development mode (bypasses the subscription gate)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres (gate + run audit) ----
	var subRepo repository.SubscriptionRepository
	var runRepo repository.ForwardRunRepository
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		subRepo = pg.NewSubscriptionRepo(pool)
		runRepo = pg.NewForwardRunRepo(pool)
	} else if !cfg.Runtime.Dev {
		logger.Fatal().Msg("database.url is required outside dev mode")
	}

	// ---- Dialog state store ----
	var states repository.DialogStateRepository
	if cfg.Forward.StateBackend == "redis" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		states = red.NewDialogStateRepo(redisClient, cfg.Redis.TTL)
	} else {
		states = state.NewMemoryStateRepo()
	}

	// ---- MTProto relocation client ----
	messenger, err := mtproto.New(ctx, &cfg.MTProto, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("mtproto")
	}
	defer messenger.Close()

	// ---- Worker pool for forward runs ----
	pool := worker.NewPool(cfg.Forward.RunWorkers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	forwardUC := usecase.NewForwardUseCase(messenger, runRepo, cfg.Forward.HistoryLimit, cfg.Forward.Throttle)
	subUC := usecase.NewSubscriptionUseCase(subRepo, cfg.Runtime.Dev)

	// ---- Telegram bot ----
	// The dialog usecase needs the bot for status edits and the bot
	// needs the facade; wire the facade first with a late-bound dialog.
	facade := application.NewBotFacade(nil)
	botAdapter, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	facade.DialogUC = usecase.NewDialogUseCase(states, subUC, forwardUC, pool, botAdapter)

	go func() {
		if err := botAdapter.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Ops HTTP server ----
	if cfg.Admin.Port > 0 {
		auth := httpapi.NewAuthManager(cfg.Admin.APISecret, 30*time.Minute)
		srv := httpapi.NewServer(cfg.Admin.Port, runRepo, auth, logger)
		go func() {
			logger.Info().Int("port", cfg.Admin.Port).Msg("ops http listening")
			if err := srv.Start(); err != nil && err != http.ErrServerClosed {
				logger.Error().Err(err).Msg("ops http server")
			}
		}()
		defer func() {
			shCtx, shCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shCancel()
			_ = srv.Shutdown(shCtx)
		}()
	}

	logger.Info().Msg("forward bot started")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info().Msg("shutting down")
	cancel()
	botAdapter.StopPolling()
}
