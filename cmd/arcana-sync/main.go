package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/chloeho97/arcana-front/internal/config"
	"github.com/chloeho97/arcana-front/internal/infrastructure/arcanaapi"
	"github.com/chloeho97/arcana-front/internal/infrastructure/logger"
	"github.com/chloeho97/arcana-front/internal/infrastructure/observability"
	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver"
)

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	sessionCache, err := newSessionCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize session cache")
	}

	client := arcanaapi.NewClient(cfg, newSanitizer(cfg), log)
	resolver := newSessionResolver(cfg, client, sessionCache, log)

	sess, err := newSession(ctx, cfg, resolver, log)
	if err != nil {
		log.Fatal().Err(err).Msg("resolve session")
	}

	components := newComponents(cfg, client, sess, log)
	pool := newPool(components, log)
	httpServer := httpserver.New(cfg, log, newHandlerProvider(components, log))
	app := NewApplication(httpServer, components, pool, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
