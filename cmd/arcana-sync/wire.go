//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/chloeho97/arcana-front/internal/config"
	"github.com/chloeho97/arcana-front/internal/infrastructure/arcanaapi"
	"github.com/chloeho97/arcana-front/internal/infrastructure/logger"
	"github.com/chloeho97/arcana-front/internal/interfaces/httpserver"
)

var sessionSet = wire.NewSet(
	newSanitizer,
	newSessionCache,
	arcanaapi.NewClient,
	newSessionResolver,
	newSession,
)

var componentSet = wire.NewSet(
	newComponents,
	newPool,
	newHandlerProvider,
)

// BuildApplication assembles the sync daemon with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		sessionSet,
		componentSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
