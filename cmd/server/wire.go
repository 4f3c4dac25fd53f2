// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"chantier_backend/internal/access"
	"chantier_backend/internal/app"
	"chantier_backend/internal/audit"
	"chantier_backend/internal/config"
	"chantier_backend/internal/firebase"
	"chantier_backend/internal/jobs"
	"chantier_backend/internal/platform/logger"
	"chantier_backend/internal/session"
	"chantier_backend/internal/shared"

	"github.com/google/wire"
	"go.uber.org/zap"
)

var platformSet = wire.NewSet(
	provideFirebase,
	provideIdentityStore,
	wire.Bind(new(shared.PasswordAuthenticator), new(*firebase.FirebaseService)),
	app.NewStores,
	wire.FieldsOf(new(*app.Stores), "Profiles", "Sites"),
)

var accessSet = wire.NewSet(
	access.NewRolePolicy,
	audit.NewRecorder,
	access.NewResolver,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		logger.New,
		platformSet,
		accessSet,
		wire.Bind(new(session.ProfileResolver), new(*access.Resolver)),
		wire.Bind(new(jobs.Sweeper), new(*access.Resolver)),
		session.NewService,
		session.NewHandler,
		access.NewHandler,
		jobs.NewClientSiteSyncJob,
		app.NewServer,
	)
	return nil, nil, nil
}

// initializeResolver builds the resolver alone for the maintenance subcommands.
func initializeResolver(cfg *config.Config, logger *zap.Logger) (*access.Resolver, func(), error) {
	wire.Build(
		platformSet,
		accessSet,
	)
	return nil, nil, nil
}
