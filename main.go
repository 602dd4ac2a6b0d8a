package main

import (
	"context"

	"github.com/questforge/gateway/app_config"
	"github.com/questforge/gateway/graceful_shutdown"
	"github.com/questforge/gateway/inits"
	"github.com/questforge/gateway/logger"
	"github.com/questforge/gateway/repositories"
	"github.com/questforge/gateway/servers"
	"github.com/questforge/gateway/services"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		fx.Provide(
			app_config.NewAppConfig,
			inits.NewAnonSupabaseClient,
			inits.NewServiceSupabaseClient,
			repositories.NewAuthProvider,
			repositories.NewProfileStore,
			services.NewAuthService,
			services.NewProfileService,
		),
		fx.Invoke(logger.InitLogger),
		fx.Invoke(servers.RunHttpServer),
	)

	if err := app.Err(); err != nil {
		panic(err)
	}

	if err := app.Start(context.Background()); err != nil {
		panic(err)
	}

	graceful_shutdown.WaitForSignals()
}
