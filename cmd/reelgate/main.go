package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/reelgate/adapter/api"
	"github.com/felixgeelhaar/reelgate/adapter/cli"
	cliAccess "github.com/felixgeelhaar/reelgate/adapter/cli/access"
	cliCatalog "github.com/felixgeelhaar/reelgate/adapter/cli/catalog"
	cliPlan "github.com/felixgeelhaar/reelgate/adapter/cli/plan"
	"github.com/felixgeelhaar/reelgate/internal/app"
	"github.com/felixgeelhaar/reelgate/pkg/config"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}
	cli.SetLogger(logger)

	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()

		handler := api.NewAccessHandler(api.AccessHandlerConfig{
			Access:        container.Access,
			Plans:         container.Entitlements,
			Purchases:     container.Payments,
			WebhookSecret: cfg.WebhookSecret,
			Logger:        logger,
		})
		serverCfg := api.DefaultServerConfig()
		serverCfg.Addr = cfg.APIAddr

		cliApp = &cli.App{
			Access:       container.Access,
			Catalog:      container.Catalog,
			Entitlements: container.Entitlements,
			Payments:     container.Payments,
			Server:       api.NewServer(serverCfg, handler, container.Health, container.MetricsHandler(), logger),
		}
	}

	cli.SetApp(cliApp)

	cli.AddCommand(cliAccess.Cmd)
	cli.AddCommand(cliCatalog.Cmd)
	cli.AddCommand(cliPlan.Cmd)

	cli.Execute(ctx)
}
