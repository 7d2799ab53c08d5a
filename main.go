package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goeda/internal/admin"
	"goeda/internal/config"
	"goeda/internal/container"
	"goeda/internal/logging"
	"goeda/ui"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load environment variables from .env file
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		base := logging.Base()
		base.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Configure(logging.Config{Level: appConfig.Log.Level, Pretty: appConfig.Log.Pretty})
	logger := logging.WithComponent("main")
	if envErr != nil {
		logger.Debug().Msg("no .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appContainer, err := container.New(appConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create application container")
	}
	if err := appContainer.Init(ctx); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize application container")
	}
	defer appContainer.Shutdown(context.Background())

	server, err := ui.NewServer(appContainer.Service, ui.Options{
		Addr:           ":" + appConfig.Server.Port,
		GinMode:        appConfig.Server.GinMode,
		MaxUploadBytes: appConfig.Server.MaxUploadBytes(),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build web server")
	}

	var adminServer *admin.Server
	if appConfig.Admin.Enabled {
		adminServer = admin.NewServer(admin.Config{
			Addr:      ":" + appConfig.Admin.Port,
			RateLimit: appConfig.Admin.RateLimit,
			Checks:    healthChecks(appContainer),
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	if adminServer != nil {
		g.Go(adminServer.Start)
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if adminServer != nil {
			if err := adminServer.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("admin shutdown failed")
			}
		}
		return server.Shutdown(shutdownCtx)
	})

	logger.Info().
		Str("port", appConfig.Server.Port).
		Str("database", appConfig.Database.Driver).
		Msg("starting EDA dashboard")

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("server stopped with error")
		appContainer.Shutdown(context.Background())
		os.Exit(1)
	}
}

func healthChecks(c *container.Container) map[string]admin.Checker {
	checks := map[string]admin.Checker{}
	if c.DB != nil {
		checks["database"] = c.DB.PingContext
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.HealthCheck
	}
	return checks
}
