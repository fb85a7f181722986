package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/Blizzyboii/calhacks/internal/config"
	"github.com/Blizzyboii/calhacks/internal/conversation"
	"github.com/Blizzyboii/calhacks/internal/handlers"
	"github.com/Blizzyboii/calhacks/internal/logger"
	"github.com/Blizzyboii/calhacks/internal/media"
	"github.com/Blizzyboii/calhacks/internal/memory"
	"github.com/Blizzyboii/calhacks/internal/orchestrator"
	"github.com/Blizzyboii/calhacks/internal/providers"
	"github.com/Blizzyboii/calhacks/internal/server"
	"github.com/Blizzyboii/calhacks/internal/version"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline HTTP server",
		Run: func(cmd *cobra.Command, args []string) {
			runServe()
		},
	}
}

func runServe() {
	fx.New(
		fx.Provide(
			provideConfig,
			provideLogger,
			provideConversationStore,
			provideMediaResolver,
			provideMemoryGateway,
			provideRouter,
			provideFormatter,
			provideDispatchClient,
			provideOrchestrator,
			provideProcessHandler,
			handlers.NewHealthHandler,
			provideServer,
		),
		fx.Invoke(startServer),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func provideConversationStore() conversation.Store {
	return conversation.NewMemoryStore()
}

func provideMediaResolver(log *slog.Logger, cfg config.Config) *media.Resolver {
	return media.NewResolver(log, time.Duration(cfg.Media.TimeoutSeconds)*time.Second)
}

func provideMemoryGateway(log *slog.Logger, cfg config.Config) *memory.Gateway {
	return memory.NewGateway(log, cfg.Memory)
}

func provideRouter(log *slog.Logger, cfg config.Config) *providers.Router {
	return providers.NewRouter(log, cfg.LLM)
}

func provideFormatter(cfg config.Config) *providers.Formatter {
	return providers.NewFormatter(cfg.LLM)
}

func provideDispatchClient(log *slog.Logger, cfg config.Config) *providers.Client {
	return providers.NewClient(log, cfg.LLM)
}

func provideOrchestrator(
	log *slog.Logger,
	cfg config.Config,
	store conversation.Store,
	resolver *media.Resolver,
	gateway *memory.Gateway,
	router *providers.Router,
	formatter *providers.Formatter,
	client *providers.Client,
) *orchestrator.Orchestrator {
	return orchestrator.New(log, cfg, store, resolver, gateway, router, formatter, client)
}

func provideProcessHandler(log *slog.Logger, cfg config.Config, orch *orchestrator.Orchestrator) *handlers.ProcessHandler {
	timeout := time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second
	return handlers.NewProcessHandler(log, orch, timeout)
}

func provideServer(log *slog.Logger, cfg config.Config, processHandler *handlers.ProcessHandler, healthHandler *handlers.HealthHandler) *server.Server {
	return server.NewServer(log, cfg.Server.Addr, processHandler, healthHandler)
}

func startServer(lc fx.Lifecycle, log *slog.Logger, cfg config.Config, srv *server.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting server",
				slog.String("addr", cfg.Server.Addr),
				slog.String("version", version.GetInfo()))
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server stopped", slog.String("error", err.Error()))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
