package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/valentine-ezugu/xflowapp-sub001/internal/adapters/primary/handlers"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/adapters/secondary"
	appservice "github.com/valentine-ezugu/xflowapp-sub001/internal/application/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/domain/service"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/config"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/database"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/logger"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/messaging"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/realtime"
	"github.com/valentine-ezugu/xflowapp-sub001/internal/infrastructure/session"
)

// provideRealtimeConfig extracts realtime configuration from main config
func provideRealtimeConfig(cfg *config.Config) *config.RealtimeConfig {
	return &cfg.Realtime
}

// provideSessionProvider builds the session source selected by configuration. The
// MongoDB connection is only opened for the mongodb source.
func provideSessionProvider(lc fx.Lifecycle, cfg *config.Config, log *logger.Logger) (service.SessionProvider, error) {
	if cfg.Session.Source != config.SessionSourceMongoDB {
		return session.NewFromConfig(&cfg.Session, nil, log)
	}

	db, err := database.NewMongoDB(&cfg.MongoDB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := db.CreateIndexes(ctx); err != nil {
				log.Error("Failed to create database indexes", zap.Error(err))
				return err
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return db.Close(ctx)
		},
	})

	return session.NewFromConfig(&cfg.Session, secondary.NewSessionRepository(db), log)
}

// provideStatusServer builds the HTTP server for the health and stats endpoints
func provideStatusServer(cfg *config.Config, connection service.ConnectionManager, bridge *appservice.EventBridgeService) *http.Server {
	mode := gin.DebugMode
	if cfg.App.Env == "production" {
		mode = gin.ReleaseMode
	}

	handler := handlers.NewStatusHandler(connection, func() interface{} { return bridge.Stats() })
	return &http.Server{
		Addr:              cfg.Status.Addr,
		Handler:           handlers.NewRouter(handler, mode),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func main() {
	app := fx.New(
		fx.StartTimeout(30*time.Second),
		fx.StopTimeout(30*time.Second),

		// Configuration
		fx.Provide(config.LoadConfig),
		fx.Provide(provideRealtimeConfig),

		// Infrastructure
		fx.Provide(logger.NewLogger),
		fx.WithLogger(func(log *logger.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log.Logger}
		}),
		fx.Provide(provideSessionProvider),
		fx.Provide(
			fx.Annotate(
				messaging.NewNATSEventPublisher,
				fx.As(new(service.EventPublisher)),
			),
		),

		// Realtime core
		fx.Provide(
			fx.Annotate(
				realtime.NewGorillaDialer,
				fx.As(new(realtime.Dialer)),
			),
		),
		fx.Provide(
			fx.Annotate(
				realtime.NewRegistry,
				fx.As(new(service.SubscriptionRegistry)),
			),
		),
		fx.Provide(
			fx.Annotate(
				realtime.NewRouter,
				fx.As(new(service.FrameHandler)),
			),
		),
		fx.Provide(
			fx.Annotate(
				realtime.NewConnectionManager,
				fx.As(new(service.ConnectionManager)),
			),
		),

		// Application services
		fx.Provide(appservice.NewEventBridgeService),
		fx.Provide(provideStatusServer),

		// Lifecycle hooks
		fx.Invoke(registerRealtimeListenerHooks),
	)

	app.Run()
}

// registerRealtimeListenerHooks registers realtime listener application lifecycle hooks
func registerRealtimeListenerHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *logger.Logger,
	connection service.ConnectionManager,
	bridge *appservice.EventBridgeService,
	statusServer *http.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting Realtime Listener",
				zap.String("version", "1.0.0"),
				zap.String("ws_url", cfg.Realtime.URL),
				zap.String("session_source", cfg.Session.Source),
				zap.Bool("nats_enabled", cfg.NATS.Enabled))

			if err := bridge.Start(ctx); err != nil {
				log.Error("Failed to start event bridge service", zap.Error(err))
				return err
			}

			if cfg.Status.Enabled {
				go func() {
					if err := statusServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("Status server failed", zap.Error(err))
					}
				}()
				log.Info("Status server listening", zap.String("addr", cfg.Status.Addr))
			}

			log.Info("Realtime Listener started successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Stopping Realtime Listener")

			if cfg.Status.Enabled {
				if err := statusServer.Shutdown(ctx); err != nil {
					log.Error("Error stopping status server", zap.Error(err))
				}
			}

			if err := bridge.Stop(ctx); err != nil {
				log.Error("Error stopping event bridge service", zap.Error(err))
			}

			// The connection is owned by the process, so it is closed only here
			connection.Disconnect()

			// Sync logger; errors are expected on some terminals
			_ = log.Sync()

			log.Info("Realtime Listener stopped")
			return nil
		},
	})
}
