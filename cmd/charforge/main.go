// Package main runs the charforge server: the Telnet character creation
// frontend and the gRPC catalog API.
package main

import (
	"context"
	"flag"
	"log"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/api"
	"github.com/cory-johannsen/charforge/internal/config"
	"github.com/cory-johannsen/charforge/internal/frontend/handlers"
	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/dice"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/game/session"
	"github.com/cory-johannsen/charforge/internal/observability"
	"github.com/cory-johannsen/charforge/internal/scripting"
	"github.com/cory-johannsen/charforge/internal/server"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
	"github.com/cory-johannsen/charforge/internal/storage/postgres"
)

const shutdownNotice = "The server is shutting down. Your draft has been kept."

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrate := flag.Bool("migrate", true, "apply pending database migrations at startup")
	flag.Parse()

	if err := config.LoadDotEnv(); err != nil {
		log.Fatalf("loading .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging, zap.String("mode", cfg.Server.Mode))
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("starting charforge",
		zap.String("mode", cfg.Server.Mode),
		zap.String("content", cfg.Content.Root),
	)

	// Load and validate content
	contentStart := time.Now()
	lib, err := rules.LoadLibrary(cfg.Content.Root)
	if err != nil {
		logger.Fatal("loading content", zap.String("root", cfg.Content.Root), zap.Error(err))
	}
	counts := lib.Counts()
	logger.Info("content loaded",
		zap.Int("races", counts.Races),
		zap.Int("alt_traits", counts.AltTraits),
		zap.Int("classes", counts.Classes),
		zap.Int("archetypes", counts.Archetypes),
		zap.Duration("elapsed", time.Since(contentStart)),
	)
	runner := scripting.NewRunner(cfg.Content.ScriptInstructionLimit, logger)
	engine := rules.NewEngine(lib, runner, logger)

	ctx := context.Background()
	lifecycle := server.NewLifecycle(logger)

	if cfg.Server.RunsTelnet() {
		addTelnet(ctx, cfg, lifecycle, engine, *migrate, logger)
	}
	if cfg.Server.RunsAPI() {
		addAPI(cfg, lifecycle, engine, logger)
	}

	logger.Info("charforge initialized",
		zap.Duration("startup", time.Since(start)),
		zap.Bool("telnet", cfg.Server.RunsTelnet()),
		zap.Bool("api", cfg.Server.RunsAPI()),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

// addTelnet connects the stores and registers the creation frontend.
func addTelnet(ctx context.Context, cfg config.Config, lifecycle *server.Lifecycle, engine *rules.Engine, migrate bool, logger *zap.Logger) {
	if migrate {
		if err := postgres.MigrateUp(cfg.Database.DSN()); err != nil {
			logger.Fatal("migrating database", zap.Error(err))
		}
	}

	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Int("port", cfg.Database.Port),
		zap.String("database", cfg.Database.Name),
		zap.Duration("elapsed", time.Since(dbStart)),
	)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Fatal("connecting to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	}
	logger.Info("redis connected",
		zap.String("addr", cfg.Redis.Addr),
		zap.Duration("draft_ttl", cfg.Redis.DraftTTL),
	)

	sessions := session.NewManager()
	authHandler := handlers.NewAuthHandler(
		postgres.NewAccountRepository(pool.DB()),
		postgres.NewCharacterRepository(pool.DB()),
		draft.NewRepository(rdb, cfg.Redis.DraftTTL),
		handlers.Deps{
			Engine:   engine,
			Screen:   selection.BuildScreen(engine.Library()),
			Sessions: sessions,
			Roller:   dice.NewLoggedRoller(dice.NewCryptoSource(), logger),
			Registry: command.DefaultRegistry(),
		},
		logger,
	)
	acceptor := telnet.NewAcceptor(cfg.Telnet, authHandler, logger)

	lifecycle.OnShutdown(func() {
		n := sessions.Broadcast(shutdownNotice)
		logger.Info("shutdown notice sent", zap.Int("sessions", n))
	})

	stopHealth := make(chan struct{})
	lifecycle.Add("postgres", &server.FuncService{
		StartFn: func() error {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-stopHealth:
					return nil
				case <-ticker.C:
					if err := pool.Health(ctx, 5*time.Second); err != nil {
						logger.Warn("database health check failed", zap.Error(err))
					}
				}
			}
		},
		StopFn: func() {
			close(stopHealth)
			pool.Close()
			_ = rdb.Close()
		},
	})

	lifecycle.Add("telnet", &server.FuncService{
		StartFn: acceptor.ListenAndServe,
		StopFn:  acceptor.Stop,
	})
}

// addAPI registers the gRPC catalog.
func addAPI(cfg config.Config, lifecycle *server.Lifecycle, engine *rules.Engine, logger *zap.Logger) {
	gs, hs := api.NewGRPCServer(api.NewServer(engine, logger), logger)
	lifecycle.Add("grpc", &server.FuncService{
		StartFn: func() error {
			lis, err := net.Listen("tcp", cfg.GRPC.Addr())
			if err != nil {
				return err
			}
			logger.Info("grpc listening", zap.String("addr", cfg.GRPC.Addr()))
			return gs.Serve(lis)
		},
		StopFn: func() {
			hs.Shutdown()
			gs.GracefulStop()
		},
	})
}
