package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/avdeenkov/go-task-manager/internal/config"
	"github.com/avdeenkov/go-task-manager/internal/storage"
	"github.com/avdeenkov/go-task-manager/internal/storage/memory"
	"github.com/avdeenkov/go-task-manager/internal/storage/postgres"
)

var (
	globalUserStorage storage.UserStorage
	globalTaskStorage storage.TaskStorage

	globalPostgresPool *pgxpool.Pool
)

func MustOpenStorage() {
	cfg := config.Global().Storage

	switch cfg.Driver {
	case config.StorageDriverPostgres:
		mustConnectPostgres()
		pgStorage := postgres.New(globalLogger, globalPostgresPool)
		globalUserStorage = pgStorage
		globalTaskStorage = pgStorage
	case config.StorageDriverMemory:
		memStorage := memory.New()
		globalUserStorage = memStorage
		globalTaskStorage = memStorage
		globalLogger.Warn().Msg("using in-memory storage, data will not survive a restart")
	default:
		globalLogger.Error().
			Str("driver", cfg.Driver).
			Msg("unknown storage driver")
		panic(fmt.Errorf("unknown storage driver: %s", cfg.Driver))
	}
}

func CloseStorage() {
	if globalPostgresPool != nil {
		globalPostgresPool.Close()
		globalLogger.Info().Msg("disconnected from postgres")
	}
}

func mustConnectPostgres() {
	cfg := config.Global().Postgres
	connURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.Username, cfg.Password, cfg.Host,
		cfg.Port, cfg.Database, cfg.SSLMode)

	poolCfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to parse postgres config")
		panic(err)
	}
	poolCfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout

	globalPostgresPool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to connect to postgres")
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.PingTimeout)
	defer cancel()

	err = globalPostgresPool.Ping(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to ping postgres")
		panic(err)
	}
	globalLogger.Info().
		Str("host", cfg.Host).
		Int("port", cfg.Port).
		Msg("connected to postgres")
}
