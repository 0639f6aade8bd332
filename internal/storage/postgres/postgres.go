package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// Storage implements the storage interfaces on top of a pgx connection pool.
type Storage struct {
	logger zerolog.Logger
	pgPool *pgxpool.Pool
}

func New(logger zerolog.Logger, pgPool *pgxpool.Pool) *Storage {
	return &Storage{
		logger: logger,
		pgPool: pgPool,
	}
}
