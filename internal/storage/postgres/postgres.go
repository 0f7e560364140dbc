// Package postgres implements storage.Store on top of a pgx connection pool.
package postgres

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/config"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

//go:embed schema.sql
var schema string

var errNotConnected = errors.New("postgres: not connected")

type Store struct {
	logger zerolog.Logger
	cfg    config.PostgresConfig

	mu     sync.Mutex
	pgPool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func New(logger zerolog.Logger, cfg config.PostgresConfig) *Store {
	return &Store{
		logger: logger,
		cfg:    cfg,
	}
}

func (s *Store) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pgPool != nil {
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(s.cfg.URL())
	if err != nil {
		return fmt.Errorf("failed to parse postgres config: %w", err)
	}
	poolCfg.ConnConfig.ConnectTimeout = s.cfg.ConnectTimeout

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, s.cfg.PingTimeout)
	defer cancel()

	err = pool.Ping(pingCtx)
	if err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	s.pgPool = pool
	s.logger.Info().
		Str("host", s.cfg.Host).
		Int("port", s.cfg.Port).
		Msg("connected to postgres")
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	pool, err := s.pool()
	if err != nil {
		return err
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	s.logger.Info().Msg("applied postgres schema")
	return nil
}

func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pgPool == nil {
		return nil
	}
	s.pgPool.Close()
	s.pgPool = nil
	s.logger.Info().Msg("disconnected from postgres")
	return nil
}

func (s *Store) pool() (*pgxpool.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pgPool == nil {
		return nil, errNotConnected
	}
	return s.pgPool, nil
}
