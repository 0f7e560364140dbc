package app

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/config"
	"github.com/adanyl0v/project-tracker/internal/storage"
	"github.com/adanyl0v/project-tracker/internal/storage/memory"
	"github.com/adanyl0v/project-tracker/internal/storage/mongo"
	"github.com/adanyl0v/project-tracker/internal/storage/postgres"
)

// NewStore builds the store selected by the configuration. The store
// is not connected yet.
func NewStore(logger zerolog.Logger, cfg *config.Config) (storage.Store, error) {
	switch cfg.Store.Driver {
	case storage.DriverPostgres:
		return postgres.New(logger, cfg.Postgres), nil
	case storage.DriverMongo:
		return mongo.New(logger, cfg.Mongo), nil
	case storage.DriverMemory:
		logger.Warn().Msg("using in-memory store, data is lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
