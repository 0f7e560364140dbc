package app

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/config"
	"github.com/adanyl0v/project-tracker/internal/services"
	"github.com/adanyl0v/project-tracker/internal/storage"
)

// Application owns the configuration, the logger and the store
// shared by the commands.
type Application struct {
	logger zerolog.Logger
	cfg    *config.Config
	store  storage.Store
}

// New reads the configuration, sets up logging and connects the store.
func New(ctx context.Context) (*Application, error) {
	logger := NewDefaultLogger()

	cfg, err := ReadConfig(logger)
	if err != nil {
		return nil, err
	}

	logger, err = NewApplicationLogger(logger, cfg.Env)
	if err != nil {
		return nil, err
	}

	store, err := NewStore(logger, cfg)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("failed to create store")
		return nil, err
	}

	err = store.Connect(ctx)
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", cfg.Store.Driver).
			Msg("failed to connect to store")
		return nil, err
	}

	return &Application{
		logger: logger,
		cfg:    cfg,
		store:  store,
	}, nil
}

// Migrate creates the schema the store needs.
func (a *Application) Migrate(ctx context.Context) error {
	err := a.store.Migrate(ctx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to migrate store")
		return err
	}
	a.logger.Info().
		Str("driver", a.cfg.Store.Driver).
		Msg("migrated store")
	return nil
}

func (a *Application) Close(ctx context.Context) error {
	err := a.store.Close(ctx)
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to close store")
		return err
	}
	a.logger.Info().Msg("closed store")
	return nil
}

func (a *Application) newServices() (
	services.SessionResolver,
	services.AuthService,
	services.ProjectService,
	services.TaskService,
) {
	jwtCfg := a.cfg.JWT
	tokens := services.NewTokenService(
		a.logger,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.TokenTTL,
	)

	return services.NewSessionResolver(a.logger, tokens, a.store),
		services.NewAuthService(a.logger, a.store, tokens),
		services.NewProjectService(a.logger, a.store),
		services.NewTaskService(a.logger, a.store)
}
