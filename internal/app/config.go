package app

import (
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/project-tracker/internal/config"
)

// ConfigPathEnv names the variable pointing at an optional config file.
const ConfigPathEnv = "CONFIG_PATH"

// ReadConfig reads the file named by CONFIG_PATH if it is set and the
// environment otherwise.
func ReadConfig(logger zerolog.Logger) (*config.Config, error) {
	var reader config.Reader = config.NewEnvReader()
	path, ok := os.LookupEnv(ConfigPathEnv)
	if ok && path != "" {
		reader = config.NewFileReader(path)
	}

	cfg, err := reader.Read()
	if err != nil {
		logger.Error().
			Err(err).
			Str("config_path", path).
			Msg("failed to read config")
		return nil, err
	}
	logger.Info().
		Str("env", cfg.Env).
		Str("store", cfg.Store.Driver).
		Msg("read config")
	return cfg, nil
}
