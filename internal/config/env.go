package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Env is the process-level configuration read from environment variables.
// A .env file in the working directory is applied first when present.
type Env struct {
	// ListenAddr is the bind address of the standalone websocket server.
	ListenAddr string `env:"ATLAS_LISTEN_ADDR" envDefault:":8080"`

	// DBDialect selects the storage backend: "sqlite" or "postgres".
	DBDialect string `env:"DB_DIALECT" envDefault:"sqlite"`
	// SQLitePath is the database file for the sqlite dialect.
	SQLitePath string `env:"DB_SQLITE_PATH" envDefault:"atlas.db"`
	// PostgresDSN is the connection string for the postgres dialect.
	// DATABASE_URL is accepted as a fallback by the store.
	PostgresDSN string `env:"DB_POSTGRES_DSN"`

	// GameConfigPath points at the JSON game config file.
	GameConfigPath string `env:"ATLAS_GAME_CONFIG" envDefault:"game_config.json"`
	// CorpusPath is an optional TSV of place names seeded at startup when the
	// database corpus is empty.
	CorpusPath string `env:"ATLAS_CORPUS_PATH"`
}

// LoadEnv reads the environment into an Env. Missing .env files are not an
// error; explicit environment variables always win over file entries.
func LoadEnv() (Env, error) {
	_ = godotenv.Load()
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}
