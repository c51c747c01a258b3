package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

const (
	ClientPostgres = "postgres"
	ClientDynamoDB = "dynamodb"
)

type Config struct {
	Env                 string
	Port                string
	DatabaseClient      string
	DatabaseURL         string
	DynamoDBTable       string
	DynamoDBEndpoint    string
	AutoMigrate         bool
	CORSOrigins         []string
	CookieSecure        bool
	LogLevel            zerolog.Level
	HealthProbeSchedule string
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Load reads .env (or .env.test when APP_ENV=test) into the process
// environment and builds a Config from it. A missing env file is fine.
func Load() (Config, error) {
	file := ".env"
	if os.Getenv("APP_ENV") == "test" {
		file = ".env.test"
	}
	if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading %s: %w", file, err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Env:                 env("APP_ENV", "development"),
		Port:                env("PORT", "3333"),
		DatabaseClient:      strings.ToLower(env("DATABASE_CLIENT", ClientPostgres)),
		DatabaseURL:         os.Getenv("DATABASE_URL"),
		DynamoDBTable:       env("DYNAMODB_TABLE", "transactions"),
		DynamoDBEndpoint:    os.Getenv("DYNAMODB_ENDPOINT"),
		CORSOrigins:         splitList(env("CORS_ORIGINS", "http://localhost:3000")),
		HealthProbeSchedule: env("HEALTH_PROBE_SCHEDULE", "@every 1m"),
	}

	var err error
	if cfg.AutoMigrate, err = boolEnv("AUTO_MIGRATE", false); err != nil {
		return Config{}, err
	}
	if cfg.CookieSecure, err = boolEnv("COOKIE_SECURE", false); err != nil {
		return Config{}, err
	}
	if cfg.LogLevel, err = zerolog.ParseLevel(env("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	switch cfg.DatabaseClient {
	case ClientPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("DATABASE_URL is not defined")
		}
	case ClientDynamoDB:
	default:
		return Config{}, fmt.Errorf("unsupported DATABASE_CLIENT %q", cfg.DatabaseClient)
	}

	return cfg, nil
}

func env(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func boolEnv(k string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", k, err)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
