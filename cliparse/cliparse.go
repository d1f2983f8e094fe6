package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	SecretKey     string
	TokenTTL      time.Duration
	LogLevel      slog.Level
	AdminPassword string
	Seed          bool
	LoaderWait    time.Duration
}

// LoadEnv reads KEY=value pairs from the given files into the environment.
// Variables already set win. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envParse reads key with parse, keeping fallback when the variable is unset
func envParse[T any](key string, fallback T, parse func(string) (T, error)) (T, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	out, err := parse(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s env variable %q", key, v)
	}
	return out, nil
}

func positiveMinutes(s string) (time.Duration, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, errors.New("must be a positive number of minutes")
	}
	return time.Duration(n) * time.Minute, nil
}

func nonNegativeDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, errors.New("must be a non-negative duration")
	}
	return d, nil
}

func logLevel(s string) (slog.Level, error) {
	var l slog.Level
	err := l.UnmarshalText([]byte(strings.ToUpper(s)))
	return l, err
}

// ParseFlags builds the configuration. Environment variables provide the
// defaults and command-line flags override them.
func ParseFlags(args []string) (Config, error) {
	port, err := envParse("PORT", 4000, strconv.Atoi)
	if err != nil {
		return Config{}, err
	}
	ttl, err := envParse("ACCESS_TOKEN_EXPIRE_MINUTES", 30*time.Minute, positiveMinutes)
	if err != nil {
		return Config{}, err
	}
	level, err := envParse("LOG_LEVEL", slog.LevelInfo, logLevel)
	if err != nil {
		return Config{}, err
	}
	seed, err := envParse("SEED", true, strconv.ParseBool)
	if err != nil {
		return Config{}, err
	}
	wait, err := envParse("LOADER_WAIT", time.Duration(0), nonNegativeDuration)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		TokenTTL:      ttl,
		LogLevel:      level,
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
	}

	fs := flag.NewFlagSet("starwars-api", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "p", port, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", envString("DATABASE_URL", "starwars.db"), "Database URL or SQLite file path")
	fs.StringVar(&cfg.DatabaseType, "t", envString("DATABASE_TYPE", "sqlite"), "Database type (sqlite or postgres)")
	// Prefer SECRET_KEY; the flag exists for local runs
	fs.StringVar(&cfg.SecretKey, "secret", os.Getenv("SECRET_KEY"), "JWT signing key")
	fs.BoolVar(&cfg.Seed, "seed", seed, "Load sample data into an empty database")
	fs.DurationVar(&cfg.LoaderWait, "loader-wait", wait, "Batch window for relationship loaders")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}
	if cfg.SecretKey == "" {
		return Config{}, errors.New("SECRET_KEY required")
	}
	if cfg.LoaderWait < 0 {
		return Config{}, errors.New("loader wait must not be negative")
	}

	return cfg, nil
}
