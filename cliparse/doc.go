// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

LoadEnv reads a .env file into the environment before parsing:

	_ = cliparse.LoadEnv()

# Config Fields

  - Port: Server listen port (default: 4000)
  - DatabaseURL: SQLite file path or PostgreSQL URL (default: starwars.db)
  - DatabaseType: sqlite or postgres (default: sqlite)
  - SecretKey: JWT signing key (required)
  - TokenTTL: Access token lifetime (default: 30m)
  - LogLevel: slog level (default: info)
  - AdminPassword: bootstraps the admin user when set
  - Seed: load the sample data set into an empty database (default: true)
  - LoaderWait: batch window for relationship loaders (default: 0)

# CLI Flags

	-p             Server port
	-d             Database URL
	-t             Database type
	-secret        JWT signing key
	-seed          Load sample data (bool)
	-loader-wait   Loader batch window

# Environment Variables

	PORT                        → -p
	DATABASE_URL                → -d
	DATABASE_TYPE               → -t
	SECRET_KEY                  → --secret
	ACCESS_TOKEN_EXPIRE_MINUTES
	LOG_LEVEL
	ADMIN_PASSWORD
	SEED                        → -seed
	LOADER_WAIT                 → -loader-wait

Environment variables set the flag defaults, so a flag given on the
command line always wins.
*/
package cliparse
