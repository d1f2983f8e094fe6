// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens database connections and manages the schema.

# Connections

Open supports two dialects:

	conn, err := db.Open(ctx, db.SQLite, "starwars.db")
	conn, err := db.Open(ctx, db.Postgres, "postgres://...")

SQLite connections turn on foreign key enforcement, a busy timeout and WAL
journaling through DSN pragmas so every pooled connection behaves the same.

# Migrations

Migrate applies the embedded goose migrations for the dialect:

	if err := db.Migrate(ctx, conn, db.SQLite); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times.

# Tables

  - planets: unique name, optional climate and terrain
  - characters: unique name, optional species and home planet
  - starships: unique name, optional model and manufacturer
  - character_starships: pilot assignments
  - users: credentials and role

# Relationships

	planets 1──* characters (home_planet_id, no cascade)
	characters *──* starships (via character_starships)

Assignment rows cascade when either side is deleted.

# Placeholders

Queries are written with ? placeholders. Dialect.Rebind converts them to
$1, $2, ... for PostgreSQL.
*/
package db
