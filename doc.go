// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the Star Wars GraphQL API server.

The API serves planets, characters and starships over GraphQL, with
relationship fields resolved through per-request batched loaders and
writes gated by JWT access tokens.

# Starting the Server

	SECRET_KEY=change-me go run .

Or with flags:

	go run . -p 4000 -d starwars.db -secret change-me

Variables may also come from a .env file in the working directory.

# Configuration

Required settings:

  - SECRET_KEY (--secret): JWT signing key

Optional settings:

  - PORT (-p): Server port (default: 4000)
  - DATABASE_URL (-d): SQLite file or PostgreSQL URL (default: starwars.db)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - ACCESS_TOKEN_EXPIRE_MINUTES: token lifetime (default: 30)
  - LOG_LEVEL: debug, info, warn or error (default: info)
  - ADMIN_PASSWORD: creates the "admin" user on startup when set
  - SEED: load sample data into an empty database (default: true)
  - LOADER_WAIT: batch window for relationship loaders, e.g. 2ms (default: 0)

# Architecture

  - resolvers: GraphQL schema and resolvers
  - loader: Per-request batching and caching of relationship reads
  - store: SQL access, constraint mapping and seed data
  - validate: Mutation and credential input checks
  - apperr: Typed errors and their client codes
  - handlers: /graphql and /auth/* HTTP handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, authentication, JSON helpers
  - auth: Password hashing, access tokens, request principal
  - metrics: Prometheus collectors
  - db: Connections and embedded migrations
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
