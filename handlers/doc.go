// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers of the Star Wars API.

# Handler Types

  - AuthHandler: registration, login and token introspection
  - GraphQLHandler: the single GraphQL endpoint

Handlers are created via constructor functions:

	authHandler := handlers.NewAuthHandler(st, issuer)
	gql := handlers.NewGraphQLHandler(schema, st, loader.WithWait(cfg.LoaderWait))

# Credential Endpoints

	POST /auth/register → Register (201, 422 on validation, 400 on duplicate)
	POST /auth/login    → Login (bearer token plus user info)
	GET  /auth/me       → Me (claims of the presented token)

Failures answer with a JSON ErrorResponse. Validation and duplicate
failures carry a machine-readable code.

# GraphQL

POST /graphql reads the body, attaches a fresh set of batched loaders to
the request context and hands off to the relay handler. The caller's
principal, when any, is attached earlier by middleware.Authenticate.
Errors are reported in the GraphQL "errors" array with extensions.code;
the HTTP status stays 200.
*/
package handlers
