// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the Star Wars API.

# Route Registration

NewRouter parses the GraphQL schema and returns a configured http.ServeMux:

	mux, err := router.NewRouter(st, cfg)

# Endpoints

	GET  /               - API banner
	GET  /health         - Liveness plus database reachability
	POST /graphql        - GraphQL queries and mutations
	POST /auth/register  - Create an account
	POST /auth/login     - Exchange credentials for an access token
	GET  /auth/me        - Describe the caller of a token
	GET  /metrics        - Prometheus metrics

/graphql reads an optional "Authorization: Bearer <token>" header. Queries
are public; mutations need a token and deletes need the admin role.
*/
package router
