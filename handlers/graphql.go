// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/danielhkuo/starwars-api/loader"
	"github.com/danielhkuo/starwars-api/middleware"
)

// maxQueryBytes bounds a GraphQL request body
const maxQueryBytes = 1 << 20

// GraphQLHandler serves POST /graphql. Every request gets its own loaders so
// cached relationship reads never outlive the request.
type GraphQLHandler struct {
	relay  *relay.Handler
	source loader.Source
	opts   []loader.Option
}

func NewGraphQLHandler(schema *graphql.Schema, source loader.Source, opts ...loader.Option) *GraphQLHandler {
	return &GraphQLHandler{
		relay:  &relay.Handler{Schema: schema},
		source: source,
		opts:   opts,
	}
}

func (h *GraphQLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQueryBytes))
	r.Body.Close()
	if err != nil {
		middleware.ErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	if slog.Default().Enabled(r.Context(), slog.LevelDebug) {
		var params struct {
			OperationName string                 `json:"operationName"`
			Variables     map[string]interface{} `json:"variables"`
		}
		if err := json.Unmarshal(body, &params); err != nil {
			slog.Debug("graphql body not decodable for logging",
				"request_id", middleware.RequestID(r.Context()),
				"error", err,
			)
		}
		slog.Debug("graphql operation",
			"request_id", middleware.RequestID(r.Context()),
			"operation", params.OperationName,
			"variables", params.Variables,
		)
	}

	loaders := loader.NewLoaders(h.source, h.opts...)
	r = r.WithContext(loader.WithLoaders(r.Context(), loaders))
	r.Body = io.NopCloser(bytes.NewReader(body))

	h.relay.ServeHTTP(w, r)

	slog.Debug("graphql loaders",
		"request_id", middleware.RequestID(r.Context()),
		"planet_fetches", loaders.Planet.Fetches(),
		"character_fetches", loaders.Character.Fetches(),
		"starship_fetches", loaders.Starship.Fetches(),
		"character_starships_fetches", loaders.CharacterStarships.Fetches(),
		"planet_residents_fetches", loaders.PlanetResidents.Fetches(),
		"starship_pilots_fetches", loaders.StarshipPilots.Fetches(),
	)
}
