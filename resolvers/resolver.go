// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolvers

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/graph-gophers/graphql-go"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/loader"
	"github.com/danielhkuo/starwars-api/metrics"
	"github.com/danielhkuo/starwars-api/store"
)

//go:embed schema.graphql
var schemaSDL string

// SDL returns the schema definition served by NewSchema
func SDL() string {
	return schemaSDL
}

var errNoLoaders = errors.New("no loaders attached to request context")

// Resolver is the root of the Query and Mutation types
type Resolver struct {
	store *store.Store
	log   *slog.Logger
}

func New(st *store.Store) *Resolver {
	return &Resolver{
		store: st,
		log:   slog.Default().With("component", "resolvers"),
	}
}

// NewSchema parses the schema and binds it to a resolver over st
func NewSchema(st *store.Store, opts ...graphql.SchemaOpt) (*graphql.Schema, error) {
	opts = append([]graphql.SchemaOpt{graphql.MaxDepth(10)}, opts...)
	schema, err := graphql.ParseSchema(schemaSDL, New(st), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema: %w", err)
	}
	return schema, nil
}

// loadersFor returns the request's loaders. Relationship fields never read
// the store directly.
func loadersFor(ctx context.Context) (*loader.Loaders, error) {
	l := loader.For(ctx)
	if l == nil {
		return nil, errNoLoaders
	}
	return l, nil
}

// finish logs a failed operation and hands the engine an error it can render.
// Typed errors are unwrapped so their extensions reach the client.
func (r *Resolver) finish(op string, args any, err *error) {
	if *err == nil {
		return
	}

	e, ok := apperr.As(*err)
	if !ok {
		r.log.Error("resolver failed", "operation", op, "args", args, "error", *err)
		return
	}
	*err = e

	level := slog.LevelWarn
	if e.Kind == apperr.KindInternal {
		level = slog.LevelError
	}
	r.log.Log(context.Background(), level, "resolver failed",
		"operation", op,
		"args", args,
		"code", e.Kind.Code(),
		"error", e.Message,
	)
}

// finishMutation is finish plus the mutation outcome counter. A successful
// write drops the request's cached loads.
func (r *Resolver) finishMutation(ctx context.Context, op string, args any, err *error) {
	r.finish(op, args, err)

	code := "OK"
	if *err != nil {
		code = apperr.KindOf(*err).Code()
	} else if l := loader.For(ctx); l != nil {
		l.Reset()
	}
	metrics.Mutations.WithLabelValues(op, code).Inc()
}

func gqlID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}

// parseLookupID reads an id argument of a query. Ids that cannot name a row
// simply match nothing.
func parseLookupID(id graphql.ID) (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
