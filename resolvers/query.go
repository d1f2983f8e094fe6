// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolvers

import (
	"context"

	"github.com/graph-gophers/graphql-go"
)

type idArgs struct {
	ID graphql.ID
}

func (r *Resolver) AllCharacters(ctx context.Context) (_ []*characterResolver, err error) {
	defer r.finish("allCharacters", nil, &err)

	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.AllCharacters(ctx)
	if err != nil {
		return nil, err
	}
	return newCharacterList(l, rows), nil
}

func (r *Resolver) Character(ctx context.Context, args idArgs) (_ *characterResolver, err error) {
	defer r.finish("character", args, &err)

	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := parseLookupID(args.ID)
	if !ok {
		return nil, nil
	}
	c, err := l.Character.Load(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	return &characterResolver{c: *c}, nil
}

func (r *Resolver) AllPlanets(ctx context.Context) (_ []*planetResolver, err error) {
	defer r.finish("allPlanets", nil, &err)

	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.AllPlanets(ctx)
	if err != nil {
		return nil, err
	}
	return newPlanetList(l, rows), nil
}

func (r *Resolver) Planet(ctx context.Context, args idArgs) (_ *planetResolver, err error) {
	defer r.finish("planet", args, &err)

	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := parseLookupID(args.ID)
	if !ok {
		return nil, nil
	}
	p, err := l.Planet.Load(ctx, id)
	if err != nil || p == nil {
		return nil, err
	}
	return &planetResolver{p: *p}, nil
}

func (r *Resolver) AllStarships(ctx context.Context) (_ []*starshipResolver, err error) {
	defer r.finish("allStarships", nil, &err)

	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := r.store.AllStarships(ctx)
	if err != nil {
		return nil, err
	}
	return newStarshipList(l, rows), nil
}

func (r *Resolver) Starship(ctx context.Context, args idArgs) (_ *starshipResolver, err error) {
	defer r.finish("starship", args, &err)

	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}
	id, ok := parseLookupID(args.ID)
	if !ok {
		return nil, nil
	}
	s, err := l.Starship.Load(ctx, id)
	if err != nil || s == nil {
		return nil, err
	}
	return &starshipResolver{s: *s}, nil
}
