// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package loader

import (
	"context"

	"github.com/danielhkuo/starwars-api/models"
)

// Source is the batched read surface of the store
type Source interface {
	PlanetsByIDs(ctx context.Context, ids []int64) (map[int64]models.Planet, error)
	CharactersByIDs(ctx context.Context, ids []int64) (map[int64]models.Character, error)
	StarshipsByIDs(ctx context.Context, ids []int64) (map[int64]models.Starship, error)
	StarshipsByCharacterIDs(ctx context.Context, characterIDs []int64) (map[int64][]models.Starship, error)
	ResidentsByPlanetIDs(ctx context.Context, planetIDs []int64) (map[int64][]models.Character, error)
	PilotsByStarshipIDs(ctx context.Context, starshipIDs []int64) (map[int64][]models.Character, error)
}

// Loaders is the per-request set of key-spaces
type Loaders struct {
	Planet             *Loader[int64, *models.Planet]
	Character          *Loader[int64, *models.Character]
	Starship           *Loader[int64, *models.Starship]
	CharacterStarships *Loader[int64, []models.Starship]
	PlanetResidents    *Loader[int64, []models.Character]
	StarshipPilots     *Loader[int64, []models.Character]
}

func NewLoaders(src Source, opts ...Option) *Loaders {
	return &Loaders{
		Planet:             New[int64, *models.Planet]("planet", byID(src.PlanetsByIDs), opts...),
		Character:          New[int64, *models.Character]("character", byID(src.CharactersByIDs), opts...),
		Starship:           New[int64, *models.Starship]("starship", byID(src.StarshipsByIDs), opts...),
		CharacterStarships: New[int64, []models.Starship]("character_starships", src.StarshipsByCharacterIDs, opts...),
		PlanetResidents:    New[int64, []models.Character]("planet_residents", src.ResidentsByPlanetIDs, opts...),
		StarshipPilots:     New[int64, []models.Character]("starship_pilots", src.PilotsByStarshipIDs, opts...),
	}
}

// Reset clears every key-space. Called after a write so later fields in the
// same request see it.
func (l *Loaders) Reset() {
	l.Planet.Clear()
	l.Character.Clear()
	l.Starship.Clear()
	l.CharacterStarships.Clear()
	l.PlanetResidents.Clear()
	l.StarshipPilots.Clear()
}

// byID adapts a by-id read to pointer values so that unknown ids load as nil
func byID[T any](fetch func(context.Context, []int64) (map[int64]T, error)) BatchFunc[int64, *T] {
	return func(ctx context.Context, keys []int64) (map[int64]*T, error) {
		rows, err := fetch(ctx, keys)
		if err != nil {
			return nil, err
		}
		out := make(map[int64]*T, len(rows))
		for id, row := range rows {
			out[id] = &row
		}
		return out, nil
	}
}

type ctxKey struct{}

// WithLoaders attaches a request's loaders to ctx
func WithLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// For returns the loaders attached to ctx, or nil
func For(ctx context.Context) *Loaders {
	l, _ := ctx.Value(ctxKey{}).(*Loaders)
	return l
}
