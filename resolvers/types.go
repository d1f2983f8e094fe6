// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolvers

import (
	"context"
	"sync"

	"github.com/graph-gophers/graphql-go"

	"github.com/danielhkuo/starwars-api/loader"
	"github.com/danielhkuo/starwars-api/models"
)

// The engine resolves each element of a list on its own. Objects built from
// one list share a group, and the first relationship field resolved in the
// group enqueues every sibling's key at once, so a list of N parents costs one
// batched store query per relationship. The child lists of all siblings are
// built together into one group of their own, which carries the batching to
// the next level.

type characterGroup struct {
	ids       []int64
	planetIDs []int64

	planets sync.Once
	ships   children[*starshipResolver]
}

type planetGroup struct {
	ids       []int64
	residents children[*characterResolver]
}

type starshipGroup struct {
	ids    []int64
	pilots children[*characterResolver]
}

// children holds one relationship's lists for every sibling of a group
type children[R any] struct {
	once  sync.Once
	lists map[int64][]R
	err   error
}

func (c *children[R]) get(id int64, build func() (map[int64][]R, error)) ([]R, error) {
	c.once.Do(func() { c.lists, c.err = build() })
	if c.err != nil {
		return nil, c.err
	}
	return c.lists[id], nil
}

func byParent[R any](ids []int64, lists [][]R) map[int64][]R {
	out := make(map[int64][]R, len(ids))
	for i, id := range ids {
		out[id] = lists[i]
	}
	return out
}

// Character

type characterResolver struct {
	c     models.Character
	group *characterGroup
}

func newCharacterList(l *loader.Loaders, rows []models.Character) []*characterResolver {
	return newCharacterLists(l, [][]models.Character{rows})[0]
}

// newCharacterLists builds several lists whose elements share one group
func newCharacterLists(l *loader.Loaders, lists [][]models.Character) [][]*characterResolver {
	g := &characterGroup{}
	seen := map[int64]bool{}
	out := make([][]*characterResolver, len(lists))
	for i, rows := range lists {
		out[i] = make([]*characterResolver, 0, len(rows))
		for _, c := range rows {
			if !seen[c.ID] {
				seen[c.ID] = true
				g.ids = append(g.ids, c.ID)
				if c.HomePlanetID != nil {
					g.planetIDs = append(g.planetIDs, *c.HomePlanetID)
				}
				l.Character.Prime(c.ID, &c)
			}
			out[i] = append(out[i], &characterResolver{c: c, group: g})
		}
	}
	return out
}

func (r *characterResolver) ID() graphql.ID {
	return gqlID(r.c.ID)
}

func (r *characterResolver) Name() string {
	return r.c.Name
}

func (r *characterResolver) Species() *string {
	return r.c.Species
}

// HomePlanet is null when unset or when the planet no longer exists
func (r *characterResolver) HomePlanet(ctx context.Context) (*planetResolver, error) {
	if r.c.HomePlanetID == nil {
		return nil, nil
	}
	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}

	if g := r.group; g != nil {
		g.planets.Do(func() { l.Planet.Prefetch(ctx, g.planetIDs) })
	}

	p, err := l.Planet.Load(ctx, *r.c.HomePlanetID)
	if err != nil || p == nil {
		return nil, err
	}
	return &planetResolver{p: *p}, nil
}

func (r *characterResolver) PilotedStarships(ctx context.Context) ([]*starshipResolver, error) {
	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}

	if g := r.group; g != nil {
		return g.ships.get(r.c.ID, func() (map[int64][]*starshipResolver, error) {
			lists, err := l.CharacterStarships.LoadMany(ctx, g.ids)
			if err != nil {
				return nil, err
			}
			return byParent(g.ids, newStarshipLists(l, lists)), nil
		})
	}

	ships, err := l.CharacterStarships.Load(ctx, r.c.ID)
	if err != nil {
		return nil, err
	}
	return newStarshipList(l, ships), nil
}

// Planet

type planetResolver struct {
	p     models.Planet
	group *planetGroup
}

func newPlanetList(l *loader.Loaders, rows []models.Planet) []*planetResolver {
	g := &planetGroup{ids: make([]int64, 0, len(rows))}
	out := make([]*planetResolver, 0, len(rows))
	for _, p := range rows {
		g.ids = append(g.ids, p.ID)
		l.Planet.Prime(p.ID, &p)
		out = append(out, &planetResolver{p: p, group: g})
	}
	return out
}

func (r *planetResolver) ID() graphql.ID {
	return gqlID(r.p.ID)
}

func (r *planetResolver) Name() string {
	return r.p.Name
}

func (r *planetResolver) Climate() *string {
	return r.p.Climate
}

func (r *planetResolver) Terrain() *string {
	return r.p.Terrain
}

func (r *planetResolver) Residents(ctx context.Context) ([]*characterResolver, error) {
	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}

	if g := r.group; g != nil {
		return g.residents.get(r.p.ID, func() (map[int64][]*characterResolver, error) {
			lists, err := l.PlanetResidents.LoadMany(ctx, g.ids)
			if err != nil {
				return nil, err
			}
			return byParent(g.ids, newCharacterLists(l, lists)), nil
		})
	}

	residents, err := l.PlanetResidents.Load(ctx, r.p.ID)
	if err != nil {
		return nil, err
	}
	return newCharacterList(l, residents), nil
}

// Starship

type starshipResolver struct {
	s     models.Starship
	group *starshipGroup
}

func newStarshipList(l *loader.Loaders, rows []models.Starship) []*starshipResolver {
	return newStarshipLists(l, [][]models.Starship{rows})[0]
}

func newStarshipLists(l *loader.Loaders, lists [][]models.Starship) [][]*starshipResolver {
	g := &starshipGroup{}
	seen := map[int64]bool{}
	out := make([][]*starshipResolver, len(lists))
	for i, rows := range lists {
		out[i] = make([]*starshipResolver, 0, len(rows))
		for _, s := range rows {
			if !seen[s.ID] {
				seen[s.ID] = true
				g.ids = append(g.ids, s.ID)
				l.Starship.Prime(s.ID, &s)
			}
			out[i] = append(out[i], &starshipResolver{s: s, group: g})
		}
	}
	return out
}

func (r *starshipResolver) ID() graphql.ID {
	return gqlID(r.s.ID)
}

func (r *starshipResolver) Name() string {
	return r.s.Name
}

func (r *starshipResolver) Model() *string {
	return r.s.Model
}

func (r *starshipResolver) Manufacturer() *string {
	return r.s.Manufacturer
}

func (r *starshipResolver) Pilots(ctx context.Context) ([]*characterResolver, error) {
	l, err := loadersFor(ctx)
	if err != nil {
		return nil, err
	}

	if g := r.group; g != nil {
		return g.pilots.get(r.s.ID, func() (map[int64][]*characterResolver, error) {
			lists, err := l.StarshipPilots.LoadMany(ctx, g.ids)
			if err != nil {
				return nil, err
			}
			return byParent(g.ids, newCharacterLists(l, lists)), nil
		})
	}

	pilots, err := l.StarshipPilots.Load(ctx, r.s.ID)
	if err != nil {
		return nil, err
	}
	return newCharacterList(l, pilots), nil
}
