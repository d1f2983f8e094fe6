// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package resolvers

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/auth"
	"github.com/danielhkuo/starwars-api/models"
	"github.com/danielhkuo/starwars-api/validate"
)

// Every mutation runs: auth gate, validation, referential pre-checks, the
// store write, then returns the row as stored.

type createPlanetInput struct {
	Name    string
	Climate *string
	Terrain *string
}

type updatePlanetInput struct {
	ID      graphql.ID
	Name    graphql.NullString
	Climate graphql.NullString
	Terrain graphql.NullString
}

type createCharacterInput struct {
	Name         string
	Species      *string
	HomePlanetID *int32
}

type updateCharacterInput struct {
	ID           graphql.ID
	Name         graphql.NullString
	Species      graphql.NullString
	HomePlanetID graphql.NullInt
}

type createStarshipInput struct {
	Name         string
	Model        *string
	Manufacturer *string
}

type updateStarshipInput struct {
	ID           graphql.ID
	Name         graphql.NullString
	Model        graphql.NullString
	Manufacturer graphql.NullString
}

type assignStarshipInput struct {
	CharacterID graphql.ID
	StarshipID  graphql.ID
}

func nullString(v graphql.NullString) models.Optional[*string] {
	return models.Optional[*string]{Value: v.Value, Set: v.Set}
}

func nullInt(v graphql.NullInt) models.Optional[*int64] {
	return models.Optional[*int64]{Value: widen(v.Value), Set: v.Set}
}

func widen(v *int32) *int64 {
	if v == nil {
		return nil
	}
	n := int64(*v)
	return &n
}

func (r *Resolver) requirePlanet(ctx context.Context, id int64) error {
	ok, err := r.store.PlanetExists(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Planet with ID %d not found", id)
	}
	return nil
}

// Planets

func (r *Resolver) CreatePlanet(ctx context.Context, args struct{ Input createPlanetInput }) (_ *planetResolver, err error) {
	defer r.finishMutation(ctx, "createPlanet", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	in := models.PlanetInput{Name: args.Input.Name, Climate: args.Input.Climate, Terrain: args.Input.Terrain}
	if err := validate.CreatePlanet(in); err != nil {
		return nil, err
	}

	p, err := r.store.CreatePlanet(ctx, in)
	if err != nil {
		return nil, err
	}
	return &planetResolver{p: p}, nil
}

func (r *Resolver) UpdatePlanet(ctx context.Context, args struct{ Input updatePlanetInput }) (_ *planetResolver, err error) {
	defer r.finishMutation(ctx, "updatePlanet", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	id, patch, err := validate.UpdatePlanet(validate.PlanetUpdate{
		ID:      string(args.Input.ID),
		Name:    nullString(args.Input.Name),
		Climate: nullString(args.Input.Climate),
		Terrain: nullString(args.Input.Terrain),
	})
	if err != nil {
		return nil, err
	}

	p, err := r.store.UpdatePlanet(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &planetResolver{p: p}, nil
}

func (r *Resolver) DeletePlanet(ctx context.Context, args idArgs) (_ bool, err error) {
	defer r.finishMutation(ctx, "deletePlanet", args, &err)

	if _, err := auth.RequireAdmin(ctx); err != nil {
		return false, err
	}
	id, err := validate.ID("id", string(args.ID))
	if err != nil {
		return false, err
	}

	deleted, err := r.store.DeletePlanet(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, apperr.NotFound("Planet with ID %d not found", id)
	}
	return true, nil
}

// Characters

func (r *Resolver) CreateCharacter(ctx context.Context, args struct{ Input createCharacterInput }) (_ *characterResolver, err error) {
	defer r.finishMutation(ctx, "createCharacter", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	in := models.CharacterInput{
		Name:         args.Input.Name,
		Species:      args.Input.Species,
		HomePlanetID: widen(args.Input.HomePlanetID),
	}
	if err := validate.CreateCharacter(in); err != nil {
		return nil, err
	}
	if in.HomePlanetID != nil {
		if err := r.requirePlanet(ctx, *in.HomePlanetID); err != nil {
			return nil, err
		}
	}

	c, err := r.store.CreateCharacter(ctx, in)
	if err != nil {
		return nil, err
	}
	return &characterResolver{c: c}, nil
}

func (r *Resolver) UpdateCharacter(ctx context.Context, args struct{ Input updateCharacterInput }) (_ *characterResolver, err error) {
	defer r.finishMutation(ctx, "updateCharacter", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	id, patch, err := validate.UpdateCharacter(validate.CharacterUpdate{
		ID:           string(args.Input.ID),
		Name:         nullString(args.Input.Name),
		Species:      nullString(args.Input.Species),
		HomePlanetID: nullInt(args.Input.HomePlanetID),
	})
	if err != nil {
		return nil, err
	}
	if patch.HomePlanetID.Set && patch.HomePlanetID.Value != nil {
		if err := r.requirePlanet(ctx, *patch.HomePlanetID.Value); err != nil {
			return nil, err
		}
	}

	c, err := r.store.UpdateCharacter(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &characterResolver{c: c}, nil
}

func (r *Resolver) DeleteCharacter(ctx context.Context, args idArgs) (_ bool, err error) {
	defer r.finishMutation(ctx, "deleteCharacter", args, &err)

	if _, err := auth.RequireAdmin(ctx); err != nil {
		return false, err
	}
	id, err := validate.ID("id", string(args.ID))
	if err != nil {
		return false, err
	}

	deleted, err := r.store.DeleteCharacter(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, apperr.NotFound("Character with ID %d not found", id)
	}
	return true, nil
}

// Starships

func (r *Resolver) CreateStarship(ctx context.Context, args struct{ Input createStarshipInput }) (_ *starshipResolver, err error) {
	defer r.finishMutation(ctx, "createStarship", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	in := models.StarshipInput{Name: args.Input.Name, Model: args.Input.Model, Manufacturer: args.Input.Manufacturer}
	if err := validate.CreateStarship(in); err != nil {
		return nil, err
	}

	s, err := r.store.CreateStarship(ctx, in)
	if err != nil {
		return nil, err
	}
	return &starshipResolver{s: s}, nil
}

func (r *Resolver) UpdateStarship(ctx context.Context, args struct{ Input updateStarshipInput }) (_ *starshipResolver, err error) {
	defer r.finishMutation(ctx, "updateStarship", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	id, patch, err := validate.UpdateStarship(validate.StarshipUpdate{
		ID:           string(args.Input.ID),
		Name:         nullString(args.Input.Name),
		Model:        nullString(args.Input.Model),
		Manufacturer: nullString(args.Input.Manufacturer),
	})
	if err != nil {
		return nil, err
	}

	s, err := r.store.UpdateStarship(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return &starshipResolver{s: s}, nil
}

func (r *Resolver) DeleteStarship(ctx context.Context, args idArgs) (_ bool, err error) {
	defer r.finishMutation(ctx, "deleteStarship", args, &err)

	if _, err := auth.RequireAdmin(ctx); err != nil {
		return false, err
	}
	id, err := validate.ID("id", string(args.ID))
	if err != nil {
		return false, err
	}

	deleted, err := r.store.DeleteStarship(ctx, id)
	if err != nil {
		return false, err
	}
	if !deleted {
		return false, apperr.NotFound("Starship with ID %d not found", id)
	}
	return true, nil
}

// Assignments

func (r *Resolver) AssignStarship(ctx context.Context, args struct{ Input assignStarshipInput }) (_ *characterResolver, err error) {
	defer r.finishMutation(ctx, "assignStarship", args.Input, &err)

	if _, err := auth.RequireAuth(ctx); err != nil {
		return nil, err
	}
	characterID, starshipID, err := validate.AssignStarship(string(args.Input.CharacterID), string(args.Input.StarshipID))
	if err != nil {
		return nil, err
	}

	if _, err := r.store.AssignStarship(ctx, characterID, starshipID); err != nil {
		return nil, err
	}

	c, err := r.store.CharacterByID(ctx, characterID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, apperr.NotFound("Character with ID %d not found", characterID)
	}
	return &characterResolver{c: *c}, nil
}
