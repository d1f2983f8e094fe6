// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/models"
)

const characterColumns = "c.id, c.name, c.species, c.home_planet_id"

func scanCharacter(row scanner, extra ...any) (models.Character, error) {
	var c models.Character
	dest := append([]any{&c.ID, &c.Name, &c.Species, &c.HomePlanetID}, extra...)
	err := row.Scan(dest...)
	return c, err
}

func (s *Store) scanCharacters(ctx context.Context, query string, args ...any) ([]models.Character, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query characters: %w", err)
	}
	defer rows.Close()

	characters := []models.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan character: %w", err)
		}
		characters = append(characters, c)
	}
	return characters, rows.Err()
}

// AllCharacters returns every character in insertion order
func (s *Store) AllCharacters(ctx context.Context) ([]models.Character, error) {
	return s.scanCharacters(ctx, "SELECT "+characterColumns+" FROM characters c ORDER BY c.id")
}

// CharacterByID returns nil without error when no character has the id
func (s *Store) CharacterByID(ctx context.Context, id int64) (*models.Character, error) {
	c, err := scanCharacter(s.queryRow(ctx, s.db, "SELECT "+characterColumns+" FROM characters c WHERE c.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query character %d: %w", id, err)
	}
	return &c, nil
}

// CharactersByIDs returns the characters found for ids, keyed by id
func (s *Store) CharactersByIDs(ctx context.Context, ids []int64) (map[int64]models.Character, error) {
	out := make(map[int64]models.Character, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	characters, err := s.scanCharacters(ctx,
		"SELECT "+characterColumns+" FROM characters c WHERE c.id IN ("+placeholders(len(ids))+") ORDER BY c.id",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, c := range characters {
		out[c.ID] = c
	}
	return out, nil
}

// ResidentsByPlanetIDs groups characters by home planet. Every requested
// planet id is present in the result, with an empty slice if nobody lives there.
func (s *Store) ResidentsByPlanetIDs(ctx context.Context, planetIDs []int64) (map[int64][]models.Character, error) {
	out := make(map[int64][]models.Character, len(planetIDs))
	for _, id := range planetIDs {
		out[id] = []models.Character{}
	}
	if len(planetIDs) == 0 {
		return out, nil
	}

	residents, err := s.scanCharacters(ctx,
		"SELECT "+characterColumns+" FROM characters c WHERE c.home_planet_id IN ("+placeholders(len(planetIDs))+") ORDER BY c.id",
		idArgs(planetIDs)...)
	if err != nil {
		return nil, err
	}
	for _, c := range residents {
		out[*c.HomePlanetID] = append(out[*c.HomePlanetID], c)
	}
	return out, nil
}

// PilotsByStarshipIDs groups assigned characters by starship. Every requested
// starship id is present in the result.
func (s *Store) PilotsByStarshipIDs(ctx context.Context, starshipIDs []int64) (map[int64][]models.Character, error) {
	out := make(map[int64][]models.Character, len(starshipIDs))
	for _, id := range starshipIDs {
		out[id] = []models.Character{}
	}
	if len(starshipIDs) == 0 {
		return out, nil
	}

	rows, err := s.query(ctx, `
		SELECT `+characterColumns+`, cs.starship_id
		FROM character_starships cs
		JOIN characters c ON cs.character_id = c.id
		WHERE cs.starship_id IN (`+placeholders(len(starshipIDs))+`)
		ORDER BY c.id
	`, idArgs(starshipIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query pilots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var starshipID int64
		c, err := scanCharacter(rows, &starshipID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pilot: %w", err)
		}
		out[starshipID] = append(out[starshipID], c)
	}
	return out, rows.Err()
}

func (s *Store) CreateCharacter(ctx context.Context, in models.CharacterInput) (models.Character, error) {
	var id int64
	err := s.queryRow(ctx, s.db, `
		INSERT INTO characters (name, species, home_planet_id)
		VALUES (?, ?, ?)
		RETURNING id
	`, in.Name, in.Species, in.HomePlanetID).Scan(&id)
	if err != nil {
		return models.Character{}, classify(err, "Character", in.Name)
	}

	c, err := s.mustCharacter(ctx, id)
	if err != nil {
		return models.Character{}, err
	}

	s.log.Info("character created", "character_id", c.ID, "name", c.Name)
	return c, nil
}

// UpdateCharacter applies the fields set in patch and returns the stored row
func (s *Store) UpdateCharacter(ctx context.Context, id int64, patch models.CharacterPatch) (models.Character, error) {
	cur, err := s.mustCharacter(ctx, id)
	if err != nil {
		return models.Character{}, err
	}

	name := patch.Name.Or(cur.Name)
	_, err = s.exec(ctx, s.db, `
		UPDATE characters
		SET name = ?, species = ?, home_planet_id = ?
		WHERE id = ?
	`, name, patch.Species.Or(cur.Species), patch.HomePlanetID.Or(cur.HomePlanetID), id)
	if err != nil {
		return models.Character{}, classify(err, "Character", name)
	}

	c, err := s.mustCharacter(ctx, id)
	if err != nil {
		return models.Character{}, err
	}

	s.log.Info("character updated", "character_id", id)
	return c, nil
}

// DeleteCharacter removes the character and its starship assignments.
// Reports false when the character does not exist.
func (s *Store) DeleteCharacter(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, "DELETE FROM character_starships WHERE character_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete assignments of character %d: %w", id, err)
		}
		res, err := s.exec(ctx, tx, "DELETE FROM characters WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete character %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete character %d: %w", id, err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info("character deleted", "character_id", id)
	}
	return deleted, nil
}

// CountCharacters returns the number of stored characters
func (s *Store) CountCharacters(ctx context.Context) (int, error) {
	var n int
	if err := s.queryRow(ctx, s.db, "SELECT COUNT(*) FROM characters").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count characters: %w", err)
	}
	return n, nil
}

func (s *Store) mustCharacter(ctx context.Context, id int64) (models.Character, error) {
	c, err := s.CharacterByID(ctx, id)
	if err != nil {
		return models.Character{}, err
	}
	if c == nil {
		return models.Character{}, apperr.NotFound("Character with ID %d not found", id)
	}
	return *c, nil
}
