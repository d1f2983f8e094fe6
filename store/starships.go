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

const starshipColumns = "s.id, s.name, s.model, s.manufacturer"

func scanStarship(row scanner, extra ...any) (models.Starship, error) {
	var sh models.Starship
	dest := append([]any{&sh.ID, &sh.Name, &sh.Model, &sh.Manufacturer}, extra...)
	err := row.Scan(dest...)
	return sh, err
}

func (s *Store) scanStarships(ctx context.Context, query string, args ...any) ([]models.Starship, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query starships: %w", err)
	}
	defer rows.Close()

	starships := []models.Starship{}
	for rows.Next() {
		sh, err := scanStarship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan starship: %w", err)
		}
		starships = append(starships, sh)
	}
	return starships, rows.Err()
}

// AllStarships returns every starship in insertion order
func (s *Store) AllStarships(ctx context.Context) ([]models.Starship, error) {
	return s.scanStarships(ctx, "SELECT "+starshipColumns+" FROM starships s ORDER BY s.id")
}

// StarshipByID returns nil without error when no starship has the id
func (s *Store) StarshipByID(ctx context.Context, id int64) (*models.Starship, error) {
	sh, err := scanStarship(s.queryRow(ctx, s.db, "SELECT "+starshipColumns+" FROM starships s WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query starship %d: %w", id, err)
	}
	return &sh, nil
}

// StarshipsByIDs returns the starships found for ids, keyed by id
func (s *Store) StarshipsByIDs(ctx context.Context, ids []int64) (map[int64]models.Starship, error) {
	out := make(map[int64]models.Starship, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	starships, err := s.scanStarships(ctx,
		"SELECT "+starshipColumns+" FROM starships s WHERE s.id IN ("+placeholders(len(ids))+") ORDER BY s.id",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, sh := range starships {
		out[sh.ID] = sh
	}
	return out, nil
}

// StarshipsByCharacterIDs groups piloted starships by character. Every
// requested character id is present in the result.
func (s *Store) StarshipsByCharacterIDs(ctx context.Context, characterIDs []int64) (map[int64][]models.Starship, error) {
	out := make(map[int64][]models.Starship, len(characterIDs))
	for _, id := range characterIDs {
		out[id] = []models.Starship{}
	}
	if len(characterIDs) == 0 {
		return out, nil
	}

	rows, err := s.query(ctx, `
		SELECT `+starshipColumns+`, cs.character_id
		FROM character_starships cs
		JOIN starships s ON cs.starship_id = s.id
		WHERE cs.character_id IN (`+placeholders(len(characterIDs))+`)
		ORDER BY s.id
	`, idArgs(characterIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query piloted starships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var characterID int64
		sh, err := scanStarship(rows, &characterID)
		if err != nil {
			return nil, fmt.Errorf("failed to scan piloted starship: %w", err)
		}
		out[characterID] = append(out[characterID], sh)
	}
	return out, rows.Err()
}

func (s *Store) CreateStarship(ctx context.Context, in models.StarshipInput) (models.Starship, error) {
	var id int64
	err := s.queryRow(ctx, s.db, `
		INSERT INTO starships (name, model, manufacturer)
		VALUES (?, ?, ?)
		RETURNING id
	`, in.Name, in.Model, in.Manufacturer).Scan(&id)
	if err != nil {
		return models.Starship{}, classify(err, "Starship", in.Name)
	}

	sh, err := s.mustStarship(ctx, id)
	if err != nil {
		return models.Starship{}, err
	}

	s.log.Info("starship created", "starship_id", sh.ID, "name", sh.Name)
	return sh, nil
}

// UpdateStarship applies the fields set in patch and returns the stored row
func (s *Store) UpdateStarship(ctx context.Context, id int64, patch models.StarshipPatch) (models.Starship, error) {
	cur, err := s.mustStarship(ctx, id)
	if err != nil {
		return models.Starship{}, err
	}

	name := patch.Name.Or(cur.Name)
	_, err = s.exec(ctx, s.db, `
		UPDATE starships
		SET name = ?, model = ?, manufacturer = ?
		WHERE id = ?
	`, name, patch.Model.Or(cur.Model), patch.Manufacturer.Or(cur.Manufacturer), id)
	if err != nil {
		return models.Starship{}, classify(err, "Starship", name)
	}

	sh, err := s.mustStarship(ctx, id)
	if err != nil {
		return models.Starship{}, err
	}

	s.log.Info("starship updated", "starship_id", id)
	return sh, nil
}

// DeleteStarship removes the starship and its pilot assignments.
// Reports false when the starship does not exist.
func (s *Store) DeleteStarship(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, "DELETE FROM character_starships WHERE starship_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete assignments of starship %d: %w", id, err)
		}
		res, err := s.exec(ctx, tx, "DELETE FROM starships WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to delete starship %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete starship %d: %w", id, err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info("starship deleted", "starship_id", id)
	}
	return deleted, nil
}

func (s *Store) mustStarship(ctx context.Context, id int64) (models.Starship, error) {
	sh, err := s.StarshipByID(ctx, id)
	if err != nil {
		return models.Starship{}, err
	}
	if sh == nil {
		return models.Starship{}, apperr.NotFound("Starship with ID %d not found", id)
	}
	return *sh, nil
}
