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

const planetColumns = "id, name, climate, terrain"

func scanPlanet(row scanner) (models.Planet, error) {
	var p models.Planet
	err := row.Scan(&p.ID, &p.Name, &p.Climate, &p.Terrain)
	return p, err
}

func (s *Store) scanPlanets(ctx context.Context, query string, args ...any) ([]models.Planet, error) {
	rows, err := s.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query planets: %w", err)
	}
	defer rows.Close()

	planets := []models.Planet{}
	for rows.Next() {
		p, err := scanPlanet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan planet: %w", err)
		}
		planets = append(planets, p)
	}
	return planets, rows.Err()
}

// AllPlanets returns every planet in insertion order
func (s *Store) AllPlanets(ctx context.Context) ([]models.Planet, error) {
	return s.scanPlanets(ctx, "SELECT "+planetColumns+" FROM planets ORDER BY id")
}

// PlanetByID returns nil without error when no planet has the id
func (s *Store) PlanetByID(ctx context.Context, id int64) (*models.Planet, error) {
	p, err := scanPlanet(s.queryRow(ctx, s.db, "SELECT "+planetColumns+" FROM planets WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query planet %d: %w", id, err)
	}
	return &p, nil
}

// PlanetsByIDs returns the planets found for ids, keyed by id
func (s *Store) PlanetsByIDs(ctx context.Context, ids []int64) (map[int64]models.Planet, error) {
	out := make(map[int64]models.Planet, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	planets, err := s.scanPlanets(ctx,
		"SELECT "+planetColumns+" FROM planets WHERE id IN ("+placeholders(len(ids))+")",
		idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, p := range planets {
		out[p.ID] = p
	}
	return out, nil
}

func (s *Store) CreatePlanet(ctx context.Context, in models.PlanetInput) (models.Planet, error) {
	var id int64
	err := s.queryRow(ctx, s.db, `
		INSERT INTO planets (name, climate, terrain)
		VALUES (?, ?, ?)
		RETURNING id
	`, in.Name, in.Climate, in.Terrain).Scan(&id)
	if err != nil {
		return models.Planet{}, classify(err, "Planet", in.Name)
	}

	p, err := s.mustPlanet(ctx, id)
	if err != nil {
		return models.Planet{}, err
	}

	s.log.Info("planet created", "planet_id", p.ID, "name", p.Name)
	return p, nil
}

// UpdatePlanet applies the fields set in patch and returns the stored row
func (s *Store) UpdatePlanet(ctx context.Context, id int64, patch models.PlanetPatch) (models.Planet, error) {
	cur, err := s.mustPlanet(ctx, id)
	if err != nil {
		return models.Planet{}, err
	}

	name := patch.Name.Or(cur.Name)
	_, err = s.exec(ctx, s.db, `
		UPDATE planets
		SET name = ?, climate = ?, terrain = ?
		WHERE id = ?
	`, name, patch.Climate.Or(cur.Climate), patch.Terrain.Or(cur.Terrain), id)
	if err != nil {
		return models.Planet{}, classify(err, "Planet", name)
	}

	p, err := s.mustPlanet(ctx, id)
	if err != nil {
		return models.Planet{}, err
	}

	s.log.Info("planet updated", "planet_id", id)
	return p, nil
}

// DeletePlanet removes a planet without residents. Reports false when the
// planet does not exist.
func (s *Store) DeletePlanet(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		var residents int
		err := s.queryRow(ctx, tx, "SELECT COUNT(*) FROM characters WHERE home_planet_id = ?", id).Scan(&residents)
		if err != nil {
			return fmt.Errorf("failed to count residents of planet %d: %w", id, err)
		}
		if residents > 0 {
			return apperr.Constraint("Cannot delete planet with %d residents", residents)
		}

		res, err := s.exec(ctx, tx, "DELETE FROM planets WHERE id = ?", id)
		if err != nil {
			if kind, ok := constraintKind(err); ok && kind == apperr.KindNotFound {
				return apperr.Wrap(apperr.KindConstraint, err, "Cannot delete planet with residents")
			}
			return fmt.Errorf("failed to delete planet %d: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete planet %d: %w", id, err)
		}
		deleted = n > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	if deleted {
		s.log.Info("planet deleted", "planet_id", id)
	}
	return deleted, nil
}

// PlanetExists is the referential pre-check for character writes
func (s *Store) PlanetExists(ctx context.Context, id int64) (bool, error) {
	p, err := s.PlanetByID(ctx, id)
	return p != nil, err
}

func (s *Store) mustPlanet(ctx context.Context, id int64) (models.Planet, error) {
	p, err := s.PlanetByID(ctx, id)
	if err != nil {
		return models.Planet{}, err
	}
	if p == nil {
		return models.Planet{}, apperr.NotFound("Planet with ID %d not found", id)
	}
	return *p, nil
}
