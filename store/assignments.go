// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"fmt"

	"github.com/danielhkuo/starwars-api/apperr"
)

// AssignStarship records that a character pilots a starship. Both sides must
// exist. Assigning an existing pair is a no-op; the result reports whether a
// new row was written.
func (s *Store) AssignStarship(ctx context.Context, characterID, starshipID int64) (bool, error) {
	c, err := s.CharacterByID(ctx, characterID)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, apperr.NotFound("Character with ID %d not found", characterID)
	}

	sh, err := s.StarshipByID(ctx, starshipID)
	if err != nil {
		return false, err
	}
	if sh == nil {
		return false, apperr.NotFound("Starship with ID %d not found", starshipID)
	}

	res, err := s.exec(ctx, s.db, `
		INSERT INTO character_starships (character_id, starship_id)
		VALUES (?, ?)
		ON CONFLICT (character_id, starship_id) DO NOTHING
	`, characterID, starshipID)
	if err != nil {
		if kind, ok := constraintKind(err); ok && kind == apperr.KindNotFound {
			return false, apperr.Wrap(kind, err, "Character or starship no longer exists")
		}
		return false, fmt.Errorf("failed to assign starship %d to character %d: %w", starshipID, characterID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to assign starship %d to character %d: %w", starshipID, characterID, err)
	}

	if n > 0 {
		s.log.Info("starship assigned", "character_id", characterID, "starship_id", starshipID)
	}
	return n > 0, nil
}
