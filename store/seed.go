// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/danielhkuo/starwars-api/models"
)

func str(s string) *string { return &s }

var seedPlanets = []models.PlanetInput{
	{Name: "Tatooine", Climate: str("Arid"), Terrain: str("Desert")},
	{Name: "Alderaan", Climate: str("Temperate"), Terrain: str("Grasslands, Mountains")},
	{Name: "Yavin IV", Climate: str("Temperate, Humid"), Terrain: str("Jungle, Rainforests")},
	{Name: "Naboo", Climate: str("Temperate"), Terrain: str("Grassy Hills, Swamps")},
	{Name: "Coruscant", Climate: str("Temperate"), Terrain: str("Cityscape")},
}

var seedCharacters = []struct {
	name, species, homePlanet string
}{
	{"Luke Skywalker", "Human", "Tatooine"},
	{"Leia Organa", "Human", "Alderaan"},
	{"Han Solo", "Human", ""},
	{"C-3PO", "Droid", ""},
	{"Yoda", "Unknown", ""},
}

var seedStarships = []models.StarshipInput{
	{Name: "Millennium Falcon", Model: str("YT-1300 light freighter"), Manufacturer: str("Corellian Engineering")},
	{Name: "X-wing", Model: str("T-65 X-wing starfighter"), Manufacturer: str("Incom Corporation")},
	{Name: "TIE Fighter", Model: str("TIE/LN starfighter"), Manufacturer: str("Sienar Fleet Systems")},
}

var seedAssignments = [][2]string{
	{"Han Solo", "Millennium Falcon"},
	{"Luke Skywalker", "X-wing"},
}

// Seed loads the sample data set when no characters exist yet. Leftover
// planets and starships from a partial dataset are cleared first.
func (s *Store) Seed(ctx context.Context) (bool, error) {
	n, err := s.CountCharacters(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	err = s.withTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"character_starships", "characters", "starships", "planets"} {
			if _, err := s.exec(ctx, tx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	planetIDs := make(map[string]int64, len(seedPlanets))
	for _, in := range seedPlanets {
		p, err := s.CreatePlanet(ctx, in)
		if err != nil {
			return false, fmt.Errorf("failed to seed planet %s: %w", in.Name, err)
		}
		planetIDs[p.Name] = p.ID
	}

	characterIDs := make(map[string]int64, len(seedCharacters))
	for _, sc := range seedCharacters {
		in := models.CharacterInput{Name: sc.name, Species: str(sc.species)}
		if sc.homePlanet != "" {
			id := planetIDs[sc.homePlanet]
			in.HomePlanetID = &id
		}
		c, err := s.CreateCharacter(ctx, in)
		if err != nil {
			return false, fmt.Errorf("failed to seed character %s: %w", sc.name, err)
		}
		characterIDs[c.Name] = c.ID
	}

	starshipIDs := make(map[string]int64, len(seedStarships))
	for _, in := range seedStarships {
		sh, err := s.CreateStarship(ctx, in)
		if err != nil {
			return false, fmt.Errorf("failed to seed starship %s: %w", in.Name, err)
		}
		starshipIDs[sh.Name] = sh.ID
	}

	for _, a := range seedAssignments {
		if _, err := s.AssignStarship(ctx, characterIDs[a[0]], starshipIDs[a[1]]); err != nil {
			return false, fmt.Errorf("failed to seed assignment %s → %s: %w", a[0], a[1], err)
		}
	}

	s.log.Info("database seeded",
		"planets", len(seedPlanets),
		"characters", len(seedCharacters),
		"starships", len(seedStarships),
	)
	return true, nil
}
