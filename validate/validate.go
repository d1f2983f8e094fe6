// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/models"
)

const (
	maxNameLen         = 100
	maxClimateLen      = 50
	maxTerrainLen      = 100
	maxSpeciesLen      = 50
	maxModelLen        = 100
	maxManufacturerLen = 100

	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 6
	maxPasswordLen = 72
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// errs collects field violations in the order they are checked
type errs struct {
	fields []apperr.FieldError
}

func (e *errs) add(field, format string, args ...any) {
	e.fields = append(e.fields, apperr.FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (e *errs) err() error {
	if len(e.fields) == 0 {
		return nil
	}
	return apperr.Validation(e.fields)
}

func (e *errs) name(field, v string) {
	switch n := utf8.RuneCountInString(v); {
	case n == 0:
		e.add(field, "must not be empty")
	case n > maxNameLen:
		e.add(field, "must be at most %d characters", maxNameLen)
	}
}

// optionalName checks a name on update: it may be omitted but not null
func (e *errs) optionalName(field string, v models.Optional[*string]) models.Optional[string] {
	if !v.Set {
		return models.Optional[string]{}
	}
	if v.Value == nil {
		e.add(field, "must not be null")
		return models.Optional[string]{}
	}
	e.name(field, *v.Value)
	return models.Some(*v.Value)
}

func (e *errs) maxLen(field string, v *string, max int) {
	if v != nil && utf8.RuneCountInString(*v) > max {
		e.add(field, "must be at most %d characters", max)
	}
}

func (e *errs) positive(field string, v *int64) {
	if v != nil && *v <= 0 {
		e.add(field, "must be a positive integer")
	}
}

func (e *errs) id(field, raw string) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		e.add(field, "must be a positive integer id")
		return 0
	}
	return id
}

// ID coerces a GraphQL ID argument to a row id
func ID(field, raw string) (int64, error) {
	var e errs
	id := e.id(field, raw)
	return id, e.err()
}

// Planet

func CreatePlanet(in models.PlanetInput) error {
	var e errs
	e.name("name", in.Name)
	e.maxLen("climate", in.Climate, maxClimateLen)
	e.maxLen("terrain", in.Terrain, maxTerrainLen)
	return e.err()
}

// PlanetUpdate is an update request as received: every field may be
// omitted, and nullable fields may be explicitly null.
type PlanetUpdate struct {
	ID      string
	Name    models.Optional[*string]
	Climate models.Optional[*string]
	Terrain models.Optional[*string]
}

func UpdatePlanet(u PlanetUpdate) (int64, models.PlanetPatch, error) {
	var e errs
	id := e.id("id", u.ID)
	patch := models.PlanetPatch{
		Name:    e.optionalName("name", u.Name),
		Climate: u.Climate,
		Terrain: u.Terrain,
	}
	e.maxLen("climate", u.Climate.Value, maxClimateLen)
	e.maxLen("terrain", u.Terrain.Value, maxTerrainLen)
	return id, patch, e.err()
}

// Character

func CreateCharacter(in models.CharacterInput) error {
	var e errs
	e.name("name", in.Name)
	e.maxLen("species", in.Species, maxSpeciesLen)
	e.positive("homePlanetId", in.HomePlanetID)
	return e.err()
}

type CharacterUpdate struct {
	ID           string
	Name         models.Optional[*string]
	Species      models.Optional[*string]
	HomePlanetID models.Optional[*int64]
}

func UpdateCharacter(u CharacterUpdate) (int64, models.CharacterPatch, error) {
	var e errs
	id := e.id("id", u.ID)
	patch := models.CharacterPatch{
		Name:         e.optionalName("name", u.Name),
		Species:      u.Species,
		HomePlanetID: u.HomePlanetID,
	}
	e.maxLen("species", u.Species.Value, maxSpeciesLen)
	e.positive("homePlanetId", u.HomePlanetID.Value)
	return id, patch, e.err()
}

// Starship

func CreateStarship(in models.StarshipInput) error {
	var e errs
	e.name("name", in.Name)
	e.maxLen("model", in.Model, maxModelLen)
	e.maxLen("manufacturer", in.Manufacturer, maxManufacturerLen)
	return e.err()
}

type StarshipUpdate struct {
	ID           string
	Name         models.Optional[*string]
	Model        models.Optional[*string]
	Manufacturer models.Optional[*string]
}

func UpdateStarship(u StarshipUpdate) (int64, models.StarshipPatch, error) {
	var e errs
	id := e.id("id", u.ID)
	patch := models.StarshipPatch{
		Name:         e.optionalName("name", u.Name),
		Model:        u.Model,
		Manufacturer: u.Manufacturer,
	}
	e.maxLen("model", u.Model.Value, maxModelLen)
	e.maxLen("manufacturer", u.Manufacturer.Value, maxManufacturerLen)
	return id, patch, e.err()
}

// AssignStarship coerces both ends of an assignment
func AssignStarship(characterID, starshipID string) (int64, int64, error) {
	var e errs
	c := e.id("characterId", characterID)
	s := e.id("starshipId", starshipID)
	return c, s, e.err()
}

// Credentials

// Register checks a registration request and fills the default role
func Register(req *models.RegisterRequest) error {
	var e errs

	if n := utf8.RuneCountInString(req.Username); n < minUsernameLen || n > maxUsernameLen {
		e.add("username", "must be between %d and %d characters", minUsernameLen, maxUsernameLen)
	}
	if !emailPattern.MatchString(req.Email) {
		e.add("email", "must be a valid email address")
	}
	if n := len(req.Password); n < minPasswordLen || n > maxPasswordLen {
		e.add("password", "must be between %d and %d characters", minPasswordLen, maxPasswordLen)
	}

	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if req.Role != models.RoleUser && req.Role != models.RoleAdmin {
		e.add("role", "must be one of: user, admin")
	}

	return e.err()
}

func Login(req models.LoginRequest) error {
	var e errs
	if req.Username == "" {
		e.add("username", "is required")
	}
	if req.Password == "" {
		e.add("password", "is required")
	}
	return e.err()
}
