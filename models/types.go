package models

import "time"

// User role constants
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Optional carries a patch value together with whether the caller supplied it.
// Set with a nil pointer value means "overwrite with NULL".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns an Optional that is set to v
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Or returns the patch value when set, otherwise current
func (o Optional[T]) Or(current T) T {
	if o.Set {
		return o.Value
	}
	return current
}

// Domain types

type Planet struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Climate *string `json:"climate"`
	Terrain *string `json:"terrain"`
}

type Character struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Species      *string `json:"species"`
	HomePlanetID *int64  `json:"home_planet_id"`
}

type Starship struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Model        *string `json:"model"`
	Manufacturer *string `json:"manufacturer"`
}

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"` // Never expose in JSON
	Role           string    `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Write inputs

type PlanetInput struct {
	Name    string
	Climate *string
	Terrain *string
}

type PlanetPatch struct {
	Name    Optional[string]
	Climate Optional[*string]
	Terrain Optional[*string]
}

type CharacterInput struct {
	Name         string
	Species      *string
	HomePlanetID *int64
}

type CharacterPatch struct {
	Name         Optional[string]
	Species      Optional[*string]
	HomePlanetID Optional[*int64]
}

type StarshipInput struct {
	Name         string
	Model        *string
	Manufacturer *string
}

type StarshipPatch struct {
	Name         Optional[string]
	Model        Optional[*string]
	Manufacturer Optional[*string]
}

// Request types

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Response types

type RegisterResponse struct {
	Message  string `json:"message"`
	Username string `json:"username"`
}

type UserInfo struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

type LoginResponse struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        UserInfo `json:"user"`
}

type MeResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type RootResponse struct {
	Message string `json:"message"`
	GraphQL string `json:"graphql"`
	Metrics string `json:"metrics"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}
