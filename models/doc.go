// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, write-input, request, and response types.

# Domain Types

Rows as they are persisted:

  - Planet: name, climate, terrain
  - Character: name, species, home planet reference
  - Starship: name, model, manufacturer
  - User: credentials and role

Nullable columns are pointers; a nil pointer is SQL NULL.

# Write Inputs

Create operations take PlanetInput, CharacterInput and StarshipInput.
Update operations take patches built from Optional fields:

	patch := models.PlanetPatch{Name: models.Some("Hoth")}

Fields left unset keep their stored value. A set field with a nil pointer
clears the column.

# Request and Response Types

JSON bodies for the REST credential endpoints:

  - RegisterRequest / RegisterResponse
  - LoginRequest / LoginResponse
  - MeResponse
  - ErrorResponse

# Constants

Roles:

	RoleUser  = "user"
	RoleAdmin = "admin"
*/
package models
