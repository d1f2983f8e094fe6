// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/models"
)

const userColumns = "id, username, email, hashed_password, role, created_at"

func scanUser(row scanner) (models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.HashedPassword, &u.Role, &u.CreatedAt)
	return u, err
}

// CreateUser stores a new account. Username and email must both be unused.
func (s *Store) CreateUser(ctx context.Context, username, email, hashedPassword, role string) (models.User, error) {
	var id int64
	err := s.queryRow(ctx, s.db, `
		INSERT INTO users (username, email, hashed_password, role, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, username, email, hashedPassword, role, time.Now().UTC()).Scan(&id)
	if err != nil {
		if kind, ok := constraintKind(err); ok && kind == apperr.KindDuplicate {
			return models.User{}, apperr.Wrap(kind, err, "Username or email already exists")
		}
		return models.User{}, fmt.Errorf("failed to insert user %q: %w", username, err)
	}

	u, err := s.UserByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}
	if u == nil {
		return models.User{}, apperr.NotFound("User with ID %d not found", id)
	}

	s.log.Info("user created", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return *u, nil
}

func (s *Store) userBy(ctx context.Context, column string, value any) (*models.User, error) {
	u, err := scanUser(s.queryRow(ctx, s.db, "SELECT "+userColumns+" FROM users WHERE "+column+" = ?", value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user by %s: %w", column, err)
	}
	return &u, nil
}

// UserByUsername returns nil without error when the username is unknown
func (s *Store) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.userBy(ctx, "username", username)
}

// UserByID returns nil without error when the id is unknown
func (s *Store) UserByID(ctx context.Context, id int64) (*models.User, error) {
	return s.userBy(ctx, "id", id)
}

// EnsureAdmin creates the "admin" account if it does not exist yet
func (s *Store) EnsureAdmin(ctx context.Context, email, hashedPassword string) (bool, error) {
	existing, err := s.UserByUsername(ctx, "admin")
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	if _, err := s.CreateUser(ctx, "admin", email, hashedPassword, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}
