// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	"github.com/danielhkuo/starwars-api/apperr"
	"github.com/danielhkuo/starwars-api/auth"
	"github.com/danielhkuo/starwars-api/middleware"
	"github.com/danielhkuo/starwars-api/models"
	"github.com/danielhkuo/starwars-api/store"
	"github.com/danielhkuo/starwars-api/validate"
)

type AuthHandler struct {
	store  *store.Store
	issuer *auth.TokenIssuer
}

func NewAuthHandler(st *store.Store, issuer *auth.TokenIssuer) *AuthHandler {
	return &AuthHandler{store: st, issuer: issuer}
}

func validationResponse(w http.ResponseWriter, err error) {
	middleware.CodedErrorResponse(w, http.StatusUnprocessableEntity, apperr.KindValidation.Code(), err.Error())
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validate.Register(&req); err != nil {
		validationResponse(w, err)
		return
	}

	slog.Info("registration attempt", "username", req.Username)

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	_, err = h.store.CreateUser(r.Context(), req.Username, req.Email, hash, req.Role)
	if apperr.Is(err, apperr.KindDuplicate) {
		slog.Warn("registration failed: user already exists", "username", req.Username)
		middleware.CodedErrorResponse(w, http.StatusBadRequest, apperr.KindDuplicate.Code(), "Username or email already exists")
		return
	}
	if err != nil {
		slog.Error("failed to register user", "username", req.Username, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error registering user")
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterResponse{
		Message:  "User registered successfully",
		Username: req.Username,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if err := validate.Login(req); err != nil {
		validationResponse(w, err)
		return
	}

	u, err := h.store.UserByUsername(r.Context(), req.Username)
	if err != nil {
		slog.Error("failed to look up user", "username", req.Username, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error during login")
		return
	}
	if u == nil || !auth.CheckPassword(u.HashedPassword, req.Password) {
		slog.Warn("login failed: invalid credentials", "username", req.Username)
		w.Header().Set("WWW-Authenticate", "Bearer")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}

	token, err := h.issuer.Issue(auth.Principal{ID: u.ID, Subject: u.Username, Role: u.Role})
	if err != nil {
		slog.Error("failed to issue token", "username", u.Username, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Error during login")
		return
	}

	slog.Info("user logged in", "username", u.Username)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		User: models.UserInfo{
			ID:       u.ID,
			Username: u.Username,
			Email:    u.Email,
			Role:     u.Role,
		},
	})
}

// Me handles GET /auth/me. The answer comes from the token claims.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if header == "" {
		w.Header().Set("WWW-Authenticate", "Bearer")
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	p, err := h.issuer.Verify(header)
	if err != nil {
		msg := "Invalid token"
		switch {
		case errors.Is(err, auth.ErrMalformedToken):
			msg = "Invalid token format: JWT token must have 3 parts separated by dots"
		case errors.Is(err, jwt.ErrTokenExpired):
			msg = "Token has expired"
		}
		slog.Warn("token rejected", "error", err)
		w.Header().Set("WWW-Authenticate", "Bearer")
		middleware.ErrorResponse(w, http.StatusUnauthorized, msg)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.MeResponse{
		ID:       p.ID,
		Username: p.Subject,
		Role:     p.Role,
	})
}
