// Clipdeck Statistics Service - Engagement Analytics for Clip Campaigns
// Copyright 2026 Clipdeck
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const claimsKey contextKey = "claims"

// Claims are the JWT claims the service cares about.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// IsStaff reports whether the token carries a staff-level role.
func (c *Claims) IsStaff() bool {
	switch strings.ToUpper(c.Role) {
	case "STAFF", "ADMIN":
		return true
	}
	return false
}

// ClaimsFromContext returns the verified claims, nil outside an
// authenticated request.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(claimsKey).(*Claims)
	return claims
}

// authenticator verifies HS256 bearer tokens.
type authenticator struct {
	secret []byte
}

func newAuthenticator(secret string) *authenticator {
	return &authenticator{secret: []byte(secret)}
}

func (a *authenticator) parse(r *http.Request) (*Claims, error) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return nil, fmt.Errorf("missing bearer token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, prefix), claims,
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
			}
			return a.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return claims, nil
}

// RequireAuth rejects requests without a valid bearer token.
func (a *authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := a.parse(r)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// RequireStaff rejects authenticated requests whose token lacks a staff
// role.
func (a *authenticator) RequireStaff(next http.Handler) http.Handler {
	return a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil || !claims.IsStaff() {
			writeJSON(w, http.StatusForbidden, errorBody{Error: "staff role required"})
			return
		}
		next.ServeHTTP(w, r)
	}))
}
