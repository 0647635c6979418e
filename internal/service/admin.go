package service

import (
	"crypto/subtle"

	domainerrors "github.com/untdf/catalog/internal/errors"
)

// AdminGrant is the capability required for cross-tenant operations.
// The zero value grants nothing; only GrantAdmin mints a valid one.
type AdminGrant struct {
	granted bool
}

// Valid reports whether the grant authorizes admin operations.
func (g AdminGrant) Valid() bool {
	return g.granted
}

// GrantAdmin compares the presented token with the configured admin token in
// constant time. An empty configured token disables admin operations entirely.
func GrantAdmin(configured, presented string) (AdminGrant, error) {
	if configured == "" {
		return AdminGrant{}, domainerrors.Forbidden("admin operations are disabled")
	}
	if subtle.ConstantTimeCompare([]byte(configured), []byte(presented)) != 1 {
		return AdminGrant{}, domainerrors.Forbidden("invalid admin token")
	}
	return AdminGrant{granted: true}, nil
}
