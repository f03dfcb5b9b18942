// Package access adapts the external identity directory into the
// accreditation check that guards bidding. Nothing here is cached: every
// call goes to the directory.
package access

import (
	"context"
	"errors"
	"fmt"

	"grain-auction/internal/auctionerrors"
	"grain-auction/internal/models"
)

// ErrUnknownUser is returned by a Directory that has no record of the user
var ErrUnknownUser = errors.New("unknown user")

// Directory is the identity collaborator. Implementations return ErrUnknownUser
// for missing users; any other error is treated as the directory being unavailable.
type Directory interface {
	Lookup(ctx context.Context, userID string) (models.User, error)
}

// Gate is the AccessGate consulted before any bid
type Gate struct {
	dir Directory
}

// NewGate wraps a directory
func NewGate(dir Directory) *Gate {
	return &Gate{dir: dir}
}

// Resolve returns the user record for userID.
func (g *Gate) Resolve(ctx context.Context, userID string) (models.User, error) {
	if userID == "" {
		return models.User{}, fmt.Errorf("access: %w", ErrUnknownUser)
	}
	u, err := g.dir.Lookup(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return models.User{}, fmt.Errorf("access: user %s: %w", userID, err)
		}
		return models.User{}, auctionerrors.Unavailable("access: lookup "+userID, err)
	}
	return u, nil
}

// RequireApproved fails with ErrNotAccredited unless the user's accreditation is approved.
func (g *Gate) RequireApproved(ctx context.Context, userID string) (models.User, error) {
	u, err := g.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return models.User{}, fmt.Errorf("access: %w - %v", auctionerrors.ErrNotAccredited, err)
		}
		return models.User{}, err
	}
	if u.Accreditation != models.AccreditationApproved {
		return models.User{}, fmt.Errorf("access: %w - user %s is %s",
			auctionerrors.ErrNotAccredited, userID, u.Accreditation)
	}
	return u, nil
}

// RequireAdmin fails with ErrForbidden unless the user is an administrator.
func (g *Gate) RequireAdmin(ctx context.Context, userID string) (models.User, error) {
	u, err := g.Resolve(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUnknownUser) {
			return models.User{}, fmt.Errorf("access: %w - %v", auctionerrors.ErrForbidden, err)
		}
		return models.User{}, err
	}
	if !u.IsAdmin() {
		return models.User{}, fmt.Errorf("access: %w - user %s is not an admin", auctionerrors.ErrForbidden, userID)
	}
	return u, nil
}
