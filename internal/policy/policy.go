// Package policy decides whether an authenticated actor may perform privileged operations.
package policy

import (
	"context"
	"strings"

	"portfolio/internal/models"
)

// Authorizer is injected into every service that mutates content.
type Authorizer interface {
	Authorize(ctx context.Context, actor *models.Actor) error
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, actor *models.Actor) error

func (f AuthorizerFunc) Authorize(ctx context.Context, actor *models.Actor) error {
	return f(ctx, actor)
}

// AdminEmail authorizes exactly one account: the one whose email matches, ignoring case.
// An empty configured email authorizes nobody.
type AdminEmail struct {
	email string
}

// NewAdminEmail builds the single-admin policy.
func NewAdminEmail(email string) *AdminEmail {
	return &AdminEmail{email: strings.TrimSpace(email)}
}

func (p *AdminEmail) Authorize(_ context.Context, actor *models.Actor) error {
	if !p.IsAdmin(actor) {
		return models.NewUnauthorizedError("Unauthorized")
	}
	return nil
}

// IsAdmin reports whether actor is the configured admin.
func (p *AdminEmail) IsAdmin(actor *models.Actor) bool {
	if p.email == "" || actor == nil {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(actor.Email), p.email)
}

// MayRegister reports whether email may create the admin account.
func (p *AdminEmail) MayRegister(email string) bool {
	return p.email != "" && strings.EqualFold(strings.TrimSpace(email), p.email)
}

// AllowAll authorizes any non-nil actor. Used by seeding tools.
var AllowAll Authorizer = AuthorizerFunc(func(_ context.Context, actor *models.Actor) error {
	if actor == nil {
		return models.NewUnauthorizedError("Unauthorized")
	}
	return nil
})
