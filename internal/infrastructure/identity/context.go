// Package identity resolves the acting user from the request context. The
// authenticating front door (gateway, SSO proxy) lives outside this module
// and forwards the identity; the HTTP layer stashes it here per request.
package identity

import (
	"context"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

type contextKey string

const userKey contextKey = "current-user"

// WithUser returns a context carrying the user.
func WithUser(ctx context.Context, user *entity.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// ContextProvider reads the user previously stored with WithUser. A context
// without a user resolves to nil, never an error.
type ContextProvider struct{}

var _ port.IdentityProvider = ContextProvider{}

func (ContextProvider) CurrentUser(ctx context.Context) (*entity.User, error) {
	user, _ := ctx.Value(userKey).(*entity.User)
	return user, nil
}
