package port

import (
	"context"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

// IdentityProvider supplies the current user identity. The actual auth
// backend lives outside this module; a nil user means "not signed in".
type IdentityProvider interface {
	CurrentUser(ctx context.Context) (*entity.User, error)
}

// Notifier is an optional sink for user-facing notifications (toasts,
// e-mail, push). Failures are logged, never propagated into transitions:
// notification delivery is not required for correctness.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string) error
}
