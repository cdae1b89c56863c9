package workflow

import (
	"context"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	domainwf "github.com/tjpa/agil-workflow/internal/domain/workflow"
)

// Actor is whoever fires a transition: a signed-in user with a role, or the
// system itself.
type Actor struct {
	ID   string
	Name string
	Role domainwf.Role
}

// SystemActor is used for automated transitions.
var SystemActor = Actor{ID: "system", Name: "Sistema Agil", Role: domainwf.RoleSystem}

// Engine executes status transitions for solicitations: it validates the
// trigger against the rule table, swaps the status, appends the history
// entry and runs the rule's side effects, all inside one transaction.
type Engine interface {
	// Execute fires a trigger for a solicitation on behalf of an actor.
	// The description goes into the history entry; empty means a default
	// is generated. Returns the solicitation with its new status.
	Execute(ctx context.Context, solicitationID string, trigger domainwf.Trigger, actor Actor, description string) (*entity.Solicitation, error)

	// PermittedTriggers returns what the role could fire right now.
	PermittedTriggers(ctx context.Context, solicitationID string, role domainwf.Role) ([]domainwf.Trigger, error)
}
