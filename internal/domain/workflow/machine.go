package workflow

import (
	"fmt"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// Machine tracks a single process's current status and validates transitions
// against the rule table. It holds no persistence; the application engine
// owns the write path.
type Machine struct {
	current status.Status
	module  entity.Module
}

// NewMachine creates a machine positioned at the given status for a
// solicitation of the given module.
func NewMachine(current status.Status, module entity.Module) *Machine {
	return &Machine{current: current, module: module}
}

// State returns the current status.
func (m *Machine) State() status.Status {
	return m.current
}

// CanFire reports whether the trigger is permitted for the role in the
// current status.
func (m *Machine) CanFire(trigger Trigger, role Role) bool {
	rule, ok := FindRule(trigger, m.current, m.module)
	return ok && rule.AllowsRole(role)
}

// Fire resolves and applies the transition, returning the matched rule so
// the caller can execute its side effects. The error distinguishes a missing
// transition from a role rejection.
func (m *Machine) Fire(trigger Trigger, role Role) (Rule, error) {
	rule, ok := FindRule(trigger, m.current, m.module)
	if !ok {
		return Rule{}, fmt.Errorf("%w: trigger %s from status %s", ErrInvalidTransition, trigger, m.current)
	}
	if !rule.AllowsRole(role) {
		return Rule{}, fmt.Errorf("%w: role %s cannot fire %s from %s", ErrRoleNotAllowed, role, trigger, m.current)
	}
	m.current = rule.To
	return rule, nil
}

// PermittedTriggers returns the triggers the role may fire from the current
// status.
func (m *Machine) PermittedTriggers(role Role) []Trigger {
	var out []Trigger
	seen := make(map[Trigger]bool)
	for _, r := range rules {
		if !r.allowsFrom(m.current) || !r.allowsModule(m.module) || !r.AllowsRole(role) || seen[r.Trigger] {
			continue
		}
		seen[r.Trigger] = true
		out = append(out, r.Trigger)
	}
	return out
}
