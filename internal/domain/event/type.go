package event

// Type identifies the type of domain event.
type Type string

const (
	TypeSolicitationCreated   Type = "solicitation.created"
	TypeStatusChanged         Type = "solicitation.status_changed"
	TypeAnalystAssigned       Type = "solicitation.analyst_assigned"
	TypeAccountabilityCreated Type = "accountability.created"
	TypeAccountabilityUpdated Type = "accountability.updated"
	TypeRiskReevaluated       Type = "accountability.risk_reevaluated"
)

// String returns the string representation of the event type.
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants.
func (t Type) IsValid() bool {
	switch t {
	case TypeSolicitationCreated,
		TypeStatusChanged,
		TypeAnalystAssigned,
		TypeAccountabilityCreated,
		TypeAccountabilityUpdated,
		TypeRiskReevaluated:
		return true
	default:
		return false
	}
}

// Collection returns the logical collection an event type belongs to, for
// subscription filtering. Mirrors the table names the web client watched
// through the realtime channel.
func (t Type) Collection() string {
	switch t {
	case TypeSolicitationCreated, TypeStatusChanged, TypeAnalystAssigned:
		return "solicitations"
	case TypeAccountabilityCreated, TypeAccountabilityUpdated, TypeRiskReevaluated:
		return "accountabilities"
	default:
		return ""
	}
}
