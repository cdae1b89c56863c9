package workflow

import "errors"

var (
	// ErrInvalidTransition is returned when the requested status change is
	// not permitted from the record's current status.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrRoleNotAllowed is returned when the acting role may not fire the
	// trigger, even though the transition itself exists.
	ErrRoleNotAllowed = errors.New("role not allowed for transition")

	// ErrStatusConflict is returned when a compare-and-swap status update
	// loses a race: the stored status no longer matches the expected one.
	ErrStatusConflict = errors.New("status changed concurrently")

	// ErrAssignmentConflict is returned when separation of duties forbids
	// assigning the same analyst to causally linked records.
	ErrAssignmentConflict = errors.New("analyst assignment conflict")
)
