package entity

import (
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// HistoryEntry is one immutable record in a process's tramitação audit
// trail. Entries are append-only and ordered ascending by timestamp; the
// stepper relies on that ordering to find the first entry into each stage.
type HistoryEntry struct {
	ID             int64          `json:"id"`
	SolicitationID string         `json:"solicitation_id"`
	StatusFrom     *status.Status `json:"status_from,omitempty"` // nil on creation
	StatusTo       status.Status  `json:"status_to"`
	ActorName      string         `json:"actor_name"`
	Description    string         `json:"description"`
	CreatedAt      time.Time      `json:"created_at"`
}

// User is the current-user identity handed to the core by the host. The
// identity provider itself (Supabase auth in the web front-end) is outside
// this module.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role"`
}
