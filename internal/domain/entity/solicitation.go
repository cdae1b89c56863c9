package entity

import (
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// Solicitation is a funds/travel/reimbursement request (suprimento de
// fundos). It is the process record the whole pipeline revolves around.
type Solicitation struct {
	ID            string        `json:"id"`
	ProcessNumber string        `json:"process_number"` // NUP, human-readable
	Beneficiary   string        `json:"beneficiary"`
	Unit          string        `json:"unit"` // owning unit/comarca
	Module        Module        `json:"module"`
	DocumentType  string        `json:"document_type"`
	Value         float64       `json:"value"`
	Justification string        `json:"justification"`
	Status        status.Status `json:"status"`

	// AnalystID, once set, may be reassigned but is never cleared by
	// automated logic.
	AnalystID    *string `json:"analyst_id,omitempty"`
	ManagerEmail string  `json:"manager_email,omitempty"`
	RequesterID  string  `json:"requester_id"`

	EventStart *time.Time `json:"event_start,omitempty"`
	EventEnd   *time.Time `json:"event_end,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Module identifies the organizational module that owns a record's workflow
// variant.
type Module string

const (
	ModuleSOSFU         Module = "SOSFU"
	ModuleSODPA         Module = "SODPA"
	ModuleRessarcimento Module = "RESSARCIMENTO"
	ModuleAJSEFIN       Module = "AJSEFIN"
)

// IsValid reports whether the module identifier is known.
func (m Module) IsValid() bool {
	switch m {
	case ModuleSOSFU, ModuleSODPA, ModuleRessarcimento, ModuleAJSEFIN:
		return true
	}
	return false
}
