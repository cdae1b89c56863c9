package entity

import (
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// InboxKind discriminates the two record types an inbox mixes.
type InboxKind string

const (
	KindSolicitation   InboxKind = "SOLICITATION"
	KindAccountability InboxKind = "ACCOUNTABILITY"
)

// InboxItem is the flattened view of a solicitation or accountability as it
// appears in a module's work queue. Both record shapes project into this one
// struct so bucketing and scoring stay type-agnostic.
type InboxItem struct {
	ID            string        `json:"id"`
	Kind          InboxKind     `json:"kind"`
	ProcessNumber string        `json:"process_number"`
	Beneficiary   string        `json:"beneficiary"`
	Unit          string        `json:"unit,omitempty"`
	Status        status.Status `json:"status"`
	AnalystID     *string       `json:"analyst_id,omitempty"`
	Value         float64       `json:"value"`
	DocumentType  string        `json:"document_type,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
}

// SolicitationInboxItem flattens a solicitation into an inbox item.
func SolicitationInboxItem(s *Solicitation) InboxItem {
	return InboxItem{
		ID:            s.ID,
		Kind:          KindSolicitation,
		ProcessNumber: s.ProcessNumber,
		Beneficiary:   s.Beneficiary,
		Unit:          s.Unit,
		Status:        s.Status,
		AnalystID:     s.AnalystID,
		Value:         s.Value,
		DocumentType:  s.DocumentType,
		CreatedAt:     s.CreatedAt,
	}
}

// AccountabilityInboxItem flattens an accountability into an inbox item.
// Accountability statuses share the same code space used by the bucketer.
func AccountabilityInboxItem(a *Accountability, beneficiary string) InboxItem {
	return InboxItem{
		ID:            a.ID,
		Kind:          KindAccountability,
		ProcessNumber: a.ProcessNumber,
		Beneficiary:   beneficiary,
		Status:        status.Status(a.Status),
		AnalystID:     a.AnalystID,
		Value:         a.Value,
		CreatedAt:     a.CreatedAt,
	}
}
