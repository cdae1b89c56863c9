package entity

import "time"

// Accountability (prestação de contas) is the post-payment expense
// justification filed by the suprido. One per solicitation in practice.
type Accountability struct {
	ID             string  `json:"id"`
	SolicitationID string  `json:"solicitation_id"`
	ProcessNumber  string  `json:"process_number"`
	RequesterID    string  `json:"requester_id"`
	Status         string  `json:"status"`
	Value          float64 `json:"value"`
	TotalSpent     float64 `json:"total_spent"`
	// Balance must equal Value - TotalSpent after every item mutation.
	Balance   float64 `json:"balance"`
	AnalystID *string `json:"analyst_id,omitempty"`

	// Deadline is payment confirmation + a fixed day count. Monotonic once
	// set: it is never moved earlier.
	Deadline *time.Time `json:"deadline,omitempty"`

	SentinelaRisk   RiskLevel `json:"sentinela_risk"`
	SentinelaAlerts []string  `json:"sentinela_alerts,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Accountability status constants.
const (
	AccountabilityDraft          = "DRAFT"
	AccountabilitySubmitted      = "SUBMITTED"
	AccountabilityWaitingManager = "WAITING_MANAGER"
	AccountabilityWaitingSOSFU   = "WAITING_SOSFU"
	AccountabilityCorrection     = "CORRECTION"
	AccountabilityLate           = "LATE"
	AccountabilityApproved       = "APPROVED"
	AccountabilityRejected       = "REJECTED"
	AccountabilityArchived       = "ARCHIVED"
)

// RiskLevel is the Sentinela risk assessment attached to an accountability.
// The engine never lowers it on its own; only an explicit re-evaluation may.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// AtLeast reports whether the level is the same or more severe than other.
func (r RiskLevel) AtLeast(other RiskLevel) bool {
	return riskRank[r] >= riskRank[other]
}

// IsValid reports whether the level is a known Sentinela rating.
func (r RiskLevel) IsValid() bool {
	_, ok := riskRank[r]
	return ok
}

// IsClosed reports whether the accountability reached a terminal status.
func (a *Accountability) IsClosed() bool {
	return a.Status == AccountabilityApproved || a.Status == AccountabilityRejected || a.Status == AccountabilityArchived
}

// Overdue reports whether the filing deadline has passed. Display-only: a
// passed deadline never mutates status automatically.
func (a *Accountability) Overdue(now time.Time) bool {
	return a.Deadline != nil && now.After(*a.Deadline) && !a.IsClosed()
}

// AccountabilityItem is one expense line inside an accountability.
type AccountabilityItem struct {
	ID               string    `json:"id"`
	AccountabilityID string    `json:"accountability_id"`
	Description      string    `json:"description"`
	Value            float64   `json:"value"`
	ItemDate         time.Time `json:"item_date"`
	DocumentRef      string    `json:"document_ref,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
