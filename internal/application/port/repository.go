package port

import (
	"context"
	"time"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// SolicitationFilter narrows solicitation listings. Zero values mean "any".
type SolicitationFilter struct {
	Statuses  []status.Status
	Module    entity.Module
	AnalystID string
	Limit     int
	Offset    int
}

// SolicitationRepository defines persistence operations for Solicitation.
type SolicitationRepository interface {
	Create(ctx context.Context, s *entity.Solicitation) error
	GetByID(ctx context.Context, id string) (*entity.Solicitation, error)
	GetByProcessNumber(ctx context.Context, nup string) (*entity.Solicitation, error)
	List(ctx context.Context, filter SolicitationFilter) ([]*entity.Solicitation, error)

	// UpdateStatusCAS updates the status only if the stored value still
	// matches expected, reporting whether the swap applied. Transitions
	// ride on this so a concurrent double-transition is impossible.
	UpdateStatusCAS(ctx context.Context, id string, expected, to status.Status) (bool, error)

	// AssignAnalyst sets or reassigns the analyst. It never clears an
	// existing assignment.
	AssignAnalyst(ctx context.Context, id string, analystID string) error
}

// AccountabilityRepository defines persistence operations for
// Accountability.
type AccountabilityRepository interface {
	Create(ctx context.Context, a *entity.Accountability) error
	GetByID(ctx context.Context, id string) (*entity.Accountability, error)
	GetBySolicitationID(ctx context.Context, solicitationID string) (*entity.Accountability, error)
	List(ctx context.Context, statuses []string, limit, offset int) ([]*entity.Accountability, error)
	UpdateStatus(ctx context.Context, id string, from, to string) (bool, error)
	UpdateTotals(ctx context.Context, id string, totalSpent, balance float64) error
	SetRisk(ctx context.Context, id string, risk entity.RiskLevel, alerts []string) error
	SetDeadline(ctx context.Context, id string, deadline time.Time) error
	AssignAnalyst(ctx context.Context, id string, analystID string) error
}

// ItemRepository defines persistence operations for AccountabilityItem.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.AccountabilityItem) error
	GetByAccountabilityID(ctx context.Context, accountabilityID string) ([]*entity.AccountabilityItem, error)
	SumByAccountabilityID(ctx context.Context, accountabilityID string) (float64, error)
	Delete(ctx context.Context, id string) error
}

// HistoryRepository defines persistence operations for the tramitação audit
// trail. Entries are append-only; there is deliberately no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, h *entity.HistoryEntry) error
	ListBySolicitationID(ctx context.Context, solicitationID string) ([]entity.HistoryEntry, error)
}

// TransactionManager abstracts transaction handling.
type TransactionManager interface {
	// WithTransaction executes the function within a transaction. Nested
	// calls reuse the outer transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
