package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/dispatcher"
	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/event"
	"github.com/tjpa/agil-workflow/internal/domain/status"
	domainwf "github.com/tjpa/agil-workflow/internal/domain/workflow"
)

// AddItemInput is one expense line to attach to an accountability.
type AddItemInput struct {
	Description string    `json:"description"`
	Value       float64   `json:"value"`
	ItemDate    time.Time `json:"item_date"`
	DocumentRef string    `json:"document_ref"`
}

// AccountabilityService manages prestação de contas records after the
// workflow engine creates them: expense items, risk ratings and deadlines.
type AccountabilityService interface {
	Get(ctx context.Context, id string) (*entity.Accountability, error)
	GetBySolicitation(ctx context.Context, solicitationID string) (*entity.Accountability, error)
	Items(ctx context.Context, accountabilityID string) ([]*entity.AccountabilityItem, error)
	AddItem(ctx context.Context, accountabilityID string, input AddItemInput) (*entity.AccountabilityItem, error)
	RemoveItem(ctx context.Context, accountabilityID, itemID string) error

	// AssignAnalyst claims the accountability for an analyst, enforcing
	// separation of duties against the originating solicitation.
	AssignAnalyst(ctx context.Context, accountabilityID, analystID string) error

	// ReevaluateRisk is the only path that changes the Sentinela rating,
	// including lowering it.
	ReevaluateRisk(ctx context.Context, accountabilityID string, risk entity.RiskLevel, alerts []string, actorName string) error

	// ExtendDeadline moves the filing deadline later. Deadlines never move
	// earlier once set.
	ExtendDeadline(ctx context.Context, accountabilityID string, deadline time.Time) error
}

type accountabilityServiceImpl struct {
	accountabilities port.AccountabilityRepository
	solicitations    port.SolicitationRepository
	items            port.ItemRepository
	history          port.HistoryRepository
	txManager        port.TransactionManager
	dispatcher       dispatcher.Dispatcher
	logger           *zap.Logger
	now              func() time.Time
}

// NewAccountabilityService creates a new AccountabilityService.
func NewAccountabilityService(
	accountabilities port.AccountabilityRepository,
	solicitations port.SolicitationRepository,
	items port.ItemRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	logger *zap.Logger,
) AccountabilityService {
	return &accountabilityServiceImpl{
		accountabilities: accountabilities,
		solicitations:    solicitations,
		items:            items,
		history:          history,
		txManager:        txManager,
		dispatcher:       d,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *accountabilityServiceImpl) Get(ctx context.Context, id string) (*entity.Accountability, error) {
	return s.accountabilities.GetByID(ctx, id)
}

func (s *accountabilityServiceImpl) GetBySolicitation(ctx context.Context, solicitationID string) (*entity.Accountability, error) {
	return s.accountabilities.GetBySolicitationID(ctx, solicitationID)
}

func (s *accountabilityServiceImpl) Items(ctx context.Context, accountabilityID string) ([]*entity.AccountabilityItem, error) {
	return s.items.GetByAccountabilityID(ctx, accountabilityID)
}

// AddItem appends an expense line and recomputes the totals so that
// balance = value - total_spent holds after the mutation.
func (s *accountabilityServiceImpl) AddItem(ctx context.Context, accountabilityID string, input AddItemInput) (*entity.AccountabilityItem, error) {
	if input.Value <= 0 {
		return nil, fmt.Errorf("item value must be positive")
	}

	acc, err := s.accountabilities.GetByID(ctx, accountabilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load accountability: %w", err)
	}
	if acc.IsClosed() {
		return nil, fmt.Errorf("accountability %s is closed", accountabilityID)
	}

	item := &entity.AccountabilityItem{
		ID:               uuid.NewString(),
		AccountabilityID: accountabilityID,
		Description:      input.Description,
		Value:            input.Value,
		ItemDate:         input.ItemDate,
		DocumentRef:      input.DocumentRef,
		CreatedAt:        s.now(),
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.items.Create(txCtx, item); err != nil {
			return fmt.Errorf("failed to create item: %w", err)
		}
		return s.recomputeTotals(txCtx, acc)
	})
	if err != nil {
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeAccountabilityUpdated, acc.SolicitationID, map[string]interface{}{
		"accountability_id": accountabilityID,
		"item_id":           item.ID,
	}))
	return item, nil
}

// RemoveItem deletes an expense line and recomputes the totals.
func (s *accountabilityServiceImpl) RemoveItem(ctx context.Context, accountabilityID, itemID string) error {
	acc, err := s.accountabilities.GetByID(ctx, accountabilityID)
	if err != nil {
		return fmt.Errorf("failed to load accountability: %w", err)
	}
	if acc.IsClosed() {
		return fmt.Errorf("accountability %s is closed", accountabilityID)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.items.Delete(txCtx, itemID); err != nil {
			return fmt.Errorf("failed to delete item: %w", err)
		}
		return s.recomputeTotals(txCtx, acc)
	})
	if err != nil {
		return err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeAccountabilityUpdated, acc.SolicitationID, map[string]interface{}{
		"accountability_id": accountabilityID,
	}))
	return nil
}

func (s *accountabilityServiceImpl) recomputeTotals(ctx context.Context, acc *entity.Accountability) error {
	total, err := s.items.SumByAccountabilityID(ctx, acc.ID)
	if err != nil {
		return fmt.Errorf("failed to sum items: %w", err)
	}
	if err := s.accountabilities.UpdateTotals(ctx, acc.ID, total, acc.Value-total); err != nil {
		return fmt.Errorf("failed to update totals: %w", err)
	}
	return nil
}

// AssignAnalyst claims an accountability for an analyst. The analyst who
// handled the originating solicitation may not also review its prestação de
// contas; re-claiming by the same analyst is a no-op.
func (s *accountabilityServiceImpl) AssignAnalyst(ctx context.Context, accountabilityID, analystID string) error {
	acc, err := s.accountabilities.GetByID(ctx, accountabilityID)
	if err != nil {
		return fmt.Errorf("failed to load accountability: %w", err)
	}

	if acc.AnalystID != nil && *acc.AnalystID != "" {
		if *acc.AnalystID == analystID {
			return nil
		}
		return fmt.Errorf("%w: accountability %s already assigned to %s",
			domainwf.ErrAssignmentConflict, accountabilityID, *acc.AnalystID)
	}

	sol, err := s.solicitations.GetByID(ctx, acc.SolicitationID)
	if err != nil {
		return fmt.Errorf("failed to load solicitation: %w", err)
	}
	if sol.AnalystID != nil && *sol.AnalystID == analystID {
		return fmt.Errorf("%w: analyst %s handled solicitation %s",
			domainwf.ErrAssignmentConflict, analystID, sol.ID)
	}

	if err := s.accountabilities.AssignAnalyst(ctx, accountabilityID, analystID); err != nil {
		return fmt.Errorf("failed to assign analyst: %w", err)
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeAnalystAssigned, acc.SolicitationID, map[string]interface{}{
		"accountability_id": accountabilityID,
		"analyst_id":        analystID,
	}))
	return nil
}

// ReevaluateRisk records a fresh Sentinela assessment and its audit entry.
func (s *accountabilityServiceImpl) ReevaluateRisk(ctx context.Context, accountabilityID string, risk entity.RiskLevel, alerts []string, actorName string) error {
	if !risk.IsValid() {
		return fmt.Errorf("unknown risk level %q", risk)
	}

	acc, err := s.accountabilities.GetByID(ctx, accountabilityID)
	if err != nil {
		return fmt.Errorf("failed to load accountability: %w", err)
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.accountabilities.SetRisk(txCtx, accountabilityID, risk, alerts); err != nil {
			return fmt.Errorf("failed to set risk: %w", err)
		}
		// Risk changes do not move the status; the entry carries the
		// accountability status it was taken at.
		return s.history.Append(txCtx, &entity.HistoryEntry{
			SolicitationID: acc.SolicitationID,
			StatusTo:       status.Status(acc.Status),
			ActorName:      actorName,
			Description:    fmt.Sprintf("Risco Sentinela reavaliado: %s -> %s", acc.SentinelaRisk, risk),
			CreatedAt:      s.now(),
		})
	})
	if err != nil {
		return err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeRiskReevaluated, acc.SolicitationID, map[string]interface{}{
		"accountability_id": accountabilityID,
		"previous_risk":     string(acc.SentinelaRisk),
		"new_risk":          string(risk),
	}))

	s.logger.Info("Sentinela risk reevaluated",
		zap.String("accountability_id", accountabilityID),
		zap.String("previous_risk", string(acc.SentinelaRisk)),
		zap.String("new_risk", string(risk)))
	return nil
}

// ExtendDeadline pushes the filing deadline later, never earlier.
func (s *accountabilityServiceImpl) ExtendDeadline(ctx context.Context, accountabilityID string, deadline time.Time) error {
	acc, err := s.accountabilities.GetByID(ctx, accountabilityID)
	if err != nil {
		return fmt.Errorf("failed to load accountability: %w", err)
	}

	if acc.Deadline != nil && !deadline.After(*acc.Deadline) {
		return fmt.Errorf("deadline %s is not after the current deadline %s",
			deadline.Format(time.RFC3339), acc.Deadline.Format(time.RFC3339))
	}

	if err := s.accountabilities.SetDeadline(ctx, accountabilityID, deadline); err != nil {
		return fmt.Errorf("failed to set deadline: %w", err)
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeAccountabilityUpdated, acc.SolicitationID, map[string]interface{}{
		"accountability_id": accountabilityID,
		"deadline":          deadline.Format(time.RFC3339),
	}))
	return nil
}
