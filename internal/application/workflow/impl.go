package workflow

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
	domainwf "github.com/tjpa/agil-workflow/internal/domain/workflow"
)

// engineImpl is the concrete implementation of Engine.
type engineImpl struct {
	solicitations    port.SolicitationRepository
	accountabilities port.AccountabilityRepository
	history          port.HistoryRepository
	txManager        port.TransactionManager
	dispatcher       dispatcher.Dispatcher
	notifier         port.Notifier
	logger           *zap.Logger

	deadlineDays int
	now          func() time.Time
}

// EngineOption configures the workflow engine.
type EngineOption func(*engineImpl)

// WithDispatcher sets the event dispatcher for emitting change events.
func WithDispatcher(d dispatcher.Dispatcher) EngineOption {
	return func(e *engineImpl) { e.dispatcher = d }
}

// WithNotifier sets the optional notification sink.
func WithNotifier(n port.Notifier) EngineOption {
	return func(e *engineImpl) { e.notifier = n }
}

// WithDeadlineDays overrides the accountability filing deadline.
func WithDeadlineDays(days int) EngineOption {
	return func(e *engineImpl) { e.deadlineDays = days }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *engineImpl) { e.now = now }
}

// NewEngine creates a new workflow engine.
func NewEngine(
	solicitations port.SolicitationRepository,
	accountabilities port.AccountabilityRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	logger *zap.Logger,
	opts ...EngineOption,
) Engine {
	e := &engineImpl{
		solicitations:    solicitations,
		accountabilities: accountabilities,
		history:          history,
		txManager:        txManager,
		logger:           logger,
		deadlineDays:     30,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute fires a trigger for a solicitation on behalf of an actor.
func (e *engineImpl) Execute(ctx context.Context, solicitationID string, trigger domainwf.Trigger, actor Actor, description string) (*entity.Solicitation, error) {
	sol, err := e.solicitations.GetByID(ctx, solicitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load solicitation: %w", err)
	}

	machine := domainwf.NewMachine(sol.Status, sol.Module)
	rule, err := machine.Fire(trigger, actor.Role)
	if err != nil {
		return nil, err
	}

	previous := sol.Status
	if description == "" {
		description = fmt.Sprintf("Tramitou de %q para %q", previous.Label(), rule.To.Label())
	}

	err = e.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		swapped, err := e.solicitations.UpdateStatusCAS(txCtx, sol.ID, previous, rule.To)
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if !swapped {
			return fmt.Errorf("%w: solicitation %s no longer in %s", domainwf.ErrStatusConflict, sol.ID, previous)
		}

		from := previous
		if err := e.history.Append(txCtx, &entity.HistoryEntry{
			SolicitationID: sol.ID,
			StatusFrom:     &from,
			StatusTo:       rule.To,
			ActorName:      actor.Name,
			Description:    description,
			CreatedAt:      e.now(),
		}); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		for _, effect := range rule.SideEffects {
			if effect == domainwf.EffectEnsureAccountability {
				if err := e.ensureAccountability(txCtx, sol); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sol.Status = rule.To

	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeStatusChanged, sol.ID, map[string]interface{}{
			"previous_status": previous.String(),
			"new_status":      rule.To.String(),
			"trigger":         trigger.String(),
			"actor":           actor.Name,
		}))
	}

	// Notifications are best effort and never fail the transition.
	e.runNotifications(ctx, sol, rule)

	return sol, nil
}

// ensureAccountability creates the DRAFT prestação de contas when the
// process enters its paid state, if none exists yet. The deadline starts
// counting from the payment confirmation.
func (e *engineImpl) ensureAccountability(ctx context.Context, sol *entity.Solicitation) error {
	existing, err := e.accountabilities.GetBySolicitationID(ctx, sol.ID)
	if err != nil {
		return fmt.Errorf("failed to check accountability: %w", err)
	}
	if existing != nil {
		return nil
	}

	deadline := e.now().AddDate(0, 0, e.deadlineDays)
	acc := &entity.Accountability{
		ID:             uuid.NewString(),
		SolicitationID: sol.ID,
		ProcessNumber:  sol.ProcessNumber,
		RequesterID:    sol.RequesterID,
		Status:         entity.AccountabilityDraft,
		Value:          sol.Value,
		TotalSpent:     0,
		Balance:        sol.Value,
		Deadline:       &deadline,
		SentinelaRisk:  entity.RiskLow,
		CreatedAt:      e.now(),
		UpdatedAt:      e.now(),
	}
	if err := e.accountabilities.Create(ctx, acc); err != nil {
		return fmt.Errorf("failed to create accountability: %w", err)
	}

	if e.dispatcher != nil {
		e.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeAccountabilityCreated, sol.ID, map[string]interface{}{
			"accountability_id": acc.ID,
			"deadline":          deadline.Format(time.RFC3339),
		}))
	}
	return nil
}

func (e *engineImpl) runNotifications(ctx context.Context, sol *entity.Solicitation, rule domainwf.Rule) {
	if e.notifier == nil {
		return
	}
	for _, effect := range rule.SideEffects {
		var target string
		switch effect {
		case domainwf.EffectNotifySuprido:
			target = sol.RequesterID
		case domainwf.EffectNotifyManager:
			target = sol.ManagerEmail
		default:
			continue
		}
		if target == "" {
			continue
		}
		if err := e.notifier.Notify(ctx, target, "Processo "+sol.ProcessNumber, rule.To.Label()); err != nil {
			e.logger.Warn("Notification failed",
				zap.String("solicitation_id", sol.ID),
				zap.String("target", target),
				zap.Error(err))
		}
	}
}

// PermittedTriggers returns what the role could fire right now.
func (e *engineImpl) PermittedTriggers(ctx context.Context, solicitationID string, role domainwf.Role) ([]domainwf.Trigger, error) {
	sol, err := e.solicitations.GetByID(ctx, solicitationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load solicitation: %w", err)
	}
	return domainwf.NewMachine(sol.Status, sol.Module).PermittedTriggers(role), nil
}
