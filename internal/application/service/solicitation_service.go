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
	"github.com/tjpa/agil-workflow/internal/domain/projection"
	"github.com/tjpa/agil-workflow/internal/domain/status"
	domainwf "github.com/tjpa/agil-workflow/internal/domain/workflow"
	"github.com/tjpa/agil-workflow/pkg/utils"
)

// CreateSolicitationInput carries the fields a suprido fills in when opening
// a request. ProcessNumber is optional; a NUP is generated when absent.
type CreateSolicitationInput struct {
	ProcessNumber string     `json:"process_number"`
	Beneficiary   string     `json:"beneficiary"`
	Unit          string     `json:"unit"`
	Module        string     `json:"module"`
	DocumentType  string     `json:"document_type"`
	Value         float64    `json:"value"`
	Justification string     `json:"justification"`
	ManagerEmail  string     `json:"manager_email"`
	RequesterID   string     `json:"requester_id"`
	EventStart    *time.Time `json:"event_start,omitempty"`
	EventEnd      *time.Time `json:"event_end,omitempty"`
}

// SolicitationDetail is the full read model of one process: the record, its
// tramitação history and the derived progress stepper.
type SolicitationDetail struct {
	Solicitation *entity.Solicitation         `json:"solicitation"`
	History      []entity.HistoryEntry        `json:"history"`
	Stepper      projection.StepperProjection `json:"stepper"`
	Overdue      bool                         `json:"overdue"`
}

// SolicitationService manages solicitation records around the workflow
// engine: creation, detail reads and analyst assignment.
type SolicitationService interface {
	Create(ctx context.Context, input CreateSolicitationInput) (*entity.Solicitation, error)
	Get(ctx context.Context, id string) (*entity.Solicitation, error)
	Detail(ctx context.Context, id string) (*SolicitationDetail, error)
	AssignAnalyst(ctx context.Context, id, analystID string) error
}

type solicitationServiceImpl struct {
	solicitations    port.SolicitationRepository
	accountabilities port.AccountabilityRepository
	history          port.HistoryRepository
	txManager        port.TransactionManager
	dispatcher       dispatcher.Dispatcher
	logger           *zap.Logger
	now              func() time.Time
}

// NewSolicitationService creates a new SolicitationService.
func NewSolicitationService(
	solicitations port.SolicitationRepository,
	accountabilities port.AccountabilityRepository,
	history port.HistoryRepository,
	txManager port.TransactionManager,
	d dispatcher.Dispatcher,
	logger *zap.Logger,
) SolicitationService {
	return &solicitationServiceImpl{
		solicitations:    solicitations,
		accountabilities: accountabilities,
		history:          history,
		txManager:        txManager,
		dispatcher:       d,
		logger:           logger,
		now:              time.Now,
	}
}

// Create opens a new solicitation in PENDING and writes the opening history
// entry.
func (s *solicitationServiceImpl) Create(ctx context.Context, input CreateSolicitationInput) (*entity.Solicitation, error) {
	module := entity.Module(input.Module)
	if !module.IsValid() {
		return nil, fmt.Errorf("unknown module %q", input.Module)
	}
	if input.Value <= 0 {
		return nil, fmt.Errorf("value must be positive")
	}
	if input.ProcessNumber != "" {
		if err := utils.ValidateProcessNumber(input.ProcessNumber); err != nil {
			return nil, err
		}
	}
	if input.ManagerEmail != "" {
		if err := utils.ValidateEmail(input.ManagerEmail); err != nil {
			return nil, err
		}
	}

	now := s.now()
	sol := &entity.Solicitation{
		ID:            uuid.NewString(),
		ProcessNumber: input.ProcessNumber,
		Beneficiary:   input.Beneficiary,
		Unit:          input.Unit,
		Module:        module,
		DocumentType:  input.DocumentType,
		Value:         input.Value,
		Justification: input.Justification,
		Status:        status.Pending,
		ManagerEmail:  input.ManagerEmail,
		RequesterID:   input.RequesterID,
		EventStart:    input.EventStart,
		EventEnd:      input.EventEnd,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if sol.ProcessNumber == "" {
		sol.ProcessNumber = generateProcessNumber(now, sol.ID)
	}

	err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.solicitations.Create(txCtx, sol); err != nil {
			return fmt.Errorf("failed to create solicitation: %w", err)
		}
		return s.history.Append(txCtx, &entity.HistoryEntry{
			SolicitationID: sol.ID,
			StatusTo:       status.Pending,
			ActorName:      input.Beneficiary,
			Description:    "Solicitação criada",
			CreatedAt:      now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create solicitation",
			zap.String("process_number", sol.ProcessNumber),
			zap.Error(err))
		return nil, err
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeSolicitationCreated, sol.ID, map[string]interface{}{
		"process_number": sol.ProcessNumber,
		"module":         string(sol.Module),
	}))

	s.logger.Info("Solicitation created",
		zap.String("id", sol.ID),
		zap.String("process_number", sol.ProcessNumber),
		zap.String("module", string(sol.Module)))
	return sol, nil
}

func (s *solicitationServiceImpl) Get(ctx context.Context, id string) (*entity.Solicitation, error) {
	return s.solicitations.GetByID(ctx, id)
}

// Detail assembles the record, its history and the stepper projection.
func (s *solicitationServiceImpl) Detail(ctx context.Context, id string) (*SolicitationDetail, error) {
	sol, err := s.solicitations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load solicitation: %w", err)
	}

	history, err := s.history.ListBySolicitationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	accStatus := ""
	overdue := false
	acc, err := s.accountabilities.GetBySolicitationID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load accountability: %w", err)
	}
	if acc != nil {
		accStatus = acc.Status
		overdue = acc.Overdue(s.now())
	}

	return &SolicitationDetail{
		Solicitation: sol,
		History:      history,
		Stepper:      projection.Project(sol.Status, accStatus, sol.Status == status.Rejected, history),
		Overdue:      overdue,
	}, nil
}

// AssignAnalyst claims a solicitation for an analyst. A record already
// claimed by a different analyst is a conflict; re-claiming by the same
// analyst is a no-op.
func (s *solicitationServiceImpl) AssignAnalyst(ctx context.Context, id, analystID string) error {
	sol, err := s.solicitations.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load solicitation: %w", err)
	}

	if sol.AnalystID != nil && *sol.AnalystID != "" {
		if *sol.AnalystID == analystID {
			return nil
		}
		return fmt.Errorf("%w: solicitation %s already assigned to %s", domainwf.ErrAssignmentConflict, id, *sol.AnalystID)
	}

	if err := s.solicitations.AssignAnalyst(ctx, id, analystID); err != nil {
		return fmt.Errorf("failed to assign analyst: %w", err)
	}

	s.dispatcher.DispatchAsync(ctx, event.NewEvent(event.TypeAnalystAssigned, id, map[string]interface{}{
		"analyst_id": analystID,
	}))
	return nil
}

// generateProcessNumber builds a NUP from the creation year and the record
// id, e.g. "TJ/2025/1a2b3c4d".
func generateProcessNumber(now time.Time, id string) string {
	short := id
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("TJ/%d/%s", now.Year(), short)
}
