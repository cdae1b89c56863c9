package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/projection"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// InboxView is one module dashboard: the three tab lists, the badge counts
// and the module the view was built for.
type InboxView struct {
	Module entity.Module                          `json:"module"`
	Tabs   map[projection.Bucket][]entity.InboxItem `json:"tabs"`
	Counts projection.BucketCounts                `json:"counts"`
}

// InboxService assembles the per-module work queues. Listing pulls both
// solicitations and accountabilities, flattens them and hands them to the
// pure bucketing and scoring projections.
type InboxService interface {
	// Inbox builds the tabbed dashboard for a module, optionally filtered by
	// a search query. The query applies after bucketing.
	Inbox(ctx context.Context, module entity.Module, userID, query string) (*InboxView, error)

	// Queue returns the module's open work sorted by priority score.
	Queue(ctx context.Context, module entity.Module, userID string) ([]projection.ScoredItem, error)
}

type inboxServiceImpl struct {
	solicitations    port.SolicitationRepository
	accountabilities port.AccountabilityRepository
	priority         projection.PriorityConfig
	logger           *zap.Logger
	now              func() time.Time
}

// NewInboxService creates a new InboxService.
func NewInboxService(
	solicitations port.SolicitationRepository,
	accountabilities port.AccountabilityRepository,
	priority projection.PriorityConfig,
	logger *zap.Logger,
) InboxService {
	return &inboxServiceImpl{
		solicitations:    solicitations,
		accountabilities: accountabilities,
		priority:         priority,
		logger:           logger,
		now:              time.Now,
	}
}

func (s *inboxServiceImpl) Inbox(ctx context.Context, module entity.Module, userID, query string) (*InboxView, error) {
	cfg, ok := projection.ConfigFor(module)
	if !ok {
		return nil, fmt.Errorf("unknown module %q", module)
	}

	items, err := s.collect(ctx, module)
	if err != nil {
		return nil, err
	}

	counts := projection.Counts(items, cfg, userID)
	tabs := projection.Partition(items, cfg, userID)
	for bucket, list := range tabs {
		tabs[bucket] = projection.Search(list, query)
	}

	return &InboxView{
		Module: module,
		Tabs:   tabs,
		Counts: counts,
	}, nil
}

func (s *inboxServiceImpl) Queue(ctx context.Context, module entity.Module, userID string) ([]projection.ScoredItem, error) {
	cfg, ok := projection.ConfigFor(module)
	if !ok {
		return nil, fmt.Errorf("unknown module %q", module)
	}

	items, err := s.collect(ctx, module)
	if err != nil {
		return nil, err
	}

	open := make([]entity.InboxItem, 0, len(items))
	for _, item := range items {
		if cfg.BucketFor(item, userID) != projection.BucketDone {
			open = append(open, item)
		}
	}
	return projection.ScoreAll(open, s.priority, s.now()), nil
}

// collect lists the records a module's dashboard shows. SOSFU, SODPA and
// Ressarcimento each see the solicitations of their own module; AJSEFIN sees
// whatever waits for the ordenador's signature, whichever module produced
// it. Accountabilities are triaged by SOSFU.
func (s *inboxServiceImpl) collect(ctx context.Context, module entity.Module) ([]entity.InboxItem, error) {
	var filter port.SolicitationFilter
	if module == entity.ModuleAJSEFIN {
		filter.Statuses = []status.Status{
			status.WaitingSefinSignature,
			status.WaitingSOSFUPayment,
		}
	} else {
		filter.Module = module
	}

	sols, err := s.solicitations.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitations: %w", err)
	}

	items := make([]entity.InboxItem, 0, len(sols))
	beneficiaries := make(map[string]string, len(sols))
	for _, sol := range sols {
		items = append(items, entity.SolicitationInboxItem(sol))
		beneficiaries[sol.ID] = sol.Beneficiary
	}

	if module == entity.ModuleSOSFU {
		accs, err := s.accountabilities.List(ctx, nil, 0, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list accountabilities: %w", err)
		}
		for _, acc := range accs {
			name := beneficiaries[acc.SolicitationID]
			if name == "" {
				sol, err := s.solicitations.GetByID(ctx, acc.SolicitationID)
				if err != nil {
					s.logger.Warn("Accountability without loadable solicitation",
						zap.String("accountability_id", acc.ID),
						zap.String("solicitation_id", acc.SolicitationID),
						zap.Error(err))
				} else {
					name = sol.Beneficiary
				}
			}
			items = append(items, entity.AccountabilityInboxItem(acc, name))
		}
	}

	return items, nil
}
