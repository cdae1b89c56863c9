package service

import (
	"context"
	"errors"
	"time"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

var errNotFound = errors.New("not found")

type memSolicitationRepo struct {
	records map[string]*entity.Solicitation
}

func newMemSolicitationRepo(records ...*entity.Solicitation) *memSolicitationRepo {
	r := &memSolicitationRepo{records: make(map[string]*entity.Solicitation)}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *memSolicitationRepo) Create(ctx context.Context, s *entity.Solicitation) error {
	r.records[s.ID] = s
	return nil
}

func (r *memSolicitationRepo) GetByID(ctx context.Context, id string) (*entity.Solicitation, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memSolicitationRepo) GetByProcessNumber(ctx context.Context, nup string) (*entity.Solicitation, error) {
	for _, rec := range r.records {
		if rec.ProcessNumber == nup {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, errNotFound
}

func (r *memSolicitationRepo) List(ctx context.Context, filter port.SolicitationFilter) ([]*entity.Solicitation, error) {
	var out []*entity.Solicitation
	for _, rec := range r.records {
		if filter.Module != "" && rec.Module != filter.Module {
			continue
		}
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, rec.Status) {
			continue
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memSolicitationRepo) UpdateStatusCAS(ctx context.Context, id string, expected, to status.Status) (bool, error) {
	rec, ok := r.records[id]
	if !ok {
		return false, errNotFound
	}
	if rec.Status != expected {
		return false, nil
	}
	rec.Status = to
	return true, nil
}

func (r *memSolicitationRepo) AssignAnalyst(ctx context.Context, id string, analystID string) error {
	rec, ok := r.records[id]
	if !ok {
		return errNotFound
	}
	rec.AnalystID = &analystID
	return nil
}

func containsStatus(set []status.Status, s status.Status) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

type memAccountabilityRepo struct {
	records map[string]*entity.Accountability
}

func newMemAccountabilityRepo(records ...*entity.Accountability) *memAccountabilityRepo {
	r := &memAccountabilityRepo{records: make(map[string]*entity.Accountability)}
	for _, rec := range records {
		r.records[rec.ID] = rec
	}
	return r
}

func (r *memAccountabilityRepo) Create(ctx context.Context, a *entity.Accountability) error {
	r.records[a.ID] = a
	return nil
}

func (r *memAccountabilityRepo) GetByID(ctx context.Context, id string) (*entity.Accountability, error) {
	rec, ok := r.records[id]
	if !ok {
		return nil, errNotFound
	}
	cp := *rec
	return &cp, nil
}

func (r *memAccountabilityRepo) GetBySolicitationID(ctx context.Context, solicitationID string) (*entity.Accountability, error) {
	for _, rec := range r.records {
		if rec.SolicitationID == solicitationID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAccountabilityRepo) List(ctx context.Context, statuses []string, limit, offset int) ([]*entity.Accountability, error) {
	var out []*entity.Accountability
	for _, rec := range r.records {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memAccountabilityRepo) UpdateStatus(ctx context.Context, id string, from, to string) (bool, error) {
	rec, ok := r.records[id]
	if !ok {
		return false, errNotFound
	}
	if rec.Status != from {
		return false, nil
	}
	rec.Status = to
	return true, nil
}

func (r *memAccountabilityRepo) UpdateTotals(ctx context.Context, id string, totalSpent, balance float64) error {
	rec, ok := r.records[id]
	if !ok {
		return errNotFound
	}
	rec.TotalSpent = totalSpent
	rec.Balance = balance
	return nil
}

func (r *memAccountabilityRepo) SetRisk(ctx context.Context, id string, risk entity.RiskLevel, alerts []string) error {
	rec, ok := r.records[id]
	if !ok {
		return errNotFound
	}
	rec.SentinelaRisk = risk
	rec.SentinelaAlerts = alerts
	return nil
}

func (r *memAccountabilityRepo) SetDeadline(ctx context.Context, id string, deadline time.Time) error {
	rec, ok := r.records[id]
	if !ok {
		return errNotFound
	}
	rec.Deadline = &deadline
	return nil
}

func (r *memAccountabilityRepo) AssignAnalyst(ctx context.Context, id string, analystID string) error {
	rec, ok := r.records[id]
	if !ok {
		return errNotFound
	}
	rec.AnalystID = &analystID
	return nil
}

type memItemRepo struct {
	items map[string]*entity.AccountabilityItem
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{items: make(map[string]*entity.AccountabilityItem)}
}

func (r *memItemRepo) Create(ctx context.Context, item *entity.AccountabilityItem) error {
	r.items[item.ID] = item
	return nil
}

func (r *memItemRepo) GetByAccountabilityID(ctx context.Context, accountabilityID string) ([]*entity.AccountabilityItem, error) {
	var out []*entity.AccountabilityItem
	for _, item := range r.items {
		if item.AccountabilityID == accountabilityID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *memItemRepo) SumByAccountabilityID(ctx context.Context, accountabilityID string) (float64, error) {
	total := 0.0
	for _, item := range r.items {
		if item.AccountabilityID == accountabilityID {
			total += item.Value
		}
	}
	return total, nil
}

func (r *memItemRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return errNotFound
	}
	delete(r.items, id)
	return nil
}

type memHistoryRepo struct {
	entries []entity.HistoryEntry
}

func (r *memHistoryRepo) Append(ctx context.Context, h *entity.HistoryEntry) error {
	r.entries = append(r.entries, *h)
	return nil
}

func (r *memHistoryRepo) ListBySolicitationID(ctx context.Context, solicitationID string) ([]entity.HistoryEntry, error) {
	var out []entity.HistoryEntry
	for _, e := range r.entries {
		if e.SolicitationID == solicitationID {
			out = append(out, e)
		}
	}
	return out, nil
}

type passthroughTxManager struct{}

func (passthroughTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
