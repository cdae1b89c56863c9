package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
	domainwf "github.com/tjpa/agil-workflow/internal/domain/workflow"
)

type mockSolicitationRepo struct {
	solicitation *entity.Solicitation
	casResult    bool
	casErr       error
	casCalls     int
	casExpected  status.Status
	casTo        status.Status
}

func (m *mockSolicitationRepo) Create(ctx context.Context, s *entity.Solicitation) error { return nil }

func (m *mockSolicitationRepo) GetByID(ctx context.Context, id string) (*entity.Solicitation, error) {
	if m.solicitation == nil {
		return nil, errors.New("not found")
	}
	cp := *m.solicitation
	return &cp, nil
}

func (m *mockSolicitationRepo) GetByProcessNumber(ctx context.Context, nup string) (*entity.Solicitation, error) {
	return nil, errors.New("not found")
}

func (m *mockSolicitationRepo) List(ctx context.Context, filter port.SolicitationFilter) ([]*entity.Solicitation, error) {
	return nil, nil
}

func (m *mockSolicitationRepo) UpdateStatusCAS(ctx context.Context, id string, expected, to status.Status) (bool, error) {
	m.casCalls++
	m.casExpected = expected
	m.casTo = to
	return m.casResult, m.casErr
}

func (m *mockSolicitationRepo) AssignAnalyst(ctx context.Context, id string, analystID string) error {
	return nil
}

type mockAccountabilityRepo struct {
	existing *entity.Accountability
	created  *entity.Accountability
}

func (m *mockAccountabilityRepo) Create(ctx context.Context, a *entity.Accountability) error {
	m.created = a
	return nil
}

func (m *mockAccountabilityRepo) GetByID(ctx context.Context, id string) (*entity.Accountability, error) {
	return nil, errors.New("not found")
}

func (m *mockAccountabilityRepo) GetBySolicitationID(ctx context.Context, solicitationID string) (*entity.Accountability, error) {
	return m.existing, nil
}

func (m *mockAccountabilityRepo) List(ctx context.Context, statuses []string, limit, offset int) ([]*entity.Accountability, error) {
	return nil, nil
}

func (m *mockAccountabilityRepo) UpdateStatus(ctx context.Context, id string, from, to string) (bool, error) {
	return true, nil
}

func (m *mockAccountabilityRepo) UpdateTotals(ctx context.Context, id string, totalSpent, balance float64) error {
	return nil
}

func (m *mockAccountabilityRepo) SetRisk(ctx context.Context, id string, risk entity.RiskLevel, alerts []string) error {
	return nil
}

func (m *mockAccountabilityRepo) SetDeadline(ctx context.Context, id string, deadline time.Time) error {
	return nil
}

func (m *mockAccountabilityRepo) AssignAnalyst(ctx context.Context, id string, analystID string) error {
	return nil
}

type mockHistoryRepo struct {
	entries []*entity.HistoryEntry
}

func (m *mockHistoryRepo) Append(ctx context.Context, h *entity.HistoryEntry) error {
	m.entries = append(m.entries, h)
	return nil
}

func (m *mockHistoryRepo) ListBySolicitationID(ctx context.Context, solicitationID string) ([]entity.HistoryEntry, error) {
	return nil, nil
}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockNotifier struct {
	sent []string
}

func (m *mockNotifier) Notify(ctx context.Context, userID, title, message string) error {
	m.sent = append(m.sent, userID)
	return nil
}

type engineFixture struct {
	solicitations    *mockSolicitationRepo
	accountabilities *mockAccountabilityRepo
	history          *mockHistoryRepo
	tx               *mockTxManager
	notifier         *mockNotifier
	engine           Engine
}

func newEngineFixture(sol *entity.Solicitation, opts ...EngineOption) *engineFixture {
	f := &engineFixture{
		solicitations:    &mockSolicitationRepo{solicitation: sol, casResult: true},
		accountabilities: &mockAccountabilityRepo{},
		history:          &mockHistoryRepo{},
		tx:               &mockTxManager{},
		notifier:         &mockNotifier{},
	}
	opts = append(opts, WithNotifier(f.notifier))
	f.engine = NewEngine(
		f.solicitations,
		f.accountabilities,
		f.history,
		f.tx,
		zap.NewNop(),
		opts...,
	)
	return f
}

func testSolicitation(st status.Status) *entity.Solicitation {
	return &entity.Solicitation{
		ID:            "sol-1",
		ProcessNumber: "TJ/2025/000123",
		Beneficiary:   "Maria Santos",
		Module:        entity.ModuleSOSFU,
		Value:         5000,
		Status:        st,
		RequesterID:   "user-maria",
		ManagerEmail:  "gestor@tjpa.jus.br",
	}
}

func TestEngineExecuteTransition(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingManager))

	actor := Actor{ID: "user-gestor", Name: "João Gestor", Role: domainwf.RoleGestor}
	sol, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerAttest, actor, "atesto ok")
	require.NoError(t, err)

	assert.Equal(t, status.WaitingSOSFUAnalysis, sol.Status)
	assert.Equal(t, 1, f.tx.calls)
	assert.Equal(t, 1, f.solicitations.casCalls)
	assert.Equal(t, status.WaitingManager, f.solicitations.casExpected)
	assert.Equal(t, status.WaitingSOSFUAnalysis, f.solicitations.casTo)

	require.Len(t, f.history.entries, 1)
	entry := f.history.entries[0]
	require.NotNil(t, entry.StatusFrom)
	assert.Equal(t, status.WaitingManager, *entry.StatusFrom)
	assert.Equal(t, status.WaitingSOSFUAnalysis, entry.StatusTo)
	assert.Equal(t, "João Gestor", entry.ActorName)
	assert.Equal(t, "atesto ok", entry.Description)
}

func TestEngineExecuteDefaultDescription(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingManager))

	_, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerAttest,
		Actor{Name: "João", Role: domainwf.RoleGestor}, "")
	require.NoError(t, err)

	require.Len(t, f.history.entries, 1)
	assert.NotEmpty(t, f.history.entries[0].Description)
}

func TestEngineExecuteInvalidTransition(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.Paid))

	_, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerAttest,
		Actor{Role: domainwf.RoleGestor}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainwf.ErrInvalidTransition)
	assert.Zero(t, f.tx.calls)
	assert.Empty(t, f.history.entries)
}

func TestEngineExecuteRoleNotAllowed(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingManager))

	_, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerAttest,
		Actor{Role: domainwf.RoleSuprido}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainwf.ErrRoleNotAllowed)
	assert.Zero(t, f.tx.calls)
}

func TestEngineExecuteSystemBypassesRole(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingManager))

	sol, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerAttest, SystemActor, "")
	require.NoError(t, err)
	assert.Equal(t, status.WaitingSOSFUAnalysis, sol.Status)
}

func TestEngineExecuteStatusConflict(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingManager))
	f.solicitations.casResult = false

	_, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerAttest,
		Actor{Role: domainwf.RoleGestor}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, domainwf.ErrStatusConflict)
}

func TestEngineConfirmReceiptCreatesAccountability(t *testing.T) {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	f := newEngineFixture(testSolicitation(status.WaitingSupridoConfirmation),
		WithClock(func() time.Time { return now }),
		WithDeadlineDays(30),
	)

	sol, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerConfirmReceipt,
		Actor{Name: "Maria", Role: domainwf.RoleSuprido}, "")
	require.NoError(t, err)
	assert.Equal(t, status.Paid, sol.Status)

	acc := f.accountabilities.created
	require.NotNil(t, acc, "a draft accountability must be created on receipt")
	assert.Equal(t, "sol-1", acc.SolicitationID)
	assert.Equal(t, entity.AccountabilityDraft, acc.Status)
	assert.Equal(t, 5000.0, acc.Value)
	assert.Equal(t, 5000.0, acc.Balance)
	assert.Zero(t, acc.TotalSpent)
	require.NotNil(t, acc.Deadline)
	assert.Equal(t, now.AddDate(0, 0, 30), *acc.Deadline)
}

func TestEngineConfirmReceiptIdempotentAccountability(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingSupridoConfirmation))
	f.accountabilities.existing = &entity.Accountability{ID: "acc-1", SolicitationID: "sol-1"}

	_, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerConfirmReceipt,
		Actor{Role: domainwf.RoleSuprido}, "")
	require.NoError(t, err)
	assert.Nil(t, f.accountabilities.created, "existing accountability must not be duplicated")
}

func TestEngineNotifiesOnSideEffects(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingSOSFUPayment))

	_, err := f.engine.Execute(context.Background(), "sol-1", domainwf.TriggerConfirmPayment,
		Actor{Role: domainwf.RoleSOSFU}, "")
	require.NoError(t, err)
	assert.Contains(t, f.notifier.sent, "user-maria")
}

func TestEnginePermittedTriggers(t *testing.T) {
	f := newEngineFixture(testSolicitation(status.WaitingManager))

	triggers, err := f.engine.PermittedTriggers(context.Background(), "sol-1", domainwf.RoleGestor)
	require.NoError(t, err)
	assert.Contains(t, triggers, domainwf.TriggerAttest)
	assert.Contains(t, triggers, domainwf.TriggerReturnToRequester)
	assert.NotContains(t, triggers, domainwf.TriggerSubmit)
}
