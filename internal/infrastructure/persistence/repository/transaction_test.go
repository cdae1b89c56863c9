package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
	"github.com/tjpa/agil-workflow/internal/infrastructure/persistence/sqlite"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	// One connection so every statement sees the same in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../../../migrations/001_initial_schema.sql")
	if err != nil {
		t.Fatalf("failed to read schema: %v", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}
	return db
}

func storedSolicitation(id string, st status.Status) *entity.Solicitation {
	now := time.Now().UTC()
	return &entity.Solicitation{
		ID:            id,
		ProcessNumber: "TJ/2025/" + id,
		Beneficiary:   "Maria Souza",
		Module:        entity.ModuleSOSFU,
		Value:         5000,
		Status:        st,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// A failed transition must leave neither the status swap nor the history
// entry behind.
func TestWithTransactionRollbackDiscardsWrites(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	txManager := sqlite.NewDB(db, logger)
	sols := NewSolicitationRepository(db, logger)
	hist := NewHistoryRepository(db, logger)
	ctx := context.Background()

	if err := sols.Create(ctx, storedSolicitation("sol-1", status.WaitingSupridoConfirmation)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	boom := errors.New("boom")
	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		swapped, err := sols.UpdateStatusCAS(txCtx, "sol-1", status.WaitingSupridoConfirmation, status.Paid)
		if err != nil {
			return err
		}
		if !swapped {
			t.Fatal("swap did not apply inside the transaction")
		}
		if err := hist.Append(txCtx, &entity.HistoryEntry{
			SolicitationID: "sol-1",
			StatusTo:       status.Paid,
			ActorName:      "Maria Souza",
			CreatedAt:      time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction error = %v, want boom", err)
	}

	got, err := sols.GetByID(ctx, "sol-1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != status.WaitingSupridoConfirmation {
		t.Errorf("status = %s after rollback, want %s", got.Status, status.WaitingSupridoConfirmation)
	}

	entries, err := hist.ListBySolicitationID(ctx, "sol-1")
	if err != nil {
		t.Fatalf("list history failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("history has %d entries after rollback, want 0", len(entries))
	}
}

func TestWithTransactionCommitsAllWrites(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	txManager := sqlite.NewDB(db, logger)
	sols := NewSolicitationRepository(db, logger)
	hist := NewHistoryRepository(db, logger)
	ctx := context.Background()

	if err := sols.Create(ctx, storedSolicitation("sol-2", status.WaitingSupridoConfirmation)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	err := txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if _, err := sols.UpdateStatusCAS(txCtx, "sol-2", status.WaitingSupridoConfirmation, status.Paid); err != nil {
			return err
		}
		return hist.Append(txCtx, &entity.HistoryEntry{
			SolicitationID: "sol-2",
			StatusTo:       status.Paid,
			CreatedAt:      time.Now().UTC(),
		})
	})
	if err != nil {
		t.Fatalf("WithTransaction failed: %v", err)
	}

	got, err := sols.GetByID(ctx, "sol-2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != status.Paid {
		t.Errorf("status = %s after commit, want %s", got.Status, status.Paid)
	}

	entries, err := hist.ListBySolicitationID(ctx, "sol-2")
	if err != nil {
		t.Fatalf("list history failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("history has %d entries after commit, want 1", len(entries))
	}
}

// A nested WithTransaction reuses the outer transaction, so an outer error
// discards the inner writes too.
func TestWithTransactionNestedReusesOuter(t *testing.T) {
	db := newTestDB(t)
	logger := zap.NewNop()
	txManager := sqlite.NewDB(db, logger)
	sols := NewSolicitationRepository(db, logger)
	ctx := context.Background()

	if err := sols.Create(ctx, storedSolicitation("sol-3", status.Pending)); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	boom := errors.New("boom")
	err := txManager.WithTransaction(ctx, func(outerCtx context.Context) error {
		inner := txManager.WithTransaction(outerCtx, func(innerCtx context.Context) error {
			_, err := sols.UpdateStatusCAS(innerCtx, "sol-3", status.Pending, status.WaitingManager)
			return err
		})
		if inner != nil {
			return inner
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction error = %v, want boom", err)
	}

	got, err := sols.GetByID(ctx, "sol-3")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.Status != status.Pending {
		t.Errorf("status = %s, want %s: nested write escaped the outer rollback", got.Status, status.Pending)
	}
}
