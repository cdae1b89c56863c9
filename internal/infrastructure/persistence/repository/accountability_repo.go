package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

// AccountabilityRepository implements port.AccountabilityRepository
type AccountabilityRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAccountabilityRepository creates a new accountability repository
func NewAccountabilityRepository(db *sql.DB, logger *zap.Logger) port.AccountabilityRepository {
	return &AccountabilityRepository{
		db:     db,
		logger: logger,
	}
}

const accountabilityColumns = `
	id, solicitation_id, process_number, requester_id, status, value,
	total_spent, balance, analyst_id, deadline, sentinela_risk,
	sentinela_alerts, created_at, updated_at
`

// Create inserts a new accountability
func (r *AccountabilityRepository) Create(ctx context.Context, a *entity.Accountability) error {
	alerts, err := marshalAlerts(a.SentinelaAlerts)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO accountabilities (` + accountabilityColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = getExecutor(ctx, r.db).ExecContext(ctx, query,
		a.ID,
		a.SolicitationID,
		a.ProcessNumber,
		a.RequesterID,
		a.Status,
		a.Value,
		a.TotalSpent,
		a.Balance,
		a.AnalystID,
		a.Deadline,
		string(a.SentinelaRisk),
		alerts,
		a.CreatedAt,
		a.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create accountability",
			zap.String("solicitation_id", a.SolicitationID),
			zap.Error(err))
		return fmt.Errorf("failed to create accountability: %w", err)
	}
	return nil
}

// GetByID retrieves an accountability by its id
func (r *AccountabilityRepository) GetByID(ctx context.Context, id string) (*entity.Accountability, error) {
	query := `SELECT ` + accountabilityColumns + ` FROM accountabilities WHERE id = ?`
	a, err := scanAccountability(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("accountability not found")
		}
		return nil, err
	}
	return a, nil
}

// GetBySolicitationID retrieves the accountability of a solicitation. A
// missing record is not an error; nil means none was filed yet.
func (r *AccountabilityRepository) GetBySolicitationID(ctx context.Context, solicitationID string) (*entity.Accountability, error) {
	query := `SELECT ` + accountabilityColumns + ` FROM accountabilities WHERE solicitation_id = ?`
	a, err := scanAccountability(getExecutor(ctx, r.db).QueryRowContext(ctx, query, solicitationID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

// List retrieves accountabilities, optionally narrowed to statuses
func (r *AccountabilityRepository) List(ctx context.Context, statuses []string, limit, offset int) ([]*entity.Accountability, error) {
	query := `SELECT ` + accountabilityColumns + ` FROM accountabilities`

	var args []interface{}
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, st := range statuses {
			placeholders[i] = "?"
			args = append(args, st)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list accountabilities", zap.Error(err))
		return nil, fmt.Errorf("failed to list accountabilities: %w", err)
	}
	defer rows.Close()

	var out []*entity.Accountability
	for rows.Next() {
		a, err := scanAccountability(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// UpdateStatus swaps the status only when the stored value still matches
func (r *AccountabilityRepository) UpdateStatus(ctx context.Context, id string, from, to string) (bool, error) {
	query := `
		UPDATE accountabilities
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, to, id, from)
	if err != nil {
		r.logger.Error("Failed to update accountability status",
			zap.String("id", id),
			zap.String("to", to),
			zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// UpdateTotals writes the recomputed spending totals
func (r *AccountabilityRepository) UpdateTotals(ctx context.Context, id string, totalSpent, balance float64) error {
	query := `
		UPDATE accountabilities
		SET total_spent = ?, balance = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx, query, totalSpent, balance, id); err != nil {
		r.logger.Error("Failed to update accountability totals",
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to update totals: %w", err)
	}
	return nil
}

// SetRisk writes a fresh Sentinela assessment
func (r *AccountabilityRepository) SetRisk(ctx context.Context, id string, risk entity.RiskLevel, alerts []string) error {
	encoded, err := marshalAlerts(alerts)
	if err != nil {
		return err
	}

	query := `
		UPDATE accountabilities
		SET sentinela_risk = ?, sentinela_alerts = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx, query, string(risk), encoded, id); err != nil {
		r.logger.Error("Failed to set accountability risk",
			zap.String("id", id),
			zap.String("risk", string(risk)),
			zap.Error(err))
		return fmt.Errorf("failed to set risk: %w", err)
	}
	return nil
}

// SetDeadline writes the filing deadline
func (r *AccountabilityRepository) SetDeadline(ctx context.Context, id string, deadline time.Time) error {
	query := `
		UPDATE accountabilities
		SET deadline = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx, query, deadline, id); err != nil {
		r.logger.Error("Failed to set accountability deadline",
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to set deadline: %w", err)
	}
	return nil
}

// AssignAnalyst sets the analyst on an accountability
func (r *AccountabilityRepository) AssignAnalyst(ctx context.Context, id string, analystID string) error {
	query := `
		UPDATE accountabilities
		SET analyst_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	if _, err := getExecutor(ctx, r.db).ExecContext(ctx, query, analystID, id); err != nil {
		r.logger.Error("Failed to assign accountability analyst",
			zap.String("id", id),
			zap.String("analyst_id", analystID),
			zap.Error(err))
		return fmt.Errorf("failed to assign analyst: %w", err)
	}
	return nil
}

func scanAccountability(row rowScanner) (*entity.Accountability, error) {
	var a entity.Accountability
	var risk string
	var alerts sql.NullString
	err := row.Scan(
		&a.ID,
		&a.SolicitationID,
		&a.ProcessNumber,
		&a.RequesterID,
		&a.Status,
		&a.Value,
		&a.TotalSpent,
		&a.Balance,
		&a.AnalystID,
		&a.Deadline,
		&risk,
		&alerts,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan accountability: %w", err)
	}
	a.SentinelaRisk = entity.RiskLevel(risk)
	if alerts.Valid && alerts.String != "" {
		if err := json.Unmarshal([]byte(alerts.String), &a.SentinelaAlerts); err != nil {
			return nil, fmt.Errorf("failed to decode sentinela alerts: %w", err)
		}
	}
	return &a, nil
}

func marshalAlerts(alerts []string) (string, error) {
	if len(alerts) == 0 {
		return "[]", nil
	}
	encoded, err := json.Marshal(alerts)
	if err != nil {
		return "", fmt.Errorf("failed to encode sentinela alerts: %w", err)
	}
	return string(encoded), nil
}

// Verify interface compliance
var _ port.AccountabilityRepository = (*AccountabilityRepository)(nil)
