package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// SolicitationRepository implements port.SolicitationRepository
type SolicitationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSolicitationRepository creates a new solicitation repository
func NewSolicitationRepository(db *sql.DB, logger *zap.Logger) port.SolicitationRepository {
	return &SolicitationRepository{
		db:     db,
		logger: logger,
	}
}

const solicitationColumns = `
	id, process_number, beneficiary, unit, module, document_type, value,
	justification, status, analyst_id, manager_email, requester_id,
	event_start, event_end, created_at, updated_at
`

// Create inserts a new solicitation
func (r *SolicitationRepository) Create(ctx context.Context, s *entity.Solicitation) error {
	query := `
		INSERT INTO solicitations (` + solicitationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		s.ID,
		s.ProcessNumber,
		s.Beneficiary,
		s.Unit,
		string(s.Module),
		s.DocumentType,
		s.Value,
		s.Justification,
		s.Status.String(),
		s.AnalystID,
		s.ManagerEmail,
		s.RequesterID,
		s.EventStart,
		s.EventEnd,
		s.CreatedAt,
		s.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create solicitation",
			zap.String("process_number", s.ProcessNumber),
			zap.Error(err))
		return fmt.Errorf("failed to create solicitation: %w", err)
	}
	return nil
}

// GetByID retrieves a solicitation by its id
func (r *SolicitationRepository) GetByID(ctx context.Context, id string) (*entity.Solicitation, error) {
	query := `SELECT ` + solicitationColumns + ` FROM solicitations WHERE id = ?`
	return r.scanOne(getExecutor(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByProcessNumber retrieves a solicitation by its NUP
func (r *SolicitationRepository) GetByProcessNumber(ctx context.Context, nup string) (*entity.Solicitation, error) {
	query := `SELECT ` + solicitationColumns + ` FROM solicitations WHERE process_number = ?`
	return r.scanOne(getExecutor(ctx, r.db).QueryRowContext(ctx, query, nup))
}

// List retrieves solicitations matching the filter
func (r *SolicitationRepository) List(ctx context.Context, filter port.SolicitationFilter) ([]*entity.Solicitation, error) {
	query := `SELECT ` + solicitationColumns + ` FROM solicitations`

	var conds []string
	var args []interface{}
	if filter.Module != "" {
		conds = append(conds, "module = ?")
		args = append(args, string(filter.Module))
	}
	if filter.AnalystID != "" {
		conds = append(conds, "analyst_id = ?")
		args = append(args, filter.AnalystID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, st := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, st.String())
		}
		conds = append(conds, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += " OFFSET ?"
			args = append(args, filter.Offset)
		}
	}

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list solicitations", zap.Error(err))
		return nil, fmt.Errorf("failed to list solicitations: %w", err)
	}
	defer rows.Close()

	var out []*entity.Solicitation
	for rows.Next() {
		s, err := scanSolicitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// UpdateStatusCAS swaps the status only when the stored value still matches
// expected. The WHERE clause carries the whole compare-and-swap; zero rows
// affected means a concurrent transition won.
func (r *SolicitationRepository) UpdateStatusCAS(ctx context.Context, id string, expected, to status.Status) (bool, error) {
	query := `
		UPDATE solicitations
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, to.String(), id, expected.String())
	if err != nil {
		r.logger.Error("Failed to update solicitation status",
			zap.String("id", id),
			zap.String("to", to.String()),
			zap.Error(err))
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

// AssignAnalyst sets the analyst on a solicitation
func (r *SolicitationRepository) AssignAnalyst(ctx context.Context, id string, analystID string) error {
	query := `
		UPDATE solicitations
		SET analyst_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query, analystID, id)
	if err != nil {
		r.logger.Error("Failed to assign analyst",
			zap.String("id", id),
			zap.String("analyst_id", analystID),
			zap.Error(err))
		return fmt.Errorf("failed to assign analyst: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("solicitation %s not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *SolicitationRepository) scanOne(row *sql.Row) (*entity.Solicitation, error) {
	s, err := scanSolicitation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("solicitation not found")
		}
		return nil, err
	}
	return s, nil
}

func scanSolicitation(row rowScanner) (*entity.Solicitation, error) {
	var s entity.Solicitation
	var module, st string
	err := row.Scan(
		&s.ID,
		&s.ProcessNumber,
		&s.Beneficiary,
		&s.Unit,
		&module,
		&s.DocumentType,
		&s.Value,
		&s.Justification,
		&st,
		&s.AnalystID,
		&s.ManagerEmail,
		&s.RequesterID,
		&s.EventStart,
		&s.EventEnd,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan solicitation: %w", err)
	}
	s.Module = entity.Module(module)
	s.Status = status.Status(st)
	return &s, nil
}

// Verify interface compliance
var _ port.SolicitationRepository = (*SolicitationRepository)(nil)
