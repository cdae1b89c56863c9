package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
	"github.com/tjpa/agil-workflow/internal/domain/status"
)

// HistoryRepository implements port.HistoryRepository. The tramitação trail
// is append-only; there is deliberately no update or delete here.
type HistoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB, logger *zap.Logger) port.HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

// Append writes one tramitação entry
func (r *HistoryRepository) Append(ctx context.Context, h *entity.HistoryEntry) error {
	query := `
		INSERT INTO historico_tramitacao (
			solicitation_id, status_from, status_to, actor_name,
			description, created_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`

	var from *string
	if h.StatusFrom != nil {
		s := h.StatusFrom.String()
		from = &s
	}

	result, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		h.SolicitationID,
		from,
		h.StatusTo.String(),
		h.ActorName,
		h.Description,
		h.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append history entry",
			zap.String("solicitation_id", h.SolicitationID),
			zap.Error(err))
		return fmt.Errorf("failed to append history: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	h.ID = id
	return nil
}

// ListBySolicitationID retrieves the tramitação trail of a process in
// chronological order
func (r *HistoryRepository) ListBySolicitationID(ctx context.Context, solicitationID string) ([]entity.HistoryEntry, error) {
	query := `
		SELECT id, solicitation_id, status_from, status_to, actor_name,
			description, created_at
		FROM historico_tramitacao
		WHERE solicitation_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, solicitationID)
	if err != nil {
		r.logger.Error("Failed to list history",
			zap.String("solicitation_id", solicitationID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var out []entity.HistoryEntry
	for rows.Next() {
		var h entity.HistoryEntry
		var from sql.NullString
		var to string
		err := rows.Scan(
			&h.ID,
			&h.SolicitationID,
			&from,
			&to,
			&h.ActorName,
			&h.Description,
			&h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		if from.Valid {
			s := status.Status(from.String)
			h.StatusFrom = &s
		}
		h.StatusTo = status.Status(to)
		out = append(out, h)
	}
	return out, rows.Err()
}

// Verify interface compliance
var _ port.HistoryRepository = (*HistoryRepository)(nil)
