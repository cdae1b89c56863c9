package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/tjpa/agil-workflow/internal/application/port"
	"github.com/tjpa/agil-workflow/internal/domain/entity"
)

// ItemRepository implements port.ItemRepository
type ItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewItemRepository creates a new expense item repository
func NewItemRepository(db *sql.DB, logger *zap.Logger) port.ItemRepository {
	return &ItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new expense item
func (r *ItemRepository) Create(ctx context.Context, item *entity.AccountabilityItem) error {
	query := `
		INSERT INTO accountability_items (
			id, accountability_id, description, value, item_date,
			document_ref, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := getExecutor(ctx, r.db).ExecContext(ctx, query,
		item.ID,
		item.AccountabilityID,
		item.Description,
		item.Value,
		item.ItemDate,
		item.DocumentRef,
		item.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create expense item",
			zap.String("accountability_id", item.AccountabilityID),
			zap.Error(err))
		return fmt.Errorf("failed to create item: %w", err)
	}
	return nil
}

// GetByAccountabilityID retrieves all expense items of an accountability
func (r *ItemRepository) GetByAccountabilityID(ctx context.Context, accountabilityID string) ([]*entity.AccountabilityItem, error) {
	query := `
		SELECT id, accountability_id, description, value, item_date,
			document_ref, created_at
		FROM accountability_items
		WHERE accountability_id = ?
		ORDER BY item_date ASC, created_at ASC
	`

	rows, err := getExecutor(ctx, r.db).QueryContext(ctx, query, accountabilityID)
	if err != nil {
		r.logger.Error("Failed to list expense items",
			zap.String("accountability_id", accountabilityID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var out []*entity.AccountabilityItem
	for rows.Next() {
		var item entity.AccountabilityItem
		err := rows.Scan(
			&item.ID,
			&item.AccountabilityID,
			&item.Description,
			&item.Value,
			&item.ItemDate,
			&item.DocumentRef,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		out = append(out, &item)
	}
	return out, rows.Err()
}

// SumByAccountabilityID totals the expense items of an accountability
func (r *ItemRepository) SumByAccountabilityID(ctx context.Context, accountabilityID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(value), 0)
		FROM accountability_items
		WHERE accountability_id = ?
	`

	var total float64
	err := getExecutor(ctx, r.db).QueryRowContext(ctx, query, accountabilityID).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to sum expense items",
			zap.String("accountability_id", accountabilityID),
			zap.Error(err))
		return 0, fmt.Errorf("failed to sum items: %w", err)
	}
	return total, nil
}

// Delete removes an expense item
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	result, err := getExecutor(ctx, r.db).ExecContext(ctx, `DELETE FROM accountability_items WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete expense item",
			zap.String("id", id),
			zap.Error(err))
		return fmt.Errorf("failed to delete item: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("item %s not found", id)
	}
	return nil
}

// Verify interface compliance
var _ port.ItemRepository = (*ItemRepository)(nil)
