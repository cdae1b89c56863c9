// Package repository holds the SQLite implementations of the persistence
// ports. Every repository resolves its executor from the context so that
// calls inside a transaction ride on it transparently.
package repository

import (
	"context"
	"database/sql"

	"github.com/tjpa/agil-workflow/internal/infrastructure/persistence/sqlite"
)

// getExecutor returns the transaction from the context when present, the
// plain database otherwise. The context key is owned by the sqlite
// transaction manager; going through sqlite.ExtractTx keeps both packages
// resolving the same value.
func getExecutor(ctx context.Context, db *sql.DB) sqlite.Executor {
	if tx := sqlite.ExtractTx(ctx); tx != nil {
		return tx
	}
	return db
}
