// Package storage provides the SQLite-backed ledger store, for installs
// that outgrow the single-file snapshot.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"finsmart/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// List returns all records newest-first by insertion.
func (r *SQLiteRepository) List(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, amount_cents, category, description, expense_date
		 FROM expenses ORDER BY rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var items []core.Expense
	for rows.Next() {
		var (
			e       core.Expense
			cat     string
			dateStr string
		)
		if err := rows.Scan(&e.ID, &e.Amount.Cents, &cat, &e.Description, &dateStr); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		e.Category = core.NormalizeCategory(cat)
		d, err := core.ParseDate(dateStr)
		if err != nil {
			slog.WarnContext(ctx, "Skipping expense with unparsable date",
				"id", e.ID, "date", dateStr, "error", err)
			continue
		}
		e.Date = d
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return items, nil
}

func (r *SQLiteRepository) Append(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, amount_cents, category, description, expense_date)
		 VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.Amount.Cents, string(e.Category), e.Description, e.Date.ISO())
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved to SQLite",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", string(e.Category),
		"date", e.Date.ISO())
	return nil
}

// Remove deletes by id. Deleting an absent id is a no-op.
func (r *SQLiteRepository) Remove(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		slog.InfoContext(ctx, "Expense deleted from SQLite", "id", id)
	}
	return nil
}
