package services

import (
	"context"
	"fmt"
	"log/slog"

	"finsmart/internal/amqp"
	"finsmart/internal/core"
	"finsmart/internal/ledger"
)

// ExpenseService orchestrates ledger mutations and the optional AMQP event
// stream. The ledger stays authoritative; publish failures never fail the
// mutation.
type ExpenseService struct {
	store      ledger.Store
	amqpClient *amqp.Client
}

func NewExpenseService(store ledger.Store, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		store:      store,
		amqpClient: amqpClient,
	}
}

// List returns the current ledger snapshot, newest-first.
func (s *ExpenseService) List(ctx context.Context) ([]core.Expense, error) {
	return s.store.List(ctx)
}

// Create appends a record and publishes a created event.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) error {
	if err := s.store.Append(ctx, e); err != nil {
		return fmt.Errorf("append expense: %w", err)
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishExpenseCreated(ctx, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to publish created event",
				"id", e.ID, "error", err)
			// Don't fail the request - expense is saved locally
		}
	}
	return nil
}

// Delete removes a record by id (no-op if absent) and publishes a deleted
// event.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("remove expense: %w", err)
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.PublishExpenseDeleted(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish deleted event",
				"id", id, "error", err)
		}
	}
	return nil
}

// Overview is the full set of derived views over one ledger snapshot.
type Overview struct {
	Total      core.Money            `json:"total"`
	ByCategory []core.CategoryAmount `json:"by_category"`
	Timeline   []core.DayAmount      `json:"timeline"`
}

// Overview recomputes all derived views from a fresh snapshot.
func (s *ExpenseService) Overview(ctx context.Context, today core.Date) (Overview, error) {
	items, err := s.store.List(ctx)
	if err != nil {
		return Overview{}, fmt.Errorf("list expenses: %w", err)
	}
	return Overview{
		Total:      core.TotalSpent(items),
		ByCategory: core.CategoryTotals(items),
		Timeline:   core.Timeline(items, today),
	}, nil
}

// SeedDemo loads the sample records shown to first-time users. Only an
// empty ledger is seeded.
func (s *ExpenseService) SeedDemo(ctx context.Context, today core.Date) error {
	items, err := s.store.List(ctx)
	if err != nil {
		return fmt.Errorf("list expenses: %w", err)
	}
	if len(items) > 0 {
		return nil
	}
	demo := []struct {
		cents    int64
		category string
		desc     string
		daysAgo  int
	}{
		{150000, string(core.CategoryFood), "Продукты на неделю", 0},
		{30000, string(core.CategoryTransport), "Такси в центр", 0},
		{500000, string(core.CategoryShopping), "Новые кроссовки", 1},
		{80000, string(core.CategoryEntertainment), "Кино и попкорн", 2},
	}
	for _, d := range demo {
		e, err := core.NewExpense(core.Money{Cents: d.cents}, d.category, d.desc, today.AddDays(-d.daysAgo))
		if err != nil {
			return fmt.Errorf("build demo expense: %w", err)
		}
		if err := s.Create(ctx, e); err != nil {
			return fmt.Errorf("seed demo expense: %w", err)
		}
	}
	slog.InfoContext(ctx, "Demo expenses seeded", "count", len(demo))
	return nil
}

// Close releases the AMQP connection if one is held.
func (s *ExpenseService) Close() error {
	if s.amqpClient != nil {
		return s.amqpClient.Close()
	}
	return nil
}
