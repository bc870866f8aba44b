package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"finsmart/internal/core"
)

// FileStore keeps the whole ledger in one JSON file: the single named slot
// of the durable storage contract. The file is read once at construction;
// every mutation rewrites it wholesale (last-writer-wins snapshot).
// A missing or corrupt file is treated as an empty ledger, never an error.
type FileStore struct {
	mu    sync.Mutex
	path  string
	items []core.Expense
}

func NewFileStore(path string) (*FileStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}
	s := &FileStore{path: path}
	s.items = loadSnapshot(path)
	return s, nil
}

func loadSnapshot(path string) []core.Expense {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Ledger snapshot unreadable, starting empty", "path", path, "error", err)
		}
		return nil
	}
	var items []core.Expense
	if err := json.Unmarshal(data, &items); err != nil {
		slog.Warn("Ledger snapshot corrupt, starting empty", "path", path, "error", err)
		return nil
	}
	return items
}

func (s *FileStore) List(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out, nil
}

// Append inserts the record at the front and persists before returning.
func (s *FileStore) Append(ctx context.Context, e core.Expense) error {
	if err := e.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]core.Expense, 0, len(s.items)+1)
	next = append(next, e)
	next = append(next, s.items...)
	if err := s.persist(next); err != nil {
		return err
	}
	s.items = next
	slog.InfoContext(ctx, "Expense appended to ledger",
		"id", e.ID,
		"description", e.Description,
		"amount_cents", e.Amount.Cents,
		"category", string(e.Category),
		"date", e.Date.ISO())
	return nil
}

// Remove deletes the record with the given id if present and persists.
func (s *FileStore) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, e := range s.items {
		if e.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	next := make([]core.Expense, 0, len(s.items)-1)
	next = append(next, s.items[:idx]...)
	next = append(next, s.items[idx+1:]...)
	if err := s.persist(next); err != nil {
		return err
	}
	s.items = next
	slog.InfoContext(ctx, "Expense removed from ledger", "id", id)
	return nil
}

// persist writes the full snapshot via a temp file and rename so a crash
// mid-write never leaves a half-written slot behind.
func (s *FileStore) persist(items []core.Expense) error {
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write ledger snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace ledger snapshot: %w", err)
	}
	return nil
}
