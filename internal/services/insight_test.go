package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"finsmart/internal/assist"
	"finsmart/internal/core"
	"finsmart/internal/ledger"
)

type fakeAdvisor struct {
	advice string
	err    error
	calls  int
	lines  []string
}

func (f *fakeAdvisor) Advise(ctx context.Context, lines []string) (string, error) {
	f.calls++
	f.lines = lines
	return f.advice, f.err
}

func seedLedger(t *testing.T, store ledger.Store, descriptions ...string) {
	t.Helper()
	for i, d := range descriptions {
		e, err := core.NewExpense(core.Money{Cents: int64(100 * (i + 1))}, string(core.CategoryFood), d, core.NewDate(2026, 8, 30))
		if err != nil {
			t.Fatal(err)
		}
		if err := store.Append(context.Background(), e); err != nil {
			t.Fatal(err)
		}
	}
}

func TestInsightEmptyLedgerShortCircuits(t *testing.T) {
	advisor := &fakeAdvisor{advice: "should not be used"}
	w := NewInsightWorkflow(NewExpenseService(ledger.NewMemoryStore(), nil), advisor)

	text, err := w.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if text != MsgLedgerEmpty {
		t.Errorf("text = %q, want canned empty-ledger message", text)
	}
	if advisor.calls != 0 {
		t.Errorf("advisor called %d times, want 0 for an empty ledger", advisor.calls)
	}
	if w.State() != InsightDone {
		t.Errorf("state = %s, want done", w.State())
	}
}

func TestInsightSuccess(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedLedger(t, store, "кофе", "такси")
	advisor := &fakeAdvisor{advice: "1. Меньше кофе.\n2. Больше пешком.\n3. Ведите бюджет."}
	w := NewInsightWorkflow(NewExpenseService(store, nil), advisor)

	text, err := w.Request(context.Background())
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if text != advisor.advice {
		t.Errorf("text = %q, want advisor reply", text)
	}
	if w.Result() != advisor.advice {
		t.Errorf("Result() = %q, want stored reply", w.Result())
	}
	if len(advisor.lines) != 2 {
		t.Fatalf("advisor got %d summary lines, want 2", len(advisor.lines))
	}
	// Ledger order is newest-first and the summary follows it.
	if !strings.Contains(advisor.lines[0], "такси") {
		t.Errorf("first line = %q, want the newest record first", advisor.lines[0])
	}
}

func TestInsightFailureEndsDoneWithMessage(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedLedger(t, store, "кофе")
	advisor := &fakeAdvisor{err: errors.New("quota exceeded")}
	w := NewInsightWorkflow(NewExpenseService(store, nil), advisor)

	text, err := w.Request(context.Background())
	if err != nil {
		t.Fatalf("Request must not surface collaborator errors, got %v", err)
	}
	if text != MsgAnalysisFailed {
		t.Errorf("text = %q, want failure message", text)
	}
	if w.State() != InsightDone {
		t.Errorf("state = %s, want done", w.State())
	}

	items, _ := store.List(context.Background())
	if len(items) != 1 {
		t.Errorf("ledger must stay unchanged, got %d records", len(items))
	}
}

func TestInsightEmptyReply(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedLedger(t, store, "кофе")
	advisor := &fakeAdvisor{err: assist.ErrEmptyResponse}
	w := NewInsightWorkflow(NewExpenseService(store, nil), advisor)

	text, err := w.Request(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if text != MsgNoAnalysis {
		t.Errorf("text = %q, want no-analysis message", text)
	}
}

func TestInsightRerunOverwritesResult(t *testing.T) {
	store := ledger.NewMemoryStore()
	seedLedger(t, store, "кофе")
	advisor := &fakeAdvisor{advice: "первый совет"}
	w := NewInsightWorkflow(NewExpenseService(store, nil), advisor)

	if _, err := w.Request(context.Background()); err != nil {
		t.Fatal(err)
	}
	advisor.advice = "второй совет"
	text, err := w.Request(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if text != "второй совет" || w.Result() != "второй совет" {
		t.Errorf("rerun must overwrite the result, got %q / %q", text, w.Result())
	}
}
