package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"finsmart/internal/assist"
	"finsmart/internal/metrics"
)

// InsightState tracks the advice workflow.
type InsightState string

const (
	InsightIdle       InsightState = "idle"
	InsightRequesting InsightState = "requesting"
	InsightDone       InsightState = "done"
)

// User-facing insight messages.
const (
	MsgLedgerEmpty    = "Добавьте несколько расходов, чтобы я мог их проанализировать."
	MsgAnalysisFailed = "Произошла ошибка при анализе данных."
	MsgNoAnalysis     = "Не удалось получить анализ."
)

var ErrInsightBusy = errors.New("analysis already in progress")

// InsightWorkflow requests a spending analysis from the advice collaborator.
// Re-invocable at any time; each run overwrites the previous result. No
// history is kept.
type InsightWorkflow struct {
	mu     sync.Mutex
	state  InsightState
	result string

	expenses *ExpenseService
	advisor  assist.Advisor
}

func NewInsightWorkflow(expenses *ExpenseService, advisor assist.Advisor) *InsightWorkflow {
	return &InsightWorkflow{
		state:    InsightIdle,
		expenses: expenses,
		advisor:  advisor,
	}
}

func (w *InsightWorkflow) State() InsightState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Result returns the text of the last finished analysis, empty before the
// first run.
func (w *InsightWorkflow) Result() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.result
}

// Request runs one analysis to completion and returns the new insight text.
// An empty ledger short-circuits to a canned message without contacting the
// collaborator; every failure path still ends in Done with a message, never
// an error surfaced to the interface.
func (w *InsightWorkflow) Request(ctx context.Context) (string, error) {
	w.mu.Lock()
	if w.state == InsightRequesting {
		w.mu.Unlock()
		return "", ErrInsightBusy
	}
	w.state = InsightRequesting
	w.mu.Unlock()

	text, outcome := w.analyze(ctx)

	w.mu.Lock()
	w.state = InsightDone
	w.result = text
	w.mu.Unlock()

	metrics.InsightRequestsTotal.WithLabelValues(outcome).Inc()
	return text, nil
}

func (w *InsightWorkflow) analyze(ctx context.Context) (text, outcome string) {
	items, err := w.expenses.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to read ledger for analysis", "error", err)
		return MsgAnalysisFailed, "failed"
	}
	if len(items) == 0 {
		return MsgLedgerEmpty, "empty_ledger"
	}

	lines := make([]string, len(items))
	for i, e := range items {
		lines[i] = assist.SummaryLine(e)
	}

	advice, err := w.advisor.Advise(ctx, lines)
	if err != nil {
		if errors.Is(err, assist.ErrEmptyResponse) {
			return MsgNoAnalysis, "empty_reply"
		}
		slog.ErrorContext(ctx, "Advice collaborator failed", "error", err)
		return MsgAnalysisFailed, "failed"
	}
	return advice, "success"
}
