package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"finsmart/internal/assist"
	"finsmart/internal/core"
	"finsmart/internal/metrics"
)

// CaptureState tracks one capture attempt.
type CaptureState string

const (
	CaptureIdle       CaptureState = "idle"
	CaptureSubmitting CaptureState = "submitting"
)

// Capture outcomes.
type CaptureResult string

const (
	CaptureSuccess  CaptureResult = "success"
	CaptureRejected CaptureResult = "rejected"
	CaptureFailed   CaptureResult = "failed"
)

// User-facing capture messages, in the ledger's display language.
const (
	MsgAmountNotRecognized = "Не удалось распознать сумму. Попробуйте: 'Такси 500р'"
	MsgProcessingError     = "Ошибка при обработке."
)

var (
	ErrEmptyInput   = errors.New("empty input text")
	ErrCaptureBusy  = errors.New("capture already in progress")
	ErrStaleCapture = errors.New("capture result arrived after reset")
)

// CaptureOutcome is what a finished submission reports back to the caller.
// On Rejected and Failed the input is retained for correction; on Success
// it is cleared.
type CaptureOutcome struct {
	Result  CaptureResult `json:"result"`
	Record  *core.Expense `json:"record,omitempty"`
	Message string        `json:"message,omitempty"`
}

// CaptureWorkflow turns free text into a ledger record via the extraction
// collaborator. One submission at a time; while submitting, the triggering
// control is inert. A generation counter discards results that arrive after
// Reset, so a stale extraction can never touch the ledger.
type CaptureWorkflow struct {
	mu         sync.Mutex
	state      CaptureState
	generation uint64

	expenses  *ExpenseService
	extractor assist.Extractor
	today     func() core.Date
}

func NewCaptureWorkflow(expenses *ExpenseService, extractor assist.Extractor) *CaptureWorkflow {
	return &CaptureWorkflow{
		state:     CaptureIdle,
		expenses:  expenses,
		extractor: extractor,
		today:     core.Today,
	}
}

// State returns the current workflow state.
func (w *CaptureWorkflow) State() CaptureState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Reset returns the workflow to Idle and invalidates any in-flight
// submission; its eventual result will be discarded.
func (w *CaptureWorkflow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.generation++
	w.state = CaptureIdle
}

// Submit runs one capture attempt to completion. It blocks the calling
// goroutine for the duration of the collaborator call; the rest of the
// application stays responsive.
func (w *CaptureWorkflow) Submit(ctx context.Context, text string) (CaptureOutcome, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CaptureOutcome{}, ErrEmptyInput
	}

	w.mu.Lock()
	if w.state == CaptureSubmitting {
		w.mu.Unlock()
		return CaptureOutcome{}, ErrCaptureBusy
	}
	w.state = CaptureSubmitting
	gen := w.generation
	w.mu.Unlock()

	ext, extractErr := w.extractor.ExtractExpense(ctx, text)

	w.mu.Lock()
	defer w.mu.Unlock()
	if gen != w.generation {
		// The workflow was reset while the collaborator was thinking.
		slog.InfoContext(ctx, "Discarding stale capture result", "text", text)
		return CaptureOutcome{}, ErrStaleCapture
	}
	w.state = CaptureIdle

	if extractErr != nil {
		slog.ErrorContext(ctx, "Expense extraction failed", "error", extractErr)
		metrics.CapturesTotal.WithLabelValues(string(CaptureFailed)).Inc()
		return CaptureOutcome{Result: CaptureFailed, Message: MsgProcessingError}, nil
	}

	if ext.Amount <= 0 {
		metrics.CapturesTotal.WithLabelValues(string(CaptureRejected)).Inc()
		return CaptureOutcome{Result: CaptureRejected, Message: MsgAmountNotRecognized}, nil
	}

	description := ext.Description
	if strings.TrimSpace(description) == "" {
		description = text
	}
	record, err := core.NewExpense(core.MoneyFromFloat(ext.Amount), ext.Category, description, w.today())
	if err != nil {
		slog.ErrorContext(ctx, "Extracted expense failed validation", "error", err)
		metrics.CapturesTotal.WithLabelValues(string(CaptureRejected)).Inc()
		return CaptureOutcome{Result: CaptureRejected, Message: MsgAmountNotRecognized}, nil
	}

	if err := w.expenses.Create(ctx, record); err != nil {
		slog.ErrorContext(ctx, "Failed to store captured expense", "error", err, "id", record.ID)
		metrics.CapturesTotal.WithLabelValues(string(CaptureFailed)).Inc()
		return CaptureOutcome{Result: CaptureFailed, Message: MsgProcessingError}, nil
	}

	slog.InfoContext(ctx, "Expense captured",
		"id", record.ID,
		"amount_cents", record.Amount.Cents,
		"category", string(record.Category))
	metrics.CapturesTotal.WithLabelValues(string(CaptureSuccess)).Inc()
	return CaptureOutcome{Result: CaptureSuccess, Record: &record}, nil
}
