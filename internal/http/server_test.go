package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"finsmart/internal/assist"
	"finsmart/internal/core"
	"finsmart/internal/ledger"
	"finsmart/internal/services"
)

type stubExtractor struct {
	ext assist.Extraction
	err error
}

func (s *stubExtractor) ExtractExpense(ctx context.Context, text string) (assist.Extraction, error) {
	return s.ext, s.err
}

type stubAdvisor struct {
	advice string
	err    error
}

func (s *stubAdvisor) Advise(ctx context.Context, lines []string) (string, error) {
	return s.advice, s.err
}

func newTestServer(extractor assist.Extractor, advisor assist.Advisor) (*Server, *services.ExpenseService) {
	expenses := services.NewExpenseService(ledger.NewMemoryStore(), nil)
	var capture *services.CaptureWorkflow
	if extractor != nil {
		capture = services.NewCaptureWorkflow(expenses, extractor)
	}
	var insight *services.InsightWorkflow
	if advisor != nil {
		insight = services.NewInsightWorkflow(expenses, advisor)
	}
	return NewServer(":0", expenses, capture, insight, services.NewSpeechSession(nil)), expenses
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	s.Server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestListExpensesEmpty(t *testing.T) {
	s, _ := newTestServer(nil, nil)
	rec := doRequest(s, http.MethodGet, "/api/expenses", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Items []core.Expense `json:"items"`
		Count int            `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 0 || resp.Items == nil {
		t.Errorf("empty ledger response = %+v, want zero count with empty array", resp)
	}
}

func TestCaptureExpenseEndpoint(t *testing.T) {
	s, expenses := newTestServer(&stubExtractor{
		ext: assist.Extraction{Amount: 500, Category: "Транспорт", Description: "Такси"},
	}, nil)

	rec := doRequest(s, http.MethodPost, "/api/expenses", `{"text":"такси за 500"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", rec.Code, rec.Body.String())
	}

	var outcome services.CaptureOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatal(err)
	}
	if outcome.Result != services.CaptureSuccess || outcome.Record == nil {
		t.Fatalf("outcome = %+v, want success with record", outcome)
	}
	if outcome.Record.Amount.Cents != 50000 {
		t.Errorf("amount = %d cents, want 50000", outcome.Record.Amount.Cents)
	}

	items, _ := expenses.List(context.Background())
	if len(items) != 1 {
		t.Errorf("ledger has %d records, want 1", len(items))
	}
}

func TestCaptureExpenseRejected(t *testing.T) {
	s, _ := newTestServer(&stubExtractor{ext: assist.Extraction{Amount: 0}}, nil)

	rec := doRequest(s, http.MethodPost, "/api/expenses", `{"text":"непонятно"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var outcome services.CaptureOutcome
	if err := json.Unmarshal(rec.Body.Bytes(), &outcome); err != nil {
		t.Fatal(err)
	}
	if outcome.Result != services.CaptureRejected || outcome.Message == "" {
		t.Errorf("outcome = %+v, want rejection with guidance", outcome)
	}
}

func TestCaptureExpenseEmptyText(t *testing.T) {
	s, _ := newTestServer(&stubExtractor{}, nil)
	rec := doRequest(s, http.MethodPost, "/api/expenses", `{"text":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestCaptureExpenseUnconfigured(t *testing.T) {
	s, _ := newTestServer(nil, nil)
	rec := doRequest(s, http.MethodPost, "/api/expenses", `{"text":"такси 500"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a collaborator", rec.Code)
	}
}

func TestDeleteExpense(t *testing.T) {
	s, expenses := newTestServer(nil, nil)
	ctx := context.Background()
	if err := expenses.SeedDemo(ctx, core.Today()); err != nil {
		t.Fatal(err)
	}
	items, _ := expenses.List(ctx)

	rec := doRequest(s, http.MethodDelete, "/api/expenses/"+items[0].ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	left, _ := expenses.List(ctx)
	if len(left) != len(items)-1 {
		t.Errorf("ledger has %d records, want %d", len(left), len(items)-1)
	}

	// Unknown ids are a no-op, not an error.
	rec = doRequest(s, http.MethodDelete, "/api/expenses/no-such-id", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204 for unknown id", rec.Code)
	}
}

func TestOverviewEndpoint(t *testing.T) {
	s, expenses := newTestServer(nil, nil)
	if err := expenses.SeedDemo(context.Background(), core.Today()); err != nil {
		t.Fatal(err)
	}

	rec := doRequest(s, http.MethodGet, "/api/overview", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var ov services.Overview
	if err := json.Unmarshal(rec.Body.Bytes(), &ov); err != nil {
		t.Fatal(err)
	}
	if ov.Total.Cents != 760000 {
		t.Errorf("total = %d cents, want 760000", ov.Total.Cents)
	}
	if len(ov.Timeline) != core.TimelineDays {
		t.Errorf("timeline has %d days, want %d", len(ov.Timeline), core.TimelineDays)
	}
}

func TestInsightsEndpoint(t *testing.T) {
	s, _ := newTestServer(nil, &stubAdvisor{advice: "совет"})

	// Empty ledger answers with the canned message, still 200.
	rec := doRequest(s, http.MethodPost, "/api/insights", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp struct {
		Insight string `json:"insight"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Insight != services.MsgLedgerEmpty {
		t.Errorf("insight = %q, want empty-ledger message", resp.Insight)
	}
}

func TestInsightsUnconfigured(t *testing.T) {
	s, _ := newTestServer(nil, nil)
	rec := doRequest(s, http.MethodPost, "/api/insights", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a collaborator", rec.Code)
	}
}

func TestVoiceUnavailable(t *testing.T) {
	s, _ := newTestServer(nil, nil)
	rec := doRequest(s, http.MethodPost, "/api/voice", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 without a transcriber", rec.Code)
	}
}

func TestSeedDemoEndpoint(t *testing.T) {
	s, expenses := newTestServer(nil, nil)

	rec := doRequest(s, http.MethodPost, "/api/demo", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	items, _ := expenses.List(context.Background())
	if len(items) != 4 {
		t.Errorf("ledger has %d records after seeding, want 4", len(items))
	}
}

func TestSecurityHeaders(t *testing.T) {
	s, _ := newTestServer(nil, nil)
	rec := doRequest(s, http.MethodGet, "/api/expenses", "")

	headers := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "strict-origin-when-cross-origin",
	}
	for name, want := range headers {
		if got := rec.Header().Get(name); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestRateLimitOnMutations(t *testing.T) {
	s, _ := newTestServer(nil, nil)

	// httptest requests share one RemoteAddr, so they count as one client.
	var limited bool
	for i := 0; i < requestsPerMinute+1; i++ {
		rec := doRequest(s, http.MethodPost, "/api/demo", "")
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			if got := rec.Header().Get("Retry-After"); got != "60" {
				t.Errorf("Retry-After = %q, want 60", got)
			}
			break
		}
	}
	if !limited {
		t.Error("mutating requests were never rate limited")
	}

	// Reads are not limited.
	rec := doRequest(s, http.MethodGet, "/api/expenses", "")
	if rec.Code != http.StatusOK {
		t.Errorf("read status = %d, want 200 past the limit", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	s, _ := newTestServer(nil, nil)
	for _, path := range []string{"/healthz", "/readyz"} {
		rec := doRequest(s, http.MethodGet, path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("%s status = %d, want 200", path, rec.Code)
		}
	}
}
