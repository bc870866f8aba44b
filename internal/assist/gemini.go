package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finsmart/internal/core"

	"google.golang.org/api/generativelanguage/v1beta"
	"google.golang.org/api/option"
)

const (
	DefaultModel = "gemini-3-flash-preview"

	callTimeout = 30 * time.Second
)

// GeminiClient implements Extractor and Advisor against the Generative
// Language API with API-key auth.
type GeminiClient struct {
	svc   *generativelanguage.Service
	model string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	svc, err := generativelanguage.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create generative language service: %w", err)
	}
	return &GeminiClient{svc: svc, model: model}, nil
}

// ExtractExpense asks the model for a JSON object with amount, category and
// description for the given free text.
func (c *GeminiClient) ExtractExpense(ctx context.Context, text string) (Extraction, error) {
	reply, err := c.generate(ctx, BuildExtractionPrompt(text), &generativelanguage.GenerationConfig{
		ResponseMimeType: "application/json",
	})
	if err != nil {
		return Extraction{}, fmt.Errorf("extraction call: %w", err)
	}
	ext, err := ParseExtraction(reply)
	if err != nil {
		return Extraction{}, fmt.Errorf("parse extraction: %w", err)
	}
	slog.DebugContext(ctx, "Expense extracted",
		"amount", ext.Amount,
		"category", ext.Category)
	return ext, nil
}

// Advise asks the model for three concise savings tips in Russian over the
// serialized ledger lines.
func (c *GeminiClient) Advise(ctx context.Context, lines []string) (string, error) {
	reply, err := c.generate(ctx, BuildAdvicePrompt(lines), &generativelanguage.GenerationConfig{
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("advice call: %w", err)
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", ErrEmptyResponse
	}
	return reply, nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, cfg *generativelanguage.GenerationConfig) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	req := &generativelanguage.GenerateContentRequest{
		Contents: []*generativelanguage.Content{{
			Role:  "user",
			Parts: []*generativelanguage.Part{{Text: prompt}},
		}},
		GenerationConfig: cfg,
	}

	resp, err := c.svc.Models.GenerateContent("models/"+c.model, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// BuildExtractionPrompt renders the extraction instruction with the closed
// category set enumerated.
func BuildExtractionPrompt(text string) string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return fmt.Sprintf(
		`Извлеки информацию о расходе из текста: "%s". Верни JSON объект с полями: amount (number), category (one of: %s), description (string). Если категория не ясна, используй "%s". Сегодняшняя дата по умолчанию.`,
		text, strings.Join(names, ", "), core.CategoryOther)
}

// BuildAdvicePrompt renders the analysis instruction over the ledger lines,
// newest-first as the ledger orders them.
func BuildAdvicePrompt(lines []string) string {
	return "Проанализируй следующие расходы и дай 3 кратких совета по экономии на русском языке. Будь конструктивным и вежливым.\n\n" +
		strings.Join(lines, "\n")
}

// ParseExtraction decodes the model's JSON reply, tolerating markdown code
// fences some models wrap around JSON despite instructions.
func ParseExtraction(reply string) (Extraction, error) {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return Extraction{}, ErrEmptyResponse
	}
	var ext Extraction
	if err := json.Unmarshal([]byte(reply), &ext); err != nil {
		return Extraction{}, fmt.Errorf("unmarshal model reply: %w", err)
	}
	return ext, nil
}

// SummaryLine serializes one record as the advice prompt expects:
// "date: amount руб. на category (description)".
func SummaryLine(e core.Expense) string {
	return fmt.Sprintf("%s: %s руб. на %s (%s)", e.Date.ISO(), e.Amount, e.Category, e.Description)
}
