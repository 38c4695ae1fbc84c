// Package insight produces the natural-language ledger summary through the
// Gemini API. It is a read-only collaborator: it gets a snapshot of the
// records, returns a string, and its failures never reach callers as
// errors.
package insight

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/singleflight"

	"github.com/gitSambhal/milky-way-grocery-app/internal/core"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.5-flash"

	// Only the most recent records are sent; older history adds tokens
	// without improving the summary.
	maxRecords = 90
)

// User-facing sentinel strings. Callers render these verbatim instead of
// handling errors.
const (
	MsgMissingKey = "API Key is missing. Please set the environment variable."
	MsgFailure    = "Sorry, I encountered an error while analyzing your data. Please try again later."
	MsgNoContent  = "Could not generate insights at this time."
)

type Analyzer struct {
	client *resty.Client
	apiKey string
	model  string
	group  singleflight.Group
}

type Option func(*Analyzer)

// WithBaseURL points the client at a different endpoint. Used by tests.
func WithBaseURL(url string) Option {
	return func(a *Analyzer) { a.client.SetBaseURL(url) }
}

func WithModel(model string) Option {
	return func(a *Analyzer) {
		if model != "" {
			a.model = model
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(a *Analyzer) {
		if d > 0 {
			a.client.SetTimeout(d)
		}
	}
}

func New(apiKey string, opts ...Option) *Analyzer {
	client := resty.New().
		SetBaseURL(defaultBaseURL).
		SetHeader("content-type", "application/json").
		SetTimeout(30 * time.Second)

	a := &Analyzer{
		client: client,
		apiKey: apiKey,
		model:  defaultModel,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// recordProjection is the recency-bounded view of a record handed to the
// model: enough to reason about spending and payments, nothing else.
type recordProjection struct {
	Date       string  `json:"date"`
	Qty        float64 `json:"qty"`
	Cost       float64 `json:"cost"`
	PaidAmount float64 `json:"paidAmount"`
}

type generateRequest struct {
	SystemInstruction content   `json:"systemInstruction"`
	Contents          []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func systemPrompt(currency, unit string) string {
	return fmt.Sprintf(`You are a smart assistant for a milk/grocery tracking app.
Analyze the provided JSON data of milk purchases and payments.
Provide a concise, friendly summary in markdown.
Focus on:
1. Total spending vs Total payments made.
2. Current balance (if they owe money or have credit).
3. Average daily consumption.
4. Any interesting patterns (e.g., "You tend to buy more on weekends").
5. A customized tip for saving money.

The currency is %s and unit is %s.
Keep the tone helpful and encouraging.
Do not output JSON, output readable Markdown.`, currency, unit)
}

// Analyze summarizes the ledger. It always returns displayable text: a
// missing credential or a failed call yields a fixed sentinel message
// rather than an error. Concurrent calls are collapsed into a single
// upstream request; an abandoned caller simply discards the result.
func (a *Analyzer) Analyze(ctx context.Context, l core.Ledger, settings core.Settings) string {
	if a.apiKey == "" {
		return MsgMissingKey
	}

	out, err, _ := a.group.Do("analyze", func() (any, error) {
		return a.analyze(ctx, l, settings), nil
	})
	if err != nil {
		return MsgFailure
	}
	return out.(string)
}

func (a *Analyzer) analyze(ctx context.Context, l core.Ledger, settings core.Settings) string {
	records := l.Sorted()
	if len(records) > maxRecords {
		records = records[len(records)-maxRecords:]
	}

	projected := make([]recordProjection, len(records))
	for i, r := range records {
		projected[i] = recordProjection{
			Date:       r.Date,
			Qty:        r.Quantity,
			Cost:       r.Cost(),
			PaidAmount: r.PaymentAmount,
		}
	}
	data, err := json.Marshal(projected)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to project records for analysis", "error", err)
		return MsgFailure
	}

	req := generateRequest{
		SystemInstruction: content{Parts: []part{{Text: systemPrompt(settings.CurrencySymbol, settings.UnitLabel)}}},
		Contents: []content{{Parts: []part{{
			Text: fmt.Sprintf("Here is my milk purchase history and payment log:\n%s\n\nPlease analyze this.", data),
		}}}},
	}

	var resp generateResponse
	httpResp, err := a.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", a.apiKey).
		SetBody(req).
		SetResult(&resp).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", a.model))
	if err != nil {
		slog.ErrorContext(ctx, "Insight call failed", "error", err, "model", a.model)
		return MsgFailure
	}
	if httpResp.IsError() {
		slog.ErrorContext(ctx, "Insight call rejected",
			"status", httpResp.StatusCode(), "model", a.model)
		return MsgFailure
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return MsgNoContent
	}
	text := resp.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return MsgNoContent
	}

	slog.InfoContext(ctx, "Insight generated", "records", len(projected), "model", a.model)
	return text
}
