// Package insights produces a natural-language summary of facility activity
// through an external text-generation provider. The engine depends on
// nothing about the summary beyond it being a string: any failure falls back
// to a locally formatted report.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"parking-facility/internal/parking"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type GenerateRequest struct {
	Model     string
	System    string
	Prompt    string
	MaxTokens int
}

type GenerateResponse struct {
	Content      string
	Model        string
	InputTokens  int
	OutputTokens int
}

// Provider is one text-generation backend.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error)
	Name() string
}

// Client tries the primary provider with retry, then the fallback provider,
// and finally a deterministic local summary. Summarize never fails.
type Client struct {
	Primary       Provider
	Fallback      Provider
	Model         string
	FallbackModel string
	Currency      string
	Tracer        trace.Tracer
	// MaxTries bounds the retry attempts per provider. Zero means 3.
	MaxTries uint
}

const systemPrompt = "You are an assistant for a parking facility operator. " +
	"Summarize the provided statistics and recent transactions in a short, " +
	"plain-language paragraph. Mention revenue, occupancy and any notable pattern."

func (c *Client) Summarize(ctx context.Context, snapshot parking.Snapshot) string {
	prompt := buildPrompt(snapshot, c.Currency)

	if c.Primary != nil {
		if resp, err := c.generateWithRetry(ctx, c.Primary, GenerateRequest{
			Model:     c.Model,
			System:    systemPrompt,
			Prompt:    prompt,
			MaxTokens: 512,
		}); err == nil {
			return strings.TrimSpace(resp.Content)
		}
	}

	if c.Fallback != nil {
		if resp, err := c.generateWithRetry(ctx, c.Fallback, GenerateRequest{
			Model:     c.FallbackModel,
			System:    systemPrompt,
			Prompt:    prompt,
			MaxTokens: 512,
		}); err == nil {
			return strings.TrimSpace(resp.Content)
		}
	}

	return FallbackSummary(snapshot, c.Currency)
}

func (c *Client) generateWithRetry(ctx context.Context, provider Provider, req GenerateRequest) (*GenerateResponse, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 1 * time.Second
	bo.MaxInterval = 10 * time.Second

	maxTries := c.MaxTries
	if maxTries == 0 {
		maxTries = 3
	}

	return backoff.Retry(ctx, func() (*GenerateResponse, error) {
		return c.generateOnce(ctx, provider, req)
	},
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(maxTries),
	)
}

func (c *Client) generateOnce(ctx context.Context, provider Provider, req GenerateRequest) (*GenerateResponse, error) {
	if c.Tracer == nil {
		return provider.Generate(ctx, req)
	}

	ctx, span := c.Tracer.Start(ctx, "gen_ai.chat "+req.Model,
		trace.WithAttributes(
			attribute.String("gen_ai.operation.name", "chat"),
			attribute.String("gen_ai.provider.name", provider.Name()),
			attribute.String("gen_ai.request.model", req.Model),
		))
	defer span.End()

	resp, err := provider.Generate(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("gen_ai.usage.input_tokens", resp.InputTokens),
		attribute.Int("gen_ai.usage.output_tokens", resp.OutputTokens),
	)
	return resp, nil
}

func buildPrompt(snapshot parking.Snapshot, currency string) string {
	var b strings.Builder
	stats := snapshot.Stats
	fmt.Fprintf(&b, "Facility statistics:\n")
	fmt.Fprintf(&b, "- total revenue: %d %s\n", stats.TotalRevenue, currency)
	fmt.Fprintf(&b, "- total entries: %d\n", stats.TotalEntries)
	fmt.Fprintf(&b, "- slots: %d total, %d available, %d occupied\n",
		stats.TotalSlots, stats.AvailableSlots, stats.OccupiedSlots)

	if len(snapshot.RecentTransactions) > 0 {
		fmt.Fprintf(&b, "\nMost recent transactions:\n")
		for _, tx := range snapshot.RecentTransactions {
			fmt.Fprintf(&b, "- %s at slot %s, %d min, %d %s\n",
				tx.Plate, tx.SlotLabel, tx.DurationMinutes, tx.Fee, currency)
		}
	}
	return b.String()
}

// FallbackSummary is the deterministic local summary used when no provider
// is configured or every provider failed.
func FallbackSummary(snapshot parking.Snapshot, currency string) string {
	stats := snapshot.Stats
	return fmt.Sprintf(
		"The facility has recorded %d entries and %d %s in revenue. "+
			"%d of %d slots are currently occupied and %d are available.",
		stats.TotalEntries, stats.TotalRevenue, currency,
		stats.OccupiedSlots, stats.TotalSlots, stats.AvailableSlots)
}
