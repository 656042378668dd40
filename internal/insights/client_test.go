package insights

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parking-facility/internal/parking"
)

type fakeProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (p *fakeProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return &GenerateResponse{Content: p.content, Model: req.Model}, nil
}

func (p *fakeProvider) Name() string { return p.name }

func testSnapshot() parking.Snapshot {
	return parking.Snapshot{
		Stats: parking.Stats{
			TotalRevenue:   1500,
			TotalEntries:   3,
			TotalSlots:     4,
			AvailableSlots: 3,
			OccupiedSlots:  1,
		},
		RecentTransactions: []parking.Transaction{
			{Plate: "RAB123X", SlotLabel: "A1", DurationMinutes: 45, Fee: 500},
		},
	}
}

func TestSummarizeUsesPrimaryProvider(t *testing.T) {
	primary := &fakeProvider{name: "primary", content: "  A quiet morning.  "}
	fallback := &fakeProvider{name: "fallback", content: "unused"}

	client := &Client{Primary: primary, Fallback: fallback, Currency: "RWF", MaxTries: 1}
	summary := client.Summarize(context.Background(), testSnapshot())

	assert.Equal(t, "A quiet morning.", summary)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, fallback.calls)
}

func TestSummarizeFallsBackWhenPrimaryFails(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("rate limited")}
	fallback := &fakeProvider{name: "fallback", content: "Backup summary."}

	client := &Client{Primary: primary, Fallback: fallback, Currency: "RWF", MaxTries: 1}
	summary := client.Summarize(context.Background(), testSnapshot())

	assert.Equal(t, "Backup summary.", summary)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, fallback.calls)
}

func TestSummarizeRetriesBeforeFallingBack(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("transient")}
	fallback := &fakeProvider{name: "fallback", content: "Backup summary."}

	client := &Client{Primary: primary, Fallback: fallback, Currency: "RWF", MaxTries: 2}
	summary := client.Summarize(context.Background(), testSnapshot())

	assert.Equal(t, "Backup summary.", summary)
	assert.Equal(t, 2, primary.calls)
}

func TestSummarizeNeverFails(t *testing.T) {
	primary := &fakeProvider{name: "primary", err: errors.New("down")}
	fallback := &fakeProvider{name: "fallback", err: errors.New("also down")}

	client := &Client{Primary: primary, Fallback: fallback, Currency: "RWF", MaxTries: 1}
	summary := client.Summarize(context.Background(), testSnapshot())

	require.NotEmpty(t, summary)
	assert.Contains(t, summary, "1500 RWF")
	assert.Contains(t, summary, "3 entries")
}

func TestSummarizeWithNoProviders(t *testing.T) {
	client := &Client{Currency: "RWF", MaxTries: 1}
	summary := client.Summarize(context.Background(), testSnapshot())

	assert.Equal(t, FallbackSummary(testSnapshot(), "RWF"), summary)
}

func TestBuildPromptIncludesStatsAndTransactions(t *testing.T) {
	prompt := buildPrompt(testSnapshot(), "RWF")

	assert.True(t, strings.Contains(prompt, "total revenue: 1500 RWF"))
	assert.True(t, strings.Contains(prompt, "RAB123X at slot A1, 45 min, 500 RWF"))
}
