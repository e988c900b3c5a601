package reports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/roundup-bot/internal/entity/policy"
	"max.ks1230/roundup-bot/internal/model/ledger"
	"max.ks1230/roundup-bot/internal/model/storage"
)

func Test_OnGenerateSummary_ShouldRenderMonthlyTotals(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewInMemStorage()

	store := ledger.Load(mem, "alice", policy.Agorot)
	_, err := store.Add(ledger.RawTransaction{
		Date:   time.Date(2026, time.January, 15, 0, 0, 0, 0, time.UTC),
		Amount: "17.20",
	})
	require.NoError(t, err)
	require.NoError(t, store.SetMode(policy.Shekels))
	_, err = store.Add(ledger.RawTransaction{
		Date:   time.Date(2026, time.January, 20, 0, 0, 0, 0, time.UTC),
		Amount: "17.20",
	})
	require.NoError(t, err)
	_, err = store.Add(ledger.RawTransaction{
		Date:   time.Date(2026, time.February, 2, 0, 0, 0, 0, time.UTC),
		Amount: "91.50",
	})
	require.NoError(t, err)

	generator := NewGenerator(mem)
	summary, err := generator.GenerateSummary(ctx, "alice")
	require.NoError(t, err)

	assert.Contains(t, summary, "January 2026: 3.60 ₪")
	assert.Contains(t, summary, "February 2026: 8.50 ₪")
	assert.Contains(t, summary, "Total invested: 12.10 ₪")
}

func Test_OnGenerateSummary_WithNoInvestments_ShouldSaySo(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewInMemStorage()

	generator := NewGenerator(mem)
	summary, err := generator.GenerateSummary(ctx, "nobody")
	require.NoError(t, err)

	assert.Equal(t, noInvestmentsMessage, summary)
}

func Test_OnFormatSummary_ShouldRoundOnlyAtPresentation(t *testing.T) {
	mem := storage.NewInMemStorage()
	store := ledger.Load(mem, "alice", policy.Agorot)

	// 0.33 invested per entry; the exact sum 0.99 must survive to display
	for day := 1; day <= 3; day++ {
		_, err := store.Add(ledger.RawTransaction{
			Date:   time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC),
			Amount: "9.67",
		})
		require.NoError(t, err)
	}

	summary := FormatSummary(ledger.MonthlySummaryOf(store.Transactions()))

	assert.Contains(t, summary, "March 2026: 0.99 ₪")
}
