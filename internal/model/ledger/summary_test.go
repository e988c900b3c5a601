package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/roundup-bot/internal/entity/policy"
)

func Test_OnMonthlySummary_ShouldSumInvestPortionsPerMonth(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "17.20"})
	require.NoError(t, err)
	require.NoError(t, store.SetMode(policy.Shekels))
	_, err = store.Add(RawTransaction{Date: date(t, "2026-01-20"), Amount: "17.20"})
	require.NoError(t, err)

	summary := store.MonthlySummary()

	require.Len(t, summary, 1)
	assert.Equal(t, "January 2026", summary[0].Label)
	assert.Equal(t, "3.60", summary[0].Total.Round(2).StringFixed(2))
}

func Test_OnMonthlySummary_ShouldSkipWholeAmounts(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "18.00"})
	require.NoError(t, err)

	assert.Empty(t, store.MonthlySummary())
}

func Test_OnMonthlySummary_ShouldKeepFirstOccurrenceOrder(t *testing.T) {
	store, _ := newStore(t)

	for _, d := range []string{"2026-02-10", "2026-01-25", "2026-02-11", "2026-03-01"} {
		_, err := store.Add(RawTransaction{Date: date(t, d), Amount: "9.50"})
		require.NoError(t, err)
	}

	summary := store.MonthlySummary()

	require.Len(t, summary, 3)
	assert.Equal(t, "February 2026", summary[0].Label)
	assert.Equal(t, "January 2026", summary[1].Label)
	assert.Equal(t, "March 2026", summary[2].Label)
	assert.Equal(t, "1.00", summary[0].Total.StringFixed(2))
}

func Test_OnMonthlySummary_ShouldGroupByTransactionOwnMonth(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Add(RawTransaction{Date: date(t, "2025-12-31"), Amount: "0.50"})
	require.NoError(t, err)
	_, err = store.Add(RawTransaction{Date: date(t, "2026-01-01"), Amount: "0.50"})
	require.NoError(t, err)

	summary := store.MonthlySummary()

	require.Len(t, summary, 2)
	assert.Equal(t, "December 2025", summary[0].Label)
	assert.Equal(t, "January 2026", summary[1].Label)
}
