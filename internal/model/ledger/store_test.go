package ledger

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/roundup-bot/internal/entity/policy"
	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/model/customerr"
	"max.ks1230/roundup-bot/internal/model/storage"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func newStore(t *testing.T) (*Store, *storage.InMemStorage) {
	t.Helper()
	mem := storage.NewInMemStorage()
	return Load(mem, "alice", policy.Agorot), mem
}

func Test_OnAdd_ShouldDeriveRoundUpFields(t *testing.T) {
	store, _ := newStore(t)

	tx, err := store.Add(RawTransaction{
		Date:        date(t, "2026-01-15"),
		Description: "Groceries",
		Category:    "Food",
		Amount:      "17.20",
	})
	require.NoError(t, err)

	assert.Equal(t, "17.20", tx.OriginalAmount.StringFixed(2))
	assert.Equal(t, "0.80", tx.InvestPortion.StringFixed(2))
	assert.Equal(t, "18.00", tx.TotalAfterInvest.StringFixed(2))
	assert.Equal(t, "-18.00", tx.Amount.StringFixed(2))
	assert.Equal(t, policy.Agorot, tx.SavingType)
	assert.Equal(t, "expense", tx.Type)
}

func Test_OnAdd_InShekelsMode_ShouldRoundUpToTens(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.SetMode(policy.Shekels))

	tx, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "17.20"})
	require.NoError(t, err)

	assert.Equal(t, "2.80", tx.InvestPortion.StringFixed(2))
	assert.Equal(t, "20.00", tx.TotalAfterInvest.StringFixed(2))
	assert.Equal(t, "-20.00", tx.Amount.StringFixed(2))

	tx, err = store.Add(RawTransaction{Date: date(t, "2026-01-16"), Amount: "20.00"})
	require.NoError(t, err)

	assert.Equal(t, "0.00", tx.InvestPortion.StringFixed(2))
	assert.Equal(t, "20.00", tx.TotalAfterInvest.StringFixed(2))
}

func Test_OnAdd_WithBadAmount_ShouldRejectAndKeepLedger(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "5.00"})
	require.NoError(t, err)

	for _, raw := range []string{"", "abc", "-3"} {
		_, err = store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: raw})
		var invalidAmount *customerr.InvalidAmountError
		assert.ErrorAs(t, err, &invalidAmount)
	}

	assert.Len(t, store.Transactions(), 1)
}

func Test_OnAddThenRemove_ShouldRestorePriorSequence(t *testing.T) {
	store, _ := newStore(t)

	_, err := store.Add(RawTransaction{Date: date(t, "2026-01-10"), Description: "a", Amount: "1.50"})
	require.NoError(t, err)
	_, err = store.Add(RawTransaction{Date: date(t, "2026-01-11"), Description: "b", Amount: "2.50"})
	require.NoError(t, err)
	before := store.Transactions()

	added, err := store.Add(RawTransaction{Date: date(t, "2026-01-12"), Description: "c", Amount: "3.50"})
	require.NoError(t, err)
	require.NoError(t, store.Remove(added.ID))

	assert.Equal(t, before, store.Transactions())
}

func Test_OnRemove_ShouldNotMutateEarlierSavedRecord(t *testing.T) {
	store, mem := newStore(t)
	first, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "17.20"})
	require.NoError(t, err)
	_, err = store.Add(RawTransaction{Date: date(t, "2026-01-16"), Amount: "5.50"})
	require.NoError(t, err)

	// snapshot of the saved record, aliasing the stored slice
	before, err := mem.GetUser("alice")
	require.NoError(t, err)
	require.Len(t, before.Transactions, 2)

	require.NoError(t, store.Remove(first.ID))

	assert.Equal(t, first.ID, before.Transactions[0].ID)
	assert.Equal(t, "17.20", before.Transactions[0].OriginalAmount.StringFixed(2))
}

func Test_OnRemove_WithAbsentID_ShouldBeNoOp(t *testing.T) {
	store, _ := newStore(t)
	_, err := store.Add(RawTransaction{Date: date(t, "2026-01-10"), Amount: "1.50"})
	require.NoError(t, err)

	require.NoError(t, store.Remove(42))

	assert.Len(t, store.Transactions(), 1)
}

func Test_OnSetMode_ShouldNotTouchFrozenEntries(t *testing.T) {
	store, _ := newStore(t)

	tx, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "17.20"})
	require.NoError(t, err)

	require.NoError(t, store.SetMode(policy.Shekels))
	assert.Equal(t, policy.Shekels, store.Mode())

	got := store.Transactions()[0]
	assert.Equal(t, policy.Agorot, got.SavingType)
	assert.True(t, got.InvestPortion.Equal(tx.InvestPortion))
	assert.True(t, got.TotalAfterInvest.Equal(tx.TotalAfterInvest))
}

func Test_OnSetMode_WithUnknownMode_ShouldFail(t *testing.T) {
	store, _ := newStore(t)

	err := store.SetMode("euros")

	var invalidMode *customerr.InvalidModeError
	assert.ErrorAs(t, err, &invalidMode)
	assert.Equal(t, policy.Agorot, store.Mode())
}

func Test_OnReload_ShouldReproduceSequence(t *testing.T) {
	store, mem := newStore(t)

	_, err := store.Add(RawTransaction{Date: date(t, "2026-01-10"), Description: "a", Amount: "1.50"})
	require.NoError(t, err)
	_, err = store.Add(RawTransaction{Date: date(t, "2026-02-11"), Description: "b", Amount: "2.50"})
	require.NoError(t, err)
	require.NoError(t, store.SetMode(policy.Shekels))

	reloaded := Load(mem, "alice", policy.Agorot)

	assert.Equal(t, store.Transactions(), reloaded.Transactions())
	assert.Equal(t, policy.Shekels, reloaded.Mode())
}

func Test_OnAdd_ShouldIssueIncreasingIDs(t *testing.T) {
	store, _ := newStore(t)

	var last int64
	for i := 0; i < 5; i++ {
		tx, err := store.Add(RawTransaction{Date: date(t, "2026-01-10"), Amount: "1.10"})
		require.NoError(t, err)
		assert.Greater(t, tx.ID, last)
		last = tx.ID
	}
}

type failingStorage struct {
	rec user.Record
}

func (s *failingStorage) GetUser(string) (user.Record, error) {
	return s.rec, nil
}

func (s *failingStorage) SaveUser(string, user.Record) error {
	return errors.New("disk is gone")
}

func Test_OnAdd_WhenWriteFails_ShouldKeepMemoryState(t *testing.T) {
	store := Load(&failingStorage{}, "alice", policy.Agorot)

	tx, err := store.Add(RawTransaction{Date: date(t, "2026-01-15"), Amount: "17.20"})

	var writeErr *customerr.StorageWriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "0.80", tx.InvestPortion.StringFixed(2))
	require.Len(t, store.Transactions(), 1)
	assert.Equal(t, tx, store.Transactions()[0])
}

func Test_OnLoad_WithCorruptMode_ShouldFallBackToDefault(t *testing.T) {
	var rec user.Record
	rec.SetSavingMode("garbage")
	store := Load(&failingStorage{rec: rec}, "alice", policy.Agorot)

	assert.Equal(t, policy.Agorot, store.Mode())
}
