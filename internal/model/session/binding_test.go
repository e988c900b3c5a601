package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"max.ks1230/roundup-bot/internal/entity/policy"
	"max.ks1230/roundup-bot/internal/model/ledger"
	"max.ks1230/roundup-bot/internal/model/storage"
)

type testConfig struct{}

func (testConfig) SentinelUser() string { return "defaultUser" }
func (testConfig) DefaultMode() string  { return policy.Agorot }

func addExpense(t *testing.T, store *ledger.Store, amount string) {
	t.Helper()
	_, err := store.Add(ledger.RawTransaction{Date: time.Now(), Amount: amount})
	require.NoError(t, err)
}

func Test_OnNewBinding_WithNoActiveUser_ShouldBeUnbound(t *testing.T) {
	b := NewBinding(storage.NewInMemStorage(), testConfig{})

	name, bound := b.Active()
	assert.False(t, bound)
	assert.Equal(t, "defaultUser", name)

	_, ok := b.Ledger()
	assert.False(t, ok)
}

func Test_OnBind_ShouldLoadUserLedger(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})

	store, err := b.Bind("alice")
	require.NoError(t, err)
	assert.Equal(t, policy.Agorot, store.Mode())

	name, bound := b.Active()
	assert.True(t, bound)
	assert.Equal(t, "alice", name)

	active, err := mem.ActiveUser()
	require.NoError(t, err)
	assert.Equal(t, "alice", active)
}

func Test_OnUnbind_ShouldDropStateAndClearDurableKey(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})
	_, err := b.Bind("alice")
	require.NoError(t, err)

	require.NoError(t, b.Unbind())

	_, ok := b.Ledger()
	assert.False(t, ok)
	active, err := mem.ActiveUser()
	require.NoError(t, err)
	assert.Empty(t, active)
}

func Test_OnUserSwitch_ShouldIsolateLedgers(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})

	aliceStore, err := b.Bind("alice")
	require.NoError(t, err)
	addExpense(t, aliceStore, "17.20")
	require.NoError(t, aliceStore.SetMode(policy.Shekels))

	bobStore, err := b.Bind("bob")
	require.NoError(t, err)

	assert.Empty(t, bobStore.Transactions())
	assert.Equal(t, policy.Agorot, bobStore.Mode())

	rec, err := mem.GetUser("alice")
	require.NoError(t, err)
	assert.Len(t, rec.Transactions, 1)
	assert.Equal(t, policy.Shekels, rec.SavingMode(""))
}

func Test_OnResync_WhenActiveUserChangedExternally_ShouldReload(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})
	_, err := b.Bind("alice")
	require.NoError(t, err)

	// another process switches the durable active user
	require.NoError(t, mem.SetActiveUser("bob"))
	b.Resync()

	name, bound := b.Active()
	assert.True(t, bound)
	assert.Equal(t, "bob", name)
}

func Test_OnResync_WhenCleared_ShouldUnbind(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})
	_, err := b.Bind("alice")
	require.NoError(t, err)

	require.NoError(t, mem.SetActiveUser(""))
	b.Resync()

	_, bound := b.Active()
	assert.False(t, bound)
}

func Test_OnResync_WithSameUser_ShouldOnlyRefreshMode(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})
	store, err := b.Bind("alice")
	require.NoError(t, err)
	addExpense(t, store, "17.20")

	// a second process flips the persisted mode behind our back
	rec, err := mem.GetUser("alice")
	require.NoError(t, err)
	rec.SetSavingMode(policy.Shekels)
	require.NoError(t, mem.SaveUser("alice", rec))

	b.Resync()

	refreshed, ok := b.Ledger()
	require.True(t, ok)
	assert.Same(t, store, refreshed)
	assert.Equal(t, policy.Shekels, refreshed.Mode())
	assert.Len(t, refreshed.Transactions(), 1)
}

func Test_OnResync_ConcurrentWithAdd_ShouldKeepLedgerConsistent(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})
	store, err := b.Bind("alice")
	require.NoError(t, err)

	const adds = 50
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < adds; i++ {
			b.Resync()
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < adds; i++ {
			_, addErr := store.Add(ledger.RawTransaction{Date: time.Now(), Amount: "17.20"})
			assert.NoError(t, addErr)
		}
	}()
	wg.Wait()

	refreshed, ok := b.Ledger()
	require.True(t, ok)
	assert.Len(t, refreshed.Transactions(), adds)

	rec, err := mem.GetUser("alice")
	require.NoError(t, err)
	assert.Len(t, rec.Transactions, adds)
}

func Test_OnResync_Repeatedly_ShouldBeIdempotent(t *testing.T) {
	mem := storage.NewInMemStorage()
	b := NewBinding(mem, testConfig{})
	_, err := b.Bind("alice")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		b.Resync()
	}

	name, bound := b.Active()
	assert.True(t, bound)
	assert.Equal(t, "alice", name)
}
