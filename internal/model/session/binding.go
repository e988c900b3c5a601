package session

import (
	"sync"

	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/ledger"
)

type sessionStorage interface {
	GetUser(username string) (user.Record, error)
	SaveUser(username string, rec user.Record) error
	ActiveUser() (string, error)
	SetActiveUser(username string) error
}

type config interface {
	SentinelUser() string
	DefaultMode() string
}

// Binding tracks which user's ledger is active. It is either unbound (the
// sentinel user, no ledger operations allowed) or bound to one username with
// that user's Store loaded. Resync re-checks the durably stored active
// username, so a switch made by another process is picked up; running it
// repeatedly is safe.
type Binding struct {
	mu sync.Mutex

	storage     sessionStorage
	sentinel    string
	defaultMode string

	username string
	store    *ledger.Store
}

func NewBinding(storage sessionStorage, config config) *Binding {
	b := &Binding{
		storage:     storage,
		sentinel:    config.SentinelUser(),
		defaultMode: config.DefaultMode(),
	}
	b.Resync()
	return b
}

// Bind makes username the active user, durably and in memory. The previous
// user's state is already persisted, so it is simply dropped.
func (b *Binding) Bind(username string) (*ledger.Store, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.storage.SetActiveUser(username); err != nil {
		return nil, err
	}
	b.load(username)
	return b.store, nil
}

// Unbind clears the active-user binding. In-memory ledger state is dropped;
// the persisted data stays untouched.
func (b *Binding) Unbind() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.storage.SetActiveUser(""); err != nil {
		return err
	}
	b.username = ""
	b.store = nil
	return nil
}

// Resync re-reads the durably stored active username and reconciles:
// a different user triggers a full reload, the same user only re-reads the
// saving mode, an empty value unbinds. Idempotent under redundant calls.
func (b *Binding) Resync() {
	b.mu.Lock()
	defer b.mu.Unlock()

	stored, err := b.storage.ActiveUser()
	if err != nil {
		logger.Warn("cannot read active user, keeping current binding", zap.Error(err))
		return
	}

	switch {
	case stored == "":
		if b.store != nil {
			logger.Info("active user cleared externally, unbinding")
		}
		b.username = ""
		b.store = nil
	case stored == b.username:
		b.store.ReloadMode()
	default:
		logger.Info("active user changed externally",
			zap.String("from", b.displayName()), zap.String("to", stored))
		b.load(stored)
	}
}

// Active returns the bound username, or the sentinel and false when unbound.
func (b *Binding) Active() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store == nil {
		return b.sentinel, false
	}
	return b.username, true
}

// Ledger returns the active user's store, or false when unbound.
func (b *Binding) Ledger() (*ledger.Store, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.store == nil {
		return nil, false
	}
	return b.store, true
}

func (b *Binding) load(username string) {
	b.username = username
	b.store = ledger.Load(b.storage, username, b.defaultMode)
}

func (b *Binding) displayName() string {
	if b.store == nil {
		return b.sentinel
	}
	return b.username
}
