package ledger

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/entity/policy"
	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/customerr"
)

const expenseType = "expense"

type userStorage interface {
	GetUser(username string) (user.Record, error)
	SaveUser(username string, rec user.Record) error
}

// RawTransaction is what external collaborators submit: free-form fields plus
// an amount string that still has to survive a fallible decimal parse.
type RawTransaction struct {
	Date        time.Time
	Description string
	Category    string
	Amount      string
}

// GoalDraft is the raw form of a saving goal before amounts are parsed.
type GoalDraft struct {
	Name           string
	Target         string
	MonthlyDeposit string
	AutoDay        int
}

// Store owns one user's ordered transaction sequence, goals, and saving mode.
// Every mutation persists before returning; a failed write leaves the
// in-memory state authoritative and comes back as a StorageWriteError.
// Safe for concurrent use: the re-sync watcher reloads the mode while
// handlers mutate the ledger.
type Store struct {
	mu sync.Mutex

	storage     userStorage
	username    string
	rec         user.Record
	defaultMode string
	lastID      int64
}

// Load reads the persisted record for username. Missing or unreadable data
// yields an empty ledger with the default mode, never an error.
func Load(storage userStorage, username, defaultMode string) *Store {
	rec, err := storage.GetUser(username)
	if err != nil {
		logger.Warn("cannot load user record, starting empty",
			zap.String("user", username), zap.Error(err))
		rec = user.Record{}
	}
	if _, err = policy.ParseMode(rec.SavingMode(defaultMode)); err != nil {
		logger.Warn("persisted saving mode is unknown, using default",
			zap.String("user", username), zap.String("mode", rec.SavingMode("")))
		rec.SetSavingMode(defaultMode)
	}

	s := &Store{
		storage:     storage,
		username:    username,
		rec:         rec,
		defaultMode: defaultMode,
	}
	for _, t := range rec.Transactions {
		if t.ID > s.lastID {
			s.lastID = t.ID
		}
	}
	for _, g := range rec.Goals {
		if g.ID > s.lastID {
			s.lastID = g.ID
		}
	}
	return s
}

func (s *Store) Username() string {
	return s.username
}

// Mode returns the current saving mode, not the mode of any stored entry.
func (s *Store) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mode()
}

func (s *Store) mode() string {
	return s.rec.SavingMode(s.defaultMode)
}

// SetMode switches the current saving mode. Existing transactions keep their
// frozen SavingType.
func (s *Store) SetMode(mode string) error {
	parsed, err := policy.ParseMode(mode)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.SetSavingMode(parsed)
	return s.persist()
}

// ReloadMode re-reads only the persisted mode. Used on re-sync to the same
// user, to pick up a change made by another process.
func (s *Store) ReloadMode() {
	rec, err := s.storage.GetUser(s.username)
	if err != nil {
		logger.Warn("cannot reload saving mode", zap.Error(err))
		return
	}
	mode := rec.SavingMode(s.defaultMode)
	if _, err = policy.ParseMode(mode); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.rec.SetSavingMode(mode)
}

// Add derives a transaction from raw input using the current mode, appends
// it and persists. The derived fields satisfy
// amount == -round2(original+invest) and are never recomputed afterwards.
func (s *Store) Add(raw RawTransaction) (user.Transaction, error) {
	amount, err := policy.ParseAmount(raw.Amount)
	if err != nil {
		return user.Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	mode := s.mode()
	invest, err := policy.ComputeInvestPortion(amount, mode)
	if err != nil {
		return user.Transaction{}, err
	}
	total := policy.Round2(amount.Add(invest))

	tx := user.Transaction{
		ID:               s.nextID(),
		Date:             raw.Date,
		Description:      raw.Description,
		Category:         raw.Category,
		OriginalAmount:   amount,
		SavingType:       mode,
		InvestPortion:    invest,
		TotalAfterInvest: total,
		Amount:           total.Neg(),
		Type:             expenseType,
	}

	s.rec.Transactions = append(s.rec.Transactions, tx)
	return tx, s.persist()
}

// Remove deletes the transaction with the given id. An absent id is a no-op,
// not an error. Order of the remainder is preserved.
func (s *Store) Remove(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Fresh slice: the previously saved record may still alias the old array.
	kept := make([]user.Transaction, 0, len(s.rec.Transactions))
	for _, t := range s.rec.Transactions {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.rec.Transactions = kept
	return s.persist()
}

// Transactions returns the ordered sequence for display.
func (s *Store) Transactions() []user.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]user.Transaction, len(s.rec.Transactions))
	copy(res, s.rec.Transactions)
	return res
}

// MonthlySummary derives the invested-per-month aggregate from the current
// sequence.
func (s *Store) MonthlySummary() []MonthTotal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return MonthlySummaryOf(s.rec.Transactions)
}

// AddGoal parses and appends a saving goal.
func (s *Store) AddGoal(draft GoalDraft) (user.Goal, error) {
	target, err := policy.ParseAmount(draft.Target)
	if err != nil {
		return user.Goal{}, err
	}
	monthly, err := policy.ParseAmount(draft.MonthlyDeposit)
	if err != nil {
		return user.Goal{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	goal := user.Goal{
		ID:             s.nextID(),
		Name:           draft.Name,
		Target:         target,
		MonthlyDeposit: monthly,
		AutoDay:        draft.AutoDay,
		Created:        time.Now(),
	}
	s.rec.Goals = append(s.rec.Goals, goal)
	return goal, s.persist()
}

func (s *Store) Goals() []user.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := make([]user.Goal, len(s.rec.Goals))
	copy(res, s.rec.Goals)
	return res
}

func (s *Store) RemoveGoal(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]user.Goal, 0, len(s.rec.Goals))
	for _, g := range s.rec.Goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	s.rec.Goals = kept
	return s.persist()
}

func (s *Store) Plan() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.rec.Plan("")
}

func (s *Store) SetPlan(plan string) error {
	for _, p := range user.Plans {
		if p == plan {
			s.mu.Lock()
			defer s.mu.Unlock()

			s.rec.SetPlan(plan)
			return s.persist()
		}
	}
	return fmt.Errorf("unknown plan %q", plan)
}

// nextID issues ids that increase monotonically even when two entries are
// created within the same millisecond.
func (s *Store) nextID() int64 {
	id := time.Now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

func (s *Store) persist() error {
	if err := s.storage.SaveUser(s.username, s.rec); err != nil {
		return &customerr.StorageWriteError{Key: s.username, Err: err}
	}
	return nil
}
