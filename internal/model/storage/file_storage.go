package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/customerr"
)

// File layout, one file per logical key:
//
//	transactions_<user>.json  ordered JSON array of transactions
//	savingtype_<user>         plain mode string
//	plan_<user>               plain plan string
//	goals_<user>.json         JSON array of goals
//	user                      the active username, unscoped
//
// A missing file is the valid "use defaults" state. An unreadable file is
// logged and treated the same way, never surfaced as a fatal error.
const (
	transactionsPrefix = "transactions_"
	savingTypePrefix   = "savingtype_"
	planPrefix         = "plan_"
	goalsPrefix        = "goals_"
	activeUserKey      = "user"

	fileMode = 0o600
	dirMode  = 0o750
)

type config interface {
	Dir() string
}

type FileStorage struct {
	dir string
}

func NewFileStorage(config config) (*FileStorage, error) {
	if err := os.MkdirAll(config.Dir(), dirMode); err != nil {
		return nil, errors.Wrap(err, "cannot create storage dir")
	}
	return &FileStorage{dir: config.Dir()}, nil
}

func (s *FileStorage) GetUser(username string) (user.Record, error) {
	var rec user.Record

	rec.Transactions = s.readTransactions(username)
	rec.Goals = s.readGoals(username)

	if mode := s.readString(savingTypePrefix + sanitize(username)); mode != "" {
		rec.SetSavingMode(mode)
	}
	if plan := s.readString(planPrefix + sanitize(username)); plan != "" {
		rec.SetPlan(plan)
	}
	return rec, nil
}

func (s *FileStorage) SaveUser(username string, rec user.Record) error {
	key := sanitize(username)

	if err := s.writeJSON(transactionsPrefix+key+".json", rec.Transactions); err != nil {
		return err
	}
	if err := s.writeJSON(goalsPrefix+key+".json", rec.Goals); err != nil {
		return err
	}
	if err := s.writeString(savingTypePrefix+key, rec.SavingMode("")); err != nil {
		return err
	}
	return s.writeString(planPrefix+key, rec.Plan(""))
}

func (s *FileStorage) ActiveUser() (string, error) {
	return s.readString(activeUserKey), nil
}

func (s *FileStorage) SetActiveUser(username string) error {
	if username == "" {
		err := os.Remove(filepath.Join(s.dir, activeUserKey))
		if err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, "clear active user")
		}
		return nil
	}
	return s.writeString(activeUserKey, username)
}

func (s *FileStorage) readTransactions(username string) []user.Transaction {
	key := transactionsPrefix + sanitize(username) + ".json"
	txs := make([]user.Transaction, 0)
	s.readJSON(key, &txs)
	return txs
}

func (s *FileStorage) readGoals(username string) []user.Goal {
	key := goalsPrefix + sanitize(username) + ".json"
	goals := make([]user.Goal, 0)
	s.readJSON(key, &goals)
	return goals
}

// readJSON fills out from the named file. Corrupt content is recovered as
// absent data: out keeps its zero value and the failure is only logged.
func (s *FileStorage) readJSON(key string, out interface{}) {
	raw, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("storage read failed",
				zap.Error(&customerr.StorageReadError{Key: key, Err: err}))
		}
		return
	}
	if err = json.Unmarshal(raw, out); err != nil {
		logger.Warn("corrupt storage entry, using defaults",
			zap.Error(&customerr.StorageReadError{Key: key, Err: err}))
	}
}

func (s *FileStorage) readString(key string) string {
	raw, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("storage read failed",
				zap.Error(&customerr.StorageReadError{Key: key, Err: err}))
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (s *FileStorage) writeJSON(key string, val interface{}) error {
	raw, err := json.Marshal(val)
	if err != nil {
		return errors.Wrap(err, "marshal "+key)
	}
	return errors.Wrap(os.WriteFile(filepath.Join(s.dir, key), raw, fileMode), "write "+key)
}

func (s *FileStorage) writeString(key, val string) error {
	return errors.Wrap(os.WriteFile(filepath.Join(s.dir, key), []byte(val), fileMode), "write "+key)
}

// sanitize keeps usernames safe to embed in file names.
func sanitize(username string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_':
			return r
		}
		return '_'
	}, username)
}
