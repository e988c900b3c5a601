package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	// postgres driver
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"max.ks1230/roundup-bot/internal/entity/user"
)

const dsnTemplate = "user=%s password=%s host=%s port=%s dbname=%s sslmode=disable"

const queryTimeout = 5 * time.Second

const activeUserRow = "active_user"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type pgConfig interface {
	Host() string
	Port() string
	Username() string
	Password() string
	Database() string
}

// PostgresStorage keeps the same per-user data as FileStorage, relationally:
// users, transactions, goals, and a single-row session table for the active
// username. SaveUser rewrites the user's rows as a whole, mirroring the
// load-modify-store discipline of the other backends.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config pgConfig) (*PostgresStorage, error) {
	db, err := sql.Open("postgres", fmt.Sprintf(dsnTemplate,
		config.Username(),
		config.Password(),
		config.Host(),
		config.Port(),
		config.Database()))
	if err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	if err = db.Ping(); err != nil {
		return nil, errors.Wrap(err, "cannot connect to database")
	}
	return &PostgresStorage{db}, nil
}

func (s *PostgresStorage) GetUser(username string) (user.Record, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var res user.Record

	query := psql.Select("saving_mode", "plan").
		From("users").
		Where(sq.Eq{"username": username})

	var mode, plan string
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&mode, &plan)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// unknown user is the valid defaults state
	case err != nil:
		return user.Record{}, errors.Wrap(err, "get user")
	default:
		res.SetSavingMode(mode)
		res.SetPlan(plan)
	}

	res.Transactions, err = s.getTransactions(ctx, username)
	if err != nil {
		return user.Record{}, err
	}
	res.Goals, err = s.getGoals(ctx, username)
	if err != nil {
		return user.Record{}, err
	}
	return res, nil
}

func (s *PostgresStorage) getTransactions(ctx context.Context, username string) ([]user.Transaction, error) {
	query := psql.Select("tx_id", "tx_date", "description", "category",
		"original_amount", "saving_type", "invest_portion", "total_after_invest",
		"amount", "tx_type").
		From("transactions").
		Where(sq.Eq{"username": username}).
		OrderBy("pos")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get transactions")
	}
	defer rows.Close()

	txs := make([]user.Transaction, 0)
	for rows.Next() {
		var t user.Transaction
		err = rows.Scan(&t.ID, &t.Date, &t.Description, &t.Category,
			&t.OriginalAmount, &t.SavingType, &t.InvestPortion, &t.TotalAfterInvest,
			&t.Amount, &t.Type)
		if err != nil {
			return nil, errors.Wrap(err, "get transactions")
		}
		txs = append(txs, t)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get transactions")
	}
	return txs, nil
}

func (s *PostgresStorage) getGoals(ctx context.Context, username string) ([]user.Goal, error) {
	query := psql.Select("goal_id", "name", "target", "current", "monthly_deposit",
		"auto_day", "created_at").
		From("goals").
		Where(sq.Eq{"username": username}).
		OrderBy("pos")

	rows, err := query.RunWith(s.db).QueryContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "get goals")
	}
	defer rows.Close()

	goals := make([]user.Goal, 0)
	for rows.Next() {
		var g user.Goal
		err = rows.Scan(&g.ID, &g.Name, &g.Target, &g.Current, &g.MonthlyDeposit,
			&g.AutoDay, &g.Created)
		if err != nil {
			return nil, errors.Wrap(err, "get goals")
		}
		goals = append(goals, g)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "get goals")
	}
	return goals, nil
}

func (s *PostgresStorage) SaveUser(username string, rec user.Record) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "save user")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	upsert := psql.Insert("users").
		Columns("username", "saving_mode", "plan", "updated_at").
		Values(username, rec.SavingMode(""), rec.Plan(""), time.Now()).
		Suffix("ON CONFLICT(username) DO UPDATE SET saving_mode = ?, plan = ?, updated_at = ?",
			rec.SavingMode(""), rec.Plan(""), time.Now())
	if _, err = upsert.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "save user")
	}

	if err = s.rewriteTransactions(ctx, tx, username, rec.Transactions); err != nil {
		return err
	}
	if err = s.rewriteGoals(ctx, tx, username, rec.Goals); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "save user")
}

func (s *PostgresStorage) rewriteTransactions(ctx context.Context, tx *sql.Tx, username string, txs []user.Transaction) error {
	del := psql.Delete("transactions").Where(sq.Eq{"username": username})
	if _, err := del.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "save transactions")
	}
	if len(txs) == 0 {
		return nil
	}

	ins := psql.Insert("transactions").
		Columns("username", "pos", "tx_id", "tx_date", "description", "category",
			"original_amount", "saving_type", "invest_portion", "total_after_invest",
			"amount", "tx_type")
	for pos, t := range txs {
		ins = ins.Values(username, pos, t.ID, t.Date, t.Description, t.Category,
			t.OriginalAmount, t.SavingType, t.InvestPortion, t.TotalAfterInvest,
			t.Amount, t.Type)
	}
	_, err := ins.RunWith(tx).ExecContext(ctx)
	return errors.Wrap(err, "save transactions")
}

func (s *PostgresStorage) rewriteGoals(ctx context.Context, tx *sql.Tx, username string, goals []user.Goal) error {
	del := psql.Delete("goals").Where(sq.Eq{"username": username})
	if _, err := del.RunWith(tx).ExecContext(ctx); err != nil {
		return errors.Wrap(err, "save goals")
	}
	if len(goals) == 0 {
		return nil
	}

	ins := psql.Insert("goals").
		Columns("username", "pos", "goal_id", "name", "target", "current",
			"monthly_deposit", "auto_day", "created_at")
	for pos, g := range goals {
		ins = ins.Values(username, pos, g.ID, g.Name, g.Target, g.Current,
			g.MonthlyDeposit, g.AutoDay, g.Created)
	}
	_, err := ins.RunWith(tx).ExecContext(ctx)
	return errors.Wrap(err, "save goals")
}

func (s *PostgresStorage) ActiveUser() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	query := psql.Select("username").
		From("session").
		Where(sq.Eq{"key": activeUserRow})

	var username string
	err := query.RunWith(s.db).QueryRowContext(ctx).Scan(&username)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrap(err, "get active user")
	}
	return username, nil
}

func (s *PostgresStorage) SetActiveUser(username string) error {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	if username == "" {
		del := psql.Delete("session").Where(sq.Eq{"key": activeUserRow})
		_, err := del.RunWith(s.db).ExecContext(ctx)
		return errors.Wrap(err, "clear active user")
	}

	query := psql.Insert("session").
		Columns("key", "username").
		Values(activeUserRow, username).
		Suffix("ON CONFLICT(key) DO UPDATE SET username = ?", username)
	_, err := query.RunWith(s.db).ExecContext(ctx)
	return errors.Wrap(err, "set active user")
}
