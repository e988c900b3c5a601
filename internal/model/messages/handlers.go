package messages

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/customerr"
	"max.ks1230/roundup-bot/internal/model/ledger"
	"max.ks1230/roundup-bot/internal/model/reports"
	"max.ks1230/roundup-bot/internal/model/session"
)

const (
	dontUnderstandMessage = "I don't understand you :("
	helloMessage          = "Hello! I am RoundUp bot 🤖\nLog your expenses and I round them up into savings"
	loveToTalkMessage     = "I would love to talk about it more!"
	okMessage             = "Gotcha!"
	notLoggedInMessage    = "You are not logged in. Use /login <name>"
	loggedOutMessage      = "Logged out. See you!"
	noExpensesMessage     = "You have no expenses yet"
	noGoalsMessage        = "You have no saving goals yet"
	summaryPendingMessage = "Computing your summary, it will arrive in a moment..."

	incorrectUsageMessage   = "That is an incorrect command usage"
	incorrectExpenseMessage = "Your expense amount is incorrect"
	incorrectDateMessage    = "The date is incorrect. Should be dd.mm.yyyy"
	incorrectModeMessage    = "Unknown saving mode. Use agorot or shekels"
	incorrectPlanMessage    = "Unknown plan. Use solid, sticks or estate"
	notPersistedWarning     = "\n⚠ I could not persist it, a restart may lose this change"
	cannotRequestSummaryMsg = "Can't request your summary atm. Try later"
)

const (
	startCommand   = "/start"
	loginCommand   = "/login"
	logoutCommand  = "/logout"
	expenseCommand = "/expense"
	deleteCommand  = "/delete"
	listCommand    = "/list"
	summaryCommand = "/summary"
	modeCommand    = "/mode"
	goalCommand    = "/goal"
	planCommand    = "/plan"
)

type SummaryProducer interface {
	ProduceSummaryRequest(req reports.SummaryRequest) error
}

type SummaryCache interface {
	GetSummary(username string) (string, error)
	CacheSummary(username, summary string) error
	InvalidateSummary(username string) error
}

type config interface {
	AsyncSummary() bool
}

type handler func(arg string, chatID int64) (string, error)

type handlerMap map[string]handler

// HandlerService routes bot commands onto the active user's ledger. producer
// and cache may be nil when Kafka or memcached are disabled; the summary then
// falls back to in-process computation.
type HandlerService struct {
	handlersMap  handlerMap
	binding      *session.Binding
	producer     SummaryProducer
	cache        SummaryCache
	asyncSummary bool
}

func newHandler(binding *session.Binding, producer SummaryProducer, cache SummaryCache, config config) *HandlerService {
	res := &HandlerService{
		handlersMap:  nil,
		binding:      binding,
		producer:     producer,
		cache:        cache,
		asyncSummary: config.AsyncSummary(),
	}
	res.handlersMap = newMap(res)
	return res
}

func (s *HandlerService) HandleMessage(_ context.Context, text string, chatID int64) (string, error) {
	cmd, arg := parseCommand(text)

	handler, ok := s.handlersMap[cmd]
	if ok {
		return handler(arg, chatID)
	}
	return dontUnderstandMessage, nil
}

func newMap(s *HandlerService) handlerMap {
	m := make(handlerMap)
	m[startCommand] = s.handleStart
	m[loginCommand] = s.handleLogin
	m[logoutCommand] = s.handleLogout
	m[expenseCommand] = s.handleExpense
	m[deleteCommand] = s.handleDelete
	m[listCommand] = s.handleList
	m[summaryCommand] = s.handleSummary
	m[modeCommand] = s.handleMode
	m[goalCommand] = s.handleGoal
	m[planCommand] = s.handlePlan

	m[""] = s.handleNoCommand

	return m
}

func (s *HandlerService) handleStart(_ string, _ int64) (string, error) {
	return helloMessage, nil
}

func (s *HandlerService) handleNoCommand(_ string, _ int64) (string, error) {
	return loveToTalkMessage, nil
}

func (s *HandlerService) handleLogin(arg string, _ int64) (string, error) {
	username := strings.TrimSpace(arg)
	if username == "" || len(strings.Fields(username)) > 1 {
		return incorrectUsageMessage, nil
	}

	store, err := s.binding.Bind(username)
	if err != nil {
		return "Can't log you in atm. Try later", errors.Wrap(err, "handle login")
	}
	return fmt.Sprintf("Hello, %s! Saving mode: %s", username, store.Mode()), nil
}

func (s *HandlerService) handleLogout(_ string, _ int64) (string, error) {
	if err := s.binding.Unbind(); err != nil {
		return "Can't log you out atm. Try later", errors.Wrap(err, "handle logout")
	}
	return loggedOutMessage, nil
}

// /expense <description>;<category>;<amount>[;dd.mm.yyyy]
func (s *HandlerService) handleExpense(arg string, _ int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	fields := splitFields(arg)
	if len(fields) < 3 {
		return incorrectUsageMessage, nil
	}

	raw := ledger.RawTransaction{
		Description: fields[0],
		Category:    fields[1],
		Amount:      fields[2],
	}
	raw.Date = nowInLocation()
	if len(fields) > 3 {
		date, err := parseDate(fields[3])
		if err != nil {
			return incorrectDateMessage, errors.Wrap(err, "handle expense")
		}
		raw.Date = date
	}

	tx, err := store.Add(raw)
	if err != nil {
		return s.replyForAdd(store, tx, err)
	}
	s.invalidateSummary(store.Username())
	return fmt.Sprintf("%s Invested %s ₪, charged %s ₪",
		okMessage, tx.InvestPortion.StringFixed(2), tx.TotalAfterInvest.StringFixed(2)), nil
}

// replyForAdd sorts the possible Add failures: bad input rejects the entry,
// a failed write keeps it in memory and only warns.
func (s *HandlerService) replyForAdd(store *ledger.Store, tx user.Transaction, err error) (string, error) {
	var invalidAmount *customerr.InvalidAmountError
	if errors.As(err, &invalidAmount) {
		return incorrectExpenseMessage, errors.Wrap(err, "handle expense")
	}
	var invalidMode *customerr.InvalidModeError
	if errors.As(err, &invalidMode) {
		return incorrectModeMessage, errors.Wrap(err, "handle expense")
	}
	var writeErr *customerr.StorageWriteError
	if errors.As(err, &writeErr) {
		logger.Warn("expense kept in memory only", zap.Error(err))
		s.invalidateSummary(store.Username())
		return fmt.Sprintf("%s Invested %s ₪, charged %s ₪%s",
			okMessage, tx.InvestPortion.StringFixed(2), tx.TotalAfterInvest.StringFixed(2),
			notPersistedWarning), nil
	}
	return "Can't save your expense atm. Try later", errors.Wrap(err, "handle expense")
}

func (s *HandlerService) handleDelete(arg string, _ int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return incorrectUsageMessage, nil
	}

	if err = store.Remove(id); err != nil {
		logger.Warn("removal kept in memory only", zap.Error(err))
		s.invalidateSummary(store.Username())
		return okMessage + notPersistedWarning, nil
	}
	s.invalidateSummary(store.Username())
	return okMessage, nil
}

func (s *HandlerService) handleList(_ string, _ int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	txs := store.Transactions()
	if len(txs) == 0 {
		return noExpensesMessage, nil
	}
	return formatTransactions(txs), nil
}

func (s *HandlerService) handleSummary(_ string, chatID int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	if s.cache != nil {
		if summary, err := s.cache.GetSummary(store.Username()); err == nil {
			return summary, nil
		}
	}

	if s.asyncSummary && s.producer != nil {
		err := s.producer.ProduceSummaryRequest(reports.SummaryRequest{
			Username: store.Username(),
			ChatID:   chatID,
		})
		if err != nil {
			return cannotRequestSummaryMsg, errors.Wrap(err, "handle summary")
		}
		return summaryPendingMessage, nil
	}

	summary := reports.FormatSummary(store.MonthlySummary())
	if s.cache != nil {
		if err := s.cache.CacheSummary(store.Username(), summary); err != nil {
			logger.Warn("failed to cache summary", zap.Error(err))
		}
	}
	return summary, nil
}

func (s *HandlerService) handleMode(arg string, _ int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	arg = strings.TrimSpace(arg)
	if arg == "" {
		return fmt.Sprintf("Current saving mode: %s", store.Mode()), nil
	}

	if err := store.SetMode(arg); err != nil {
		var invalidMode *customerr.InvalidModeError
		if errors.As(err, &invalidMode) {
			return incorrectModeMessage, nil
		}
		var writeErr *customerr.StorageWriteError
		if errors.As(err, &writeErr) {
			logger.Warn("mode change kept in memory only", zap.Error(err))
			return fmt.Sprintf("Saving mode is now %s%s", store.Mode(), notPersistedWarning), nil
		}
		return "Can't change the mode atm. Try later", errors.Wrap(err, "handle mode")
	}
	return fmt.Sprintf("Saving mode is now %s", store.Mode()), nil
}

// /goal add <name>;<target>;<monthly>[;day] | /goal list | /goal delete <id>
func (s *HandlerService) handleGoal(arg string, _ int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	parts := strings.SplitN(strings.TrimSpace(arg), " ", commandParts)
	sub, rest := parts[0], ""
	if len(parts) == commandParts {
		rest = parts[1]
	}

	switch sub {
	case "add":
		return s.addGoal(store, rest)
	case "list", "":
		goals := store.Goals()
		if len(goals) == 0 {
			return noGoalsMessage, nil
		}
		return formatGoals(goals), nil
	case "delete":
		id, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
		if err != nil {
			return incorrectUsageMessage, nil
		}
		if err = store.RemoveGoal(id); err != nil {
			logger.Warn("goal removal kept in memory only", zap.Error(err))
			return okMessage + notPersistedWarning, nil
		}
		return okMessage, nil
	}
	return incorrectUsageMessage, nil
}

func (s *HandlerService) addGoal(store *ledger.Store, arg string) (string, error) {
	fields := splitFields(arg)
	if len(fields) < 3 {
		return incorrectUsageMessage, nil
	}

	draft := ledger.GoalDraft{
		Name:           fields[0],
		Target:         fields[1],
		MonthlyDeposit: fields[2],
	}
	if len(fields) > 3 {
		day, err := strconv.Atoi(fields[3])
		if err != nil || day < 1 || day > 28 {
			return incorrectUsageMessage, nil
		}
		draft.AutoDay = day
	}

	goal, err := store.AddGoal(draft)
	if err != nil {
		var invalidAmount *customerr.InvalidAmountError
		if errors.As(err, &invalidAmount) {
			return "Goal amounts are incorrect", errors.Wrap(err, "handle goal")
		}
		var writeErr *customerr.StorageWriteError
		if errors.As(err, &writeErr) {
			logger.Warn("goal kept in memory only", zap.Error(err))
			return formatGoal(goal) + notPersistedWarning, nil
		}
		return "Can't save your goal atm. Try later", errors.Wrap(err, "handle goal")
	}
	return formatGoal(goal), nil
}

func (s *HandlerService) handlePlan(arg string, _ int64) (string, error) {
	store, ok := s.binding.Ledger()
	if !ok {
		return notLoggedInMessage, nil
	}

	arg = strings.TrimSpace(arg)
	if arg == "" {
		if store.Plan() == "" {
			return "You have not picked a plan yet. Options: " + strings.Join(user.Plans, ", "), nil
		}
		return fmt.Sprintf("Current plan: %s", store.Plan()), nil
	}

	if err := store.SetPlan(arg); err != nil {
		var writeErr *customerr.StorageWriteError
		if errors.As(err, &writeErr) {
			logger.Warn("plan kept in memory only", zap.Error(err))
			return fmt.Sprintf("Plan is now %s%s", arg, notPersistedWarning), nil
		}
		return incorrectPlanMessage, nil
	}
	return fmt.Sprintf("Plan is now %s", store.Plan()), nil
}

func (s *HandlerService) invalidateSummary(username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSummary(username); err != nil {
		logger.Warn("failed to invalidate summary cache", zap.Error(err))
	}
}
