package messages

import (
	"fmt"
	"strings"
	"time"

	"max.ks1230/roundup-bot/internal/entity/user"
)

const (
	commandParts = 2
	dateLayout   = "02.01.2006"
	isoLayout    = "2006-01-02"
)

func location() *time.Location {
	loc, err := time.LoadLocation("Asia/Jerusalem")
	if err != nil {
		return time.UTC
	}
	return loc
}

func nowInLocation() time.Time {
	return time.Now().In(location())
}

func parseCommand(text string) (cmd, arg string) {
	text = strings.TrimSpace(text)
	split := strings.SplitN(text, " ", commandParts)

	if len(split) == commandParts {
		return split[0], split[1]
	}
	if strings.HasPrefix(text, "/") {
		return text, ""
	}
	return "", text
}

// splitFields splits a semicolon-separated argument list, trimming each part.
func splitFields(arg string) []string {
	parts := strings.Split(arg, ";")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		res = append(res, strings.TrimSpace(p))
	}
	return res
}

func parseDate(arg string) (time.Time, error) {
	date, err := time.ParseInLocation(dateLayout, arg, location())
	if err == nil {
		return date, nil
	}
	return time.ParseInLocation(isoLayout, arg, location())
}

func formatTransactions(txs []user.Transaction) string {
	res := make([]string, 0, len(txs))
	for _, t := range txs {
		res = append(res, formatTransaction(t))
	}
	return strings.Join(res, "\n")
}

func formatTransaction(t user.Transaction) string {
	return fmt.Sprintf("#%d %s | %s (%s): %s ₪ + %s ₪ → %s ₪",
		t.ID,
		t.Date.Format(dateLayout),
		t.Description,
		t.Category,
		t.OriginalAmount.StringFixed(2),
		t.InvestPortion.StringFixed(2),
		t.TotalAfterInvest.StringFixed(2),
	)
}

func formatGoals(goals []user.Goal) string {
	res := make([]string, 0, len(goals))
	for _, g := range goals {
		res = append(res, formatGoal(g))
	}
	return strings.Join(res, "\n")
}

func formatGoal(g user.Goal) string {
	line := fmt.Sprintf("#%d %s: %s / %s ₪, %s ₪ monthly",
		g.ID, g.Name,
		g.Current.StringFixed(2), g.Target.StringFixed(2),
		g.MonthlyDeposit.StringFixed(2))
	if months, ok := g.MonthsToTarget(); ok {
		line += fmt.Sprintf(" (~%d months to go)", months)
	}
	return line
}
