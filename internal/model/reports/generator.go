package reports

import (
	"context"
	"fmt"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"max.ks1230/roundup-bot/internal/entity/user"
	"max.ks1230/roundup-bot/internal/logger"
	"max.ks1230/roundup-bot/internal/model/ledger"
)

const noInvestmentsMessage = "You have no invested amounts yet"

// SummaryRequest travels over Kafka from the bot to the reporter.
type SummaryRequest struct {
	Username string `json:"username"`
	ChatID   int64  `json:"chatID"`
}

type userStorage interface {
	GetUser(username string) (user.Record, error)
}

// Generator computes the monthly invested summary for a user straight from
// durable storage.
type Generator struct {
	storage userStorage
}

func NewGenerator(storage userStorage) *Generator {
	return &Generator{storage: storage}
}

func (g *Generator) GenerateSummary(ctx context.Context, username string) (string, error) {
	logger.Info("GenerateSummary - start", zap.String("user", username))
	defer logger.Info("GenerateSummary - end")

	span, _ := opentracing.StartSpanFromContext(ctx, "generateSummary")
	defer span.Finish()
	span.SetTag("user", username)

	rec, err := g.storage.GetUser(username)
	if err != nil {
		return "", errors.Wrap(err, "generate summary")
	}

	return FormatSummary(ledger.MonthlySummaryOf(rec.Transactions)), nil
}

// FormatSummary renders the summary for the chat. Totals are rounded to two
// decimals here and nowhere earlier.
func FormatSummary(months []ledger.MonthTotal) string {
	if len(months) == 0 {
		return noInvestmentsMessage
	}

	total := decimal.Zero
	res := make([]string, 0, len(months)+2)
	res = append(res, "Monthly investment summary:")
	for _, m := range months {
		res = append(res, fmt.Sprintf("%s: %s ₪", m.Label, m.Total.Round(2).StringFixed(2)))
		total = total.Add(m.Total)
	}
	res = append(res, "", fmt.Sprintf("Total invested: %s ₪", total.Round(2).StringFixed(2)))
	return strings.Join(res, "\n")
}
