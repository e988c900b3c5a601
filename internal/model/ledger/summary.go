package ledger

import (
	"github.com/jinzhu/now"
	"github.com/shopspring/decimal"

	"max.ks1230/roundup-bot/internal/entity/user"
)

const monthLabelLayout = "January 2006"

// MonthTotal is one group of the monthly invested summary. Total carries the
// exact decimal sum; rounding to 2 decimals happens only at presentation.
type MonthTotal struct {
	Label string
	Total decimal.Decimal
}

// MonthlySummaryOf groups expenses with a positive invest portion by the
// calendar month of their own date. Groups appear in insertion order of the
// first transaction of each month.
func MonthlySummaryOf(txs []user.Transaction) []MonthTotal {
	index := make(map[string]int)
	res := make([]MonthTotal, 0)

	for _, t := range txs {
		if t.Type != expenseType || !t.InvestPortion.IsPositive() {
			continue
		}
		label := now.New(t.Date).BeginningOfMonth().Format(monthLabelLayout)
		i, ok := index[label]
		if !ok {
			index[label] = len(res)
			res = append(res, MonthTotal{Label: label, Total: t.InvestPortion})
			continue
		}
		res[i].Total = res[i].Total.Add(t.InvestPortion)
	}
	return res
}
