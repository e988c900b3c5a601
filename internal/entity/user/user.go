package user

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one round-up expense. The derived fields are frozen at
// creation time: SavingType keeps the mode that was active, so old entries
// stay interpretable after the user switches modes.
type Transaction struct {
	ID               int64           `json:"id"`
	Date             time.Time       `json:"date"`
	Description      string          `json:"description"`
	Category         string          `json:"category"`
	OriginalAmount   decimal.Decimal `json:"originalAmount"`
	SavingType       string          `json:"savingType"`
	InvestPortion    decimal.Decimal `json:"investPortion"`
	TotalAfterInvest decimal.Decimal `json:"totalAfterInvest"`
	Amount           decimal.Decimal `json:"amount"`
	Type             string          `json:"type"`
}

// Goal is a saving target with an intended monthly deposit.
type Goal struct {
	ID             int64           `json:"id"`
	Name           string          `json:"name"`
	Target         decimal.Decimal `json:"target"`
	Current        decimal.Decimal `json:"current"`
	MonthlyDeposit decimal.Decimal `json:"monthlyDeposit"`
	AutoDay        int             `json:"autoDay"`
	Created        time.Time       `json:"created"`
}

// MonthsToTarget reports how many monthly deposits remain until the goal is
// reached. ok is false when no monthly deposit is configured.
func (g Goal) MonthsToTarget() (months int64, ok bool) {
	if !g.MonthlyDeposit.IsPositive() {
		return 0, false
	}
	remaining := g.Target.Sub(g.Current)
	if !remaining.IsPositive() {
		return 0, true
	}
	return remaining.Div(g.MonthlyDeposit).Ceil().IntPart(), true
}

// Investment plans a user can pick from.
var Plans = []string{"solid", "sticks", "estate"}

type Record struct {
	Transactions []Transaction
	Goals        []Goal
	savingMode   string
	plan         string
}

func (r *Record) SavingMode(def string) string {
	if r.savingMode != "" {
		return r.savingMode
	}
	return def
}

func (r *Record) SetSavingMode(mode string) {
	r.savingMode = mode
}

func (r *Record) Plan(def string) string {
	if r.plan != "" {
		return r.plan
	}
	return def
}

func (r *Record) SetPlan(plan string) {
	r.plan = plan
}
