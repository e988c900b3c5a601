package policy

import (
	"github.com/shopspring/decimal"

	"max.ks1230/roundup-bot/internal/model/customerr"
)

// Saving modes. The mode decides the boundary an expense is rounded up to:
// agorot rounds to the next whole shekel, shekels to the next multiple of ten.
const (
	Agorot  = "agorot"
	Shekels = "shekels"
)

var Modes = []string{Agorot, Shekels}

var ten = decimal.NewFromInt(10)

// ParseMode validates a mode string coming from storage or user input.
func ParseMode(mode string) (string, error) {
	for _, m := range Modes {
		if m == mode {
			return m, nil
		}
	}
	return "", &customerr.InvalidModeError{Mode: mode}
}

// ParseAmount converts a raw amount string into a non-negative decimal.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, &customerr.InvalidAmountError{Value: raw}
	}
	if amount.IsNegative() {
		return decimal.Zero, &customerr.InvalidAmountError{Value: raw}
	}
	return amount, nil
}

// ComputeInvestPortion returns the part of an expense diverted to savings:
// the distance from amount up to the mode's boundary, rounded to 2 decimals
// (half away from zero). Amounts already on a boundary yield zero. Pure.
func ComputeInvestPortion(amount decimal.Decimal, mode string) (decimal.Decimal, error) {
	if amount.IsNegative() {
		return decimal.Zero, &customerr.InvalidAmountError{Value: amount.String()}
	}

	switch mode {
	case Agorot:
		return Round2(amount.Ceil().Sub(amount)), nil
	case Shekels:
		boundary := amount.Div(ten).Ceil().Mul(ten)
		return Round2(boundary.Sub(amount)), nil
	}
	return decimal.Zero, &customerr.InvalidModeError{Mode: mode}
}

// Round2 rounds to 2 decimal places, half away from zero.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
