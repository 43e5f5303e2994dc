package domain

import (
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits the ledger stores.
const MoneyScale = 4

// MoneyIntegerDigits is the number of digits the ledger stores before the decimal point.
// Amounts are NUMERIC(20,4) columns.
const MoneyIntegerDigits = 16

// maxMoney is the smallest magnitude that no longer fits a money column.
var maxMoney = decimal.New(1, MoneyIntegerDigits)

// HasMoneyPrecision reports whether d can be stored without rounding.
func HasMoneyPrecision(d decimal.Decimal) bool {
	return d.Equal(d.Truncate(MoneyScale))
}

// InMoneyRange reports whether the magnitude of d fits a money column.
func InMoneyRange(d decimal.Decimal) bool {
	return d.Abs().LessThan(maxMoney)
}

// SumMoney adds amounts exactly.
func SumMoney(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
