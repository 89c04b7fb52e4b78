package output

import (
	"strconv"

	money "github.com/rpgo/withholding-calculator/pkg/decimal"
	"github.com/shopspring/decimal"
)

// FormatCurrency formats a decimal as yuan with thousands grouping and 2 decimals.
func FormatCurrency(amount decimal.Decimal) string {
	return money.NewMoneyFromDecimal(amount).Format()
}

// FormatRate formats a rate such as 0.1 as "10%".
func FormatRate(rate decimal.Decimal) string { return money.FormatPercent(rate) }

func intToString(i int) string { return strconv.Itoa(i) }
