package calculation

import (
	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/shopspring/decimal"
)

// withholdingBrackets is the cumulative withholding schedule for resident
// wage income. Thresholds are annual cumulative taxable income; a bracket
// applies once taxable income is strictly greater than its threshold.
var withholdingBrackets = []domain.TaxBracket{
	{Level: 1, Threshold: decimal.Zero, Rate: decimal.RequireFromString("0.03"), QuickDeduction: decimal.Zero},
	{Level: 2, Threshold: decimal.NewFromInt(36000), Rate: decimal.RequireFromString("0.10"), QuickDeduction: decimal.NewFromInt(2520)},
	{Level: 3, Threshold: decimal.NewFromInt(144000), Rate: decimal.RequireFromString("0.20"), QuickDeduction: decimal.NewFromInt(16920)},
	{Level: 4, Threshold: decimal.NewFromInt(300000), Rate: decimal.RequireFromString("0.25"), QuickDeduction: decimal.NewFromInt(31920)},
	{Level: 5, Threshold: decimal.NewFromInt(420000), Rate: decimal.RequireFromString("0.30"), QuickDeduction: decimal.NewFromInt(52920)},
	{Level: 6, Threshold: decimal.NewFromInt(660000), Rate: decimal.RequireFromString("0.35"), QuickDeduction: decimal.NewFromInt(85920)},
	{Level: 7, Threshold: decimal.NewFromInt(960000), Rate: decimal.RequireFromString("0.45"), QuickDeduction: decimal.NewFromInt(181920)},
}

// Brackets returns a copy of the withholding schedule in ascending order.
func Brackets() []domain.TaxBracket {
	out := make([]domain.TaxBracket, len(withholdingBrackets))
	copy(out, withholdingBrackets)
	return out
}

// LookupBracket returns the highest bracket whose threshold is strictly below
// taxableIncome. Income exactly on a threshold stays in the lower bracket, and
// anything at or below zero falls back to level 1.
func LookupBracket(taxableIncome decimal.Decimal) domain.TaxBracket {
	for i := len(withholdingBrackets) - 1; i >= 0; i-- {
		if taxableIncome.GreaterThan(withholdingBrackets[i].Threshold) {
			return withholdingBrackets[i]
		}
	}
	return withholdingBrackets[0]
}
