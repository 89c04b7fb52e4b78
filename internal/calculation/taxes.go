package calculation

import (
	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/rpgo/withholding-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
)

// WITHHOLDING ASSUMPTIONS:
//
// 1. A single fixed bracket schedule (see brackets.go) is used for every year.
//
// 2. Monthly deductions (basic threshold, social insurance and housing fund,
//    special additional deductions) are multiplied by the number of the month
//    being projected, i.e. they accrue from January.
//
// 3. The projected month is the month after CurrentMonth. December wraps to
//    January, so a December projection applies only one month of deductions
//    against the full year's income. ProjectSchedule never crosses December.

// DefaultMonthlyThreshold is the basic monthly deduction in yuan.
var DefaultMonthlyThreshold = decimal.NewFromInt(5000)

// ResolveTaxableIncome subtracts the threshold and deductions from gross
// cumulative income. The result is floored at zero; inputs are not validated.
func ResolveTaxableIncome(grossIncome, threshold, insurance, specialDeduction decimal.Decimal) decimal.Decimal {
	taxable := grossIncome.Sub(threshold).Sub(insurance).Sub(specialDeduction)
	return decimal.Max(decimal.Zero, taxable)
}

// CalculateCumulativeTax returns the year-to-date tax due on taxableIncome
// using the quick deduction of its bracket.
func CalculateCumulativeTax(taxableIncome decimal.Decimal) decimal.Decimal {
	bracket := LookupBracket(taxableIncome)
	return taxableIncome.Mul(bracket.Rate).Sub(bracket.QuickDeduction)
}

// CalculateMonthlyTax derives next month's withholding from year-to-date
// figures. Out-of-range months are clamped rather than rejected.
func CalculateMonthlyTax(in domain.TaxInputs) domain.CalculationResult {
	month := dateutil.ClampMonth(in.CurrentMonth)

	newTotalIncome := in.TotalIncome.Add(in.CurrentMonthIncome)

	nextMonth := dateutil.NextMonth(month)
	months := decimal.NewFromInt(int64(nextMonth))

	taxableIncome := ResolveTaxableIncome(
		newTotalIncome,
		in.Threshold.Mul(months),
		in.Insurance.Mul(months),
		in.SpecialDeduction.Mul(months),
	)

	totalTaxDue := CalculateCumulativeTax(taxableIncome)
	currentMonthTax := decimal.Max(decimal.Zero, totalTaxDue.Sub(in.TotalTaxPaid))

	return domain.CalculationResult{
		CurrentMonthTax: currentMonthTax,
		NewTotalIncome:  newTotalIncome,
		TotalTaxDue:     totalTaxDue,
		TaxRate:         LookupBracket(taxableIncome),
		TaxableIncome:   taxableIncome,
		ProjectedMonth:  nextMonth,
	}
}

// DefaultTaxInputs returns the inputs a blank form starts with: the standard
// threshold, zero amounts and the current calendar month.
func DefaultTaxInputs() domain.TaxInputs {
	return domain.TaxInputs{
		TotalIncome:        decimal.Zero,
		TotalTaxPaid:       decimal.Zero,
		CurrentMonth:       dateutil.CurrentMonth(nowFunc()),
		CurrentMonthIncome: decimal.Zero,
		Threshold:          DefaultMonthlyThreshold,
		Insurance:          decimal.Zero,
		SpecialDeduction:   decimal.Zero,
	}
}
