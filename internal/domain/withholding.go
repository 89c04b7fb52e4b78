package domain

import (
	"github.com/shopspring/decimal"
)

// TaxBracket is one row of the progressive withholding schedule.
// Threshold is the cumulative annual taxable income the bracket starts above.
type TaxBracket struct {
	Level          int             `yaml:"level" json:"level"`
	Threshold      decimal.Decimal `yaml:"threshold" json:"threshold"`
	Rate           decimal.Decimal `yaml:"rate" json:"rate"`
	QuickDeduction decimal.Decimal `yaml:"quick_deduction" json:"quick_deduction"`
}

// TaxInputs holds the year-to-date figures and next month's projection for a
// single withholding calculation. Threshold, Insurance and SpecialDeduction
// are monthly amounts.
type TaxInputs struct {
	TotalIncome        decimal.Decimal `yaml:"total_income" json:"total_income"`
	TotalTaxPaid       decimal.Decimal `yaml:"total_tax_paid" json:"total_tax_paid"`
	CurrentMonth       int             `yaml:"current_month" json:"current_month"`
	CurrentMonthIncome decimal.Decimal `yaml:"current_month_income" json:"current_month_income"`
	Threshold          decimal.Decimal `yaml:"threshold" json:"threshold"`
	Insurance          decimal.Decimal `yaml:"insurance" json:"insurance"`
	SpecialDeduction   decimal.Decimal `yaml:"special_deduction" json:"special_deduction"`
}

// CalculationResult is the outcome of a monthly withholding calculation.
type CalculationResult struct {
	CurrentMonthTax decimal.Decimal `yaml:"current_month_tax" json:"current_month_tax"`
	NewTotalIncome  decimal.Decimal `yaml:"new_total_income" json:"new_total_income"`
	TotalTaxDue     decimal.Decimal `yaml:"total_tax_due" json:"total_tax_due"`
	TaxRate         TaxBracket      `yaml:"tax_rate" json:"tax_rate"`

	// Reporting extras
	TaxableIncome  decimal.Decimal `yaml:"taxable_income" json:"taxable_income"`
	ProjectedMonth int             `yaml:"projected_month" json:"projected_month"`
}

// NamedCase pairs a label with a set of inputs, as read from batch files.
type NamedCase struct {
	Name   string    `yaml:"name" json:"name"`
	Inputs TaxInputs `yaml:"inputs" json:"inputs"`
}

// CaseResult is a computed NamedCase.
type CaseResult struct {
	Name   string            `yaml:"name" json:"name"`
	Inputs TaxInputs         `yaml:"inputs" json:"inputs"`
	Result CalculationResult `yaml:"result" json:"result"`
}

// ScheduleRequest describes a remaining-year projection. Inputs carries the
// year-to-date position; its CurrentMonthIncome is ignored in favour of
// MonthlyIncome, or the per-month Incomes overrides when given.
type ScheduleRequest struct {
	Inputs        TaxInputs         `yaml:"inputs" json:"inputs"`
	MonthlyIncome decimal.Decimal   `yaml:"monthly_income" json:"monthly_income"`
	Incomes       []decimal.Decimal `yaml:"incomes,omitempty" json:"incomes,omitempty"`
}

// ScheduleRow is one projected month of a remaining-year schedule.
type ScheduleRow struct {
	Month            int             `yaml:"month" json:"month"`
	Income           decimal.Decimal `yaml:"income" json:"income"`
	CumulativeIncome decimal.Decimal `yaml:"cumulative_income" json:"cumulative_income"`
	TaxableIncome    decimal.Decimal `yaml:"taxable_income" json:"taxable_income"`
	TotalTaxDue      decimal.Decimal `yaml:"total_tax_due" json:"total_tax_due"`
	Withholding      decimal.Decimal `yaml:"withholding" json:"withholding"`
	CumulativePaid   decimal.Decimal `yaml:"cumulative_paid" json:"cumulative_paid"`
	Level            int             `yaml:"level" json:"level"`
	Rate             decimal.Decimal `yaml:"rate" json:"rate"`
}

// Schedule is the month-by-month withholding projection through December.
type Schedule struct {
	StartMonth       int             `yaml:"start_month" json:"start_month"`
	Rows             []ScheduleRow   `yaml:"rows" json:"rows"`
	TotalWithholding decimal.Decimal `yaml:"total_withholding" json:"total_withholding"`
	FinalIncome      decimal.Decimal `yaml:"final_income" json:"final_income"`
	FinalTaxPaid     decimal.Decimal `yaml:"final_tax_paid" json:"final_tax_paid"`
}

// Report is what output formatters render: either individual cases, a
// schedule, or both.
type Report struct {
	Cases    []CaseResult `yaml:"cases,omitempty" json:"cases,omitempty"`
	Schedule *Schedule    `yaml:"schedule,omitempty" json:"schedule,omitempty"`
}
