package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/rpgo/withholding-calculator/pkg/dateutil"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ErrInvalidInput is wrapped by every validation failure.
var ErrInvalidInput = errors.New("invalid input")

// Defaults fills fields a caller left out of an input document.
type Defaults struct {
	CurrentMonth     int
	Threshold        decimal.Decimal
	Insurance        decimal.Decimal
	SpecialDeduction decimal.Decimal
}

// InputDocument is the on-disk / on-the-wire form of domain.TaxInputs.
// Optional fields are pointers so omitted values can take Defaults.
type InputDocument struct {
	TotalIncome        decimal.Decimal  `yaml:"total_income" json:"total_income"`
	TotalTaxPaid       decimal.Decimal  `yaml:"total_tax_paid" json:"total_tax_paid"`
	CurrentMonth       *int             `yaml:"current_month" json:"current_month"`
	CurrentMonthIncome decimal.Decimal  `yaml:"current_month_income" json:"current_month_income"`
	Threshold          *decimal.Decimal `yaml:"threshold" json:"threshold"`
	Insurance          *decimal.Decimal `yaml:"insurance" json:"insurance"`
	SpecialDeduction   *decimal.Decimal `yaml:"special_deduction" json:"special_deduction"`
}

// Resolve converts the document to TaxInputs, applying defaults for omitted fields.
func (doc InputDocument) Resolve(def Defaults) domain.TaxInputs {
	in := domain.TaxInputs{
		TotalIncome:        doc.TotalIncome,
		TotalTaxPaid:       doc.TotalTaxPaid,
		CurrentMonth:       def.CurrentMonth,
		CurrentMonthIncome: doc.CurrentMonthIncome,
		Threshold:          def.Threshold,
		Insurance:          def.Insurance,
		SpecialDeduction:   def.SpecialDeduction,
	}
	if doc.CurrentMonth != nil {
		in.CurrentMonth = *doc.CurrentMonth
	}
	if doc.Threshold != nil {
		in.Threshold = *doc.Threshold
	}
	if doc.Insurance != nil {
		in.Insurance = *doc.Insurance
	}
	if doc.SpecialDeduction != nil {
		in.SpecialDeduction = *doc.SpecialDeduction
	}
	return in
}

// CaseDocument is a named entry in a batch file.
type CaseDocument struct {
	Name   string        `yaml:"name" json:"name"`
	Inputs InputDocument `yaml:"inputs" json:"inputs"`
}

// ScheduleDocument is the file form of domain.ScheduleRequest.
type ScheduleDocument struct {
	Inputs        InputDocument     `yaml:"inputs" json:"inputs"`
	MonthlyIncome decimal.Decimal   `yaml:"monthly_income" json:"monthly_income"`
	Incomes       []decimal.Decimal `yaml:"incomes,omitempty" json:"incomes,omitempty"`
}

// Resolve converts the document to a ScheduleRequest.
func (doc ScheduleDocument) Resolve(def Defaults) domain.ScheduleRequest {
	return domain.ScheduleRequest{
		Inputs:        doc.Inputs.Resolve(def),
		MonthlyIncome: doc.MonthlyIncome,
		Incomes:       doc.Incomes,
	}
}

// BatchFile is the top-level layout of an input file.
type BatchFile struct {
	Cases    []CaseDocument    `yaml:"cases"`
	Schedule *ScheduleDocument `yaml:"schedule,omitempty"`
}

// Batch is a resolved and validated BatchFile.
type Batch struct {
	Cases    []domain.NamedCase
	Schedule *domain.ScheduleRequest
}

// InputParser handles parsing of input files
type InputParser struct {
	Defaults Defaults
}

// NewInputParser creates a new input parser
func NewInputParser(def Defaults) *InputParser {
	return &InputParser{Defaults: def}
}

// LoadFromFile loads a batch of cases (and optionally a schedule) from a YAML file
func (ip *InputParser) LoadFromFile(filename string) (*Batch, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return ip.Parse(data)
}

// Parse decodes and validates batch YAML
func (ip *InputParser) Parse(data []byte) (*Batch, error) {
	var file BatchFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(file.Cases) == 0 && file.Schedule == nil {
		return nil, fmt.Errorf("%w: no cases or schedule provided", ErrInvalidInput)
	}

	batch := &Batch{}
	for i, c := range file.Cases {
		in := c.Inputs.Resolve(ip.Defaults)
		name := c.Name
		if name == "" {
			name = fmt.Sprintf("case-%d", i+1)
		}
		if err := ValidateTaxInputs(in); err != nil {
			return nil, fmt.Errorf("case %q validation failed: %w", name, err)
		}
		batch.Cases = append(batch.Cases, domain.NamedCase{Name: name, Inputs: in})
	}

	if file.Schedule != nil {
		req := file.Schedule.Resolve(ip.Defaults)
		if err := ValidateScheduleRequest(req); err != nil {
			return nil, fmt.Errorf("schedule validation failed: %w", err)
		}
		batch.Schedule = &req
	}

	return batch, nil
}

// ValidateTaxInputs applies the form rules: amounts are non-negative and the
// month is between 1 and 12.
func ValidateTaxInputs(in domain.TaxInputs) error {
	amounts := []struct {
		field string
		value decimal.Decimal
	}{
		{"total_income", in.TotalIncome},
		{"total_tax_paid", in.TotalTaxPaid},
		{"current_month_income", in.CurrentMonthIncome},
		{"threshold", in.Threshold},
		{"insurance", in.Insurance},
		{"special_deduction", in.SpecialDeduction},
	}
	for _, a := range amounts {
		if a.value.IsNegative() {
			return fmt.Errorf("%w: %s cannot be negative", ErrInvalidInput, a.field)
		}
	}
	if !dateutil.IsValidMonth(in.CurrentMonth) {
		return fmt.Errorf("%w: current_month must be between 1 and 12, got %d", ErrInvalidInput, in.CurrentMonth)
	}
	return nil
}

// ValidateScheduleRequest validates the starting inputs and every income.
func ValidateScheduleRequest(req domain.ScheduleRequest) error {
	if err := ValidateTaxInputs(req.Inputs); err != nil {
		return err
	}
	if req.MonthlyIncome.IsNegative() {
		return fmt.Errorf("%w: monthly_income cannot be negative", ErrInvalidInput)
	}
	remaining := len(dateutil.RemainingMonths(req.Inputs.CurrentMonth))
	if len(req.Incomes) > remaining {
		return fmt.Errorf("%w: %d incomes given but only %d month(s) remain", ErrInvalidInput, len(req.Incomes), remaining)
	}
	for i, inc := range req.Incomes {
		if inc.IsNegative() {
			return fmt.Errorf("%w: incomes[%d] cannot be negative", ErrInvalidInput, i)
		}
	}
	return nil
}

// CreateExampleBatch returns a small batch file for `iitcalc example`.
func CreateExampleBatch() BatchFile {
	month := func(m int) *int { return &m }
	amount := func(v int64) *decimal.Decimal {
		d := decimal.NewFromInt(v)
		return &d
	}
	return BatchFile{
		Cases: []CaseDocument{
			{
				Name: "first-month",
				Inputs: InputDocument{
					CurrentMonth:       month(1),
					CurrentMonthIncome: decimal.NewFromInt(10000),
					Threshold:          amount(5000),
				},
			},
			{
				Name: "mid-year-with-deductions",
				Inputs: InputDocument{
					TotalIncome:        decimal.NewFromInt(150000),
					TotalTaxPaid:       decimal.NewFromInt(6000),
					CurrentMonth:       month(5),
					CurrentMonthIncome: decimal.NewFromInt(30000),
					Threshold:          amount(5000),
					Insurance:          amount(2000),
					SpecialDeduction:   amount(1000),
				},
			},
		},
		Schedule: &ScheduleDocument{
			Inputs: InputDocument{
				TotalIncome:  decimal.NewFromInt(180000),
				TotalTaxPaid: decimal.NewFromInt(10980),
				CurrentMonth: month(9),
				Threshold:    amount(5000),
			},
			MonthlyIncome: decimal.NewFromInt(20000),
		},
	}
}
