package calculation

import (
	"fmt"
	"testing"

	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	debug, info, warn []string
}

func (r *recordingLogger) Debugf(format string, args ...any) {
	r.debug = append(r.debug, fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Infof(format string, args ...any) {
	r.info = append(r.info, fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Warnf(format string, args ...any) {
	r.warn = append(r.warn, fmt.Sprintf(format, args...))
}
func (r *recordingLogger) Errorf(format string, args ...any) {}

func TestSetLoggerNil(t *testing.T) {
	engine := NewCalculationEngine()
	engine.SetLogger(nil)
	assert.IsType(t, NopLogger{}, engine.Logger)
}

func TestCalculateLogsAndWarns(t *testing.T) {
	log := &recordingLogger{}
	engine := NewCalculationEngine()
	engine.SetLogger(log)

	res := engine.Calculate(domain.TaxInputs{CurrentMonth: 13, CurrentMonthIncome: d("8000"), Threshold: d("5000")})
	assert.Equal(t, 1, res.ProjectedMonth)
	require.Len(t, log.warn, 1)
	assert.Contains(t, log.warn[0], "13")
	require.Len(t, log.debug, 1)
	assert.Contains(t, log.debug[0], "withhold=90.00")

	engine.Calculate(domain.TaxInputs{CurrentMonth: 4, Threshold: d("5000")})
	assert.Len(t, log.warn, 1, "valid month should not warn")
}

func TestRunCases(t *testing.T) {
	engine := NewCalculationEngine()
	report := engine.RunCases([]domain.NamedCase{
		{Name: "january", Inputs: domain.TaxInputs{CurrentMonth: 1, CurrentMonthIncome: d("10000"), Threshold: d("5000")}},
		{Name: "march", Inputs: domain.TaxInputs{TotalIncome: d("30000"), TotalTaxPaid: d("900"), CurrentMonth: 2, CurrentMonthIncome: d("20000"), Threshold: d("5000")}},
	})

	require.Len(t, report.Cases, 2)
	assert.Nil(t, report.Schedule)
	assert.Equal(t, "january", report.Cases[0].Name)
	assertDecimal(t, "0", report.Cases[0].Result.CurrentMonthTax)
	assert.Equal(t, "march", report.Cases[1].Name)
	assertDecimal(t, "150", report.Cases[1].Result.CurrentMonthTax)
}

// TestProjectSchedule walks the remaining months of a steady salary
func TestProjectSchedule(t *testing.T) {
	engine := NewCalculationEngine()
	schedule, err := engine.ProjectSchedule(domain.ScheduleRequest{
		Inputs: domain.TaxInputs{
			TotalIncome:  d("180000"),
			TotalTaxPaid: d("10980"),
			CurrentMonth: 9,
			Threshold:    d("5000"),
		},
		MonthlyIncome: d("20000"),
	})
	require.NoError(t, err)

	assert.Equal(t, 9, schedule.StartMonth)
	require.Len(t, schedule.Rows, 3)

	expected := []struct {
		month       int
		cumulative  string
		taxable     string
		withholding string
		paid        string
		level       int
	}{
		{10, "200000", "150000", "2100", "13080", 3},
		{11, "220000", "165000", "3000", "16080", 3},
		{12, "240000", "180000", "3000", "19080", 3},
	}
	for i, e := range expected {
		row := schedule.Rows[i]
		assert.Equal(t, e.month, row.Month)
		assertDecimal(t, "20000", row.Income)
		assertDecimal(t, e.cumulative, row.CumulativeIncome, "cumulative")
		assertDecimal(t, e.taxable, row.TaxableIncome, "taxable")
		assertDecimal(t, e.withholding, row.Withholding, "withholding")
		assertDecimal(t, e.paid, row.CumulativePaid, "paid")
		assert.Equal(t, e.level, row.Level)
	}

	assertDecimal(t, "8100", schedule.TotalWithholding)
	assertDecimal(t, "240000", schedule.FinalIncome)
	assertDecimal(t, "19080", schedule.FinalTaxPaid)
}

func TestProjectScheduleIncomeOverrides(t *testing.T) {
	engine := NewCalculationEngine()
	schedule, err := engine.ProjectSchedule(domain.ScheduleRequest{
		Inputs: domain.TaxInputs{
			TotalIncome:  d("200000"),
			TotalTaxPaid: d("13080"),
			CurrentMonth: 10,
			Threshold:    d("5000"),
		},
		MonthlyIncome: d("20000"),
		Incomes:       []decimal.Decimal{d("30000")},
	})
	require.NoError(t, err)
	require.Len(t, schedule.Rows, 2)

	assertDecimal(t, "30000", schedule.Rows[0].Income)
	assertDecimal(t, "5000", schedule.Rows[0].Withholding)
	assertDecimal(t, "20000", schedule.Rows[1].Income)
	assertDecimal(t, "3000", schedule.Rows[1].Withholding)
	assertDecimal(t, "8000", schedule.TotalWithholding)
	assertDecimal(t, "250000", schedule.FinalIncome)
}

func TestProjectScheduleTooManyIncomes(t *testing.T) {
	engine := NewCalculationEngine()
	_, err := engine.ProjectSchedule(domain.ScheduleRequest{
		Inputs:  domain.TaxInputs{CurrentMonth: 11, Threshold: d("5000")},
		Incomes: []decimal.Decimal{d("1"), d("2")},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only 1 month(s) remain")
}

func TestProjectScheduleFromDecember(t *testing.T) {
	engine := NewCalculationEngine()
	schedule, err := engine.ProjectSchedule(domain.ScheduleRequest{
		Inputs:        domain.TaxInputs{TotalIncome: d("240000"), TotalTaxPaid: d("19080"), CurrentMonth: 12, Threshold: d("5000")},
		MonthlyIncome: d("20000"),
	})
	require.NoError(t, err)
	assert.Empty(t, schedule.Rows)
	assert.True(t, schedule.TotalWithholding.IsZero())
	assertDecimal(t, "240000", schedule.FinalIncome)
	assertDecimal(t, "19080", schedule.FinalTaxPaid)
}
