package calculation

import (
	"fmt"

	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/rpgo/withholding-calculator/pkg/dateutil"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// CalculationEngine runs withholding calculations and projections. It holds
// no state besides its logger and is safe for concurrent use.
type CalculationEngine struct {
	Logger Logger
}

// NewCalculationEngine creates a new calculation engine
func NewCalculationEngine() *CalculationEngine {
	return &CalculationEngine{Logger: NopLogger{}}
}

// SetLogger sets the logger for the calculation engine. If nil is provided, a no-op logger is used.
func (ce *CalculationEngine) SetLogger(l Logger) {
	if l == nil {
		ce.Logger = NopLogger{}
		return
	}
	ce.Logger = l
}

// Calculate runs CalculateMonthlyTax and logs the outcome at debug level.
func (ce *CalculationEngine) Calculate(in domain.TaxInputs) domain.CalculationResult {
	if !dateutil.IsValidMonth(in.CurrentMonth) {
		ce.Logger.Warnf("current month %d out of range, clamping to %d", in.CurrentMonth, dateutil.ClampMonth(in.CurrentMonth))
	}
	res := CalculateMonthlyTax(in)
	ce.Logger.Debugf("month %d: taxable=%s due=%s paid=%s withhold=%s level=%d",
		res.ProjectedMonth,
		res.TaxableIncome.StringFixed(2),
		res.TotalTaxDue.StringFixed(2),
		in.TotalTaxPaid.StringFixed(2),
		res.CurrentMonthTax.StringFixed(2),
		res.TaxRate.Level,
	)
	return res
}

// RunCases computes every named case in order.
func (ce *CalculationEngine) RunCases(cases []domain.NamedCase) *domain.Report {
	results := lo.Map(cases, func(c domain.NamedCase, _ int) domain.CaseResult {
		return domain.CaseResult{Name: c.Name, Inputs: c.Inputs, Result: ce.Calculate(c.Inputs)}
	})
	ce.Logger.Infof("computed %d withholding case(s)", len(results))
	return &domain.Report{Cases: results}
}

// ProjectSchedule projects withholding month by month from the month after
// req.Inputs.CurrentMonth through December. Each month's income is added to
// cumulative income and its withholding to tax paid before the next month is
// computed. A December start yields an empty schedule.
func (ce *CalculationEngine) ProjectSchedule(req domain.ScheduleRequest) (*domain.Schedule, error) {
	start := dateutil.ClampMonth(req.Inputs.CurrentMonth)
	months := dateutil.RemainingMonths(start)
	if len(req.Incomes) > len(months) {
		return nil, fmt.Errorf("%d monthly incomes given but only %d month(s) remain after month %d", len(req.Incomes), len(months), start)
	}

	in := req.Inputs
	in.CurrentMonth = start
	schedule := &domain.Schedule{
		StartMonth:       start,
		Rows:             make([]domain.ScheduleRow, 0, len(months)),
		TotalWithholding: decimal.Zero,
		FinalIncome:      in.TotalIncome,
		FinalTaxPaid:     in.TotalTaxPaid,
	}

	for i, month := range months {
		income := req.MonthlyIncome
		if i < len(req.Incomes) {
			income = req.Incomes[i]
		}
		in.CurrentMonth = month - 1
		in.CurrentMonthIncome = income

		res := ce.Calculate(in)

		in.TotalIncome = res.NewTotalIncome
		in.TotalTaxPaid = in.TotalTaxPaid.Add(res.CurrentMonthTax)

		schedule.Rows = append(schedule.Rows, domain.ScheduleRow{
			Month:            month,
			Income:           income,
			CumulativeIncome: res.NewTotalIncome,
			TaxableIncome:    res.TaxableIncome,
			TotalTaxDue:      res.TotalTaxDue,
			Withholding:      res.CurrentMonthTax,
			CumulativePaid:   in.TotalTaxPaid,
			Level:            res.TaxRate.Level,
			Rate:             res.TaxRate.Rate,
		})
		schedule.TotalWithholding = schedule.TotalWithholding.Add(res.CurrentMonthTax)
	}

	schedule.FinalIncome = in.TotalIncome
	schedule.FinalTaxPaid = in.TotalTaxPaid
	ce.Logger.Infof("projected %d month(s) from month %d, total withholding %s", len(schedule.Rows), start, schedule.TotalWithholding.StringFixed(2))
	return schedule, nil
}
