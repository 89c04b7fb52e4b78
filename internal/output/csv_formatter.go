package output

import (
	"bytes"
	"encoding/csv"

	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/samber/lo"
)

// CSVFormatter writes one row per case, followed by a schedule section when present.
type CSVFormatter struct{}

func (c CSVFormatter) Name() string      { return "csv" }
func (c CSVFormatter) Extension() string { return "csv" }

func (c CSVFormatter) Format(report *domain.Report) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if len(report.Cases) > 0 {
		header := []string{"Case", "CurrentMonth", "ProjectedMonth", "NewTotalIncome", "TaxableIncome", "TotalTaxDue", "TotalTaxPaid", "CurrentMonthTax", "Level", "Rate", "QuickDeduction"}
		rows := lo.Map(report.Cases, func(cr domain.CaseResult, _ int) []string {
			return []string{
				cr.Name,
				intToString(cr.Inputs.CurrentMonth),
				intToString(cr.Result.ProjectedMonth),
				cr.Result.NewTotalIncome.StringFixed(2),
				cr.Result.TaxableIncome.StringFixed(2),
				cr.Result.TotalTaxDue.StringFixed(2),
				cr.Inputs.TotalTaxPaid.StringFixed(2),
				cr.Result.CurrentMonthTax.StringFixed(2),
				intToString(cr.Result.TaxRate.Level),
				cr.Result.TaxRate.Rate.StringFixed(2),
				cr.Result.TaxRate.QuickDeduction.StringFixed(2),
			}
		})
		if err := w.WriteAll(append([][]string{header}, rows...)); err != nil {
			return nil, err
		}
	}

	if report.Schedule != nil {
		if len(report.Cases) > 0 {
			if err := w.Write([]string{}); err != nil {
				return nil, err
			}
		}
		header := []string{"Month", "Income", "CumulativeIncome", "TaxableIncome", "TotalTaxDue", "Withholding", "CumulativePaid", "Level", "Rate"}
		rows := lo.Map(report.Schedule.Rows, func(r domain.ScheduleRow, _ int) []string {
			return []string{
				intToString(r.Month),
				r.Income.StringFixed(2),
				r.CumulativeIncome.StringFixed(2),
				r.TaxableIncome.StringFixed(2),
				r.TotalTaxDue.StringFixed(2),
				r.Withholding.StringFixed(2),
				r.CumulativePaid.StringFixed(2),
				intToString(r.Level),
				r.Rate.StringFixed(2),
			}
		})
		if err := w.WriteAll(append([][]string{header}, rows...)); err != nil {
			return nil, err
		}
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}
