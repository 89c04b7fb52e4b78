package output

import (
	"bytes"
	"fmt"

	"github.com/rpgo/withholding-calculator/internal/domain"
)

// ConsoleFormatter renders a human-readable result card per case and a
// month table for schedules.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string      { return "console" }
func (c ConsoleFormatter) Extension() string { return "txt" }

func (c ConsoleFormatter) Format(report *domain.Report) ([]byte, error) {
	var buf bytes.Buffer
	for i, cr := range report.Cases {
		if i > 0 {
			fmt.Fprintln(&buf)
		}
		writeCaseCard(&buf, cr)
	}
	if report.Schedule != nil {
		if len(report.Cases) > 0 {
			fmt.Fprintln(&buf)
		}
		writeSchedule(&buf, report.Schedule)
	}
	return buf.Bytes(), nil
}

func writeCaseCard(buf *bytes.Buffer, cr domain.CaseResult) {
	res := cr.Result
	title := "WITHHOLDING RESULT"
	if cr.Name != "" {
		title += ": " + cr.Name
	}
	fmt.Fprintln(buf, title)
	fmt.Fprintln(buf, "================================")
	fmt.Fprintf(buf, "Tax due for month %-2d        %s\n", res.ProjectedMonth, FormatCurrency(res.CurrentMonthTax))
	fmt.Fprintf(buf, "Current rate               %s\n", FormatRate(res.TaxRate.Rate))
	fmt.Fprintf(buf, "Cumulative income          %s\n", FormatCurrency(res.NewTotalIncome))
	fmt.Fprintf(buf, "Cumulative taxable income  %s\n", FormatCurrency(res.TaxableIncome))
	fmt.Fprintf(buf, "Cumulative tax due         %s\n", FormatCurrency(res.TotalTaxDue))
	fmt.Fprintf(buf, "Bracket                    level %d: %s (over %s/yr)\n",
		res.TaxRate.Level, FormatRate(res.TaxRate.Rate), FormatCurrency(res.TaxRate.Threshold))
}

func writeSchedule(buf *bytes.Buffer, s *domain.Schedule) {
	fmt.Fprintf(buf, "WITHHOLDING SCHEDULE (after month %d)\n", s.StartMonth)
	fmt.Fprintln(buf, "================================")
	if len(s.Rows) == 0 {
		fmt.Fprintln(buf, "No months remain in the tax year.")
	} else {
		fmt.Fprintf(buf, "%-6s %16s %16s %14s %14s %6s\n", "Month", "Income", "Cumulative", "Withholding", "Paid YTD", "Rate")
		for _, r := range s.Rows {
			fmt.Fprintf(buf, "%-6d %16s %16s %14s %14s %6s\n",
				r.Month,
				FormatCurrency(r.Income),
				FormatCurrency(r.CumulativeIncome),
				FormatCurrency(r.Withholding),
				FormatCurrency(r.CumulativePaid),
				FormatRate(r.Rate),
			)
		}
	}
	fmt.Fprintf(buf, "Total withholding: %s\n", FormatCurrency(s.TotalWithholding))
	fmt.Fprintf(buf, "Year-end income:   %s\n", FormatCurrency(s.FinalIncome))
	fmt.Fprintf(buf, "Year-end tax paid: %s\n", FormatCurrency(s.FinalTaxPaid))
}
