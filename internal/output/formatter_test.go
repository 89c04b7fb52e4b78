package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rpgo/withholding-calculator/internal/calculation"
	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func buildTestReport(t *testing.T) *domain.Report {
	t.Helper()
	engine := calculation.NewCalculationEngine()
	report := engine.RunCases([]domain.NamedCase{
		{Name: "march", Inputs: domain.TaxInputs{
			TotalIncome:        decimal.NewFromInt(30000),
			TotalTaxPaid:       decimal.NewFromInt(900),
			CurrentMonth:       2,
			CurrentMonthIncome: decimal.NewFromInt(20000),
			Threshold:          decimal.NewFromInt(5000),
		}},
		{Name: "june", Inputs: domain.TaxInputs{
			TotalIncome:        decimal.NewFromInt(150000),
			TotalTaxPaid:       decimal.NewFromInt(6000),
			CurrentMonth:       5,
			CurrentMonthIncome: decimal.NewFromInt(30000),
			Threshold:          decimal.NewFromInt(5000),
			Insurance:          decimal.NewFromInt(2000),
			SpecialDeduction:   decimal.NewFromInt(1000),
		}},
	})
	schedule, err := engine.ProjectSchedule(domain.ScheduleRequest{
		Inputs: domain.TaxInputs{
			TotalIncome:  decimal.NewFromInt(180000),
			TotalTaxPaid: decimal.NewFromInt(10980),
			CurrentMonth: 9,
			Threshold:    decimal.NewFromInt(5000),
		},
		MonthlyIncome: decimal.NewFromInt(20000),
	})
	require.NoError(t, err)
	report.Schedule = schedule
	return report
}

func TestConsoleFormatter(t *testing.T) {
	out, err := ConsoleFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)
	content := string(out)

	assert.Contains(t, content, "WITHHOLDING RESULT: march")
	assert.Contains(t, content, "Tax due for month 3")
	assert.Contains(t, content, "¥150.00")
	assert.Contains(t, content, "¥50,000.00")
	assert.Contains(t, content, "level 1: 3% (over ¥0.00/yr)")
	assert.Contains(t, content, "WITHHOLDING RESULT: june")
	assert.Contains(t, content, "¥4,680.00")
	assert.Contains(t, content, "level 2: 10% (over ¥36,000.00/yr)")
	assert.Contains(t, content, "WITHHOLDING SCHEDULE (after month 9)")
	assert.Contains(t, content, "Total withholding: ¥8,100.00")
	assert.Contains(t, content, "Year-end tax paid: ¥19,080.00")
}

func TestConsoleFormatterEmptySchedule(t *testing.T) {
	report := &domain.Report{Schedule: &domain.Schedule{StartMonth: 12}}
	out, err := ConsoleFormatter{}.Format(report)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No months remain")
}

func TestJSONFormatter(t *testing.T) {
	out, err := JSONFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(out, &decoded))
	require.Len(t, decoded.Cases, 2)
	assert.True(t, decoded.Cases[0].Result.CurrentMonthTax.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, 1, decoded.Cases[0].Result.TaxRate.Level)
	require.NotNil(t, decoded.Schedule)
	assert.Len(t, decoded.Schedule.Rows, 3)
	assert.Contains(t, string(out), `"current_month_tax"`)
}

func TestYAMLFormatter(t *testing.T) {
	out, err := YAMLFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	var decoded domain.Report
	require.NoError(t, yaml.Unmarshal(out, &decoded))
	require.Len(t, decoded.Cases, 2)
	assert.Equal(t, "june", decoded.Cases[1].Name)
	assert.True(t, decoded.Cases[1].Result.TotalTaxDue.Equal(decimal.NewFromInt(10680)))
}

func TestCSVFormatter(t *testing.T) {
	out, err := CSVFormatter{}.Format(buildTestReport(t))
	require.NoError(t, err)

	sections := strings.Split(strings.TrimSpace(string(out)), "\n\n")
	require.Len(t, sections, 2)

	cases, err := csv.NewReader(strings.NewReader(sections[0])).ReadAll()
	require.NoError(t, err)
	require.Len(t, cases, 3)
	assert.Equal(t, "Case", cases[0][0])
	assert.Equal(t, []string{"march", "2", "3", "50000.00", "35000.00", "1050.00", "900.00", "150.00", "1", "0.03", "0.00"}, cases[1])

	schedule, err := csv.NewReader(strings.NewReader(sections[1])).ReadAll()
	require.NoError(t, err)
	require.Len(t, schedule, 4)
	assert.Equal(t, []string{"10", "20000.00", "200000.00", "150000.00", "13080.00", "2100.00", "13080.00", "3", "0.20"}, schedule[1])
}

func TestGetFormatterByName(t *testing.T) {
	assert.Equal(t, "console", GetFormatterByName("console").Name())
	assert.Equal(t, "console", GetFormatterByName(" Pretty ").Name())
	assert.Equal(t, "yaml", GetFormatterByName("yml").Name())
	assert.Equal(t, "json", GetFormatterByName("JSON").Name())
	assert.Nil(t, GetFormatterByName("html"))

	assert.Equal(t, []string{"console", "csv", "json", "yaml"}, AvailableFormatterNames())
	assert.Contains(t, AvailableFormatAliases(), "yml")
}

func TestRenderUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, &domain.Report{}, "html")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedFormat))
	assert.Contains(t, err.Error(), "console, csv, json, yaml")
	assert.Zero(t, buf.Len())
}

func TestGenerateReportSavesFile(t *testing.T) {
	nowFunc = func() time.Time { return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC) }
	defer func() { nowFunc = time.Now }()

	dir := t.TempDir()
	var buf bytes.Buffer
	filename, err := GenerateReport(&buf, buildTestReport(t), "json", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "withholding_report_20250304_050607.json"), filename)

	saved, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Equal(t, buf.String(), string(saved))

	filename, err = GenerateReport(&buf, buildTestReport(t), "csv", "")
	require.NoError(t, err)
	assert.Empty(t, filename)
}
