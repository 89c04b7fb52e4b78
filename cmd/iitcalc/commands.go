package main

import (
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/rpgo/withholding-calculator/internal/calculation"
	"github.com/rpgo/withholding-calculator/internal/config"
	"github.com/rpgo/withholding-calculator/internal/domain"
	"github.com/rpgo/withholding-calculator/internal/output"
	"github.com/rpgo/withholding-calculator/internal/server"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// inputFlags maps command-line flags onto an InputDocument. Flags left unset
// fall back to the configured defaults.
type inputFlags struct {
	totalIncome        string
	totalTaxPaid       string
	month              int
	currentMonthIncome string
	threshold          string
	insurance          string
	specialDeduction   string
	fs                 *pflag.FlagSet
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	f.fs = fs
	fs.StringVar(&f.totalIncome, "total-income", "0", "cumulative wage income through the current month")
	fs.StringVar(&f.totalTaxPaid, "total-tax-paid", "0", "cumulative tax already withheld")
	fs.IntVarP(&f.month, "month", "m", 0, "current month 1-12 (default: calendar month)")
	fs.StringVar(&f.currentMonthIncome, "income", "0", "next month's projected income")
	fs.StringVar(&f.threshold, "threshold", "", "monthly basic deduction (default from settings, 5000)")
	fs.StringVar(&f.insurance, "insurance", "", "monthly social insurance and housing fund")
	fs.StringVar(&f.specialDeduction, "special-deduction", "", "monthly special additional deductions")
}

func (f *inputFlags) document() (config.InputDocument, error) {
	var doc config.InputDocument
	var err error

	if doc.TotalIncome, err = parseAmount("total-income", f.totalIncome); err != nil {
		return doc, err
	}
	if doc.TotalTaxPaid, err = parseAmount("total-tax-paid", f.totalTaxPaid); err != nil {
		return doc, err
	}
	if doc.CurrentMonthIncome, err = parseAmount("income", f.currentMonthIncome); err != nil {
		return doc, err
	}
	if f.fs.Changed("month") {
		month := f.month
		doc.CurrentMonth = &month
	}

	optional := []struct {
		name  string
		value string
		dst   **decimal.Decimal
	}{
		{"threshold", f.threshold, &doc.Threshold},
		{"insurance", f.insurance, &doc.Insurance},
		{"special-deduction", f.specialDeduction, &doc.SpecialDeduction},
	}
	for _, o := range optional {
		if !f.fs.Changed(o.name) {
			continue
		}
		d, err := parseAmount(o.name, o.value)
		if err != nil {
			return doc, err
		}
		*o.dst = &d
	}
	return doc, nil
}

func parseAmount(name, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("--%s: %q is not a number", name, value)
	}
	return d, nil
}

func (a *app) render(cmd *cobra.Command, report *domain.Report) error {
	saved, err := output.GenerateReport(cmd.OutOrStdout(), report, a.settings.Output.Format, a.outDir)
	if err != nil {
		return err
	}
	if saved != "" {
		a.logger.Info("report saved", zap.String("op", "render"), zap.String("file", saved))
	}
	return nil
}

func newCalcCmd(a *app) *cobra.Command {
	flags := &inputFlags{}
	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Calculate next month's withholding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := flags.document()
			if err != nil {
				return err
			}
			def, err := a.inputDefaults()
			if err != nil {
				return err
			}
			in := doc.Resolve(def)
			if err := config.ValidateTaxInputs(in); err != nil {
				return err
			}
			report := a.engine.RunCases([]domain.NamedCase{{Inputs: in}})
			return a.render(cmd, report)
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newBatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "batch FILE",
		Short: "Calculate every case (and optional schedule) in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := a.inputDefaults()
			if err != nil {
				return err
			}
			batch, err := config.NewInputParser(def).LoadFromFile(args[0])
			if err != nil {
				return err
			}
			report := a.engine.RunCases(batch.Cases)
			if batch.Schedule != nil {
				schedule, err := a.engine.ProjectSchedule(*batch.Schedule)
				if err != nil {
					return err
				}
				report.Schedule = schedule
			}
			return a.render(cmd, report)
		},
	}
}

func newScheduleCmd(a *app) *cobra.Command {
	flags := &inputFlags{}
	var monthlyIncome string
	var incomes []string
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Project withholding for each remaining month of the year",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			doc, err := flags.document()
			if err != nil {
				return err
			}
			monthly, err := parseAmount("monthly-income", monthlyIncome)
			if err != nil {
				return err
			}
			overrides := make([]decimal.Decimal, 0, len(incomes))
			for _, s := range incomes {
				d, err := parseAmount("incomes", s)
				if err != nil {
					return err
				}
				overrides = append(overrides, d)
			}
			def, err := a.inputDefaults()
			if err != nil {
				return err
			}
			req := config.ScheduleDocument{Inputs: doc, MonthlyIncome: monthly, Incomes: overrides}.Resolve(def)
			if err := config.ValidateScheduleRequest(req); err != nil {
				return err
			}
			schedule, err := a.engine.ProjectSchedule(req)
			if err != nil {
				return err
			}
			return a.render(cmd, &domain.Report{Schedule: schedule})
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&monthlyIncome, "monthly-income", "0", "income for each remaining month")
	cmd.Flags().StringSliceVar(&incomes, "incomes", nil, "per-month income overrides, in month order")
	return cmd
}

func newBracketsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "brackets",
		Short: "Print the cumulative withholding bracket table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprintln(tw, "Level\tOver (yearly)\tRate\tQuick deduction\t")
			rows := lo.Map(calculation.Brackets(), func(b domain.TaxBracket, _ int) string {
				return fmt.Sprintf("%d\t%s\t%s\t%s\t", b.Level, output.FormatCurrency(b.Threshold), output.FormatRate(b.Rate), output.FormatCurrency(b.QuickDeduction))
			})
			for _, row := range rows {
				fmt.Fprintln(tw, row)
			}
			return tw.Flush()
		},
	}
}

func newExampleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "example",
		Short: "Print an example batch file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := yaml.Marshal(config.CreateExampleBatch())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the withholding JSON API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := a.inputDefaults(); err != nil {
				return err
			}
			defaults := func() config.Defaults {
				def, _ := a.inputDefaults()
				return def
			}
			h := server.NewHandler(a.engine, defaults, a.logger, a.settings.Server.MaxBodyBytes, version)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.Serve(ctx, a.settings.Server.Address, h, a.logger)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	return cmd
}
