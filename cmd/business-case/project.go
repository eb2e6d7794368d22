package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iwvelando/business-case/internal/metrics"
	"github.com/iwvelando/business-case/internal/projection"
	"github.com/iwvelando/business-case/internal/report"
	"github.com/iwvelando/business-case/internal/sensitivity"
	"github.com/iwvelando/business-case/pkg/format"
	"github.com/iwvelando/business-case/pkg/output"
	"github.com/iwvelando/business-case/pkg/validation"
)

func newProjectCmd(a *app) *cobra.Command {
	var outputFormat, outputPath string

	cmd := &cobra.Command{
		Use:   "project [business-file]",
		Short: "Project a business case and report its metrics",
		Long: `Generate the monthly projection of a business case, aggregate its metrics
and render the report. Without a file the stored business case is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.businessData(cmd, args)
			if err != nil {
				return err
			}

			if outputFormat == "" {
				outputFormat = a.cfg.Output.Format
			}
			if err := validation.ValidateOutputFormat(outputFormat); err != nil {
				return err
			}

			for _, warning := range validation.ValidateBusinessData(d).Warnings {
				a.logger.Warn("Business case warning: "+warning,
					zap.String("op", "main.project"),
				)
			}

			records := projection.NewEngine(a.logger).Generate(d)
			m := metrics.Calculate(records, a.metricsOptions())
			r := report.Build(d, records, m)

			w, done, err := outputWriter(cmd, outputPath)
			if err != nil {
				return err
			}
			if err := output.Write(w, r, outputFormat); err != nil {
				_ = done()
				return err
			}
			return done()
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "", "output format override: table, csv, markdown, html, json, xlsx")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the report to a file instead of stdout")
	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [business-file]",
		Short: "Check a business case for structural problems",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.businessData(cmd, args)
			if err != nil {
				return err
			}
			findings := validation.ValidateBusinessData(d)
			out := cmd.OutOrStdout()
			printFindings(out, "error", findings.Errors)
			printFindings(out, "warning", findings.Warnings)
			printFindings(out, "suggestion", findings.Suggestions)
			if findings.Empty() {
				_, _ = fmt.Fprintln(out, "No findings.")
			}
			if !findings.Valid() {
				return eris.Errorf("business case has %d error(s)", len(findings.Errors))
			}
			return nil
		},
	}
}

func newSensitivityCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "sensitivity [business-file]",
		Short: "Evaluate the business case drivers",
		Long: `Re-run the projection for every value in the range of every driver and
report the resulting revenue, NPV and break-even against the baseline.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.businessData(cmd, args)
			if err != nil {
				return err
			}
			runner := sensitivity.NewRunner(a.logger, a.cfg.Sensitivity.Concurrency, a.metricsOptions())
			result, err := runner.Run(cmd.Context(), d)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}

			currency := d.Meta.Currency
			t := table.NewWriter()
			t.SetTitle("Sensitivity (baseline NPV %s)", format.Currency(result.Baseline.NPV, currency))
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Driver", "Value", "Total revenue", "NPV", "Change in NPV", "Break-even"})
			for _, dr := range result.Drivers {
				if dr.Error != "" {
					t.AppendRow(table.Row{dr.Key, "invalid path: " + dr.Path, "", "", "", ""})
					continue
				}
				for _, p := range dr.Points {
					breakEven := fmt.Sprintf("Month %d", p.BreakEvenMonth)
					if !p.BreakEvenReached {
						breakEven = "Not reached"
					}
					t.AppendRow(table.Row{
						dr.Key,
						p.ValueDisplay,
						format.Currency(p.TotalRevenue, currency),
						format.Currency(p.NPV, currency),
						format.Currency(p.DeltaNPV, currency),
						breakEven,
					})
				}
			}
			t.SetColumnConfigs([]table.ColumnConfig{
				{Number: 3, Align: text.AlignRight},
				{Number: 4, Align: text.AlignRight},
				{Number: 5, Align: text.AlignRight},
			})
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printFindings(w io.Writer, kind string, findings []string) {
	for _, f := range findings {
		_, _ = fmt.Fprintf(w, "%s: %s\n", kind, f)
	}
}

// outputWriter returns stdout, or a created file when path is set. done
// closes the file.
func outputWriter(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create %s", path)
	}
	return f, f.Close, nil
}
