package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/iwvelando/business-case/internal/business"
	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/internal/sourcing"
	"github.com/iwvelando/business-case/internal/state"
	"github.com/iwvelando/business-case/pkg/format"
)

func newImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import documents into the stored working state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "business <file>",
		Short: "Replace the stored business case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			raw, f, err := a.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			d, err := store.ImportBusinessData(cmd.Context(), raw, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Imported business case %q (%s).\n", d.Meta.Title, d.Meta.BusinessModel)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "market <file>",
		Short: "Merge a market analysis into the stored one",
		Long: `Modules present in the file replace the stored ones. Segment volumes that
were taken from the market analysis are marked stale.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			raw, f, err := a.readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			md, err := store.ImportMarketData(cmd.Context(), raw, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Market analysis now holds %d module(s).\n", len(market.AvailableModules(md)))
			return err
		},
	})
	return cmd
}

func newSyncCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Move customer volumes between the market analysis and the business case",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "transfer <segment-id>",
		Short: "Use the market-derived volume for a customer segment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			result, err := store.TransferMarketVolume(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			if !result.Success {
				return eris.New("transfer failed")
			}
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "switch <segment-id> <source>",
		Short: "Make another held source the active one",
		Long:  "Sources: user_input, market_analysis, external_api, imported.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := sourcing.SourceType(args[1])
			if !source.Valid() {
				return eris.Errorf("unknown source %q", args[1])
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.SwitchSegmentSource(cmd.Context(), args[0], source); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Segment %q now uses %s.\n", args[0], source)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resync <segment-id>",
		Short: "Refresh a market-sourced volume from the current market analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.ResyncSegment(cmd.Context(), args[0]); err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Segment %q resynced.\n", args[0])
			return err
		},
	})

	var alignJSON bool
	align := &cobra.Command{
		Use:   "align <segment-id>",
		Short: "Compare a segment volume with the current market analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			result, err := store.SegmentAlignment(args[0])
			if err != nil {
				return err
			}
			if alignJSON {
				return writeJSON(cmd.OutOrStdout(), result)
			}
			status := "aligned"
			if !result.IsAligned {
				status = "not aligned"
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: stored %s, market %s, variance %s\n%s\n",
				status,
				format.Number(result.StoredValue, 0),
				format.Number(result.MarketValue, 0),
				format.Percentage(result.VariancePct),
				result.Recommendation,
			)
			return err
		},
	}
	align.Flags().BoolVar(&alignJSON, "json", false, "print the result as JSON")
	cmd.AddCommand(align)

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the data source of every customer segment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Segment", "Label", "Volume", "Source", "Status"})
			for _, s := range store.SegmentStatuses() {
				source, status := string(s.ActiveSource), string(s.SyncStatus)
				if source == "" {
					source = "-"
				}
				if status == "" {
					status = "-"
				}
				t.AppendRow(table.Row{s.SegmentID, s.Label, format.Value(s.Value, s.Unit), source, status})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	})
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Update one assumption of the stored business case",
		Example: `  business-case set assumptions.pricing.avg_unit_price.value 65
  business-case set "assumptions.customers.segments[0].volume.series[0].value" 1200`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return eris.Wrapf(err, "invalid value %q", args[1])
			}
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if store.BusinessData() == nil {
				return eris.New("no business case loaded; run import business first")
			}
			return store.UpdateAssumption(cmd.Context(), args[0], v)
		},
	}
}

func newDriverCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "driver",
		Short: "Manage the sensitivity drivers of the stored business case",
	}

	var driver business.Driver
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a driver",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if store.BusinessData() == nil {
				return eris.New("no business case loaded; run import business first")
			}
			return store.AddDriver(cmd.Context(), driver)
		},
	}
	add.Flags().StringVar(&driver.Key, "key", "", "driver key (required)")
	add.Flags().StringVar(&driver.Path, "path", "", "assumption path the driver varies (required)")
	add.Flags().Float64SliceVar(&driver.Range, "range", nil, "values to evaluate, e.g. 40,50,60")
	add.Flags().StringVar(&driver.Rationale, "rationale", "", "why the range was chosen")
	add.Flags().StringVar(&driver.Unit, "unit", "", "unit of the driver values")
	_ = add.MarkFlagRequired("key")
	_ = add.MarkFlagRequired("path")

	remove := &cobra.Command{
		Use:   "remove <key>",
		Short: "Remove a driver",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			return store.RemoveDriver(cmd.Context(), args[0])
		},
	}

	cmd.AddCommand(add, remove)
	return cmd
}

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Save and reopen snapshots of the working state",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "save <name>",
		Short: "Save the working state under a name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			p, err := store.SaveProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Saved project %q (%s).\n", p.ProjectName, p.ProjectID)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List saved projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			t := table.NewWriter()
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"ID", "Name", "Model", "Last modified"})
			for _, p := range store.ListProjects() {
				t.AppendRow(table.Row{p.ProjectID, p.ProjectName, p.Metadata[state.MetadataBusinessModel], p.LastModified.Format("2006-01-02 15:04")})
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), t.Render())
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "open <id>",
		Short: "Replace the working state with a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			p, err := store.OpenProject(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Opened project %q.\n", p.ProjectName)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			return store.DeleteProject(cmd.Context(), args[0])
		},
	})
	return cmd
}

func newModeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mode [business|market]",
		Short: "Show or set the active tool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.openStore(cmd)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				mode := state.Mode(args[0])
				if !mode.Valid() {
					return eris.Errorf("unknown mode %q", args[0])
				}
				if err := store.SetMode(cmd.Context(), mode); err != nil {
					return err
				}
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), store.Mode())
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "business-case %s\n", Version)
		},
	}
}
