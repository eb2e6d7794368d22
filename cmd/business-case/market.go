package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/iwvelando/business-case/internal/market"
	"github.com/iwvelando/business-case/pkg/format"
)

func newMarketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "market",
		Short: "Work with market analysis documents",
	}
	cmd.AddCommand(
		newMarketVolumeCmd(a),
		newMarketMergeCmd(a),
		newMarketTemplateCmd(),
		newMarketModulesCmd(a),
	)
	return cmd
}

func newMarketVolumeCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "volume <market-file>",
		Short: "Derive the projected customer volume from a market analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := a.marketData(cmd, args[0])
			if err != nil {
				return err
			}
			estimate := market.ExtractVolume(md)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), estimate)
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Projected volume: %s\n", format.Number(estimate.ProjectedVolume, 0))
			_, _ = fmt.Fprintf(out, "Confidence: %s (%.2f)\n", estimate.ConfidenceLevel, estimate.ConfidenceScore)
			_, err = fmt.Fprintf(out, "Rationale: %s\n", estimate.Rationale)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the estimate as JSON")
	return cmd
}

func newMarketMergeCmd(a *app) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "merge <existing-file> <incoming-file>",
		Short: "Merge a partial market analysis into an existing one",
		Long: `Merge replaces each top-level module present in the incoming document and
keeps every module it does not mention.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			existing, err := a.marketData(cmd, args[0])
			if err != nil {
				return err
			}
			incoming, err := a.marketData(cmd, args[1])
			if err != nil {
				return err
			}
			w, done, err := outputWriter(cmd, outputPath)
			if err != nil {
				return err
			}
			if err := writeJSON(w, market.Merge(existing, incoming)); err != nil {
				_ = done()
				return err
			}
			return done()
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "write the merged document to a file instead of stdout")
	return cmd
}

func newMarketTemplateCmd() *cobra.Command {
	var modules []string
	var encoding string

	cmd := &cobra.Command{
		Use:   "template",
		Short: "Print a fill-in template for the selected market modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := market.Template(modules, encoding)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(out, '\n'))
			return err
		},
	}

	cmd.Flags().StringSliceVarP(&modules, "module", "m", nil, "module to include (repeatable, default all)")
	cmd.Flags().StringVarP(&encoding, "encoding", "e", market.TemplateJSON, "template encoding: json or yaml")
	return cmd
}

func newMarketModulesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "modules <market-file>",
		Short: "List the modules present in a market analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := a.marketData(cmd, args[0])
			if err != nil {
				return err
			}
			modules := market.AvailableModules(md)
			if len(modules) == 0 {
				return eris.New("market analysis holds no modules")
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), strings.Join(modules, "\n"))
			return err
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(v), "encode json")
}
