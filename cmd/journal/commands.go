package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"trade-journal-go/internal/snapshot"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the store location and row counts per table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			counts, err := a.repos.Counts()
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "database\t%s\n", a.cfg.Database.DSN)
			fmt.Fprintf(w, "trades\t%d\n", counts.Trades)
			fmt.Fprintf(w, "forecasts\t%d\n", counts.Forecasts)
			fmt.Fprintf(w, "market data\t%d\n", counts.MarketData)
			fmt.Fprintf(w, "strategies\t%d\n", counts.Strategies)
			fmt.Fprintf(w, "signals\t%d\n", counts.Signals)
			return w.Flush()
		},
	}
}

func newSampleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sample",
		Short: "Add a sample trade and forecast",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tradeID, forecastID, err := a.repos.AddSampleData()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added trade %d and forecast %d\n", tradeID, forecastID)
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var (
		outPath string
		format  string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every table to a snapshot file",
		Long: `Export writes all trades, forecasts, market data, strategies and signals
to a single snapshot document. Without --out the file is named after the
export time in the current directory; --out - writes to stdout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format == "" {
				if outPath != "" && outPath != "-" {
					format = string(snapshot.FormatFromPath(outPath))
				} else {
					format = a.cfg.Export.Format
				}
			}
			f, err := snapshot.ParseFormat(format)
			if err != nil {
				return err
			}

			s, err := a.repos.Export()
			if err != nil {
				return err
			}

			if outPath == "-" {
				return snapshot.Encode(cmd.OutOrStdout(), s, f)
			}
			if outPath == "" {
				outPath = snapshot.FileName(s.ExportDate, f)
			}

			file, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			if err := snapshot.Encode(file, s, f); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			a.log.Info("Snapshot written", zap.String("path", outPath), zap.String("format", string(f)))
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", s.Len(), outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, - for stdout")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension or export.format)")

	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a snapshot file into the journal",
		Long: `Import inserts every row of a snapshot, keeping its ids. The import is
all-or-nothing: an invalid row or an id that already exists aborts it
without changing the journal. Tables absent from the snapshot are left alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := snapshot.FormatFromPath(path)
			if format != "" {
				var err error
				if f, err = snapshot.ParseFormat(format); err != nil {
					return err
				}
			}

			file, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open snapshot: %w", err)
			}
			defer file.Close()

			s, err := snapshot.Decode(file, f)
			if err != nil {
				return err
			}
			if err := a.repos.Import(s); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d rows from %s\n", s.Len(), path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension)")

	return cmd
}

func newClearCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every row of every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return errors.New("refusing to clear the journal without --yes")
			}
			if err := a.repos.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "journal cleared")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")

	return cmd
}

func newPruneCmd(a *app) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete market data older than the retention window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.cfg.Retention.DaysToKeep
			}
			n, err := a.repos.MarketData.PruneOlderThan(days)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pruned %d market data rows older than %d days\n", n, days)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "days of market data to keep (default retention.days_to_keep)")

	return cmd
}
