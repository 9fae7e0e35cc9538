package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sadopc/schemahawk/internal/history"
	"github.com/sadopc/schemahawk/internal/report"
	"github.com/sadopc/schemahawk/internal/theme"
)

func newHistoryCmd(f *flags) *cobra.Command {
	var (
		limit int
		wipe  bool
	)
	cmd := &cobra.Command{
		Use:   "history [database]",
		Short: "List past analysis runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f, nil)
			if err != nil {
				return err
			}
			path, err := cfg.HistoryPath()
			if err != nil {
				return err
			}
			h, err := history.Open(path)
			if err != nil {
				return err
			}
			defer h.Close()

			out := cmd.OutOrStdout()
			if wipe {
				if err := h.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(out, "History cleared.")
				return nil
			}

			var runs []history.Run
			if len(args) > 0 {
				runs, err = h.ForDatabase(args[0], limit)
			} else {
				runs, err = h.Recent(limit)
			}
			if err != nil {
				return err
			}

			switch cfg.Report.Format {
			case "yaml":
				return report.WriteYAML(out, runs)
			case "json":
				return report.WriteJSON(out, runs)
			}
			report.New(out, theme.Get(cfg.Report.Theme), "").History(runs)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")
	cmd.Flags().BoolVar(&wipe, "clear", false, "Delete every recorded run")
	return cmd
}
