package cli

import (
	"fmt"

	"xsim/internal/history"
	"xsim/internal/model"
	"xsim/internal/report"

	"github.com/spf13/cobra"
)

func newSummaryCmd(opts *globalOptions) *cobra.Command {
	var (
		limit int
		names bool
	)

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the last session summary and recent history as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			w := report.NewMarkdownWriter(out)

			p := opts.prefs()
			if sum, ok := p.LastSummary(); ok {
				var labels report.CategoryNames
				if names {
					labels = fetchCategoryNames(cmd, opts)
				}
				if err := w.WriteSummary(sum, labels); err != nil {
					return fmt.Errorf("failed to write summary: %w", err)
				}
			} else {
				fmt.Fprintln(out, "No session has been completed yet.")
				fmt.Fprintln(out)
			}

			if limit <= 0 {
				return nil
			}
			store, err := history.Open(opts.dataDir)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			sessions := make([]model.Summary, 0, len(entries))
			for _, e := range entries {
				sessions = append(sessions, e.Summary)
			}
			if err := w.WriteHistory(sessions); err != nil {
				return fmt.Errorf("failed to write history: %w", err)
			}

			totals, err := store.Totals(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d sessions, mean efficiency %.1f%%, %d credit minutes\n",
				totals.Sessions, totals.MeanEfficiency, totals.TotalCredit)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "history", 10, "number of past sessions to list (0 to skip)")
	cmd.Flags().BoolVar(&names, "names", false, "fetch category names from the service")
	return cmd
}

// fetchCategoryNames returns nil when the service cannot be reached.
func fetchCategoryNames(cmd *cobra.Command, opts *globalOptions) report.CategoryNames {
	cfg, logger, err := opts.setup(cmd)
	if err != nil {
		return nil
	}
	cats, err := opts.client(cfg, opts.prefs(), logger).Categories(cmd.Context())
	if err != nil {
		logger.Warn("failed to fetch categories", "error", err)
		return nil
	}
	names := make(report.CategoryNames, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names
}
