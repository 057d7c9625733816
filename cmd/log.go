package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alantheprice/pagewright/pkg/config"
	"github.com/alantheprice/pagewright/pkg/history"
	"github.com/alantheprice/pagewright/pkg/prompts"
	"github.com/alantheprice/pagewright/pkg/ui"
)

var (
	logDiff     string
	logRollback string
	logFile     string
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Committed revision history and rollback",
	Long: `Log lists every committed mutation: what kind it was, the change type
that drove it, and the instruction behind it. --diff shows one revision's
change; --rollback restores the document to the state before a revision and
writes it back to the template file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker := history.NewTracker(config.ConfigDirName)

		if logDiff != "" {
			rev, err := tracker.Get(logDiff)
			if err != nil {
				return err
			}
			ui.Out().Print(rev.Summary() + "\n")
			ui.Out().Print(rev.Diff() + "\n")
			return nil
		}

		if logRollback != "" {
			target := pickTemplate(logFile)
			if target == "" {
				return fmt.Errorf("rollback needs a template file; pass --file")
			}
			current, err := os.ReadFile(target)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", target, err)
			}
			restored, err := tracker.Rollback(logRollback, string(current))
			if err != nil {
				return err
			}
			if err := os.WriteFile(target, []byte(restored), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", target, err)
			}
			ui.Out().Print(prompts.RollbackComplete(logRollback) + "\n")
			return nil
		}

		revisions, err := tracker.List()
		if err != nil {
			return err
		}
		if len(revisions) == 0 {
			ui.Out().Print(prompts.HistoryEmpty() + "\n")
			return nil
		}
		for _, rev := range revisions {
			ui.Out().Print(rev.Summary() + "\n")
		}
		return nil
	},
}

func init() {
	logCmd.Flags().StringVar(&logDiff, "diff", "", "show the change of one revision")
	logCmd.Flags().StringVar(&logRollback, "rollback", "", "restore the document to before a revision")
	logCmd.Flags().StringVarP(&logFile, "file", "f", "", "template file for rollback")
}
