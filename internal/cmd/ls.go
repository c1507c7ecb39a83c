package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List the work registry",
	RunE:  runLs,
}

var lsVerbose bool

func init() {
	lsCmd.Flags().BoolVarP(&lsVerbose, "verbose", "v", false, "Show claimants and blocked reasons")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	// Read under the registry lock so the listing is a consistent
	// snapshot even while claims are in flight.
	snap, err := env.engine().List()
	if err != nil {
		return err
	}

	if agentOutput {
		return printJSON(snap)
	}

	fmt.Printf("Work Registry (%d tasks):\n\n", len(snap.Tasks))
	for _, task := range snap.Tasks {
		fmt.Printf("  %s %s - %s (%s)\n", statusGlyph(task.Status), task.ID, task.Title, task.Priority)

		if lsVerbose {
			if task.ClaimedBy != "" {
				fmt.Printf("      Claimed by: %s\n", task.ClaimedBy)
			}
			if task.BlockedReason != "" {
				fmt.Printf("      Blocked: %s\n", task.BlockedReason)
			}
			if task.ReviewerID != "" {
				fmt.Printf("      Reviewed by: %s\n", task.ReviewerID)
			}
		}
	}
	return nil
}
