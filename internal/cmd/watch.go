package cmd

import (
	"fmt"

	"github.com/Iron-Ham/foreman/internal/errors"
	"github.com/Iron-Ham/foreman/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Live view of the work registry",
	Long: `Watch renders the registry as a table that refreshes as other agents
claim and release work. Requires an initialized coordination root.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if !env.layout.Exists() {
		return fmt.Errorf("%w: %s (run 'foreman init')", errors.ErrNotInitialized, env.layout.Root)
	}

	return watch.Run(env.layout)
}
