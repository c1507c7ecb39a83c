package cmd

import (
	"fmt"
	"os"

	"github.com/Iron-Ham/foreman/internal/registry"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Scaffold the coordination root directory",
	Long: `Init creates the coordination directory tree (lock records,
heartbeats, guard locks) and an empty work registry if one does not
already exist. Safe to run repeatedly.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.layout.Ensure(); err != nil {
		return err
	}

	store := registry.NewStore(env.layout.RegistryPath())
	if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
		if err := store.Save(&registry.Snapshot{Tasks: []registry.WorkItem{}}); err != nil {
			return err
		}
	}

	if agentOutput {
		return printJSON(actionResult{Status: "success", Action: "init"})
	}
	fmt.Printf("Initialized coordination root at %s\n", env.layout.Root)
	return nil
}
