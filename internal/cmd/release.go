package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var releaseCmd = &cobra.Command{
	Use:   "release <task_id>",
	Short: "Mark a claimed task done and drop its lock record",
	Long: `Release completes a task this agent holds. Only the recorded claimant
may release a task; anyone else fails without touching the registry.`,
	Args: cobra.ExactArgs(1),
	RunE: runRelease,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
}

func runRelease(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.engine().Release(taskID, env.agentID); err != nil {
		env.log.Error("release failed", "task_id", taskID, "error", err.Error())
		return err
	}

	env.log.Info("released task", "task_id", taskID)
	if err := env.coordLog().Append(env.agentID, fmt.Sprintf("completed task %s", taskID)); err != nil {
		return err
	}

	if agentOutput {
		return printJSON(actionResult{Status: "success", Action: "release", TaskID: taskID})
	}
	fmt.Printf("Released task %s\n", taskID)
	return nil
}
