package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var approveCmd = &cobra.Command{
	Use:   "approve <task_id>",
	Short: "Approve a task in review, marking it done",
	Long: `Approve consumes the review state: the task is marked done and this
agent is recorded as its reviewer. Tasks enter review through external
tooling; foreman itself never moves work into that state.`,
	Args: cobra.ExactArgs(1),
	RunE: runApprove,
}

func init() {
	rootCmd.AddCommand(approveCmd)
}

func runApprove(cmd *cobra.Command, args []string) error {
	taskID := args[0]

	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.engine().Approve(taskID, env.agentID); err != nil {
		env.log.Error("approve failed", "task_id", taskID, "error", err.Error())
		return err
	}

	env.log.Info("approved task", "task_id", taskID)

	if agentOutput {
		return printJSON(actionResult{Status: "success", Action: "approve", TaskID: taskID})
	}
	fmt.Printf("Approved task %s\n", taskID)
	return nil
}
