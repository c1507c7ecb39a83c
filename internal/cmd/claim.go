package cmd

import (
	"fmt"

	"github.com/Iron-Ham/foreman/internal/claim"
	"github.com/spf13/cobra"
)

var claimCmd = &cobra.Command{
	Use:   "claim",
	Short: "Atomically claim the next eligible task",
	Long: `Claim selects the highest-priority unclaimed task whose dependencies
are all done, matching any provided filters, and assigns it to this agent.

Selection and assignment run as one pass under the registry lock; the
per-task lock record is created with create-exclusive semantics, so two
racing agents can never claim the same task. Finding nothing claimable is
a normal outcome, not an error.`,
	RunE: runClaim,
}

var (
	claimCapability string
	claimSkillLevel string
	claimAny        bool
)

func init() {
	claimCmd.Flags().StringVar(&claimCapability, "capability", "", "Only claim tasks tagged with this capability")
	claimCmd.Flags().StringVar(&claimSkillLevel, "skill-level", "", "Only claim tasks whose declared skill level matches")
	claimCmd.Flags().BoolVar(&claimAny, "any", false, "Consider tasks in registry order instead of by priority")
	rootCmd.AddCommand(claimCmd)
}

func runClaim(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	task, err := env.engine().Claim(claim.Request{
		AgentID:    env.agentID,
		Capability: claimCapability,
		SkillLevel: claimSkillLevel,
		Any:        claimAny,
	})
	if err != nil {
		env.log.Error("claim failed", "error", err.Error())
		return err
	}

	if task == nil {
		env.log.Debug("no eligible task")
		if agentOutput {
			return printJSON(map[string]string{"status": "no_eligible_task"})
		}
		fmt.Println("No eligible tasks available")
		return nil
	}

	env.log.Info("claimed task", "task_id", task.ID, "priority", task.Priority.String())
	if err := env.coordLog().Append(env.agentID, fmt.Sprintf("claimed task %s", task.ID)); err != nil {
		return err
	}

	if agentOutput {
		return printJSON(task)
	}
	fmt.Printf("Claimed task %s: %s\n", task.ID, task.Title)
	return nil
}
