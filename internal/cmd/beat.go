package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var beatCmd = &cobra.Command{
	Use:   "beat",
	Short: "Refresh this agent's heartbeat",
	Long: `Beat touches this agent's heartbeat file. Agents run it on a cadence;
an agent silent longer than the liveness timeout has its claims reclaimed
by clean-stale. Heartbeats need no lock; each agent owns its own file.`,
	RunE: runBeat,
}

func init() {
	rootCmd.AddCommand(beatCmd)
}

func runBeat(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.heartbeats().Touch(env.agentID); err != nil {
		return err
	}

	if agentOutput {
		return printJSON(actionResult{Status: "success", Action: "beat", AgentID: env.agentID})
	}
	fmt.Printf("Heartbeat updated for agent %s\n", env.agentID)
	return nil
}
