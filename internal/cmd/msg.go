package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var msgCmd = &cobra.Command{
	Use:   "msg <text>...",
	Short: "Append a message to the shared coordination log",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMsg,
}

func init() {
	rootCmd.AddCommand(msgCmd)
}

func runMsg(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	if err := env.coordLog().Append(env.agentID, strings.Join(args, " ")); err != nil {
		return err
	}

	if agentOutput {
		return printJSON(actionResult{Status: "success", Action: "msg"})
	}
	fmt.Println("Message logged")
	return nil
}
