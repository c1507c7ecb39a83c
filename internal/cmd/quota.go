package cmd

import (
	"fmt"

	"github.com/Iron-Ham/foreman/internal/quota"
	"github.com/spf13/cobra"
)

var quotaCmd = &cobra.Command{
	Use:   "quota",
	Short: "Show or update the shared usage counters",
	Long: `Quota reads the shared usage counters, or with --add increments the
token counter (and the request count by one). Updates run under the quota
lock, which is distinct from the registry lock so accounting never
contends with claims.`,
	RunE: runQuota,
}

var quotaAdd uint64

func init() {
	quotaCmd.Flags().Uint64Var(&quotaAdd, "add", 0, "Tokens to add to the shared counter")
	rootCmd.AddCommand(quotaCmd)
}

func runQuota(cmd *cobra.Command, args []string) error {
	env, err := newCoordEnv()
	if err != nil {
		return err
	}
	defer env.close()

	var rec quota.Record
	if cmd.Flags().Changed("add") {
		rec, err = env.quota().Add(quotaAdd)
	} else {
		rec, err = env.quota().Current()
	}
	if err != nil {
		return err
	}

	if agentOutput {
		return printJSON(rec)
	}

	fmt.Println("Quota Status:")
	fmt.Printf("  Tokens used: %d\n", rec.TokensUsed)
	fmt.Printf("  Requests: %d\n", rec.Requests)
	fmt.Printf("  Last reset: %s\n", rec.LastReset.Format("2006-01-02 15:04:05 MST"))
	return nil
}
