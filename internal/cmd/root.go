package cmd

import (
	"strings"

	"github.com/Iron-Ham/foreman/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "foreman",
	Short: "Multi-agent shared-backlog coordinator",
	Long: `Foreman coordinates multiple independent agent processes sharing a
single task backlog stored as flat files on a shared filesystem. Agents
atomically claim unclaimed work, release it on completion, heartbeat to
prove liveness, and abandoned claims are reclaimed automatically.

Coordination state lives under a single root directory (default
.foreman/coordination) and is serialized with advisory file locks, so
correctness depends on a POSIX-compliant shared filesystem.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.config/foreman/config.yaml)")
	rootCmd.PersistentFlags().String("root", "", "coordination root directory (overrides paths.coordination_dir)")
	rootCmd.PersistentFlags().BoolVar(&agentOutput, "agent-output", false, "emit machine-readable single-line JSON")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("paths.coordination_dir", rootCmd.PersistentFlags().Lookup("root"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/foreman")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FOREMAN")
	// Replace dots with underscores for nested keys in env vars
	// e.g., FOREMAN_LOCK_TIMEOUT_SECS for lock.timeout_secs
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}
