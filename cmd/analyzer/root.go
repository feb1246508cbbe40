package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"resume-match/internal/shared/telemetry"
)

const app = "resume-analyzer"

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "resume-analyzer scores resumes against job descriptions over HTTP",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if _, err := telemetry.Init(viper.GetBool("json"), viper.GetBool("debug")); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindEnv("debug", "LOG_DEBUG")
	_ = viper.BindEnv("json", "LOG_JSON")
}
