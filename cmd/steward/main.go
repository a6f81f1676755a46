package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "steward",
		Short: "Project memory at your command",
		Long:  `Steward is a command-driven assistant that keeps projects, todos, notes, and architecture knowledge one slash command away.`,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (default ~/.steward/config.yaml)")

	rootCmd.AddCommand(
		newReplCmd(&cfgPath),
		newExecCmd(&cfgPath),
		newServeCmd(&cfgPath),
		newRemindCmd(&cfgPath),
		newInitCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
