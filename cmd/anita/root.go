package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "anita",
	Short:         "Anita is the instructor backend: accounts, LMS connections, and conversation storage.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}
