package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexscout",
	Short: "Deep research for Korean lease contract review",
	Long: `Lexscout runs supervised deep research on Korean housing lease
contracts: a supervisor decomposes a review brief into parallel research
workers, each worker searches statutes, case law, and the web within a
bounded tool budget, and the findings are compressed into a cited report.

Typical flow:
  lexscout init                          # set up .lexscout in the project
  lexscout research "임차인 입장에서 ..."   # run a review (add --tui to watch)
  lexscout history                       # inspect past runs`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
