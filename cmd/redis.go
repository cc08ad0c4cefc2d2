package cmd

import (
	"github.com/spf13/cobra"
)

// redisCmd groups redis utility subcommands.
var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Redis utilities",
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
