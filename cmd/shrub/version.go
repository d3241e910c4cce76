package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	shrub "github.com/denizsokullu/redux-shrub"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of shrub",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "shrub version %s\n", strings.TrimSpace(shrub.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
