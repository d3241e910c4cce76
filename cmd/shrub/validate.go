package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/denizsokullu/redux-shrub/internal/validator"
	"github.com/denizsokullu/redux-shrub/pkg/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <manifest>",
	Short: "Check a manifest for consistency",
	Long:  `Crawls every declared node and reports all structural problems and name collisions at once.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := manifest.Load(args[0])
		if err != nil {
			return err
		}
		if err := validator.ValidateManifest(f, nil); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Manifest is valid")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
