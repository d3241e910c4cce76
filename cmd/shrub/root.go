package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/internal/logging"
	"github.com/denizsokullu/redux-shrub/pkg/manifest"
)

var rootCmd = &cobra.Command{
	Use:           "shrub",
	Short:         "shrub compiles declarative state trees into reducers and selectors",
	Long:          `shrub reads a tree manifest, compiles it and lets you inspect, fold or serve the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("last-write-wins", false, "Let later nodes shadow duplicated names instead of failing")
}

func loggerFromFlags(cmd *cobra.Command) (*slog.Logger, error) {
	levelName, _ := cmd.Flags().GetString("log-level")
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

// loadProvider compiles the manifest at path.
func loadProvider(cmd *cobra.Command, path string, logger *slog.Logger) (*shrub.Provider, error) {
	f, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	nodes, err := f.Build(nil)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}

	opts := []shrub.Option{shrub.WithLogger(logger)}
	if lww, _ := cmd.Flags().GetBool("last-write-wins"); lww {
		opts = append(opts, shrub.WithCollisionPolicy(shrub.CollisionLastWriteWins))
	}
	return shrub.Compose(nodes, opts...)
}
