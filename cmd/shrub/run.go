package main

import (
	"github.com/spf13/cobra"

	"github.com/denizsokullu/redux-shrub/internal/presentation/tui"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/file"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/memory"
	"github.com/denizsokullu/redux-shrub/pkg/ports"
	"github.com/denizsokullu/redux-shrub/pkg/runner"
	"github.com/denizsokullu/redux-shrub/pkg/session"
)

var runCmd = &cobra.Command{
	Use:   "run <manifest>",
	Short: "Drive one session interactively",
	Long: `Reads commands from stdin and applies them to a session.
Text mode takes "TYPE {payload}" lines and :state, :select, :reset and :quit.
With --json every line is a JSON object and every result is written as one JSON line.
With --dir the session is persisted and can be resumed.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		provider, err := loadProvider(cmd, args[0], logger)
		if err != nil {
			return err
		}

		var store ports.SnapshotStore = memory.NewStore()
		if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
			store = file.New(dir)
		}
		manager := session.NewManager(provider, store, session.WithLogger(logger))

		var handler runner.IOHandler
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			handler = runner.NewJSONHandler(cmd.InOrStdin(), cmd.OutOrStdout())
		} else {
			text := runner.NewTextHandler(cmd.InOrStdin(), cmd.OutOrStdout())
			if tui.IsTerminal(cmd.OutOrStdout()) {
				text.Prompt = "> "
			}
			handler = text
		}

		sessionID, _ := cmd.Flags().GetString("session")
		r := runner.New(manager, provider,
			runner.WithHandler(handler),
			runner.WithLogger(logger),
			runner.WithSessionID(sessionID),
		)
		return r.Run(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().String("session", runner.DefaultSessionID, "Session to drive")
	runCmd.Flags().String("dir", "", "Persist the session as a file under this directory")
	runCmd.Flags().Bool("json", false, "Speak JSON Lines instead of text")
}
