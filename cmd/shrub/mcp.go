package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/denizsokullu/redux-shrub/pkg/adapters/file"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/mcp"
	"github.com/denizsokullu/redux-shrub/pkg/adapters/memory"
	"github.com/denizsokullu/redux-shrub/pkg/ports"
	"github.com/denizsokullu/redux-shrub/pkg/session"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <manifest>",
	Short: "Serve sessions as Model Context Protocol tools",
	Long: `Exposes dispatch, get_state, select, reset_session and list_actions as MCP tools,
plus the shrub://catalog resource. Stdio is the default transport; use --transport sse
to listen over HTTP.`,
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
		srv := mcp.NewServer(manager, provider, mcp.WithLogger(logger))

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			return srv.ServeStdio()
		case "sse":
			port, _ := cmd.Flags().GetInt("port")
			addr := fmt.Sprintf(":%d", port)
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return srv.ServeSSE(ctx, addr, fmt.Sprintf("http://localhost:%d", port))
		default:
			return fmt.Errorf("unknown transport %q (want stdio or sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "Transport: stdio or sse")
	mcpCmd.Flags().Int("port", 8080, "Port for the sse transport")
	mcpCmd.Flags().String("dir", "", "Persist sessions as files under this directory")
}
