package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/pkg/domain"
)

var reduceCmd = &cobra.Command{
	Use:   "reduce <manifest> <actions.json>",
	Short: "Fold a list of actions over the initial state and print the result",
	Long: `Reads a JSON array of actions ({"type": ..., "payload": ...}) and applies them in order.
Use "-" to read the actions from stdin. With --state the fold starts from a saved state instead.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		provider, err := loadProvider(cmd, args[0], logger)
		if err != nil {
			return err
		}

		actions, err := readActions(cmd.InOrStdin(), args[1])
		if err != nil {
			return err
		}

		var initial any
		if statePath, _ := cmd.Flags().GetString("state"); statePath != "" {
			data, err := os.ReadFile(statePath)
			if err != nil {
				return fmt.Errorf("failed to read state: %w", err)
			}
			if initial, err = provider.FromJSON(data); err != nil {
				return err
			}
		}

		var trace io.Writer
		if verbose, _ := cmd.Flags().GetBool("trace"); verbose {
			trace = cmd.ErrOrStderr()
		}
		final, err := fold(provider, initial, actions, trace)
		if err != nil {
			return err
		}
		return printState(cmd.OutOrStdout(), provider, final)
	},
}

func init() {
	rootCmd.AddCommand(reduceCmd)
	reduceCmd.Flags().String("state", "", "JSON file holding the state to start from")
	reduceCmd.Flags().Bool("trace", false, "Print the changed paths of every action to stderr")
}

func readActions(stdin io.Reader, path string) ([]domain.Action, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read actions: %w", err)
	}

	var actions []domain.Action
	if err := json.Unmarshal(data, &actions); err != nil {
		return nil, fmt.Errorf("failed to parse actions: %w", err)
	}
	return actions, nil
}

// fold applies actions in order, stopping at the first failure.
func fold(p *shrub.Provider, state any, actions []domain.Action, trace io.Writer) (any, error) {
	for i, action := range actions {
		next, err := p.Reduce(state, action)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		if trace != nil {
			if !p.Handles(action.Type) {
				fmt.Fprintf(trace, "%d %s: unknown type, ignored\n", i, action.Type)
			} else {
				fmt.Fprintf(trace, "%d %s: %v\n", i, action.Type, domain.Diff(state, next))
			}
		}
		state = next
	}
	return state, nil
}

func printState(w io.Writer, p *shrub.Provider, state any) error {
	data, err := p.ToJSON(state)
	if err != nil {
		return err
	}
	var pretty any
	if err := json.Unmarshal(data, &pretty); err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pretty)
}
