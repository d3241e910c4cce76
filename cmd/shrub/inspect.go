package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/internal/presentation/graph"
	"github.com/denizsokullu/redux-shrub/internal/presentation/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <manifest>",
	Short: "List the action types and selectors of a tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := loggerFromFlags(cmd)
		if err != nil {
			return err
		}
		provider, err := loadProvider(cmd, args[0], logger)
		if err != nil {
			return err
		}
		format, _ := cmd.Flags().GetString("format")
		return inspect(cmd.OutOrStdout(), provider, format)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().StringP("format", "f", formatTable, "Output format: table, json, markdown or mermaid")
}

const (
	formatTable    = "table"
	formatJSON     = "json"
	formatMarkdown = "markdown"
	formatMermaid  = "mermaid"
)

type inspection struct {
	Actions   []actionRow `json:"actions"`
	Selectors []string    `json:"selectors"`
}

type actionRow struct {
	Type    string            `json:"type"`
	Path    string            `json:"path"`
	Payload map[string]string `json:"payload,omitempty"`
}

func inspect(w io.Writer, p *shrub.Provider, format string) error {
	if format == formatMermaid {
		_, err := io.WriteString(w, graph.GenerateMermaid(p.Root(), nil))
		return err
	}

	var out inspection
	for _, t := range p.ActionTypes() {
		row := actionRow{Type: t}
		row.Path, _ = p.ActionPath(t)
		if s, ok := p.PayloadSchema(t); ok {
			row.Payload = s.TypeMap()
		}
		out.Actions = append(out.Actions, row)
	}
	out.Selectors = p.SelectorNames()

	switch format {
	case formatTable:
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	case formatMarkdown:
		return writeMarkdown(w, out)
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ACTION\tPATH\tPAYLOAD")
	for _, row := range out.Actions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", row.Type, row.Path, formatPayload(row.Payload))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "SELECTORS")
	for _, name := range out.Selectors {
		fmt.Fprintln(tw, name)
	}
	return tw.Flush()
}

// writeMarkdown renders through glamour when w is a terminal.
func writeMarkdown(w io.Writer, out inspection) error {
	var sb strings.Builder
	sb.WriteString("# Actions\n\n| Type | Path | Payload |\n|---|---|---|\n")
	for _, row := range out.Actions {
		path := row.Path
		if path == "" {
			path = "(root)"
		}
		fmt.Fprintf(&sb, "| `%s` | `%s` | %s |\n", row.Type, path, formatPayload(row.Payload))
	}
	sb.WriteString("\n# Selectors\n\n")
	for _, name := range out.Selectors {
		fmt.Fprintf(&sb, "- `%s`\n", name)
	}

	doc := sb.String()
	if tui.IsTerminal(w) {
		render, err := tui.NewRenderer()
		if err != nil {
			return err
		}
		if doc, err = render(doc); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, doc)
	return err
}

func formatPayload(fields map[string]string) string {
	if len(fields) == 0 {
		return "-"
	}
	data, _ := json.Marshal(fields)
	return strings.ReplaceAll(string(data), `"`, "")
}
