// Package graph renders state trees as diagrams.
package graph

import (
	"fmt"
	"strings"

	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// Overlay marks nodes to highlight, by dotted path ("todos.*.done").
type Overlay struct {
	Highlight []string
}

// GenerateMermaid produces a Mermaid flowchart of the tree under root.
// Shapes follow the node kind:
// - Root: ((Circle))
// - PolyBranch: [[Subroutine]]
// - Leaf: (Rounded)
// - Branch: [Rectangle]
// The edge from a collection to its template is dotted and labelled with the accessor.
func GenerateMermaid(root tree.Node, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	writeNode(&sb, root, "", true)

	if overlay != nil && len(overlay.Highlight) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef highlight fill:#ffeb3b,stroke:#fbc02d,stroke-width:3px,color:#000;\n")
		seen := make(map[string]bool)
		for _, p := range overlay.Highlight {
			id := sanitizeMermaidID(p)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			fmt.Fprintf(&sb, "    class %s highlight;\n", id)
		}
	}
	return sb.String()
}

func writeNode(sb *strings.Builder, n tree.Node, path string, isRoot bool) {
	id := nodeID(n, path, isRoot)

	opener, closer := "[", "]"
	switch {
	case isRoot:
		opener, closer = "((", "))"
	case n.Kind() == tree.KindPolyBranch:
		opener, closer = "[[", "]]"
	case n.Kind() == tree.KindLeaf:
		opener, closer = "(", ")"
	}
	fmt.Fprintf(sb, "    %s%s\"%s\"%s\n", id, opener, n.Slug(), closer)

	switch n := n.(type) {
	case *tree.Branch:
		for _, child := range n.Children() {
			childPath := child.Slug()
			if !isRoot {
				childPath = path + "." + child.Slug()
			}
			fmt.Fprintf(sb, "    %s --> %s\n", id, sanitizeMermaidID(childPath))
			writeNode(sb, child, childPath, false)
		}
	case *tree.PolyBranch:
		memberPath := path + ".*"
		if isRoot {
			memberPath = "*"
		}
		fmt.Fprintf(sb, "    %s -. \"%s\" .-> %s\n", id, strings.ReplaceAll(n.Accessor(), "\"", "'"), sanitizeMermaidID(memberPath))
		writeNode(sb, n.Template(), memberPath, false)
	}
}

func nodeID(n tree.Node, path string, isRoot bool) string {
	if isRoot {
		return sanitizeMermaidID(n.Slug())
	}
	return sanitizeMermaidID(path)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "*", "member")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	return s
}
