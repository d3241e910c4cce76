// Package validator checks tree manifests before they are compiled.
package validator

import (
	"fmt"
	"strings"

	shrub "github.com/denizsokullu/redux-shrub"
	"github.com/denizsokullu/redux-shrub/pkg/manifest"
	"github.com/denizsokullu/redux-shrub/pkg/registry"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

type pending struct {
	path string
	node *manifest.Node
}

// ValidateManifest crawls every declared node and reports all structural problems at once.
// A structurally sound manifest is then compiled, so name collisions are reported too.
// A nil registry means registry.Default().
func ValidateManifest(f *manifest.File, reg *registry.Registry) error {
	if reg == nil {
		reg = registry.Default()
	}

	var errors []string
	report := func(path, format string, args ...any) {
		errors = append(errors, fmt.Sprintf("%s: %s", displayPath(path), fmt.Sprintf(format, args...)))
	}

	if len(f.Nodes) == 0 {
		errors = append(errors, "manifest declares no nodes")
	}
	queue := siblings("", f.Nodes, report)

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		n := current.node

		switch n.NodeKind() {
		case tree.KindLeaf:
			if n.Type == "" {
				report(current.path, "leaf has no type")
			} else if _, err := reg.Leaf(n.Type, n.Initial); err != nil {
				report(current.path, "%v", err)
			}
			if len(n.Children) > 0 || n.Template != nil {
				report(current.path, "leaf cannot have children or a template")
			}

		case tree.KindBranch:
			if n.Type != "" || n.Seed != "" {
				report(current.path, "type and seed only apply to leaves")
			}
			queue = append(queue, siblings(current.path, n.Children, report)...)

		case tree.KindPolyBranch:
			if n.Accessor == "" {
				report(current.path, "poly has no accessor")
			}
			if n.Template == nil {
				report(current.path, "poly has no template")
			} else {
				queue = append(queue, pending{path: join(current.path, "*"), node: n.Template})
			}

		default:
			report(current.path, "unknown kind %q", n.Kind)
		}
	}

	if len(errors) == 0 {
		nodes, err := f.Build(reg)
		if err == nil {
			_, err = shrub.Compose(nodes)
		}
		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("found %d errors:\n- %s", len(errors), strings.Join(errors, "\n- "))
	}
	return nil
}

// siblings queues nodes under parent, reporting empty and duplicate slugs.
func siblings(parent string, nodes []manifest.Node, report func(path, format string, args ...any)) []pending {
	seen := make(map[string]bool, len(nodes))
	out := make([]pending, 0, len(nodes))
	for i := range nodes {
		slug := nodes[i].Slug
		if slug == "" {
			report(join(parent, fmt.Sprintf("[%d]", i)), "slug cannot be empty")
			continue
		}
		if seen[slug] {
			report(join(parent, slug), "duplicate sibling slug")
			continue
		}
		seen[slug] = true
		out = append(out, pending{path: join(parent, slug), node: &nodes[i]})
	}
	return out
}

func join(parent, slug string) string {
	if parent == "" {
		return slug
	}
	return parent + "." + slug
}

func displayPath(path string) string {
	if path == "" {
		return "(root)"
	}
	return path
}
