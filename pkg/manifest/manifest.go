// Package manifest reads tree declarations from YAML or JSON files.
//
// A manifest names leaf kinds from a registry instead of carrying code, so a tree
// declared this way only uses the builtin leaf behaviors or ones registered by the host.
//
//	nodes:
//	  - slug: todos
//	    kind: poly
//	    accessor: id
//	    template:
//	      slug: todo
//	      kind: branch
//	      children:
//	        - {slug: title, type: string, seed: title}
//	        - {slug: done, type: bool, initial: false}
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/denizsokullu/redux-shrub/pkg/leaves"
	"github.com/denizsokullu/redux-shrub/pkg/registry"
	"github.com/denizsokullu/redux-shrub/pkg/tree"
)

// ErrInvalidManifest is returned for declarations that cannot describe a node.
var ErrInvalidManifest = errors.New("invalid manifest")

// Options mirrors tree.Options. Unset fields keep the node defaults.
type Options struct {
	SelfSelector         *bool `yaml:"self_selector" json:"self_selector"`
	SlugInChildSelectors bool  `yaml:"slug_in_child_selectors" json:"slug_in_child_selectors"`
	SlugInChildReducers  bool  `yaml:"slug_in_child_reducers" json:"slug_in_child_reducers"`
	JSONAction           bool  `yaml:"json_action" json:"json_action"`
}

// Node is one declared node.
type Node struct {
	Slug     string  `yaml:"slug" json:"slug"`
	Kind     string  `yaml:"kind" json:"kind"`
	Type     string  `yaml:"type" json:"type"`
	Initial  any     `yaml:"initial" json:"initial"`
	Seed     string  `yaml:"seed" json:"seed"`
	Accessor string  `yaml:"accessor" json:"accessor"`
	Options  Options `yaml:"options" json:"options"`
	Children []Node  `yaml:"children" json:"children"`
	Template *Node   `yaml:"template" json:"template"`
}

// File is the top-level manifest document.
type File struct {
	Nodes []Node `yaml:"nodes" json:"nodes"`
}

// Load reads a manifest file. Files ending in .json are read as JSON, anything else as YAML.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data, strings.ToLower(filepath.Ext(path)) == ".json")
}

// Parse decodes a manifest document.
func Parse(data []byte, isJSON bool) (*File, error) {
	var f File
	if isJSON {
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse manifest json: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to parse manifest yaml: %w", err)
		}
	}
	return &f, nil
}

// Build constructs the declared nodes. A nil registry means registry.Default().
func (f *File) Build(reg *registry.Registry) ([]tree.Node, error) {
	if reg == nil {
		reg = registry.Default()
	}
	nodes := make([]tree.Node, 0, len(f.Nodes))
	for i := range f.Nodes {
		n, err := f.Nodes[i].Build(reg)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

// Build constructs the node and its descendants.
func (n *Node) Build(reg *registry.Registry) (tree.Node, error) {
	opts := n.Options.treeOptions()

	switch kind := n.NodeKind(); kind {
	case tree.KindLeaf:
		if n.Type == "" {
			return nil, fmt.Errorf("%w: leaf %q has no type", ErrInvalidManifest, n.Slug)
		}
		b, err := reg.Leaf(n.Type, n.Initial)
		if err != nil {
			return nil, fmt.Errorf("leaf %q: %w", n.Slug, err)
		}
		if n.Seed != "" {
			b = leaves.Seeded(b, n.Seed)
		}
		return tree.NewLeaf(n.Slug, b, opts...)

	case tree.KindBranch:
		children := make([]tree.Node, 0, len(n.Children))
		for i := range n.Children {
			child, err := n.Children[i].Build(reg)
			if err != nil {
				return nil, err
			}
			children = append(children, child)
		}
		return tree.NewBranch(n.Slug, tree.BranchBehavior{}, children, opts...)

	case tree.KindPolyBranch:
		if n.Template == nil {
			return nil, fmt.Errorf("%w: poly %q has no template", ErrInvalidManifest, n.Slug)
		}
		template, err := n.Template.Build(reg)
		if err != nil {
			return nil, err
		}
		return tree.NewPolyBranch(n.Slug, tree.PolyBehavior{Accessor: n.Accessor}, template, opts...)

	default:
		return nil, fmt.Errorf("%w: node %q has unknown kind %q", ErrInvalidManifest, n.Slug, kind)
	}
}

// NodeKind is the declared kind, or branch when children are given, poly when a
// template is given and leaf otherwise.
func (n *Node) NodeKind() tree.Kind {
	switch {
	case n.Kind != "":
		return tree.Kind(n.Kind)
	case len(n.Children) > 0:
		return tree.KindBranch
	case n.Template != nil:
		return tree.KindPolyBranch
	}
	return tree.KindLeaf
}

func (o Options) treeOptions() []tree.Option {
	var opts []tree.Option
	if o.SelfSelector != nil && !*o.SelfSelector {
		opts = append(opts, tree.WithoutSelfSelector())
	}
	if o.SlugInChildSelectors {
		opts = append(opts, tree.WithSlugInChildSelectors())
	}
	if o.SlugInChildReducers {
		opts = append(opts, tree.WithSlugInChildReducers())
	}
	if o.JSONAction {
		opts = append(opts, tree.WithJSONAction())
	}
	return opts
}
