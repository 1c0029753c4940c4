// Package export writes and reads YAML snapshots of subtrees. Snapshots
// carry structure and labels; coordinates are informational only and are
// re-derived on import, so a snapshot taken after many moves imports into
// a compact fresh numbering.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"gopkg.in/yaml.v3"

	"brocot/internal/storage"
	"brocot/internal/tree"
)

// NodeDoc is one node in a snapshot. Children appear in creation order so
// an import replays the same sibling order.
type NodeDoc struct {
	Label      string     `yaml:"label"`
	Coordinate string     `yaml:"coordinate,omitempty"`
	Children   []*NodeDoc `yaml:"children,omitempty"`
}

// Document is a complete subtree snapshot.
type Document struct {
	Scope      string   `yaml:"scope"`
	ExportedAt string   `yaml:"exportedAt"`
	Tree       *NodeDoc `yaml:"tree"`
}

// Exporter turns stored subtrees into snapshot documents.
type Exporter struct {
	engine *tree.Engine
}

// NewExporter creates an exporter over the engine.
func NewExporter(engine *tree.Engine) *Exporter {
	return &Exporter{engine: engine}
}

// Export writes the subtree rooted at ref to w as YAML; compress selects
// gzip framing for .yaml.gz outputs.
func (e *Exporter) Export(ctx context.Context, ref string, w io.Writer, compress bool) error {
	doc, err := e.Snapshot(ctx, ref)
	if err != nil {
		return err
	}

	out := w
	var gz *gzip.Writer
	if compress {
		gz = gzip.NewWriter(w)
		out = gz
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to finish snapshot: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to finish gzip stream: %w", err)
		}
	}
	return nil
}

// Snapshot builds the document for the subtree rooted at ref.
func (e *Exporter) Snapshot(ctx context.Context, ref string) (*Document, error) {
	root, err := e.engine.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	descendants, err := e.engine.Descendants(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Group by parent; reverse each group so children come out in
	// creation order (the store hands them back newest slot first).
	byParent := make(map[string][]*storage.Node)
	for _, n := range descendants {
		byParent[n.ParentID] = append(byParent[n.ParentID], n)
	}

	var build func(n *storage.Node) *NodeDoc
	build = func(n *storage.Node) *NodeDoc {
		doc := &NodeDoc{
			Label:      n.Label,
			Coordinate: n.P + "/" + n.Q,
		}
		group := byParent[n.ID]
		for i := len(group) - 1; i >= 0; i-- {
			doc.Children = append(doc.Children, build(group[i]))
		}
		return doc
	}

	return &Document{
		Scope:      e.engine.Scope(),
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Tree:       build(root),
	}, nil
}

// Importer replays snapshot documents into the store.
type Importer struct {
	engine *tree.Engine
}

// NewImporter creates an importer over the engine.
func NewImporter(engine *tree.Engine) *Importer {
	return &Importer{engine: engine}
}

// Import reads a snapshot from r and recreates it under parentRef. When
// parentRef is empty the snapshot's top node becomes the scope's root.
// Every node allocates a fresh slot, so imported coordinates are compact
// regardless of the source tree's move history. Returns the number of
// nodes created.
func (i *Importer) Import(ctx context.Context, parentRef string, r io.Reader, compressed bool) (int, error) {
	in := r
	if compressed {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return 0, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer func() { _ = gz.Close() }()
		in = gz
	}

	var doc Document
	if err := yaml.NewDecoder(in).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if doc.Tree == nil {
		return 0, fmt.Errorf("snapshot has no tree")
	}

	created := 0
	var replay func(parent string, doc *NodeDoc) error
	replay = func(parent string, doc *NodeDoc) error {
		var (
			node *storage.Node
			err  error
		)
		if parent == "" {
			node, err = i.engine.CreateRoot(ctx, doc.Label)
		} else {
			node, err = i.engine.CreateChild(ctx, parent, doc.Label)
		}
		if err != nil {
			return err
		}
		created++
		for _, child := range doc.Children {
			if err := replay(node.ID, child); err != nil {
				return err
			}
		}
		return nil
	}

	if err := replay(parentRef, doc.Tree); err != nil {
		return created, err
	}
	return created, nil
}
