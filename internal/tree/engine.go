// Package tree implements the structural operations over stored nodes:
// create, move, delete, and the ancestry queries. It composes the pure
// coordinate algebra with the storage layer and owns the locking protocol
// around every mutation.
package tree

import (
	"context"
	"database/sql"
	"sort"

	"github.com/google/uuid"

	"brocot/internal/config"
	brocoterrors "brocot/internal/errors"
	"brocot/internal/interval"
	"brocot/internal/logging"
	"brocot/internal/storage"
)

// Engine executes tree operations within one forest partition (scope).
// All methods are safe for concurrent use; every structural mutation runs
// inside a single BEGIN IMMEDIATE transaction, so concurrent readers see
// either the fully-old or fully-new tree, never a torn mix.
type Engine struct {
	db     *storage.DB
	repo   *storage.Nodes
	alg    *interval.Algebra
	cfg    *config.Config
	scope  string
	logger *logging.Logger
}

// NewEngine builds an engine over an open database. The scope comes from
// the configuration and is treated as an opaque partition key.
func NewEngine(db *storage.DB, cfg *config.Config, logger *logging.Logger) *Engine {
	return &Engine{
		db:     db,
		repo:   storage.NewNodes(logger),
		alg:    interval.NewAlgebra(nil),
		cfg:    cfg,
		scope:  cfg.Scope,
		logger: logger,
	}
}

// WithScope returns an engine bound to a different forest partition,
// sharing the same database handle.
func (e *Engine) WithScope(scope string) *Engine {
	clone := *e
	clone.scope = scope
	return &clone
}

// Scope returns the partition this engine operates on.
func (e *Engine) Scope() string {
	return e.scope
}

// Algebra exposes the pure coordinate operations (right endpoints, slot
// allocation, relocation transforms) for callers that work on coordinates
// directly.
func (e *Engine) Algebra() *interval.Algebra {
	return e.alg
}

// CreateRoot creates the partition's root node at coordinate 0/1. A scope
// holds exactly one root; its interval (0/1, 1/1] covers every possible
// descendant coordinate.
func (e *Engine) CreateRoot(ctx context.Context, label string) (*storage.Node, error) {
	node := &storage.Node{
		ID:    uuid.NewString(),
		Scope: e.scope,
		Label: label,
	}
	node.SetCoordinate(interval.Root())

	err := e.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		roots, err := e.repo.Roots(ctx, tx, e.scope)
		if err != nil {
			return err
		}
		if len(roots) > 0 {
			return brocoterrors.Newf(brocoterrors.ScopeInvalid,
				"scope %q already has root %q", e.scope, roots[0].Label)
		}
		return e.repo.Insert(ctx, tx, node)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Created root", map[string]interface{}{
		"scope": e.scope,
		"label": label,
	})
	return node, nil
}

// CreateChild allocates the next free slot under the parent and inserts a
// node there. The parent read, the slot computation, and the insert all
// happen under the write lock: two concurrent creations would otherwise
// both see the same latest child and mint the same mediant.
func (e *Engine) CreateChild(ctx context.Context, parentRef, label string) (*storage.Node, error) {
	node := &storage.Node{
		ID:    uuid.NewString(),
		Scope: e.scope,
		Label: label,
	}

	err := e.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		parent, err := e.resolve(ctx, tx, parentRef)
		if err != nil {
			return err
		}
		slot, err := e.nextSlot(ctx, tx, parent)
		if err != nil {
			return err
		}
		node.ParentID = parent.ID
		node.SetCoordinate(slot)
		return e.repo.Insert(ctx, tx, node)
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Created node", map[string]interface{}{
		"scope":      e.scope,
		"label":      label,
		"coordinate": node.P + "/" + node.Q,
	})
	return node, nil
}

// nextSlot computes the next free child coordinate under parent using the
// largest-denominator rule. Must run inside a write transaction.
func (e *Engine) nextSlot(ctx context.Context, tx *sql.Tx, parent *storage.Node) (interval.Coordinate, error) {
	parentCoord, err := parent.Coordinate()
	if err != nil {
		return interval.Coordinate{}, err
	}
	latest, err := e.repo.LatestChild(ctx, tx, e.scope, parent.ID)
	if err != nil {
		return interval.Coordinate{}, err
	}
	var last *interval.Coordinate
	if latest != nil {
		c, err := latest.Coordinate()
		if err != nil {
			return interval.Coordinate{}, err
		}
		last = &c
	}
	return e.alg.NextChild(parentCoord, last)
}

// Move reparents a node under newParentRef, rewriting the whole subtree's
// coordinates through the relocation transform. Cycle validation, slot
// allocation under the parent's current coordinate, the descendant
// rewrite, and the node's own update form one write transaction; an error
// at any step rolls back every rewritten row.
func (e *Engine) Move(ctx context.Context, nodeRef, newParentRef string) (*storage.Node, error) {
	var moved *storage.Node

	err := e.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		node, err := e.resolve(ctx, tx, nodeRef)
		if err != nil {
			return err
		}
		newParent, err := e.resolve(ctx, tx, newParentRef)
		if err != nil {
			return err
		}

		if node.ID == newParent.ID {
			return brocoterrors.Newf(brocoterrors.OwnershipCycle,
				"cannot move %q under itself", node.Label)
		}
		if node.ParentID == "" {
			return brocoterrors.Newf(brocoterrors.OwnershipCycle,
				"cannot move the root node %q", node.Label)
		}

		// Snapshot the old interval before anything mutates.
		oldCoord, err := node.Coordinate()
		if err != nil {
			return err
		}
		oldRight, err := e.alg.RightEndpoint(oldCoord)
		if err != nil {
			return err
		}

		newParentCoord, err := newParent.Coordinate()
		if err != nil {
			return err
		}
		if interval.IsDescendant(newParentCoord, oldCoord, oldRight) {
			return brocoterrors.Newf(brocoterrors.OwnershipCycle,
				"cannot move %q under its own descendant %q", node.Label, newParent.Label)
		}

		// Allocate the new slot from the parent's current coordinate; a
		// stale one would place the subtree outside the parent's interval.
		slot, err := e.nextSlot(ctx, tx, newParent)
		if err != nil {
			return err
		}
		transform, err := e.alg.RelocationTransform(oldCoord, slot)
		if err != nil {
			return err
		}

		descendants, err := e.descendantsInTx(ctx, tx, oldCoord, oldRight)
		if err != nil {
			return err
		}
		for _, desc := range descendants {
			c, err := desc.Coordinate()
			if err != nil {
				return err
			}
			mapped, err := transform.Apply(c)
			if err != nil {
				return err
			}
			if err := e.repo.UpdateCoordinate(ctx, tx, e.scope, desc.ID, mapped); err != nil {
				return err
			}
		}

		// The moved node takes the allocated slot directly, not the
		// transform image (they agree; the allocation is authoritative).
		if err := e.repo.Reparent(ctx, tx, e.scope, node.ID, newParent.ID, slot); err != nil {
			return err
		}

		node.ParentID = newParent.ID
		node.SetCoordinate(slot)
		moved = node

		e.logger.Info("Moved subtree", map[string]interface{}{
			"scope":       e.scope,
			"label":       node.Label,
			"newParent":   newParent.Label,
			"coordinate":  node.P + "/" + node.Q,
			"descendants": len(descendants),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return moved, nil
}

// Delete removes a node and, through the cascade, its whole subtree. Runs
// under the write lock so a concurrent child creation cannot allocate a
// slot from siblings that are about to vanish.
func (e *Engine) Delete(ctx context.Context, nodeRef string) error {
	return e.db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		node, err := e.resolve(ctx, tx, nodeRef)
		if err != nil {
			return err
		}
		if err := e.repo.Delete(ctx, tx, e.scope, node.ID); err != nil {
			return err
		}
		e.logger.Info("Deleted subtree", map[string]interface{}{
			"scope": e.scope,
			"label": node.Label,
		})
		return nil
	})
}

// Get resolves a node by id or label.
func (e *Engine) Get(ctx context.Context, ref string) (*storage.Node, error) {
	var node *storage.Node
	err := e.db.WithReadTx(ctx, func(tx *sql.Tx) error {
		var err error
		node, err = e.resolve(ctx, tx, ref)
		return err
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// Roots lists the partition's root nodes.
func (e *Engine) Roots(ctx context.Context) ([]*storage.Node, error) {
	return e.repo.Roots(ctx, e.db.Reader(), e.scope)
}

// All lists every node in the partition ordered by position.
func (e *Engine) All(ctx context.Context) ([]*storage.Node, error) {
	return e.repo.All(ctx, e.db.Reader(), e.scope)
}

// Children lists a node's children, newest slot first.
func (e *Engine) Children(ctx context.Context, ref string) ([]*storage.Node, error) {
	var out []*storage.Node
	err := e.db.WithReadTx(ctx, func(tx *sql.Tx) error {
		node, err := e.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		out, err = e.repo.ChildrenOf(ctx, tx, e.scope, node.ID)
		return err
	})
	return out, err
}

// Ancestors returns a node's ancestor rows, nearest parent first. The
// chain is recovered from the coordinate alone and each emitted coordinate
// is resolved through the scoped store; a missing row means the tree is
// torn and surfaces as INVARIANT_VIOLATION.
func (e *Engine) Ancestors(ctx context.Context, ref string) ([]*storage.Node, error) {
	var out []*storage.Node
	err := e.db.WithReadTx(ctx, func(tx *sql.Tx) error {
		node, err := e.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		coord, err := node.Coordinate()
		if err != nil {
			return err
		}
		chain, err := e.alg.Ancestors(coord)
		if err != nil {
			return err
		}
		for _, c := range chain {
			row, err := e.repo.GetByCoordinate(ctx, tx, e.scope, c.P.String(), c.Q.String())
			if err != nil {
				return err
			}
			if row == nil {
				return brocoterrors.Newf(brocoterrors.InvariantViolation,
					"ancestor coordinate %s of %q has no stored node", c, node.Label)
			}
			out = append(out, row)
		}
		return nil
	})
	return out, err
}

// Depth returns a node's depth: 0 for the root, walk length otherwise.
func (e *Engine) Depth(ctx context.Context, ref string) (int, error) {
	node, err := e.Get(ctx, ref)
	if err != nil {
		return 0, err
	}
	coord, err := node.Coordinate()
	if err != nil {
		return 0, err
	}
	return e.alg.Depth(coord)
}

// Descendants lists a node's strict descendants in position order.
func (e *Engine) Descendants(ctx context.Context, ref string) ([]*storage.Node, error) {
	var out []*storage.Node
	err := e.db.WithReadTx(ctx, func(tx *sql.Tx) error {
		node, err := e.resolve(ctx, tx, ref)
		if err != nil {
			return err
		}
		coord, err := node.Coordinate()
		if err != nil {
			return err
		}
		right, err := e.alg.RightEndpoint(coord)
		if err != nil {
			return err
		}
		out, err = e.descendantsInTx(ctx, tx, coord, right)
		return err
	})
	return out, err
}

// IsDescendant reports whether candidateRef lies strictly inside
// ancestorRef's covered interval.
func (e *Engine) IsDescendant(ctx context.Context, candidateRef, ancestorRef string) (bool, error) {
	var result bool
	err := e.db.WithReadTx(ctx, func(tx *sql.Tx) error {
		cand, err := e.resolve(ctx, tx, candidateRef)
		if err != nil {
			return err
		}
		anc, err := e.resolve(ctx, tx, ancestorRef)
		if err != nil {
			return err
		}
		cc, err := cand.Coordinate()
		if err != nil {
			return err
		}
		ac, err := anc.Coordinate()
		if err != nil {
			return err
		}
		result, err = e.alg.DescendantOf(cc, ac)
		return err
	})
	return result, err
}

// descendantsInTx fetches the strict descendants of the interval
// (coord, right] in ascending position order. The float hint narrows the
// candidate set when enabled; either way every row passes the exact
// cross-multiplication predicate before it is returned.
func (e *Engine) descendantsInTx(ctx context.Context, tx *sql.Tx, coord, right interval.Coordinate) ([]*storage.Node, error) {
	var candidates []*storage.Node
	var err error
	if e.cfg.Hint.Enabled {
		candidates, err = e.repo.CandidatesInRange(ctx, tx, e.scope,
			coord.Float64(), right.Float64(), e.cfg.Hint.Epsilon)
	} else {
		candidates, err = e.repo.All(ctx, tx, e.scope)
	}
	if err != nil {
		return nil, err
	}

	type entry struct {
		node  *storage.Node
		coord interval.Coordinate
	}
	var kept []entry
	for _, n := range candidates {
		c, err := n.Coordinate()
		if err != nil {
			return nil, err
		}
		if interval.IsDescendant(c, coord, right) {
			kept = append(kept, entry{node: n, coord: c})
		}
	}
	// The SQL result order leans on the float hint, and deep coordinates
	// collide there; exact comparison makes the position order reliable.
	sort.Slice(kept, func(i, j int) bool {
		return kept[i].coord.Cmp(kept[j].coord) < 0
	})
	out := make([]*storage.Node, len(kept))
	for i, e := range kept {
		out[i] = e.node
	}
	return out, nil
}

// resolve looks a node up by id, then by label.
func (e *Engine) resolve(ctx context.Context, q storage.Querier, ref string) (*storage.Node, error) {
	node, err := e.repo.Get(ctx, q, e.scope, ref)
	if err != nil {
		return nil, err
	}
	if node == nil {
		node, err = e.repo.GetByLabel(ctx, q, e.scope, ref)
		if err != nil {
			return nil, err
		}
	}
	if node == nil {
		return nil, brocoterrors.Newf(brocoterrors.NodeNotFound,
			"no node with id or label %q in scope %q", ref, e.scope)
	}
	return node, nil
}
