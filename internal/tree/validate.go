package tree

import (
	"context"
	"fmt"
	"math"

	"brocot/internal/interval"
	"brocot/internal/storage"
)

// Issue is one invariant failure found by Validate.
type Issue struct {
	NodeID  string `json:"nodeId"`
	Label   string `json:"label"`
	Problem string `json:"problem"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s (%s): %s", i.Label, i.NodeID, i.Problem)
}

// Validate audits every stored node in the partition against the
// coordinate invariants: reduced positive fractions, the root at exactly
// 0/1, every non-root strictly inside its parent's interval, the walker
// agreeing with the stored parent reference, and the float hint tracking
// the exact value. It reports all failures rather than stopping at the
// first; a healthy tree returns an empty slice.
func (e *Engine) Validate(ctx context.Context) ([]Issue, error) {
	nodes, err := e.All(ctx)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*storage.Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var issues []Issue
	report := func(n *storage.Node, format string, args ...interface{}) {
		issues = append(issues, Issue{
			NodeID:  n.ID,
			Label:   n.Label,
			Problem: fmt.Sprintf(format, args...),
		})
	}

	for _, n := range nodes {
		coord, err := n.Coordinate()
		if err != nil {
			report(n, "unparseable or unreduced coordinate %s/%s", n.P, n.Q)
			continue
		}

		if n.ParentID == "" {
			if !coord.IsRoot() {
				report(n, "parentless node at %s, roots must sit at 0/1", coord)
			}
			continue
		}
		if coord.IsRoot() {
			report(n, "node at the root coordinate has parent %s", n.ParentID)
			continue
		}

		parent, ok := byID[n.ParentID]
		if !ok {
			report(n, "parent %s does not exist", n.ParentID)
			continue
		}
		parentCoord, err := parent.Coordinate()
		if err != nil {
			// The parent's own entry reports the bad coordinate.
			continue
		}
		parentRight, err := e.alg.RightEndpoint(parentCoord)
		if err != nil {
			continue
		}
		if !interval.IsDescendant(coord, parentCoord, parentRight) {
			report(n, "coordinate %s lies outside parent %q interval (%s, %s]",
				coord, parent.Label, parentCoord, parentRight)
			continue
		}

		// The ancestor walk must land exactly on the stored parent; interval
		// containment alone would also accept a grandparent.
		walked, ok, err := e.alg.Parent(coord)
		if err != nil {
			report(n, "ancestor walk failed: %v", err)
			continue
		}
		if !ok || !walked.Equal(parentCoord) {
			report(n, "walker derives parent %s but stored parent %q sits at %s",
				walked, parent.Label, parentCoord)
		}

		if e.cfg.Hint.Enabled {
			if drift := math.Abs(n.Hint - coord.Float64()); drift > e.cfg.Hint.Epsilon {
				report(n, "float hint %v drifted from %s by %g", n.Hint, coord, drift)
			}
		}
	}

	return issues, nil
}
