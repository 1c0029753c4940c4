package storage

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	brocoterrors "brocot/internal/errors"
	"brocot/internal/interval"
	"brocot/internal/logging"
)

// Node is one stored tree row. P and Q carry the exact left coordinate as
// decimal digit strings; Hint is the non-authoritative float approximation.
type Node struct {
	ID        string
	Scope     string
	ParentID  string // empty for roots
	Label     string
	P         string
	Q         string
	Hint      float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Coordinate parses the exact coordinate out of the stored digit strings.
func (n *Node) Coordinate() (interval.Coordinate, error) {
	p, okP := new(big.Int).SetString(n.P, 10)
	q, okQ := new(big.Int).SetString(n.Q, 10)
	if !okP || !okQ {
		return interval.Coordinate{}, brocoterrors.Newf(brocoterrors.InvariantViolation,
			"node %s has unparseable coordinate %q/%q", n.ID, n.P, n.Q)
	}
	return interval.NewFromBig(p, q)
}

// SetCoordinate writes c into the row fields, including the float hint.
func (n *Node) SetCoordinate(c interval.Coordinate) {
	n.P = c.P.String()
	n.Q = c.Q.String()
	n.Hint = c.Float64()
}

// Nodes is the repository for the nodes table. Methods take a Querier so
// the engine can run them inside its write transactions.
type Nodes struct {
	logger *logging.Logger
}

// NewNodes creates the node repository.
func NewNodes(logger *logging.Logger) *Nodes {
	return &Nodes{logger: logger}
}

const nodeColumns = "id, scope, parent_id, label, p, q, path_hint, created_at, updated_at"

// Insert stores a new node row.
func (r *Nodes) Insert(ctx context.Context, q Querier, n *Node) error {
	now := time.Now().UTC()
	n.CreatedAt = now
	n.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO nodes (id, scope, parent_id, label, p, q, path_hint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		n.ID,
		n.Scope,
		nullString(n.ParentID),
		n.Label,
		n.P,
		n.Q,
		n.Hint,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}

	r.logger.Debug("Inserted node", map[string]interface{}{
		"id":         n.ID,
		"label":      n.Label,
		"coordinate": n.P + "/" + n.Q,
	})
	return nil
}

// Get retrieves a node by id within the scope. Returns nil when missing.
func (r *Nodes) Get(ctx context.Context, q Querier, scope, id string) (*Node, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE scope = ? AND id = ?", scope, id)
	return scanNode(row)
}

// GetByLabel retrieves a node by its label within the scope.
func (r *Nodes) GetByLabel(ctx context.Context, q Querier, scope, label string) (*Node, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE scope = ? AND label = ?", scope, label)
	return scanNode(row)
}

// GetByCoordinate retrieves the node holding the exact coordinate p/q.
// Used by ancestor resolution: the walker emits exact coordinates and this
// is the scoped lookup that turns them back into rows.
func (r *Nodes) GetByCoordinate(ctx context.Context, q Querier, scope, p, qDen string) (*Node, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE scope = ? AND p = ? AND q = ?", scope, p, qDen)
	return scanNode(row)
}

// LatestChild returns the child of parentID with the largest denominator,
// which is the most recently allocated slot, or nil when the parent has no
// children. Digit strings sort numerically when ordered by length first.
func (r *Nodes) LatestChild(ctx context.Context, q Querier, scope, parentID string) (*Node, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE scope = ? AND parent_id = ?
		ORDER BY LENGTH(q) DESC, q DESC
		LIMIT 1
	`, scope, parentID)
	return scanNode(row)
}

// ChildrenOf lists the children of parentID, newest slot first.
func (r *Nodes) ChildrenOf(ctx context.Context, q Querier, scope, parentID string) ([]*Node, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE scope = ? AND parent_id = ?
		ORDER BY LENGTH(q) DESC, q DESC
	`, scope, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return collectNodes(rows)
}

// Roots lists the root nodes of the scope.
func (r *Nodes) Roots(ctx context.Context, q Querier, scope string) ([]*Node, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE scope = ? AND parent_id IS NULL
		ORDER BY created_at
	`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list roots: %w", err)
	}
	return collectNodes(rows)
}

// All lists every node in the scope.
func (r *Nodes) All(ctx context.Context, q Querier, scope string) ([]*Node, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT "+nodeColumns+" FROM nodes WHERE scope = ? ORDER BY path_hint", scope)
	if err != nil {
		return nil, fmt.Errorf("failed to list nodes: %w", err)
	}
	return collectNodes(rows)
}

// Count returns the number of nodes in the scope.
func (r *Nodes) Count(ctx context.Context, q Querier, scope string) (int, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM nodes WHERE scope = ?", scope).Scan(&n)
	return n, err
}

// CandidatesInRange returns nodes whose float hint falls in the widened
// window (lo-eps, hi+eps). This is the index-acceleration path for
// descendant scans; the result over-approximates and the caller must
// filter with the exact cross-multiplication predicate. When the hint is
// disabled callers scan the whole scope through All instead.
func (r *Nodes) CandidatesInRange(ctx context.Context, q Querier, scope string, lo, hi, eps float64) ([]*Node, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+nodeColumns+` FROM nodes
		WHERE scope = ? AND path_hint > ? AND path_hint < ?
	`, scope, lo-eps, hi+eps)
	if err != nil {
		return nil, fmt.Errorf("failed to scan hint range: %w", err)
	}
	return collectNodes(rows)
}

// UpdateCoordinate rewrites a node's stored coordinate and hint.
func (r *Nodes) UpdateCoordinate(ctx context.Context, q Querier, scope, id string, c interval.Coordinate) error {
	res, err := q.ExecContext(ctx, `
		UPDATE nodes SET p = ?, q = ?, path_hint = ?, updated_at = ?
		WHERE scope = ? AND id = ?
	`, c.P.String(), c.Q.String(), c.Float64(),
		time.Now().UTC().Format(time.RFC3339Nano), scope, id)
	if err != nil {
		return fmt.Errorf("failed to update coordinate: %w", err)
	}
	return requireOneRow(res, scope, id)
}

// Reparent rewrites a node's parent reference together with its new
// coordinate; the two always change as one step of the move protocol.
func (r *Nodes) Reparent(ctx context.Context, q Querier, scope, id, newParentID string, c interval.Coordinate) error {
	res, err := q.ExecContext(ctx, `
		UPDATE nodes SET parent_id = ?, p = ?, q = ?, path_hint = ?, updated_at = ?
		WHERE scope = ? AND id = ?
	`, nullString(newParentID), c.P.String(), c.Q.String(), c.Float64(),
		time.Now().UTC().Format(time.RFC3339Nano), scope, id)
	if err != nil {
		return fmt.Errorf("failed to reparent node: %w", err)
	}
	return requireOneRow(res, scope, id)
}

// Delete removes a node; the schema's ON DELETE CASCADE takes the whole
// subtree with it.
func (r *Nodes) Delete(ctx context.Context, q Querier, scope, id string) error {
	res, err := q.ExecContext(ctx,
		"DELETE FROM nodes WHERE scope = ? AND id = ?", scope, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}
	return requireOneRow(res, scope, id)
}

func requireOneRow(res sql.Result, scope, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected row count: %w", err)
	}
	if n == 0 {
		return brocoterrors.Newf(brocoterrors.NodeNotFound,
			"node %s not found in scope %q", id, scope)
	}
	return nil
}

func scanNode(row *sql.Row) (*Node, error) {
	var n Node
	var parentID sql.NullString
	var hint sql.NullFloat64
	var createdAt, updatedAt string

	err := row.Scan(&n.ID, &n.Scope, &parentID, &n.Label, &n.P, &n.Q,
		&hint, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	n.ParentID = parentID.String
	n.Hint = hint.Float64
	n.CreatedAt = parseTime(createdAt)
	n.UpdatedAt = parseTime(updatedAt)
	return &n, nil
}

func collectNodes(rows *sql.Rows) ([]*Node, error) {
	defer func() { _ = rows.Close() }()

	var out []*Node
	for rows.Next() {
		var n Node
		var parentID sql.NullString
		var hint sql.NullFloat64
		var createdAt, updatedAt string

		if err := rows.Scan(&n.ID, &n.Scope, &parentID, &n.Label, &n.P, &n.Q,
			&hint, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan node row: %w", err)
		}
		n.ParentID = parentID.String
		n.Hint = hint.Float64
		n.CreatedAt = parseTime(createdAt)
		n.UpdatedAt = parseTime(updatedAt)
		out = append(out, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return out, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
