package storage

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"brocot/internal/config"
	brocoterrors "brocot/internal/errors"
	"brocot/internal/interval"
	"brocot/internal/logging"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	logger := logging.NewLogger(logging.Config{Level: logging.ErrorLevel})
	db, err := Open(t.TempDir(), config.DefaultConfig(), logger)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testNode(t *testing.T, id, parentID, label string, p, q int64) *Node {
	t.Helper()
	c, err := interval.New(p, q)
	if err != nil {
		t.Fatalf("bad coordinate %d/%d: %v", p, q, err)
	}
	n := &Node{ID: id, ParentID: parentID, Label: label}
	n.SetCoordinate(c)
	return n
}

func TestOpenInitializesSchema(t *testing.T) {
	db := openTestDB(t)
	v, err := db.SchemaVersion()
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if v != 1 {
		t.Errorf("schema version = %d, want 1", v)
	}
}

func TestNodeRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return repo.Insert(ctx, tx, testNode(t, "earth", "", "earth", 0, 1))
	})
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	got, err := repo.Get(ctx, db.Reader(), "", "earth")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("node not found after insert")
	}
	if got.P != "0" || got.Q != "1" || got.Label != "earth" {
		t.Errorf("unexpected row: %+v", got)
	}

	c, err := got.Coordinate()
	if err != nil {
		t.Fatalf("Coordinate failed: %v", err)
	}
	if !c.IsRoot() {
		t.Errorf("expected root coordinate, got %s", c)
	}
}

func TestGetMissingReturnsNil(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))

	got, err := repo.Get(context.Background(), db.Reader(), "", "nope")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing node, got %+v", got)
	}
}

func TestLatestChildOrdering(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for _, n := range []*Node{
			testNode(t, "earth", "", "earth", 0, 1),
			testNode(t, "a", "earth", "a", 1, 2),
			testNode(t, "b", "earth", "b", 1, 3),
			// Denominator 12 exercises the digit-length ordering: "12"
			// is numerically larger than "3" but lexically smaller.
			testNode(t, "c", "earth", "c", 5, 12),
		} {
			if err := repo.Insert(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("inserts failed: %v", err)
	}

	latest, err := repo.LatestChild(ctx, db.Reader(), "", "earth")
	if err != nil {
		t.Fatalf("LatestChild failed: %v", err)
	}
	if latest == nil || latest.ID != "c" {
		t.Fatalf("LatestChild = %+v, want node c (denominator 12)", latest)
	}

	children, err := repo.ChildrenOf(ctx, db.Reader(), "", "earth")
	if err != nil {
		t.Fatalf("ChildrenOf failed: %v", err)
	}
	var ids []string
	for _, ch := range children {
		ids = append(ids, ch.ID)
	}
	want := []string{"c", "b", "a"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("children order = %v, want %v", ids, want)
		}
	}
}

func TestScopesAreIndependent(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		a := testNode(t, "r1", "", "root", 0, 1)
		a.Scope = "forest-a"
		b := testNode(t, "r2", "", "root", 0, 1)
		b.Scope = "forest-b"
		if err := repo.Insert(ctx, tx, a); err != nil {
			return err
		}
		return repo.Insert(ctx, tx, b)
	})
	if err != nil {
		t.Fatalf("inserts failed: %v", err)
	}

	// Same label and same coordinate in two scopes must coexist.
	got, err := repo.Get(ctx, db.Reader(), "forest-a", "r1")
	if err != nil || got == nil {
		t.Fatalf("scoped Get failed: %v, %+v", err, got)
	}
	if n, _ := repo.Count(ctx, db.Reader(), "forest-a"); n != 1 {
		t.Errorf("forest-a count = %d, want 1", n)
	}
	if got, _ := repo.Get(ctx, db.Reader(), "forest-b", "r1"); got != nil {
		t.Error("node from forest-a leaked into forest-b")
	}
}

func TestDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for _, n := range []*Node{
			testNode(t, "earth", "", "earth", 0, 1),
			testNode(t, "oceania", "earth", "oceania", 1, 2),
			testNode(t, "australia", "oceania", "australia", 2, 3),
			testNode(t, "nz", "oceania", "nz", 3, 5),
		} {
			if err := repo.Insert(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("inserts failed: %v", err)
	}

	err = db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return repo.Delete(ctx, tx, "", "oceania")
	})
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	n, err := repo.Count(ctx, db.Reader(), "")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("count after cascade delete = %d, want 1 (just earth)", n)
	}
}

func TestDeleteMissingNode(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		return repo.Delete(ctx, tx, "", "ghost")
	})
	if !brocoterrors.HasCode(err, brocoterrors.NodeNotFound) {
		t.Fatalf("expected NODE_NOT_FOUND, got %v", err)
	}
}

type failingResult struct {
	err error
}

func (r failingResult) LastInsertId() (int64, error) { return 0, nil }
func (r failingResult) RowsAffected() (int64, error) { return 0, r.err }

func TestRequireOneRowDriverError(t *testing.T) {
	// A driver failure reading the affected count must surface as itself,
	// not be mistaken for a missing node.
	cause := errors.New("rows affected unsupported")
	err := requireOneRow(failingResult{err: cause}, "", "n")
	if err == nil {
		t.Fatal("expected an error")
	}
	if brocoterrors.HasCode(err, brocoterrors.NodeNotFound) {
		t.Errorf("driver error reported as NODE_NOT_FOUND: %v", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("underlying driver error not wrapped: %v", err)
	}
}

func TestCandidatesInRange(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		for _, n := range []*Node{
			testNode(t, "earth", "", "earth", 0, 1),
			testNode(t, "oceania", "earth", "oceania", 1, 2),       // 0.5
			testNode(t, "australia", "oceania", "australia", 2, 3), // ~0.667
			testNode(t, "asia", "earth", "asia", 1, 3),             // ~0.333
		} {
			if err := repo.Insert(ctx, tx, n); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("inserts failed: %v", err)
	}

	// Window (0.5, 1.0): descendants of oceania plus oceania's own hint
	// boundary; asia at 1/3 must stay out.
	got, err := repo.CandidatesInRange(ctx, db.Reader(), "", 0.5, 1.0, 1e-9)
	if err != nil {
		t.Fatalf("CandidatesInRange failed: %v", err)
	}
	found := map[string]bool{}
	for _, n := range got {
		found[n.ID] = true
	}
	if !found["australia"] {
		t.Error("australia should be inside the hint window")
	}
	if found["asia"] || found["earth"] {
		t.Errorf("hint window over-matched: %v", found)
	}
}

func TestUpdateCoordinate(t *testing.T) {
	db := openTestDB(t)
	repo := NewNodes(logging.NewLogger(logging.Config{Level: logging.ErrorLevel}))
	ctx := context.Background()

	err := db.WithWriteTx(ctx, func(tx *sql.Tx) error {
		if err := repo.Insert(ctx, tx, testNode(t, "n", "", "n", 1, 2)); err != nil {
			return err
		}
		c, err := interval.New(2, 5)
		if err != nil {
			return err
		}
		return repo.UpdateCoordinate(ctx, tx, "", "n", c)
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	got, err := repo.Get(ctx, db.Reader(), "", "n")
	if err != nil || got == nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.P != "2" || got.Q != "5" {
		t.Errorf("coordinate = %s/%s, want 2/5", got.P, got.Q)
	}
	if got.Hint < 0.399 || got.Hint > 0.401 {
		t.Errorf("hint = %v, want ~0.4", got.Hint)
	}
}
