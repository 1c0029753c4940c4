package interval

import (
	"testing"
)

// The documented move: oceania (1/2, 1/1] is reparented under the newly
// created pacific (1/3, 1/2], landing at (2/5, 1/2]. Its descendants
// australia 2/3 and new_zealand 3/5 must become 3/7 and 5/12.
func TestRelocationTransform(t *testing.T) {
	alg := NewAlgebra(nil)

	oldLeft := mustCoord(t, 1, 2)
	newLeft := mustCoord(t, 2, 5)

	tr, err := alg.RelocationTransform(oldLeft, newLeft)
	if err != nil {
		t.Fatalf("RelocationTransform failed: %v", err)
	}

	t.Run("coefficients", func(t *testing.T) {
		got := [4]int64{tr.Cpp.Int64(), tr.Cpq.Int64(), tr.Cqp.Int64(), tr.Cqq.Int64()}
		want := [4]int64{0, 1, -1, 3}
		if got != want {
			t.Errorf("coefficients = %v, want %v", got, want)
		}
	})

	t.Run("maps old onto new exactly", func(t *testing.T) {
		self, err := tr.Apply(oldLeft)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if !self.Equal(newLeft) {
			t.Errorf("transform(old) = %s, want %s", self, newLeft)
		}
	})

	t.Run("descendants follow", func(t *testing.T) {
		cases := []struct {
			name string
			p, q int64
			want string
		}{
			{"australia", 2, 3, "3/7"},
			{"new_zealand", 3, 5, "5/12"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				got, err := tr.Apply(mustCoord(t, tc.p, tc.q))
				if err != nil {
					t.Fatalf("Apply failed: %v", err)
				}
				if got.String() != tc.want {
					t.Errorf("Apply(%d/%d) = %s, want %s", tc.p, tc.q, got, tc.want)
				}
			})
		}
	})

	t.Run("relative structure preserved", func(t *testing.T) {
		// Parent/child relations inside the subtree survive the move.
		movedParent, err := tr.Apply(mustCoord(t, 2, 3))
		if err != nil {
			t.Fatal(err)
		}
		gotParent, ok, err := alg.Parent(movedParent)
		if err != nil || !ok {
			t.Fatalf("Parent failed: ok=%v err=%v", ok, err)
		}
		if !gotParent.Equal(newLeft) {
			t.Errorf("moved australia walks to %s, want %s", gotParent, newLeft)
		}
	})
}

func TestRelocationTransformDeep(t *testing.T) {
	// Move a chain three levels down and verify every rewritten coordinate
	// stays reduced and keeps its walk depth relative to the moved root.
	alg := NewAlgebra(nil)

	oldRootCoord := mustCoord(t, 1, 2)
	subtree := []Coordinate{oldRootCoord}
	c := oldRootCoord
	for i := 0; i < 6; i++ {
		next, err := alg.NextChild(c, nil)
		if err != nil {
			t.Fatalf("NextChild failed: %v", err)
		}
		subtree = append(subtree, next)
		c = next
	}

	newLeft := mustCoord(t, 1, 3)
	tr, err := alg.RelocationTransform(oldRootCoord, newLeft)
	if err != nil {
		t.Fatalf("RelocationTransform failed: %v", err)
	}

	newDepth, err := alg.Depth(newLeft)
	if err != nil {
		t.Fatal(err)
	}

	for i, old := range subtree {
		moved, err := tr.Apply(old)
		if err != nil {
			t.Fatalf("Apply(%s) failed: %v", old, err)
		}
		if err := moved.Check(); err != nil {
			t.Errorf("moved coordinate %s not reduced: %v", moved, err)
		}
		d, err := alg.Depth(moved)
		if err != nil {
			t.Fatalf("Depth(%s) failed: %v", moved, err)
		}
		if d != newDepth+i {
			t.Errorf("Depth(%s) = %d, want %d", moved, d, newDepth+i)
		}
	}
}

func TestRelocationTransformIdentity(t *testing.T) {
	// Moving a node onto its own slot yields the identity map.
	alg := NewAlgebra(nil)
	c := mustCoord(t, 2, 3)
	tr, err := alg.RelocationTransform(c, c)
	if err != nil {
		t.Fatalf("RelocationTransform failed: %v", err)
	}
	for _, pq := range [][2]int64{{2, 3}, {3, 4}, {5, 7}} {
		in := mustCoord(t, pq[0], pq[1])
		out, err := tr.Apply(in)
		if err != nil {
			t.Fatalf("Apply failed: %v", err)
		}
		if !out.Equal(in) {
			t.Errorf("identity transform moved %s to %s", in, out)
		}
	}
}
