package interval

import (
	"testing"
)

func TestIsDescendant(t *testing.T) {
	alg := NewAlgebra(nil)

	root := Root()
	oceania := mustCoord(t, 1, 2)    // child of root
	australia := mustCoord(t, 2, 3)  // child of oceania
	newZealand := mustCoord(t, 3, 5) // child of oceania
	secondRoot := mustCoord(t, 1, 3) // second child of root

	desc := func(b, a Coordinate) bool {
		t.Helper()
		ok, err := alg.DescendantOf(b, a)
		if err != nil {
			t.Fatalf("DescendantOf(%s, %s) failed: %v", b, a, err)
		}
		return ok
	}

	t.Run("direct children", func(t *testing.T) {
		if !desc(oceania, root) {
			t.Error("1/2 should be a descendant of root")
		}
		if !desc(australia, oceania) {
			t.Error("2/3 should be a descendant of 1/2")
		}
	})

	t.Run("transitive", func(t *testing.T) {
		if !desc(australia, root) || !desc(newZealand, root) {
			t.Error("grandchildren should be descendants of root")
		}
	})

	t.Run("irreflexive", func(t *testing.T) {
		for _, c := range []Coordinate{oceania, australia, newZealand} {
			if desc(c, c) {
				t.Errorf("%s must not be its own descendant", c)
			}
		}
	})

	t.Run("antisymmetric", func(t *testing.T) {
		if desc(oceania, australia) {
			t.Error("parent must not be a descendant of its child")
		}
		if desc(root, newZealand) {
			t.Error("root must not be a descendant of anything")
		}
	})

	t.Run("siblings are not descendants", func(t *testing.T) {
		if desc(australia, newZealand) || desc(newZealand, australia) {
			t.Error("siblings must not be descendants of each other")
		}
		if desc(oceania, secondRoot) || desc(secondRoot, oceania) {
			t.Error("root children must not be descendants of each other")
		}
	})

	t.Run("right endpoint boundary excluded", func(t *testing.T) {
		// 1/2 is exactly the right endpoint of 1/3's interval (1/3, 1/2];
		// it is the elder sibling's left coordinate, not a descendant.
		if desc(oceania, secondRoot) {
			t.Error("a sibling sitting on the right endpoint is not a descendant")
		}
	})
}

func TestIsDescendantExactArithmetic(t *testing.T) {
	// Deep chains defeat float64; the integer predicate must still agree
	// with how the chain was built.
	alg := NewAlgebra(nil)

	c := Root()
	var chain []Coordinate
	for i := 0; i < 30; i++ {
		// Descend through second children so denominators compound fast.
		first, err := alg.NextChild(c, nil)
		if err != nil {
			t.Fatalf("NextChild failed at depth %d: %v", i, err)
		}
		second, err := alg.NextChild(c, &first)
		if err != nil {
			t.Fatalf("NextChild failed at depth %d: %v", i, err)
		}
		chain = append(chain, second)
		c = second
	}

	deepest := chain[len(chain)-1]
	for i, ancestor := range chain[:len(chain)-1] {
		right, err := alg.RightEndpoint(ancestor)
		if err != nil {
			t.Fatal(err)
		}
		if !IsDescendant(deepest, ancestor, right) {
			t.Errorf("deepest node not recognized under ancestor %d (%s)", i, ancestor)
		}
		if IsDescendant(ancestor, deepest, mustRight(t, alg, deepest)) {
			t.Errorf("ancestor %d wrongly recognized under the deepest node", i)
		}
	}
}

func mustRight(t *testing.T, alg *Algebra, c Coordinate) Coordinate {
	t.Helper()
	right, err := alg.RightEndpoint(c)
	if err != nil {
		t.Fatalf("RightEndpoint(%s) failed: %v", c, err)
	}
	return right
}
