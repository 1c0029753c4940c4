package main

import (
	"strings"
	"testing"

	"github.com/jedib0t/go-pretty/v6/list"

	"brocot/internal/storage"
)

// Nodes arrive in ascending hint order, the way the store lists them.
func regionFixture() []*storage.Node {
	return []*storage.Node{
		{ID: "earth", Label: "earth", P: "0", Q: "1", Hint: 0},
		{ID: "oceania", ParentID: "earth", Label: "oceania", P: "1", Q: "2", Hint: 0.5},
		{ID: "nz", ParentID: "oceania", Label: "new_zealand", P: "3", Q: "5", Hint: 0.6},
		{ID: "australia", ParentID: "oceania", Label: "australia", P: "2", Q: "3", Hint: 2.0 / 3},
	}
}

func TestGroupByParentCreationOrder(t *testing.T) {
	byParent := groupByParent(regionFixture())

	group := byParent["oceania"]
	if len(group) != 2 {
		t.Fatalf("oceania group size = %d, want 2", len(group))
	}
	// australia (2/3) was created before new_zealand (3/5).
	if group[0].Label != "australia" || group[1].Label != "new_zealand" {
		t.Errorf("group order = %q, %q; want australia, new_zealand",
			group[0].Label, group[1].Label)
	}
}

func TestRenderSubtreeNesting(t *testing.T) {
	nodes := regionFixture()
	byParent := groupByParent(nodes)

	w := list.NewWriter()
	w.SetStyle(list.StyleConnectedLight)
	renderSubtree(w, byParent, nodes[0])
	out := w.Render()

	for _, want := range []string{"earth  (0/1)", "oceania  (1/2)", "australia  (2/3)", "new_zealand  (3/5)"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered tree missing %q:\n%s", want, out)
		}
	}

	// Grandchildren render below their parent, siblings in creation order.
	earth := strings.Index(out, "earth")
	oceania := strings.Index(out, "oceania")
	australia := strings.Index(out, "australia")
	nz := strings.Index(out, "new_zealand")
	if !(earth < oceania && oceania < australia && australia < nz) {
		t.Errorf("render order wrong:\n%s", out)
	}
}
