package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/steward/internal/core/model"
)

func edge(parent, child string, rel model.RelationshipType) model.HierarchyEdge {
	return model.HierarchyEdge{
		ParentID:         parent,
		ChildID:          child,
		RelationshipType: rel,
		ParentName:       parent + " Health",
		ChildName:        child + " Health",
	}
}

func TestBuildForest_SimpleTree(t *testing.T) {
	forest, err := BuildForest([]model.HierarchyEdge{
		edge("A", "B", model.Subsidiary),
		edge("A", "C", model.Division),
	})
	require.NoError(t, err)
	require.Len(t, forest, 1)

	root := forest[0]
	assert.Equal(t, "A", root.ID)
	assert.Equal(t, "A Health", root.Name)
	assert.Nil(t, root.RelationshipType)
	assert.Nil(t, root.Confirmed)

	require.Len(t, root.Children, 2)
	assert.Equal(t, "B", root.Children[0].ID)
	assert.Equal(t, model.Subsidiary, *root.Children[0].RelationshipType)
	assert.Equal(t, "C", root.Children[1].ID)
	assert.Equal(t, model.Division, *root.Children[1].RelationshipType)
	assert.Empty(t, root.Children[0].Children)
}

func TestBuildForest_Empty(t *testing.T) {
	forest, err := BuildForest(nil)
	require.NoError(t, err)
	assert.Empty(t, forest)
}

func TestBuildForest_ChildrenMatchEdges(t *testing.T) {
	edges := []model.HierarchyEdge{
		edge("A", "B", model.Subsidiary),
		edge("B", "D", model.Brand),
		edge("A", "C", model.Affiliate),
		edge("X", "Y", model.Division),
		edge("B", "E", model.Brand),
	}
	forest, err := BuildForest(edges)
	require.NoError(t, err)

	parents := make(map[string]bool)
	for _, e := range edges {
		parents[e.ParentID] = true
	}

	for _, f := range Flatten(forest) {
		var want []string
		for _, e := range edges {
			if e.ParentID == f.Node.ID {
				want = append(want, e.ChildID)
			}
		}
		var got []string
		for _, c := range f.Node.Children {
			got = append(got, c.ID)
		}
		assert.Equal(t, want, got, "children of %s", f.Node.ID)
		if !parents[f.Node.ID] {
			assert.Empty(t, f.Node.Children)
		}
	}

	assert.Equal(t, []string{"A", "X"}, []string{forest[0].ID, forest[1].ID})
}

func TestBuildForest_ConfirmedPropagates(t *testing.T) {
	e := edge("A", "B", model.Subsidiary)
	e.Confirmed = true
	forest, err := BuildForest([]model.HierarchyEdge{e})
	require.NoError(t, err)
	require.NotNil(t, forest[0].Children[0].Confirmed)
	assert.True(t, *forest[0].Children[0].Confirmed)
}

func TestBuildForest_DiamondIsDuplicated(t *testing.T) {
	forest, err := BuildForest([]model.HierarchyEdge{
		edge("A", "B", model.Subsidiary),
		edge("A", "C", model.Subsidiary),
		edge("B", "D", model.Brand),
		edge("C", "D", model.Affiliate),
	})
	require.NoError(t, err)

	count := 0
	for _, f := range Flatten(forest) {
		if f.Node.ID == "D" {
			count++
			assert.Equal(t, 2, f.Depth)
		}
	}
	assert.Equal(t, 2, count)
}

func TestBuildForest_NameFallsBackToID(t *testing.T) {
	forest, err := BuildForest([]model.HierarchyEdge{{ParentID: "P1", ChildID: "C1", RelationshipType: model.Brand}})
	require.NoError(t, err)
	assert.Equal(t, "P1", forest[0].Name)
	assert.Equal(t, "C1", forest[0].Children[0].Name)
}

func TestBuildForest_SelfEdge(t *testing.T) {
	_, err := BuildForest([]model.HierarchyEdge{edge("A", "A", model.Affiliate)})

	var cycle *TreeCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "A"}, cycle.Path)
}

func TestBuildForest_RootlessCycle(t *testing.T) {
	_, err := BuildForest([]model.HierarchyEdge{
		edge("R", "S", model.Subsidiary),
		edge("A", "B", model.Subsidiary),
		edge("B", "C", model.Subsidiary),
		edge("C", "A", model.Subsidiary),
	})

	var cycle *TreeCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Len(t, cycle.Path, 4)
	assert.Equal(t, cycle.Path[0], cycle.Path[3])
	assert.Contains(t, err.Error(), "cycle")
}

func TestBuildForest_CycleBelowRoot(t *testing.T) {
	_, err := BuildForest([]model.HierarchyEdge{
		edge("R", "A", model.Subsidiary),
		edge("A", "B", model.Subsidiary),
		edge("B", "A", model.Subsidiary),
	})

	var cycle *TreeCycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"A", "B", "A"}, cycle.Path)
}

func TestUnassigned(t *testing.T) {
	all := []model.GoldenRecord{
		{MasterPayorID: "A"}, {MasterPayorID: "Z"}, {MasterPayorID: "B"}, {MasterPayorID: "Q"},
	}
	edges := []model.HierarchyEdge{edge("A", "B", model.Subsidiary)}

	got := Unassigned(all, edges)
	require.Len(t, got, 2)
	assert.Equal(t, "Z", got[0].MasterPayorID)
	assert.Equal(t, "Q", got[1].MasterPayorID)

	forest, err := BuildForest(edges)
	require.NoError(t, err)
	for _, f := range Flatten(forest) {
		assert.NotEqual(t, "Z", f.Node.ID)
		assert.NotEqual(t, "Q", f.Node.ID)
	}
}

func TestWouldCycle(t *testing.T) {
	edges := []model.HierarchyEdge{
		edge("A", "B", model.Subsidiary),
		edge("B", "C", model.Subsidiary),
	}
	assert.True(t, WouldCycle(edges, "C", "A"))
	assert.True(t, WouldCycle(edges, "B", "A"))
	assert.True(t, WouldCycle(edges, "D", "D"))
	assert.False(t, WouldCycle(edges, "A", "C"))
	assert.False(t, WouldCycle(edges, "D", "A"))
}

func TestCyclePath(t *testing.T) {
	edges := []model.HierarchyEdge{
		edge("A", "B", model.Subsidiary),
		edge("B", "C", model.Subsidiary),
	}
	assert.Equal(t, []string{"C", "A", "B", "C"}, CyclePath(edges, "C", "A"))
	assert.Equal(t, []string{"D", "D"}, CyclePath(edges, "D", "D"))
	assert.Nil(t, CyclePath(edges, "A", "C"))
}

func TestFlatten(t *testing.T) {
	forest, err := BuildForest([]model.HierarchyEdge{
		edge("A", "B", model.Subsidiary),
		edge("B", "C", model.Brand),
	})
	require.NoError(t, err)

	flat := Flatten(forest)
	require.Len(t, flat, 3)
	assert.Equal(t, 0, flat[0].Depth)
	assert.Equal(t, 1, flat[1].Depth)
	assert.Equal(t, 2, flat[2].Depth)
	assert.Equal(t, "C", flat[2].Node.ID)
}
