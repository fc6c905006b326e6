package hierarchy

import (
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/core/model"
)

// TreeCycleError reports a parent/child loop. Path starts and ends on the
// same id.
type TreeCycleError struct {
	Path []string
}

func (e *TreeCycleError) Error() string {
	return fmt.Sprintf("hierarchy contains a cycle: %s", strings.Join(e.Path, " -> "))
}

type builder struct {
	names    map[string]string
	children map[string][]model.HierarchyEdge
	seen     map[string]bool
	onPath   map[string]int
	path     []string
}

// BuildForest turns a flat edge snapshot into nested trees. Roots are parent
// ids that never appear as a child, in first-appearance order; children keep
// edge order. A node with several parents is materialized once per incoming
// edge.
func BuildForest(edges []model.HierarchyEdge) ([]model.HierarchyNode, error) {
	b := &builder{
		names:    make(map[string]string),
		children: make(map[string][]model.HierarchyEdge),
		seen:     make(map[string]bool),
		onPath:   make(map[string]int),
	}

	isChild := make(map[string]bool, len(edges))
	for _, e := range edges {
		isChild[e.ChildID] = true
		b.children[e.ParentID] = append(b.children[e.ParentID], e)
		if _, ok := b.names[e.ParentID]; !ok && e.ParentName != "" {
			b.names[e.ParentID] = e.ParentName
		}
		if _, ok := b.names[e.ChildID]; !ok && e.ChildName != "" {
			b.names[e.ChildID] = e.ChildName
		}
	}

	forest := make([]model.HierarchyNode, 0)
	rooted := make(map[string]bool)
	for _, e := range edges {
		if isChild[e.ParentID] || rooted[e.ParentID] {
			continue
		}
		rooted[e.ParentID] = true
		node, err := b.materialize(e.ParentID, nil)
		if err != nil {
			return nil, err
		}
		forest = append(forest, node)
	}

	// anything never reached hangs off a loop with no root above it
	for _, e := range edges {
		if !b.seen[e.ChildID] {
			return nil, &TreeCycleError{Path: loopFrom(e.ChildID, edges)}
		}
	}

	return forest, nil
}

func (b *builder) materialize(id string, via *model.HierarchyEdge) (model.HierarchyNode, error) {
	if start, ok := b.onPath[id]; ok {
		loop := append(append([]string{}, b.path[start:]...), id)
		return model.HierarchyNode{}, &TreeCycleError{Path: loop}
	}
	b.seen[id] = true
	b.onPath[id] = len(b.path)
	b.path = append(b.path, id)
	defer func() {
		b.path = b.path[:len(b.path)-1]
		delete(b.onPath, id)
	}()

	node := model.HierarchyNode{
		ID:       id,
		Name:     b.name(id),
		Children: make([]model.HierarchyNode, 0, len(b.children[id])),
	}
	if via != nil {
		rel := via.RelationshipType
		confirmed := via.Confirmed
		node.RelationshipType = &rel
		node.Confirmed = &confirmed
	}

	for i := range b.children[id] {
		edge := b.children[id][i]
		child, err := b.materialize(edge.ChildID, &edge)
		if err != nil {
			return model.HierarchyNode{}, err
		}
		node.Children = append(node.Children, child)
	}
	return node, nil
}

func (b *builder) name(id string) string {
	if n, ok := b.names[id]; ok {
		return n
	}
	return id
}

// loopFrom follows first parents upward from id until an id repeats.
func loopFrom(id string, edges []model.HierarchyEdge) []string {
	parentOf := make(map[string]string)
	for _, e := range edges {
		if _, ok := parentOf[e.ChildID]; !ok {
			parentOf[e.ChildID] = e.ParentID
		}
	}

	index := make(map[string]int)
	var walk []string
	cur := id
	for {
		if i, ok := index[cur]; ok {
			return append(walk[i:], cur)
		}
		index[cur] = len(walk)
		walk = append(walk, cur)
		next, ok := parentOf[cur]
		if !ok {
			return walk
		}
		cur = next
	}
}

// Unassigned returns the golden records that take part in no relationship,
// in input order.
func Unassigned(all []model.GoldenRecord, edges []model.HierarchyEdge) []model.GoldenRecord {
	linked := make(map[string]bool, len(edges)*2)
	for _, e := range edges {
		linked[e.ParentID] = true
		linked[e.ChildID] = true
	}
	out := make([]model.GoldenRecord, 0)
	for _, r := range all {
		if !linked[r.MasterPayorID] {
			out = append(out, r)
		}
	}
	return out
}

// WouldCycle reports whether adding parentID -> childID to edges closes a loop.
func WouldCycle(edges []model.HierarchyEdge, parentID, childID string) bool {
	return CyclePath(edges, parentID, childID) != nil
}

// CyclePath returns the loop that adding parentID -> childID would create,
// starting and ending on parentID, or nil if there is none.
func CyclePath(edges []model.HierarchyEdge, parentID, childID string) []string {
	if parentID == childID {
		return []string{parentID, childID}
	}
	children := make(map[string][]string)
	for _, e := range edges {
		children[e.ParentID] = append(children[e.ParentID], e.ChildID)
	}

	prev := map[string]string{childID: ""}
	queue := []string{childID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range children[cur] {
			if next == parentID {
				var down []string
				for id := cur; id != ""; id = prev[id] {
					down = append(down, id)
				}
				path := []string{parentID}
				for i := len(down) - 1; i >= 0; i-- {
					path = append(path, down[i])
				}
				return append(path, parentID)
			}
			if _, ok := prev[next]; !ok {
				prev[next] = cur
				queue = append(queue, next)
			}
		}
	}
	return nil
}

type FlatNode struct {
	Node  model.HierarchyNode `json:"node"`
	Depth int                 `json:"depth"`
}

// Flatten walks the forest depth first for indented rendering.
func Flatten(forest []model.HierarchyNode) []FlatNode {
	var out []FlatNode
	var walk func(n model.HierarchyNode, depth int)
	walk = func(n model.HierarchyNode, depth int) {
		out = append(out, FlatNode{Node: n, Depth: depth})
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	for _, root := range forest {
		walk(root, 0)
	}
	return out
}
