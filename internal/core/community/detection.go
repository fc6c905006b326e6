package community

import (
	"fmt"
	"sort"

	"github.com/agenthands/steward/internal/core/model"
)

// Pair is one decided match candidate between two source records.
type Pair struct {
	SourceAID string
	SourceBID string
	Decision  model.Decision
}

type ClusterDetector interface {
	Detect(pairs []Pair) ([]model.MatchCluster, error)
}

// SimpleDetector groups source records into connected components over
// accepted matches (auto_match and match_confirmed).
type SimpleDetector struct{}

func NewSimpleDetector() ClusterDetector {
	return &SimpleDetector{}
}

func accepted(d model.Decision) bool {
	return d == model.DecisionAuto || d == model.DecisionConfirm
}

func (d *SimpleDetector) Detect(pairs []Pair) ([]model.MatchCluster, error) {
	adj := make(map[string][]string)
	var order []string

	for _, p := range pairs {
		if !accepted(p.Decision) || p.SourceAID == p.SourceBID {
			continue
		}
		for _, id := range []string{p.SourceAID, p.SourceBID} {
			if _, ok := adj[id]; !ok {
				order = append(order, id)
			}
		}
		adj[p.SourceAID] = append(adj[p.SourceAID], p.SourceBID)
		adj[p.SourceBID] = append(adj[p.SourceBID], p.SourceAID)
	}

	visited := make(map[string]bool)
	member := make(map[string]int)
	var components [][]string

	for _, id := range order {
		if visited[id] {
			continue
		}
		var component []string
		d.dfs(id, adj, visited, &component)
		sort.Strings(component)
		components = append(components, component)
	}

	sort.Slice(components, func(i, j int) bool { return components[i][0] < components[j][0] })

	clusters := make([]model.MatchCluster, 0, len(components))
	for i, c := range components {
		for _, id := range c {
			member[id] = i
		}
		clusters = append(clusters, model.MatchCluster{
			ID:        fmt.Sprintf("cluster-%03d", i+1),
			RecordIDs: c,
		})
	}

	// a rejected pair inside one cluster means transitive matches disagree
	// with a steward decision
	for _, p := range pairs {
		if p.Decision != model.DecisionReject {
			continue
		}
		ca, okA := member[p.SourceAID]
		cb, okB := member[p.SourceBID]
		if okA && okB && ca == cb {
			clusters[ca].Conflicts = append(clusters[ca].Conflicts, [2]string{p.SourceAID, p.SourceBID})
		}
	}

	return clusters, nil
}

func (d *SimpleDetector) dfs(u string, adj map[string][]string, visited map[string]bool, component *[]string) {
	visited[u] = true
	*component = append(*component, u)
	for _, v := range adj[u] {
		if !visited[v] {
			d.dfs(v, adj, visited, component)
		}
	}
}
