package model

type RelationshipType string

const (
	Subsidiary RelationshipType = "subsidiary"
	Division   RelationshipType = "division"
	Brand      RelationshipType = "brand"
	Affiliate  RelationshipType = "affiliate"
)

var RelationshipTypes = []RelationshipType{Subsidiary, Division, Brand, Affiliate}

func (t RelationshipType) Valid() bool {
	for _, v := range RelationshipTypes {
		if t == v {
			return true
		}
	}
	return false
}

// HierarchyEdge is one parent/child row joined with both golden-record names.
type HierarchyEdge struct {
	ParentID         string           `json:"parent_id"`
	ChildID          string           `json:"child_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Confirmed        bool             `json:"confirmed"`
	ParentName       string           `json:"parent_name"`
	ChildName        string           `json:"child_name"`
}

// HierarchyNode is built in memory from an edge snapshot. Roots carry no
// relationship type or confirmation.
type HierarchyNode struct {
	ID               string            `json:"id"`
	Name             string            `json:"name"`
	RelationshipType *RelationshipType `json:"relationship_type,omitempty"`
	Confirmed        *bool             `json:"confirmed,omitempty"`
	Children         []HierarchyNode   `json:"children"`
}

// RelationshipSuggestion is a proposed link a steward may confirm. It is
// never written without confirmation.
type RelationshipSuggestion struct {
	ParentID         string           `json:"parent_id"`
	ChildID          string           `json:"child_id"`
	RelationshipType RelationshipType `json:"relationship_type"`
	Reasoning        string           `json:"reasoning,omitempty"`
}
