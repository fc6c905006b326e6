package driver

var PayorGraphIndices = []string{
	"CREATE INDEX ON :Payor(master_payor_id);",
	"CREATE INDEX ON :Payor(synced_at);",
}

const (
	MergePayorsQuery = `
		UNWIND $payors AS p
		MERGE (n:Payor {master_payor_id: p.id})
		SET n.name = p.name,
			n.state_code = p.state_code,
			n.status = p.status,
			n.synced_at = $synced_at
		RETURN count(n) AS merged
	`

	MergeHierarchyQuery = `
		UNWIND $edges AS e
		MATCH (parent:Payor {master_payor_id: e.parent_id})
		MATCH (child:Payor {master_payor_id: e.child_id})
		MERGE (parent)-[r:PARENT_OF]->(child)
		SET r.relationship_type = e.relationship_type,
			r.confirmed = e.confirmed,
			r.synced_at = $synced_at
		RETURN count(r) AS merged
	`

	PruneHierarchyQuery = `
		MATCH (:Payor)-[r:PARENT_OF]->(:Payor)
		WHERE r.synced_at <> $synced_at
		DELETE r
	`

	PrunePayorsQuery = `
		MATCH (n:Payor)
		WHERE n.synced_at <> $synced_at
		DETACH DELETE n
	`
)
