package driver

import (
	"context"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// Row is one result row keyed by upper-cased column name.
type Row map[string]interface{}

// Statement is a single write with its bound parameters. Values are never
// spliced into SQL.
type Statement struct {
	SQL  string
	Args []interface{}
}

// Gateway is the whole boundary between the console and the warehouse.
type Gateway interface {
	ExecuteRead(ctx context.Context, query string, args ...interface{}) ([]Row, error)
	ExecuteWriteBatch(ctx context.Context, statements []Statement) error
	Ping(ctx context.Context) error
	Close() error
}

// GraphDriver mirrors the payor hierarchy into a property graph.
type GraphDriver interface {
	ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error)
	BuildIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
