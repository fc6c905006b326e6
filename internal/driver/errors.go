package driver

import "fmt"

// QueryError is returned when a read fails for any reason: malformed SQL,
// lost connectivity or a warehouse-side error.
type QueryError struct {
	SQL string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query failed: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// WriteError identifies the statement of a batch that failed. FailedIndex is
// -1 when the failure happened while opening or committing the transaction.
type WriteError struct {
	FailedIndex int
	Err         error
}

func (e *WriteError) Error() string {
	if e.FailedIndex < 0 {
		return fmt.Sprintf("write batch failed: %v", e.Err)
	}
	return fmt.Sprintf("write batch failed at statement %d: %v", e.FailedIndex, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
