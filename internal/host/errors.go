package host

import (
	"errors"
	"fmt"
)

// Query failures. They reach callers wrapped in a *QueryError.
var (
	ErrNotFound         = errors.New("node not found")
	ErrMissingAttribute = errors.New("missing attribute")
	ErrTypeMismatch     = errors.New("attribute type mismatch")
)

// QueryError reports a failed host query. Attr is empty for node-level
// queries such as Kind or WorldMatrix.
type QueryError struct {
	Node string
	Attr string
	Err  error
}

func (e *QueryError) Error() string {
	if e.Attr == "" {
		return fmt.Sprintf("host query %s: %v", e.Node, e.Err)
	}
	return fmt.Sprintf("host query %s.%s: %v", e.Node, e.Attr, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError wraps err for node.attr.
func NewQueryError(node, attr string, err error) *QueryError {
	return &QueryError{Node: node, Attr: attr, Err: err}
}
