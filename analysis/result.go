package analysis

import (
	"github.com/rlch/dcl"
)

// Result is the outcome of a resolution run. It is built once and not
// modified afterwards.
type Result struct {
	Assignments []*Assignment
	Additions   []*Addition
	Errors      []*ResolutionError
}

// Assignment is a resolved `property = value` or `property += value`.
type Assignment struct {
	Property *PropertyReference
	Value    Origin
	Node     dcl.NodeID
}

// Addition is an object created by an adding function and added to Receiver.
// Receiver is nil when the function is a top-level function.
type Addition struct {
	Object   Origin
	Receiver Origin
	Node     dcl.NodeID
}

// OK reports whether the run produced no errors.
func (r *Result) OK() bool {
	return len(r.Errors) == 0
}

// ErrorsAt returns the errors attached to node.
func (r *Result) ErrorsAt(node dcl.NodeID) []*ResolutionError {
	var out []*ResolutionError

	for _, e := range r.Errors {
		if e.Node == node {
			out = append(out, e)
		}
	}

	return out
}
