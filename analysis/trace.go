package analysis

import (
	"github.com/rlch/dcl"
)

// TraceEntry is what a Trace knows about a node: Resolution, Errors or
// NoResolution.
type TraceEntry interface {
	traceEntry()
}

// Resolution is a node that resolved.
type Resolution struct {
	Origin Origin
}

// Errors is a node that failed to resolve.
type Errors struct {
	Errors []*ResolutionError
}

// NoResolution is a node that was never visited, because it was excluded by a
// filter or because an enclosing call did not resolve.
type NoResolution struct{}

func (Resolution) traceEntry()   {}
func (Errors) traceEntry()       {}
func (NoResolution) traceEntry() {}

// Trace records per-node outcomes of a resolution run. A nil *Trace discards
// everything.
type Trace struct {
	entries map[dcl.NodeID]TraceEntry
}

// NewTrace creates an empty trace.
func NewTrace() *Trace {
	return &Trace{entries: make(map[dcl.NodeID]TraceEntry)}
}

// RecordSuccess records that node resolved to o.
func (t *Trace) RecordSuccess(node dcl.NodeID, o Origin) {
	if t == nil {
		return
	}

	t.entries[node] = Resolution{Origin: o}
}

// RecordFailures records that node failed with errs.
func (t *Trace) RecordFailures(node dcl.NodeID, errs []*ResolutionError) {
	if t == nil {
		return
	}

	t.entries[node] = Errors{Errors: errs}
}

// Lookup returns the outcome recorded for node.
func (t *Trace) Lookup(node dcl.NodeID) TraceEntry {
	if t == nil {
		return NoResolution{}
	}

	if e, ok := t.entries[node]; ok {
		return e
	}

	return NoResolution{}
}

// OriginOf returns the origin node resolved to, or nil.
func (t *Trace) OriginOf(node dcl.NodeID) Origin {
	if r, ok := t.Lookup(node).(Resolution); ok {
		return r.Origin
	}

	return nil
}

// Len returns the number of recorded nodes.
func (t *Trace) Len() int {
	if t == nil {
		return 0
	}

	return len(t.entries)
}
