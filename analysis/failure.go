package analysis

import (
	"github.com/rlch/dcl"
)

// Failure is the outcome of a resolution step that did not succeed: either a
// single *ResolutionError or *MultipleFailures.
type Failure interface {
	failure()
}

// ResolutionError attaches an error reason to the node it was raised for.
type ResolutionError struct {
	Node   dcl.NodeID
	Reason ErrorReason
}

// MultipleFailures holds two or more errors. It never nests.
type MultipleFailures struct {
	Errors []*ResolutionError
}

func (*ResolutionError) failure()  {}
func (*MultipleFailures) failure() {}

func fail(node dcl.NodeID, reason ErrorReason) Failure {
	return &ResolutionError{Node: node, Reason: reason}
}

// Flatten lists the errors of a failure in report order.
func Flatten(f Failure) []*ResolutionError {
	switch f := f.(type) {
	case *ResolutionError:
		return []*ResolutionError{f}
	case *MultipleFailures:
		return f.Errors
	default:
		return nil
	}
}

// Failures collects the failures of independent sub-resolutions. The zero value
// is ready to use.
type Failures struct {
	errs []*ResolutionError
}

// Add records f. Nil failures are ignored.
func (fs *Failures) Add(f Failure) {
	fs.errs = append(fs.errs, Flatten(f)...)
}

// Failed reports whether anything was recorded.
func (fs *Failures) Failed() bool {
	return len(fs.errs) > 0
}

// Result reduces the collected failures: nil when there are none, the failure
// itself when there is one, and a flat MultipleFailures otherwise.
func (fs *Failures) Result() Failure {
	switch len(fs.errs) {
	case 0:
		return nil
	case 1:
		return fs.errs[0]
	default:
		return &MultipleFailures{Errors: append([]*ResolutionError(nil), fs.errs...)}
	}
}
