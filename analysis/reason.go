package analysis

import (
	"fmt"
	"strings"

	"github.com/rlch/dcl/schema"
)

// ErrorReason explains why a node could not be resolved. The set of
// implementations is closed.
type ErrorReason interface {
	// Code is a short kebab-case identifier used in diagnostics.
	Code() string
	String() string
	reason()
}

// UnresolvedReference is a name that is neither a local value, a visible
// property nor an enum constant of the expected type.
type UnresolvedReference struct {
	Name string
}

// UnresolvedAssignmentLhs wraps the failure of an assignment target.
type UnresolvedAssignmentLhs struct{}

// UnresolvedAssignmentRhs wraps the failure of an assigned or declared value.
type UnresolvedAssignmentRhs struct{}

// UnresolvedFunctionCallSignature means no candidate function applies.
type UnresolvedFunctionCallSignature struct {
	Name string
}

// UnresolvedFunctionCallArguments means some call argument did not resolve.
type UnresolvedFunctionCallArguments struct{}

// AmbiguousFunctions holds the maximally specific candidates of a call.
type AmbiguousFunctions struct {
	Candidates []*schema.Function
}

// AssignmentTypeMismatch is a resolved value whose type is not a subtype of
// the target property type.
type AssignmentTypeMismatch struct {
	Expected schema.TypeRef
	Actual   schema.TypeRef
}

// ReadOnlyPropertyAssignment is an assignment to a read-only property.
type ReadOnlyPropertyAssignment struct {
	Property *schema.Property
}

// NonReadableProperty is a read of a write-only property.
type NonReadableProperty struct {
	Property *schema.Property
}

// AccessOnCurrentReceiverOnlyViolation is a qualified or outer-receiver access
// to a member restricted to the innermost receiver.
type AccessOnCurrentReceiverOnlyViolation struct {
	Name string
}

// AugmentingAssignmentNotResolved means no augmentation accepts the operand.
type AugmentingAssignmentNotResolved struct {
	Property *schema.Property
}

// DuplicateLocalValue is a second declaration of a name in the same block.
type DuplicateLocalValue struct {
	Name string
}

// MissingLocalValueName is a local value declaration without a name.
type MissingLocalValueName struct{}

// MissingLocalValueInitializer is a local value declaration without a value.
type MissingLocalValueInitializer struct{}

func (UnresolvedReference) Code() string                  { return "unresolved-reference" }
func (UnresolvedAssignmentLhs) Code() string              { return "unresolved-assignment-lhs" }
func (UnresolvedAssignmentRhs) Code() string              { return "unresolved-assignment-rhs" }
func (UnresolvedFunctionCallSignature) Code() string      { return "unresolved-function-call-signature" }
func (UnresolvedFunctionCallArguments) Code() string      { return "unresolved-function-call-arguments" }
func (AmbiguousFunctions) Code() string                   { return "ambiguous-functions" }
func (AssignmentTypeMismatch) Code() string               { return "assignment-type-mismatch" }
func (ReadOnlyPropertyAssignment) Code() string           { return "read-only-property-assignment" }
func (NonReadableProperty) Code() string                  { return "non-readable-property" }
func (AccessOnCurrentReceiverOnlyViolation) Code() string { return "current-receiver-only-violation" }
func (AugmentingAssignmentNotResolved) Code() string      { return "augmenting-assignment-not-resolved" }
func (DuplicateLocalValue) Code() string                  { return "duplicate-local-value" }
func (MissingLocalValueName) Code() string                { return "missing-local-value-name" }
func (MissingLocalValueInitializer) Code() string         { return "missing-local-value-initializer" }

func (r UnresolvedReference) String() string {
	return "unresolved reference: " + r.Name
}

func (UnresolvedAssignmentLhs) String() string {
	return "cannot resolve assignment target"
}

func (UnresolvedAssignmentRhs) String() string {
	return "cannot resolve assigned value"
}

func (r UnresolvedFunctionCallSignature) String() string {
	return "no applicable function " + r.Name
}

func (UnresolvedFunctionCallArguments) String() string {
	return "cannot resolve function call arguments"
}

func (r AmbiguousFunctions) String() string {
	sigs := make([]string, len(r.Candidates))
	for i, f := range r.Candidates {
		sigs[i] = f.Signature()
	}

	return "ambiguous call, candidates: " + strings.Join(sigs, "; ")
}

func (r AssignmentTypeMismatch) String() string {
	return fmt.Sprintf("type mismatch: expected %s, got %s", r.Expected, r.Actual)
}

func (r ReadOnlyPropertyAssignment) String() string {
	return "property " + r.Property.Name + " is read-only"
}

func (r NonReadableProperty) String() string {
	return "property " + r.Property.Name + " is write-only"
}

func (r AccessOnCurrentReceiverOnlyViolation) String() string {
	return r.Name + " can only be accessed on the current receiver"
}

func (r AugmentingAssignmentNotResolved) String() string {
	if r.Property == nil {
		return "no augmentation applies"
	}

	return fmt.Sprintf("no augmentation of %s applies to %s", r.Property.Type, r.Property.Name)
}

func (r DuplicateLocalValue) String() string {
	return "local value " + r.Name + " is already declared in this block"
}

func (MissingLocalValueName) String() string {
	return "local value declaration without a name"
}

func (MissingLocalValueInitializer) String() string {
	return "local value declaration without a value"
}

func (UnresolvedReference) reason()                  {}
func (UnresolvedAssignmentLhs) reason()              {}
func (UnresolvedAssignmentRhs) reason()              {}
func (UnresolvedFunctionCallSignature) reason()      {}
func (UnresolvedFunctionCallArguments) reason()      {}
func (AmbiguousFunctions) reason()                   {}
func (AssignmentTypeMismatch) reason()               {}
func (ReadOnlyPropertyAssignment) reason()           {}
func (NonReadableProperty) reason()                  {}
func (AccessOnCurrentReceiverOnlyViolation) reason() {}
func (AugmentingAssignmentNotResolved) reason()      {}
func (DuplicateLocalValue) reason()                  {}
func (MissingLocalValueName) reason()                {}
func (MissingLocalValueInitializer) reason()         {}
