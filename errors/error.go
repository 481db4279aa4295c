package errors

import (
	"fmt"

	"github.com/go-stagehand/stagehand"
)

// UnmappableFieldError occurs when a Field's declared kind cannot be reduced
// to an InterfaceType and carries no manual override. This is a registration
// time error and must never first surface at pipeline runtime.
type UnmappableFieldError struct {
	Name string
	Kind stagehand.FieldKind
}

// Error returns a textual representation of this UnmappableFieldError
func (e UnmappableFieldError) Error() string {
	return fmt.Sprintf("Field %s with kind %s cannot be mapped to an interface type", e.Name, e.Kind)
}

// MalformedStageError occurs when a stage's schemas violate structural rules:
// a chunk-input schema without a chunk-output schema (or vice versa), a
// reserved token used as a field name, or conflicting field declarations
// between stage and chunk schemas.
type MalformedStageError struct {
	Stage  string
	Reason string
}

// Error returns a textual representation of this MalformedStageError
func (e MalformedStageError) Error() string {
	return fmt.Sprintf("Stage %s is malformed: %s", e.Stage, e.Reason)
}

// ContractViolationError occurs when a record being read is missing a field
// whose declared kind is not optional. It is fatal: the stage and the
// orchestrator disagree about the interface, and proceeding would silently
// fabricate a value.
type ContractViolationError struct {
	Field string
	Path  string
}

// Error returns a textual representation of this ContractViolationError
func (e ContractViolationError) Error() string {
	return fmt.Sprintf("Required field %s is absent from record %s", e.Field, e.Path)
}

// UnknownStageError occurs when an invocation names a stage key which is not
// present in the adapter's registry
type UnknownStageError struct {
	Name string
}

// Error returns a textual representation of this UnknownStageError
func (e UnknownStageError) Error() string {
	return fmt.Sprintf("No registered stage with key %s", e.Name)
}

// UnknownPhaseError occurs when an invocation supplies a phase token the
// state machine does not recognize
type UnknownPhaseError struct {
	Phase string
}

// Error returns a textual representation of this UnknownPhaseError
func (e UnknownPhaseError) Error() string {
	return fmt.Sprintf("Unrecognized phase %s", e.Phase)
}

// WrongPhaseError occurs when a phase is invoked against a stage kind which
// does not support it, e.g. a split invocation against a main-only stage
type WrongPhaseError struct {
	Stage string
	Phase string
}

// Error returns a textual representation of this WrongPhaseError
func (e WrongPhaseError) Error() string {
	return fmt.Sprintf("Stage %s does not support phase %s", e.Stage, e.Phase)
}

// InvocationError wraps a failure raised by user split/main/join logic. It is
// propagated to the orchestrator as a failed invocation; retries are an
// orchestrator policy.
type InvocationError struct {
	Stage string
	Phase string
	Cause error
}

// Error returns a textual representation of this InvocationError
func (e InvocationError) Error() string {
	return fmt.Sprintf("Stage %s failed during %s: %v", e.Stage, e.Phase, e.Cause)
}

// Unwrap returns the user failure underlying this InvocationError
func (e InvocationError) Unwrap() error {
	return e.Cause
}
