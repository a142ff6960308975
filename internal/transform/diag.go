package transform

import "fmt"

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	if s == SeverityWarn {
		return "warn"
	}
	return "info"
}

// Diagnostic codes. All are recoverable: the affected node is left
// untouched and the rest of the tree still migrates.
const (
	// CodeUnmappedComponent: the element resolved to the source library
	// but the registry has no rule for it.
	CodeUnmappedComponent = "unmapped-component"
	// CodeUnmappedSubComponent: same, for a member-addressed element.
	CodeUnmappedSubComponent = "unmapped-subcomponent"
	// CodeDynamicValueSkipped: a prop or class value was a computed
	// expression and could not be rewritten.
	CodeDynamicValueSkipped = "dynamic-value-skipped"
	// CodeStructuralTargetMissing: a structural rule found no rewritten
	// parent element to graft onto.
	CodeStructuralTargetMissing = "structural-target-missing"
)

// Diagnostic records a spot the engine could not migrate. The host decides
// whether these are warnings or hard failures.
type Diagnostic struct {
	Severity  Severity
	Code      string
	Canonical string
	Row       uint
	Column    uint
}

// String renders the diagnostic in file:line:col style (1-based).
func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Row+1, d.Column+1, d.Code, d.Canonical)
}
