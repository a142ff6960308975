package transform

import (
	"strconv"
	"strings"

	"github.com/uimorph/uimorph/internal/rules"
)

// jsxAttr is the engine's view of one jsx_attribute node.
type jsxAttr struct {
	name  string
	start uint // whole attribute span
	end   uint

	hasValue   bool
	valueStart uint
	valueEnd   uint
	raw        string // raw value text, including quotes or braces

	// literal is the statically-known value: the unquoted string for
	// string literals, "true" for bare boolean attributes. static is
	// false for computed expressions.
	literal string
	static  bool
}

// propOutcome says what applying a prop rule decided.
type propOutcome int

const (
	propUnchanged propOutcome = iota
	propRenamed               // replace the attribute name only
	propValueMapped           // replace name and literal value
	propExpanded              // replace the whole attribute with specs
	propDropped               // delete the attribute
	propDynamic               // expand rule skipped: value not statically known
)

// propResult carries the decision plus its payload.
type propResult struct {
	outcome  propOutcome
	newName  string
	newValue string
	specs    []rules.AttributeSpec
}

// applyPropRule applies a single prop rule to a single attribute. It is a
// pure function of that one attribute: rules never see siblings, so
// attribute rewriting is order-independent.
func applyPropRule(rule *rules.PropRule, attr jsxAttr) propResult {
	switch {
	case rule.Drop:
		return propResult{outcome: propDropped}

	case rule.Expand != nil:
		if !attr.static {
			// Dynamic values are never guessed.
			return propResult{outcome: propDynamic}
		}
		specs, ok := rule.Expand[attr.literal]
		if !ok {
			return propResult{outcome: propUnchanged}
		}
		return propResult{outcome: propExpanded, specs: specs}

	case rule.Values != nil:
		// Value maps apply to statically-known values only; an unmapped
		// or computed value passes the attribute through verbatim rather
		// than silently dropping a custom variant.
		if !attr.static {
			return propResult{outcome: propUnchanged}
		}
		mapped, ok := rule.Values[attr.literal]
		if !ok {
			return propResult{outcome: propUnchanged}
		}
		name := rule.Name
		if name == "" {
			name = attr.name
		}
		return propResult{outcome: propValueMapped, newName: name, newValue: mapped}

	case rule.Name != "":
		// Plain rename applies unconditionally, dynamic values included.
		return propResult{outcome: propRenamed, newName: rule.Name}
	}

	return propResult{outcome: propUnchanged}
}

// renderAttr renders an AttributeSpec as JSX attribute text.
func renderAttr(spec rules.AttributeSpec) string {
	switch {
	case spec.Expr != "":
		return spec.Name + "={" + spec.Expr + "}"
	case spec.Value != "":
		return spec.Name + `="` + spec.Value + `"`
	default:
		return spec.Name
	}
}

func renderAttrs(specs []rules.AttributeSpec) string {
	parts := make([]string, len(specs))
	for i, spec := range specs {
		parts[i] = renderAttr(spec)
	}
	return strings.Join(parts, " ")
}

// styleValueJS renders a style entry value as a JavaScript expression:
// bare for numbers, single-quoted otherwise.
func styleValueJS(value string) string {
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "\\'") + "'"
}
