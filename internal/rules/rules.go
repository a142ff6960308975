// Package rules holds the declarative migration ruleset: which source-library
// components map to which target components, how individual props translate,
// and how utility class tokens convert into inline style entries.
//
// A ruleset is plain data loaded from YAML (a built-in one is embedded),
// validated once at start-up, and immutable afterwards, so it can be shared
// across concurrent file workers without locking.
package rules

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidRuleset is wrapped by all ruleset validation failures.
var ErrInvalidRuleset = errors.New("invalid ruleset")

// Ruleset is the complete rule registry for one migration.
type Ruleset struct {
	// Source identifies the library being migrated away from.
	Source SourceSpec `yaml:"source"`
	// Targets lists the destination modules rules may emit symbols for.
	Targets []string `yaml:"targets"`
	// ClassAttr is the attribute carrying utility class tokens (default "className").
	ClassAttr string `yaml:"classAttr"`
	// StyleAttr is the attribute carrying the inline style object (default "style").
	StyleAttr string `yaml:"styleAttr"`
	// Components maps canonical source component names to their rules.
	Components map[string]*ComponentRule `yaml:"components"`
	// SubComponents maps canonical parent name, then member property name,
	// to the rule for member-addressed components like Card.Header.
	SubComponents map[string]map[string]*ComponentRule `yaml:"subComponents"`
	// StyleRules convert class tokens to style entries. Order matters:
	// rules are tried first to last and the first match wins, so
	// more specific patterns must be registered before general ones.
	StyleRules []*StyleRule `yaml:"styleRules"`
}

// SourceSpec identifies the source library's imports.
type SourceSpec struct {
	// Module is the source library module specifier, matched exactly.
	// Deep imports under "Module/" are also recognized.
	Module string `yaml:"module"`
	// Stylesheets are suffixes matched against import sources to find
	// stylesheet imports belonging to the source library.
	Stylesheets []string `yaml:"stylesheets"`
}

// ComponentRule describes how one source component is rewritten.
type ComponentRule struct {
	// Target is the replacement element name. Empty for rules that only
	// apply a structural action.
	Target string `yaml:"target"`
	// Module is the target module Target is imported from.
	Module string `yaml:"module"`
	// Props maps source attribute names to their transformation rules.
	Props map[string]*PropRule `yaml:"props"`
	// Defaults are attributes appended to every rewritten element,
	// unless an attribute of the same name is already present.
	Defaults []AttributeSpec `yaml:"defaults"`
	// Structural, if set, replaces renaming with a structural edit
	// against the enclosing parent element.
	Structural *StructuralRule `yaml:"structural"`
}

// PropRule is a tagged variant: exactly one of the rule kinds applies.
//   - Drop: the attribute is omitted.
//   - Expand: the attribute's literal value selects a list of replacement
//     attributes; dynamic values are passed through untouched.
//   - Values (optionally with Name): enumerated literal values are mapped;
//     unmapped values pass the attribute through unchanged.
//   - Name alone: plain rename, value kept as-is.
type PropRule struct {
	Name   string                     `yaml:"name"`
	Values map[string]string          `yaml:"values"`
	Expand map[string][]AttributeSpec `yaml:"expand"`
	Drop   bool                       `yaml:"drop"`
}

// AttributeSpec is a target attribute to emit. Value renders as a quoted
// string (name="value"), Expr as a JSX expression (name={expr}). With
// neither set the attribute renders bare (name).
type AttributeSpec struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
	Expr  string `yaml:"expr"`
}

// Structural rule actions.
const (
	// ActionGraft moves the element's children into an attribute on the
	// enclosing parent element and deletes the element.
	ActionGraft = "graft"
	// ActionUnwrap deletes the element's tags, leaving its children in place.
	ActionUnwrap = "unwrap"
)

// StructuralRule edits the relationship between an element and its parent
// instead of renaming the element itself.
type StructuralRule struct {
	Action string `yaml:"action"`
	// Attr names the parent attribute receiving grafted children.
	Attr string `yaml:"attr"`
}

// StyleRule converts a single class token into style entries.
type StyleRule struct {
	// Pattern is an anchored regular expression with optional captures.
	Pattern string `yaml:"pattern"`
	// Map, if present, translates the first capture before substitution.
	// A capture value absent from Map means the rule does not match.
	Map map[string]string `yaml:"map"`
	// Styles maps style keys to value templates. $1..$9 refer to captures
	// ($1 after Map translation when Map is set).
	Styles map[string]string `yaml:"styles"`

	re *regexp.Regexp
}

// Match tests one class token against the rule. On success it returns the
// resolved style entries.
func (r *StyleRule) Match(token string) (map[string]string, bool) {
	captures := r.re.FindStringSubmatch(token)
	if captures == nil {
		return nil, false
	}
	if r.Map != nil && len(captures) > 1 {
		mapped, ok := r.Map[captures[1]]
		if !ok {
			return nil, false
		}
		captures[1] = mapped
	}
	entries := make(map[string]string, len(r.Styles))
	for key, tmpl := range r.Styles {
		entries[key] = substituteCaptures(tmpl, captures)
	}
	return entries, true
}

// substituteCaptures replaces $1..$9 in tmpl with the corresponding capture.
func substituteCaptures(tmpl string, captures []string) string {
	out := make([]byte, 0, len(tmpl))
	for i := 0; i < len(tmpl); i++ {
		c := tmpl[i]
		if c == '$' && i+1 < len(tmpl) && tmpl[i+1] >= '1' && tmpl[i+1] <= '9' {
			idx := int(tmpl[i+1] - '0')
			if idx < len(captures) {
				out = append(out, captures[idx]...)
				i++
				continue
			}
		}
		out = append(out, c)
	}
	return string(out)
}

// Component returns the rule for a canonical component name, or nil.
func (rs *Ruleset) Component(canonical string) *ComponentRule {
	return rs.Components[canonical]
}

// SubComponent returns the rule for a member-addressed component
// (e.g. parent "Card", child "Header"), or nil.
func (rs *Ruleset) SubComponent(parent, child string) *ComponentRule {
	members, ok := rs.SubComponents[parent]
	if !ok {
		return nil
	}
	return members[child]
}

// compile prepares regexes and fills in defaults. Called by Parse before
// Validate so validation can report bad patterns.
func (rs *Ruleset) compile() error {
	if rs.ClassAttr == "" {
		rs.ClassAttr = "className"
	}
	if rs.StyleAttr == "" {
		rs.StyleAttr = "style"
	}
	for i, sr := range rs.StyleRules {
		re, err := regexp.Compile(sr.Pattern)
		if err != nil {
			return fmt.Errorf("%w: styleRules[%d]: %v", ErrInvalidRuleset, i, err)
		}
		sr.re = re
	}
	return nil
}

// Validate checks the semantic constraints the JSON schema cannot express.
// A failure here is fatal for the whole run: a broken registry would
// misbehave on every file.
func (rs *Ruleset) Validate() error {
	if rs.Source.Module == "" {
		return fmt.Errorf("%w: source.module is required", ErrInvalidRuleset)
	}
	if len(rs.Targets) == 0 {
		return fmt.Errorf("%w: at least one target module is required", ErrInvalidRuleset)
	}
	targets := make(map[string]bool, len(rs.Targets))
	for _, t := range rs.Targets {
		targets[t] = true
	}

	for name, rule := range rs.Components {
		if err := validateComponentRule(name, rule, targets); err != nil {
			return err
		}
	}
	for parent, members := range rs.SubComponents {
		for child, rule := range members {
			name := parent + "." + child
			if err := validateComponentRule(name, rule, targets); err != nil {
				return err
			}
			if rule.Structural != nil && rs.Components[parent] == nil {
				return fmt.Errorf("%w: %s: structural rule requires a component rule for parent %q",
					ErrInvalidRuleset, name, parent)
			}
		}
	}

	for i, sr := range rs.StyleRules {
		if len(sr.Styles) == 0 {
			return fmt.Errorf("%w: styleRules[%d] (%s): styles must not be empty",
				ErrInvalidRuleset, i, sr.Pattern)
		}
	}
	return nil
}

func validateComponentRule(name string, rule *ComponentRule, targets map[string]bool) error {
	if rule.Structural != nil {
		switch rule.Structural.Action {
		case ActionGraft:
			if rule.Structural.Attr == "" {
				return fmt.Errorf("%w: %s: graft requires attr", ErrInvalidRuleset, name)
			}
		case ActionUnwrap:
		default:
			return fmt.Errorf("%w: %s: unknown structural action %q",
				ErrInvalidRuleset, name, rule.Structural.Action)
		}
	}
	if rule.Target == "" && rule.Structural == nil {
		return fmt.Errorf("%w: %s: rule needs a target or a structural action", ErrInvalidRuleset, name)
	}
	if rule.Target != "" {
		if rule.Module == "" {
			return fmt.Errorf("%w: %s: target %q has no module", ErrInvalidRuleset, name, rule.Target)
		}
		if !targets[rule.Module] {
			return fmt.Errorf("%w: %s: module %q is not a declared target",
				ErrInvalidRuleset, name, rule.Module)
		}
	}
	for prop, pr := range rule.Props {
		if err := validatePropRule(name, prop, pr); err != nil {
			return err
		}
	}
	return nil
}

func validatePropRule(component, prop string, pr *PropRule) error {
	kinds := 0
	if pr.Drop {
		kinds++
	}
	if pr.Expand != nil {
		kinds++
	}
	if pr.Name != "" || pr.Values != nil {
		kinds++
	}
	if kinds == 0 {
		return fmt.Errorf("%w: %s.%s: empty prop rule", ErrInvalidRuleset, component, prop)
	}
	if kinds > 1 {
		return fmt.Errorf("%w: %s.%s: drop, expand, and rename/values are mutually exclusive",
			ErrInvalidRuleset, component, prop)
	}
	return nil
}
