package transform

import (
	"testing"

	"github.com/uimorph/uimorph/internal/rules"
)

func staticAttr(name, literal string) jsxAttr {
	return jsxAttr{name: name, literal: literal, static: true, hasValue: true}
}

func dynamicAttr(name string) jsxAttr {
	return jsxAttr{name: name, hasValue: true}
}

func TestApplyPropRule(t *testing.T) {
	expand := &rules.PropRule{Expand: map[string][]rules.AttributeSpec{
		"primary": {{Name: "type", Value: "primary"}},
	}}
	values := &rules.PropRule{Name: "size", Values: map[string]string{"sm": "small"}}
	rename := &rules.PropRule{Name: "open"}
	drop := &rules.PropRule{Drop: true}

	tests := []struct {
		name string
		rule *rules.PropRule
		attr jsxAttr
		want propOutcome
	}{
		{"drop always drops", drop, staticAttr("active", "true"), propDropped},
		{"expand on mapped literal", expand, staticAttr("variant", "primary"), propExpanded},
		{"expand on unmapped literal passes through", expand, staticAttr("variant", "custom"), propUnchanged},
		{"expand on dynamic value is skipped", expand, dynamicAttr("variant"), propDynamic},
		{"values on mapped literal", values, staticAttr("size", "sm"), propValueMapped},
		{"values on unmapped literal passes through", values, staticAttr("size", "giant"), propUnchanged},
		{"values on dynamic value passes through", values, dynamicAttr("size"), propUnchanged},
		{"rename applies to dynamic values", rename, dynamicAttr("show"), propRenamed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := applyPropRule(tt.rule, tt.attr)
			if got.outcome != tt.want {
				t.Errorf("outcome = %v, want %v", got.outcome, tt.want)
			}
		})
	}

	result := applyPropRule(values, staticAttr("size", "sm"))
	if result.newName != "size" || result.newValue != "small" {
		t.Errorf("value map result = %q=%q, want size=small", result.newName, result.newValue)
	}
}

func TestRenderAttr(t *testing.T) {
	tests := []struct {
		spec rules.AttributeSpec
		want string
	}{
		{rules.AttributeSpec{Name: "type", Value: "primary"}, `type="primary"`},
		{rules.AttributeSpec{Name: "danger", Expr: "true"}, `danger={true}`},
		{rules.AttributeSpec{Name: "closable"}, "closable"},
	}
	for _, tt := range tests {
		if got := renderAttr(tt.spec); got != tt.want {
			t.Errorf("renderAttr(%+v) = %q, want %q", tt.spec, got, tt.want)
		}
	}
}

func TestStyleValueJS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1.5", "1.5"},
		{"0.5rem", "'0.5rem'"},
		{"flex", "'flex'"},
		{"it's", `'it\'s'`},
	}
	for _, tt := range tests {
		if got := styleValueJS(tt.in); got != tt.want {
			t.Errorf("styleValueJS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
