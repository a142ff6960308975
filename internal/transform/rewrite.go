package transform

import (
	"strconv"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/uimorph/uimorph/internal/rules"
)

// nodeState tracks how far an element got through the rewrite.
type nodeState int

const (
	stateUntouched nodeState = iota
	stateRenamed
	stateRestructured
)

// rewriter walks one tree, consulting the alias table and rule registry,
// and accumulates byte edits plus diagnostics. One rewriter per tree; the
// only shared input is the read-only ruleset.
type rewriter struct {
	source  []byte
	rs      *rules.Ruleset
	aliases *aliasTable

	edits editList
	diags []Diagnostic

	// states is keyed by element start byte; structural rules in the
	// second pass check that their parent was actually rewritten.
	states map[uint]nodeState

	// Emitted target symbols, grouped by module in first-required order.
	requiredOrder []string
	required      map[string][]string
	requiredSeen  map[string]bool

	// migrated marks canonical names that had a rule applied; retain marks
	// canonical names seen in a position the engine could not migrate, so
	// the import synthesizer keeps their specifiers.
	migrated map[string]bool
	retain   map[string]bool

	// graftedAttrs prevents two siblings grafting into the same parent slot.
	graftedAttrs map[string]bool

	pending  []structuralItem
	rewrites int
}

type structuralItem struct {
	element   *tree_sitter.Node
	rule      *rules.ComponentRule
	canonical string
	// migratedKey is the imported symbol this element uses (for Card.Header
	// that is Card); it decides whether the import specifier can be pruned.
	migratedKey string
}

func newRewriter(source []byte, rs *rules.Ruleset, aliases *aliasTable) *rewriter {
	return &rewriter{
		source:       source,
		rs:           rs,
		aliases:      aliases,
		states:       make(map[uint]nodeState),
		required:     make(map[string][]string),
		requiredSeen: make(map[string]bool),
		migrated:     make(map[string]bool),
		retain:       make(map[string]bool),
		graftedAttrs: make(map[string]bool),
	}
}

func (r *rewriter) diag(severity Severity, code, canonical string, node *tree_sitter.Node) {
	pos := node.StartPosition()
	r.diags = append(r.diags, Diagnostic{
		Severity:  severity,
		Code:      code,
		Canonical: canonical,
		Row:       uint(pos.Row),
		Column:    uint(pos.Column),
	})
}

func (r *rewriter) require(module, symbol string) {
	if symbol == "" {
		return
	}
	key := module + "." + symbol
	if r.requiredSeen[key] {
		return
	}
	r.requiredSeen[key] = true
	if _, ok := r.required[module]; !ok {
		r.requiredOrder = append(r.requiredOrder, module)
	}
	r.required[module] = append(r.required[module], symbol)
}

// replaceIfDiff emits a replacement edit only when the new text actually
// differs, so identity renames do not pollute the edit list.
func (r *rewriter) replaceIfDiff(start, end uint, text string) {
	if string(r.source[start:end]) != text {
		r.edits.replace(start, end, text)
	}
}

// walk is the first pass: every JSX element is resolved through the alias
// table and, when a non-structural rule matches, renamed and re-propped in
// place. Elements whose rule declares a structural action are deferred to
// the second pass so their parent is guaranteed stable first.
func (r *rewriter) walk(node *tree_sitter.Node) {
	kind := node.Kind()
	if kind == "jsx_element" || kind == "jsx_self_closing_element" {
		r.visitElement(node)
	}

	count := node.ChildCount()
	for i := uint(0); i < uint(count); i++ {
		r.walk(node.Child(i))
	}
}

func (r *rewriter) visitElement(element *tree_sitter.Node) {
	opening := openingOf(element)
	if opening == nil {
		return
	}
	name := opening.ChildByFieldName("name")
	if name == nil {
		return
	}

	switch name.Kind() {
	case "identifier", "jsx_identifier":
		tag := name.Utf8Text(r.source)
		if !isComponentName(tag) {
			return // plain HTML tag
		}
		canonical, ok := r.aliases.resolve(tag)
		if !ok {
			// Same name as a rule key, but not bound by a source-library
			// import: not applicable, no diagnostic.
			return
		}
		rule := r.rs.Component(canonical)
		if rule == nil {
			r.retain[canonical] = true
			r.diag(SeverityWarn, CodeUnmappedComponent, canonical, name)
			return
		}
		r.applyRule(element, opening, name, rule, canonical, canonical)

	case "member_expression", "jsx_member_expression", "nested_identifier":
		object, property := memberParts(name)
		if object == nil || property == nil {
			return
		}
		if object.Kind() != "identifier" && object.Kind() != "jsx_identifier" {
			return // deeper nesting than Parent.Child
		}
		rootLocal := object.Utf8Text(r.source)
		rootCanonical, ok := r.aliases.resolve(rootLocal)
		if !ok {
			return
		}
		child := property.Utf8Text(r.source)

		var (
			rule      *rules.ComponentRule
			canonical string
		)
		if rootCanonical == "*" {
			// Namespace-qualified simple component: ns.Button.
			rule = r.rs.Component(child)
			canonical = child
		} else {
			rule = r.rs.SubComponent(rootCanonical, child)
			canonical = rootCanonical + "." + child
		}
		if rule == nil {
			r.retain[rootCanonical] = true
			code := CodeUnmappedSubComponent
			if rootCanonical == "*" {
				code = CodeUnmappedComponent
			}
			r.diag(SeverityWarn, code, canonical, name)
			return
		}
		migratedKey := child
		if rootCanonical != "*" {
			migratedKey = rootCanonical
		}
		r.applyRule(element, opening, name, rule, canonical, migratedKey)
	}
}

// applyRule handles the Resolved state: either defer to the structural
// pass or rename and re-prop the element in place.
func (r *rewriter) applyRule(element, opening, name *tree_sitter.Node, rule *rules.ComponentRule, canonical, migratedKey string) {
	if rule.Structural != nil {
		r.pending = append(r.pending, structuralItem{
			element:     element,
			rule:        rule,
			canonical:   canonical,
			migratedKey: migratedKey,
		})
		return
	}

	r.replaceIfDiff(uint(name.StartByte()), uint(name.EndByte()), rule.Target)
	if closing := closingOf(element); closing != nil {
		if closingName := closing.ChildByFieldName("name"); closingName != nil {
			r.replaceIfDiff(uint(closingName.StartByte()), uint(closingName.EndByte()), rule.Target)
		}
	}

	r.rewriteAttributes(opening, rule, canonical)

	r.states[uint(element.StartByte())] = stateRenamed
	r.migrated[migratedKey] = true
	r.require(rule.Module, rule.Target)
	r.rewrites++
}

// rewriteAttributes runs every attribute through its prop rule, appends
// default attributes, and folds utility class tokens into the style object.
func (r *rewriter) rewriteAttributes(opening *tree_sitter.Node, rule *rules.ComponentRule, canonical string) {
	var (
		classAttr *jsxAttr
		styleAttr *tree_sitter.Node // the jsx_attribute node carrying the style object
	)
	finalNames := make(map[string]bool)

	for i := uint(0); i < uint(opening.ChildCount()); i++ {
		child := opening.Child(i)
		if child.Kind() != "jsx_attribute" {
			continue
		}
		attr := parseAttr(child, r.source)
		if attr == nil {
			continue
		}

		switch attr.name {
		case r.rs.ClassAttr:
			a := *attr
			classAttr = &a
			continue
		case r.rs.StyleAttr:
			styleAttr = child
			finalNames[attr.name] = true
			continue
		}

		pr, ok := rule.Props[attr.name]
		if !ok {
			finalNames[attr.name] = true
			continue
		}

		result := applyPropRule(pr, *attr)
		switch result.outcome {
		case propUnchanged:
			finalNames[attr.name] = true
		case propRenamed:
			r.renameAttr(child, result.newName)
			finalNames[result.newName] = true
		case propValueMapped:
			r.renameAttr(child, result.newName)
			r.replaceAttrValue(attr, result.newValue)
			finalNames[result.newName] = true
		case propExpanded:
			r.edits.replace(attr.start, attr.end, renderAttrs(result.specs))
			for _, spec := range result.specs {
				finalNames[spec.Name] = true
			}
		case propDropped:
			start := trimLeadingSpace(r.source, attr.start)
			r.edits.remove(start, attr.end)
		case propDynamic:
			finalNames[attr.name] = true
			r.diag(SeverityInfo, CodeDynamicValueSkipped, canonical+"."+attr.name, child)
		}
	}

	if len(rule.Defaults) > 0 {
		var missing []rules.AttributeSpec
		for _, spec := range rule.Defaults {
			if !finalNames[spec.Name] {
				missing = append(missing, spec)
			}
		}
		if len(missing) > 0 {
			r.edits.insert(attrInsertPos(opening), " "+renderAttrs(missing))
		}
	}

	if classAttr != nil {
		r.mergeClassAttr(opening, classAttr, styleAttr, canonical)
	}
}

func (r *rewriter) renameAttr(attrNode *tree_sitter.Node, newName string) {
	nameNode := attrNode.Child(0)
	if nameNode == nil {
		return
	}
	r.replaceIfDiff(uint(nameNode.StartByte()), uint(nameNode.EndByte()), newName)
}

func (r *rewriter) replaceAttrValue(attr *jsxAttr, newValue string) {
	if !attr.hasValue {
		return
	}
	quote := byte('"')
	if len(attr.raw) > 0 && (attr.raw[0] == '\'' || attr.raw[0] == '"') {
		quote = attr.raw[0]
	}
	r.replaceIfDiff(attr.valueStart, attr.valueEnd, string(quote)+newValue+string(quote))
}

// mergeClassAttr runs the style merger over the class attribute and folds
// the derived entries into the element's style object. Keys already set on
// the style attribute always win; unmatched tokens stay in the class list,
// and the class attribute disappears only when nothing remains.
func (r *rewriter) mergeClassAttr(opening *tree_sitter.Node, classAttr *jsxAttr, styleAttr *tree_sitter.Node, canonical string) {
	if !classAttr.static {
		r.diag(SeverityInfo, CodeDynamicValueSkipped, canonical+"."+classAttr.name, opening)
		return
	}

	existing := make(map[string]bool)
	var styleObject *tree_sitter.Node
	if styleAttr != nil {
		styleObject = styleObjectOf(styleAttr)
		if styleObject == nil {
			// A computed style expression: derived keys could collide
			// with it, so leave the class list alone.
			r.diag(SeverityInfo, CodeDynamicValueSkipped, canonical+"."+r.rs.StyleAttr, styleAttr)
			return
		}
		collectStyleKeys(styleObject, r.source, existing)
	}

	tokens := strings.Fields(classAttr.literal)
	entries, remaining := mergeStyles(r.rs, existing, classAttr.literal)
	if len(remaining) == len(tokens) {
		return // nothing matched
	}

	if styleObject != nil {
		if len(entries) > 0 {
			if lastProp := lastNamedChild(styleObject); lastProp != nil {
				r.edits.insert(uint(lastProp.EndByte()), ", "+renderStyleObject(entries))
			} else {
				r.edits.insert(uint(styleObject.EndByte())-1, renderStyleObject(entries))
			}
		}
		if len(remaining) == 0 {
			start := trimLeadingSpace(r.source, classAttr.start)
			r.edits.remove(start, classAttr.end)
		} else {
			r.replaceAttrValue(classAttr, strings.Join(remaining, " "))
		}
		return
	}

	// No style attribute yet: rewrite the class attribute into the style
	// attribute (plus the surviving class list, when tokens remain).
	var parts []string
	if len(remaining) > 0 {
		quote := byte('"')
		if len(classAttr.raw) > 0 && (classAttr.raw[0] == '\'' || classAttr.raw[0] == '"') {
			quote = classAttr.raw[0]
		}
		parts = append(parts, classAttr.name+"="+string(quote)+strings.Join(remaining, " ")+string(quote))
	}
	if len(entries) > 0 {
		parts = append(parts, r.rs.StyleAttr+"={{ "+renderStyleObject(entries)+" }}")
	}
	if len(parts) == 0 {
		start := trimLeadingSpace(r.source, classAttr.start)
		r.edits.remove(start, classAttr.end)
		return
	}
	r.edits.replace(classAttr.start, classAttr.end, strings.Join(parts, " "))
}

// applyStructural is the second pass. Items run innermost-first so nested
// content is final before an outer graft captures it. Every failure mode
// is a recoverable no-op: one unmappable node never aborts the tree.
func (r *rewriter) applyStructural() {
	items := r.pending
	for i := len(items) - 1; i >= 0; i-- {
		r.applyStructuralItem(items[i])
	}
}

func (r *rewriter) applyStructuralItem(item structuralItem) {
	parent := enclosingElement(item.element)
	if parent == nil || r.states[uint(parent.StartByte())] == stateUntouched {
		r.retain[item.migratedKey] = true
		r.diag(SeverityWarn, CodeStructuralTargetMissing, item.canonical, item.element)
		return
	}

	switch item.rule.Structural.Action {
	case rules.ActionUnwrap:
		opening := openingOf(item.element)
		closing := closingOf(item.element)
		if closing == nil {
			// Self-closing wrapper: nothing inside, drop it whole.
			start, end := trimLineSpan(r.source, uint(item.element.StartByte()), uint(item.element.EndByte()))
			r.edits.remove(start, end)
		} else {
			r.edits.remove(uint(opening.StartByte()), uint(opening.EndByte()))
			r.edits.remove(uint(closing.StartByte()), uint(closing.EndByte()))
		}

	case rules.ActionGraft:
		if !r.graftChildren(item, parent) {
			return
		}
	}

	r.states[uint(item.element.StartByte())] = stateRestructured
	r.migrated[item.migratedKey] = true
	r.require(item.rule.Module, item.rule.Target)
	r.rewrites++
}

// graftChildren moves the element's children into an attribute on the
// parent's opening element and deletes the element.
func (r *rewriter) graftChildren(item structuralItem, parent *tree_sitter.Node) bool {
	attrName := item.rule.Structural.Attr
	parentOpening := openingOf(parent)
	if parentOpening == nil {
		r.retain[item.migratedKey] = true
		r.diag(SeverityWarn, CodeStructuralTargetMissing, item.canonical, item.element)
		return false
	}

	slotKey := strconv.FormatUint(uint64(parent.StartByte()), 10) + ":" + attrName
	if r.graftedAttrs[slotKey] || hasAttribute(parentOpening, r.source, attrName) {
		// The slot is already occupied; the explicit value wins.
		r.retain[item.migratedKey] = true
		r.diag(SeverityWarn, CodeStructuralTargetMissing, item.canonical, item.element)
		return false
	}
	r.graftedAttrs[slotKey] = true

	value := `""`
	if closing := closingOf(item.element); closing != nil {
		opening := openingOf(item.element)
		contentStart := uint(opening.EndByte())
		contentEnd := uint(closing.StartByte())
		contentEdits := r.edits.takeRange(contentStart, contentEnd)
		content := strings.TrimSpace(string(renderRange(r.source, contentEdits, contentStart, contentEnd)))
		value = renderGraftValue(content)
	}

	r.edits.insert(attrInsertPos(parentOpening), " "+attrName+"="+value)
	start, end := trimLineSpan(r.source, uint(item.element.StartByte()), uint(item.element.EndByte()))
	r.edits.remove(start, end)
	return true
}

// renderGraftValue renders grafted children as an attribute value: plain
// text becomes a string attribute, markup is wrapped in a fragment.
func renderGraftValue(content string) string {
	if content == "" {
		return `""`
	}
	if !strings.ContainsAny(content, "<{\n\"") {
		return `"` + content + `"`
	}
	if strings.HasPrefix(content, "<") && strings.HasSuffix(content, ">") && strings.Count(content, "<") == 2 {
		// A single simple element needs no fragment.
		return "{" + content + "}"
	}
	return "{<>" + content + "</>}"
}

// Tree helpers. Grammar versions differ in a few node kind names, so the
// helpers probe fields first and fall back to positional children.

func openingOf(element *tree_sitter.Node) *tree_sitter.Node {
	if element.Kind() == "jsx_self_closing_element" {
		return element
	}
	for i := uint(0); i < uint(element.ChildCount()); i++ {
		child := element.Child(i)
		if child.Kind() == "jsx_opening_element" {
			return child
		}
	}
	return nil
}

func closingOf(element *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < uint(element.ChildCount()); i++ {
		child := element.Child(i)
		if child.Kind() == "jsx_closing_element" {
			return child
		}
	}
	return nil
}

func memberParts(name *tree_sitter.Node) (object, property *tree_sitter.Node) {
	object = name.ChildByFieldName("object")
	property = name.ChildByFieldName("property")
	if object == nil || property == nil {
		if name.NamedChildCount() >= 2 {
			object = name.NamedChild(0)
			property = name.NamedChild(uint(name.NamedChildCount()) - 1)
		}
	}
	return object, property
}

// enclosingElement returns the nearest ancestor jsx_element.
func enclosingElement(element *tree_sitter.Node) *tree_sitter.Node {
	for current := element.Parent(); current != nil; current = current.Parent() {
		if current.Kind() == "jsx_element" {
			return current
		}
	}
	return nil
}

// attrInsertPos returns the byte position for appending attributes: after
// the last attribute if any, otherwise right after the tag name.
func attrInsertPos(opening *tree_sitter.Node) uint {
	pos := uint(0)
	if name := opening.ChildByFieldName("name"); name != nil {
		pos = uint(name.EndByte())
	}
	for i := uint(0); i < uint(opening.ChildCount()); i++ {
		child := opening.Child(i)
		switch child.Kind() {
		case "jsx_attribute", "jsx_expression":
			if end := uint(child.EndByte()); end > pos {
				pos = end
			}
		}
	}
	return pos
}

func hasAttribute(opening *tree_sitter.Node, source []byte, name string) bool {
	for i := uint(0); i < uint(opening.ChildCount()); i++ {
		child := opening.Child(i)
		if child.Kind() != "jsx_attribute" {
			continue
		}
		if nameNode := child.Child(0); nameNode != nil && nameNode.Utf8Text(source) == name {
			return true
		}
	}
	return false
}

// styleObjectOf returns the object literal inside style={{...}}, or nil
// when the style value is anything else.
func styleObjectOf(styleAttr *tree_sitter.Node) *tree_sitter.Node {
	for i := uint(0); i < uint(styleAttr.ChildCount()); i++ {
		child := styleAttr.Child(i)
		if child.Kind() != "jsx_expression" {
			continue
		}
		if child.NamedChildCount() == 1 {
			inner := child.NamedChild(0)
			if inner.Kind() == "object" {
				return inner
			}
		}
		return nil
	}
	return nil
}

func collectStyleKeys(object *tree_sitter.Node, source []byte, keys map[string]bool) {
	for i := uint(0); i < uint(object.NamedChildCount()); i++ {
		prop := object.NamedChild(i)
		switch prop.Kind() {
		case "pair":
			if key := prop.ChildByFieldName("key"); key != nil {
				keys[unquote(key.Utf8Text(source))] = true
			}
		case "shorthand_property_identifier":
			keys[prop.Utf8Text(source)] = true
		}
	}
}

func lastNamedChild(node *tree_sitter.Node) *tree_sitter.Node {
	count := node.NamedChildCount()
	if count == 0 {
		return nil
	}
	return node.NamedChild(uint(count) - 1)
}

// parseAttr decomposes a jsx_attribute node.
func parseAttr(node *tree_sitter.Node, source []byte) *jsxAttr {
	nameNode := node.Child(0)
	if nameNode == nil {
		return nil
	}
	attr := &jsxAttr{
		name:    nameNode.Utf8Text(source),
		start:   uint(node.StartByte()),
		end:     uint(node.EndByte()),
		literal: "true",
		static:  true,
	}

	for i := uint(1); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		switch child.Kind() {
		case "string":
			attr.hasValue = true
			attr.valueStart = uint(child.StartByte())
			attr.valueEnd = uint(child.EndByte())
			attr.raw = child.Utf8Text(source)
			attr.literal = unquote(attr.raw)
		case "jsx_expression":
			attr.hasValue = true
			attr.valueStart = uint(child.StartByte())
			attr.valueEnd = uint(child.EndByte())
			attr.raw = child.Utf8Text(source)
			attr.literal, attr.static = staticExprValue(child, source)
		}
	}
	return attr
}

// staticExprValue extracts a statically-known value from a braced
// expression, or reports the value as dynamic.
func staticExprValue(expr *tree_sitter.Node, source []byte) (string, bool) {
	if expr.NamedChildCount() != 1 {
		return "", false
	}
	inner := expr.NamedChild(0)
	switch inner.Kind() {
	case "string":
		return unquote(inner.Utf8Text(source)), true
	case "number", "true", "false":
		return inner.Utf8Text(source), true
	}
	return "", false
}

// isComponentName reports whether a tag refers to a component rather than
// a plain HTML element.
func isComponentName(tag string) bool {
	return len(tag) > 0 && tag[0] >= 'A' && tag[0] <= 'Z'
}
