package transform

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/uimorph/uimorph/internal/rules"
)

// importSpecifier is one binding introduced by an import statement.
type importSpecifier struct {
	local     string
	canonical string
	start     uint
	end       uint
}

// importStmt captures everything the import synthesizer needs to know
// about one top-level import statement.
type importStmt struct {
	start  uint
	end    uint
	source string

	def   *importSpecifier // default import, if any
	ns    *importSpecifier // namespace import, if any
	named []importSpecifier

	// Interior span of the named-imports braces, for appending specifiers.
	namedStart uint
	namedEnd   uint
	hasNamed   bool
}

// aliasTable maps locally-bound identifiers back to their canonical names
// in the source library. Built once per tree from the import section and
// discarded with it.
type aliasTable struct {
	bindings map[string]string // local name -> canonical name
	stmts    []*importStmt     // source-library imports, in document order
	sheets   []*importStmt     // stylesheet imports matched by suffix
	byModule map[string]*importStmt
	// lastImportEnd is the byte directly after the final top-level import
	// statement; synthesized imports are inserted there.
	lastImportEnd uint
}

// resolve returns the canonical name bound to a local identifier.
func (t *aliasTable) resolve(local string) (string, bool) {
	canonical, ok := t.bindings[local]
	return canonical, ok
}

// buildAliasTable scans the tree's top-level import statements. Imports
// whose source is the configured source module (exactly, or as a deep
// "module/Component" path) contribute bindings; imports whose source ends
// in a configured stylesheet suffix are recorded separately. All other
// imports are only indexed by module for later merging.
func buildAliasTable(root *tree_sitter.Node, source []byte, rs *rules.Ruleset) *aliasTable {
	table := &aliasTable{
		bindings: make(map[string]string),
		byModule: make(map[string]*importStmt),
	}

	count := root.ChildCount()
	for i := uint(0); i < uint(count); i++ {
		child := root.Child(i)
		if child.Kind() != "import_statement" {
			continue
		}

		stmt := parseImportStmt(child, source)
		if stmt == nil {
			continue
		}
		if table.lastImportEnd < stmt.end {
			table.lastImportEnd = stmt.end
		}
		if _, seen := table.byModule[stmt.source]; !seen {
			table.byModule[stmt.source] = stmt
		}

		switch {
		case stmt.source == rs.Source.Module:
			table.addSourceStmt(stmt, "")
		case strings.HasPrefix(stmt.source, rs.Source.Module+"/"):
			// Deep import: the default binding's canonical name is the
			// final path segment (react-bootstrap/Button -> Button).
			seg := stmt.source[strings.LastIndexByte(stmt.source, '/')+1:]
			table.addSourceStmt(stmt, seg)
		case isStylesheet(stmt.source, rs.Source.Stylesheets):
			table.sheets = append(table.sheets, stmt)
		}
	}

	return table
}

func (t *aliasTable) addSourceStmt(stmt *importStmt, deepCanonical string) {
	t.stmts = append(t.stmts, stmt)
	if stmt.def != nil {
		canonical := "default"
		if deepCanonical != "" {
			canonical = deepCanonical
		}
		stmt.def.canonical = canonical
		t.bindings[stmt.def.local] = canonical
	}
	if stmt.ns != nil {
		stmt.ns.canonical = "*"
		t.bindings[stmt.ns.local] = "*"
	}
	for i := range stmt.named {
		spec := &stmt.named[i]
		t.bindings[spec.local] = spec.canonical
	}
}

func isStylesheet(source string, suffixes []string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(source, suffix) {
			return true
		}
	}
	return false
}

// parseImportStmt decomposes one import_statement node.
func parseImportStmt(node *tree_sitter.Node, source []byte) *importStmt {
	sourceNode := node.ChildByFieldName("source")
	if sourceNode == nil {
		return nil
	}

	stmt := &importStmt{
		start:  uint(node.StartByte()),
		end:    uint(node.EndByte()),
		source: unquote(sourceNode.Utf8Text(source)),
	}

	for i := uint(0); i < uint(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Kind() != "import_clause" {
			continue
		}
		for j := uint(0); j < uint(child.ChildCount()); j++ {
			clause := child.Child(j)
			switch clause.Kind() {
			case "identifier":
				stmt.def = &importSpecifier{
					local: clause.Utf8Text(source),
					start: uint(clause.StartByte()),
					end:   uint(clause.EndByte()),
				}
			case "namespace_import":
				for k := uint(0); k < uint(clause.ChildCount()); k++ {
					inner := clause.Child(k)
					if inner.Kind() == "identifier" {
						stmt.ns = &importSpecifier{
							local: inner.Utf8Text(source),
							start: uint(clause.StartByte()),
							end:   uint(clause.EndByte()),
						}
					}
				}
			case "named_imports":
				stmt.hasNamed = true
				stmt.namedStart = uint(clause.StartByte())
				stmt.namedEnd = uint(clause.EndByte())
				collectNamedSpecifiers(clause, source, stmt)
			}
		}
	}

	return stmt
}

func collectNamedSpecifiers(namedImports *tree_sitter.Node, source []byte, stmt *importStmt) {
	for i := uint(0); i < uint(namedImports.ChildCount()); i++ {
		spec := namedImports.Child(i)
		if spec.Kind() != "import_specifier" {
			continue
		}
		name := spec.ChildByFieldName("name")
		if name == nil {
			continue
		}
		canonical := name.Utf8Text(source)
		local := canonical
		if alias := spec.ChildByFieldName("alias"); alias != nil {
			local = alias.Utf8Text(source)
		}
		stmt.named = append(stmt.named, importSpecifier{
			local:     local,
			canonical: canonical,
			start:     uint(spec.StartByte()),
			end:       uint(spec.EndByte()),
		})
	}
}

// unquote strips the surrounding quotes from a string literal's text.
func unquote(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			return s[1 : len(s)-1]
		}
	}
	return s
}
