// Package transform implements the tree-sitter based migration engine:
// JSX elements bound to the source component library are renamed and
// re-propped according to a rule registry, utility class tokens are
// folded into inline style objects, and the import section is rewritten
// to match.
//
// It operates on raw source bytes, preserving all formatting, comments,
// and whitespace by doing surgical byte-range replacements guided by the
// concrete syntax tree. Untouched regions come out byte-identical; a file
// with nothing to migrate comes back unchanged.
package transform

import (
	"fmt"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/uimorph/uimorph/internal/rules"
)

// Language selects which tree-sitter grammar to use for parsing.
type Language int

const (
	JavaScript Language = iota
	TypeScript
	TSX
)

// LanguageForFile picks a grammar from a file extension, defaulting to
// TSX, which parses plain JSX as well.
func LanguageForFile(path string) Language {
	switch {
	case hasSuffixFold(path, ".ts") && !hasSuffixFold(path, ".d.ts"):
		return TypeScript
	case hasSuffixFold(path, ".js") || hasSuffixFold(path, ".mjs") || hasSuffixFold(path, ".cjs"):
		return JavaScript
	default:
		return TSX
	}
}

func hasSuffixFold(s, suffix string) bool {
	if len(s) < len(suffix) {
		return false
	}
	tail := s[len(s)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		c := tail[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != suffix[i] {
			return false
		}
	}
	return true
}

// Result holds the output of migrating one file.
type Result struct {
	// Output is the transformed source code. When Changed is false it is
	// a byte-identical copy of the input.
	Output []byte
	// Changed reports whether any rewrite happened.
	Changed bool
	// Rewrites is the number of JSX elements renamed or restructured.
	Rewrites int
	// Diagnostics lists every element or value the engine had to skip.
	Diagnostics []Diagnostic
}

// Migrate rewrites all source-library JSX usage in source according to
// the ruleset, returning the modified source together with a change flag
// and the skip diagnostics.
//
// Only identifiers bound by an import of the ruleset's source module are
// candidates; a local component that merely shares a rule key's name is
// left alone. A file with no such imports short-circuits without a tree
// walk beyond the import section, so re-running the migration over an
// already-migrated tree is a no-op.
func Migrate(source []byte, lang Language, rs *rules.Ruleset) (*Result, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return nil, err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tree_sitter.NewLanguage(tsLang)); err != nil {
		return nil, fmt.Errorf("setting language: %w", err)
	}

	tree := parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse returned nil root node")
	}

	table := buildAliasTable(root, source, rs)
	if len(table.bindings) == 0 {
		return &Result{Output: append([]byte(nil), source...)}, nil
	}

	r := newRewriter(source, rs, table)
	r.walk(root)
	r.applyStructural()

	// Stylesheet imports only come out alongside a real rewrite; a file
	// that uses no migratable components keeps its imports untouched.
	if r.rewrites == 0 {
		return &Result{
			Output:      append([]byte(nil), source...),
			Diagnostics: r.diags,
		}, nil
	}

	r.synthesizeImports()

	return &Result{
		Output:      r.edits.apply(source),
		Changed:     true,
		Rewrites:    r.rewrites,
		Diagnostics: r.diags,
	}, nil
}

// DumpTree returns the S-expression representation of the parsed source.
// Useful for debugging which node types the grammar produces for your code.
func DumpTree(source []byte, lang Language) (string, error) {
	tsLang, err := getLanguage(lang)
	if err != nil {
		return "", err
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tree_sitter.NewLanguage(tsLang)); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}

	tree := parser.Parse(source, nil)
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return "", fmt.Errorf("parse returned nil root node")
	}

	return root.ToSexp(), nil
}

// getLanguage returns the unsafe.Pointer to the tree-sitter language.
func getLanguage(lang Language) (unsafe.Pointer, error) {
	switch lang {
	case JavaScript:
		return tree_sitter_javascript.Language(), nil
	case TypeScript:
		return tree_sitter_typescript.LanguageTypescript(), nil
	case TSX:
		return tree_sitter_typescript.LanguageTSX(), nil
	default:
		return nil, fmt.Errorf("unsupported language: %d", lang)
	}
}
