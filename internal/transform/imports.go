package transform

import "strings"

// synthesizeImports reconciles the file's import section with the rewrite:
// fully-migrated source-library specifiers are removed, matched stylesheet
// imports are dropped, and every target symbol the rewrite emitted is
// imported from its module, merging into an existing import when one is
// already there.
func (r *rewriter) synthesizeImports() {
	for _, stmt := range r.aliases.stmts {
		r.pruneSourceImport(stmt)
	}
	for _, sheet := range r.aliases.sheets {
		start, end := trimLineSpan(r.source, sheet.start, sheet.end)
		r.edits.remove(start, end)
	}
	for _, module := range r.requiredOrder {
		r.addTargetImport(module, r.required[module])
	}
}

// removable reports whether a source-library specifier can go: its
// canonical name was migrated at least once and never seen in a position
// the engine had to leave alone.
func (r *rewriter) removable(canonical string) bool {
	return r.migrated[canonical] && !r.retain[canonical]
}

func (r *rewriter) pruneSourceImport(stmt *importStmt) {
	var kept []string
	removedNamed := 0
	for _, spec := range stmt.named {
		if r.removable(spec.canonical) {
			removedNamed++
			continue
		}
		if spec.local == spec.canonical {
			kept = append(kept, spec.canonical)
		} else {
			kept = append(kept, spec.canonical+" as "+spec.local)
		}
	}

	removeDef := stmt.def != nil && r.removable(stmt.def.canonical)
	// Namespace imports are never pruned: member accesses outside JSX
	// cannot be proven migrated.
	keepsBindings := stmt.ns != nil || (stmt.def != nil && !removeDef) || len(kept) > 0

	if !keepsBindings && (removedNamed > 0 || removeDef) {
		start, end := trimLineSpan(r.source, stmt.start, stmt.end)
		r.edits.remove(start, end)
		return
	}
	if removedNamed > 0 {
		if len(kept) > 0 {
			r.edits.replace(stmt.namedStart, stmt.namedEnd, "{ "+strings.Join(kept, ", ")+" }")
		} else if stmt.def != nil || stmt.ns != nil {
			// `import Foo, { Bar } from ...` with Bar gone: drop the
			// braces and their leading comma.
			cut := stmt.namedStart
			for cut > stmt.start && (r.source[cut-1] == ' ' || r.source[cut-1] == ',') {
				cut--
			}
			r.edits.remove(cut, stmt.namedEnd)
		}
	}
	if removeDef && keepsBindings {
		// `import Def, { kept } from ...`: drop the default and its comma.
		cut := stmt.def.end
		for cut < stmt.end && (r.source[cut] == ',' || r.source[cut] == ' ') {
			cut++
		}
		r.edits.remove(stmt.def.start, cut)
	}
}

// addTargetImport imports symbols from module, reusing an existing import
// statement for that module when the file already has one.
func (r *rewriter) addTargetImport(module string, symbols []string) {
	existing := r.aliases.byModule[module]

	var missing []string
	for _, symbol := range symbols {
		if existing != nil && importsLocal(existing, symbol) {
			continue
		}
		missing = append(missing, symbol)
	}
	if len(missing) == 0 {
		return
	}

	if existing != nil && existing.hasNamed {
		if len(existing.named) > 0 {
			last := existing.named[len(existing.named)-1]
			r.edits.insert(last.end, ", "+strings.Join(missing, ", "))
		} else {
			r.edits.insert(existing.namedStart+1, " "+strings.Join(missing, ", ")+" ")
		}
		return
	}

	r.insertImportText("import { " + strings.Join(missing, ", ") + " } from '" + module + "';")
}

// insertImportText places a synthesized import statement on its own line
// after the last existing import. Insertion goes past that import's
// trailing newline so it never overlaps a whole-statement deletion, which
// swallows the newline with the statement.
func (r *rewriter) insertImportText(stmt string) {
	pos := r.aliases.lastImportEnd
	if pos < uint(len(r.source)) && r.source[pos] == '\n' {
		r.edits.insert(pos+1, stmt+"\n")
		return
	}
	r.edits.insert(pos, "\n"+stmt)
}

func importsLocal(stmt *importStmt, local string) bool {
	if stmt.def != nil && stmt.def.local == local {
		return true
	}
	if stmt.ns != nil && stmt.ns.local == local {
		return true
	}
	for _, spec := range stmt.named {
		if spec.local == local {
			return true
		}
	}
	return false
}
