package transform

import "sort"

// edit records a byte range to be replaced with text. A zero-width range
// is an insertion; empty text is a deletion.
type edit struct {
	start uint
	end   uint
	text  string
}

// editList accumulates non-overlapping edits during a tree pass. Edits are
// kept in insertion order and sorted once when applied, so same-position
// insertions keep their registration order.
type editList struct {
	edits []edit
}

func (l *editList) replace(start, end uint, text string) {
	l.edits = append(l.edits, edit{start: start, end: end, text: text})
}

func (l *editList) insert(pos uint, text string) {
	l.edits = append(l.edits, edit{start: pos, end: pos, text: text})
}

func (l *editList) remove(start, end uint) {
	l.edits = append(l.edits, edit{start: start, end: end})
}

func (l *editList) empty() bool {
	return len(l.edits) == 0
}

// takeRange removes and returns all edits fully contained in [start, end).
// Structural grafts use this to relocate content that was already rewritten
// in the naming pass.
func (l *editList) takeRange(start, end uint) []edit {
	var taken []edit
	kept := l.edits[:0]
	for _, e := range l.edits {
		if e.start >= start && e.end <= end {
			taken = append(taken, e)
			continue
		}
		kept = append(kept, e)
	}
	l.edits = kept
	return taken
}

// apply splices all edits into source, producing a new byte slice.
// Edits must be non-overlapping.
func (l *editList) apply(source []byte) []byte {
	return spliceEdits(source, l.edits, 0)
}

// renderRange applies the given edits to the sub-slice source[start:end].
// Edit positions are absolute; base shifts them into the sub-slice.
func renderRange(source []byte, edits []edit, start, end uint) []byte {
	return spliceEdits(source[start:end], edits, start)
}

// trimLeadingSpace extends start backwards over spaces and tabs so a
// deleted attribute takes its separating whitespace with it.
func trimLeadingSpace(source []byte, start uint) uint {
	for start > 0 && (source[start-1] == ' ' || source[start-1] == '\t') {
		start--
	}
	return start
}

// trimLineSpan widens [start, end) to swallow the line a deleted node sat
// on: leading indentation, and the trailing newline when the node owned
// the whole line.
func trimLineSpan(source []byte, start, end uint) (uint, uint) {
	trimmed := trimLeadingSpace(source, start)
	if (trimmed == 0 || source[trimmed-1] == '\n') && end < uint(len(source)) && source[end] == '\n' {
		end++
	}
	return trimmed, end
}

func spliceEdits(source []byte, edits []edit, base uint) []byte {
	if len(edits) == 0 {
		return append([]byte(nil), source...)
	}

	ordered := append([]edit(nil), edits...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].start < ordered[j].start })

	result := make([]byte, 0, len(source))
	last := uint(0)
	for _, e := range ordered {
		s, t := e.start-base, e.end-base
		result = append(result, source[last:s]...)
		result = append(result, e.text...)
		last = t
	}
	result = append(result, source[last:]...)
	return result
}
