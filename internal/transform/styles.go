package transform

import (
	"sort"
	"strings"

	"github.com/uimorph/uimorph/internal/rules"
)

// styleEntry is one derived style key/value pair. Entries keep the order
// in which their tokens appeared so output is deterministic.
type styleEntry struct {
	key   string
	value string
}

// mergeStyles converts a class-token string into style entries using the
// ruleset's ordered style rules. existing holds style keys already present
// on the element's style attribute; those, and keys set by an earlier
// token, are never overwritten (the explicit value always wins, derived
// values only fill gaps). Unmatched tokens come back in original order so
// the caller can re-attach them verbatim.
//
// The function knows nothing about the element being styled; it is a pure
// string-to-entries transform shared by every component rule.
func mergeStyles(rs *rules.Ruleset, existing map[string]bool, classString string) (entries []styleEntry, remaining []string) {
	seen := make(map[string]bool, len(existing))
	for key := range existing {
		seen[key] = true
	}

	for _, token := range strings.Fields(classString) {
		matched := false
		for _, rule := range rs.StyleRules {
			styles, ok := rule.Match(token)
			if !ok {
				continue
			}
			matched = true
			// A single rule may yield several keys (mx -> marginLeft and
			// marginRight); sort them for a stable rendering order.
			keys := make([]string, 0, len(styles))
			for key := range styles {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				if seen[key] {
					continue
				}
				seen[key] = true
				entries = append(entries, styleEntry{key: key, value: styles[key]})
			}
			break
		}
		if !matched {
			remaining = append(remaining, token)
		}
	}

	return entries, remaining
}

// renderStyleObject renders entries as the interior of a JS object literal.
func renderStyleObject(entries []styleEntry) string {
	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.key + ": " + styleValueJS(e.value)
	}
	return strings.Join(parts, ", ")
}
