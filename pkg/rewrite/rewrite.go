// Package rewrite substitutes allocated registers for identifiers.
package rewrite

import (
	"sort"
	"strings"

	"github.com/raymyers/mppd/pkg/ident"
)

// SortedKeys returns the keys of m, longest first. Keys of equal length are
// ordered lexically so the result is deterministic.
func SortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Replace replaces every occurrence of each key of m in text with its value,
// longest key first. Substitution is plain substring replacement.
func Replace(text string, m map[string]string) string {
	for _, k := range SortedKeys(m) {
		if k == "" {
			continue
		}
		text = strings.ReplaceAll(text, k, m[k])
	}
	return text
}

// Apply collapses flagged identifiers onto their bases and then replaces
// each base with its register. Identifiers without a register are left as is.
func Apply(text string, m *ident.Mapping) string {
	text = Replace(text, m.Flags)
	return Replace(text, m.Registers)
}
