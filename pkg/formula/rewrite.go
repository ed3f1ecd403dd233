package formula

import (
	"sort"
	"strconv"
	"strings"
)

// rewriteIdentifiers maps every bound field id to a synthesized variable name
// (f0, f1, ...) and applies the same substitution to the formula text. Field
// ids are author data and may be numeric-looking or contain characters the
// tokenizer rejects, so the substitution happens before parsing.
//
// Matching is whole-token: an id only matches when the characters on both
// sides are not identifier characters. Candidates are tried longest first at
// each position, so one id being a substring of another never
// cross-substitutes. Synthesized names skip any token already present in the
// formula text; otherwise an unbound token spelled like a synthesized name
// would silently capture another field's value instead of failing.
func rewriteIdentifiers(formula string, bindings map[string]any) (string, map[string]any) {
	if len(bindings) == 0 {
		return formula, map[string]any{}
	}

	ids := make([]string, 0, len(bindings))
	for id := range bindings {
		if strings.TrimSpace(id) == "" {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) > len(ids[j])
		}
		return ids[i] < ids[j]
	})

	taken := identTokens(formula)
	names := make(map[string]string, len(ids))
	renamed := make(map[string]any, len(ids))
	counter := 0
	for _, id := range ids {
		var name string
		for {
			name = "f" + strconv.Itoa(counter)
			counter++
			if _, used := taken[name]; !used {
				break
			}
		}
		names[id] = name
		renamed[name] = bindings[id]
	}

	var out strings.Builder
	out.Grow(len(formula))
	pos := 0
	for pos < len(formula) {
		if !boundaryBefore(formula, pos) {
			out.WriteByte(formula[pos])
			pos++
			continue
		}
		matched := false
		for _, id := range ids {
			end := pos + len(id)
			if end > len(formula) || formula[pos:end] != id {
				continue
			}
			if !boundaryAfter(formula, end) {
				continue
			}
			out.WriteString(names[id])
			pos = end
			matched = true
			break
		}
		if !matched {
			out.WriteByte(formula[pos])
			pos++
		}
	}

	return out.String(), renamed
}

// identTokens returns the set of whole identifier-character runs appearing in
// the formula text.
func identTokens(formula string) map[string]struct{} {
	tokens := make(map[string]struct{})
	pos := 0
	for pos < len(formula) {
		if !isIdentChar(formula[pos]) {
			pos++
			continue
		}
		start := pos
		for pos < len(formula) && isIdentChar(formula[pos]) {
			pos++
		}
		tokens[formula[start:pos]] = struct{}{}
	}
	return tokens
}

// boundaryBefore reports whether pos starts a whole token: either the start of
// the text or preceded by a non-identifier character.
func boundaryBefore(input string, pos int) bool {
	if pos == 0 {
		return true
	}
	return !isIdentChar(input[pos-1])
}

// boundaryAfter reports whether end closes a whole token.
func boundaryAfter(input string, end int) bool {
	if end >= len(input) {
		return true
	}
	return !isIdentChar(input[end])
}
