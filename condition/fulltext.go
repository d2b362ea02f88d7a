package condition

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/oxhq/queryalgebra/dberr"
)

// TextIndexed is implemented by records whose serializer carries a
// text_index annotation enumerating field paths; FullTextSearch joins
// those fields' primitive values with spaces to build the derived text
// representation (spec §4.3). Records that don't implement it fall
// back to their string form.
type TextIndexed interface {
	TextIndexFields() []string
}

// FullTextSearch parses Query into whitespace-separated terms
// (quoted substrings become a single term), classifies each term as
// fuzzy (alphabetic-or-hyphen, longer than 3 chars) or exact, and
// matches per RequireAll/any against the record's derived text.
//
// The Levenshtein distance walk below is the same dynamic-programming
// shape morfx's fuzzy resolver uses for query-term recovery, adapted
// here to score a text token against a search term instead of an AST
// query variation.
type FullTextSearch struct {
	Query       string
	RequireAll  bool
	LevDistance int
}

func (FullTextSearch) Tag() string { return "FullTextSearch" }

func (f FullTextSearch) Apply(on any) (bool, error) {
	text, err := derivedText(on)
	if err != nil {
		return false, err
	}
	tokens := strings.Fields(strings.ToLower(text))
	terms := parseQueryTerms(f.Query)
	if len(terms) == 0 {
		return true, nil
	}
	matched := 0
	for _, term := range terms {
		if termMatches(term, tokens, f.LevDistance) {
			matched++
		}
	}
	if f.RequireAll {
		return matched == len(terms), nil
	}
	return matched > 0, nil
}

// parseQueryTerms splits on whitespace but keeps quoted substrings as a
// single term, per spec §4.3.
func parseQueryTerms(query string) []string {
	var terms []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			terms = append(terms, cur.String())
			cur.Reset()
		}
	}
	for _, r := range query {
		switch {
		case r == '"':
			inQuote = !inQuote
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return terms
}

func isFuzzyCandidate(term string) bool {
	if len([]rune(term)) <= 3 {
		return false
	}
	for _, r := range term {
		if !(r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func termMatches(term string, tokens []string, maxDistance int) bool {
	lower := strings.ToLower(term)
	fuzzy := isFuzzyCandidate(term)
	for _, tok := range tokens {
		if tok == lower {
			return true
		}
		if fuzzy && levenshteinDistance(lower, tok) <= maxDistance {
			return true
		}
	}
	return false
}

// levenshteinDistance computes the classic edit-distance matrix, the
// same dynamic-programming approach as the teacher's fuzzy resolver.
func levenshteinDistance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}
	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}
	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			del := matrix[i-1][j] + 1
			ins := matrix[i][j-1] + 1
			sub := matrix[i-1][j-1] + cost
			matrix[i][j] = minInt(del, minInt(ins, sub))
		}
	}
	return matrix[len(s1)][len(s2)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// derivedText builds the text representation a record matches
// FullTextSearch against: joined text_index fields if the record is
// TextIndexed, otherwise its plain string form.
func derivedText(on any) (string, error) {
	switch v := on.(type) {
	case string:
		return v, nil
	case TextIndexed:
		var parts []string
		for _, name := range v.TextIndexFields() {
			val, err := fieldStringValue(on, name)
			if err != nil {
				return "", err
			}
			parts = append(parts, val)
		}
		return strings.Join(parts, " "), nil
	case interface{ String() string }:
		return v.String(), nil
	default:
		return toPlainString(on), nil
	}
}

func fieldStringValue(on any, name string) (string, error) {
	gf, ok := on.(interface {
		FieldValueByName(name string) (any, error)
	})
	if !ok {
		return "", dberr.New(dberr.IncompatibleRecord, name, "record does not support text_index field lookup")
	}
	v, err := gf.FieldValueByName(name)
	if err != nil {
		return "", err
	}
	return toPlainString(v), nil
}

func toPlainString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case int, int32, int64:
		return strconv.FormatInt(toInt64(t), 10)
	default:
		return fmt.Sprint(t)
	}
}

func toInt64(v any) int64 {
	switch t := v.(type) {
	case int:
		return int64(t)
	case int32:
		return int64(t)
	case int64:
		return t
	default:
		return 0
	}
}
