// Package tagset encodes multi-valued fields (tags, secondary moods) as a
// single comma-delimited column and matches values on token boundaries.
package tagset

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// Delimiter separates values inside a stored column.
const Delimiter = ","

// Normalize trims values, drops blanks and removes case-insensitive
// duplicates. The first casing seen wins and input order is kept.
func Normalize(values []string) []string {
	trimmed := lo.FilterMap(values, func(v string, _ int) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
	return lo.UniqBy(trimmed, strings.ToLower)
}

// NormalizeSorted is Normalize followed by a case-insensitive sort.
func NormalizeSorted(values []string) []string {
	out := Normalize(values)
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// Without removes every value equal to exclude, ignoring case.
func Without(values []string, exclude string) []string {
	exclude = strings.TrimSpace(exclude)
	return lo.Reject(values, func(v string, _ int) bool {
		return strings.EqualFold(v, exclude)
	})
}

// HasDelimiter reports whether any value would break the column encoding.
func HasDelimiter(values ...string) (string, bool) {
	return lo.Find(values, func(v string) bool {
		return strings.Contains(v, Delimiter)
	})
}

// Join encodes values for storage. Callers normalize and reject delimiters
// first; see HasDelimiter.
func Join(values []string) string {
	return strings.Join(values, Delimiter)
}

// Split decodes a stored column. Empty input yields an empty slice.
func Split(s string) []string {
	if strings.TrimSpace(s) == "" {
		return []string{}
	}
	return lo.FilterMap(strings.Split(s, Delimiter), func(v string, _ int) (string, bool) {
		v = strings.TrimSpace(v)
		return v, v != ""
	})
}

// SplitAll splits every value on Delimiter and normalizes the tokens, so
// {"art,work", "Art"} becomes {"art", "work"}.
func SplitAll(values []string) []string {
	return Normalize(lo.FlatMap(values, func(v string, _ int) []string {
		return strings.Split(v, Delimiter)
	}))
}

// Contains reports whether the stored column holds value as a whole token,
// ignoring case. "art" does not match "cart,smart".
func Contains(stored, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	bounded := strings.ToLower(Delimiter + stored + Delimiter)
	return strings.Contains(bounded, strings.ToLower(Delimiter+value+Delimiter))
}

// LikePattern builds the SQL LIKE pattern that matches value as a whole
// token against `',' || column || ','`. Use with ESCAPE '\'.
func LikePattern(value string) string {
	return "%" + Delimiter + EscapeLike(strings.TrimSpace(value)) + Delimiter + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s matches literally under ESCAPE '\'.
func EscapeLike(s string) string {
	return likeEscaper.Replace(s)
}
