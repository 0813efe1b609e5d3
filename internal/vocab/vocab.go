// Package vocab collects the distinct moods or tags in use.
package vocab

import "github.com/sakif/moodjournal/internal/tagset"

// Set accumulates raw labels and reports them deduplicated through
// tagset.NormalizeSorted: blanks dropped, the first casing seen kept, sorted
// by folded form. The zero value is ready to use.
type Set struct {
	values []string
}

// Add records values. Blanks and case variants are resolved by Values.
func (s *Set) Add(values ...string) {
	s.values = append(s.values, values...)
}

// Len is the number of distinct values recorded so far.
func (s *Set) Len() int {
	return len(tagset.Normalize(s.values))
}

// Values returns one representative per case-folded value.
func (s *Set) Values() []string {
	return tagset.NormalizeSorted(s.values)
}
