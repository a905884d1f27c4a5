package interpolation

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/zyedidia/generic/mapset"
)

// varMatch stores a detected placeholder position.
type varMatch struct {
	start, end int
	value      string
}

// patterns detect the tokens the engine substitutes or interprets in
// game strings.
var patterns = []*regexp.Regexp{
	regexp.MustCompile(`^&[0-9]+ `),                          // voice cue, "&12 "
	regexp.MustCompile(`%[-+0-9]*\.?[0-9]*[dsfieEgGxXoubc]`), // %d, %s, %2d, %.2f
	regexp.MustCompile(`%%`),                                 // escaped percent literal
	regexp.MustCompile(`\[`),                                 // line break
}

// Placeholders returns the placeholders of text in order of appearance.
func Placeholders(text string) []string {
	var all []varMatch
	for _, p := range patterns {
		for _, loc := range p.FindAllStringIndex(text, -1) {
			all = append(all, varMatch{start: loc[0], end: loc[1], value: text[loc[0]:loc[1]]})
		}
	}
	if len(all) == 0 {
		return nil
	}

	sortVarMatches(all)

	// Remove overlapping matches (keep the first/longest).
	var out []string
	lastEnd := -1
	for _, m := range all {
		if m.start >= lastEnd {
			out = append(out, m.value)
			lastEnd = m.end
		}
	}
	return out
}

// Issue describes a translation whose placeholders differ from the original.
type Issue struct {
	Original    string
	Translation string
	Missing     []string
	Extra       []string
}

func (i Issue) String() string {
	return fmt.Sprintf("missing %v, extra %v", i.Missing, i.Extra)
}

// Check compares the placeholders of original and translation. Empty
// translations are not checked. Order may differ; counts may not.
func Check(original, translation string) (Issue, bool) {
	if translation == "" {
		return Issue{}, true
	}

	counts := make(map[string]int)
	for _, p := range Placeholders(original) {
		counts[p]++
	}
	for _, p := range Placeholders(translation) {
		counts[p]--
	}

	missing := mapset.New[string]()
	extra := mapset.New[string]()
	for p, n := range counts {
		switch {
		case n > 0:
			missing.Put(p)
		case n < 0:
			extra.Put(p)
		}
	}
	if missing.Size() == 0 && extra.Size() == 0 {
		return Issue{}, true
	}

	return Issue{
		Original:    original,
		Translation: translation,
		Missing:     sortedSet(missing),
		Extra:       sortedSet(extra),
	}, false
}

func sortedSet(s mapset.Set[string]) []string {
	out := make([]string, 0, s.Size())
	s.Each(func(v string) {
		out = append(out, v)
	})
	sort.Strings(out)
	return out
}

// sortVarMatches sorts by start position, then by length (descending) for overlaps.
func sortVarMatches(matches []varMatch) {
	for i := 1; i < len(matches); i++ {
		key := matches[i]
		j := i - 1
		for j >= 0 && (matches[j].start > key.start ||
			(matches[j].start == key.start && (matches[j].end-matches[j].start) < (key.end-key.start))) {
			matches[j+1] = matches[j]
			j--
		}
		matches[j+1] = key
	}
}
