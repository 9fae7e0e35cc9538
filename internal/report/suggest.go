package report

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// lowered implements fuzzy.Source over lower-cased names.
type lowered []string

func (l lowered) String(i int) string { return l[i] }
func (l lowered) Len() int            { return len(l) }

// Suggest returns up to limit candidates resembling name, best first.
// Matching ignores case.
func Suggest(name string, candidates []string, limit int) []string {
	if name == "" || len(candidates) == 0 {
		return nil
	}
	src := make(lowered, len(candidates))
	for i, c := range candidates {
		src[i] = strings.ToLower(c)
	}

	matches := fuzzy.FindFrom(strings.ToLower(name), src)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	var out []string
	for _, m := range matches {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, candidates[m.Index])
	}
	return out
}
