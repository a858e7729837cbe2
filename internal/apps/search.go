package apps

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Match is a search hit. Index addresses the row in the full list.
type Match struct {
	Index int `json:"index"`
	App   App `json:"app"`
	Score int `json:"score"`
}

type nameSource []App

func (s nameSource) String(i int) string { return s[i].Name }
func (s nameSource) Len() int            { return len(s) }

// Search fuzzy matches query against app names. Names starting with the
// query come first, then the rest by score, with launch history breaking
// ties. An empty query returns the
// first max rows.
func (d *Directory) Search(query string, max int) []Match {
	if max <= 0 {
		max = len(d.apps)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		n := min(max, len(d.apps))
		out := make([]Match, n)
		for i := 0; i < n; i++ {
			out[i] = Match{Index: i, App: d.apps[i]}
		}
		return out
	}

	matches := fuzzy.FindFrom(query, nameSource(d.apps))
	lowerQuery := strings.ToLower(query)
	sort.SliceStable(matches, func(i, j int) bool {
		pi := strings.HasPrefix(strings.ToLower(matches[i].Str), lowerQuery)
		pj := strings.HasPrefix(strings.ToLower(matches[j].Str), lowerQuery)
		if pi != pj {
			return pi
		}
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return d.historyScore(matches[i].Str) > d.historyScore(matches[j].Str)
	})

	n := min(max, len(matches))
	out := make([]Match, n)
	for i := 0; i < n; i++ {
		m := matches[i]
		out[i] = Match{Index: m.Index, App: d.apps[m.Index], Score: m.Score}
	}
	return out
}

func (d *Directory) historyScore(name string) float64 {
	if d.history == nil {
		return 0
	}
	return d.history.Score(name)
}

// Recent returns the most launched apps that are still installed.
func (d *Directory) Recent(max int) []Match {
	if d.history == nil {
		return nil
	}

	index := make(map[string]int, len(d.apps))
	for i := len(d.apps) - 1; i >= 0; i-- {
		index[d.apps[i].Name] = i
	}

	var out []Match
	for _, name := range d.history.Top(0) {
		i, ok := index[name]
		if !ok {
			continue
		}
		out = append(out, Match{Index: i, App: d.apps[i]})
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
