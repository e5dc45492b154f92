package lemma

import "strings"

// nounSuffixes are the plural endings undone for nouns, in lookup order
var nounSuffixes = [...]struct{ from, to string }{
	{"s", ""},
	{"ses", "s"},
	{"ves", "f"},
	{"xes", "x"},
	{"zes", "z"},
	{"ches", "ch"},
	{"shes", "sh"},
	{"men", "man"},
	{"ies", "y"},
}

// irregular plurals the suffix rules cannot reach
var nounIrregular = map[string]string{
	"men":       "man",
	"women":     "woman",
	"children":  "child",
	"feet":      "foot",
	"teeth":     "tooth",
	"geese":     "goose",
	"mice":      "mouse",
	"lice":      "louse",
	"oxen":      "ox",
	"dice":      "die",
	"wives":     "wife",
	"knives":    "knife",
	"lives":     "life",
	"analyses":  "analysis",
	"crises":    "crisis",
	"theses":    "thesis",
	"criteria":  "criterion",
	"phenomena": "phenomenon",
	"indices":   "index",
	"matrices":  "matrix",
	"cacti":     "cactus",
	"fungi":     "fungus",
	"radii":     "radius",
	"alumni":    "alumnus",
}

// Noun lemmatizes every word as a noun, the default part of speech.
// Only plural endings and irregular plurals are undone; "running", "better" and
// "loved" stay as they are. A candidate counts only when d knows it as a base form,
// and the shortest one wins. A word that is itself a base form is kept, which
// makes Noun idempotent.
func Noun(d Dictionary) Lemmatizer {
	return Func(func(w string) string {
		if isBase(d, w) {
			return w
		}
		best := w
		for _, c := range nounCandidates(w) {
			if (best == w || len(c) < len(best)) && isBase(d, c) {
				best = c
			}
		}
		return best
	})
}

func nounCandidates(w string) []string {
	if base, ok := nounIrregular[w]; ok {
		return []string{base}
	}
	var out []string
	for _, r := range nounSuffixes {
		if stem, ok := strings.CutSuffix(w, r.from); ok && stem != "" {
			out = append(out, stem+r.to)
		}
	}
	return out
}

func isBase(d Dictionary, w string) bool {
	return d.InDict(w) && d.Lemma(w) == w
}
