// Package plural derives a human-readable collection name from a singular
// type name, e.g. "Person" -> "People", "Category" -> "Categories".
package plural

import "strings"

// irregular maps singular nouns to plurals the suffix rules get wrong.
var irregular = map[string]string{
	"Person":     "People",
	"Child":      "Children",
	"Man":        "Men",
	"Woman":      "Women",
	"Mouse":      "Mice",
	"Goose":      "Geese",
	"Foot":       "Feet",
	"Tooth":      "Teeth",
	"Cactus":     "Cacti",
	"Focus":      "Foci",
	"Fungus":     "Fungi",
	"Nucleus":    "Nuclei",
	"Syllabus":   "Syllabi",
	"Analysis":   "Analyses",
	"Diagnosis":  "Diagnoses",
	"Oasis":      "Oases",
	"Thesis":     "Theses",
	"Crisis":     "Crises",
	"Phenomenon": "Phenomena",
	"Criterion":  "Criteria",
	"Datum":      "Data",
	"Alumnus":    "Alumni",
	"Appendix":   "Appendices",
	"Index":      "Indices",
	"Matrix":     "Matrices",
	"Ox":         "Oxen",
	"Vortex":     "Vortices",
	"Elf":        "Elves",
	"Calf":       "Calves",
	"Knife":      "Knives",
	"Leaf":       "Leaves",
	"Life":       "Lives",
	"Wife":       "Wives",
	"Wolf":       "Wolves",
	"Shelf":      "Shelves",
	"Self":       "Selves",
	"Loaf":       "Loaves",
	"Scarf":      "Scarves",
	"Thief":      "Thieves",
	"Half":       "Halves",
	"Tomato":     "Tomatoes",
	"Potato":     "Potatoes",
	"Hero":       "Heroes",
	"Echo":       "Echoes",
	"Torpedo":    "Torpedoes",
	"Embryo":     "Embryos",
	"Embargo":    "Embargoes",
}

// esSuffixes take "es" instead of "s".
var esSuffixes = []string{"s", "sh", "ch", "x", "z", "o"}

// Of returns the plural of a singular type name. Irregular nouns are matched
// exactly; everything else follows English suffix rules. The empty string is
// returned unchanged.
func Of(name string) string {
	if name == "" {
		return name
	}
	if p, ok := irregular[name]; ok {
		return p
	}

	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, "y") && len(name) > 1 && !isVowel(lower[len(lower)-2]) {
		return name[:len(name)-1] + "ies"
	}
	for _, suffix := range esSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return name + "es"
		}
	}
	return name + "s"
}

func isVowel(c byte) bool {
	return strings.IndexByte("aeiou", c) >= 0
}
