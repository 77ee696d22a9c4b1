// Package gazetteer holds the static table of Bangladeshi districts and
// their accepted name spellings. It is loaded once at process start and is
// read-only afterwards, so it is safe for unlimited concurrent lookups.
package gazetteer

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/weatherwise/district-forecast/internal/domain"
)

//go:embed districts.json
var districtsJSON []byte

// maxEditDistance bounds the fuzzy match against canonical names. Two edits
// tolerate spelling drift ("Chatogram", "Khulnaa") without over-matching.
const maxEditDistance = 2

// minFuzzyLength is the shortest token eligible for fuzzy matching. Short
// district names ("Feni", "Bhola") are reachable only by exact alias match,
// otherwise unrelated four-letter words would land on them in two edits.
const minFuzzyLength = 5

// record is the on-disk shape of one district entry.
type record struct {
	Name     string   `json:"name" validate:"required"`
	Division string   `json:"division"`
	Lat      float64  `json:"lat" validate:"required,min=20.5,max=26.7"`
	Lon      float64  `json:"lon" validate:"required,min=88.0,max=92.8"`
	Aliases  []string `json:"aliases" validate:"dive,required"`
	URLNames []string `json:"url_names" validate:"required,min=1,dive,required"`
}

// Gazetteer is the immutable alias → district lookup table.
type Gazetteer struct {
	districts []domain.District
	byAlias   map[string]int // normalized key → index into districts
	canonical []string       // normalized canonical names, index-aligned
}

// Load parses and validates the embedded district table.
func Load() (*Gazetteer, error) {
	return fromJSON(districtsJSON)
}

func fromJSON(data []byte) (*Gazetteer, error) {
	var file struct {
		Districts []record `json:"districts"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse district table: %w", err)
	}
	if len(file.Districts) == 0 {
		return nil, fmt.Errorf("district table is empty")
	}

	validate := validator.New()
	g := &Gazetteer{
		byAlias: make(map[string]int),
	}

	for i, rec := range file.Districts {
		if err := validate.Struct(rec); err != nil {
			return nil, fmt.Errorf("district %q: %w", rec.Name, err)
		}

		g.districts = append(g.districts, domain.District{
			Name:     rec.Name,
			Division: rec.Division,
			Aliases:  rec.Aliases,
			URLNames: rec.URLNames,
			Lat:      rec.Lat,
			Lon:      rec.Lon,
		})
		g.canonical = append(g.canonical, normalizeKey(rec.Name))

		for _, spelling := range append([]string{rec.Name}, rec.Aliases...) {
			key := normalizeKey(spelling)
			if key == "" {
				return nil, fmt.Errorf("district %q: alias %q normalizes to empty", rec.Name, spelling)
			}
			if prev, ok := g.byAlias[key]; ok {
				if prev != i {
					return nil, fmt.Errorf("alias %q maps to both %q and %q", spelling, g.districts[prev].Name, rec.Name)
				}
				continue // same district spelled two ways that fold together
			}
			g.byAlias[key] = i
		}
	}

	return g, nil
}

// Len returns the number of districts in the table.
func (g *Gazetteer) Len() int { return len(g.districts) }

// Districts returns the full district list in table order.
func (g *Gazetteer) Districts() []domain.District { return g.districts }

// Resolve maps a token to a district. Exact case- and script-insensitive
// alias match first; failing that, a bounded edit-distance match against
// canonical names only. Fuzzy ties are rejected rather than guessed, and
// Bengali-script tokens never go through the fuzzy path (transliteration
// ambiguity is a non-goal).
func (g *Gazetteer) Resolve(token string) (domain.District, bool) {
	key := normalizeKey(token)
	if key == "" {
		return domain.District{}, false
	}

	if i, ok := g.byAlias[key]; ok {
		return g.districts[i], true
	}

	if containsBengali(key) || len([]rune(key)) < minFuzzyLength {
		return domain.District{}, false
	}

	best, bestDist, tie := -1, maxEditDistance+1, false
	for i, name := range g.canonical {
		d := levenshtein.ComputeDistance(key, name)
		switch {
		case d < bestDist:
			best, bestDist, tie = i, d, false
		case d == bestDist:
			tie = true
		}
	}
	if best < 0 || bestDist > maxEditDistance || tie {
		return domain.District{}, false
	}
	return g.districts[best], true
}

// foldTransform strips combining marks after NFD decomposition, so "Sylhét"
// and "Sylhet" share a key. Applied to Latin-script input only; Bengali
// vowel signs are combining marks too and must survive.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeKey produces the case-folded, diacritic-stripped lookup key.
// Bengali text is trimmed and whitespace-collapsed but otherwise verbatim.
func normalizeKey(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if containsBengali(s) {
		return s
	}
	if folded, _, err := transform.String(foldTransform, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)
	// Punctuation inside names ("Cox's Bazar", "B.Baria") is noise for lookup.
	return strings.Map(func(r rune) rune {
		if r == '\'' || r == '’' || r == '.' || r == '-' {
			return -1
		}
		return r
	}, s)
}

func containsBengali(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Bengali, r) {
			return true
		}
	}
	return false
}
