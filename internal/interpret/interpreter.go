// Package interpret turns free-text weather questions (Bengali, English, or
// mixed) into structured forecast queries.
package interpret

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/weatherwise/district-forecast/internal/domain"
	"github.com/weatherwise/district-forecast/internal/gazetteer"
)

// maxSpanTokens caps district-name spans; the longest district name in the
// gazetteer is two tokens ("Cox's Bazar"), three leaves headroom for noisy
// splits like "Chapai Nawab ganj".
const maxSpanTokens = 3

var farmerVocabulary = wordSet(
	"farmer", "farmers", "farming", "crop", "crops", "field", "fields",
	"harvest", "irrigation", "irrigate", "soil", "agriculture", "plant",
	"planting", "seed", "seeds", "paddy", "rice", "sowing",
	"কৃষক", "চাষ", "চাষী", "ফসল", "সেচ", "ধান", "ক্ষেত", "বীজ", "ফসলের",
)

var citizenVocabulary = wordSet(
	"commute", "travel", "outdoor", "outdoors", "event", "clothing",
	"umbrella", "road", "traffic", "office", "school", "walk", "trip",
	"ছাতা", "যাতায়াত", "রাস্তা", "অফিস", "স্কুল", "ভ্রমণ",
)

// dayWords are tokens that mark an adjacent integer as a day count.
var dayWords = wordSet("day", "days", "din", "দিন", "দিনের")

// relativePhrases map common relative-time wording to a horizon. Checked
// against the whole query, longest phrase first, so "next week" is not
// shadowed by a stray "today".
var relativePhrases = []struct {
	phrase  string
	horizon int
}{
	{"next week", 7},
	{"আগামী সপ্তাহ", 7},
	{"this week", 7},
	{"day after tomorrow", 2},
	{"tomorrow", 1},
	{"আগামীকাল", 1},
	{"আগামিকাল", 1},
	{"কালকে", 1},
	{"today", 1},
	{"tonight", 1},
	{"আজ", 1},
	{"আজকে", 1},
}

// Interpreter extracts district, horizon, and role from query text.
type Interpreter struct {
	gaz            *gazetteer.Gazetteer
	defaultHorizon int
	maxHorizon     int
}

// New creates an Interpreter over the given gazetteer. defaultHorizon is
// used when the text carries no day-count signal; maxHorizon clamps explicit
// requests to what the upstream tables offer.
func New(gaz *gazetteer.Gazetteer, defaultHorizon, maxHorizon int) *Interpreter {
	return &Interpreter{gaz: gaz, defaultHorizon: defaultHorizon, maxHorizon: maxHorizon}
}

// Interpret never fails: an unrecognized district leaves Query.District nil
// for the orchestrator to turn into a typed error, and the role heuristic
// always has Unknown as a safe answer.
func (in *Interpreter) Interpret(text string) domain.ForecastQuery {
	tokens := tokenize(text)

	district, warnings := in.extractDistrict(tokens)

	return domain.ForecastQuery{
		District: district,
		Horizon:  in.extractHorizon(text, tokens),
		Role:     inferRole(tokens),
		Warnings: warnings,
	}
}

// extractDistrict scans every contiguous span of 1..maxSpanTokens tokens
// against the gazetteer, longest span first at each position so "Cox's
// Bazar" beats a hypothetical "Bazar". The first matching span in reading
// order wins; a later disjoint span naming a different district is reported
// as an ambiguity warning, not an error.
func (in *Interpreter) extractDistrict(tokens []string) (*domain.District, []domain.Warning) {
	var (
		chosen   *domain.District
		warnings []domain.Warning
		nextFree int
	)

	for i := 0; i < len(tokens); i++ {
		if i < nextFree {
			continue
		}
		for span := min(maxSpanTokens, len(tokens)-i); span >= 1; span-- {
			candidate := strings.Join(tokens[i:i+span], " ")
			d, ok := in.gaz.Resolve(candidate)
			if !ok {
				continue
			}
			if chosen == nil {
				matched := d
				chosen = &matched
			} else if d.Name != chosen.Name {
				warnings = append(warnings, domain.AmbiguousDistrictWarning(chosen.Name, d.Name))
			}
			nextFree = i + span
			break
		}
	}

	return chosen, warnings
}

// extractHorizon looks for an integer token adjacent to a day word, then for
// a relative-time phrase, then falls back to the default.
func (in *Interpreter) extractHorizon(text string, tokens []string) int {
	for i, tok := range tokens {
		n, ok := parseSmallInt(tok)
		if !ok {
			continue
		}
		if (i+1 < len(tokens) && dayWords[fold(tokens[i+1])]) ||
			(i > 0 && dayWords[fold(tokens[i-1])]) {
			return in.clamp(n)
		}
	}

	lowered := strings.ToLower(text)
	for _, rp := range relativePhrases {
		if strings.Contains(lowered, rp.phrase) {
			return in.clamp(rp.horizon)
		}
	}

	return in.defaultHorizon
}

func (in *Interpreter) clamp(n int) int {
	if n < 1 {
		return 1
	}
	if n > in.maxHorizon {
		return in.maxHorizon
	}
	return n
}

// inferRole is a best-effort vocabulary heuristic. Farming words win over
// commute words; neither present means Unknown, which downstream treats as
// a citizen for template selection.
func inferRole(tokens []string) domain.Role {
	citizen := false
	for _, tok := range tokens {
		f := fold(tok)
		if farmerVocabulary[f] {
			return domain.RoleFarmer
		}
		if citizenVocabulary[f] {
			citizen = true
		}
	}
	if citizen {
		return domain.RoleCitizen
	}
	return domain.RoleUnknown
}

// tokenize splits on whitespace and punctuation, keeping apostrophes inside
// words ("Cox's") and Bengali script runs intact.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		if r == '\'' || r == '’' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// parseSmallInt accepts ASCII or Bengali-numeral integers up to two digits.
func parseSmallInt(tok string) (int, bool) {
	var sb strings.Builder
	for _, r := range tok {
		switch {
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r >= '০' && r <= '৯':
			sb.WriteRune('0' + (r - '০'))
		default:
			return 0, false
		}
	}
	if sb.Len() == 0 || sb.Len() > 2 {
		return 0, false
	}
	n, err := strconv.Atoi(sb.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

func fold(tok string) string { return strings.ToLower(tok) }

func wordSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = true
	}
	return set
}
