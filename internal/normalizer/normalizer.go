// Package normalizer resolves free-text league and team names from the odds
// feed to the canonical identities used by the historical archive.
package normalizer

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/riftline/internal/models"
)

const (
	// Score for a substring match where the shorter name prefixes the longer
	scorePrefix = 0.95
	// Score for a substring match anywhere else in the name
	scoreContains = 0.85
	// Minimum score a candidate must clear to be accepted
	acceptanceScore = 0.7
	// Minimum token-overlap ratio for multi-word names (league names mostly)
	tokenOverlapMin = 0.5
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Suffixes commonly dropped by odds providers from team names
var teamSuffixes = []string{" Esports", " Gaming", " Team", " Esport"}

// Table maps provider name variants to the archive's canonical names.
// Loaded once per batch; lookups are pure, the cache is an optimization.
type Table struct {
	leagues     map[string][]string // canonical league -> canonical teams
	leagueNames []string            // sorted, for deterministic iteration
	teamIndex   map[string]string   // normalized variant -> canonical team
	leagueIndex map[string]string   // normalized variant -> canonical league
	cache       *gocache.Cache
}

// DefaultLeagueAliases maps provider league labels to archive league codes.
// These are provider quirks, not derivable from the archive itself.
var DefaultLeagueAliases = map[string]string{
	"LCK":             "LCK",
	"LCK Cup":         "LCK",
	"LCK Challengers": "LCKC",
	"LCK CL":          "LCKC",
	"LEC":             "LEC",
	"LPL":             "LPL",
	"LCS":             "LTA N",
	"LCS NA":          "LTA N",
	"LFL":             "LFL",
	"LFL2":            "LFL2",
	"CBLOL":           "CD",
	"CBLOL Academy":   "CD",
	"VCS":             "VCS",
	"PCS":             "PCS",
	"TCL":             "TCL",
}

// NewTable builds a lookup table from a canonical league -> teams mapping
func NewTable(leagues map[string][]string) *Table {
	t := &Table{
		leagues:     leagues,
		teamIndex:   make(map[string]string),
		leagueIndex: make(map[string]string),
		cache:       gocache.New(time.Hour, 2*time.Hour),
	}

	t.leagueNames = make([]string, 0, len(leagues))
	for league := range leagues {
		t.leagueNames = append(t.leagueNames, league)
	}
	sort.Strings(t.leagueNames)

	t.buildTeamIndex()
	t.buildLeagueIndex()
	return t
}

// LoadTable reads the canonical identity table from a JSON file mapping
// league names to team name lists.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity table: %w", err)
	}

	var leagues map[string][]string
	if err := json.Unmarshal(data, &leagues); err != nil {
		return nil, fmt.Errorf("failed to parse identity table: %w", err)
	}

	return NewTable(leagues), nil
}

func (t *Table) buildTeamIndex() {
	for _, league := range t.leagueNames {
		teams := append([]string(nil), t.leagues[league]...)
		sort.Strings(teams)
		for _, team := range teams {
			normalized := normalizeString(team)
			if normalized == "" {
				continue
			}
			if _, ok := t.teamIndex[normalized]; !ok {
				t.teamIndex[normalized] = team
			}

			// Suffix variants map back to the full canonical name
			for _, suffix := range teamSuffixes {
				variant := strings.ReplaceAll(team, suffix, "")
				if variant == team {
					continue
				}
				vn := normalizeString(variant)
				if vn != "" {
					if _, ok := t.teamIndex[vn]; !ok {
						t.teamIndex[vn] = team
					}
				}
			}
		}
	}
}

func (t *Table) buildLeagueIndex() {
	for alias, canonical := range DefaultLeagueAliases {
		normalized := normalizeString(alias)
		if normalized != "" {
			t.leagueIndex[normalized] = canonical
		}
	}

	// Archive leagues always resolve to themselves, overriding aliases
	for _, league := range t.leagueNames {
		normalized := normalizeString(league)
		if normalized != "" {
			t.leagueIndex[normalized] = league
		}
	}
}

// Normalize resolves a raw name of the given kind to its canonical identity.
// The league argument narrows team lookups and is ignored for league lookups.
// Returns false when no candidate clears the acceptance score.
func (t *Table) Normalize(raw string, kind models.IdentityKind, league string) (models.NormalizedIdentity, bool) {
	var canonical string
	var ok bool

	switch kind {
	case models.IdentityKindLeague:
		canonical, ok = t.NormalizeLeague(raw)
	case models.IdentityKindTeam:
		canonical, ok = t.NormalizeTeam(raw, league)
	}

	if !ok {
		return models.NormalizedIdentity{}, false
	}
	return models.NormalizedIdentity{Kind: kind, CanonicalName: canonical}, true
}

// NormalizeLeague resolves a provider league label to the archive league code
func (t *Table) NormalizeLeague(raw string) (string, bool) {
	normalized := normalizeString(raw)
	if normalized == "" {
		return "", false
	}

	cacheKey := "league:" + normalized
	if cached, found := t.cache.Get(cacheKey); found {
		return cacheHit(cached)
	}

	if canonical, ok := t.leagueIndex[normalized]; ok {
		t.cache.SetDefault(cacheKey, canonical)
		return canonical, true
	}

	best := bestCandidate(normalized, t.leagueNames, true)
	if best == "" {
		t.cache.SetDefault(cacheKey, "")
		return "", false
	}

	t.cache.SetDefault(cacheKey, best)
	return best, true
}

// NormalizeTeam resolves a provider team name to the archive team name.
// When league is a known canonical league, only that league's teams are
// considered; otherwise every league is searched.
func (t *Table) NormalizeTeam(raw, league string) (string, bool) {
	normalized := normalizeString(raw)
	if normalized == "" {
		return "", false
	}

	cacheKey := "team:" + league + ":" + normalized
	if cached, found := t.cache.Get(cacheKey); found {
		return cacheHit(cached)
	}

	// An exact index hit honors the same league narrowing as the fuzzy
	// search below
	if canonical, ok := t.teamIndex[normalized]; ok && t.leagueHasTeam(league, canonical) {
		t.cache.SetDefault(cacheKey, canonical)
		return canonical, true
	}

	searchLeagues := t.leagueNames
	if _, known := t.leagues[league]; known && league != "" {
		searchLeagues = []string{league}
	}

	var candidates []string
	for _, lg := range searchLeagues {
		teams := append([]string(nil), t.leagues[lg]...)
		sort.Strings(teams)
		candidates = append(candidates, teams...)
	}

	best := bestCandidate(normalized, candidates, false)
	if best == "" {
		t.cache.SetDefault(cacheKey, "")
		return "", false
	}

	t.cache.SetDefault(cacheKey, best)
	return best, true
}

// leagueHasTeam reports whether the canonical team belongs to the league.
// An unknown or empty league does not narrow; every team qualifies.
func (t *Table) leagueHasTeam(league, team string) bool {
	teams, known := t.leagues[league]
	if !known || league == "" {
		return true
	}
	for _, candidate := range teams {
		if candidate == team {
			return true
		}
	}
	return false
}

// bestCandidate scores every candidate against the normalized input and
// returns the winner, or empty when nothing clears the acceptance rules.
// Ties are broken by shortest canonical name, then lexicographically, so the
// result never depends on iteration order.
func bestCandidate(normalized string, candidates []string, multiWord bool) string {
	var best string
	bestScore := 0.0

	for _, candidate := range candidates {
		nc := normalizeString(candidate)
		if nc == "" {
			continue
		}
		if nc == normalized {
			return candidate
		}

		score := similarityScore(normalized, nc, multiWord)
		if score > bestScore {
			bestScore = score
			best = candidate
		} else if score == bestScore && score > 0 && best != "" {
			if len(candidate) < len(best) || (len(candidate) == len(best) && candidate < best) {
				best = candidate
			}
		}
	}

	if bestScore >= acceptanceScore {
		return best
	}
	return ""
}

// similarityScore implements the substring and token-overlap rules.
// Substring containment scores 0.95 when the shorter string prefixes the
// longer, 0.85 elsewhere. Multi-word names fall back to token overlap, where
// an overlap ratio of at least 0.5 is mapped into the acceptance band.
func similarityScore(a, b string, multiWord bool) float64 {
	shorter, longer := a, b
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	if strings.Contains(longer, shorter) {
		if strings.HasPrefix(longer, shorter) {
			return scorePrefix
		}
		return scoreContains
	}

	if multiWord {
		overlap := tokenOverlap(a, b)
		if overlap >= tokenOverlapMin {
			// Scale into [0.75, 0.85] so full overlap stays below a prefix match
			return 0.75 + 0.1*overlap
		}
	}

	return 0
}

// tokenOverlap returns the share of tokens the two names have in common,
// relative to the longer token list.
func tokenOverlap(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) < 2 && len(tokensB) < 2 {
		return 0
	}

	setA := make(map[string]bool, len(tokensA))
	for _, tok := range tokensA {
		setA[tok] = true
	}

	shared := 0
	for _, tok := range tokensB {
		if setA[tok] {
			shared++
		}
	}

	denom := len(tokensA)
	if len(tokensB) > denom {
		denom = len(tokensB)
	}
	if denom == 0 {
		return 0
	}
	return float64(shared) / float64(denom)
}

// normalizeString lowercases, collapses whitespace and strips the punctuation
// providers disagree on.
func normalizeString(text string) string {
	if text == "" {
		return ""
	}

	text = strings.ToLower(strings.TrimSpace(text))
	text = whitespaceRe.ReplaceAllString(text, " ")

	replacer := strings.NewReplacer(".", "", ",", "", "-", "", "'", "", `"`, "")
	return replacer.Replace(text)
}

func cacheHit(cached interface{}) (string, bool) {
	name, _ := cached.(string)
	return name, name != ""
}
