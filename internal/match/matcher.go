// Package match scores tank registry entries against tank names extracted
// from documents, producing ranked, confidence-scored candidates.
package match

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/camin-energy/tankflow/internal/model"
	"github.com/camin-energy/tankflow/internal/service"
)

// Matching thresholds, on a 0-100 confidence scale.
const (
	// ExactMatchThreshold marks a best match as authoritative.
	ExactMatchThreshold = 95.0
	// SuggestionThreshold is the minimum confidence worth suggesting.
	SuggestionThreshold = 50.0
	// MaxSuggestions caps the candidate list per record.
	MaxSuggestions = 5
)

// Matcher matches extracted tank names against a registry snapshot.
type Matcher struct {
	tanks []model.Tank
}

var _ service.TankMatcher = (*Matcher)(nil)

// New creates a matcher over the given tank registry snapshot.
func New(tanks []model.Tank) *Matcher {
	return &Matcher{tanks: tanks}
}

// Match returns up to MaxSuggestions candidates scoring at or above
// SuggestionThreshold, ranked by confidence. isExact reports whether any
// candidate reached ExactMatchThreshold.
func (m *Matcher) Match(name string) ([]model.MatchCandidate, bool) {
	if len(m.tanks) == 0 || strings.TrimSpace(name) == "" {
		return nil, false
	}

	var candidates []model.MatchCandidate
	isExact := false

	for _, tank := range m.tanks {
		score := TokenSetRatio(name, tank.Name)
		if score < SuggestionThreshold {
			continue
		}
		candidates = append(candidates, model.MatchCandidate{
			TankID:     tank.ID,
			TankName:   tank.Name,
			Confidence: score,
		})
		if score >= ExactMatchThreshold {
			isExact = true
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].TankName < candidates[j].TankName
	})

	if len(candidates) > MaxSuggestions {
		candidates = candidates[:MaxSuggestions]
	}
	return candidates, isExact
}

// Attach pairs every extracted record with its candidates, best match, and
// inferred movement type.
func (m *Matcher) Attach(records []model.ExtractedMovement) []model.RecordWithMatches {
	out := make([]model.RecordWithMatches, 0, len(records))

	for _, rec := range records {
		candidates, isExact := m.Match(rec.TankName)
		var best *model.MatchCandidate
		if len(candidates) > 0 {
			best = &candidates[0]
		}
		out = append(out, model.RecordWithMatches{
			Extracted:    rec,
			Type:         InferType(rec.LevelBefore, rec.LevelAfter),
			Candidates:   candidates,
			BestMatch:    best,
			IsExactMatch: isExact,
		})
	}
	return out
}

// InferType derives the movement type from the level change: a rising level
// is a load, anything else a discharge.
func InferType(levelBefore, levelAfter float64) model.MovementType {
	if levelAfter > levelBefore {
		return model.TypeLoad
	}
	return model.TypeDischarge
}

// TokenSetRatio scores two strings on a 0-100 scale using a token-set
// variant of the Levenshtein ratio: both names are tokenized, and the score
// is the best ratio among the sorted token intersection and each side's
// full sorted token set. Word order and repeated tokens do not matter.
func TokenSetRatio(a, b string) float64 {
	tokensA := tokenize(a)
	tokensB := tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	var intersection, onlyA, onlyB []string
	for tok := range tokensA {
		if tokensB[tok] {
			intersection = append(intersection, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tokensB {
		if !tokensA[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	base := strings.Join(intersection, " ")
	fullA := strings.TrimSpace(base + " " + strings.Join(onlyA, " "))
	fullB := strings.TrimSpace(base + " " + strings.Join(onlyB, " "))

	best := ratio(fullA, fullB)
	if base != "" {
		if r := ratio(base, fullA); r > best {
			best = r
		}
		if r := ratio(base, fullB); r > best {
			best = r
		}
	}
	return best * 100
}

func ratio(a, b string) float64 {
	if a == b {
		return 1
	}
	return levenshtein.RatioForStrings([]rune(a), []rune(b), levenshtein.DefaultOptions)
}

// tokenize lowercases and splits on any non-alphanumeric rune.
func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !isAlnum(r)
	})
	tokens := make(map[string]bool, len(fields))
	for _, f := range fields {
		tokens[f] = true
	}
	return tokens
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}
