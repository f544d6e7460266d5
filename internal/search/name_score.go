package search

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Score tiers. Each tier owns a band of tierWidth points; the in-band offset
// ranks matches of the same kind.
const (
	tierWidth       uint32 = 1_000_000
	tierSubsequence uint32 = 1 * tierWidth
	tierSubstring   uint32 = 2 * tierWidth
	tierPrefix      uint32 = 3 * tierWidth
	tierStem        uint32 = 4 * tierWidth
	tierExact       uint32 = 5 * tierWidth

	// maxQualityPoints bounds the in-tier match quality component; the rest of
	// the band is left for the length bonus.
	maxQualityPoints = 900_000
	maxLengthPoints  = 99_999
)

// NameScorer ranks base names against a query.
//
// Scoring inside the subsequence tier (similar to fzf/sublime text):
//   - every matched char: +charBonus
//   - char at a word boundary (after a separator, camelCase hump): +wordBoundaryBonus
//   - char directly after the previous match: +consecutiveBonus
//   - each skipped char between matches: -gapPenalty
type NameScorer struct {
	charBonus         float64
	wordBoundaryBonus float64
	consecutiveBonus  float64
	gapPenalty        float64
	leadingPenalty    float64
}

// NewNameScorer creates a scorer with default weights.
func NewNameScorer() *NameScorer {
	return &NameScorer{
		charBonus:         1.2,
		wordBoundaryBonus: 0.6,
		consecutiveBonus:  1.2,
		gapPenalty:        0.18,
		leadingPenalty:    0.05,
	}
}

// NameQuery is a query prepared once per operation.
type NameQuery struct {
	raw    string
	tokens [][]rune
}

// PrepareNameQuery folds the query and splits it on whitespace. Every token
// must match for a name to score.
func PrepareNameQuery(query string) NameQuery {
	fields := strings.Fields(query)
	tokens := make([][]rune, 0, len(fields))
	for _, f := range fields {
		tokens = append(tokens, []rune(strings.ToLower(f)))
	}
	return NameQuery{raw: strings.TrimSpace(query), tokens: tokens}
}

// Empty reports whether the query has nothing to match.
func (q NameQuery) Empty() bool {
	return len(q.tokens) == 0
}

func (q NameQuery) String() string {
	return q.raw
}

// Score rates name against q. It returns false when some token is not a
// case-insensitive subsequence of name.
func (s *NameScorer) Score(q NameQuery, name string) (uint32, bool) {
	if q.Empty() {
		return 0, false
	}

	lowerName := strings.ToLower(name)
	nameRunes := []rune(name)
	lowerRunes := []rune(lowerName)
	if len(lowerRunes) != len(nameRunes) {
		// Case folding changed the rune count; boundaries come from the folded text.
		nameRunes = lowerRunes
	}

	var total uint64
	for _, token := range q.tokens {
		score, ok := s.scoreToken(token, lowerName, lowerRunes, nameRunes)
		if !ok {
			return 0, false
		}
		total += uint64(score)
	}
	return uint32(total / uint64(len(q.tokens))), true
}

func (s *NameScorer) scoreToken(token []rune, lowerName string, lowerRunes, nameRunes []rune) (uint32, bool) {
	if len(token) > len(lowerRunes) {
		return 0, false
	}
	pattern := string(token)
	lengthPoints := lengthBonus(len(lowerRunes))

	switch {
	case lowerName == pattern:
		return tierExact + lengthPoints, true
	case stemOf(lowerName) == pattern:
		return tierStem + lengthPoints, true
	case strings.HasPrefix(lowerName, pattern):
		quality := s.contiguousQuality(token, nameRunes, 0)
		return tierPrefix + quality + lengthPoints, true
	}

	if byteIdx := strings.Index(lowerName, pattern); byteIdx >= 0 {
		start := utf8.RuneCountInString(lowerName[:byteIdx])
		quality := s.contiguousQuality(token, nameRunes, start)
		return tierSubstring + quality + lengthPoints, true
	}

	raw, ok := s.subsequenceScore(token, lowerRunes, nameRunes)
	if !ok {
		return 0, false
	}
	return tierSubsequence + s.qualityPoints(raw, len(token)) + lengthPoints, true
}

// contiguousQuality rates a run of len(token) runes starting at start.
func (s *NameScorer) contiguousQuality(token, nameRunes []rune, start int) uint32 {
	raw := -s.leadingPenalty * float64(start)
	for i := range token {
		idx := start + i
		raw += s.charBonus
		if isWordBoundaryRune(nameRunes, idx) {
			raw += s.wordBoundaryBonus
		}
		if i > 0 {
			raw += s.consecutiveBonus
		}
	}
	return s.qualityPoints(raw, len(token))
}

// subsequenceScore finds the best placement of token inside text with a
// dynamic program over (token index, text index).
func (s *NameScorer) subsequenceScore(token, text, original []rune) (float64, bool) {
	m, n := len(token), len(text)
	if m == 0 || m > n {
		return 0, false
	}

	negInf := math.Inf(-1)
	prev := make([]float64, n)
	curr := make([]float64, n)
	for j := range prev {
		prev[j] = negInf
		if token[0] == text[j] {
			score := s.charBonus - s.leadingPenalty*float64(j)
			if isWordBoundaryRune(original, j) {
				score += s.wordBoundaryBonus
			}
			prev[j] = score
		}
	}

	for i := 1; i < m; i++ {
		best := negInf // best prev[k] for k < j-1, gap-adjusted to position j
		for j := 0; j < n; j++ {
			curr[j] = negInf
			if j >= 2 && prev[j-2] > best {
				best = prev[j-2]
			}
			if j > 0 && best > negInf {
				best -= s.gapPenalty
			}
			if token[i] != text[j] || j == 0 {
				continue
			}

			charScore := s.charBonus
			if isWordBoundaryRune(original, j) {
				charScore += s.wordBoundaryBonus
			}

			candidate := best
			if prev[j-1] > negInf {
				if adjacent := prev[j-1] + s.consecutiveBonus; adjacent > candidate {
					candidate = adjacent
				}
			}
			if candidate > negInf {
				curr[j] = candidate + charScore
			}
		}
		prev, curr = curr, prev
	}

	bestScore := negInf
	for _, v := range prev {
		if v > bestScore {
			bestScore = v
		}
	}
	if bestScore == negInf {
		return 0, false
	}
	return bestScore, true
}

// qualityPoints maps a raw score onto [0, maxQualityPoints] relative to the
// best score a pattern of m runes can reach.
func (s *NameScorer) qualityPoints(raw float64, m int) uint32 {
	if m == 0 {
		return 0
	}
	ideal := float64(m)*(s.charBonus+s.wordBoundaryBonus) + float64(m-1)*s.consecutiveBonus
	ratio := raw / ideal
	if ratio <= 0 {
		return 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return uint32(ratio * maxQualityPoints)
}

// lengthBonus favours shorter names among equally good matches.
func lengthBonus(runeCount int) uint32 {
	penalty := runeCount * 100
	if penalty >= maxLengthPoints {
		return 0
	}
	return uint32(maxLengthPoints - penalty)
}

func stemOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return name
	}
	return strings.TrimSuffix(name, ext)
}

func isSeparatorRune(r rune) bool {
	switch r {
	case '/', '\\', '-', '_', ' ', '.', ':':
		return true
	}
	return false
}

func isWordBoundaryRune(text []rune, idx int) bool {
	if idx <= 0 || idx >= len(text) {
		return idx == 0
	}
	prev, curr := text[idx-1], text[idx]
	if isSeparatorRune(prev) {
		return true
	}
	if unicode.IsUpper(curr) && unicode.IsLower(prev) {
		return true
	}
	return unicode.IsDigit(curr) && !unicode.IsDigit(prev)
}
