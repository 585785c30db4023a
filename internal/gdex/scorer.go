// Package gdex scores candidate example sentences for pedagogical quality
// using the GDEX ("Good Dictionary EXamples") heuristic. A Scorer is a pure
// function over its inputs; the only state it carries is the per-language
// constant tables and the proficiency tier it was built for, so a single
// instance is safe for concurrent use.
package gdex

import (
	"fmt"
	"sort"
	"strings"

	"github.com/language-coach/sentence-search/internal/tokenizer"
)

// Score holds the six GDEX sub-scores and their weighted total. Every field
// lies in [0, 1].
type Score struct {
	Length         float64 `json:"length"`
	TargetPosition float64 `json:"target_position"`
	CommonWords    float64 `json:"common_words"`
	AvoidWords     float64 `json:"avoid_words"`
	Pronouns       float64 `json:"pronouns"`
	Syntactic      float64 `json:"syntactic"`
	Total          float64 `json:"total"`
}

// Scorer evaluates (sentence, target phrase) pairs for one language and one
// proficiency tier.
type Scorer struct {
	language    string
	proficiency Proficiency

	commonWords map[string]struct{}
	avoidWords  map[string]struct{}
	pronouns    map[string]struct{}

	minLength  int
	maxLength  int
	weights    Weights
	idealRatio float64
}

// New creates a Scorer for the given language code and proficiency tier.
// Only languages with constant tables are supported.
func New(language string, proficiency Proficiency) (*Scorer, error) {
	s := &Scorer{
		language:    strings.ToLower(language),
		proficiency: proficiency,
	}
	switch s.language {
	case "en":
		s.commonWords = commonWordsEN
		s.avoidWords = avoidWordsEN
		s.pronouns = pronounsEN
	case "es":
		s.commonWords = commonWordsES
		s.avoidWords = avoidWordsES
		s.pronouns = pronounsES
	default:
		return nil, fmt.Errorf("no gdex tables for language %q", language)
	}

	r, ok := lengthRanges[proficiency]
	if !ok {
		r = lengthRanges[Intermediate]
		proficiency = Intermediate
	}
	s.minLength = r.min
	s.maxLength = r.max
	s.weights = tierWeights[proficiency]
	s.idealRatio = idealCommonRatio[proficiency]
	return s, nil
}

// ScoreSentence scores a sentence against a target phrase. tokens may carry
// the sentence's cached tokenization; pass nil to tokenize here.
func (s *Scorer) ScoreSentence(sentence, targetPhrase string, tokens []string) Score {
	sentence = strings.TrimSpace(sentence)
	targetPhrase = strings.ToLower(targetPhrase)
	if tokens == nil {
		tokens = tokenizer.Tokenize(sentence)
	}

	sc := Score{
		Length:         s.scoreLength(tokens),
		TargetPosition: s.scoreTargetPosition(sentence, targetPhrase),
		CommonWords:    s.scoreCommonWords(tokens),
		AvoidWords:     s.scoreAvoidWords(tokens),
		Pronouns:       s.scorePronouns(tokens),
		Syntactic:      s.scoreSyntactic(sentence),
	}
	sc.Total = sc.Length*s.weights.Length +
		sc.TargetPosition*s.weights.TargetPosition +
		sc.CommonWords*s.weights.CommonWords +
		sc.AvoidWords*s.weights.AvoidWords +
		sc.Pronouns*s.weights.Pronouns +
		sc.Syntactic*s.weights.Syntactic
	return sc
}

// scoreLength rewards sentences near the midpoint of the tier's ideal range
// and decays linearly outside it, reaching zero at the hard ceiling.
func (s *Scorer) scoreLength(tokens []string) float64 {
	n := len(tokens)
	switch {
	case n >= s.minLength && n <= s.maxLength:
		mid := float64(s.minLength+s.maxLength) / 2
		dist := abs(float64(n) - mid)
		maxDist := float64(s.maxLength-s.minLength) / 2
		return 1.0 - (dist/maxDist)*0.5
	case n < s.minLength:
		return clamp01(0.5 * float64(n) / float64(s.minLength))
	default:
		if n > MaxSentenceTokens {
			return 0.0
		}
		over := float64(n-s.maxLength) / float64(MaxSentenceTokens-s.maxLength)
		return clamp01(0.5 * (1.0 - over))
	}
}

// scoreTargetPosition prefers targets that sit in the middle of the sentence.
// Multi-token phrases additionally reward in-order occurrence with small gaps
// between the matched tokens.
func (s *Scorer) scoreTargetPosition(sentence, targetPhrase string) float64 {
	sentenceLower := strings.ToLower(sentence)
	targetTokens := strings.Fields(targetPhrase)
	if len(targetTokens) == 0 {
		return 0.0
	}

	if len(targetTokens) == 1 {
		word := targetTokens[0]
		idx := strings.Index(sentenceLower, word)
		if idx < 0 {
			return 0.0
		}
		ratio := float64(idx) / float64(len(sentenceLower))
		switch {
		case ratio >= 0.3 && ratio <= 0.7:
			return 1.0
		case ratio < 0.3:
			return 0.5 + (ratio/0.3)*0.5
		default:
			return 0.5 + ((1.0-ratio)/0.3)*0.5
		}
	}

	// Exact substring match of the whole phrase is the best case.
	if idx := strings.Index(sentenceLower, targetPhrase); idx >= 0 {
		ratio := float64(idx) / float64(len(sentenceLower))
		if ratio >= 0.2 && ratio <= 0.8 {
			return 1.0
		}
		return 0.9
	}

	sentenceTokens := tokenizer.Tokenize(sentence)

	// First occurrence of each target token, allowing substring matches.
	positions := make([]int, 0, len(targetTokens))
	for _, target := range targetTokens {
		found := -1
		for i, tok := range sentenceTokens {
			if target == tok || strings.Contains(tok, target) {
				found = i
				break
			}
		}
		if found < 0 {
			return 0.1
		}
		positions = append(positions, found)
	}

	if !sort.IntsAreSorted(positions) {
		return 0.2
	}

	totalGap := 0
	for i := 0; i < len(positions)-1; i++ {
		totalGap += positions[i+1] - positions[i] - 1
	}
	var gapScore float64
	switch {
	case totalGap == 0:
		gapScore = 1.0
	case totalGap == 1:
		gapScore = 0.9
	case totalGap <= 3:
		gapScore = 0.8
	case totalGap <= 6:
		gapScore = 0.6
	case totalGap <= 10:
		gapScore = 0.4
	default:
		gapScore = 0.2
	}

	center := float64(positions[0]+positions[len(positions)-1]) / 2
	ratio := 0.5
	if n := len(sentenceTokens); n > 1 {
		ratio = center / float64(n-1)
	}
	var positionScore float64
	switch {
	case ratio >= 0.2 && ratio <= 0.8:
		positionScore = 1.0
	case ratio < 0.2:
		positionScore = 0.7 + (ratio/0.2)*0.3
	default:
		positionScore = 0.7 + ((1.0-ratio)/0.2)*0.3
	}

	final := gapScore*0.7 + positionScore*0.3
	if final > 1.0 {
		final = 1.0
	}
	return final
}

// scoreCommonWords compares the sentence's common-word ratio against the
// tier's ideal ratio.
func (s *Scorer) scoreCommonWords(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0.0
	}
	common := 0
	for _, tok := range tokens {
		if _, ok := s.commonWords[tok]; ok {
			common++
		}
	}
	ratio := float64(common) / float64(len(tokens))
	if ratio >= s.idealRatio {
		return 1.0
	}
	return ratio / s.idealRatio
}

// scoreAvoidWords is binary: any blocklisted token disqualifies the sentence.
func (s *Scorer) scoreAvoidWords(tokens []string) float64 {
	for _, tok := range tokens {
		if _, ok := s.avoidWords[tok]; ok {
			return 0.0
		}
	}
	return 1.0
}

// scorePronouns penalises sentences opening with a pronoun and sentences
// dominated by pronouns, both signs of unclear referents.
func (s *Scorer) scorePronouns(tokens []string) float64 {
	if len(tokens) == 0 {
		return 0.0
	}
	if _, ok := s.pronouns[tokens[0]]; ok {
		return 0.5
	}
	count := 0
	for _, tok := range tokens {
		if _, ok := s.pronouns[tok]; ok {
			count++
		}
	}
	ratio := float64(count) / float64(len(tokens))
	switch {
	case ratio > 0.3:
		return 0.5
	case ratio > 0.2:
		return 0.75
	default:
		return 1.0
	}
}

// scoreSyntactic is a cheap completeness check: capitalised start, terminal
// punctuation, and a single sentence terminator.
func (s *Scorer) scoreSyntactic(sentence string) float64 {
	if sentence == "" {
		return 0.0
	}
	score := 1.0

	first := sentence[0]
	if first < 'A' || first > 'Z' {
		score -= 0.3
	}
	last := sentence[len(sentence)-1]
	if last != '.' && last != '?' && last != '!' {
		score -= 0.3
	}
	terminators := 0
	for i := 0; i < len(sentence); i++ {
		switch sentence[i] {
		case '.', '!', '?':
			terminators++
		}
	}
	if terminators > 1 {
		score -= 0.4
	}
	if score < 0 {
		return 0.0
	}
	return score
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
