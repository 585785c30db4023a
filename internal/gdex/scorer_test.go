package gdex

import (
	"math"
	"testing"
)

const eps = 1e-12

func mustScorer(t *testing.T, language string, p Proficiency) *Scorer {
	t.Helper()
	s, err := New(language, p)
	if err != nil {
		t.Fatalf("New(%q, %v): %v", language, p, err)
	}
	return s
}

func TestNewUnsupportedLanguage(t *testing.T) {
	if _, err := New("fr", Intermediate); err == nil {
		t.Fatal("expected error for language without tables")
	}
}

func TestScoreSentenceKnownValues(t *testing.T) {
	s := mustScorer(t, "en", Intermediate)
	sc := s.ScoreSentence("Hello world and welcome to our wonderful program", "hello", nil)

	// 8 tokens, range 7..15: mid 11, dist 3, maxDist 4.
	if got, want := sc.Length, 0.625; math.Abs(got-want) > eps {
		t.Errorf("Length = %v, want %v", got, want)
	}
	// Target at offset 0: ratio 0 -> 0.5.
	if got, want := sc.TargetPosition, 0.5; math.Abs(got-want) > eps {
		t.Errorf("TargetPosition = %v, want %v", got, want)
	}
	// Common tokens: and, to, our = 3/8; ideal ratio 0.8.
	if got, want := sc.CommonWords, 0.375/0.8; math.Abs(got-want) > eps {
		t.Errorf("CommonWords = %v, want %v", got, want)
	}
	if sc.AvoidWords != 1.0 {
		t.Errorf("AvoidWords = %v, want 1.0", sc.AvoidWords)
	}
	if sc.Pronouns != 1.0 {
		t.Errorf("Pronouns = %v, want 1.0", sc.Pronouns)
	}
	// No terminal punctuation.
	if got, want := sc.Syntactic, 0.7; math.Abs(got-want) > eps {
		t.Errorf("Syntactic = %v, want %v", got, want)
	}
	if got, want := sc.Total, 0.6721875; math.Abs(got-want) > eps {
		t.Errorf("Total = %v, want %v", got, want)
	}
}

func TestScoreBounds(t *testing.T) {
	sentences := []string{
		"",
		"Hi.",
		"The quick brown fox jumps over the lazy dog near the river bank today.",
		"it was something that they did whenever anyone asked them about it or this or that",
		"Um, the proverbial thing happened!",
		"one two three four five six seven eight nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty one two three four five six seven eight nine ten eleven",
	}
	for _, p := range []Proficiency{Beginner, Intermediate, Advanced} {
		s := mustScorer(t, "en", p)
		for _, sent := range sentences {
			sc := s.ScoreSentence(sent, "quick fox", nil)
			for name, v := range map[string]float64{
				"length":          sc.Length,
				"target_position": sc.TargetPosition,
				"common_words":    sc.CommonWords,
				"avoid_words":     sc.AvoidWords,
				"pronouns":        sc.Pronouns,
				"syntactic":       sc.Syntactic,
				"total":           sc.Total,
			} {
				if v < 0 || v > 1 {
					t.Errorf("%v %q: %s = %v out of [0,1]", p, sent, name, v)
				}
			}
		}
	}
}

func TestTargetPositionSingleToken(t *testing.T) {
	s := mustScorer(t, "en", Intermediate)
	tests := []struct {
		sentence string
		target   string
		want     float64
	}{
		{"The dog ran fast.", "missing", 0.0},
		// "dog" at byte 4 of 17: ratio ~0.235 -> 0.5 + (0.235../0.3)*0.5.
		{"The dog ran fast.", "dog", 0.5 + (4.0/17.0)/0.3*0.5},
	}
	for _, tt := range tests {
		got := s.scoreTargetPosition(tt.sentence, tt.target)
		if math.Abs(got-tt.want) > eps {
			t.Errorf("scoreTargetPosition(%q, %q) = %v, want %v", tt.sentence, tt.target, got, tt.want)
		}
	}

	// Mid-sentence target lands in the plateau.
	got := s.scoreTargetPosition("My brother walked the dog around the block yesterday.", "dog")
	if got != 1.0 {
		t.Errorf("mid-sentence target = %v, want 1.0", got)
	}
}

func TestTargetPositionMultiToken(t *testing.T) {
	s := mustScorer(t, "en", Intermediate)

	// Exact phrase near the start: outside [0.2, 0.8] -> 0.9.
	if got := s.scoreTargetPosition("Quick fox runs through the forest every single morning now.", "quick fox"); got != 0.9 {
		t.Errorf("exact phrase at start = %v, want 0.9", got)
	}

	// Tokens present but out of order.
	if got := s.scoreTargetPosition("The dog chased the cat", "cat dog"); got != 0.2 {
		t.Errorf("out-of-order tokens = %v, want 0.2", got)
	}

	// One token missing entirely.
	if got := s.scoreTargetPosition("The dog slept all day", "cat dog"); got != 0.1 {
		t.Errorf("missing token = %v, want 0.1", got)
	}
}

func TestTargetPositionGapBands(t *testing.T) {
	s := mustScorer(t, "en", Intermediate)

	// "quick" at 1, "fox" at 3: gap 1 -> 0.9, center 2 of 0..8 -> ratio 0.25 -> position 1.0.
	got := s.scoreTargetPosition("the quick brown fox jumped over the fence today", "quick fox")
	want := 0.9*0.7 + 1.0*0.3
	if math.Abs(got-want) > eps {
		t.Errorf("gap-1 score = %v, want %v", got, want)
	}
}

func TestScorePronouns(t *testing.T) {
	s := mustScorer(t, "en", Intermediate)
	tests := []struct {
		tokens []string
		want   float64
	}{
		{nil, 0.0},
		{[]string{"she", "walked", "home"}, 0.5},
		{[]string{"walked", "with", "her", "and", "them"}, 0.5},
		{[]string{"dogs", "bark", "at", "them", "loudly", "walking", "past", "fences", "daily"}, 1.0},
	}
	for _, tt := range tests {
		if got := s.scorePronouns(tt.tokens); math.Abs(got-tt.want) > eps {
			t.Errorf("scorePronouns(%v) = %v, want %v", tt.tokens, got, tt.want)
		}
	}
}

func TestScoreSyntactic(t *testing.T) {
	s := mustScorer(t, "en", Intermediate)
	tests := []struct {
		sentence string
		want     float64
	}{
		{"", 0.0},
		{"The dog barked.", 1.0},
		{"the dog barked.", 0.7},
		{"The dog barked", 0.7},
		{"The dog barked. Then it slept.", 0.6},
		{"the dog barked. then it slept", 0.3},
	}
	for _, tt := range tests {
		if got := s.scoreSyntactic(tt.sentence); math.Abs(got-tt.want) > eps {
			t.Errorf("scoreSyntactic(%q) = %v, want %v", tt.sentence, got, tt.want)
		}
	}
}

func TestScoreAvoidWords(t *testing.T) {
	s := mustScorer(t, "en", Beginner)
	if got := s.scoreAvoidWords([]string{"the", "damn", "cat"}); got != 0.0 {
		t.Errorf("blocklisted token = %v, want 0.0", got)
	}
	if got := s.scoreAvoidWords([]string{"the", "friendly", "cat"}); got != 1.0 {
		t.Errorf("clean tokens = %v, want 1.0", got)
	}
}

func TestScoreLengthCeiling(t *testing.T) {
	s := mustScorer(t, "en", Advanced)
	long := make([]string, MaxSentenceTokens+1)
	for i := range long {
		long[i] = "word"
	}
	if got := s.scoreLength(long); got != 0.0 {
		t.Errorf("over-ceiling length = %v, want 0.0", got)
	}
	if got := s.scoreLength(long[:MaxSentenceTokens]); got != 0.0 {
		t.Errorf("at-ceiling length = %v, want 0.0", got)
	}
	// 29 tokens, range 10..20: 0.5 * (1 - 9/10).
	if got, want := s.scoreLength(long[:MaxSentenceTokens-1]), 0.05; math.Abs(got-want) > eps {
		t.Errorf("near-ceiling length = %v, want %v", got, want)
	}
}
