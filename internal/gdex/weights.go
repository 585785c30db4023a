package gdex

// Proficiency is the learner skill tier controlling length bounds and score
// weighting.
type Proficiency string

const (
	Beginner     Proficiency = "beginner"
	Intermediate Proficiency = "intermediate"
	Advanced     Proficiency = "advanced"
)

// MaxSentenceTokens is the hard ceiling on sentence length in tokens,
// independent of tier. Sentences beyond it score zero on length and are
// never indexed.
const MaxSentenceTokens = 30

// ParseProficiency normalises a tier string, falling back to Intermediate
// for anything unrecognised.
func ParseProficiency(s string) Proficiency {
	switch Proficiency(s) {
	case Beginner, Advanced:
		return Proficiency(s)
	default:
		return Intermediate
	}
}

// Weights holds the per-criterion weighting applied to sub-scores. The six
// weights sum to 1.0 for every tier.
type Weights struct {
	Length         float64
	TargetPosition float64
	CommonWords    float64
	AvoidWords     float64
	Pronouns       float64
	Syntactic      float64
}

// lengthRange is the ideal token-count band for a tier.
type lengthRange struct {
	min, max int
}

var lengthRanges = map[Proficiency]lengthRange{
	Beginner:     {5, 10},
	Intermediate: {7, 15},
	Advanced:     {10, 20},
}

// tierWeights emphasises common vocabulary and brevity for beginners and
// tolerance for syntactic complexity for advanced learners.
var tierWeights = map[Proficiency]Weights{
	Beginner: {
		Length:         0.25,
		TargetPosition: 0.15,
		CommonWords:    0.30,
		AvoidWords:     0.15,
		Pronouns:       0.10,
		Syntactic:      0.05,
	},
	Intermediate: {
		Length:         0.20,
		TargetPosition: 0.15,
		CommonWords:    0.25,
		AvoidWords:     0.15,
		Pronouns:       0.10,
		Syntactic:      0.15,
	},
	Advanced: {
		Length:         0.15,
		TargetPosition: 0.15,
		CommonWords:    0.15,
		AvoidWords:     0.15,
		Pronouns:       0.15,
		Syntactic:      0.25,
	},
}

// idealCommonRatio is the common-word ratio at or above which a sentence
// scores full marks on vocabulary, per tier.
var idealCommonRatio = map[Proficiency]float64{
	Beginner:     0.9,
	Intermediate: 0.8,
	Advanced:     0.7,
}
