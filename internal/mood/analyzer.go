package mood

import (
	"strings"

	"github.com/mindtype-app/mindtype-server/internal/companion"
)

// Verdict is the analyzer's output for one message.
type Verdict struct {
	NewMood   int
	Impact    Impact
	Intensity int
}

// Analyzer scores messages against per-type trigger lexicons. It holds no
// mutable state and performs no I/O.
type Analyzer struct {
	lexicons map[string]companion.Lexicon
	fallback companion.Lexicon
}

// NewAnalyzer builds an Analyzer over the given lexicon map. Unknown
// companion types fall back to the INTJ lexicon.
func NewAnalyzer(lexicons map[string]companion.Lexicon) *Analyzer {
	return &Analyzer{
		lexicons: lexicons,
		fallback: lexicons["INTJ"],
	}
}

const maxIntensity = 5

// Analyze scores a message against the companion's triggers and returns the
// resulting mood. Irritants are tallied in full before pleasers, so a mixed
// message is evaluated net of its irritant score: pleasers first cancel
// negative intensity two points at a time, and only add positive intensity
// once the verdict is back to neutral.
func (a *Analyzer) Analyze(companionType, message string, currentMood int) Verdict {
	lex, ok := a.lexicons[companionType]
	if !ok {
		lex = a.fallback
	}
	lower := strings.ToLower(message)

	impact := ImpactNeutral
	intensity := 0

	for _, irritant := range lex.Irritants {
		if strings.Contains(lower, irritant) {
			impact = ImpactNegative
			intensity = min(intensity+2, maxIntensity)
		}
	}

	for _, pleaser := range lex.Pleasers {
		if strings.Contains(lower, pleaser) {
			if impact == ImpactNegative {
				intensity = max(intensity-2, 0)
				if intensity == 0 {
					impact = ImpactNeutral
				}
			} else {
				impact = ImpactPositive
				intensity = min(intensity+2, maxIntensity)
			}
		}
	}

	// Negative hits weigh harder than positive ones: companions are easier
	// to upset than to please.
	change := 0
	switch impact {
	case ImpactPositive:
		change = intensity * 5
	case ImpactNegative:
		change = -intensity * 8
	}

	// Emotional settling: drift one point toward zero each message.
	drift := 0
	if currentMood > 0 {
		drift = -1
	} else if currentMood < 0 {
		drift = 1
	}

	return Verdict{
		NewMood:   clamp(currentMood+change+drift, -100, 100),
		Impact:    impact,
		Intensity: intensity,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
