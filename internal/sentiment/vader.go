package sentiment

import (
	"math"

	"github.com/jonreiter/govader"
)

// alpha is VADER's normalization constant: compound = x / sqrt(x^2 + alpha).
const alpha = 15.0

// Fallback supplies valences for words missing from the polarity lexicon.
type Fallback interface {
	Valence(word string) float64
}

// VaderFallback scores single words with the VADER lexicon and converts the
// compound score back to a raw valence.
type VaderFallback struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderFallback() *VaderFallback {
	return &VaderFallback{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderFallback) Valence(word string) float64 {
	return compoundToValence(v.analyzer.PolarityScores(word).Compound)
}

func normalize(x float64) float64 {
	return x / math.Sqrt(x*x+alpha)
}

// compoundToValence inverts normalize.
func compoundToValence(c float64) float64 {
	if math.Abs(c) < 1e-9 || math.IsNaN(c) {
		return 0
	}
	c = math.Max(-0.9999, math.Min(0.9999, c))
	return c * math.Sqrt(alpha/(1-c*c))
}
