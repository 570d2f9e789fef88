// Package proportion implements the Laplace-smoothed proportion z-tests used to score
// how strongly a group leans on a statement.
package proportion

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// DefaultSignificanceZ is the one-tailed 90% confidence threshold
const DefaultSignificanceZ = 1.2816

// OneSample tests whether the observed success proportion differs from 0.5.
// Both counts are smoothed by +1 before scoring; OneSample(0, 0) is 0.
func OneSample(success, trials int) float64 {
	adjustedSuccess := float64(success + 1)
	adjustedTrials := float64(trials + 1)
	return 2 * math.Sqrt(adjustedTrials) * (adjustedSuccess/adjustedTrials - 0.5)
}

// TwoSample tests whether the in-group success proportion differs from the out-group one.
// All four counts are smoothed by +1 before the raw formula is applied.
func TwoSample(successIn, successOut, trialsIn, trialsOut int) float64 {
	return TwoSampleRaw(
		float64(successIn+1),
		float64(successOut+1),
		float64(trialsIn+1),
		float64(trialsOut+1),
	)
}

// TwoSampleRaw is the unsmoothed two-proportion z statistic.
// When the pooled proportion is exactly 1 the variance is zero and the score is 0.
func TwoSampleRaw(successIn, successOut, trialsIn, trialsOut float64) float64 {
	pi1 := successIn / trialsIn
	pi2 := successOut / trialsOut
	piHat := (successIn + successOut) / (trialsIn + trialsOut)

	if piHat == 1 {
		return 0
	}

	return (pi1 - pi2) / math.Sqrt(piHat*(1-piHat)*(1/trialsIn+1/trialsOut))
}

// OneTailedPValue converts a z score to the upper-tail probability under the unit normal
func OneTailedPValue(z float64) float64 {
	return 1.0 - distuv.UnitNormal.CDF(z)
}

// Tester applies a configurable significance threshold to z scores
type Tester struct {
	Threshold float64
}

// NewTester creates a tester; a non-positive threshold falls back to DefaultSignificanceZ
func NewTester(threshold float64) Tester {
	if threshold <= 0 {
		threshold = DefaultSignificanceZ
	}
	return Tester{Threshold: threshold}
}

// IsSignificant reports whether z clears the threshold (strictly greater)
func (t Tester) IsSignificant(z float64) bool {
	return z > t.Threshold
}
