package proportion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOneSample_ZeroTrials(t *testing.T) {
	assert.Equal(t, 0.0, OneSample(0, 0))
}

func TestOneSample_KnownValues(t *testing.T) {
	// 5/5 agree -> 2*sqrt(6)*(6/6-0.5) = sqrt(6)
	assert.InDelta(t, math.Sqrt(6), OneSample(5, 5), 1e-12)
	// 0/5 agree -> 2*sqrt(6)*(1/6-0.5)
	assert.InDelta(t, 2*math.Sqrt(6)*(1.0/6-0.5), OneSample(0, 5), 1e-12)
}

func TestOneSample_UnanimousStaysFinite(t *testing.T) {
	prev := OneSample(0, 0)
	for n := 1; n <= 1000; n *= 10 {
		z := OneSample(n, n)
		assert.False(t, math.IsNaN(z) || math.IsInf(z, 0), "n=%d", n)
		assert.Greater(t, z, prev, "unanimous score should grow with n")
		prev = z
	}
}

func TestTwoSample_Antisymmetric(t *testing.T) {
	cases := [][4]int{
		{10, 5, 20, 30},
		{0, 7, 3, 9},
		{4, 4, 10, 10},
		{1, 0, 1, 12},
	}
	for _, c := range cases {
		forward := TwoSample(c[0], c[1], c[2], c[3])
		backward := TwoSample(c[1], c[0], c[3], c[2])
		assert.InDelta(t, forward, -backward, 1e-12, "case %v", c)
	}
}

func TestTwoSample_PooledProportionOne(t *testing.T) {
	assert.Equal(t, 0.0, TwoSample(5, 5, 5, 5))
	assert.Equal(t, 0.0, TwoSample(0, 0, 0, 0))
	assert.Equal(t, 0.0, TwoSampleRaw(3, 4, 3, 4))
}

func TestTwoSample_MatchesRawOnAdjustedInputs(t *testing.T) {
	assert.Equal(t, TwoSampleRaw(11, 6, 21, 31), TwoSample(10, 5, 20, 30))
}

func TestTwoSample_Direction(t *testing.T) {
	assert.Greater(t, TwoSample(5, 0, 5, 5), 0.0)
	assert.Less(t, TwoSample(0, 5, 5, 5), 0.0)
}

func TestTester(t *testing.T) {
	tester := NewTester(0)
	assert.Equal(t, DefaultSignificanceZ, tester.Threshold)
	assert.False(t, tester.IsSignificant(DefaultSignificanceZ))
	assert.True(t, tester.IsSignificant(1.2817))
	assert.False(t, tester.IsSignificant(-3))

	strict := NewTester(2.0)
	assert.False(t, strict.IsSignificant(1.9))
	assert.True(t, strict.IsSignificant(2.1))
}

func TestOneTailedPValue(t *testing.T) {
	assert.InDelta(t, 0.5, OneTailedPValue(0), 1e-12)
	assert.InDelta(t, 0.10, OneTailedPValue(DefaultSignificanceZ), 1e-4)
	assert.Less(t, OneTailedPValue(3), OneTailedPValue(1))
}
