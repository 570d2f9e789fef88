package opinion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseVote(t *testing.T) {
	for _, raw := range []int{-1, 0, 1} {
		v, ok := ParseVote(raw)
		assert.True(t, ok)
		assert.Equal(t, Vote(raw), v)
	}
	_, ok := ParseVote(2)
	assert.False(t, ok)
	_, ok = ParseVote(-2)
	assert.False(t, ok)
}

func TestModerationFromRaw(t *testing.T) {
	assert.Equal(t, ModerationRemoved, ModerationFromRaw(-1))
	assert.Equal(t, ModerationKept, ModerationFromRaw(0))
	assert.Equal(t, ModerationKept, ModerationFromRaw(1))
	assert.Equal(t, ModerationUnknown, ModerationFromRaw(7))
}

func TestGroupLetter(t *testing.T) {
	assert.Equal(t, "A", Group{Index: 0}.Letter())
	assert.Equal(t, "C", Group{Index: 2}.Letter())
	assert.Equal(t, "Z", Group{Index: 25}.Letter())
	assert.Equal(t, "[", Group{Index: 26}.Letter())
	assert.Equal(t, "a", Group{Index: 32}.Letter())
	assert.Equal(t, "", Group{Index: -1}.Letter())
}

func TestStatementDisplayText(t *testing.T) {
	assert.Equal(t, MissingText, Statement{TID: 1}.DisplayText())
	assert.Equal(t, "hello", Statement{TID: 1, Text: "hello"}.DisplayText())
}

func TestRepStatementMetric(t *testing.T) {
	r := RepStatement{Repness: 2, RepnessTest: 3, PSuccess: 0.5, PTest: 4}
	assert.InDelta(t, 12.0, r.Metric(), 1e-12)
}

func TestRepnessResultLookup(t *testing.T) {
	res := RepnessResult{Groups: []GroupRepness{
		{Group: Group{Label: "red", Index: 0}, Statements: []RepStatement{{TID: 1}}},
		{Group: Group{Label: "blue", Index: 1}},
	}}
	assert.Len(t, res.For("red"), 1)
	assert.Nil(t, res.For("green"))
	byLabel := res.ByLabel()
	assert.Len(t, byLabel, 2)
	assert.Empty(t, byLabel["blue"])
}
