package votematrix

import (
	"context"
	"fmt"
	"testing"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/errors"
	"opinionmap/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func label(s string) *opinion.GroupLabel {
	l := opinion.GroupLabel(s)
	return &l
}

func pids(ids ...string) []core.ParticipantID {
	out := make([]core.ParticipantID, len(ids))
	for i, id := range ids {
		out[i] = core.ParticipantID(id)
	}
	return out
}

func TestGroupParticipants_FirstAppearanceOrder(t *testing.T) {
	a := Assignment{
		Participants: pids("p1", "p2", "p3", "p4"),
		Labels:       []*opinion.GroupLabel{label("red"), nil, label("blue"), label("red")},
	}

	groups, members := GroupParticipants(a)

	require.Len(t, groups, 2)
	assert.Equal(t, opinion.Group{Label: "red", Index: 0}, groups[0])
	assert.Equal(t, opinion.Group{Label: "blue", Index: 1}, groups[1])
	assert.Equal(t, pids("p1", "p4"), members["red"])
	assert.Equal(t, pids("p3"), members["blue"])
}

func TestGroupParticipants_DeclaredGroupsKeepOrderAndEmptyGroups(t *testing.T) {
	a := Assignment{
		Participants: pids("p1", "p2"),
		Labels:       []*opinion.GroupLabel{label("blue"), label("green")},
		Groups: []opinion.Group{
			{Label: "red", Index: 0},
			{Label: "blue", Index: 1},
		},
	}

	groups, members := GroupParticipants(a)

	require.Len(t, groups, 3)
	assert.Equal(t, opinion.GroupLabel("red"), groups[0].Label)
	assert.Equal(t, opinion.GroupLabel("blue"), groups[1].Label)
	assert.Equal(t, opinion.Group{Label: "green", Index: 2}, groups[2])
	assert.Empty(t, members["red"])
}

func TestGroupParticipants_SkipsSurplusLabelsAndEmptyIDs(t *testing.T) {
	a := Assignment{
		Participants: pids("p1", ""),
		Labels:       []*opinion.GroupLabel{label("red"), label("red"), label("blue")},
	}

	groups, members := GroupParticipants(a)

	require.Len(t, groups, 1)
	assert.Equal(t, pids("p1"), members["red"])
}

func TestLabelsWithUnpainted(t *testing.T) {
	labels := []*opinion.GroupLabel{label("red"), nil}

	out := LabelsWithUnpainted(labels, 3, true)
	require.Len(t, out, 3)
	assert.Equal(t, opinion.GroupLabel("red"), *out[0])
	assert.Equal(t, opinion.UnpaintedLabel, *out[1])
	assert.Equal(t, opinion.UnpaintedLabel, *out[2])

	out = LabelsWithUnpainted(labels, 3, false)
	require.Len(t, out, 2)
	assert.Nil(t, out[1])
}

func TestExtract_OneLookupPerGroup(t *testing.T) {
	store := testkit.NewMemoryVoteStore()
	store.Add("p1", 1, opinion.VoteAgree)
	store.Add("p1", 2, opinion.VoteDisagree)
	store.Add("p2", 1, opinion.VotePass)
	store.Add("p3", 2, opinion.VoteAgree)

	a := Assignment{
		Participants: pids("p1", "p2", "p3", "p4"),
		Labels:       []*opinion.GroupLabel{label("red"), label("red"), label("blue"), label("blue")},
	}

	ext, err := NewExtractor(store, WithConcurrency(2)).Extract(context.Background(), a)
	require.NoError(t, err)

	assert.Len(t, store.Lookups(), 2)
	require.Len(t, ext.Groups, 2)
	assert.Equal(t, 2, ext.MemberCount("blue"))
	assert.Equal(t, 2, ext.NonEmptyGroups())

	red := ext.Matrices["red"]
	assert.Equal(t, opinion.VoteAgree, red["p1"][1])
	assert.Equal(t, opinion.VoteDisagree, red["p1"][2])
	assert.Equal(t, opinion.VotePass, red["p2"][1])

	blue := ext.Matrices["blue"]
	assert.Len(t, blue, 1, "participants without votes get no row")
	_, ok := blue["p4"]
	assert.False(t, ok)
}

func TestExtract_EmptyGroupSkipsLookup(t *testing.T) {
	store := testkit.NewMemoryVoteStore()
	a := Assignment{
		Groups: []opinion.Group{{Label: "red", Index: 0}},
	}

	ext, err := NewExtractor(store).Extract(context.Background(), a)
	require.NoError(t, err)

	assert.Empty(t, store.Lookups())
	assert.NotNil(t, ext.Matrices["red"])
	assert.Empty(t, ext.Matrices["red"])
	assert.Equal(t, 0, ext.NonEmptyGroups())
}

func TestExtract_StoreFailure(t *testing.T) {
	store := testkit.NewMemoryVoteStore()
	store.FailWith(fmt.Errorf("connection reset"))

	a := Assignment{
		Participants: pids("p1"),
		Labels:       []*opinion.GroupLabel{label("red")},
	}

	_, err := NewExtractor(store).Extract(context.Background(), a)
	require.Error(t, err)
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "connection reset")
}

func TestExtract_GeneratedConversation(t *testing.T) {
	cfg := testkit.DefaultConversationConfig()
	cfg.ParticipantsPerGroup = 10
	conv := testkit.NewConversationGenerator(cfg).Generate()

	ext, err := NewExtractor(conv.Store).Extract(context.Background(), Assignment{
		Participants: conv.Participants,
		Labels:       conv.Labels,
	})
	require.NoError(t, err)

	for label, want := range conv.Matrices {
		assert.Equal(t, want, ext.Matrices[label], "group %s", label)
	}
}

func TestBuildMatrix_IgnoresNonMembers(t *testing.T) {
	records := []opinion.VoteRecord{
		{Participant: "p1", Statement: 3, Vote: opinion.VoteAgree},
		{Participant: "intruder", Statement: 3, Vote: opinion.VoteDisagree},
	}

	m := BuildMatrix(pids("p1"), records)
	assert.Len(t, m, 1)
	assert.Equal(t, opinion.VoteAgree, m["p1"][3])
}
