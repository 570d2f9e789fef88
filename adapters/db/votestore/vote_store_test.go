package votestore

import (
	"context"
	"testing"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(ctx, db))
	return db
}

func seed(t *testing.T, db *sqlx.DB) {
	t.Helper()
	require.NoError(t, InsertVotes(context.Background(), db, []opinion.VoteRecord{
		{Participant: "p1", Statement: 4, Vote: opinion.VoteAgree},
		{Participant: "p1", Statement: 2, Vote: opinion.VoteDisagree},
		{Participant: "p2", Statement: 2, Vote: opinion.VotePass},
		{Participant: "p3", Statement: 7, Vote: opinion.VoteAgree},
	}))
}

func TestVotesForParticipants_Batched(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	store := NewVoteStore(db)

	records, err := store.VotesForParticipants(context.Background(), []core.ParticipantID{"p1", "p2", "nobody"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []opinion.VoteRecord{
		{Participant: "p1", Statement: 4, Vote: opinion.VoteAgree},
		{Participant: "p1", Statement: 2, Vote: opinion.VoteDisagree},
		{Participant: "p2", Statement: 2, Vote: opinion.VotePass},
	}, records)
}

func TestVotesForParticipants_Empty(t *testing.T) {
	store := NewVoteStore(setupDB(t))

	records, err := store.VotesForParticipants(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestVotesForParticipants_SkipsMalformedRows(t *testing.T) {
	db := setupDB(t)
	_, err := db.Exec(`INSERT INTO votes (participant_id, comment_id, vote) VALUES
		('p1', '3', 1), ('p1', 'abc', 1), ('p1', '5', 9), ('p1', '6.0', -1)`)
	require.NoError(t, err)

	records, err := NewVoteStore(db).VotesForParticipants(context.Background(), []core.ParticipantID{"p1"})
	require.NoError(t, err)

	assert.ElementsMatch(t, []opinion.VoteRecord{
		{Participant: "p1", Statement: 3, Vote: opinion.VoteAgree},
		{Participant: "p1", Statement: 6, Vote: opinion.VoteDisagree},
	}, records)
}

func TestVotesForParticipant_SortedByStatement(t *testing.T) {
	db := setupDB(t)
	seed(t, db)

	records, err := NewVoteStore(db).VotesForParticipant(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, core.StatementID(2), records[0].Statement)
	assert.Equal(t, core.StatementID(4), records[1].Statement)
}

func TestCountVotes(t *testing.T) {
	db := setupDB(t)
	seed(t, db)
	store := NewVoteStore(db)

	n, err := store.CountVotes(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.CountVotes(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestVotesForParticipants_MissingTable(t *testing.T) {
	db, err := Open(context.Background(), "sqlite3", ":memory:")
	require.NoError(t, err)
	defer db.Close()

	_, err = NewVoteStore(db).VotesForParticipants(context.Background(), []core.ParticipantID{"p1"})
	require.Error(t, err)
}
