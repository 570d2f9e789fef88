package ports

import (
	"context"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// VoteStore answers batched vote lookups in canonical form
type VoteStore interface {
	// VotesForParticipants returns every vote cast by any of the given participants.
	// Participants without votes contribute no rows.
	VotesForParticipants(ctx context.Context, participants []core.ParticipantID) ([]opinion.VoteRecord, error)
}

// ParticipantVoteReader serves single-participant lookups for participant profiles
type ParticipantVoteReader interface {
	VotesForParticipant(ctx context.Context, participant core.ParticipantID) ([]opinion.VoteRecord, error)
	CountVotes(ctx context.Context, participant core.ParticipantID) (int, error)
}

// VoteRepository is a store that serves both lookups
type VoteRepository interface {
	VoteStore
	ParticipantVoteReader
}
