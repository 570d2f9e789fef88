package app

import (
	"context"
	"fmt"
	"strings"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/errors"
	"opinionmap/ports"
)

// Bounds of the participation scale
const (
	MinParticipationScale = 0.1
	MaxParticipationScale = 1.0
)

// ParticipantProfile summarizes one participant's voting
type ParticipantProfile struct {
	Participant core.ParticipantID `json:"participant"`
	Votes       int                `json:"votes"`
	Lines       []string           `json:"lines"`
	Scale       float64            `json:"scale"`
}

// ParticipantService answers per-participant questions from the vote store
type ParticipantService struct {
	votes      ports.ParticipantVoteReader
	statements ports.StatementSource
}

// NewParticipantService creates the service. statements may be nil.
func NewParticipantService(votes ports.ParticipantVoteReader, statements ports.StatementSource) *ParticipantService {
	return &ParticipantService{votes: votes, statements: statements}
}

// Summary returns one line per vote: "#<tid> - agree|disagree|pass: <text>"
func (s *ParticipantService) Summary(ctx context.Context, pid core.ParticipantID) ([]string, error) {
	records, err := s.votes.VotesForParticipant(ctx, pid)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load votes of %s", pid)
	}

	statements, err := s.loadStatements(ctx)
	if err != nil {
		return nil, err
	}
	texts := make(map[core.StatementID]string, len(statements))
	for _, st := range statements {
		texts[st.TID] = st.DisplayText()
	}

	lines := make([]string, 0, len(records))
	for _, r := range records {
		text, ok := texts[r.Statement]
		if !ok {
			text = opinion.MissingText
		}
		lines = append(lines, fmt.Sprintf("#%d - %s: %s", r.Statement, r.Vote, text))
	}
	return lines, nil
}

// ParticipationScale is votes cast over statements not removed by moderation, clamped to [0.1, 1].
// It is 1 when no statement metadata is available.
func (s *ParticipantService) ParticipationScale(ctx context.Context, pid core.ParticipantID) (float64, error) {
	statements, err := s.loadStatements(ctx)
	if err != nil {
		return 0, err
	}
	return s.scale(ctx, pid, statements)
}

// Profile combines the summary and the participation scale
func (s *ParticipantService) Profile(ctx context.Context, pid core.ParticipantID) (*ParticipantProfile, error) {
	lines, err := s.Summary(ctx, pid)
	if err != nil {
		return nil, err
	}
	statements, err := s.loadStatements(ctx)
	if err != nil {
		return nil, err
	}
	scale, err := s.scale(ctx, pid, statements)
	if err != nil {
		return nil, err
	}
	return &ParticipantProfile{
		Participant: pid,
		Votes:       len(lines),
		Lines:       lines,
		Scale:       scale,
	}, nil
}

// FormatSummary joins summary lines the way they are printed
func FormatSummary(lines []string) string {
	return strings.Join(lines, "\n")
}

func (s *ParticipantService) scale(ctx context.Context, pid core.ParticipantID, statements []opinion.Statement) (float64, error) {
	eligible := 0
	for _, st := range statements {
		if !st.IsRemoved() {
			eligible++
		}
	}
	if eligible == 0 {
		return MaxParticipationScale, nil
	}

	n, err := s.votes.CountVotes(ctx, pid)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to count votes of %s", pid)
	}

	scale := float64(n) / float64(eligible)
	if scale < MinParticipationScale {
		return MinParticipationScale, nil
	}
	if scale > MaxParticipationScale {
		return MaxParticipationScale, nil
	}
	return scale, nil
}

func (s *ParticipantService) loadStatements(ctx context.Context) ([]opinion.Statement, error) {
	if s.statements == nil {
		return nil, nil
	}
	statements, err := s.statements.LoadStatements(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load statements")
	}
	return statements, nil
}
