// Package votematrix turns a participant-to-group assignment into one sparse vote
// matrix per group, issuing a single batched vote lookup per group.
package votematrix

import (
	"context"
	"time"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal"
	"opinionmap/internal/errors"
	"opinionmap/ports"

	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency bounds simultaneous group lookups
const DefaultConcurrency = 4

// Assignment is the painting state: participants with a parallel label per participant.
// A nil label means the participant is not in any group.
type Assignment struct {
	Participants []core.ParticipantID
	Labels       []*opinion.GroupLabel
	// Groups optionally declares groups (and their display order) up front,
	// including groups that currently have no members.
	Groups []opinion.Group
}

// Extraction is the output of one extraction pass
type Extraction struct {
	Groups   []opinion.Group
	Members  map[opinion.GroupLabel][]core.ParticipantID
	Matrices map[opinion.GroupLabel]opinion.GroupVoteMatrix
}

// MemberCount returns how many participants are assigned to label
func (e *Extraction) MemberCount(label opinion.GroupLabel) int {
	return len(e.Members[label])
}

// NonEmptyGroups counts groups with at least one member
func (e *Extraction) NonEmptyGroups() int {
	n := 0
	for _, g := range e.Groups {
		if len(e.Members[g.Label]) > 0 {
			n++
		}
	}
	return n
}

// Extractor builds per-group vote matrices from a vote store
type Extractor struct {
	store       ports.VoteStore
	concurrency int
	metrics     ports.AnalysisMetrics
	logger      *internal.Logger
}

// Option configures an Extractor
type Option func(*Extractor)

// WithConcurrency sets how many group lookups may run at once
func WithConcurrency(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithMetrics records lookup sizes and durations
func WithMetrics(m ports.AnalysisMetrics) Option {
	return func(e *Extractor) {
		if m != nil {
			e.metrics = m
		}
	}
}

// WithLogger overrides the default logger
func WithLogger(l *internal.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l.WithPrefix("Extractor")
		}
	}
}

// NewExtractor creates an extractor reading from store
func NewExtractor(store ports.VoteStore, opts ...Option) *Extractor {
	e := &Extractor{
		store:       store,
		concurrency: DefaultConcurrency,
		metrics:     ports.NoopMetrics{},
		logger:      internal.DefaultLogger.WithPrefix("Extractor"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GroupParticipants groups participants by label in a single pass.
// Declared groups come first in their given order; new labels follow in order of first appearance.
// Surplus labels beyond the participant list and empty participant IDs are skipped.
func GroupParticipants(a Assignment) ([]opinion.Group, map[opinion.GroupLabel][]core.ParticipantID) {
	var groups []opinion.Group
	members := make(map[opinion.GroupLabel][]core.ParticipantID)
	known := make(map[opinion.GroupLabel]bool)

	nextIndex := 0
	for _, g := range a.Groups {
		if known[g.Label] {
			continue
		}
		known[g.Label] = true
		groups = append(groups, g)
		if g.Index >= nextIndex {
			nextIndex = g.Index + 1
		}
	}

	for i, label := range a.Labels {
		if label == nil || i >= len(a.Participants) {
			continue
		}
		pid := a.Participants[i]
		if pid.IsEmpty() {
			continue
		}
		if !known[*label] {
			known[*label] = true
			groups = append(groups, opinion.Group{Label: *label, Index: nextIndex})
			nextIndex++
		}
		members[*label] = append(members[*label], pid)
	}

	return groups, members
}

// LabelsWithUnpainted maps unlabelled participants to the unpainted pseudo-group when include is set
func LabelsWithUnpainted(labels []*opinion.GroupLabel, participants int, include bool) []*opinion.GroupLabel {
	n := len(labels)
	if include && participants > n {
		n = participants
	}
	out := make([]*opinion.GroupLabel, n)
	unpainted := opinion.UnpaintedLabel
	for i := 0; i < n; i++ {
		var label *opinion.GroupLabel
		if i < len(labels) {
			label = labels[i]
		}
		if label == nil && include {
			label = &unpainted
		}
		out[i] = label
	}
	return out
}

// Extract performs one batched lookup per non-empty group and assembles the matrices.
// All lookups complete before Extract returns.
func (e *Extractor) Extract(ctx context.Context, a Assignment) (*Extraction, error) {
	groups, members := GroupParticipants(a)

	matrices := make([]opinion.GroupVoteMatrix, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, group := range groups {
		i, group := i, group
		pids := members[group.Label]
		if len(pids) == 0 {
			matrices[i] = opinion.GroupVoteMatrix{}
			continue
		}
		g.Go(func() error {
			start := time.Now()
			records, err := e.store.VotesForParticipants(gctx, pids)
			if err != nil {
				return errors.WithCode(errors.CodeDatabaseError,
					errors.Wrapf(err, "vote lookup failed for group %s", group.Label))
			}
			e.metrics.RecordVoteLookup(group.Letter(), len(records), time.Since(start))
			e.logger.Debug("group %s: %d members, %d votes in %s", group.Label, len(pids), len(records), time.Since(start))
			matrices[i] = BuildMatrix(pids, records)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Extraction{
		Groups:   groups,
		Members:  members,
		Matrices: make(map[opinion.GroupLabel]opinion.GroupVoteMatrix, len(groups)),
	}
	for i, group := range groups {
		out.Matrices[group.Label] = matrices[i]
	}
	return out, nil
}

// BuildMatrix assembles a matrix from canonical vote rows, ignoring rows of non-members.
// Statement IDs without metadata are kept.
func BuildMatrix(members []core.ParticipantID, records []opinion.VoteRecord) opinion.GroupVoteMatrix {
	allowed := make(map[core.ParticipantID]bool, len(members))
	for _, pid := range members {
		allowed[pid] = true
	}

	matrix := make(opinion.GroupVoteMatrix)
	for _, r := range records {
		if !allowed[r.Participant] {
			continue
		}
		row, ok := matrix[r.Participant]
		if !ok {
			row = make(map[core.StatementID]opinion.Vote)
			matrix[r.Participant] = row
		}
		row[r.Statement] = r.Vote
	}
	return matrix
}
