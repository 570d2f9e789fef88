// Package testkit provides in-memory fakes and deterministic fixtures for tests
package testkit

import (
	"context"
	"sort"
	"strconv"
	"sync"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
)

// Matrix builds a group vote matrix from participant -> statement -> raw vote literals
func Matrix(rows map[string]map[int]int) opinion.GroupVoteMatrix {
	m := make(opinion.GroupVoteMatrix, len(rows))
	for pid, votes := range rows {
		row := make(map[core.StatementID]opinion.Vote, len(votes))
		for tid, v := range votes {
			row[core.StatementID(tid)] = opinion.Vote(v)
		}
		m[core.ParticipantID(pid)] = row
	}
	return m
}

// UniformGroup builds a matrix where participants prefix1..prefixN all cast the given votes
func UniformGroup(prefix string, members int, votes map[int]int) opinion.GroupVoteMatrix {
	rows := make(map[string]map[int]int, members)
	for i := 1; i <= members; i++ {
		rows[participantName(prefix, i)] = votes
	}
	return Matrix(rows)
}

func participantName(prefix string, i int) string {
	return prefix + strconv.Itoa(i)
}

// MemoryVoteStore is a concurrency-safe in-memory vote store
type MemoryVoteStore struct {
	mu      sync.RWMutex
	votes   map[core.ParticipantID]map[core.StatementID]opinion.Vote
	lookups [][]core.ParticipantID
	err     error
}

// NewMemoryVoteStore creates an empty store
func NewMemoryVoteStore() *MemoryVoteStore {
	return &MemoryVoteStore{votes: make(map[core.ParticipantID]map[core.StatementID]opinion.Vote)}
}

// NewMemoryVoteStoreFromMatrices loads every row of the given matrices
func NewMemoryVoteStoreFromMatrices(matrices ...opinion.GroupVoteMatrix) *MemoryVoteStore {
	s := NewMemoryVoteStore()
	for _, m := range matrices {
		for pid, row := range m {
			for tid, v := range row {
				s.Add(pid, tid, v)
			}
		}
	}
	return s
}

// Add records one vote, replacing any earlier vote of the same pair
func (s *MemoryVoteStore) Add(pid core.ParticipantID, tid core.StatementID, v opinion.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.votes[pid]
	if !ok {
		row = make(map[core.StatementID]opinion.Vote)
		s.votes[pid] = row
	}
	row[tid] = v
}

// FailWith makes every subsequent lookup return err
func (s *MemoryVoteStore) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Lookups returns the participant batches requested so far
func (s *MemoryVoteStore) Lookups() [][]core.ParticipantID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([][]core.ParticipantID, len(s.lookups))
	copy(out, s.lookups)
	return out
}

// VotesForParticipants implements ports.VoteStore. Rows come back sorted for determinism.
func (s *MemoryVoteStore) VotesForParticipants(ctx context.Context, participants []core.ParticipantID) ([]opinion.VoteRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	batch := make([]core.ParticipantID, len(participants))
	copy(batch, participants)
	s.lookups = append(s.lookups, batch)
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []opinion.VoteRecord
	for _, pid := range participants {
		for tid, v := range s.votes[pid] {
			records = append(records, opinion.VoteRecord{Participant: pid, Statement: tid, Vote: v})
		}
	}
	sortRecords(records)
	return records, nil
}

// VotesForParticipant implements ports.ParticipantVoteReader
func (s *MemoryVoteStore) VotesForParticipant(ctx context.Context, participant core.ParticipantID) ([]opinion.VoteRecord, error) {
	return s.VotesForParticipants(ctx, []core.ParticipantID{participant})
}

// CountVotes implements ports.ParticipantVoteReader
func (s *MemoryVoteStore) CountVotes(ctx context.Context, participant core.ParticipantID) (int, error) {
	records, err := s.VotesForParticipant(ctx, participant)
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// Records returns every stored vote sorted by participant then statement
func (s *MemoryVoteStore) Records() []opinion.VoteRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var records []opinion.VoteRecord
	for pid, row := range s.votes {
		for tid, v := range row {
			records = append(records, opinion.VoteRecord{Participant: pid, Statement: tid, Vote: v})
		}
	}
	sortRecords(records)
	return records
}

func sortRecords(records []opinion.VoteRecord) {
	sort.Slice(records, func(i, j int) bool {
		if records[i].Participant != records[j].Participant {
			return records[i].Participant < records[j].Participant
		}
		return records[i].Statement < records[j].Statement
	})
}

// MemoryStatementSource serves a fixed statement list
type MemoryStatementSource struct {
	Statements []opinion.Statement
	Err        error
}

// LoadStatements implements ports.StatementSource
func (s *MemoryStatementSource) LoadStatements(ctx context.Context) ([]opinion.Statement, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]opinion.Statement, len(s.Statements))
	copy(out, s.Statements)
	return out, nil
}
