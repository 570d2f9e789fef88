package votestore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal"
	"opinionmap/internal/errors"
	"opinionmap/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// maxBatch keeps IN lists under the bind variable limits of sqlite and postgres
const maxBatch = 30000

// voteRow mirrors one row of the votes table
type voteRow struct {
	ParticipantID string `db:"participant_id"`
	CommentID     string `db:"comment_id"`
	Vote          int    `db:"vote"`
}

// voteStore implements ports.VoteRepository over a sqlx connection
type voteStore struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// Open connects to the vote database. driver is "sqlite3" or "postgres".
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrapf(err, "failed to open %s vote database", driver))
	}
	if driver == "sqlite3" {
		// each connection to :memory: would open a separate database
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewVoteStore creates a vote repository backed by db
func NewVoteStore(db *sqlx.DB) ports.VoteRepository {
	return &voteStore{
		db:     db,
		logger: internal.DefaultLogger.WithPrefix("VoteStore"),
	}
}

// VotesForParticipants returns every vote of the given participants in one query per batch
func (s *voteStore) VotesForParticipants(ctx context.Context, participants []core.ParticipantID) ([]opinion.VoteRecord, error) {
	if len(participants) == 0 {
		return nil, nil
	}

	start := time.Now()
	var records []opinion.VoteRecord
	for lo := 0; lo < len(participants); lo += maxBatch {
		hi := lo + maxBatch
		if hi > len(participants) {
			hi = len(participants)
		}
		batch, err := s.queryBatch(ctx, participants[lo:hi])
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}

	s.logger.Debug("%d participants -> %d votes in %s", len(participants), len(records), time.Since(start))
	return records, nil
}

func (s *voteStore) queryBatch(ctx context.Context, participants []core.ParticipantID) ([]opinion.VoteRecord, error) {
	ids := make([]string, len(participants))
	for i, pid := range participants {
		ids[i] = string(pid)
	}

	query, args, err := sqlx.In(`SELECT participant_id, comment_id, vote FROM votes WHERE participant_id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build vote query")
	}
	query = s.db.Rebind(query)

	var rows []voteRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to query votes"))
	}

	return s.canonicalize(rows), nil
}

// canonicalize converts stored rows, dropping rows whose statement ID or vote value is malformed
func (s *voteStore) canonicalize(rows []voteRow) []opinion.VoteRecord {
	records := make([]opinion.VoteRecord, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		tid, err := core.ParseStatementID(row.CommentID)
		if err != nil {
			skipped++
			continue
		}
		vote, ok := opinion.ParseVote(row.Vote)
		if !ok {
			skipped++
			continue
		}
		records = append(records, opinion.VoteRecord{
			Participant: core.ParticipantID(row.ParticipantID),
			Statement:   tid,
			Vote:        vote,
		})
	}
	if skipped > 0 {
		s.logger.Warn("skipped %d malformed vote rows", skipped)
	}
	return records
}

// VotesForParticipant returns one participant's votes ordered by statement
func (s *voteStore) VotesForParticipant(ctx context.Context, participant core.ParticipantID) ([]opinion.VoteRecord, error) {
	var rows []voteRow
	query := s.db.Rebind(`SELECT participant_id, comment_id, vote FROM votes WHERE participant_id = ?`)
	if err := s.db.SelectContext(ctx, &rows, query, string(participant)); err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrapf(err, "failed to query votes of participant %s", participant))
	}

	records := s.canonicalize(rows)
	sortByStatement(records)
	return records, nil
}

// CountVotes returns how many votes a participant cast
func (s *voteStore) CountVotes(ctx context.Context, participant core.ParticipantID) (int, error) {
	var n int
	query := s.db.Rebind(`SELECT COUNT(*) FROM votes WHERE participant_id = ?`)
	if err := s.db.GetContext(ctx, &n, query, string(participant)); err != nil {
		return 0, errors.WithCode(errors.CodeDatabaseError,
			errors.Wrapf(err, "failed to count votes of participant %s", participant))
	}
	return n, nil
}

// InsertVotes writes canonical votes, used by the import command and tests
func InsertVotes(ctx context.Context, db *sqlx.DB, records []opinion.VoteRecord) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to begin transaction"))
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO votes (participant_id, comment_id, vote) VALUES (?, ?, ?)`))
	if err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to prepare insert"))
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, string(r.Participant), fmt.Sprint(int(r.Statement)), int(r.Vote)); err != nil {
			return errors.WithCode(errors.CodeDatabaseError,
				errors.Wrapf(err, "failed to insert vote %s/%d", r.Participant, r.Statement))
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to commit votes"))
	}
	return nil
}

func sortByStatement(records []opinion.VoteRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].Statement < records[j].Statement
	})
}
