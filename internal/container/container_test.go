package container

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"opinionmap/adapters/db/votestore"
	"opinionmap/app"
	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/config"
	"opinionmap/internal/repness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "statements.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"tid": 1, "txt": "Fund parks"}, {"tid": 2, "txt": "Build roads"}]`), 0o644))

	return &config.Config{
		Votes:      config.VotesConfig{Driver: "sqlite3", DSN: ":memory:"},
		Statements: config.StatementsConfig{File: path},
		Server:     config.ServerConfig{Port: "0", GinMode: "test"},
		Analysis: config.AnalysisConfig{
			Repness:            repness.DefaultSettings(),
			ExtractConcurrency: 2,
		},
		LogLevel: "ERROR",
	}
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestContainer_EndToEndOnSQLite(t *testing.T) {
	ctx := context.Background()
	c, err := New(testConfig(t))
	require.NoError(t, err)
	require.NoError(t, c.InitWithDatabase(ctx))
	defer c.Close()
	require.NoError(t, c.Migrate(ctx))

	var records []opinion.VoteRecord
	var req app.AnalysisRequest
	for i, pid := range []core.ParticipantID{"r1", "r2", "r3", "r4", "b1", "b2", "b3", "b4"} {
		vote, label := opinion.VoteAgree, opinion.GroupLabel("red")
		if i >= 4 {
			vote, label = opinion.VoteDisagree, opinion.GroupLabel("blue")
		}
		records = append(records, opinion.VoteRecord{Participant: pid, Statement: 1, Vote: vote})
		req.Participants = append(req.Participants, pid)
		req.Labels = append(req.Labels, &label)
	}
	require.NoError(t, votestore.InsertVotes(ctx, c.DB, records))

	report, err := c.Runs.Submit(ctx, req)
	require.NoError(t, err)
	require.Len(t, report.Groups, 2)
	assert.Equal(t, 2, report.Summary.Statements)

	red := report.Result.For("red")
	require.NotEmpty(t, red)
	assert.Equal(t, core.StatementID(1), red[0].TID)
	assert.Equal(t, opinion.DirectionAgree, red[0].RepfulFor)

	lines, err := c.Participants.Summary(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, []string{"#1 - disagree: Fund parks"}, lines)

	assert.NotNil(t, c.APIServer().Handler())
}
