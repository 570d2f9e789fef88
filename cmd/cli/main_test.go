package main

import (
	"os"
	"path/filepath"
	"testing"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/config"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLabels_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"participants": ["p1", "p2", "p3"], "labels": ["#1f77b4", null, ""]}`), 0o644))

	a, err := loadLabels(path)
	require.NoError(t, err)

	assert.Equal(t, []core.ParticipantID{"p1", "p2", "p3"}, a.Participants)
	require.Len(t, a.Labels, 3)
	assert.Equal(t, opinion.GroupLabel("#1f77b4"), *a.Labels[0])
	assert.Nil(t, a.Labels[1])
	assert.Nil(t, a.Labels[2])
}

func TestLoadLabels_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	require.NoError(t, os.WriteFile(path, []byte("pid,color\np1,red\n"), 0o644))

	a, err := loadLabels(path)
	require.NoError(t, err)
	assert.Equal(t, []core.ParticipantID{"p1"}, a.Participants)
}

func TestLoadLabels_Errors(t *testing.T) {
	_, err := loadLabels(filepath.Join(t.TempDir(), "absent.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`[1, 2]`), 0o644))
	_, err = loadLabels(path)
	assert.Error(t, err)
}

func TestDataFlags_Apply(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	var flags dataFlags
	flags.register(cmd)
	require.NoError(t, cmd.Flags().Set("votes", "other.db"))
	require.NoError(t, cmd.Flags().Set("driver", "postgres"))

	cfg := &config.Config{}
	cfg.Votes.DSN = "votes.db"
	cfg.Statements.File = "statements.json"
	flags.apply(cfg)

	assert.Equal(t, "other.db", cfg.Votes.DSN)
	assert.Equal(t, "postgres", cfg.Votes.Driver)
	assert.Equal(t, "statements.json", cfg.Statements.File)
}
