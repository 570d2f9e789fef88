package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"opinionmap/adapters/db/votestore"
	"opinionmap/app"
	"opinionmap/internal/migration"
	"opinionmap/internal/testkit"
	"opinionmap/internal/votematrix"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opinionmap-dev",
		Short: "opinionmap development tools",
	}

	rootCmd.AddCommand(
		newSeedCmd(),
		newSmokeTestCmd(),
		newDeterminismTestCmd(),
		newMigrateCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newSeedCmd() *cobra.Command {
	var (
		dir    string
		config = testkit.DefaultConversationConfig()
	)

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Generate a synthetic conversation: votes.db, statements.json and labels.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			return generateSeedData(cmd.Context(), dir, config)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Output directory")
	cmd.Flags().IntVar(&config.GroupCount, "groups", config.GroupCount, "Number of groups")
	cmd.Flags().IntVar(&config.ParticipantsPerGroup, "participants", config.ParticipantsPerGroup, "Participants per group")
	cmd.Flags().IntVar(&config.StatementCount, "statements", config.StatementCount, "Number of statements")
	cmd.Flags().IntVar(&config.RemovedEvery, "removed-every", 10, "Moderate out every Nth statement (0 disables)")
	cmd.Flags().Int64Var(&config.Seed, "seed", config.Seed, "Random seed")
	return cmd
}

func newSmokeTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Run smoke tests",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSmokeTests(cmd.Context())
		},
	}
	return cmd
}

func newDeterminismTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "determinism [seed]",
		Short: "Analyze the same generated conversation twice and compare fingerprints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid seed %q: %w", args[0], err)
			}
			return testDeterminism(cmd.Context(), seed)
		},
	}
	return cmd
}

func generateSeedData(ctx context.Context, dir string, config testkit.ConversationGeneratorConfig) error {
	fmt.Println("Generating seed data...")

	conv := testkit.NewConversationGenerator(config).Generate()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "votes.db")
	db, err := votestore.Open(ctx, "sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return err
	}
	records := conv.Store.Records()
	if err := votestore.InsertVotes(ctx, db, records); err != nil {
		return err
	}
	fmt.Printf("Wrote %d votes to %s\n", len(records), dbPath)

	statements := make([]map[string]any, 0, len(conv.Statements))
	for _, s := range conv.Statements {
		mod := 1
		if s.IsRemoved() {
			mod = -1
		}
		statements = append(statements, map[string]any{"tid": int(s.TID), "txt": s.Text, "mod": mod})
	}
	if err := writeJSON(filepath.Join(dir, "statements.json"), statements); err != nil {
		return err
	}

	labels := map[string]any{"participants": conv.Participants, "labels": conv.Labels}
	if err := writeJSON(filepath.Join(dir, "labels.json"), labels); err != nil {
		return err
	}

	fmt.Printf("Seed data generation completed: %d participants, %d statements, %d groups\n",
		len(conv.Participants), len(conv.Statements), len(conv.Groups()))
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// analyzeConversation runs the full analysis over an in-memory conversation
func analyzeConversation(ctx context.Context, conv *testkit.Conversation) (*app.AnalysisReport, error) {
	extractor := votematrix.NewExtractor(conv.Store)
	service := app.NewAnalysisService(extractor, &testkit.MemoryStatementSource{Statements: conv.Statements})
	return service.Analyze(ctx, app.AnalysisRequest{
		Participants: conv.Participants,
		Labels:       conv.Labels,
	})
}

func runSmokeTests(ctx context.Context) error {
	fmt.Println("Running smoke tests...")

	tests := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"generate", func(ctx context.Context) error {
			conv := testkit.NewConversationGenerator(testkit.DefaultConversationConfig()).Generate()
			if len(conv.Store.Records()) == 0 {
				return fmt.Errorf("no votes generated")
			}
			return nil
		}},
		{"analyze", func(ctx context.Context) error {
			conv := testkit.NewConversationGenerator(testkit.DefaultConversationConfig()).Generate()
			report, err := analyzeConversation(ctx, conv)
			if err != nil {
				return err
			}
			if len(report.Result.Groups) != len(conv.Groups()) {
				return fmt.Errorf("expected %d groups in result, got %d", len(conv.Groups()), len(report.Result.Groups))
			}
			return nil
		}},
		{"single_group_rejected", func(ctx context.Context) error {
			config := testkit.DefaultConversationConfig()
			config.GroupCount = 1
			conv := testkit.NewConversationGenerator(config).Generate()
			if _, err := analyzeConversation(ctx, conv); err == nil {
				return fmt.Errorf("expected a single group to be rejected")
			}
			return nil
		}},
	}

	passed := 0
	for _, test := range tests {
		fmt.Printf("  Running %s...", test.name)
		if err := test.fn(ctx); err != nil {
			fmt.Printf(" FAILED: %v\n", err)
		} else {
			fmt.Println(" PASSED")
			passed++
		}
	}

	fmt.Printf("\nSmoke tests: %d/%d passed\n", passed, len(tests))
	if passed < len(tests) {
		return fmt.Errorf("some smoke tests failed")
	}

	return nil
}

func testDeterminism(ctx context.Context, seed int64) error {
	fmt.Printf("Testing determinism for seed %d...\n", seed)

	config := testkit.DefaultConversationConfig()
	config.Seed = seed

	original, err := analyzeConversation(ctx, testkit.NewConversationGenerator(config).Generate())
	if err != nil {
		return fmt.Errorf("failed to run original analysis: %w", err)
	}

	fmt.Println("Re-running on a regenerated conversation...")
	replay, err := analyzeConversation(ctx, testkit.NewConversationGenerator(config).Generate())
	if err != nil {
		return fmt.Errorf("failed to replay analysis: %w", err)
	}

	if err := compareRuns(original, replay); err != nil {
		return fmt.Errorf("determinism test failed: %w", err)
	}

	fmt.Printf("Determinism test passed - fingerprint %s\n", original.Fingerprint)
	return nil
}

func compareRuns(original, replay *app.AnalysisReport) error {
	if original.Fingerprint != replay.Fingerprint {
		return fmt.Errorf("fingerprints differ")
	}

	if len(original.Result.Groups) != len(replay.Result.Groups) {
		return fmt.Errorf("group counts differ: %d vs %d", len(original.Result.Groups), len(replay.Result.Groups))
	}

	for gi, group := range original.Result.Groups {
		label := group.Group.Label
		reps, other := group.Statements, replay.Result.Groups[gi].Statements
		if len(reps) != len(other) {
			return fmt.Errorf("group %s selection sizes differ: %d vs %d", label, len(reps), len(other))
		}
		for i := range reps {
			if reps[i].TID != other[i].TID {
				return fmt.Errorf("group %s entry %d differs: %d vs %d", label, i, reps[i].TID, other[i].TID)
			}
		}
	}

	return nil
}

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate [driver] [dsn]",
		Short: "Create the votes schema",
		Long: `Create the votes table and its participant index.

Example: opinionmap-dev migrate sqlite3 ./votes.db`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), args[0], args[1])
		},
	}
	return cmd
}

func runMigrations(ctx context.Context, driver, dsn string) error {
	db, err := votestore.Open(ctx, driver, dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	runner := migration.NewRunner()
	fmt.Printf("Running migrations (schema %s) on %s\n", runner.Version(), driver)
	return runner.Run(ctx, db)
}
