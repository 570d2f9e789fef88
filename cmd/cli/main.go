package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"opinionmap/adapters/excel"
	"opinionmap/app"
	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal/config"
	"opinionmap/internal/container"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "opinionmap",
		Short: "Find the statements that represent each painted group of participants",
	}

	rootCmd.AddCommand(
		newAnalyzeCmd(),
		newParticipantCmd(),
		newServeCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// dataFlags are the input overrides shared by every command
type dataFlags struct {
	votes      string
	driver     string
	statements string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.votes, "votes", "", "Vote database DSN (overrides VOTES_DSN)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "Vote database driver: sqlite3 or postgres (overrides VOTES_DRIVER)")
	cmd.Flags().StringVar(&f.statements, "statements", "", "statements.json path (overrides STATEMENTS_FILE)")
}

func (f *dataFlags) apply(cfg *config.Config) {
	if f.votes != "" {
		cfg.Votes.DSN = f.votes
	}
	if f.driver != "" {
		cfg.Votes.Driver = f.driver
	}
	if f.statements != "" {
		cfg.Statements.File = f.statements
	}
}

func openContainer(ctx context.Context, flags *dataFlags) (*container.Container, error) {
	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	flags.apply(cfg)

	c, err := container.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.InitWithDatabase(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func newAnalyzeCmd() *cobra.Command {
	var (
		flags            dataFlags
		labelsPath       string
		xlsxPath         string
		includeUnpainted bool
		includeModerated bool
		includeMatrices  bool
		allowSingle      bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Compute representative statements for a painting state",
		Long: `Compute representative statements for every group in a labels file.

The labels file is JSON ({"participants": [...], "labels": [...]}, null for unpainted
participants) or a CSV/XLSX sheet with participant_id and label columns.

Example: opinionmap analyze --votes votes.db --statements statements.json --labels labels.json --xlsx report.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			assignment, err := loadLabels(labelsPath)
			if err != nil {
				return err
			}

			c, err := openContainer(ctx, &flags)
			if err != nil {
				return err
			}
			defer c.Close()

			req := app.AnalysisRequest{
				Participants:     assignment.Participants,
				Labels:           assignment.Labels,
				IncludeUnpainted: includeUnpainted,
				IncludeMatrices:  includeMatrices,
				AllowSingleGroup: allowSingle,
			}
			if includeModerated {
				settings := c.Config.Analysis.Repness
				settings.IncludeModerated = true
				req.Settings = &settings
			}

			report, err := c.Analysis.Analyze(ctx, req)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := app.SaveWorkbook(report, xlsxPath); err != nil {
					return err
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&labelsPath, "labels", "", "Labels file (.json, .csv or .xlsx)")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "Also write the report to this workbook")
	cmd.Flags().BoolVar(&includeUnpainted, "include-unpainted", false, "Treat unpainted participants as a group")
	cmd.Flags().BoolVar(&includeModerated, "include-moderated", false, "Score statements removed by moderation")
	cmd.Flags().BoolVar(&includeMatrices, "include-matrices", false, "Include the raw group vote matrices in the output")
	cmd.Flags().BoolVar(&allowSingle, "allow-single-group", false, "Analyze even when fewer than two groups have members")
	_ = cmd.MarkFlagRequired("labels")

	return cmd
}

func newParticipantCmd() *cobra.Command {
	var flags dataFlags

	cmd := &cobra.Command{
		Use:   "participant [participant-id]",
		Short: "Print a participant's votes and participation scale",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pid, err := core.ParseParticipantID(args[0])
			if err != nil {
				return err
			}

			c, err := openContainer(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			defer c.Close()

			profile, err := c.Participants.Profile(cmd.Context(), pid)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "participant %s: %d votes, participation %.2f\n", profile.Participant, profile.Votes, profile.Scale)
			if len(profile.Lines) > 0 {
				fmt.Fprintln(out, app.FormatSummary(profile.Lines))
			}
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}

func newServeCmd() *cobra.Command {
	var (
		flags dataFlags
		port  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openContainer(cmd.Context(), &flags)
			if err != nil {
				return err
			}
			defer c.Close()

			if port == "" {
				port = c.Config.Server.Port
			}
			gin.SetMode(c.Config.Server.GinMode)
			return c.APIServer().Run(":" + port)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}

// labelsFile is the JSON painting state
type labelsFile struct {
	Participants []string  `json:"participants"`
	Labels       []*string `json:"labels"`
}

func loadLabels(path string) (*excel.LabelAssignment, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".xlsx":
		return excel.NewDataReader(path).ReadAssignment()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read labels: %w", err)
	}
	var raw labelsFile
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse labels %s: %w", path, err)
	}

	out := &excel.LabelAssignment{}
	for _, p := range raw.Participants {
		out.Participants = append(out.Participants, core.ParticipantID(p))
	}
	for _, l := range raw.Labels {
		if l == nil || *l == "" {
			out.Labels = append(out.Labels, nil)
			continue
		}
		label := opinion.GroupLabel(*l)
		out.Labels = append(out.Labels, &label)
	}
	return out, nil
}
