package container

import (
	"context"
	"fmt"

	"opinionmap/adapters/db/votestore"
	"opinionmap/adapters/statements"
	"opinionmap/app"
	"opinionmap/internal"
	"opinionmap/internal/api"
	"opinionmap/internal/config"
	"opinionmap/internal/metrics"
	"opinionmap/internal/migration"
	"opinionmap/internal/votematrix"
	"opinionmap/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	Metrics *metrics.PrometheusMetrics

	// Data access
	Votes      ports.VoteRepository
	Statements ports.StatementSource

	// Services
	Extractor    *votematrix.Extractor
	Analysis     *app.AnalysisService
	Participants *app.ParticipantService
	Runs         *app.RunCoordinator
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	internal.DefaultLogger.SetLevel(internal.ParseLogLevel(cfg.LogLevel))

	return &Container{
		Config:  cfg,
		Metrics: metrics.NewPrometheusMetrics(),
	}, nil
}

// InitWithDatabase opens the vote database and wires every service on top of it
func (c *Container) InitWithDatabase(ctx context.Context) error {
	db, err := votestore.Open(ctx, c.Config.Votes.Driver, c.Config.Votes.DSN)
	if err != nil {
		return err
	}
	return c.InitWithDB(db)
}

// InitWithDB wires the services on an already open connection
func (c *Container) InitWithDB(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	c.Votes = votestore.NewVoteStore(db)
	c.Statements = statements.NewJSONSource(c.Config.Statements.File)

	analysis := c.Config.Analysis
	c.Extractor = votematrix.NewExtractor(c.Votes,
		votematrix.WithConcurrency(analysis.ExtractConcurrency),
		votematrix.WithMetrics(c.Metrics),
	)
	c.Analysis = app.NewAnalysisService(c.Extractor, c.Statements,
		app.WithSettings(analysis.Repness),
		app.WithUnpaintedDefault(analysis.IncludeUnpainted),
		app.WithAnalysisMetrics(c.Metrics),
	)
	c.Participants = app.NewParticipantService(c.Votes, c.Statements)
	c.Runs = app.NewRunCoordinator(c.Analysis, c.Metrics)

	return nil
}

// Migrate creates the vote schema if it does not exist
func (c *Container) Migrate(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("database not initialized")
	}
	return migration.NewRunner().Run(ctx, c.DB)
}

// APIServer builds the HTTP server over the wired services
func (c *Container) APIServer() *api.Server {
	return api.NewServer(c.Runs, c.Participants, c.Metrics.Handler())
}

// Close releases the database connection
func (c *Container) Close() error {
	if c.Runs != nil {
		c.Runs.Cancel()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
