package app

import (
	"context"
	"time"

	"opinionmap/domain/core"
	"opinionmap/domain/opinion"
	"opinionmap/internal"
	"opinionmap/internal/errors"
	"opinionmap/internal/repness"
	"opinionmap/internal/votematrix"
	"opinionmap/ports"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// AnalysisRequest is one painting state to analyze
type AnalysisRequest struct {
	Participants []core.ParticipantID  `json:"participants" validate:"required,min=1"`
	Labels       []*opinion.GroupLabel `json:"labels"`
	Groups       []opinion.Group       `json:"groups,omitempty"`
	Settings     *repness.Settings     `json:"settings,omitempty"`

	IncludeUnpainted bool `json:"include_unpainted"`
	AllowSingleGroup bool `json:"allow_single_group"`
	IncludeMatrices  bool `json:"include_matrices"`
}

// GroupSummary describes one group of a run
type GroupSummary struct {
	opinion.Group
	Letter   string `json:"letter"`
	Members  int    `json:"members"`
	Voters   int    `json:"voters"`
	Selected int    `json:"selected"`
}

// AnalysisReport is the published outcome of one run
type AnalysisReport struct {
	RunID       core.RunID             `json:"run_id"`
	GeneratedAt core.Timestamp         `json:"generated_at"`
	Settings    repness.Settings       `json:"settings"`
	Groups      []GroupSummary         `json:"groups"`
	Result      opinion.RepnessResult  `json:"result"`
	Summary     RunSummary             `json:"summary"`
	Fingerprint core.ResultFingerprint `json:"fingerprint"`

	// Matrices is only set when the request asks for it
	Matrices map[opinion.GroupLabel]opinion.GroupVoteMatrix `json:"matrices,omitempty"`

	statements []opinion.Statement
	matrices   map[opinion.GroupLabel]opinion.GroupVoteMatrix
}

// Statements returns the statement metadata the run was computed against
func (r *AnalysisReport) Statements() []opinion.Statement {
	return r.statements
}

// AnalysisService runs the extraction and selection pipeline
type AnalysisService struct {
	extractor  *votematrix.Extractor
	statements ports.StatementSource
	settings   repness.Settings
	unpainted  bool
	metrics    ports.AnalysisMetrics
	logger     *internal.Logger
}

// AnalysisOption configures an AnalysisService
type AnalysisOption func(*AnalysisService)

// WithSettings replaces the default selection settings
func WithSettings(s repness.Settings) AnalysisOption {
	return func(svc *AnalysisService) { svc.settings = s }
}

// WithUnpaintedDefault includes unlabelled participants as a group unless a request says otherwise
func WithUnpaintedDefault(include bool) AnalysisOption {
	return func(svc *AnalysisService) { svc.unpainted = include }
}

// WithAnalysisMetrics records per-group selection sizes
func WithAnalysisMetrics(m ports.AnalysisMetrics) AnalysisOption {
	return func(svc *AnalysisService) {
		if m != nil {
			svc.metrics = m
		}
	}
}

// NewAnalysisService creates the service. statements may be nil, in which case the
// statement universe is inferred from the votes.
func NewAnalysisService(extractor *votematrix.Extractor, statements ports.StatementSource, opts ...AnalysisOption) *AnalysisService {
	svc := &AnalysisService{
		extractor:  extractor,
		statements: statements,
		settings:   repness.DefaultSettings(),
		metrics:    ports.NoopMetrics{},
		logger:     internal.DefaultLogger.WithPrefix("Analysis"),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Analyze computes the representative statements of every group in the request
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisReport, error) {
	start := time.Now()

	if err := validate.Struct(req); err != nil {
		return nil, errors.WithCode(errors.CodeValidationError, errors.Wrap(err, "invalid analysis request"))
	}

	settings := s.settings
	if req.Settings != nil {
		settings = *req.Settings
	}

	assignment := votematrix.Assignment{
		Participants: req.Participants,
		Labels:       votematrix.LabelsWithUnpainted(req.Labels, len(req.Participants), req.IncludeUnpainted || s.unpainted),
		Groups:       req.Groups,
	}

	_, members := votematrix.GroupParticipants(assignment)
	if nonEmpty := len(members); nonEmpty < 2 && !req.AllowSingleGroup {
		return nil, errors.WithCode(errors.CodeInsufficientGroups,
			errors.Wrapf(core.ErrInsufficientGroups, "%d non-empty group(s)", nonEmpty))
	}

	var statements []opinion.Statement
	if s.statements != nil {
		loaded, err := s.statements.LoadStatements(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load statements")
		}
		statements = loaded
	}

	ext, err := s.extractor.Extract(ctx, assignment)
	if err != nil {
		return nil, errors.Wrap(err, "failed to extract vote matrices")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := repness.Compute(repness.AnalysisContext{
		Groups:     ext.Groups,
		Matrices:   ext.Matrices,
		Statements: statements,
		Settings:   settings,
	})

	fingerprint, err := core.ComputeResultFingerprint(result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fingerprint result")
	}

	report := &AnalysisReport{
		RunID:       core.NewRunID(),
		GeneratedAt: core.Now(),
		Settings:    settings,
		Result:      result,
		Fingerprint: fingerprint,
		statements:  statements,
		matrices:    ext.Matrices,
	}
	if req.IncludeMatrices {
		report.Matrices = ext.Matrices
	}

	byLabel := result.ByLabel()
	for _, g := range ext.Groups {
		gs := GroupSummary{
			Group:    g,
			Letter:   g.Letter(),
			Members:  ext.MemberCount(g.Label),
			Voters:   len(ext.Matrices[g.Label]),
			Selected: len(byLabel[g.Label]),
		}
		report.Groups = append(report.Groups, gs)
		s.metrics.RecordGroupSelection(gs.Letter, gs.Selected)
	}
	report.Summary = Summarize(report.Groups, result, len(repness.StatementUniverse(statements, ext.Matrices)))

	s.logger.Info("run %s: %d groups, %d participants, %d statements selected in %s",
		report.RunID, len(report.Groups), len(req.Participants), report.Summary.Selected, time.Since(start))
	return report, nil
}
