package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/montanaflynn/stats"

	"tolninja/domain/stackup"
	"tolninja/internal"
	"tolninja/internal/engine"
	"tolninja/internal/errors"
	"tolninja/models"
	"tolninja/ports"
)

// histogramBins is the fixed bin count handed to the rendering
// collaborator.
const histogramBins = 40

// EngineSettings are the service-wide engine defaults, usually sourced
// from configuration.
type EngineSettings struct {
	// NumSamples applies when a definition leaves its sample count unset;
	// 0 falls through to the engine default.
	NumSamples int
	// MaxRounds overrides the truncation round budget; 0 keeps the engine
	// default.
	MaxRounds int
}

// AnalyzeRequest is one analysis invocation: a definition, an optional
// exploratory limit pair evaluated alongside the spec limits, and an
// optional seed for reproducible runs.
type AnalyzeRequest struct {
	Definition   stackup.StackupDefinition `json:"definition"`
	CustomLimits *stackup.Limits           `json:"custom_limits,omitempty"`
	Seed         int64                     `json:"seed,omitempty"`
}

// StackupService orchestrates the Monte Carlo engine, persistence and
// report generation.
type StackupService struct {
	repo      ports.StackupRepository
	reports   ports.ReportWriter
	reportDir string
	settings  EngineSettings
	log       *internal.Logger
}

func NewStackupService(repo ports.StackupRepository, reports ports.ReportWriter, reportDir string, settings EngineSettings, logger *internal.Logger) *StackupService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &StackupService{
		repo:      repo,
		reports:   reports,
		reportDir: reportDir,
		settings:  settings,
		log:       logger,
	}
}

// Analyze runs a full stack analysis pass: build, per-step sampling,
// aggregation, summary statistics and the display-ready extracts.
func (s *StackupService) Analyze(ctx context.Context, req AnalyzeRequest) (*stackup.AnalysisResult, error) {
	start := time.Now()

	mgr, err := engine.FromDefinition(req.Definition, engine.BuildOptions{
		Seed:       req.Seed,
		MaxRounds:  s.settings.MaxRounds,
		NumSamples: s.settings.NumSamples,
	})
	if err != nil {
		return nil, err
	}

	if err := mgr.CalculateStack(ctx, req.Definition.Orientation.IsRadial()); err != nil {
		return nil, err
	}
	overall, err := mgr.Aggregate()
	if err != nil {
		return nil, err
	}
	summary, err := mgr.SummaryStatistics(overall, normalizeLimits(req.CustomLimits))
	if err != nil {
		return nil, err
	}

	result := &stackup.AnalysisResult{
		Name:           mgr.Name,
		Revision:       mgr.Revision,
		Orientation:    mgr.Orientation(),
		Summary:        summary,
		AbsoluteLimits: mgr.AbsoluteLimits(),
		Steps:          stepResults(mgr),
		Histogram:      engine.Histogram(overall.Magnitudes(), histogramBins),
		ElapsedMS:      time.Since(start).Milliseconds(),
	}

	s.log.Info("analyzed stackup %q: %d steps, %d samples, %dms",
		mgr.Name, len(mgr.Steps()), summary.Samples, result.ElapsedMS)
	return result, nil
}

// normalizeLimits applies the optional-limit rule: a missing or partially
// defined custom pair means "custom limits not supplied", never an error.
func normalizeLimits(limits *stackup.Limits) *stackup.Limits {
	if limits == nil || !limits.Defined() {
		return nil
	}
	return limits
}

func stepResults(mgr *engine.StackManager) []stackup.StepResult {
	out := make([]stackup.StepResult, 0, len(mgr.Steps()))
	for _, step := range mgr.Steps() {
		magnitudes := step.Lengths().Magnitudes()
		mean, _ := stats.Mean(magnitudes)
		std, _ := stats.StandardDeviationPopulation(magnitudes)
		out = append(out, stackup.StepResult{
			PartName:    step.PartName,
			Description: step.Description,
			IsInterface: step.IsInterface,
			Nominal:     step.MidLength(),
			AbsMin:      step.AbsMin(),
			AbsMax:      step.AbsMax(),
			Mean:        mean,
			Std:         std,
			Samples:     len(magnitudes),
		})
	}
	return out
}

// Save validates and stores a stackup definition. A fresh record gets a
// new id; an existing id upserts.
func (s *StackupService) Save(ctx context.Context, id uuid.UUID, def stackup.StackupDefinition, summary *stackup.SummaryData) (*models.StackupRecord, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		id = uuid.New()
	}
	now := time.Now().UTC()
	record := &models.StackupRecord{
		ID:         id,
		Name:       def.Name,
		Revision:   def.Revision,
		Definition: def,
		Summary:    summary,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Save(ctx, record); err != nil {
		return nil, errors.Wrapf(err, "saving stackup %q", def.Name)
	}
	return record, nil
}

// Get loads a stored stackup.
func (s *StackupService) Get(ctx context.Context, id uuid.UUID) (*models.StackupRecord, error) {
	return s.repo.Get(ctx, id)
}

// List returns all stored stackups.
func (s *StackupService) List(ctx context.Context) ([]*models.StackupRecord, error) {
	return s.repo.List(ctx)
}

// Delete removes a stored stackup.
func (s *StackupService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// AnalyzeStored re-runs the analysis for a stored stackup and persists
// the refreshed summary.
func (s *StackupService) AnalyzeStored(ctx context.Context, id uuid.UUID, custom *stackup.Limits, seed int64) (*stackup.AnalysisResult, error) {
	record, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.Analyze(ctx, AnalyzeRequest{
		Definition:   record.Definition,
		CustomLimits: custom,
		Seed:         seed,
	})
	if err != nil {
		return nil, err
	}

	record.Summary = result.Summary
	record.UpdatedAt = time.Now().UTC()
	if err := s.repo.Save(ctx, record); err != nil {
		// The analysis itself succeeded; losing the cached summary is not
		// fatal.
		s.log.Warn("failed to persist refreshed summary for %s: %v", id, err)
	}
	return result, nil
}

// WriteReport renders the analysis of a stored stackup into a report file
// under the service's report directory, returning the path.
func (s *StackupService) WriteReport(ctx context.Context, id uuid.UUID, custom *stackup.Limits, seed int64) (string, error) {
	if s.reports == nil {
		return "", errors.New(errors.CodeReportFailed, "no report writer configured")
	}
	result, err := s.AnalyzeStored(ctx, id, custom, seed)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.reportDir, fmt.Sprintf("stackup-%s.xlsx", id))
	if err := s.reports.Write(ctx, result, path); err != nil {
		return "", errors.WithCode(errors.CodeReportFailed, err)
	}
	s.log.Info("wrote report for stackup %s to %s", id, path)
	return path, nil
}
