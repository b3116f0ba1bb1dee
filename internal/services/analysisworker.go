package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/biasdetektiv/study-backend/internal/logger"
	"github.com/biasdetektiv/study-backend/internal/repos"
	"github.com/biasdetektiv/study-backend/internal/scenarios"
	"github.com/biasdetektiv/study-backend/internal/types"
)

// AnalysisWorker drains the analysis_job queue in the background. The
// participant flow only enqueues; nothing ever waits on a job. A job is
// attempted exactly once and a failure leaves the row behind as the
// dead-letter record for the admin surface.
type AnalysisWorker struct {
	db       *gorm.DB
	log      *logger.Logger
	jobs     repos.AnalysisJobRepo
	runs     repos.ScenarioRunRepo
	analysis AnalysisService
	interval time.Duration
}

func NewAnalysisWorker(
	db *gorm.DB,
	baseLog *logger.Logger,
	jobRepo repos.AnalysisJobRepo,
	runRepo repos.ScenarioRunRepo,
	analysis AnalysisService,
) *AnalysisWorker {
	return &AnalysisWorker{
		db:       db,
		log:      baseLog.With("service", "AnalysisWorker"),
		jobs:     jobRepo,
		runs:     runRepo,
		analysis: analysis,
		interval: 2 * time.Second,
	}
}

func (w *AnalysisWorker) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				job, err := w.jobs.ClaimNextQueued(ctx, nil)
				if err != nil {
					w.log.Warn("ClaimNextQueued failed", "error", err)
					continue
				}
				if job == nil {
					continue
				}
				w.ProcessJob(ctx, job)
			}
		}
	}()
}

// ProcessJob evaluates one claimed job and records the outcome. Exported so
// tests can drive the queue without the ticker.
func (w *AnalysisWorker) ProcessJob(ctx context.Context, job *types.AnalysisJob) {
	if err := w.process(ctx, job); err != nil {
		w.log.Warn("Analysis job failed", "job_id", job.ID, "run_id", job.RunID, "error", err)
		if markErr := w.jobs.MarkFailed(ctx, nil, job.ID, err.Error()); markErr != nil {
			w.log.Error("Could not mark analysis job failed", "job_id", job.ID, "error", markErr)
		}
		return
	}
	if err := w.jobs.MarkSucceeded(ctx, nil, job.ID); err != nil {
		w.log.Error("Could not mark analysis job succeeded", "job_id", job.ID, "error", err)
	}
}

func (w *AnalysisWorker) process(ctx context.Context, job *types.AnalysisJob) error {
	run, err := w.runs.GetByID(ctx, nil, job.RunID)
	if err != nil {
		return fmt.Errorf("load run: %w", err)
	}

	scenario, ok := scenarios.ByID(run.ScenarioID)
	if !ok {
		return fmt.Errorf("unknown scenario %q", run.ScenarioID)
	}

	var history []types.ChatItem
	if len(run.ChatHistory) > 0 {
		if err := json.Unmarshal(run.ChatHistory, &history); err != nil {
			return fmt.Errorf("decode chat history: %w", err)
		}
	}

	result, err := w.analysis.Evaluate(ctx, types.AnalysisRequest{
		ScenarioID:          scenario.ID,
		ScenarioTitle:       scenario.Title,
		BiasCategory:        string(scenario.Category),
		GroundTruthIsBiased: scenario.IsBiased,
		ChatHistory:         history,
		Assessment: types.Assessment{
			IsBiased:   run.IsBiased,
			Confidence: run.Confidence,
			Reasoning:  run.Reasoning,
		},
	})
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode analysis result: %w", err)
	}
	if err := w.runs.AttachAnalysis(ctx, nil, run.ID, datatypes.JSON(raw)); err != nil {
		return fmt.Errorf("attach analysis: %w", err)
	}
	return nil
}
