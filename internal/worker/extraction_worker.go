package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/internal/service"
)

// ExtractionWorker polls the external extraction service for in-flight
// question-PDF jobs and files finished results.
type ExtractionWorker struct {
	extractionRepo *repository.ExtractionRepository
	extractionSvc  *service.ExtractionService
	interval       time.Duration
}

// NewExtractionWorker constructs an ExtractionWorker.
func NewExtractionWorker(
	extractionRepo *repository.ExtractionRepository,
	extractionSvc *service.ExtractionService,
	interval time.Duration,
) *ExtractionWorker {
	return &ExtractionWorker{
		extractionRepo: extractionRepo,
		extractionSvc:  extractionSvc,
		interval:       interval,
	}
}

// Start begins the polling loop until context is canceled.
func (w *ExtractionWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting extraction worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Extraction worker stopped")
			return
		}
	}
}

func (w *ExtractionWorker) run(ctx context.Context) {
	jobs, err := w.extractionRepo.GetRunningJobs(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get running extraction jobs")
		return
	}

	for i := range jobs {
		job := &jobs[i]
		if err := w.extractionSvc.Poll(ctx, job); err != nil {
			log.Error().Err(err).Int("job_id", job.ID).Msg("Extraction poll failed")
		}
	}
}
