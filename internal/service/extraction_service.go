package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/repository"
	"github.com/prepstack/prepstack-api/pkg/extractor"
)

// ExtractorClient is the slice of the extraction service client used here.
// *extractor.Client implements it.
type ExtractorClient interface {
	Submit(ctx context.Context, req *extractor.SubmitRequest) (*extractor.SubmitResponse, error)
	GetJob(ctx context.Context, jobID string) (*extractor.JobResult, error)
}

// ExtractionNotifier pushes extraction completion events.
type ExtractionNotifier interface {
	NotifyExtractionCompleted(job *models.ExtractionJob, questionCount int)
}

// ExtractionService orchestrates PDF-to-question extraction: it stores
// uploaded PDFs, hands them to the external extraction service, and files
// the returned questions into the question bank. The parsing itself is the
// external service's problem.
type ExtractionService struct {
	extractionRepo *repository.ExtractionRepository
	catalog        *CatalogService
	storage        *StorageService
	client         ExtractorClient
	notifier       ExtractionNotifier
}

// NewExtractionService constructs an ExtractionService.
func NewExtractionService(
	extractionRepo *repository.ExtractionRepository,
	catalog *CatalogService,
	storage *StorageService,
	client ExtractorClient,
) *ExtractionService {
	return &ExtractionService{
		extractionRepo: extractionRepo,
		catalog:        catalog,
		storage:        storage,
		client:         client,
	}
}

// SetNotifier wires the admin event stream.
func (s *ExtractionService) SetNotifier(n ExtractionNotifier) { s.notifier = n }

// SubmitPDF stores the PDF and queues an extraction job for a series.
func (s *ExtractionService) SubmitPDF(ctx context.Context, code, filename string, data []byte, submittedBy string) (*models.ExtractionJob, error) {
	if s.client == nil {
		return nil, errors.New("extraction service not configured")
	}
	if len(data) == 0 {
		return nil, errors.New("empty file")
	}

	ts, err := s.catalog.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	objectKey, err := s.storage.UploadQuestionPDF(ctx, ts.Code, filename, data)
	if err != nil {
		return nil, fmt.Errorf("upload failed: %w", err)
	}

	job := &models.ExtractionJob{
		ProductCode: ts.Code,
		ObjectKey:   objectKey,
		Status:      models.ExtractionQueued,
		SubmittedBy: submittedBy,
	}
	if err := s.extractionRepo.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	resp, err := s.client.Submit(ctx, &extractor.SubmitRequest{
		ObjectKey: objectKey,
		Bucket:    s.storage.Bucket(),
	})
	if err != nil {
		// The job stays Queued; the poll worker retries submission later.
		log.Error().Err(err).Int("job_id", job.ID).Msg("Extraction submit failed, will retry")
		return job, nil
	}

	if err := s.extractionRepo.SetRemoteJobID(ctx, job.ID, resp.JobID); err != nil {
		return nil, err
	}
	job.Status = models.ExtractionRunning
	job.RemoteJobID = &resp.JobID

	log.Info().
		Int("job_id", job.ID).
		Str("remote_job_id", resp.JobID).
		Str("code", ts.Code).
		Msg("Extraction job submitted")
	return job, nil
}

// GetJob returns an extraction job by id.
func (s *ExtractionService) GetJob(ctx context.Context, id int) (*models.ExtractionJob, error) {
	return s.extractionRepo.GetJob(ctx, id)
}

// Poll advances one in-flight job: re-submits Queued jobs whose initial
// submission failed, and pulls results for Running ones. Called by the
// extraction worker.
func (s *ExtractionService) Poll(ctx context.Context, job *models.ExtractionJob) error {
	if job.RemoteJobID == nil {
		resp, err := s.client.Submit(ctx, &extractor.SubmitRequest{
			ObjectKey: job.ObjectKey,
			Bucket:    s.storage.Bucket(),
		})
		if err != nil {
			return fmt.Errorf("resubmit failed: %w", err)
		}
		return s.extractionRepo.SetRemoteJobID(ctx, job.ID, resp.JobID)
	}

	result, err := s.client.GetJob(ctx, *job.RemoteJobID)
	if err != nil {
		return fmt.Errorf("job lookup failed: %w", err)
	}

	switch result.Status {
	case "completed":
		questions := make([]models.Question, 0, len(result.Questions))
		for _, q := range result.Questions {
			questions = append(questions, models.Question{
				ProductCode: job.ProductCode,
				JobID:       &job.ID,
				Text:        q.Text,
				Options:     q.Options,
				Answer:      q.Answer,
			})
		}
		if err := s.extractionRepo.InsertQuestions(ctx, questions); err != nil {
			return fmt.Errorf("failed to store questions: %w", err)
		}
		if err := s.extractionRepo.UpdateJobStatus(ctx, job.ID, models.ExtractionCompleted, nil); err != nil {
			return err
		}
		log.Info().
			Int("job_id", job.ID).
			Int("questions", len(questions)).
			Str("code", job.ProductCode).
			Msg("Extraction completed")
		if s.notifier != nil {
			job.Status = models.ExtractionCompleted
			s.notifier.NotifyExtractionCompleted(job, len(questions))
		}
	case "failed":
		reason := result.Error
		if reason == "" {
			reason = "extraction failed"
		}
		return s.extractionRepo.UpdateJobStatus(ctx, job.ID, models.ExtractionFailed, &reason)
	default:
		// queued or running remotely; nothing to do yet.
	}
	return nil
}
