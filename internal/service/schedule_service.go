package service

import (
	"context"
	"errors"
	"time"

	"github.com/prepstack/prepstack-api/internal/models"
)

// ScheduleStore is the persistence surface the schedule service needs.
// *repository.ScheduledTestRepository implements it.
type ScheduleStore interface {
	ListByCode(ctx context.Context, code string, publishedOnly bool) ([]models.ScheduledTest, error)
	GetByID(ctx context.Context, id int) (*models.ScheduledTest, error)
	Create(ctx context.Context, st *models.ScheduledTest) error
	Update(ctx context.Context, st *models.ScheduledTest) error
	Delete(ctx context.Context, id int) error
}

// ScheduleService handles scheduled test windows inside a series.
type ScheduleService struct {
	scheduleRepo ScheduleStore
	catalog      *CatalogService
}

// NewScheduleService constructs a ScheduleService.
func NewScheduleService(scheduleRepo ScheduleStore, catalog *CatalogService) *ScheduleService {
	return &ScheduleService{scheduleRepo: scheduleRepo, catalog: catalog}
}

// CreateScheduledTestRequest represents the request to create a test window.
type CreateScheduledTestRequest struct {
	Name          string    `json:"name" binding:"required"`
	StartsAt      time.Time `json:"startsAt" binding:"required"`
	DurationMins  int       `json:"durationMins" binding:"required"`
	QuestionCount int       `json:"questionCount"`
	IsPublished   bool      `json:"isPublished"`
}

// UpdateScheduledTestRequest represents the request to update a test window.
type UpdateScheduledTestRequest struct {
	Name          string     `json:"name"`
	StartsAt      *time.Time `json:"startsAt"`
	DurationMins  *int       `json:"durationMins"`
	QuestionCount *int       `json:"questionCount"`
	IsPublished   *bool      `json:"isPublished"`
}

// ListForSeries returns test windows for a series; publishedOnly is used by
// the public surface.
func (s *ScheduleService) ListForSeries(ctx context.Context, code string, publishedOnly bool) ([]models.ScheduledTest, error) {
	if _, err := s.catalog.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	return s.scheduleRepo.ListByCode(ctx, code, publishedOnly)
}

// Create adds a new test window to an existing series.
func (s *ScheduleService) Create(ctx context.Context, code string, req *CreateScheduledTestRequest) (*models.ScheduledTest, error) {
	if _, err := s.catalog.GetByCode(ctx, code); err != nil {
		return nil, err
	}
	if req.DurationMins < 1 {
		return nil, errors.New("duration must be at least 1 minute")
	}

	st := &models.ScheduledTest{
		ProductCode:   code,
		Name:          req.Name,
		StartsAt:      req.StartsAt,
		DurationMins:  req.DurationMins,
		QuestionCount: req.QuestionCount,
		IsPublished:   req.IsPublished,
	}
	if err := s.scheduleRepo.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Update modifies an existing test window.
func (s *ScheduleService) Update(ctx context.Context, id int, req *UpdateScheduledTestRequest) (*models.ScheduledTest, error) {
	st, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		st.Name = req.Name
	}
	if req.StartsAt != nil {
		st.StartsAt = *req.StartsAt
	}
	if req.DurationMins != nil {
		if *req.DurationMins < 1 {
			return nil, errors.New("duration must be at least 1 minute")
		}
		st.DurationMins = *req.DurationMins
	}
	if req.QuestionCount != nil {
		st.QuestionCount = *req.QuestionCount
	}
	if req.IsPublished != nil {
		st.IsPublished = *req.IsPublished
	}

	if err := s.scheduleRepo.Update(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

// Delete removes a test window.
func (s *ScheduleService) Delete(ctx context.Context, id int) error {
	return s.scheduleRepo.Delete(ctx, id)
}
