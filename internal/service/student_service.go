package service

import (
	"context"

	"github.com/prepstack/prepstack-api/internal/models"
	"github.com/prepstack/prepstack-api/internal/repository"
)

// StudentService handles admin management of student accounts.
type StudentService struct {
	studentRepo *repository.StudentRepository
}

// NewStudentService constructs a StudentService.
func NewStudentService(studentRepo *repository.StudentRepository) *StudentService {
	return &StudentService{studentRepo: studentRepo}
}

// ListStudentsFilter mirrors the repository filter for the handler layer.
type ListStudentsFilter struct {
	Search   string
	IsActive *bool
	Page     int
	Limit    int
}

// ListStudents returns students for the admin dashboard.
func (s *StudentService) ListStudents(ctx context.Context, filter *ListStudentsFilter) (*repository.StudentResult, error) {
	return s.studentRepo.List(ctx, &repository.StudentFilter{
		Search:   filter.Search,
		IsActive: filter.IsActive,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
}

// StudentDetail carries a student together with the series they paid for.
type StudentDetail struct {
	models.Student
	EnrolledSeries []string `json:"enrolledSeries"`
}

// GetStudent returns a single student with their enrollments.
func (s *StudentService) GetStudent(ctx context.Context, id int) (*StudentDetail, error) {
	student, err := s.studentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	codes, err := s.studentRepo.EnrolledCodes(ctx, id)
	if err != nil {
		return nil, err
	}
	return &StudentDetail{Student: *student, EnrolledSeries: codes}, nil
}

// SetStudentStatus activates or deactivates a student account.
func (s *StudentService) SetStudentStatus(ctx context.Context, id int, isActive bool) error {
	return s.studentRepo.UpdateStatus(ctx, id, isActive)
}
