package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// EnrollmentService coordinates course enrollment.
type EnrollmentService struct {
	courses     repository.CourseRepository
	enrollments repository.EnrollmentRepository
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// EnrollmentDependencies bundles repositories for enrollment service.
type EnrollmentDependencies struct {
	CourseRepo     repository.CourseRepository
	EnrollmentRepo repository.EnrollmentRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewEnrollmentService constructs the service.
func NewEnrollmentService(deps EnrollmentDependencies) *EnrollmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		courses:     deps.CourseRepo,
		enrollments: deps.EnrollmentRepo,
		dispatcher:  deps.Dispatcher,
		logger:      logger,
	}
}

// Enroll joins the user to a published course. Repeating the call returns the
// stored enrollment with Created=false instead of an error.
func (s *EnrollmentService) Enroll(ctx context.Context, userID, courseID string) (*domain.EnrollmentResult, error) {
	if _, err := uuid.Parse(courseID); err != nil {
		return nil, apperrors.NewCourseNotFound(courseID)
	}

	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewCourseNotFound(courseID)
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !course.IsPublished {
		return nil, apperrors.NewCourseNotFound(courseID)
	}
	if course.AuthorID == userID {
		return nil, apperrors.NewSelfEnrollmentForbidden()
	}

	enrollment, created, err := s.enrollments.CreateIfAbsent(ctx, userID, course.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewCourseNotFound(courseID)
		}
		return nil, apperrors.NewInternalError(err)
	}

	if created {
		publishEvent(ctx, s.dispatcher, s.logger, events.Event{
			Type:    events.EventEnrollmentCreated,
			ActorID: userID,
			Payload: events.EnrollmentCreatedPayload{
				EnrollmentID: enrollment.ID,
				UserID:       userID,
				CourseID:     course.ID,
				CourseTitle:  course.Title,
			},
		})
	}
	return &domain.EnrollmentResult{Enrollment: enrollment, Created: created}, nil
}

// ListForUser returns the user's enrollments, newest first.
func (s *EnrollmentService) ListForUser(ctx context.Context, userID string) ([]repository.EnrolledCourse, error) {
	items, err := s.enrollments.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return items, nil
}

// IsEnrolled reports whether the user is enrolled in the course.
func (s *EnrollmentService) IsEnrolled(ctx context.Context, userID, courseID string) (bool, error) {
	_, err := s.enrollments.Get(ctx, userID, courseID)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	return false, apperrors.NewInternalError(err)
}
