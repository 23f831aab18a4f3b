package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

const (
	maxTitleLength = 200
	maxTags        = 20

	// DefaultCourseListLimit applies when a listing asks for no limit; it is
	// also the upper bound so every store pages the same way.
	DefaultCourseListLimit = repository.DefaultListLimit
)

// CourseCache caches published listings. Implementations may fail; the
// service falls back to the repository.
type CourseCache interface {
	GetTags(ctx context.Context) ([]string, bool, error)
	SetTags(ctx context.Context, tags []string) error
	GetPublished(ctx context.Context) ([]domain.Course, bool, error)
	SetPublished(ctx context.Context, courses []domain.Course) error
	Invalidate(ctx context.Context) error
}

// CourseService coordinates course catalogue workflows.
type CourseService struct {
	courses    repository.CourseRepository
	cache      CourseCache
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CourseDependencies bundles requirements for course service.
type CourseDependencies struct {
	CourseRepo repository.CourseRepository
	Cache      CourseCache
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// CourseCreateInput describes a new draft course.
type CourseCreateInput struct {
	Title       string
	Description string
	Tags        []string
}

// CourseListFilter describes public listing filters.
type CourseListFilter struct {
	Tag    string
	Limit  int
	Offset int
}

// NewCourseService constructs the service.
func NewCourseService(deps CourseDependencies) *CourseService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{
		courses:    deps.CourseRepo,
		cache:      deps.Cache,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListPublished returns published courses, newest first.
func (s *CourseService) ListPublished(ctx context.Context, filter CourseListFilter) ([]domain.Course, error) {
	cacheable := s.cache != nil && filter.Tag == "" && filter.Limit == 0 && filter.Offset == 0
	if cacheable {
		courses, ok, err := s.cache.GetPublished(ctx)
		if err != nil {
			s.logger.Warn("course cache read failed", zap.Error(err))
		} else if ok {
			return courses, nil
		}
	}

	limit := filter.Limit
	if limit <= 0 || limit > DefaultCourseListLimit {
		limit = DefaultCourseListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	courses, err := s.courses.ListPublished(ctx, repository.CourseFilter{
		Tag:    strings.TrimSpace(filter.Tag),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if cacheable {
		if err := s.cache.SetPublished(ctx, courses); err != nil {
			s.logger.Warn("course cache write failed", zap.Error(err))
		}
	}
	return courses, nil
}

// Tags returns the sorted distinct tags of published courses.
func (s *CourseService) Tags(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		tags, ok, err := s.cache.GetTags(ctx)
		if err != nil {
			s.logger.Warn("tag cache read failed", zap.Error(err))
		} else if ok {
			return tags, nil
		}
	}

	tags, err := s.courses.ListPublishedTags(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if s.cache != nil {
		if err := s.cache.SetTags(ctx, tags); err != nil {
			s.logger.Warn("tag cache write failed", zap.Error(err))
		}
	}
	return tags, nil
}

// Get returns a course visible to the viewer. Drafts of other authors and
// unknown or malformed ids are all reported as COURSE_NOT_FOUND.
func (s *CourseService) Get(ctx context.Context, viewerID, courseID string) (*domain.Course, error) {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if !course.VisibleTo(viewerID) {
		return nil, apperrors.NewCourseNotFound(courseID)
	}
	return course, nil
}

// ListByAuthor returns the author's courses, drafts included.
func (s *CourseService) ListByAuthor(ctx context.Context, authorID string) ([]domain.Course, error) {
	courses, err := s.courses.ListByAuthor(ctx, authorID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return courses, nil
}

// Create stores a new draft course owned by the author.
func (s *CourseService) Create(ctx context.Context, authorID string, input CourseCreateInput) (*domain.Course, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if len(title) > maxTitleLength {
		return nil, apperrors.NewValidationError("title too long", map[string]any{"maxLength": maxTitleLength})
	}
	tags := normalizeTags(input.Tags)
	if len(tags) > maxTags {
		return nil, apperrors.NewValidationError("too many tags", map[string]any{"max": maxTags})
	}

	course := &domain.Course{
		AuthorID:    authorID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Tags:        tags,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return course, nil
}

// Publish makes the author's course visible and enrollable.
func (s *CourseService) Publish(ctx context.Context, authorID, courseID string) (*domain.Course, error) {
	course, err := s.loadOwned(ctx, authorID, courseID)
	if err != nil {
		return nil, err
	}
	if course.IsPublished {
		return course, nil
	}

	course.IsPublished = true
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.invalidate(ctx)

	publishEvent(ctx, s.dispatcher, s.logger, events.Event{
		Type:    events.EventCoursePublished,
		ActorID: authorID,
		Payload: events.CoursePublishedPayload{
			CourseID: course.ID,
			AuthorID: course.AuthorID,
			Title:    course.Title,
			Tags:     course.Tags,
		},
	})
	return course, nil
}

// SetCover records the public URL of the course cover image.
func (s *CourseService) SetCover(ctx context.Context, authorID, courseID, coverURL string) (*domain.Course, error) {
	course, err := s.loadOwned(ctx, authorID, courseID)
	if err != nil {
		return nil, err
	}
	course.CoverURL = &coverURL
	if err := s.courses.Update(ctx, course); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if course.IsPublished {
		s.invalidate(ctx)
	}
	return course, nil
}

// AuthorizeCoverUpload checks ownership before a cover file is written.
func (s *CourseService) AuthorizeCoverUpload(ctx context.Context, authorID, courseID string) error {
	_, err := s.loadOwned(ctx, authorID, courseID)
	return err
}

func (s *CourseService) load(ctx context.Context, courseID string) (*domain.Course, error) {
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
	return course, nil
}

func (s *CourseService) loadOwned(ctx context.Context, authorID, courseID string) (*domain.Course, error) {
	course, err := s.load(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.AuthorID != authorID {
		if !course.IsPublished {
			return nil, apperrors.NewCourseNotFound(courseID)
		}
		return nil, apperrors.NewForbidden("only the course author can modify it")
	}
	return course, nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("course cache invalidation failed", zap.Error(err))
	}
}

func normalizeTags(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	tags := make([]string, 0, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
