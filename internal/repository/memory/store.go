// Package memory provides mutex-guarded in-memory repositories. They are used
// when no Postgres DSN is configured and by tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
)

// Store holds all in-memory tables.
type Store struct {
	mu          sync.RWMutex
	users       map[string]domain.User
	emails      map[string]string
	courses     map[string]domain.Course
	enrollments map[enrollmentKey]domain.Enrollment
	now         func() time.Time
}

type enrollmentKey struct {
	userID   string
	courseID string
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]domain.User),
		emails:      make(map[string]string),
		courses:     make(map[string]domain.Course),
		enrollments: make(map[enrollmentKey]domain.Enrollment),
		now:         time.Now,
	}
}

// Users returns a UserRepository backed by the store.
func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

// Courses returns a CourseRepository backed by the store.
func (s *Store) Courses() repository.CourseRepository { return &courseRepository{s} }

// Enrollments returns an EnrollmentRepository backed by the store.
func (s *Store) Enrollments() repository.EnrollmentRepository { return &enrollmentRepository{s} }

// DeleteUser removes a user. Used to simulate accounts removed after token issuance.
func (s *Store) DeleteUser(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user, ok := s.users[id]; ok {
		delete(s.emails, user.Email)
		delete(s.users, id)
	}
}

// EnrollmentCount returns the number of stored enrollments.
func (s *Store) EnrollmentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.enrollments)
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, taken := r.s.emails[user.Email]; taken {
		return repository.ErrDuplicate
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	r.s.emails[user.Email] = user.ID
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

type courseRepository struct{ s *Store }

func (r *courseRepository) Create(_ context.Context, course *domain.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	course.ID = uuid.NewString()
	course.CreatedAt = now
	course.UpdatedAt = now
	if course.Tags == nil {
		course.Tags = []string{}
	}
	r.s.courses[course.ID] = cloneCourse(*course)
	return nil
}

func (r *courseRepository) Update(_ context.Context, course *domain.Course) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.courses[course.ID]
	if !ok {
		return repository.ErrNotFound
	}
	course.AuthorID = stored.AuthorID
	course.CreatedAt = stored.CreatedAt
	course.UpdatedAt = r.s.now()
	r.s.courses[course.ID] = cloneCourse(*course)
	return nil
}

func (r *courseRepository) GetByID(_ context.Context, id string) (*domain.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	course, ok := r.s.courses[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneCourse(course)
	return &c, nil
}

func (r *courseRepository) ListPublished(_ context.Context, filter repository.CourseFilter) ([]domain.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	tag := strings.TrimSpace(filter.Tag)
	result := []domain.Course{}
	for _, course := range r.s.courses {
		if !course.IsPublished {
			continue
		}
		if tag != "" && !containsTag(course.Tags, tag) {
			continue
		}
		result = append(result, cloneCourse(course))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(result) {
			return []domain.Course{}, nil
		}
		result = result[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = repository.DefaultListLimit
	}
	if limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

func (r *courseRepository) ListByAuthor(_ context.Context, authorID string) ([]domain.Course, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Course{}
	for _, course := range r.s.courses {
		if course.AuthorID == authorID {
			result = append(result, cloneCourse(course))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *courseRepository) ListPublishedTags(_ context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, course := range r.s.courses {
		if !course.IsPublished {
			continue
		}
		for _, tag := range course.Tags {
			seen[tag] = struct{}{}
		}
	}
	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

type enrollmentRepository struct{ s *Store }

func (r *enrollmentRepository) CreateIfAbsent(_ context.Context, userID, courseID string) (*domain.Enrollment, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, false, repository.ErrNotFound
	}
	if _, ok := r.s.courses[courseID]; !ok {
		return nil, false, repository.ErrNotFound
	}

	key := enrollmentKey{userID: userID, courseID: courseID}
	if existing, ok := r.s.enrollments[key]; ok {
		return &existing, false, nil
	}
	e := domain.Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: r.s.now(),
	}
	r.s.enrollments[key] = e
	return &e, true, nil
}

func (r *enrollmentRepository) Get(_ context.Context, userID, courseID string) (*domain.Enrollment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.enrollments[enrollmentKey{userID: userID, courseID: courseID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &e, nil
}

func (r *enrollmentRepository) ListByUser(_ context.Context, userID string) ([]repository.EnrolledCourse, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []repository.EnrolledCourse{}
	for key, e := range r.s.enrollments {
		if key.userID != userID {
			continue
		}
		result = append(result, repository.EnrolledCourse{
			Enrollment: e,
			Course:     cloneCourse(r.s.courses[key.courseID]),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Enrollment.EnrolledAt.After(result[j].Enrollment.EnrolledAt)
	})
	return result, nil
}

func cloneCourse(c domain.Course) domain.Course {
	c.Tags = append([]string{}, c.Tags...)
	if c.CoverURL != nil {
		url := *c.CoverURL
		c.CoverURL = &url
	}
	return c
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
