package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
)

func seedUserAndCourse(t *testing.T, s *Store) (*domain.User, *domain.Course) {
	t.Helper()
	ctx := context.Background()

	user := &domain.User{Email: "student@example.com", PasswordHash: "x", FullName: "Student"}
	require.NoError(t, s.Users().Create(ctx, user))

	course := &domain.Course{AuthorID: "author-1", Title: "Go", Tags: []string{"go"}, IsPublished: true}
	require.NoError(t, s.Courses().Create(ctx, course))
	return user, course
}

func TestUsers_DuplicateEmail(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.Users().Create(ctx, &domain.User{Email: "a@example.com"}))
	err := s.Users().Create(ctx, &domain.User{Email: "a@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestEnrollments_CreateIfAbsentConcurrent(t *testing.T) {
	t.Parallel()

	s := NewStore()
	user, course := seedUserAndCourse(t, s)
	repo := s.Enrollments()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok, err := repo.CreateIfAbsent(context.Background(), user.ID, course.ID)
			assert.NoError(t, err)
			if ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, s.EnrollmentCount())
}

func TestEnrollments_UnknownCourse(t *testing.T) {
	t.Parallel()

	s := NewStore()
	user, _ := seedUserAndCourse(t, s)

	_, _, err := s.Enrollments().CreateIfAbsent(context.Background(), user.ID, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCourses_ListPublishedAndTags(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	courses := s.Courses()

	require.NoError(t, courses.Create(ctx, &domain.Course{Title: "A", Tags: []string{"python", "data"}, IsPublished: true}))
	require.NoError(t, courses.Create(ctx, &domain.Course{Title: "B", Tags: []string{"go"}, IsPublished: true}))
	require.NoError(t, courses.Create(ctx, &domain.Course{Title: "Draft", Tags: []string{"secret"}}))

	all, err := courses.ListPublished(ctx, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	tagged, err := courses.ListPublished(ctx, repository.CourseFilter{Tag: "go"})
	require.NoError(t, err)
	require.Len(t, tagged, 1)
	assert.Equal(t, "B", tagged[0].Title)

	tags, err := courses.ListPublishedTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"data", "go", "python"}, tags)
}

func TestCourses_GetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	course := &domain.Course{Title: "A", Tags: []string{"go"}}
	require.NoError(t, s.Courses().Create(ctx, course))

	got, err := s.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	got.Tags[0] = "mutated"

	again, err := s.Courses().GetByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"go"}, again.Tags)
}

func TestCourses_ListPublishedDefaultLimit(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	for i := 0; i < repository.DefaultListLimit+1; i++ {
		require.NoError(t, s.Courses().Create(ctx, &domain.Course{Title: "C", IsPublished: true}))
	}

	all, err := s.Courses().ListPublished(ctx, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Len(t, all, repository.DefaultListLimit)
}

func TestCourses_ListByAuthorIncludesDrafts(t *testing.T) {
	t.Parallel()

	s := NewStore()
	ctx := context.Background()
	courses := s.Courses()

	require.NoError(t, courses.Create(ctx, &domain.Course{AuthorID: "author-1", Title: "Live", IsPublished: true}))
	require.NoError(t, courses.Create(ctx, &domain.Course{AuthorID: "author-1", Title: "Draft"}))
	require.NoError(t, courses.Create(ctx, &domain.Course{AuthorID: "author-2", Title: "Other", IsPublished: true}))

	mine, err := courses.ListByAuthor(ctx, "author-1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	titles := []string{mine[0].Title, mine[1].Title}
	assert.ElementsMatch(t, []string{"Live", "Draft"}, titles)

	none, err := courses.ListByAuthor(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}
