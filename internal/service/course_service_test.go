package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-service/internal/domain"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

type fakeCache struct {
	tags        []string
	courses     []domain.Course
	hasTags     bool
	hasCourses  bool
	readErr     error
	invalidated int
}

func (c *fakeCache) GetTags(context.Context) ([]string, bool, error) {
	return c.tags, c.hasTags, c.readErr
}

func (c *fakeCache) SetTags(_ context.Context, tags []string) error {
	c.tags, c.hasTags = tags, true
	return nil
}

func (c *fakeCache) GetPublished(context.Context) ([]domain.Course, bool, error) {
	return c.courses, c.hasCourses, c.readErr
}

func (c *fakeCache) SetPublished(_ context.Context, courses []domain.Course) error {
	c.courses, c.hasCourses = courses, true
	return nil
}

func (c *fakeCache) Invalidate(context.Context) error {
	c.tags, c.courses = nil, nil
	c.hasTags, c.hasCourses = false, false
	c.invalidated++
	return nil
}

func TestCourseService_GetVisibility(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	author := env.register(t, "author@example.com", true)
	student := env.register(t, "student@example.com", false)
	published := env.publishedCourse(t, author, "Published")
	draft, err := env.courses.Create(context.Background(), author.ID, CourseCreateInput{Title: "Draft"})
	require.NoError(t, err)
	ctx := context.Background()

	got, err := env.courses.Get(ctx, student.ID, published.ID)
	require.NoError(t, err)
	assert.Equal(t, published.ID, got.ID)

	_, err = env.courses.Get(ctx, student.ID, draft.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCourseNotFound))

	own, err := env.courses.Get(ctx, author.ID, draft.ID)
	require.NoError(t, err)
	assert.False(t, own.IsPublished)

	for _, id := range []string{uuid.NewString(), "00000000-0000-0000-0000-000000000000", "not-a-uuid", ""} {
		_, err = env.courses.Get(ctx, student.ID, id)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeCourseNotFound), "id %q: %v", id, err)
	}
}

func TestCourseService_ListAndTags(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	author := env.register(t, "author@example.com", true)
	env.publishedCourse(t, author, "Python basics", "Python", "Beginner")
	env.publishedCourse(t, author, "Go basics", "Go", "Beginner")
	_, err := env.courses.Create(context.Background(), author.ID, CourseCreateInput{Title: "Hidden", Tags: []string{"Secret"}})
	require.NoError(t, err)
	ctx := context.Background()

	courses, err := env.courses.ListPublished(ctx, CourseListFilter{})
	require.NoError(t, err)
	assert.Len(t, courses, 2)

	python, err := env.courses.ListPublished(ctx, CourseListFilter{Tag: "Python"})
	require.NoError(t, err)
	require.Len(t, python, 1)
	assert.Equal(t, "Python basics", python[0].Title)

	tags, err := env.courses.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beginner", "Go", "Python"}, tags)
}

func TestCourseService_ListAppliesDefaultLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	author := env.register(t, "author@example.com", true)
	for i := 0; i < DefaultCourseListLimit+5; i++ {
		env.publishedCourse(t, author, fmt.Sprintf("Course %03d", i))
	}
	ctx := context.Background()

	tests := []struct {
		name   string
		filter CourseListFilter
		want   int
	}{
		{name: "no limit", filter: CourseListFilter{}, want: DefaultCourseListLimit},
		{name: "limit above bound", filter: CourseListFilter{Limit: 1000}, want: DefaultCourseListLimit},
		{name: "explicit limit", filter: CourseListFilter{Limit: 10}, want: 10},
		{name: "offset into tail", filter: CourseListFilter{Offset: DefaultCourseListLimit}, want: 5},
		{name: "negative offset", filter: CourseListFilter{Limit: 3, Offset: -4}, want: 3},
	}

	for _, tt := range tests {
		courses, err := env.courses.ListPublished(ctx, tt.filter)
		require.NoError(t, err, tt.name)
		assert.Len(t, courses, tt.want, tt.name)
	}
}

func TestCourseService_CreateNormalizesTags(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	author := env.register(t, "author@example.com", true)

	course, err := env.courses.Create(context.Background(), author.ID, CourseCreateInput{
		Title: "  Data  ",
		Tags:  []string{" sql ", "sql", "", "etl"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Data", course.Title)
	assert.Equal(t, []string{"sql", "etl"}, course.Tags)
	assert.False(t, course.IsPublished)

	_, err = env.courses.Create(context.Background(), author.ID, CourseCreateInput{Title: " "})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}

func TestCourseService_PublishAndCoverOwnership(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	author := env.register(t, "author@example.com", true)
	other := env.register(t, "other@example.com", true)
	ctx := context.Background()

	draft, err := env.courses.Create(ctx, author.ID, CourseCreateInput{Title: "Mine"})
	require.NoError(t, err)

	_, err = env.courses.Publish(ctx, other.ID, draft.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeCourseNotFound), "drafts stay hidden from other authors")

	published, err := env.courses.Publish(ctx, author.ID, draft.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished)

	_, err = env.courses.SetCover(ctx, other.ID, draft.ID, "/uploads/x.png")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeForbidden))

	withCover, err := env.courses.SetCover(ctx, author.ID, draft.ID, "/uploads/cover.png")
	require.NoError(t, err)
	require.NotNil(t, withCover.CoverURL)
	assert.Equal(t, "/uploads/cover.png", *withCover.CoverURL)
}

func TestCourseService_CacheUsage(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	cache := &fakeCache{}
	env.courses.cache = cache
	author := env.register(t, "author@example.com", true)
	ctx := context.Background()

	env.publishedCourse(t, author, "First", "a")
	assert.Equal(t, 1, cache.invalidated)

	tags, err := env.courses.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, tags)
	assert.True(t, cache.hasTags)

	cache.tags = []string{"from-cache"}
	tags, err = env.courses.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"from-cache"}, tags)

	env.publishedCourse(t, author, "Second", "b")
	assert.Equal(t, 2, cache.invalidated)
	tags, err = env.courses.Tags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, tags)

	filtered, err := env.courses.ListPublished(ctx, CourseListFilter{Tag: "b"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.False(t, cache.hasCourses, "filtered listings bypass the cache")

	cache.readErr = errors.New("redis down")
	all, err := env.courses.ListPublished(ctx, CourseListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
