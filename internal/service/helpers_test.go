package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/course-service/internal/config"
	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/events"
	"github.com/spec-kit/course-service/internal/repository/memory"
)

func testConfig() config.Config {
	return config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            bcrypt.MinCost,
		},
	}
}

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) handle(_ context.Context, e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *eventRecorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type testEnv struct {
	store       *memory.Store
	recorder    *eventRecorder
	auth        *AuthService
	courses     *CourseService
	enrollments *EnrollmentService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	dispatcher := events.NewInMemoryDispatcher()
	recorder := &eventRecorder{}
	for _, et := range []events.EventType{events.EventUserRegistered, events.EventCoursePublished, events.EventEnrollmentCreated} {
		dispatcher.Subscribe(et, recorder.handle)
	}

	return &testEnv{
		store:    store,
		recorder: recorder,
		auth: NewAuthService(testConfig(), AuthDependencies{
			UserRepo:   store.Users(),
			Dispatcher: dispatcher,
			Logger:     zap.NewNop(),
		}),
		courses: NewCourseService(CourseDependencies{
			CourseRepo: store.Courses(),
			Dispatcher: dispatcher,
		}),
		enrollments: NewEnrollmentService(EnrollmentDependencies{
			CourseRepo:     store.Courses(),
			EnrollmentRepo: store.Enrollments(),
			Dispatcher:     dispatcher,
		}),
	}
}

func (e *testEnv) register(t *testing.T, email string, isAuthor bool) *domain.User {
	t.Helper()
	res, err := e.auth.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: "password",
		FullName: "Test User",
		IsAuthor: isAuthor,
	})
	require.NoError(t, err)
	return res.User
}

func (e *testEnv) publishedCourse(t *testing.T, author *domain.User, title string, tags ...string) *domain.Course {
	t.Helper()
	ctx := context.Background()
	course, err := e.courses.Create(ctx, author.ID, CourseCreateInput{Title: title, Tags: tags})
	require.NoError(t, err)
	course, err = e.courses.Publish(ctx, author.ID, course.ID)
	require.NoError(t, err)
	return course
}
