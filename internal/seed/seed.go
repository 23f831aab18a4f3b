// Package seed loads demo accounts and courses into an empty deployment.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
	"github.com/spec-kit/course-service/internal/service"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

const (
	StudentEmail = "user@example.com"
	AuthorEmail  = "author@example.com"
	DemoPassword = "password"
)

// DemoCourses are published under the demo author.
var DemoCourses = []service.CourseCreateInput{
	{
		Title:       "Go for Backend Engineers",
		Description: "Build HTTP services with Go, from handlers to graceful shutdown.",
		Tags:        []string{"go", "backend"},
	},
	{
		Title:       "PostgreSQL Fundamentals",
		Description: "Schemas, indexes and transactions for application developers.",
		Tags:        []string{"databases", "sql"},
	},
	{
		Title:       "Intro to Web Security",
		Description: "Authentication, password storage and token handling.",
		Tags:        []string{"security", "backend"},
	},
}

// Dependencies bundles what the seeder needs.
type Dependencies struct {
	Auth    *service.AuthService
	Courses *service.CourseService
	Users   repository.UserRepository
	Logger  *zap.Logger
}

// Result reports what Run created.
type Result struct {
	Student          *domain.User
	Author           *domain.User
	CoursesCreated   int
	CoursesPublished int
}

// Run creates the demo student, the demo author and the author's published
// courses. Existing accounts are reused and demo courses are matched by title
// against the author's courses, so a repeated or previously interrupted run
// only fills in what is missing.
func Run(ctx context.Context, deps Dependencies) (*Result, error) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	student, err := ensureUser(ctx, deps, service.RegisterInput{
		Email:    StudentEmail,
		Password: DemoPassword,
		FullName: "Demo Student",
	})
	if err != nil {
		return nil, err
	}

	author, err := ensureUser(ctx, deps, service.RegisterInput{
		Email:    AuthorEmail,
		Password: DemoPassword,
		FullName: "Demo Author",
		IsAuthor: true,
	})
	if err != nil {
		return nil, err
	}

	existing, err := deps.Courses.ListByAuthor(ctx, author.ID)
	if err != nil {
		return nil, fmt.Errorf("list demo courses: %w", err)
	}
	byTitle := make(map[string]domain.Course, len(existing))
	for _, course := range existing {
		byTitle[course.Title] = course
	}

	res := &Result{Student: student, Author: author}
	for _, input := range DemoCourses {
		course, ok := byTitle[input.Title]
		if !ok {
			created, err := deps.Courses.Create(ctx, author.ID, input)
			if err != nil {
				return nil, fmt.Errorf("create course %q: %w", input.Title, err)
			}
			course = *created
			res.CoursesCreated++
		}
		if course.IsPublished {
			continue
		}
		if _, err := deps.Courses.Publish(ctx, author.ID, course.ID); err != nil {
			return nil, fmt.Errorf("publish course %q: %w", input.Title, err)
		}
		res.CoursesPublished++
	}

	if res.CoursesCreated == 0 && res.CoursesPublished == 0 {
		logger.Info("demo data already present")
		return res, nil
	}
	logger.Info("demo data seeded",
		zap.String("student", student.Email),
		zap.String("author", author.Email),
		zap.Int("courses_created", res.CoursesCreated),
		zap.Int("courses_published", res.CoursesPublished))
	return res, nil
}

func ensureUser(ctx context.Context, deps Dependencies, input service.RegisterInput) (*domain.User, error) {
	res, err := deps.Auth.Register(ctx, input)
	if err == nil {
		return res.User, nil
	}
	if !apperrors.HasCode(err, apperrors.CodeDuplicateEmail) {
		return nil, fmt.Errorf("register %s: %w", input.Email, err)
	}
	user, err := deps.Users.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", input.Email, err)
	}
	return user, nil
}
