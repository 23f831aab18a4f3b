package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-service/internal/api/http/handlers"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/config"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Courses        *handlers.CoursesHandler
	AuthMiddleware *auth.AuthMiddleware
	Uploads        config.UploadsConfig
}

// RegisterRoutes wires HTTP routes. Guards are attached per route because
// fiber applies group middleware to every path under the group prefix.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Static(cfg.Uploads.PublicURLPrefix, cfg.Uploads.Dir, fiber.Static{Browse: false})

	authenticated := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireUser()}
	authorOnly := []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireAuthor()}

	v1 := app.Group("/v1")

	authGroup := v1.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)

	users := v1.Group("/users")
	users.Get("/me", append(authenticated, cfg.Users.Me)...)
	users.Get("/me/enrollments", append(authenticated, cfg.Users.Enrollments)...)

	courses := v1.Group("/courses")
	courses.Get("/", cfg.Courses.List)
	courses.Get("/tags", cfg.Courses.Tags)
	courses.Post("/", append(authorOnly, cfg.Courses.Create)...)
	courses.Get("/:id", append(authenticated, cfg.Courses.Get)...)
	courses.Post("/:id/enroll", append(authenticated, cfg.Courses.Enroll)...)
	courses.Post("/:id/publish", append(authorOnly, cfg.Courses.Publish)...)
	courses.Post("/:id/cover", append(authorOnly, cfg.Courses.UploadCover)...)

	app.Use(func(c *fiber.Ctx) error {
		return apperrors.NewDomainError(apperrors.CodeNotFound, "route not found", fiber.StatusNotFound, nil)
	})
}
