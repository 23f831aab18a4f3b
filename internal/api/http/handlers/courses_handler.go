package handlers

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/spec-kit/course-service/internal/api/dto"
	"github.com/spec-kit/course-service/internal/auth"
	"github.com/spec-kit/course-service/internal/config"
	"github.com/spec-kit/course-service/internal/service"
	apperrors "github.com/spec-kit/course-service/pkg/util/errorutil"
)

var allowedCoverExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".webp": {},
}

// CoursesHandler manages course catalogue and enrollment endpoints.
type CoursesHandler struct {
	courses     *service.CourseService
	enrollments *service.EnrollmentService
	uploads     config.UploadsConfig
}

// NewCoursesHandler constructs handler.
func NewCoursesHandler(courseService *service.CourseService, enrollmentService *service.EnrollmentService, uploads config.UploadsConfig) *CoursesHandler {
	return &CoursesHandler{courses: courseService, enrollments: enrollmentService, uploads: uploads}
}

// List GET /v1/courses.
func (h *CoursesHandler) List(c *fiber.Ctx) error {
	filter := service.CourseListFilter{
		Tag:    c.Query("tag"),
		Limit:  parseInt(c.Query("limit"), 0),
		Offset: parseInt(c.Query("offset"), 0),
	}
	courses, err := h.courses.ListPublished(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCourseSummaries(courses))
}

// Tags GET /v1/courses/tags.
func (h *CoursesHandler) Tags(c *fiber.Ctx) error {
	tags, err := h.courses.Tags(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(tags)
}

// Get GET /v1/courses/:id.
func (h *CoursesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	course, err := h.courses.Get(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	enrolled, err := h.enrollments.IsEnrolled(c.UserContext(), principal.UserID(), course.ID)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCourseDetail(course, enrolled))
}

// Enroll POST /v1/courses/:id/enroll. Answers 201 when this call created the
// enrollment and 200 when it already existed.
func (h *CoursesHandler) Enroll(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	res, err := h.enrollments.Enroll(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	if res.Created {
		return c.Status(http.StatusCreated).JSON(dto.NewEnrollmentResponse(res.Enrollment))
	}
	return c.Status(http.StatusOK).JSON(dto.AlreadyEnrolledResponse{
		Message:    dto.AlreadyEnrolledMessage,
		Enrollment: dto.NewEnrollmentResponse(res.Enrollment),
	})
}

// Create POST /v1/courses.
func (h *CoursesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	var req dto.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	course, err := h.courses.Create(c.UserContext(), principal.UserID(), service.CourseCreateInput{
		Title:       req.Title,
		Description: req.Description,
		Tags:        req.Tags,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewCourseDetail(course, false))
}

// Publish POST /v1/courses/:id/publish.
func (h *CoursesHandler) Publish(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	course, err := h.courses.Publish(c.UserContext(), principal.UserID(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCourseDetail(course, false))
}

// UploadCover POST /v1/courses/:id/cover (multipart field "cover").
func (h *CoursesHandler) UploadCover(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	courseID := c.Params("id")

	file, err := c.FormFile("cover")
	if err != nil {
		return apperrors.NewValidationError("cover file required", nil)
	}
	if file.Size > int64(h.uploads.MaxFileSizeBytes()) {
		return apperrors.NewDomainError(apperrors.CodePayloadTooLarge,
			"file too large", http.StatusRequestEntityTooLarge,
			map[string]any{"maxSizeMB": h.uploads.MaxFileSizeMB})
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if _, ok := allowedCoverExtensions[ext]; !ok {
		return apperrors.NewValidationError("unsupported image type", map[string]any{"extension": ext})
	}

	if err := h.courses.AuthorizeCoverUpload(c.UserContext(), principal.UserID(), courseID); err != nil {
		return err
	}

	if err := os.MkdirAll(h.uploads.Dir, 0o755); err != nil {
		return apperrors.NewInternalError(err)
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(file, filepath.Join(h.uploads.Dir, name)); err != nil {
		return apperrors.NewInternalError(err)
	}

	course, err := h.courses.SetCover(c.UserContext(), principal.UserID(), courseID, path.Join(h.uploads.PublicURLPrefix, name))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCourseDetail(course, false))
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed < 0 {
		return def
	}
	return parsed
}
