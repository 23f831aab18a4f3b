package dto

import (
	"time"

	"github.com/spec-kit/course-service/internal/domain"
	"github.com/spec-kit/course-service/internal/repository"
)

// AlreadyEnrolledMessage is returned when an enrollment already existed.
const AlreadyEnrolledMessage = "already enrolled"

// CreateCourseRequest payload.
type CreateCourseRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// CourseSummary response.
type CourseSummary struct {
	ID          string    `json:"id"`
	AuthorID    string    `json:"authorId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CoverURL    *string   `json:"coverUrl"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CourseDetailResponse provides full course info.
type CourseDetailResponse struct {
	CourseSummary
	IsPublished bool      `json:"isPublished"`
	IsEnrolled  bool      `json:"isEnrolled"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// EnrollmentResponse is returned when an enrollment is created.
type EnrollmentResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// AlreadyEnrolledResponse is returned for repeated enrollments.
type AlreadyEnrolledResponse struct {
	Message    string             `json:"message"`
	Enrollment EnrollmentResponse `json:"enrollment"`
}

// EnrolledCourseResponse lists a course the caller is enrolled in.
type EnrolledCourseResponse struct {
	EnrollmentResponse
	Course CourseSummary `json:"course"`
}

// NewCourseSummary maps a domain course.
func NewCourseSummary(course *domain.Course) CourseSummary {
	tags := course.Tags
	if tags == nil {
		tags = []string{}
	}
	return CourseSummary{
		ID:          course.ID,
		AuthorID:    course.AuthorID,
		Title:       course.Title,
		Description: course.Description,
		Tags:        tags,
		CoverURL:    course.CoverURL,
		CreatedAt:   course.CreatedAt,
	}
}

// NewCourseSummaries maps a course list, never returning nil.
func NewCourseSummaries(courses []domain.Course) []CourseSummary {
	items := make([]CourseSummary, 0, len(courses))
	for i := range courses {
		items = append(items, NewCourseSummary(&courses[i]))
	}
	return items
}

// NewCourseDetail maps a course for the detail endpoint.
func NewCourseDetail(course *domain.Course, enrolled bool) CourseDetailResponse {
	return CourseDetailResponse{
		CourseSummary: NewCourseSummary(course),
		IsPublished:   course.IsPublished,
		IsEnrolled:    enrolled,
		UpdatedAt:     course.UpdatedAt,
	}
}

// NewEnrollmentResponse maps a domain enrollment.
func NewEnrollmentResponse(e *domain.Enrollment) EnrollmentResponse {
	return EnrollmentResponse{
		ID:         e.ID,
		UserID:     e.UserID,
		CourseID:   e.CourseID,
		EnrolledAt: e.EnrolledAt,
	}
}

// NewEnrolledCourses maps the caller's enrollments.
func NewEnrolledCourses(items []repository.EnrolledCourse) []EnrolledCourseResponse {
	resp := make([]EnrolledCourseResponse, 0, len(items))
	for i := range items {
		resp = append(resp, EnrolledCourseResponse{
			EnrollmentResponse: NewEnrollmentResponse(&items[i].Enrollment),
			Course:             NewCourseSummary(&items[i].Course),
		})
	}
	return resp
}
