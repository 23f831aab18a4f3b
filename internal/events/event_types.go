package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventEnrollmentCreated EventType = "enrollment_created"
	EventCoursePublished   EventType = "course_published"
	EventUserRegistered    EventType = "user_registered"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// EnrollmentCreatedPayload payload.
type EnrollmentCreatedPayload struct {
	EnrollmentID string `json:"enrollment_id"`
	UserID       string `json:"user_id"`
	CourseID     string `json:"course_id"`
	CourseTitle  string `json:"course_title"`
}

// CoursePublishedPayload payload.
type CoursePublishedPayload struct {
	CourseID string   `json:"course_id"`
	AuthorID string   `json:"author_id"`
	Title    string   `json:"title"`
	Tags     []string `json:"tags"`
}

// UserRegisteredPayload payload.
type UserRegisteredPayload struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}
