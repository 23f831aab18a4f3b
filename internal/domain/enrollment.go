package domain

import "time"

// Enrollment records that a user joined a course. At most one exists per (user, course).
type Enrollment struct {
	ID         string
	UserID     string
	CourseID   string
	EnrolledAt time.Time
}

// EnrollmentResult tells the caller whether the enrollment was created by this call.
type EnrollmentResult struct {
	Enrollment *Enrollment
	Created    bool
}
