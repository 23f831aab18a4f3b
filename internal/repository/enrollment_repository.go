package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// EnrolledCourse pairs an enrollment with the course it refers to.
type EnrolledCourse struct {
	Enrollment domain.Enrollment
	Course     domain.Course
}

// EnrollmentRepository manages enrollment persistence.
type EnrollmentRepository interface {
	// CreateIfAbsent inserts the (user, course) pair unless it exists and
	// returns the stored row together with whether this call created it.
	CreateIfAbsent(ctx context.Context, userID, courseID string) (*domain.Enrollment, bool, error)
	Get(ctx context.Context, userID, courseID string) (*domain.Enrollment, error)
	ListByUser(ctx context.Context, userID string) ([]EnrolledCourse, error)
}

type enrollmentRepository struct {
	pool *pgxpool.Pool
}

// NewEnrollmentRepository constructs repository.
func NewEnrollmentRepository(pool *pgxpool.Pool) EnrollmentRepository {
	return &enrollmentRepository{pool: pool}
}

func (r *enrollmentRepository) CreateIfAbsent(ctx context.Context, userID, courseID string) (*domain.Enrollment, bool, error) {
	const query = `
        INSERT INTO enrollments (user_id, course_id)
        VALUES ($1, $2)
        ON CONFLICT (user_id, course_id) DO NOTHING
        RETURNING id, user_id, course_id, enrolled_at`

	var e domain.Enrollment
	err := r.pool.QueryRow(ctx, query, userID, courseID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt)
	switch {
	case err == nil:
		return &e, true, nil
	case errors.Is(err, pgx.ErrNoRows), isUniqueViolation(err):
		// Another request won the insert; report the row it stored.
		existing, getErr := r.Get(ctx, userID, courseID)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, false, nil
	case hasPgCode(err, pgForeignKeyViolation):
		return nil, false, ErrNotFound
	default:
		return nil, false, fmt.Errorf("insert enrollment: %w", err)
	}
}

func (r *enrollmentRepository) Get(ctx context.Context, userID, courseID string) (*domain.Enrollment, error) {
	const query = `
        SELECT id, user_id, course_id, enrolled_at
        FROM enrollments WHERE user_id=$1 AND course_id=$2`
	var e domain.Enrollment
	if err := r.pool.QueryRow(ctx, query, userID, courseID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt); err != nil {
		return nil, mapReadError(err)
	}
	return &e, nil
}

func (r *enrollmentRepository) ListByUser(ctx context.Context, userID string) ([]EnrolledCourse, error) {
	const query = `
        SELECT e.id, e.user_id, e.course_id, e.enrolled_at,
               c.id, c.author_id, c.title, c.description, c.tags, c.is_published, c.cover_url, c.created_at, c.updated_at
        FROM enrollments e
        JOIN courses c ON c.id = e.course_id
        WHERE e.user_id=$1
        ORDER BY e.enrolled_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []EnrolledCourse{}
	for rows.Next() {
		var item EnrolledCourse
		if err := rows.Scan(
			&item.Enrollment.ID,
			&item.Enrollment.UserID,
			&item.Enrollment.CourseID,
			&item.Enrollment.EnrolledAt,
			&item.Course.ID,
			&item.Course.AuthorID,
			&item.Course.Title,
			&item.Course.Description,
			&item.Course.Tags,
			&item.Course.IsPublished,
			&item.Course.CoverURL,
			&item.Course.CreatedAt,
			&item.Course.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, rows.Err()
}
