package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/course-service/internal/domain"
)

// DefaultListLimit caps listings that ask for no limit.
const DefaultListLimit = 100

// CourseFilter narrows published course listings.
type CourseFilter struct {
	Tag    string
	Limit  int
	Offset int
}

// CourseRepository encapsulates course persistence.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) error
	Update(ctx context.Context, course *domain.Course) error
	GetByID(ctx context.Context, id string) (*domain.Course, error)
	ListPublished(ctx context.Context, filter CourseFilter) ([]domain.Course, error)
	ListPublishedTags(ctx context.Context) ([]string, error)
	// ListByAuthor returns every course of the author, drafts included, oldest first.
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Course, error)
}

type courseRepository struct {
	pool *pgxpool.Pool
}

// NewCourseRepository instantiates repository.
func NewCourseRepository(pool *pgxpool.Pool) CourseRepository {
	return &courseRepository{pool: pool}
}

const courseColumns = `id, author_id, title, description, tags, is_published, cover_url, created_at, updated_at`

func (r *courseRepository) Create(ctx context.Context, course *domain.Course) error {
	const query = `
        INSERT INTO courses (author_id, title, description, tags, is_published, cover_url)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	if course.Tags == nil {
		course.Tags = []string{}
	}
	err := r.pool.QueryRow(ctx, query,
		course.AuthorID,
		course.Title,
		course.Description,
		course.Tags,
		course.IsPublished,
		course.CoverURL,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *courseRepository) Update(ctx context.Context, course *domain.Course) error {
	const query = `
        UPDATE courses SET title=$1, description=$2, tags=$3, is_published=$4, cover_url=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		course.Title,
		course.Description,
		course.Tags,
		course.IsPublished,
		course.CoverURL,
		course.ID,
	).Scan(&course.UpdatedAt)
	if err != nil {
		return mapReadError(err)
	}
	return nil
}

func (r *courseRepository) GetByID(ctx context.Context, id string) (*domain.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id=$1`
	course, err := scanCourse(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapReadError(err)
	}
	return course, nil
}

func (r *courseRepository) ListPublished(ctx context.Context, filter CourseFilter) ([]domain.Course, error) {
	clauses := []string{"is_published = TRUE"}
	args := []any{}

	if tag := strings.TrimSpace(filter.Tag); tag != "" {
		args = append(args, tag)
		clauses = append(clauses, fmt.Sprintf("$%d = ANY(tags)", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM courses WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		courseColumns, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *course)
	}
	return result, rows.Err()
}

func (r *courseRepository) ListPublishedTags(ctx context.Context) ([]string, error) {
	const query = `
        SELECT DISTINCT tag FROM courses, UNNEST(tags) AS tag
        WHERE is_published = TRUE
        ORDER BY tag`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (r *courseRepository) ListByAuthor(ctx context.Context, authorID string) ([]domain.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE author_id = $1 ORDER BY created_at, id`, courseColumns)

	rows, err := r.pool.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Course{}
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *course)
	}
	return result, rows.Err()
}

func scanCourse(row pgx.Row) (*domain.Course, error) {
	var course domain.Course
	if err := row.Scan(
		&course.ID,
		&course.AuthorID,
		&course.Title,
		&course.Description,
		&course.Tags,
		&course.IsPublished,
		&course.CoverURL,
		&course.CreatedAt,
		&course.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &course, nil
}
