package domain

import "time"

// Course is a unit of learning content owned by an author.
type Course struct {
	ID          string
	AuthorID    string
	Title       string
	Description string
	Tags        []string
	IsPublished bool
	CoverURL    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VisibleTo reports whether the course can be read by the given user.
// Drafts are only visible to their author.
func (c *Course) VisibleTo(userID string) bool {
	return c.IsPublished || c.AuthorID == userID
}
