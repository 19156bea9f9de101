package models

import "time"

type Material struct {
	ID           int64
	Title        string
	Description  string
	Tags         string
	Points       int64
	CreatedAt    time.Time
	CourseID     int64
	UserID       int64
	CommentCount int64
	SizeKB       int64
	FileType     string
}

// MaterialView is a material joined with its course and owner.
type MaterialView struct {
	Material
	CourseCode  string
	CourseTitle string
	Faculty     string
	OwnerName   string
	OwnerPoints int64
}

// NewMaterial is the user-supplied part of a material.
type NewMaterial struct {
	CourseID    int64  `validate:"gt=0"`
	Title       string `validate:"required,max=100"`
	Description string `validate:"max=2000"`
	Tags        string `validate:"max=200"`
}

// Named sort orders for material listings.
const (
	SortNewest        = "newest"
	SortMostCommented = "most-commented"
	SortMostLiked     = "most-liked"
)

// ListCriteria selects a page of materials. At most one dimension applies,
// in the order Search, Sort, Faculty, OwnerID, CourseID.
type ListCriteria struct {
	Search   string
	Sort     string
	Faculty  string
	OwnerID  int64
	CourseID int64
	Limit    int
}
