package httpapi

import (
	"time"

	"github.com/dmitrijs2005/coursevault/internal/server/models"
)

type materialJSON struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Tags         string    `json:"tags"`
	Points       int64     `json:"points"`
	CreatedAt    time.Time `json:"created_at"`
	CourseID     int64     `json:"course_id"`
	CourseCode   string    `json:"course_code"`
	CourseTitle  string    `json:"course_title"`
	Faculty      string    `json:"faculty"`
	OwnerID      int64     `json:"owner_id"`
	OwnerName    string    `json:"owner_name"`
	OwnerPoints  int64     `json:"owner_points"`
	CommentCount int64     `json:"comment_count"`
	SizeKB       int64     `json:"size_kb"`
	FileType     string    `json:"file_type"`
	Path         string    `json:"path,omitempty"`
}

func toMaterialJSON(v *models.MaterialView, path string) materialJSON {
	return materialJSON{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Tags:         v.Tags,
		Points:       v.Points,
		CreatedAt:    v.CreatedAt,
		CourseID:     v.CourseID,
		CourseCode:   v.CourseCode,
		CourseTitle:  v.CourseTitle,
		Faculty:      v.Faculty,
		OwnerID:      v.UserID,
		OwnerName:    v.OwnerName,
		OwnerPoints:  v.OwnerPoints,
		CommentCount: v.CommentCount,
		SizeKB:       v.SizeKB,
		FileType:     v.FileType,
		Path:         path,
	}
}

type courseJSON struct {
	ID            int64  `json:"id"`
	Code          string `json:"code"`
	Title         string `json:"title"`
	Faculty       string `json:"faculty"`
	MaterialCount int64  `json:"material_count"`
}

type commentJSON struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type userJSON struct {
	ID       int64     `json:"id"`
	Name     string    `json:"name"`
	Points   int64     `json:"points"`
	JoinedAt time.Time `json:"joined_at"`
}
