// Package query builds parameterized read queries over fixed SELECT
// templates. Callers choose filters, ordering and a limit; identifiers come
// only from the Column values declared here, values are always bound.
package query

// Column is a permitted identifier. Only the values below exist; the zero
// Column is rejected by Build.
type Column struct {
	name string
}

func (c Column) String() string { return c.name }

// Materials template columns.
var (
	MaterialID           = Column{"m.id"}
	MaterialTitle        = Column{"m.title"}
	MaterialTags         = Column{"m.tags"}
	MaterialPoints       = Column{"m.points"}
	MaterialCreatedAt    = Column{"m.created_at"}
	MaterialCommentCount = Column{"m.comment_count"}
	MaterialCourseID     = Column{"m.course_id"}
	MaterialOwnerID      = Column{"m.user_id"}
)

// Courses columns; also joined into the materials template.
var (
	CourseID      = Column{"c.id"}
	CourseCode    = Column{"c.code"}
	CourseTitle   = Column{"c.title"}
	CourseFaculty = Column{"c.faculty"}
)

// Users columns; also joined into the materials and comments templates.
var (
	UserID     = Column{"u.id"}
	UserName   = Column{"u.name"}
	UserPoints = Column{"u.points"}
)

// Comments template columns.
var (
	CommentID         = Column{"cm.id"}
	CommentMaterialID = Column{"cm.material_id"}
	CommentCreatedAt  = Column{"cm.created_at"}
)
