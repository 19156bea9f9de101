package query

// Template is a hand-written SELECT skeleton. Only WHERE, ORDER BY and LIMIT
// vary between queries built from it.
type Template struct {
	name         string
	columns      []string
	from         string
	joins        []string
	filterable   []Column
	searchable   []Column
	defaultOrder []Order
}

func (t *Template) Name() string { return t.name }

func (t *Template) permits(c Column) bool {
	for _, p := range t.filterable {
		if p == c {
			return true
		}
	}
	return false
}

// Materials selects materials with their course and owner. Scan order:
// id, title, description, tags, points, created_at, course_id, user_id,
// comment_count, size_kb, file_type, course code, course title, faculty,
// owner name, owner points.
var Materials = &Template{
	name: "materials",
	columns: []string{
		"m.id", "m.title", "m.description", "m.tags", "m.points", "m.created_at",
		"m.course_id", "m.user_id", "m.comment_count", "m.size_kb", "m.file_type",
		"c.code", "c.title", "c.faculty", "u.name", "u.points",
	},
	from:  "materials m",
	joins: []string{"courses c ON c.id = m.course_id", "users u ON u.id = m.user_id"},
	filterable: []Column{
		MaterialID, MaterialTitle, MaterialTags, MaterialPoints, MaterialCreatedAt,
		MaterialCommentCount, MaterialCourseID, MaterialOwnerID,
		CourseID, CourseCode, CourseTitle, CourseFaculty, UserID, UserName,
	},
	searchable:   []Column{CourseCode, CourseTitle, MaterialTitle, MaterialTags, CourseFaculty},
	defaultOrder: []Order{Asc(MaterialID)},
}

// Courses selects courses with the number of materials attached. Scan order:
// id, code, title, faculty, material count.
var Courses = &Template{
	name: "courses",
	columns: []string{
		"c.id", "c.code", "c.title", "c.faculty",
		"(SELECT COUNT(*) FROM materials m WHERE m.course_id = c.id) AS material_count",
	},
	from:         "courses c",
	filterable:   []Column{CourseID, CourseCode, CourseTitle, CourseFaculty},
	searchable:   []Column{CourseCode, CourseTitle},
	defaultOrder: []Order{Asc(CourseCode)},
}

// Users selects users. Scan order: id, name, privilege, points, joined_at.
var Users = &Template{
	name:         "users",
	columns:      []string{"u.id", "u.name", "u.privilege", "u.points", "u.joined_at"},
	from:         "users u",
	filterable:   []Column{UserID, UserName, UserPoints},
	searchable:   []Column{UserName},
	defaultOrder: []Order{Asc(UserID)},
}

// Comments selects comments with the author's name. Scan order: id,
// material_id, user_id, content, created_at, author name.
var Comments = &Template{
	name:         "comments",
	columns:      []string{"cm.id", "cm.material_id", "cm.user_id", "cm.content", "cm.created_at", "u.name"},
	from:         "comments cm",
	joins:        []string{"users u ON u.id = cm.user_id"},
	filterable:   []Column{CommentID, CommentMaterialID, CommentCreatedAt, UserID},
	defaultOrder: []Order{Asc(CommentCreatedAt), Asc(CommentID)},
}
