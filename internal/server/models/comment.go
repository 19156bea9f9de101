package models

import "time"

// MaxCommentLength is the comment limit in characters.
const MaxCommentLength = 300

type Comment struct {
	ID         int64
	MaterialID int64
	UserID     int64
	Content    string
	CreatedAt  time.Time
}

type CommentView struct {
	Comment
	AuthorName string
}
