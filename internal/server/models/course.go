package models

import "slices"

// Faculties is the closed set of faculty tags a course may carry.
var Faculties = []string{"HUM", "IT", "JSBE", "EDU", "SPORT", "SCIENCE", "YTK", "KIELI", "MUU"}

// ValidFaculty reports whether f is one of Faculties.
func ValidFaculty(f string) bool {
	return slices.Contains(Faculties, f)
}

type Course struct {
	ID      int64
	Code    string
	Title   string
	Faculty string
}

// CourseView is a course row from the listing query.
type CourseView struct {
	Course
	MaterialCount int64
}
