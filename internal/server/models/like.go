package models

// LikeResult reports the material's points after a like and whether the like
// changed anything.
type LikeResult struct {
	Points  int64
	Applied bool
}
