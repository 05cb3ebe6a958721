package domain

// Bookmark is the saved chapter index for one story. It lives apart from the
// story record; absence means the story has no bookmark.
type Bookmark struct {
	StoryID int64 `json:"storyId"`
	Index   int   `json:"index"`
}
