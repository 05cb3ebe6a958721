package reader

import (
	"fmt"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/media"
)

// Placeholder texts.
const (
	NoChaptersText   = "Esta historia aún no tiene capítulos."
	MissingStoryText = "La historia ya no existe."
)

// Direction of an in-flight page turn.
type Direction string

// Turn directions.
const (
	DirectionNone Direction = ""
	DirectionNext Direction = "next"
	DirectionPrev Direction = "prev"
)

// State is the pagination state of a session.
type State struct {
	Open    bool  `json:"open"`
	StoryID int64 `json:"storyId"`
	// Index is the committed chapter index. It only changes when a turn commits.
	Index     int       `json:"index"`
	Turning   bool      `json:"turning"`
	Direction Direction `json:"direction,omitempty"`
}

// Input is everything Render needs. Story is nil when the open story no
// longer exists.
type Input struct {
	State       State
	Story       *domain.Story
	Bookmark    int
	HasBookmark bool
	CoverDir    string
}

// LeftPage is the cover side of the book.
type LeftPage struct {
	Cover        string `json:"cover"`
	Fallback     string `json:"fallback"`
	Title        string `json:"title"`
	Genre        string `json:"genre"`
	CreatedAt    string `json:"createdAt"`
	Progress     string `json:"progress"`
	ChapterCount int    `json:"chapterCount"`
}

// RightPage is the text side of the book.
type RightPage struct {
	ChapterID    int64    `json:"chapterId,omitempty"`
	ChapterTitle string   `json:"chapterTitle"`
	Paragraphs   []string `json:"paragraphs"`
	Placeholder  string   `json:"placeholder,omitempty"`
}

// View is the rendered reader.
type View struct {
	Open       bool      `json:"open"`
	StoryID    int64     `json:"storyId,omitempty"`
	Empty      bool      `json:"empty"`
	Missing    bool      `json:"missing"`
	Turning    bool      `json:"turning"`
	Direction  Direction `json:"direction,omitempty"`
	Left       LeftPage  `json:"left"`
	Right      RightPage `json:"right"`
	PageNumber int       `json:"pageNumber"`
	Bookmarked bool      `json:"bookmarked"`
	CanNext    bool      `json:"canNext"`
	CanPrev    bool      `json:"canPrev"`
}

// Render computes the reader view. It is pure and never fails: a closed
// session, a missing story, a story without chapters and an out-of-range index
// all produce a placeholder view.
func Render(in Input) View {
	if !in.State.Open {
		return View{Right: RightPage{Paragraphs: []string{}}}
	}

	v := View{
		Open:      true,
		StoryID:   in.State.StoryID,
		Turning:   in.State.Turning,
		Direction: in.State.Direction,
		Right:     RightPage{Paragraphs: []string{}},
	}

	if in.Story == nil {
		v.Missing = true
		v.Right.Placeholder = MissingStoryText
		v.Left.Cover = media.FallbackCover
		v.Left.Fallback = media.FallbackCover
		return v
	}

	story := in.Story
	total := story.ChapterCount()
	index := story.ClampIndex(in.State.Index)

	v.Left = LeftPage{
		Cover:        media.ResolveCover(story.Cover, in.CoverDir),
		Fallback:     media.FallbackCover,
		Title:        story.Title,
		Genre:        story.Genre,
		CreatedAt:    story.CreatedAt,
		ChapterCount: total,
	}

	if total == 0 {
		v.Empty = true
		v.Left.Progress = "Sin capítulos"
		v.Right.Placeholder = NoChaptersText
		return v
	}

	chapter, _ := story.Chapter(index)
	v.Left.Progress = fmt.Sprintf("Capítulo %d de %d", index+1, total)
	v.Right.ChapterID = chapter.ID
	v.Right.ChapterTitle = chapter.Title
	v.Right.Paragraphs = chapter.Paragraphs()
	v.PageNumber = index + 1
	v.Bookmarked = in.HasBookmark && in.Bookmark == index
	v.CanNext = !in.State.Turning && index+1 < total
	v.CanPrev = !in.State.Turning && index > 0
	return v
}
