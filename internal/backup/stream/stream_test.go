package stream

import (
	"archive/zip"
	"bytes"
	"crypto/sha256"
	"io"
	"strings"
	"testing"
)

type testBookmark struct {
	StoryID int64 `json:"storyId"`
	Index   int   `json:"index"`
}

func TestWriterReader_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	written := sha256.New()
	w, err := NewWriter(zw, "bookmarks.jsonl", written)
	if err != nil {
		t.Fatal(err)
	}

	entities := []testBookmark{{StoryID: 1, Index: 0}, {StoryID: 2, Index: 4}, {StoryID: 3, Index: 1}}
	for _, e := range entities {
		if err := w.Write(e); err != nil {
			t.Fatal(err)
		}
	}
	if w.Count() != 3 {
		t.Errorf("Count() = %d, want 3", w.Count())
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}
	rc, err := OpenFile(zr, "bookmarks.jsonl")
	if err != nil {
		t.Fatal(err)
	}

	read := sha256.New()
	var got []testBookmark
	for entity, err := range NewReader[testBookmark](rc, read).All() {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, entity)
	}

	if len(got) != len(entities) {
		t.Fatalf("got %d entities, want %d", len(got), len(entities))
	}
	for i, e := range got {
		if e != entities[i] {
			t.Errorf("entity %d: got %+v, want %+v", i, e, entities[i])
		}
	}
	if !bytes.Equal(written.Sum(nil), read.Sum(nil)) {
		t.Error("tee checksums differ between write and read")
	}
}

func TestOpenFile_NotFound(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := OpenFile(zr, "stories.jsonl"); err != ErrFileNotFound {
		t.Errorf("got %v, want ErrFileNotFound", err)
	}
}

func TestReader_ContinuesOnParseError(t *testing.T) {
	jsonl := `{"storyId":1,"index":0}
{bad json}

{"storyId":2,"index":3}
`
	reader := NewReader[testBookmark](io.NopCloser(strings.NewReader(jsonl)), nil)

	var good []testBookmark
	var errs int
	for entity, err := range reader.All() {
		if err != nil {
			errs++
			continue
		}
		good = append(good, entity)
	}

	if len(good) != 2 {
		t.Errorf("got %d good entities, want 2", len(good))
	}
	if errs != 1 {
		t.Errorf("got %d errors, want 1", errs)
	}
}

func TestReader_LongLine(t *testing.T) {
	long := `{"storyId":1,"index":0,"pad":"` + strings.Repeat("x", 200*1024) + `"}` + "\n"
	reader := NewReader[testBookmark](io.NopCloser(strings.NewReader(long)), nil)

	n := 0
	for _, err := range reader.All() {
		if err != nil {
			t.Fatal(err)
		}
		n++
	}
	if n != 1 {
		t.Errorf("got %d entities, want 1", n)
	}
}
