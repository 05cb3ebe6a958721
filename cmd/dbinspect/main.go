// Package main prints a summary of a Chronicles database without modifying it.
//
// Usage:
//
//	DB_PATH=~/Chronicles/db go run ./cmd/dbinspect
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Chronicles/db")
	}

	s, err := store.New(store.Options{Path: dbPath, ReadOnly: true}, nil)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	stories, err := s.LoadLibrary(ctx)
	switch {
	case errors.Is(err, store.ErrCorruptLibrary):
		fmt.Printf("Library blob is corrupt: %v\n\n", err)
	case err != nil:
		log.Fatalf("Failed to load library: %v", err)
	}

	totalChapters := 0
	withLore := 0
	for i, st := range stories {
		totalChapters += st.ChapterCount()
		if st.HasLore() {
			withLore++
		}
		// Show the first few stories in library order.
		if i < 5 {
			printStory(st)
		}
	}
	if len(stories) > 5 {
		fmt.Printf("... and %d more stories\n\n", len(stories)-5)
	}

	bookmarks, err := s.ListBookmarks(ctx)
	if err != nil {
		log.Fatalf("Failed to list bookmarks: %v", err)
	}
	unlocks, err := s.ListUnlocks(ctx)
	if err != nil {
		log.Fatalf("Failed to list achievements: %v", err)
	}
	quarantined, err := s.QuarantinedKeys(ctx)
	if err != nil {
		log.Fatalf("Failed to list quarantined blobs: %v", err)
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Total stories: %d\n", len(stories))
	fmt.Printf("Stories with lore: %d\n", withLore)
	fmt.Printf("Total chapters: %d\n", totalChapters)
	if len(stories) > 0 {
		fmt.Printf("Average chapters per story: %.1f\n", float64(totalChapters)/float64(len(stories)))
	}
	fmt.Printf("Bookmarks: %d\n", len(bookmarks))
	fmt.Printf("Achievements unlocked: %d\n", len(unlocks))
	for _, u := range unlocks {
		fmt.Printf("  %s (%s)\n", u.ID, u.Date)
	}
	if len(quarantined) > 0 {
		fmt.Printf("Quarantined library blobs: %d\n", len(quarantined))
		for _, key := range quarantined {
			fmt.Printf("  %s\n", key)
		}
	}
}

func printStory(st *domain.Story) {
	fmt.Printf("Story: %s\n", st.Title)
	fmt.Printf("  ID: %d\n", st.ID)
	if st.Genre != "" {
		fmt.Printf("  Genre: %s\n", st.Genre)
	}
	fmt.Printf("  Created: %s\n", st.CreatedAt)
	fmt.Printf("  Chapters: %d\n", st.ChapterCount())
	for i, ch := range st.Chapters {
		if i == 3 {
			fmt.Printf("    ... and %d more chapters\n", len(st.Chapters)-3)
			break
		}
		fmt.Printf("    [%d] %s\n", i, ch.Title)
	}
	fmt.Println()
}
