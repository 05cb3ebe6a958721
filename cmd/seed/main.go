// Package main seeds a Chronicles database with sample stories.
//
// The stories go through the library service, so ids, creation dates and
// lore sanitising behave exactly as they would through the API.
//
// Usage:
//
//	DB_PATH=~/Chronicles/db go run ./cmd/seed
//	DB_PATH=~/Chronicles/db go run ./cmd/seed --copies 3  # Repeat the set for a larger grid
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/chroniclesapp/chronicles-server/internal/domain"
	"github.com/chroniclesapp/chronicles-server/internal/logger"
	"github.com/chroniclesapp/chronicles-server/internal/service"
	"github.com/chroniclesapp/chronicles-server/internal/store"
)

var copies = flag.Int("copies", 1, "How many times to add the sample set")

type sample struct {
	draft    domain.StoryDraft
	chapters []domain.ChapterDraft
	lore     *domain.Lore
}

var samples = []sample{
	{
		draft: domain.StoryDraft{Title: "El dragón de cristal", Genre: "Fantasía", Cover: "dragon.png"},
		chapters: []domain.ChapterDraft{
			{Title: "La cueva", Content: "Las montañas guardaban un secreto que nadie se atrevía a nombrar."},
			{Title: "El pacto", Content: "El dragón habló por primera vez en mil años.\n\nIlse no retrocedió."},
			{Title: "La caída", Content: "Cuando el cristal se quebró, la luz cubrió el valle entero."},
		},
		lore: &domain.Lore{
			Synopsis:   "Una aprendiz de herrera descubre que el dragón del norte no está dormido.",
			PowerScale: "Aprendiz, Caballero, Archimago, Dragón",
			WorldRules: "La magia se paga con recuerdos.",
			Characters: []domain.Character{
				{Name: "Ilse", Desc: "Aprendiz de herrera, terca y curiosa."},
				{Name: "Vaerth", Desc: "El dragón de cristal."},
			},
			Album: []domain.AlbumEntry{
				{URL: "vaerth.png", Name: "Vaerth", Desc: "Boceto del dragón", Rarity: domain.RarityLegendary},
				{URL: "mapa.png", Name: "Mapa del norte", Rarity: domain.RarityRare},
			},
		},
	},
	{
		draft: domain.StoryDraft{Title: "Asesinato en el tren nocturno", Genre: "Misterio"},
		chapters: []domain.ChapterDraft{
			{Title: "Vagón siete", Content: "El revisor encontró la puerta cerrada por dentro."},
			{Title: "Coartadas", Content: "Nadie había dormido, pero todos decían haberlo hecho."},
		},
	},
	{
		draft: domain.StoryDraft{Title: "Ecos de la estación", Genre: "Ciencia ficción", Cover: "https://example.com/estacion.jpg"},
		chapters: []domain.ChapterDraft{
			{Title: "Señal", Content: "La estación llevaba veinte años en silencio."},
		},
		lore: &domain.Lore{
			Synopsis: "Una técnica de mantenimiento escucha una voz en la frecuencia muerta.",
		},
	},
	{
		draft: domain.StoryDraft{Title: "Borrador sin capítulos", Genre: "Romance"},
	},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Chronicles/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(store.Options{Path: dbPath}, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	library := service.NewLibraryService(service.LibraryDeps{
		Store:  s,
		Logger: logger.Discard(),
	})
	if err := library.Load(ctx); err != nil {
		log.Fatalf("Failed to load library: %v", err)
	}

	fmt.Printf("Library holds %d stories\n", len(library.List(ctx)))

	created := 0
	for n := 0; n < *copies; n++ {
		for _, smp := range samples {
			if err := seedStory(ctx, library, smp); err != nil {
				log.Printf("Failed to seed %q: %v", smp.draft.Title, err)
				continue
			}
			created++
		}
	}

	fmt.Printf("\nSeeded %d stories, library now holds %d\n", created, len(library.List(ctx)))
}

func seedStory(ctx context.Context, library *service.LibraryService, smp sample) error {
	story, err := library.Create(ctx, smp.draft)
	if err != nil {
		return err
	}
	for _, ch := range smp.chapters {
		if _, err := library.AddChapter(ctx, story.ID, ch); err != nil {
			return fmt.Errorf("add chapter %q: %w", ch.Title, err)
		}
	}
	if smp.lore != nil {
		if _, err := library.SaveLore(ctx, story.ID, *smp.lore); err != nil {
			return fmt.Errorf("save lore: %w", err)
		}
	}
	fmt.Printf("  + %s (%d chapters)\n", story.Title, len(smp.chapters))
	return nil
}
