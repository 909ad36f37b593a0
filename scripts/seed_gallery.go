package main

import (
	"fmt"
	"log"
	"time"

	"github.com/momentlog/internal/config"
	"github.com/momentlog/internal/db"
)

// Development seed data for the gallery.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("failed to initialize database: ", err)
	}

	fmt.Println("seeding gallery records...")
	seedGalleryImages()
	fmt.Println("done")
}

func seedGalleryImages() {
	var count int64
	db.DB.Model(&db.GalleryImage{}).Count(&count)
	if count > 0 {
		fmt.Println("gallery already has records, skipping")
		return
	}

	now := time.Now()
	seeds := []db.GalleryImage{
		{
			Slug:        "desert-sunset",
			Title:       "Desert Sunset",
			Description: "Golden hour over the dunes, shot on the last evening of the trip.",
			ImageURL:    "https://images.unsplash.com/photo-1509316785289-025f5b846b35?auto=format&fit=crop&w=1600&q=80",
			Width:       1600,
			Height:      1067,
			SortOrder:   10,
			Source:      db.SourceUpload,
		},
		{
			Slug:     "harbor-morning",
			Title:    "Harbor Morning",
			ImageURL: "https://images.unsplash.com/photo-1507525428034-b723cf961d3e?auto=format&fit=crop&w=1600&q=80",
			Width:    1600,
			Height:   1067,
			Source:   db.SourceUpload,
		},
		{
			Slug:        "alley-lanterns",
			Title:       "Alley Lanterns",
			Description: "Paper lanterns strung across the old quarter.",
			ImageURL:    "https://images.unsplash.com/photo-1493976040374-85c8e12f0c0e?auto=format&fit=crop&w=1100&q=80",
			Width:       1100,
			Height:      1700,
			SortOrder:   5,
			Source:      db.SourceUpload,
		},
		{
			Slug:     "window-cat",
			Title:    "Window Cat",
			ImageURL: "https://images.unsplash.com/photo-1514888286974-6c03e2ca1dba?auto=format&fit=crop&w=1200&q=80",
			Width:    1200,
			Height:   1200,
			Source:   db.SourceUpload,
		},
		{
			Slug:     "pine-ridge-trail",
			Title:    "Pine Ridge Trail",
			ImageURL: "https://images.unsplash.com/photo-1441974231531-c6227db76b6e?auto=format&fit=crop&w=1600&q=80",
			Width:    1600,
			Height:   1050,
			Source:   db.SourceUpload,
		},
		{
			Slug:     "locket-seed-morning-coffee",
			Title:    "first coffee of the day",
			ImageURL: "https://images.unsplash.com/photo-1495474472287-4d71bcdd2085?auto=format&fit=crop&w=1080&q=80",
			Width:    1080,
			Height:   1080,
			Source:   db.SourceLocket,
			Overlay: db.MomentOverlay{
				Text:            "first coffee of the day",
				TextColor:       "#FFFFFF",
				BackgroundStart: "#7B5E3B",
				BackgroundEnd:   "#2E2216",
			},
		},
		{
			Slug:     "locket-seed-rainy-window",
			Title:    "rain again",
			ImageURL: "https://images.unsplash.com/photo-1428592953211-077101b2021b?auto=format&fit=crop&w=1080&q=80",
			Width:    1080,
			Height:   1350,
			Source:   db.SourceLocket,
			Overlay: db.MomentOverlay{
				Text:            "rain again",
				TextColor:       "#E8F1FF",
				BackgroundStart: "#3A5E8C",
				BackgroundEnd:   "#16263C",
			},
		},
		{
			Slug:     "locket-seed-video-park",
			Title:    "park run",
			ImageURL: "https://images.unsplash.com/photo-1441986300917-64674bd600d8?auto=format&fit=crop&w=1080&q=80",
			VideoURL: "https://example.com/moments/park-run.mp4",
			Width:    1080,
			Height:   1080,
			Source:   db.SourceLocket,
		},
	}

	for i := range seeds {
		seeds[i].CapturedAt = now.Add(-time.Duration(i) * 36 * time.Hour)
		if err := db.DB.Create(&seeds[i]).Error; err != nil {
			log.Printf("failed to seed %s: %v", seeds[i].Slug, err)
		}
	}

	fmt.Printf("seeded %d gallery records\n", len(seeds))
}
