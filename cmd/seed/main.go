// Command seed fills the database with demo blog data.
package main

import (
	"flag"
	"log"

	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/middleware"
	"quill/internal/seed"
)

func main() {
	defaults := seed.DefaultOptions()
	authors := flag.Int("authors", defaults.Authors, "Number of authors to create")
	readers := flag.Int("readers", defaults.Readers, "Number of readers to create")
	posts := flag.Int("posts", defaults.PostsPerAuthor, "Posts per author")
	comments := flag.Int("comments", defaults.CommentsPerPost, "Comments per published post")
	drafts := flag.Float64("drafts", defaults.DraftRatio, "Share of posts left as drafts")
	clean := flag.Bool("clean", defaults.Clean, "Delete existing blog data first")
	categories := flag.String("categories", "", "YAML category fixture (default: built-in list)")
	randomSeed := flag.Int64("seed", 0, "Random seed (0 = time based)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.InitLogger(cfg.Env)
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close() }()

	summary, err := seed.Seed(db, seed.Options{
		Authors:         *authors,
		Readers:         *readers,
		PostsPerAuthor:  *posts,
		CommentsPerPost: *comments,
		DraftRatio:      *drafts,
		Clean:           *clean,
		CategoriesFile:  *categories,
		RandomSeed:      *randomSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded %d categories, %d authors, %d readers, %d posts (%d drafts), %d comments",
		summary.Categories, summary.Authors, summary.Readers,
		summary.Published+summary.Drafts, summary.Drafts, summary.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
