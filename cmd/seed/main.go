// Command seed fills the database with demo posts, projects and likes.
package main

import (
	"context"
	"flag"
	"log"

	"portfolio/internal/bootstrap"
	"portfolio/internal/config"
	"portfolio/internal/database"
	"portfolio/internal/seed"
)

func main() {
	numPosts := flag.Int("posts", 12, "Number of published posts to create")
	numDrafts := flag.Int("drafts", 4, "Number of draft posts to create")
	numProjects := flag.Int("projects", 6, "Number of projects to create")
	maxLikes := flag.Int("max-likes", 25, "Upper bound of likes per published post")
	shouldClean := flag.Bool("clean", false, "Remove existing posts, projects and likes first")
	dryRun := flag.Bool("dry-run", false, "Build content without writing it")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = database.Close(db) }()

	// Content is attributed to the admin when one can be bootstrapped.
	if err := bootstrap.EnsureAdmin(context.Background(), cfg, db); err != nil {
		log.Fatalf("❌ Admin bootstrap failed: %v", err)
	}

	res, err := seed.Seed(db, seed.Options{
		Posts:       *numPosts,
		Drafts:      *numDrafts,
		Projects:    *numProjects,
		MaxLikes:    *maxLikes,
		AuthorEmail: authorEmail(cfg),
		Clean:       *shouldClean,
		DryRun:      *dryRun,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ All done! Content authored by %s <%s>.", res.Author.Name, res.Author.Email)
}

// authorEmail picks the admin account when it exists.
func authorEmail(cfg *config.Config) string {
	if cfg.AdminPassword != "" {
		return cfg.AdminEmail
	}
	return ""
}
