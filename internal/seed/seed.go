package seed

import (
	"errors"
	"fmt"
	"log"

	"portfolio/internal/models"

	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	Posts    int
	Drafts   int
	Projects int
	// MaxLikes bounds the random likes added to each published post.
	MaxLikes int

	// AuthorEmail selects an existing account as author. Empty picks the first user
	// or creates a demo author when none exists.
	AuthorEmail string

	Clean      bool
	DryRun     bool
	SkipBcrypt bool
	MaxDays    int
	BatchSize  int
	RandSeed   int64
}

// Result summarizes a seeding run.
type Result struct {
	Author   *models.User
	Posts    []*models.Post
	Projects []*models.Project
	Likes    int
}

// Seed populates the database with demo posts, drafts, projects and likes.
func Seed(db *gorm.DB, opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d posts, %d drafts and %d projects...", opts.Posts, opts.Drafts, opts.Projects)

	if opts.Clean && !opts.DryRun {
		if err := clearContent(db); err != nil {
			return nil, fmt.Errorf("failed to clear content: %w", err)
		}
	}

	f := NewFactory(db, opts)
	author, err := resolveAuthor(db, f, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve author: %w", err)
	}

	res := &Result{Author: author}

	for i := 0; i < opts.Posts; i++ {
		res.Posts = append(res.Posts, f.BuildPost(author, models.StatusPublished))
	}
	for i := 0; i < opts.Drafts; i++ {
		res.Posts = append(res.Posts, f.BuildPost(author, models.StatusDraft))
	}
	if err := f.CreatePostsBatch(res.Posts); err != nil {
		return nil, fmt.Errorf("failed to create posts: %w", err)
	}
	log.Printf("✓ %d posts created", len(res.Posts))

	if opts.MaxLikes > 0 {
		for _, p := range res.Posts {
			if p.Status != models.StatusPublished {
				continue
			}
			n := f.faker.Number(0, opts.MaxLikes)
			if err := f.CreateLikes(p, n); err != nil {
				return nil, fmt.Errorf("failed to create likes for post %d: %w", p.ID, err)
			}
			res.Likes += n
		}
		log.Printf("✓ %d likes created", res.Likes)
	}

	for i := 0; i < opts.Projects; i++ {
		status := models.StatusPublished
		if i%4 == 3 {
			status = models.StatusDraft
		}
		res.Projects = append(res.Projects, f.BuildProject(author, status))
	}
	if err := f.CreateProjectsBatch(res.Projects); err != nil {
		return nil, fmt.Errorf("failed to create projects: %w", err)
	}
	log.Printf("✓ %d projects created", len(res.Projects))

	log.Println("🎉 Database seeding completed successfully!")
	return res, nil
}

func resolveAuthor(db *gorm.DB, f *Factory, opts Options) (*models.User, error) {
	if opts.DryRun {
		return f.CreateAuthor()
	}

	var user models.User
	q := db.Order("id ASC")
	if opts.AuthorEmail != "" {
		q = q.Where("LOWER(email) = LOWER(?)", opts.AuthorEmail)
	}
	err := q.First(&user).Error
	switch {
	case err == nil:
		return &user, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	case opts.AuthorEmail != "":
		return nil, fmt.Errorf("no account with email %q", opts.AuthorEmail)
	}
	return f.CreateAuthor()
}

// clearContent removes likes, posts and projects. Accounts are kept.
func clearContent(db *gorm.DB) error {
	log.Println("🗑️  Clearing existing content...")
	return db.Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Like{}, &models.Post{}, &models.Project{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
