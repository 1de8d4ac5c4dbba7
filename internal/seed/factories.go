// Package seed provides helpers to create demo content for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	tagPool = []string{
		"go", "postgres", "redis", "docker", "kubernetes", "react", "typescript",
		"testing", "devops", "design", "performance", "security", "cli", "web",
	}
	categoryPool = []string{"engineering", "tutorial", "notes", "career", "tooling"}
	techPool     = []string{"Go", "Fiber", "GORM", "PostgreSQL", "Redis", "MinIO", "Kafka", "React", "Next.js", "Tailwind"}
)

// Factory builds posts, projects and likes and persists them.
type Factory struct {
	db    *gorm.DB
	opts  Options
	faker *gofakeit.Faker
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a Factory bound to db. A zero opts.RandSeed uses the clock.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seed := opts.RandSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Factory{db: db, opts: opts, faker: gofakeit.New(seed), nextID: 1000}
}

// createdWithin returns a realistic timestamp within the last MaxDays.
func (f *Factory) createdWithin() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	end := time.Now()
	return f.faker.DateRange(end.Add(-time.Duration(maxDays)*24*time.Hour), end)
}

// uniqueSlug derives a slug from title with a short random suffix.
func (f *Factory) uniqueSlug(title string) string {
	base := validation.Slugify(title)
	if len(base) > 120 {
		base = base[:120]
	}
	base = strings.Join(strings.FieldsFunc(base, func(r rune) bool { return r == '-' }), "-")
	if base == "" {
		base = "item"
	}
	return fmt.Sprintf("%s-%s", base, strings.ToLower(f.faker.LetterN(6)))
}

func (f *Factory) pickTags() []string {
	n := f.faker.Number(1, 3)
	seen := make(map[string]struct{}, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		t := f.faker.RandomString(tagPool)
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		tags = append(tags, t)
	}
	return tags
}

func (f *Factory) title() string {
	return strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 7)), ".")
}

// BuildPost constructs a post by author with the given status. It does not persist it.
func (f *Factory) BuildPost(author *models.User, status models.Status, overrides ...func(*models.Post)) *models.Post {
	title := f.title()
	excerpt := f.faker.Sentence(12)
	if len(excerpt) > 200 {
		excerpt = excerpt[:200]
	}
	post := &models.Post{
		Title:      title,
		Slug:       f.uniqueSlug(title),
		Content:    f.faker.Paragraph(3, 5, 12, "\n\n"),
		Excerpt:    &excerpt,
		Tags:       f.pickTags(),
		Category:   f.faker.RandomString(categoryPool),
		Status:     status,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		Views:      int64(f.faker.Number(0, 500)),
	}
	post.CreatedAt = f.createdWithin()
	post.UpdatedAt = post.CreatedAt
	if status != models.StatusDraft {
		published := post.CreatedAt.Add(time.Duration(f.faker.Number(1, 48)) * time.Hour)
		post.PublishedAt = &published
	}

	for _, override := range overrides {
		override(post)
	}
	return post
}

// BuildProject constructs a project by author with the given status. It does not persist it.
func (f *Factory) BuildProject(author *models.User, status models.Status, overrides ...func(*models.Project)) *models.Project {
	title := fmt.Sprintf("%s %s", f.faker.AppName(), f.faker.HackerNoun())
	github := fmt.Sprintf("https://github.com/%s/%s", strings.ToLower(f.faker.LetterN(8)), validation.Slugify(title))
	live := f.faker.URL()

	order := make([]int, len(techPool))
	for i := range order {
		order[i] = i
	}
	f.faker.ShuffleInts(order)
	techs := make([]string, 0, 3)
	for _, i := range order[:3] {
		techs = append(techs, techPool[i])
	}

	project := &models.Project{
		Title:          title,
		Slug:           f.uniqueSlug(title),
		ProjectDetails: f.faker.Paragraph(2, 4, 12, "\n\n"),
		LiveURL:        &live,
		GithubURL:      &github,
		Technologies:   techs,
		Features:       []string{f.faker.HackerPhrase(), f.faker.HackerPhrase()},
		Tags:           f.pickTags(),
		Category:       f.faker.RandomString([]string{"web", "cli", "library", "infra"}),
		ImageIDs:       []string{},
		Status:         status,
		AuthorID:       author.ID,
		AuthorName:     author.Name,
	}
	project.CreatedAt = f.createdWithin()
	project.UpdatedAt = project.CreatedAt
	if status != models.StatusDraft {
		published := project.CreatedAt
		project.PublishedAt = &published
	}

	for _, override := range overrides {
		override(project)
	}
	return project
}

// CreateAuthor persists a sample user. The password is "Password-123!".
func (f *Factory) CreateAuthor(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Email: strings.ToLower(f.faker.Email()),
		Name:  f.faker.Name(),
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "Password-123!"
	} else {
		hashed, err := bcrypt.GenerateFromPassword([]byte("Password-123!"), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		user.Password = string(hashed)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateAuthor: %s", user.Email)
		return user, nil
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePostsBatch persists posts in a single DB call.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.CreateInBatches(posts, f.batchSize()).Error
}

// CreateProjectsBatch persists projects in a single DB call.
func (f *Factory) CreateProjectsBatch(projects []*models.Project) error {
	if len(projects) == 0 {
		return nil
	}
	if f.opts.DryRun {
		for _, p := range projects {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreateProjectsBatch: %d projects (no DB write)", len(projects))
		return nil
	}
	return f.db.CreateInBatches(projects, f.batchSize()).Error
}

// CreateLikes adds n likes from random visitors to post and keeps post.Likes in step.
func (f *Factory) CreateLikes(post *models.Post, n int) error {
	if n <= 0 {
		return nil
	}
	likes := make([]*models.Like, 0, n)
	for i := 0; i < n; i++ {
		likes = append(likes, &models.Like{VisitorID: uuid.NewString(), PostID: post.ID, CreatedAt: f.createdWithin()})
	}
	post.Likes += int64(n)
	if f.opts.DryRun {
		return nil
	}
	return f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(likes, f.batchSize()).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", post.ID).
			UpdateColumn("likes", gorm.Expr("likes + ?", n)).Error
	})
}

func (f *Factory) batchSize() int {
	if f.opts.BatchSize > 0 {
		return f.opts.BatchSize
	}
	return 100
}
