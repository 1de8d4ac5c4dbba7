// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"portfolio/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	GetBySlug(ctx context.Context, slug string) (*models.Post, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Post, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Update(ctx context.Context, post *models.Post) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
	IncrementViews(ctx context.Context, id uint) (bool, error)
	ReconcileLikes(ctx context.Context) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer track("create", "posts")()
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return writeError(err)
	}
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer track("get", "posts")()
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, lookupError(err, "Post")
	}
	return &post, nil
}

func (r *postRepository) GetBySlug(ctx context.Context, slug string) (*models.Post, error) {
	defer track("get_by_slug", "posts")()
	var post models.Post
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error; err != nil {
		return nil, lookupError(err, "Post")
	}
	return &post, nil
}

// SlugExists reports whether any post other than excludeID holds slug, whatever its status.
func (r *postRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// ListByStatus orders published posts by publish date and everything else by creation date, newest first.
func (r *postRepository) ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Post, error) {
	defer track("list", "posts")()
	limit, offset = clampPage(limit, offset)

	order := "created_at DESC"
	if status == models.StatusPublished {
		order = "published_at DESC, id DESC"
	}

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	defer track("list_all", "posts")()
	limit, offset = clampPage(limit, offset)

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

// Update writes every editable column of post. Views and likes are left to their
// own atomic updates so a concurrent increment is never overwritten.
func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	defer track("update", "posts")()
	err := r.db.WithContext(ctx).
		Model(post).
		Select("*").
		Omit("id", "created_at", "views", "likes").
		Updates(post).Error
	if err != nil {
		return writeError(err)
	}
	return nil
}

// UpdateFields patches the named columns of one post. It returns NOT_FOUND when no row matched.
func (r *postRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	defer track("patch", "posts")()
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return writeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post")
	}
	return nil
}

// IncrementViews adds one view. It reports false when the post does not exist.
func (r *postRepository) IncrementViews(ctx context.Context, id uint) (bool, error) {
	defer track("increment_views", "posts")()
	res := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return false, models.NewInternalError(res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ReconcileLikes resets every denormalized like counter to the number of Like rows
// and returns how many posts changed.
func (r *postRepository) ReconcileLikes(ctx context.Context) (int64, error) {
	defer track("reconcile_likes", "posts")()
	res := r.db.WithContext(ctx).Exec(`
		UPDATE posts SET likes = (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)
		WHERE likes <> (SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id)`)
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
