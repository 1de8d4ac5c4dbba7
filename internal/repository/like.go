package repository

import (
	"context"
	"errors"

	"portfolio/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores anonymous per-visitor likes and keeps posts.likes in step.
type LikeRepository interface {
	Toggle(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error)
	Status(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error)
	Count(ctx context.Context, postID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a GORM-backed LikeRepository.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle flips the visitor's like inside one transaction and returns the state read
// back within it. The counter is decremented with a floor of zero.
func (r *likeRepository) Toggle(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error) {
	defer track("toggle", "likes")()

	var state models.LikeState
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post models.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "likes").
			First(&post, postID).Error; err != nil {
			return lookupError(err, "Post")
		}

		var existing models.Like
		err := tx.Where("visitor_id = ? AND post_id = ?", visitorID, postID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("CASE WHEN likes > 0 THEN likes - 1 ELSE 0 END")).Error; err != nil {
				return err
			}
			state.Liked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&models.Like{VisitorID: visitorID, PostID: postID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&models.Post{}).Where("id = ?", postID).
				UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error; err != nil {
				return err
			}
			state.Liked = true
		default:
			return err
		}

		return tx.Model(&models.Post{}).Where("id = ?", postID).Pluck("likes", &state.Likes).Error
	})
	if err != nil {
		var appErr *models.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, models.NewInternalError(err)
	}
	return &state, nil
}

func (r *likeRepository) Status(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error) {
	defer track("status", "likes")()

	var post models.Post
	if err := r.db.WithContext(ctx).Select("id", "likes").First(&post, postID).Error; err != nil {
		return nil, lookupError(err, "Post")
	}

	state := &models.LikeState{Likes: post.Likes}
	if visitorID == "" {
		return state, nil
	}

	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("visitor_id = ? AND post_id = ?", visitorID, postID).
		Count(&n).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	state.Liked = n > 0
	return state, nil
}

// Count returns the number of Like rows for a post, independent of the denormalized counter.
func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
