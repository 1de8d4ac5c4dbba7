package service

import (
	"context"
	"strings"

	"portfolio/internal/featureflags"
	"portfolio/internal/models"
	"portfolio/internal/observability"
	"portfolio/internal/repository"
)

const maxVisitorIDLen = 64

// LikeService toggles anonymous likes. The visitor ID is supplied by the client and
// can be forged; it only keeps one browser from counting twice.
type LikeService struct {
	likes repository.LikeRepository
	posts repository.PostRepository
	flags *featureflags.Manager
}

func NewLikeService(likes repository.LikeRepository, posts repository.PostRepository, flags *featureflags.Manager) *LikeService {
	return &LikeService{likes: likes, posts: posts, flags: flags}
}

func normalizeVisitor(visitorID string) (string, error) {
	visitorID = strings.TrimSpace(visitorID)
	if visitorID == "" {
		return "", models.NewValidationError("visitor ID is required")
	}
	if len(visitorID) > maxVisitorIDLen {
		return "", models.NewValidationError("visitor ID is too long")
	}
	return visitorID, nil
}

// Toggle likes the post for visitorID, or unlikes it if already liked.
func (s *LikeService) Toggle(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error) {
	visitorID, err := normalizeVisitor(visitorID)
	if err != nil {
		return nil, err
	}

	state, err := s.likes.Toggle(ctx, postID, visitorID)
	if err != nil {
		return nil, err
	}

	direction := "unliked"
	if state.Liked {
		direction = "liked"
	}
	observability.LikeToggles.WithLabelValues(direction).Inc()

	return s.withLiveCount(ctx, postID, state)
}

// Status reports the like state without changing it. An empty visitor ID yields liked=false.
func (s *LikeService) Status(ctx context.Context, postID uint, visitorID string) (*models.LikeState, error) {
	visitorID = strings.TrimSpace(visitorID)
	if len(visitorID) > maxVisitorIDLen {
		return nil, models.NewValidationError("visitor ID is too long")
	}
	state, err := s.likes.Status(ctx, postID, visitorID)
	if err != nil {
		return nil, err
	}
	return s.withLiveCount(ctx, postID, state)
}

// Reconcile rewrites every posts.likes counter from the likes table.
func (s *LikeService) Reconcile(ctx context.Context) (int64, error) {
	return s.posts.ReconcileLikes(ctx)
}

func (s *LikeService) withLiveCount(ctx context.Context, postID uint, state *models.LikeState) (*models.LikeState, error) {
	if !s.flags.On(featureflags.LiveLikeCounts) {
		return state, nil
	}
	n, err := s.likes.Count(ctx, postID)
	if err != nil {
		return nil, err
	}
	state.Likes = n
	return state, nil
}
