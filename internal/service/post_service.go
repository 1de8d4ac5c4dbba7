package service

import (
	"context"
	"strings"

	"portfolio/internal/models"
	"portfolio/internal/observability"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/revalidate"
	"portfolio/internal/storage"
	"portfolio/internal/validation"
)

type PostService struct {
	posts       repository.PostRepository
	store       storage.ObjectStore
	authz       policy.Authorizer
	revalidator revalidate.Trigger
	now         clock
}

type CreatePostInput struct {
	Title          string   `json:"title" validate:"required,min=3,max=120"`
	Slug           string   `json:"slug" validate:"required,min=3,max=150,slug"`
	Content        string   `json:"content" validate:"required,min=50"`
	Excerpt        *string  `json:"excerpt" validate:"omitnil,max=200"`
	Tags           []string `json:"tags" validate:"min=1,max=5,dive,min=2,max=30,tag"`
	Category       string   `json:"category" validate:"required,min=2,max=30"`
	CoverImageID   string   `json:"cover_image_id" validate:"required"`
	SEOTitle       *string  `json:"seo_title" validate:"omitnil,max=60"`
	SEODescription *string  `json:"seo_description" validate:"omitnil,max=160"`
}

func NewPostService(
	posts repository.PostRepository,
	store storage.ObjectStore,
	authz policy.Authorizer,
	revalidator revalidate.Trigger,
) *PostService {
	return &PostService{
		posts:       posts,
		store:       store,
		authz:       authz,
		revalidator: triggerOrNoop(revalidator),
		now:         utcNow,
	}
}

// Create inserts a draft. The slug defaults to the slugified title and must be
// unused by every post, whatever its status.
func (s *PostService) Create(ctx context.Context, actor *models.Actor, in CreatePostInput) (*models.Post, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	if in.Slug == "" {
		in.Slug = validation.Slugify(in.Title)
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	taken, err := s.posts.SlugExists(ctx, in.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrSlugTaken
	}

	now := s.now()
	coverID := in.CoverImageID
	post := &models.Post{
		Title:          in.Title,
		Slug:           in.Slug,
		Content:        in.Content,
		Excerpt:        in.Excerpt,
		Tags:           in.Tags,
		Category:       in.Category,
		Status:         models.StatusDraft,
		AuthorID:       actor.ID,
		AuthorName:     actor.Name,
		CoverImageID:   &coverID,
		SEOTitle:       in.SEOTitle,
		SEODescription: in.SEODescription,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	observability.LogMutation(ctx, "post", "create", post.ID, map[string]any{"slug": post.Slug})
	return post, nil
}

// Publish makes a post public. Publishing an already published post only refreshes
// updatedAt and reports already_published; publishedAt keeps its first value.
func (s *PostService) Publish(ctx context.Context, actor *models.Actor, id uint) (*models.PublishResult, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &models.PublishResult{Status: models.PublishOutcomePublished}
	fields := map[string]any{"updated_at": now}
	if post.Status == models.StatusPublished {
		result.Status = models.PublishOutcomeAlreadyPublished
	} else {
		fields["status"] = models.StatusPublished
		fields["published_at"] = now
	}

	if err := s.posts.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	observability.LogMutation(ctx, "post", "publish", id, map[string]any{"outcome": result.Status})
	revalidateAfterWrite(ctx, s.revalidator, revalidate.PostPaths(post.Slug))
	return result, nil
}

// Archive hides a post from public listings. Any source state is accepted.
func (s *PostService) Archive(ctx context.Context, actor *models.Actor, id uint) error {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.posts.UpdateFields(ctx, id, map[string]any{
		"status":     models.StatusArchived,
		"updated_at": s.now(),
	}); err != nil {
		return err
	}

	observability.LogMutation(ctx, "post", "archive", id, nil)
	revalidateAfterWrite(ctx, s.revalidator, revalidate.PostPaths(post.Slug))
	return nil
}

// Update applies the present fields of patch.
func (s *PostService) Update(ctx context.Context, actor *models.Actor, id uint, patch models.PostPatch) (*models.Post, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldSlug := post.Slug

	if patch.Slug != nil && *patch.Slug != oldSlug {
		taken, err := s.posts.SlugExists(ctx, *patch.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrSlugTaken
		}
	}

	now := s.now()
	patch.Apply(post)
	if post.Status == models.StatusPublished && post.PublishedAt == nil {
		post.PublishedAt = &now
	}
	post.UpdatedAt = now

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}

	observability.LogMutation(ctx, "post", "update", id, nil)
	revalidateAfterWrite(ctx, s.revalidator, revalidate.PostPaths(oldSlug, post.Slug))
	s.resolveCover(ctx, post)
	return post, nil
}

// DeleteImage removes a stored blob. A blob that is already gone counts as deleted.
func (s *PostService) DeleteImage(ctx context.Context, actor *models.Actor, storageID string) error {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return err
	}
	if strings.TrimSpace(storageID) == "" {
		return models.NewValidationError("storage ID is required")
	}
	if err := s.store.Delete(ctx, storageID); err != nil {
		return models.NewUpstreamError("Failed to delete image", err)
	}
	return nil
}

// GetByID returns any post to the admin.
func (s *PostService) GetByID(ctx context.Context, actor *models.Actor, id uint) (*models.Post, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveCover(ctx, post)
	return post, nil
}

// GetBySlug returns a post of any status when actor is the admin, and only published
// posts otherwise.
func (s *PostService) GetBySlug(ctx context.Context, actor *models.Actor, slug string) (*models.Post, error) {
	post, err := s.posts.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if post.Status != models.StatusPublished {
		if actor == nil || s.authz.Authorize(ctx, actor) != nil {
			return nil, models.NewNotFoundError("Post")
		}
	}
	s.resolveCover(ctx, post)
	return post, nil
}

// ListPublished returns published posts, newest publish date first.
func (s *PostService) ListPublished(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	posts, err := s.posts.ListByStatus(ctx, models.StatusPublished, limit, offset)
	if err != nil {
		return nil, err
	}
	s.resolveCovers(ctx, posts)
	return posts, nil
}

func (s *PostService) ListRecent(ctx context.Context, limit int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.ListPublished(ctx, limit, 0)
}

// ListAll returns every post for the admin table, newest first.
func (s *PostService) ListAll(ctx context.Context, actor *models.Actor, limit, offset int) ([]*models.Post, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	s.resolveCovers(ctx, posts)
	return posts, nil
}

func (s *PostService) ListByStatus(ctx context.Context, actor *models.Actor, status models.Status, limit, offset int) ([]*models.Post, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, models.NewValidationError("Invalid status")
	}
	return s.posts.ListByStatus(ctx, status, limit, offset)
}

// IncrementView adds one view. A missing post is ignored.
func (s *PostService) IncrementView(ctx context.Context, id uint) error {
	_, err := s.posts.IncrementViews(ctx, id)
	return err
}

func (s *PostService) resolveCovers(ctx context.Context, posts []*models.Post) {
	for _, p := range posts {
		s.resolveCover(ctx, p)
	}
}

func (s *PostService) resolveCover(ctx context.Context, p *models.Post) {
	if s.store == nil || p.CoverImageID == nil || *p.CoverImageID == "" {
		return
	}
	u, err := s.store.URL(ctx, *p.CoverImageID)
	if err != nil {
		logResolveFailure(ctx, *p.CoverImageID, err)
		return
	}
	p.CoverImageURL = u
}
