package service

import (
	"context"
	"slices"
	"strings"

	"portfolio/internal/models"
	"portfolio/internal/observability"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/revalidate"
	"portfolio/internal/storage"
	"portfolio/internal/validation"
)

type ProjectService struct {
	projects    repository.ProjectRepository
	store       storage.ObjectStore
	authz       policy.Authorizer
	revalidator revalidate.Trigger
	now         clock
}

type CreateProjectInput struct {
	Title          string   `json:"title" validate:"required,min=3,max=120"`
	Slug           string   `json:"slug" validate:"required,min=3,max=150,slug"`
	ProjectDetails string   `json:"project_details" validate:"required,min=50"`
	Excerpt        *string  `json:"excerpt" validate:"omitnil,max=200"`
	LiveURL        string   `json:"live_url" validate:"url_or_empty"`
	GithubURL      string   `json:"github_url" validate:"url_or_empty"`
	Technologies   []string `json:"technologies" validate:"max=20,dive,min=1,max=40"`
	Features       []string `json:"features" validate:"max=20,dive,min=1,max=200"`
	Tags           []string `json:"tags" validate:"min=1,max=5,dive,min=2,max=30,tag"`
	Category       string   `json:"category" validate:"required,min=2,max=30"`
	ImageIDs       []string `json:"image_ids" validate:"max=3,dive,min=1"`
	SEOTitle       *string  `json:"seo_title" validate:"omitnil,max=60"`
	SEODescription *string  `json:"seo_description" validate:"omitnil,max=160"`
}

func NewProjectService(
	projects repository.ProjectRepository,
	store storage.ObjectStore,
	authz policy.Authorizer,
	revalidator revalidate.Trigger,
) *ProjectService {
	return &ProjectService{
		projects:    projects,
		store:       store,
		authz:       authz,
		revalidator: triggerOrNoop(revalidator),
		now:         utcNow,
	}
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (s *ProjectService) Create(ctx context.Context, actor *models.Actor, in CreateProjectInput) (*models.Project, error) {
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

	taken, err := s.projects.SlugExists(ctx, in.Slug, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, repository.ErrSlugTaken
	}

	now := s.now()
	project := &models.Project{
		Title:          in.Title,
		Slug:           in.Slug,
		ProjectDetails: in.ProjectDetails,
		Excerpt:        in.Excerpt,
		LiveURL:        optionalString(in.LiveURL),
		GithubURL:      optionalString(in.GithubURL),
		Technologies:   in.Technologies,
		Features:       in.Features,
		Tags:           in.Tags,
		Category:       in.Category,
		ImageIDs:       in.ImageIDs,
		Status:         models.StatusDraft,
		AuthorID:       actor.ID,
		AuthorName:     actor.Name,
		SEOTitle:       in.SEOTitle,
		SEODescription: in.SEODescription,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.projects.Create(ctx, project); err != nil {
		return nil, err
	}

	observability.LogMutation(ctx, "project", "create", project.ID, map[string]any{"slug": project.Slug})
	return project, nil
}

// Publish behaves like PostService.Publish.
func (s *ProjectService) Publish(ctx context.Context, actor *models.Actor, id uint) (*models.PublishResult, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := &models.PublishResult{Status: models.PublishOutcomePublished}
	fields := map[string]any{"updated_at": now}
	if project.Status == models.StatusPublished {
		result.Status = models.PublishOutcomeAlreadyPublished
	} else {
		fields["status"] = models.StatusPublished
		fields["published_at"] = now
	}

	if err := s.projects.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	observability.LogMutation(ctx, "project", "publish", id, map[string]any{"outcome": result.Status})
	revalidateAfterWrite(ctx, s.revalidator, revalidate.ProjectPaths(project.Slug))
	return result, nil
}

func (s *ProjectService) Archive(ctx context.Context, actor *models.Actor, id uint) error {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.projects.UpdateFields(ctx, id, map[string]any{
		"status":     models.StatusArchived,
		"updated_at": s.now(),
	}); err != nil {
		return err
	}

	observability.LogMutation(ctx, "project", "archive", id, nil)
	revalidateAfterWrite(ctx, s.revalidator, revalidate.ProjectPaths(project.Slug))
	return nil
}

// Update applies patch. Only the project's author may edit it.
func (s *ProjectService) Update(ctx context.Context, actor *models.Actor, id uint, patch models.ProjectPatch) (*models.Project, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.AuthorID != actor.ID {
		return nil, models.NewForbiddenError("You can only edit your own projects")
	}
	oldSlug := project.Slug

	if patch.Slug != nil && *patch.Slug != oldSlug {
		taken, err := s.projects.SlugExists(ctx, *patch.Slug, id)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, repository.ErrSlugTaken
		}
	}

	now := s.now()
	patch.Apply(project)
	// An emptied URL field clears the link.
	if project.LiveURL != nil && *project.LiveURL == "" {
		project.LiveURL = nil
	}
	if project.GithubURL != nil && *project.GithubURL == "" {
		project.GithubURL = nil
	}
	if project.Status == models.StatusPublished && project.PublishedAt == nil {
		project.PublishedAt = &now
	}
	project.UpdatedAt = now

	if err := s.projects.Update(ctx, project); err != nil {
		return nil, err
	}

	observability.LogMutation(ctx, "project", "update", id, nil)
	revalidateAfterWrite(ctx, s.revalidator, revalidate.ProjectPaths(oldSlug, project.Slug))
	s.resolveImages(ctx, project)
	return project, nil
}

// DeleteImage removes one image from a project and from storage.
func (s *ProjectService) DeleteImage(ctx context.Context, actor *models.Actor, projectID uint, storageID string) error {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return err
	}
	if strings.TrimSpace(storageID) == "" {
		return models.NewValidationError("storage ID is required")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, storageID); err != nil {
		return models.NewUpstreamError("Failed to delete image", err)
	}

	project.ImageIDs = slices.DeleteFunc(slices.Clone(project.ImageIDs), func(id string) bool { return id == storageID })
	project.UpdatedAt = s.now()
	if err := s.projects.Update(ctx, project); err != nil {
		return err
	}

	observability.LogMutation(ctx, "project", "delete_image", projectID, map[string]any{"storage_id": storageID})
	revalidateAfterWrite(ctx, s.revalidator, revalidate.ProjectPaths(project.Slug))
	return nil
}

func (s *ProjectService) GetByID(ctx context.Context, actor *models.Actor, id uint) (*models.Project, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.resolveImages(ctx, project)
	return project, nil
}

// GetBySlug returns published projects only.
func (s *ProjectService) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	project, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if project.Status != models.StatusPublished {
		return nil, models.NewNotFoundError("Project")
	}
	s.resolveImages(ctx, project)
	return project, nil
}

func (s *ProjectService) ListPublished(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	projects, err := s.projects.ListByStatus(ctx, models.StatusPublished, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		s.resolveImages(ctx, p)
	}
	return projects, nil
}

// ListRecent returns the latest published projects, three by default.
func (s *ProjectService) ListRecent(ctx context.Context, limit int) ([]*models.Project, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return s.ListPublished(ctx, limit, 0)
}

func (s *ProjectService) ListAll(ctx context.Context, actor *models.Actor, limit, offset int) ([]*models.Project, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	projects, err := s.projects.ListAll(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		s.resolveImages(ctx, p)
	}
	return projects, nil
}

func (s *ProjectService) resolveImages(ctx context.Context, p *models.Project) {
	if s.store == nil || len(p.ImageIDs) == 0 {
		return
	}
	urls := make([]string, 0, len(p.ImageIDs))
	for _, id := range p.ImageIDs {
		u, err := s.store.URL(ctx, id)
		if err != nil {
			logResolveFailure(ctx, id, err)
			continue
		}
		if u != "" {
			urls = append(urls, u)
		}
	}
	p.ImageURLs = urls
}
