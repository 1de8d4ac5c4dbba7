package repository

import (
	"context"

	"portfolio/internal/models"

	"gorm.io/gorm"
)

// ProjectRepository defines persistence operations for portfolio projects.
type ProjectRepository interface {
	Create(ctx context.Context, project *models.Project) error
	GetByID(ctx context.Context, id uint) (*models.Project, error)
	GetBySlug(ctx context.Context, slug string) (*models.Project, error)
	SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error)
	ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Project, error)
	ListAll(ctx context.Context, limit, offset int) ([]*models.Project, error)
	Update(ctx context.Context, project *models.Project) error
	UpdateFields(ctx context.Context, id uint, fields map[string]any) error
}

type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository returns a GORM-backed ProjectRepository.
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *models.Project) error {
	defer track("create", "projects")()
	if err := r.db.WithContext(ctx).Create(project).Error; err != nil {
		return writeError(err)
	}
	return nil
}

func (r *projectRepository) GetByID(ctx context.Context, id uint) (*models.Project, error) {
	defer track("get", "projects")()
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, lookupError(err, "Project")
	}
	return &project, nil
}

func (r *projectRepository) GetBySlug(ctx context.Context, slug string) (*models.Project, error) {
	defer track("get_by_slug", "projects")()
	var project models.Project
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&project).Error; err != nil {
		return nil, lookupError(err, "Project")
	}
	return &project, nil
}

func (r *projectRepository) SlugExists(ctx context.Context, slug string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Project{}).Where("slug = ?", slug)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

func (r *projectRepository) ListByStatus(ctx context.Context, status models.Status, limit, offset int) ([]*models.Project, error) {
	defer track("list", "projects")()
	limit, offset = clampPage(limit, offset)

	order := "created_at DESC"
	if status == models.StatusPublished {
		order = "published_at DESC, id DESC"
	}

	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) ListAll(ctx context.Context, limit, offset int) ([]*models.Project, error) {
	defer track("list_all", "projects")()
	limit, offset = clampPage(limit, offset)

	var projects []*models.Project
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&projects).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return projects, nil
}

func (r *projectRepository) Update(ctx context.Context, project *models.Project) error {
	defer track("update", "projects")()
	err := r.db.WithContext(ctx).
		Model(project).
		Select("*").
		Omit("id", "created_at").
		Updates(project).Error
	if err != nil {
		return writeError(err)
	}
	return nil
}

func (r *projectRepository) UpdateFields(ctx context.Context, id uint, fields map[string]any) error {
	defer track("patch", "projects")()
	res := r.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return writeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Project")
	}
	return nil
}
