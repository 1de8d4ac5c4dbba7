package repository

import (
	"context"
	"time"

	"portfolio/internal/models"

	"gorm.io/gorm"
)

// ContactRepository stores messages left through the contact form.
type ContactRepository interface {
	Create(ctx context.Context, msg *models.ContactMessage) error
	GetByID(ctx context.Context, id uint) (*models.ContactMessage, error)
	List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error)
	MarkReplied(ctx context.Context, id uint, reply string, at time.Time) error
}

type contactRepository struct {
	db *gorm.DB
}

func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *models.ContactMessage) error {
	defer track("create", "contact_messages")()
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id uint) (*models.ContactMessage, error) {
	var msg models.ContactMessage
	if err := r.db.WithContext(ctx).First(&msg, id).Error; err != nil {
		return nil, lookupError(err, "Contact")
	}
	return &msg, nil
}

func (r *contactRepository) List(ctx context.Context, limit, offset int) ([]*models.ContactMessage, error) {
	defer track("list", "contact_messages")()
	limit, offset = clampPage(limit, offset)

	var msgs []*models.ContactMessage
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&msgs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return msgs, nil
}

func (r *contactRepository) MarkReplied(ctx context.Context, id uint, reply string, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.ContactMessage{}).Where("id = ?", id).Updates(map[string]any{
		"status":        models.ContactStatusReplied,
		"reply_message": reply,
		"replied_at":    at,
	})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Contact")
	}
	return nil
}
