package service

import (
	"context"
	"log/slog"
	"strings"

	"portfolio/internal/mail"
	"portfolio/internal/models"
	"portfolio/internal/observability"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/validation"
)

type ContactService struct {
	contacts repository.ContactRepository
	sender   mail.Sender
	authz    policy.Authorizer
	from     string
	to       string
	now      clock
}

type ContactInput struct {
	Name    string `json:"name" validate:"required,min=3,max=50"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,min=3"`
}

type ReplyInput struct {
	Message string `json:"message" validate:"required,min=1,max=5000"`
}

// NewContactService sends notifications from `from` to the site owner at `to`.
func NewContactService(contacts repository.ContactRepository, sender mail.Sender, authz policy.Authorizer, from, to string) *ContactService {
	return &ContactService{
		contacts: contacts,
		sender:   sender,
		authz:    authz,
		from:     from,
		to:       to,
		now:      utcNow,
	}
}

// Create stores the message and notifies the owner. A failed notification is logged;
// the message stays stored and the call succeeds.
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*models.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	msg := &models.ContactMessage{
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		Status:    models.ContactStatusNew,
		CreatedAt: s.now(),
	}
	if err := s.contacts.Create(ctx, msg); err != nil {
		return nil, err
	}
	observability.LogMutation(ctx, "contact", "create", msg.ID, nil)

	notification, err := mail.ContactNotification(s.from, s.to, msg.Name, msg.Email, msg.Message)
	if err == nil {
		err = s.sender.Send(ctx, notification)
	}
	if err != nil {
		slog.Default().WarnContext(ctx, "contact notification failed",
			slog.Uint64("contact_id", uint64(msg.ID)),
			slog.String("error", err.Error()),
		)
	}
	return msg, nil
}

func (s *ContactService) List(ctx context.Context, actor *models.Actor, limit, offset int) ([]*models.ContactMessage, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	return s.contacts.List(ctx, limit, offset)
}

// Reply emails the sender and then marks the message replied. If the email fails
// the record is left untouched.
func (s *ContactService) Reply(ctx context.Context, actor *models.Actor, id uint, in ReplyInput) (*models.ContactMessage, error) {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return nil, err
	}
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	msg, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	reply, err := mail.ContactReply(s.from, msg.Email, msg.Name, in.Message, msg.Message)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := s.sender.Send(ctx, reply); err != nil {
		return nil, models.NewUpstreamError("Failed to send reply", err)
	}

	at := s.now()
	if err := s.contacts.MarkReplied(ctx, id, in.Message, at); err != nil {
		return nil, err
	}
	msg.Status = models.ContactStatusReplied
	msg.ReplyMessage = &in.Message
	msg.RepliedAt = &at

	observability.LogMutation(ctx, "contact", "reply", id, nil)
	return msg, nil
}
