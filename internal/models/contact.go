package models

import "time"

// ContactStatus tracks whether a message was answered.
type ContactStatus string

const (
	ContactStatusNew     ContactStatus = "new"
	ContactStatusReplied ContactStatus = "replied"
)

// ContactMessage is a message left through the public contact form.
type ContactMessage struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	Name         string        `gorm:"not null" json:"name"`
	Email        string        `gorm:"not null" json:"email"`
	Message      string        `gorm:"type:text;not null" json:"message"`
	Status       ContactStatus `gorm:"type:varchar(16);not null;default:'new';index" json:"status"`
	ReplyMessage *string       `gorm:"type:text" json:"reply_message,omitempty"`
	RepliedAt    *time.Time    `json:"replied_at,omitempty"`
	CreatedAt    time.Time     `gorm:"index" json:"created_at"`
}
