package models

import (
	"time"
)

// User is an account that can sign in. Only the configured admin email is ever authorized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `json:"name"`
	Password  string    `gorm:"not null" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Actor is the authenticated identity behind a request.
type Actor struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ActorFromUser builds the identity for u.
func ActorFromUser(u *User) *Actor {
	return &Actor{ID: u.ID, Email: u.Email, Name: u.Name}
}
