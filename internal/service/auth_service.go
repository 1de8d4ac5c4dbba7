package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"portfolio/internal/models"
	"portfolio/internal/policy"
	"portfolio/internal/repository"
	"portfolio/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs session tokens. middleware.TokenManager implements it.
type TokenIssuer interface {
	Issue(actor *models.Actor) (string, time.Time, error)
}

type AuthService struct {
	users  repository.UserRepository
	admin  *policy.AdminEmail
	tokens TokenIssuer
	cost   int
}

type SignupInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"required,min=2,max=80"`
	Password string `json:"password" validate:"required"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by sign-up and login.
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

func NewAuthService(users repository.UserRepository, admin *policy.AdminEmail, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, admin: admin, tokens: tokens, cost: bcrypt.DefaultCost}
}

// Signup creates the admin account. Only the configured admin email may sign up,
// and only while no account exists.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*AuthResult, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if !s.admin.MayRegister(in.Email) {
		return nil, models.NewForbiddenError("Sign-ups are closed")
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	n, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, models.NewConflictError("Admin account already exists")
	}

	user, err := s.createUser(ctx, in.Email, in.Name, in.Password)
	if err != nil {
		return nil, err
	}
	return s.issue(user)
}

func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	invalid := models.NewUnauthorizedError("Invalid credentials")

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if models.IsNotFound(err) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(in.Password)); err != nil {
		return nil, invalid
	}
	if !s.admin.IsAdmin(models.ActorFromUser(user)) {
		return nil, invalid
	}
	return s.issue(user)
}

// Me returns the stored account behind actor.
func (s *AuthService) Me(ctx context.Context, actor *models.Actor) (*models.User, error) {
	if actor == nil {
		return nil, models.NewUnauthorizedError("Unauthorized")
	}
	return s.users.GetByID(ctx, actor.ID)
}

// EnsureAdmin creates the admin account from configuration if it does not exist yet.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, name, password string) (bool, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return false, nil
	}
	if !s.admin.MayRegister(email) {
		return false, errors.New("admin bootstrap email does not match ADMIN_EMAIL")
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !models.IsNotFound(err) {
		return false, err
	}

	if name == "" {
		name = "Admin"
	}
	if _, err := s.createUser(ctx, email, name, password); err != nil {
		return false, err
	}
	return true, nil
}

// ResetPassword replaces the password of the account with email.
func (s *AuthService) ResetPassword(ctx context.Context, email, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return err
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.NewInternalError(err)
	}
	return s.users.UpdatePassword(ctx, user.ID, string(hash))
}

func (s *AuthService) createUser(ctx context.Context, email, name, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{Email: email, Name: name, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, exp, err := s.tokens.Issue(models.ActorFromUser(user))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: exp, User: user}, nil
}
