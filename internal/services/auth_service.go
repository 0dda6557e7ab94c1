package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-hierarchy-api/internal/constants"
	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"github.com/yukikurage/task-hierarchy-api/internal/repository"
	"github.com/yukikurage/task-hierarchy-api/internal/session"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	sessions session.Store
	tokens   *session.TokenIssuer
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, sessions session.Store, tokens *session.TokenIssuer) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		sessions: sessions,
		tokens:   tokens,
	}
}

// RegisterInput represents the information needed to create an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	UsernameOrEmail string
	Password        string
}

// LoginResult is a freshly issued bearer token and its user.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

// Register creates a team member account and logs it in. Other roles are
// only granted through the admin endpoints.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	username, email, err := normalizeIdentity(input.Username, input.Email)
	if err != nil {
		return nil, err
	}

	if err := ensureUnique(ctx, s.userRepo, username, email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		FullName:     strings.TrimSpace(input.FullName),
		Role:         models.RoleTeamMember,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storageError("create user", err)
	}

	return s.startSession(ctx, user)
}

// Login verifies credentials of an active user and issues a token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	identifier := strings.TrimSpace(input.UsernameOrEmail)
	if identifier == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.FindByUsernameOrEmail(ctx, identifier, true)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, storageError("find user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

// Logout ends the session behind token.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return ErrInvalidSession
	}
	if err := s.sessions.Remove(ctx, claims.SessionID); err != nil {
		return storageError("remove session", err)
	}
	return nil
}

// ResolveToken returns the active user a token was issued to.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	userID, err := s.sessions.Get(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, storageError("load session", err)
	}
	if userID != claims.UserID {
		return nil, ErrInvalidSession
	}

	return s.ActiveUser(ctx, userID)
}

// ActiveUser loads a user and fails with ErrInvalidSession when it is gone
// or deactivated.
func (s *AuthService) ActiveUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, storageError("find user", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidSession
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, storageError("find user", err)
	}
	return user, nil
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*LoginResult, error) {
	token, claims, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w: %w", ErrStorage, err)
	}
	if err := s.sessions.Put(ctx, claims.SessionID, user.ID, s.tokens.TTL()); err != nil {
		return nil, storageError("store session", err)
	}

	return &LoginResult{
		Token:     token,
		ExpiresAt: claims.ExpiresAt,
		User:      user,
	}, nil
}

func normalizeIdentity(username, email string) (string, string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", "", ErrUsernameRequired
	}
	if len(username) < constants.MinUsernameLength || len(username) > constants.MaxUsernameLength {
		return "", "", ErrUsernameLength
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return "", "", ErrEmailRequired
	}
	return username, email, nil
}

func ensureUnique(ctx context.Context, repo repository.UserRepository, username, email string) error {
	taken, err := repo.ExistsByUsername(ctx, username)
	if err != nil {
		return storageError("check username", err)
	}
	if taken {
		return ErrUsernameTaken
	}

	taken, err = repo.ExistsByEmail(ctx, email)
	if err != nil {
		return storageError("check email", err)
	}
	if taken {
		return ErrEmailTaken
	}
	return nil
}

func hashPassword(password string) (string, error) {
	if len(password) < constants.MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
