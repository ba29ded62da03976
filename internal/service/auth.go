package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/tourbook/internal/model"
	"github.com/iliyamo/tourbook/internal/repository"
	"github.com/iliyamo/tourbook/internal/utils"
)

// AuthConfig holds the knobs of the auth service.
type AuthConfig struct {
	Secret     string
	TokenTTL   time.Duration
	BcryptCost int
	// AllowRoleSignup lets a registering caller pick the admin role.  When
	// false every new account is a plain user.
	AllowRoleSignup bool
}

// AuthService registers users, issues and verifies bearer tokens and
// manages the caller's own account and wishlist.
type AuthService struct {
	users UserStore
	tours TourStore
	cfg   AuthConfig
	log   *zap.Logger
}

func NewAuthService(users UserStore, tours TourStore, cfg AuthConfig, log *zap.Logger) *AuthService {
	return &AuthService{users: users, tours: tours, cfg: cfg, log: orNop(log)}
}

type RegisterInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user admin"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type UpdateDetailsInput struct {
	Name     string `json:"name" validate:"required,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"omitempty,min=6"`
}

// AuthResult is the user with a freshly issued token; it serialises flat,
// the token next to the user fields.
type AuthResult struct {
	*model.User
	Token string `json:"token"`
}

// maxPasswordBytes is the most bcrypt accepts.  The limit is in bytes, so a
// rune-counting max tag cannot express it.
const maxPasswordBytes = 72

func checkPasswordLength(pw string) error {
	if len(pw) > maxPasswordBytes {
		return &ValidationError{Message: fmt.Sprintf("password can not be more than %d bytes", maxPasswordBytes)}
	}
	return nil
}

func normEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *AuthService) issue(u *model.User) (*AuthResult, error) {
	tok, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: u, Token: tok.Token}, nil
}

// Register creates an account and returns it with a token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normEmail(in.Email)
	in.Role = strings.TrimSpace(in.Role)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	role := model.RoleUser
	if in.Role == model.RoleAdmin {
		if s.cfg.AllowRoleSignup {
			role = model.RoleAdmin
			s.log.Warn("admin account self-registered", zap.String("email", in.Email))
		} else {
			s.log.Info("requested admin role ignored", zap.String("email", in.Email))
		}
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &model.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role))
	return s.issue(u)
}

// Login checks the credentials and returns the user with a new token.  An
// unknown email and a wrong password fail the same way.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	u, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Authenticate resolves a raw bearer token to the calling actor.  The role
// comes from the stored user, not from the token, so a demoted admin loses
// access immediately.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (model.Actor, error) {
	claims, err := utils.ParseAccessToken(s.cfg.Secret, raw)
	if err != nil {
		return model.Actor{}, ErrInvalidToken
	}
	u, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Actor{}, ErrInvalidToken
		}
		return model.Actor{}, fmt.Errorf("load user: %w", err)
	}
	return model.Actor{UserID: u.ID, Role: u.Role}, nil
}

func (s *AuthService) currentUser(ctx context.Context, actor model.Actor) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	u, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func (s *AuthService) wishlist(ctx context.Context, userID string) ([]model.Tour, error) {
	ids, err := s.users.WishlistTourIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load wishlist: %w", err)
	}
	tours, err := s.tours.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve wishlist: %w", err)
	}
	return tours, nil
}

// CurrentUser returns the caller with the wishlist resolved to tours.
func (s *AuthService) CurrentUser(ctx context.Context, actor model.Actor) (*model.Profile, error) {
	u, err := s.currentUser(ctx, actor)
	if err != nil {
		return nil, err
	}
	wl, err := s.wishlist(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	return &model.Profile{User: *u, Wishlist: wl}, nil
}

// ToggleWishlist adds the tour to the caller's wishlist when absent and
// removes it otherwise, returning the resulting list.
func (s *AuthService) ToggleWishlist(ctx context.Context, actor model.Actor, tourID string) ([]model.Tour, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	if _, err := s.tours.GetByID(ctx, tourID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTourNotFound
		}
		return nil, fmt.Errorf("load tour: %w", err)
	}
	if _, err := s.users.ToggleWishlist(ctx, actor.UserID, tourID); err != nil {
		return nil, fmt.Errorf("toggle wishlist: %w", err)
	}
	return s.wishlist(ctx, actor.UserID)
}

// UpdateDetails replaces the caller's name and email, and the password when
// one is given.
func (s *AuthService) UpdateDetails(ctx context.Context, actor model.Actor, in UpdateDetailsInput) (*model.User, error) {
	if !actor.Authenticated() {
		return nil, ErrUnauthorized
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normEmail(in.Email)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := checkPasswordLength(in.Password); err != nil {
		return nil, err
	}

	if other, err := s.users.GetByEmail(ctx, in.Email); err == nil && other.ID != actor.UserID {
		return nil, ErrEmailExists
	} else if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	var hash string
	if in.Password != "" {
		h, err := utils.HashPassword(in.Password, s.cfg.BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}
	if err := s.users.UpdateDetails(ctx, actor.UserID, in.Name, in.Email, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrEmailExists
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrUnauthorized
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return s.currentUser(ctx, actor)
}
