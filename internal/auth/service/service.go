package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"boatyard_backend/internal/auth/password"
	"boatyard_backend/internal/auth/repository"
	"boatyard_backend/internal/auth/token"
	"boatyard_backend/internal/events"
	"boatyard_backend/platform/config"
	"boatyard_backend/platform/phone"
	"boatyard_backend/platform/sanitize"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenExpired = errors.New("token expired")
var ErrTokenInvalid = errors.New("token invalid")
var ErrEmailTaken = errors.New("email already registered")

const (
	accessTokenType  = "access"
	refreshTokenType = "refresh"

	// RoleCustomer is assigned to every self-registered account.
	// Staff roles are granted by an admin via the role update endpoint.
	RoleCustomer = "customer"
	RoleEmployee = "employee"
	RoleAdmin    = "admin"
)

type Service struct {
	repo *repository.Repository
	cfg  *config.Config
	bus  events.Bus
}

func New(repo *repository.Repository, cfg *config.Config, bus events.Bus) *Service {
	return &Service{repo: repo, cfg: cfg, bus: bus}
}

// SignUp registers a new customer account and issues an initial token pair.
func (s *Service) SignUp(ctx context.Context, name, email, phoneNumber, plainPassword string) (string, string, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return "", "", err
	}

	name = sanitize.Text(name)
	email = strings.ToLower(strings.TrimSpace(email))
	phoneNumber = phone.NormalizeE164(phoneNumber)

	user, err := s.repo.CreateUser(ctx, name, email, phoneNumber, hash)
	if err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return "", "", ErrEmailTaken
		}
		return "", "", err
	}

	if err := s.repo.SetUserRoles(ctx, user.ID, []string{RoleCustomer}); err != nil {
		return "", "", err
	}

	s.bus.Publish(ctx, events.UserSignedUp{
		BaseEvent: events.NewBaseEvent(),
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
	})

	return s.issueTokens(ctx, user.ID)
}

func (s *Service) SignIn(ctx context.Context, email, plainPassword string) (string, string, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", "", ErrInvalidCredentials
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		return "", "", ErrInvalidCredentials
	}

	return s.issueTokens(ctx, user.ID)
}

func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	hash := token.Hash(refreshToken)
	userID, expiresAt, err := s.repo.GetRefreshToken(ctx, hash)
	if err != nil {
		return "", "", ErrTokenInvalid
	}

	if time.Now().After(expiresAt) {
		_ = s.repo.RevokeRefreshToken(ctx, hash)
		return "", "", ErrTokenExpired
	}

	// Rotate: a refresh token is single use.
	_ = s.repo.RevokeRefreshToken(ctx, hash)
	return s.issueTokens(ctx, userID)
}

func (s *Service) SignOut(ctx context.Context, refreshToken string) error {
	hash := token.Hash(refreshToken)
	return s.repo.RevokeRefreshToken(ctx, hash)
}

// Profile is the user view returned to the authenticated user.
type Profile struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Roles     []string
	CreatedAt time.Time
}

func (s *Service) GetMe(ctx context.Context, userID uuid.UUID) (Profile, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	roles, err := s.repo.GetUserRoles(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Roles:     roles,
		CreatedAt: user.CreatedAt,
	}, nil
}

func (s *Service) ListUsers(ctx context.Context) ([]repository.UserWithRoles, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error {
	return s.repo.SetUserRoles(ctx, userID, roles)
}

func (s *Service) issueTokens(ctx context.Context, userID uuid.UUID) (string, string, error) {
	roles, err := s.repo.GetUserRoles(ctx, userID)
	if err != nil {
		return "", "", err
	}

	accessToken, err := s.signJWT(userID, roles, s.cfg.GetAccessTokenTTL(), accessTokenType, s.cfg.GetJWTAccessSecret())
	if err != nil {
		return "", "", err
	}

	refreshToken, err := token.NewRefresh(48)
	if err != nil {
		return "", "", err
	}

	hash := token.Hash(refreshToken)
	expiresAt := time.Now().Add(s.cfg.GetRefreshTokenTTL())
	if err := s.repo.CreateRefreshToken(ctx, userID, hash, expiresAt); err != nil {
		return "", "", err
	}

	return accessToken, refreshToken, nil
}

func (s *Service) signJWT(userID uuid.UUID, roles []string, ttl time.Duration, tokenType, secret string) (string, error) {
	claims := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  tokenType,
		"roles": roles,
		"exp":   time.Now().Add(ttl).Unix(),
		"iat":   time.Now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(secret))
}
