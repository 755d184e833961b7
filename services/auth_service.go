package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"github.com/Dosada05/swiss-tournament/models"
	"github.com/Dosada05/swiss-tournament/utils"
)

type LoginInput struct {
	Password string `json:"password"`
}

type TokenResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AuthService issues admin tokens for the write endpoints.
type AuthService interface {
	Login(ctx context.Context, input LoginInput) (*TokenResult, error)
}

type authService struct {
	adminPasswordHash string
	jwtSecret         []byte
	tokenTTL          time.Duration
	logger            *slog.Logger
	now               func() time.Time
}

func NewAuthService(adminPasswordHash, jwtSecret string, tokenTTL time.Duration, logger *slog.Logger) AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &authService{
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         []byte(jwtSecret),
		tokenTTL:          tokenTTL,
		logger:            logger.With(slog.String("service", "auth")),
		now:               time.Now,
	}
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*TokenResult, error) {
	if input.Password == "" || !utils.CheckPasswordHash(input.Password, s.adminPasswordHash) {
		s.logger.Warn("admin login rejected")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	expiresAt := now.Add(s.tokenTTL)
	claims := jwt.MapClaims{
		"sub":  "admin",
		"role": string(models.RoleAdmin),
		"exp":  expiresAt.Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResult{Token: tokenString, ExpiresAt: expiresAt}, nil
}
