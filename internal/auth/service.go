package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/tarefa360/tarefa360/internal"
	"github.com/tarefa360/tarefa360/internal/identity"
	"github.com/tarefa360/tarefa360/internal/user"
)

// UserDirectory is the part of the account service login needs.
type UserDirectory interface {
	FindByCPF(ctx context.Context, cpf string) (*user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	ChangePassword(ctx context.Context, id, current, newPassword, confirm string) error
}

type Service struct {
	users          UserDirectory
	tokenGenerator TokenGenerator
	logger         *slog.Logger
}

func NewService(users UserDirectory, tokenGen TokenGenerator, logger *slog.Logger) *Service {
	return &Service{
		users:          users,
		tokenGenerator: tokenGen,
		logger:         logger,
	}
}

func NewJWTTokenGenerator(secret string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		AccessTokenSecret: []byte(secret),
		AccessTokenTTL:    ttl,
		Issuer:            "tarefa360",
	}
}

// Authenticate checks a CPF and password and issues an access token.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (LoginResponse, error) {
	if err := dto.Validate(); err != nil {
		return LoginResponse{}, err
	}

	cpf := identity.NormalizeCPF(dto.CPF)
	if identity.ValidateCPF(cpf, false) != nil || !identity.IsRealCPF(cpf) {
		return LoginResponse{}, internal.ErrInvalidCredentials
	}

	u, err := s.users.FindByCPF(ctx, cpf)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			return LoginResponse{}, internal.ErrInvalidCredentials
		}
		return LoginResponse{}, err
	}

	if !identity.ComparePassword(u.PasswordHash, dto.Password) {
		s.logger.Warn("login rejected", "user_id", u.ID, "reason", "password")
		return LoginResponse{}, internal.ErrInvalidCredentials
	}

	if !u.IsActive() {
		s.logger.Warn("login rejected", "user_id", u.ID, "reason", "inactive")
		return LoginResponse{}, internal.ErrUserInactive
	}

	token, expiresAt, err := s.tokenGenerator.GenerateAccessToken(u.ID, string(u.Role))
	if err != nil {
		return LoginResponse{}, internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", u.ID, "role", u.Role)
	return LoginResponse{
		AccessToken:         token,
		TokenType:           "Bearer",
		ExpiresAt:           expiresAt,
		UserID:              u.ID,
		Role:                string(u.Role),
		Redirect:            u.Role.DashboardRoute(),
		ForcePasswordChange: u.ForcePasswordChange,
	}, nil
}

func (s *Service) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.tokenGenerator.ValidateToken(tokenString)
}

// ChangePassword runs the self-service change and returns the caller's dashboard route.
func (s *Service) ChangePassword(ctx context.Context, userID string, dto ChangePasswordDTO) (string, error) {
	if err := s.users.ChangePassword(ctx, userID, dto.CurrentPassword, dto.NewPassword, dto.ConfirmPassword); err != nil {
		return "", err
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		s.logger.Warn("password changed but dashboard route unknown", "user_id", userID, "error", err)
		return "", nil
	}
	return u.Role.DashboardRoute(), nil
}

func (j *JWTTokenGenerator) GenerateAccessToken(userID, role string) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.AccessTokenTTL)

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.Issuer,
			Subject:   userID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.AccessTokenSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.AccessTokenSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != "" {
		return claims, nil
	}
	return nil, internal.ErrInvalidToken
}
