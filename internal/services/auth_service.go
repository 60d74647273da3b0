package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"bubblebliss/internal/domain"
	"bubblebliss/internal/repos"
)

// AuthService issues and checks admin bearer tokens.
type AuthService struct {
	Admins *repos.AdminRepo
	Secret []byte
	TTL    time.Duration
	now    func() time.Time
}

func NewAuthService(admins *repos.AdminRepo, secret string, ttl time.Duration) *AuthService {
	return &AuthService{Admins: admins, Secret: []byte(secret), TTL: ttl, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.Admins.ByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repos.ErrNotFound) {
		return "", ErrUnauthorized
	}
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return "", ErrUnauthorized
	}

	claims := jwt.MapClaims{
		"sub":   u.ID,
		"email": u.Email,
		"iat":   s.now().Unix(),
		"exp":   s.now().Add(s.TTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Secret)
}

// Authenticate verifies a token and reloads the admin it names.
func (s *AuthService) Authenticate(ctx context.Context, raw string) (*domain.AdminUser, error) {
	if len(s.Secret) == 0 || raw == "" {
		return nil, ErrUnauthorized
	}
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrUnauthorized
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrUnauthorized
	}
	sub, ok := claims["sub"].(float64)
	if !ok || sub < 1 {
		return nil, ErrUnauthorized
	}
	u, err := s.Admins.ByID(ctx, int64(sub))
	if errors.Is(err, repos.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}
