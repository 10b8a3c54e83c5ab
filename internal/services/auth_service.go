package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	domainerrors "tareas/internal/domain/errors"
	"tareas/internal/domain/models"
	"tareas/internal/logger"
)

// TokenTTL is the fixed validity of a session token.
const TokenTTL = 24 * time.Hour

// dummyHash is compared against when the email is unknown so both login
// failures cost one bcrypt comparison.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("tareas-dummy-password"), bcrypt.DefaultCost)

type AuthService struct {
	users    UserRepository
	secret   []byte
	now      Clock
	validate *validator.Validate
	log      *logger.Logger
}

type AuthOption func(*AuthService)

func WithAuthClock(now Clock) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(users UserRepository, secret string, log *logger.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{
		users:    users,
		secret:   []byte(secret),
		now:      systemClock,
		validate: newValidator(),
		log:      log.With("service", "AuthService"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (string, models.PublicUser, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(s.validate, req, registerMessages); err != nil {
		return "", models.PublicUser{}, err
	}

	existing, err := s.users.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil && existing != nil:
		return "", models.PublicUser{}, domainerrors.ErrEmailTaken
	case err != nil && !errors.Is(err, domainerrors.ErrNotFound):
		return "", models.PublicUser{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		CreatedAt:    stamp(s.now),
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return "", models.PublicUser{}, err
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	s.log.Info("user registered", "user_id", user.ID)
	return token, user.Public(), nil
}

func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (string, models.PublicUser, error) {
	req.Email = strings.TrimSpace(req.Email)
	if err := validateStruct(s.validate, req, loginMessages); err != nil {
		return "", models.PublicUser{}, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, domainerrors.ErrNotFound) {
			return "", models.PublicUser{}, err
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
		return "", models.PublicUser{}, domainerrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return "", models.PublicUser{}, domainerrors.ErrInvalidCredentials
	}

	token, err := s.issue(user.ID)
	if err != nil {
		return "", models.PublicUser{}, err
	}
	return token, user.Public(), nil
}

// Verify returns the user id carried by a valid, unexpired session token.
func (s *AuthService) Verify(token string) (int64, error) {
	if token == "" {
		return 0, domainerrors.ErrTokenMissing
	}

	var claims models.SessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, domainerrors.ErrTokenExpired
		}
		return 0, domainerrors.ErrTokenInvalid
	}
	if claims.UserID <= 0 {
		return 0, domainerrors.ErrTokenInvalid
	}
	return claims.UserID, nil
}

func (s *AuthService) issue(userID int64) (string, error) {
	now := s.now()
	claims := models.SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}
