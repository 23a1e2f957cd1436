package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"safesphere/models"
	"safesphere/store"
	apierrors "safesphere/utils/errors"
)

const sessionIDBytes = 32

const DefaultSessionTTL = 24 * time.Hour

type AuthService struct {
	users    store.UserStore
	sessions store.SessionStore
	secret   []byte
	ttl      time.Duration
	hashCost int
	geo      GeoIndex
	now      func() time.Time
}

type AuthOption func(*AuthService)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) AuthOption {
	return func(s *AuthService) { s.hashCost = cost }
}

// WithGeoIndex indexes the coordinates given at registration.
func WithGeoIndex(geo GeoIndex) AuthOption {
	return func(s *AuthService) { s.geo = geo }
}

// WithClock overrides the time source used for session expiry.
func WithClock(now func() time.Time) AuthOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(users store.UserStore, sessions store.SessionStore, secret string, ttl time.Duration, opts ...AuthOption) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	s := &AuthService{
		users:    users,
		sessions: sessions,
		secret:   []byte(secret),
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterInput struct {
	Name      string
	Email     string
	Password  string
	Phone     *string
	Latitude  *float64
	Longitude *float64
}

type AuthResult struct {
	User         models.User `json:"user"`
	SessionToken string      `json:"session_token"`
}

// Register creates a new user and opens a session for it
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (AuthResult, error) {
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return AuthResult{}, apierrors.Wrap(err, "HASH_ERROR", "failed to hash password", http.StatusInternalServerError)
	}

	name := in.Name
	if name == "" {
		name = "Unknown"
	}
	now := s.now().UTC()
	user, err := s.users.CreateUser(ctx, models.User{
		Name:           name,
		Email:          in.Email,
		Phone:          in.Phone,
		PasswordHash:   string(passwordHash),
		IsSafe:         true,
		Status:         models.StatusSafe,
		LastSafeUpdate: now,
		CreatedAt:      now,
		Latitude:       in.Latitude,
		Longitude:      in.Longitude,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return AuthResult{}, apierrors.ErrDuplicateEmail
	}
	if err != nil {
		return AuthResult{}, apierrors.Internal(err, "failed to create user")
	}

	if err := indexUserLocation(ctx, s.geo, user); err != nil {
		slog.WarnContext(ctx, "Failed to index registration location", "user_id", user.ID, "error", err)
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}

	slog.InfoContext(ctx, "User registered", "user_id", user.ID)
	return AuthResult{User: user, SessionToken: token}, nil
}

// Login authenticates a user and opens an additional session
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthResult, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return AuthResult{}, apierrors.ErrInvalidCredentials
	}
	if err != nil {
		return AuthResult{}, apierrors.Internal(err, "failed to load user")
	}

	// Verify password
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return AuthResult{}, apierrors.ErrInvalidCredentials
	}

	token, err := s.openSession(ctx, user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, SessionToken: token}, nil
}

// Logout removes the session behind token. Unknown or malformed tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	claims, err := s.parse(token, jwt.WithoutClaimsValidation())
	if err != nil || claims.ID == "" {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, claims.ID); err != nil {
		return apierrors.Internal(err, "failed to delete session")
	}
	return nil
}

// Resolve returns the user bound to a live session token
func (s *AuthService) Resolve(ctx context.Context, token string) (models.User, error) {
	claims, err := s.parse(token)
	if err != nil {
		return models.User{}, apierrors.ErrUnauthorized
	}
	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return models.User{}, apierrors.ErrUnauthorized
	}

	sess, err := s.sessions.GetSession(ctx, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return models.User{}, apierrors.ErrUnauthorized
	}
	if err != nil {
		return models.User{}, apierrors.Internal(err, "failed to load session")
	}
	if sess.UserID != userID {
		return models.User{}, apierrors.ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return models.User{}, apierrors.ErrUnauthorized
	}
	return user, nil
}

func (s *AuthService) openSession(ctx context.Context, userID int64) (string, error) {
	raw := make([]byte, sessionIDBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apierrors.Internal(err, "failed to generate session id")
	}
	now := s.now().UTC()
	sess := models.Session{
		ID:        base64.RawURLEncoding.EncodeToString(raw),
		UserID:    userID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return "", apierrors.Internal(err, "failed to store session")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ID:        sess.ID,
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
	})
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", apierrors.Wrap(err, "JWT_ERROR", "Failed to generate token", http.StatusInternalServerError)
	}
	return tokenString, nil
}

func (s *AuthService) parse(tokenString string, opts ...jwt.ParserOption) (*jwt.RegisteredClaims, error) {
	opts = append(opts,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
