package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matprat/matprat/backend/internal/models"
	"github.com/matprat/matprat/backend/internal/types"
)

const DefaultSessionTTL = 24 * time.Hour

// RevocationList remembers logged-out session ids until they would have
// expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, id string, until time.Time) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

// AuthService checks admin credentials and issues signed session tokens.
type AuthService struct {
	db      *gorm.DB
	secret  []byte
	ttl     time.Duration
	revoked RevocationList
}

func NewAuthService(db *gorm.DB, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &AuthService{db: db, secret: []byte(secret), ttl: ttl}
}

// WithRevocationList enables logout revocation.
func (s *AuthService) WithRevocationList(r RevocationList) *AuthService {
	s.revoked = r
	return s
}

func (s *AuthService) TTL() time.Duration {
	return s.ttl
}

// Authenticate verifies a username and password and returns a session token.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (string, *models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, ClassifyDBError(err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := s.GenerateToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		UserID:   user.ID,
		Username: user.Username,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) parse(tokenString string) (*types.SessionClaims, error) {
	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrUnauthenticated
	}
	return claims, nil
}

// ValidateToken returns the session identity or ErrUnauthenticated.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*types.SessionClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if s.revoked != nil && claims.ID != "" {
		revoked, err := s.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check session revocation: %w", err)
		}
		if revoked {
			return nil, ErrUnauthenticated
		}
	}
	return claims, nil
}

// Logout revokes the token if a revocation list is configured. Invalid
// tokens are ignored; there is nothing to revoke.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	if s.revoked == nil || tokenString == "" {
		return nil
	}
	claims, err := s.parse(tokenString)
	if err != nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// UpsertUser creates an admin account or resets its password.
func (s *AuthService) UpsertUser(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, &ValidationError{Message: "username and password are required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{Username: username, PasswordHash: string(hash)}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash"}),
	}).Create(&user).Error
	if err != nil {
		return nil, ClassifyDBError(err)
	}

	var saved models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&saved).Error; err != nil {
		return nil, ClassifyDBError(err)
	}
	return &saved, nil
}
