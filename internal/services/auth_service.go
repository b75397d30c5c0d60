package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pilotos_api/internal/models"
)

// AuthService checks credentials, manages self-service password changes and
// keeps the token revocation list.
type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

// Authenticate returns the active user matching email and password.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, "Invalid credentials")
		}
		return nil, err
	}
	if !user.IsActive || !passwordMatches(user.SenhaHash, password) {
		return nil, newError(ErrUnauthorized, "Invalid credentials")
	}
	return &user, nil
}

// CurrentUser loads the user a token was issued to.
func (s *AuthService) CurrentUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, "Not authenticated")
		}
		return nil, err
	}
	return &user, nil
}

// ChangePassword replaces the user's password and clears the forced-change
// flag. The current password is only enforced when the flag is not set.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, current *string, newPassword string) error {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := checkPassword("new_password", newPassword); err != nil {
		return err
	}
	if !user.MustChangePassword {
		if current == nil || !passwordMatches(user.SenhaHash, *current) {
			return fieldError("current_password", "current password is incorrect")
		}
	}

	hash, err := hashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"senha_hash":           hash,
		"must_change_password": false,
	}).Error
}

// Revoke blacklists a token id until expiresAt and drops entries that have
// already expired.
func (s *AuthService) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return nil
	}
	db := s.db.WithContext(ctx)
	if err := db.Where("expires_at < ?", time.Now()).Delete(&models.RevokedToken{}).Error; err != nil {
		return err
	}
	return db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.RevokedToken{JTI: jti, ExpiresAt: expiresAt}).Error
}

// IsRevoked reports whether a token id was logged out.
func (s *AuthService) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.RevokedToken{}).Where("jti = ?", jti).Count(&count).Error
	return count > 0, err
}

// AccountRole reports the current role of user id and whether the account
// can still authenticate.
func (s *AuthService) AccountRole(ctx context.Context, id uint) (string, bool, error) {
	var user models.User
	err := s.db.WithContext(ctx).Select("id", "tipo", "is_active").First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return user.Tipo, user.IsActive, nil
}

// EnsureAdmin creates an ADMIN account when none exists with email.
// It reports whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return false, nil
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}
	admin := models.User{
		Nome:      "Administrator",
		Email:     email,
		SenhaHash: hash,
		Tipo:      models.RoleAdmin,
		IsActive:  true,
	}
	if err := s.db.WithContext(ctx).Create(&admin).Error; err != nil {
		return false, err
	}
	return true, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
