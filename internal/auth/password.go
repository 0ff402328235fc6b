package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"equipment-tracker-backend/internal/apperr"
	"equipment-tracker-backend/internal/model"
)

// Verifier checks staff credentials against the users table. It is used both
// for login and for the re-authentication step that guards destructive
// actions such as equipment deletion.
type Verifier struct {
	db *gorm.DB
}

// NewVerifier creates a credential verifier backed by the given database.
func NewVerifier(db *gorm.DB) *Verifier {
	return &Verifier{db: db}
}

// VerifyCredentials returns the user matching email and password. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (v *Verifier) VerifyCredentials(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	if err := v.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.ErrAuthenticationFailed
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.ErrAuthenticationFailed
	}
	return &user, nil
}

// HashPassword produces a bcrypt hash for storage in the users table.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
