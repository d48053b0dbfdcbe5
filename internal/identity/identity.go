package identity

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ajbcloud/FutsalCulture-sub006/internal/user"
)

// Profile carries the optional fields supplied alongside an email during
// admission.
type Profile struct {
	Name string
}

// Service is the identity collaborator. Credential storage and sessions are
// an existing subsystem; the admission core only resolves users and marks
// emails verified.
type Service interface {
	// EnsureUser resolves the user for email, creating the record when it
	// does not exist yet, and returns the user id.
	EnsureUser(email, password string, profile Profile) (uint, error)
	// MarkUserVerified flips the verified flag for a user.
	MarkUserVerified(userID uint) error
}

type gormService struct {
	db *gorm.DB
}

// NewService returns the database-backed identity collaborator.
func NewService(db *gorm.DB) Service {
	return &gormService{db: db}
}

func (s *gormService) EnsureUser(email, password string, profile Profile) (uint, error) {
	var u user.User
	err := s.db.Where("email = ?", email).First(&u).Error
	if err == nil {
		return u.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	if err != nil {
		return 0, err
	}
	u = user.User{
		Name:     profile.Name,
		Email:    email,
		Password: string(hash),
	}
	if err := s.db.Create(&u).Error; err != nil {
		// Lost a race with a concurrent signup for the same email; the
		// unique index arbitrates, re-read the winner.
		var existing user.User
		if lookupErr := s.db.Where("email = ?", email).First(&existing).Error; lookupErr == nil {
			return existing.ID, nil
		}
		return 0, err
	}
	return u.ID, nil
}

func (s *gormService) MarkUserVerified(userID uint) error {
	return s.db.Model(&user.User{}).Where("id = ?", userID).Update("email_verified", true).Error
}
