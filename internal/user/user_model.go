package user

import "gorm.io/gorm"

// User is the identity record consumed by the admission core. Credential and
// session handling belong to the identity subsystem; this core only resolves
// users by email and flips the verified flag.
type User struct {
	gorm.Model
	Name          string `json:"name"`
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	Password      string `json:"-"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`
}
