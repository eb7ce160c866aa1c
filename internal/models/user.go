package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an identity keyed by email. Role is the source of truth for authorization.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	Email        string     `json:"email" gorm:"column:email;uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"column:name"`
	PhotoURL     string     `json:"photoUrl,omitempty" gorm:"column:photo_url"`
	Role         Role       `json:"role" gorm:"column:role;not null;default:'user'"`
	PasswordHash string     `json:"-" gorm:"column:password_hash"`
	CreatedAt    time.Time  `json:"createdAt"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty" gorm:"column:last_login_at"`
}

// TableName specifies the table name
func (User) TableName() string {
	return "users"
}

func (u *User) SetPassword(password string) error {
	if password == "" {
		return nil
	}
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
}

// Identity is a verified caller: the email proven by its credential and the
// role currently stored for that email.
type Identity struct {
	Email string
	Name  string
	Role  Role
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }
