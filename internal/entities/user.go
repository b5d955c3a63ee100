package entities

import (
	"time"
)

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"uniqueIndex;size:50;not null" json:"username"`
	CredentialHash string    `gorm:"column:credential;not null" json:"-"` // bcrypt hash, never serialized
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// CredentialUpdate carries the optional fields of a credentials change.
// A nil field is left untouched.
type CredentialUpdate struct {
	Username   *string
	Credential *string // plaintext, hashed before storage
}

// IsEmpty reports whether no field was supplied.
func (u CredentialUpdate) IsEmpty() bool {
	return u.Username == nil && u.Credential == nil
}
