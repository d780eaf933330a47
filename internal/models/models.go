package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const AdminRoleName = "admin"

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	Login        string    `gorm:"uniqueIndex;size:255;not null" json:"login"`
	PasswordHash string    `gorm:"size:255;not null"             json:"-"`
	FirstName    string    `gorm:"size:50"                       json:"first_name"`
	LastName     string    `gorm:"size:50"                       json:"last_name"`
	Roles        []Role    `gorm:"many2many:user_roles"          json:"roles"`
	CreatedAt    time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin is a linear scan: role sets per user are small.
func (u *User) IsAdmin() bool {
	for _, role := range u.Roles {
		if role.Name == AdminRoleName {
			return true
		}
	}
	return false
}

type Role struct {
	ID   uuid.UUID `gorm:"type:uuid;primaryKey"          json:"id"`
	Name string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RefreshToken rows are only ever created at login and bulk-deleted at
// logout. The raw token string is not stored, only its sha256 digest.
type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"             json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	TokenHash string    `gorm:"uniqueIndex;not null"   json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginHistory struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	UserAgent string    `gorm:"size:255"                 json:"user_agent"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}
