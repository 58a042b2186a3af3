package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type RoleName string

const (
	RoleStudent  RoleName = "student"
	RoleTeacher  RoleName = "teacher"
	RoleAccounts RoleName = "accounts"
	RoleAdmin    RoleName = "admin"
)

// AllRoles lists every role the platform knows about.
var AllRoles = []RoleName{RoleStudent, RoleTeacher, RoleAccounts, RoleAdmin}

func IsValidRole(name string) bool {
	for _, r := range AllRoles {
		if string(r) == name {
			return true
		}
	}
	return false
}

type User struct {
	ID           string `json:"id" gorm:"primaryKey;size:36"`
	Email        string `json:"email" gorm:"uniqueIndex;not null;size:255" validate:"required,email"`
	PasswordHash string `json:"-" gorm:"not null;size:255"`
	FullName     string `json:"full_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`
	UserCode  *string `json:"user_code" gorm:"size:50"`

	// Settings
	Language    string         `json:"language" gorm:"default:en;size:10"`
	Preferences datatypes.JSON `json:"preferences"`

	// Status. Blocked users keep their rows and roles but fail authorization.
	IsBlocked   bool       `json:"is_blocked" gorm:"default:false"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Computed (not stored)
	Roles []RoleName `json:"roles" gorm:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserRole is a (user, role) membership row. A user may hold any number of
// roles; role updates replace the full set for that user.
type UserRole struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"not null;size:36;uniqueIndex:idx_user_roles_user_role,priority:1"`
	Role      RoleName  `json:"role" gorm:"not null;size:20;uniqueIndex:idx_user_roles_user_role,priority:2" validate:"required,user_role"`
	CreatedAt time.Time `json:"created_at"`
}

func (UserRole) TableName() string {
	return "user_roles"
}
