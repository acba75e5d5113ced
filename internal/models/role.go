package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// PermissionSystemAdmin is the sentinel permission: its presence in a
// user's effective permission set grants every permission check.
const PermissionSystemAdmin = "system:admin"

// RoleAdmin is the role name that grants the same unconditional bypass
// as the sentinel permission.
const RoleAdmin = "admin"

// Role is a named bundle of permission strings.
type Role struct {
	ID          uuid.UUID                  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string                     `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description string                     `gorm:"size:500" json:"description,omitempty"`
	Permissions datatypes.JSONSlice[string] `gorm:"type:jsonb" json:"permissions"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// UserRole links a user to a role. The (user_id, role_id) pair is
// unique; a role cannot be assigned twice to the same user. Deleting a
// role is blocked while assignments reference it.
type UserRole struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" json:"user_id"`
	RoleID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_roles_user_role" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:RESTRICT" json:"-"`
	Role Role `gorm:"foreignKey:RoleID;constraint:OnDelete:RESTRICT" json:"-"`
}
