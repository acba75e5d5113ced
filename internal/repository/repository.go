// Package repository provides the persistence interfaces the services
// are written against, plus their GORM/Postgres implementations. Store
// errors (missing rows, unique-constraint violations) are translated to
// the apperrors taxonomy here so nothing GORM-specific leaks upward.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/emreakdogan/auth-service/internal/models"
)

// UserRepository persists User records.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailOrProviderID matches either the email or the
	// (provider, providerID) pair in a single lookup, the precedence the
	// OAuth identity merge depends on.
	FindByEmailOrProviderID(ctx context.Context, email, provider, providerID string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// RoleWithUsage pairs a role with its current assignment count.
type RoleWithUsage struct {
	Role            models.Role
	AssignmentCount int64
}

// RoleRepository persists Role records and UserRole assignments.
type RoleRepository interface {
	Create(ctx context.Context, role *models.Role) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	FindByName(ctx context.Context, name string) (*models.Role, error)
	List(ctx context.Context) ([]RoleWithUsage, error)
	Update(ctx context.Context, role *models.Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountAssignments(ctx context.Context, roleID uuid.UUID) (int64, error)
	UsersForRole(ctx context.Context, roleID uuid.UUID) ([]models.User, error)
	RolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error)
	CreateAssignment(ctx context.Context, link *models.UserRole) error
	DeleteAssignment(ctx context.Context, userID, roleID uuid.UUID) error
	FindAssignment(ctx context.Context, userID, roleID uuid.UUID) (*models.UserRole, error)
}

// SessionRepository persists refresh-token sessions. Deletes are
// idempotent; removing zero rows is not an error.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	DeleteByTokenHash(ctx context.Context, userID uuid.UUID, tokenHash string) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID, sessionType string) error
}
