package entity

import "github.com/google/uuid"

// Identity is the verified caller context established by the auth middleware.
// It is passed explicitly into every operation that needs authorization;
// services never look the current user up from ambient state.
type Identity struct {
	UserID uuid.UUID
	Role   UserRole
}

func (i Identity) IsAdmin() bool {
	return i.Role == UserRoleAdmin
}
