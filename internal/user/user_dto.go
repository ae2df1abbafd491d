package user

import "crewtask/internal/domain"

// Identity is the session-scoped view of the caller that every other
// component takes as an explicit parameter. It is built once per
// authentication event and never re-derived mid-operation.
type Identity struct {
	UserID     string      `json:"user_id"`
	AuthID     string      `json:"auth_id"`
	BusinessID string      `json:"business_id"`
	Role       domain.Role `json:"role"`
	IsManager  bool        `json:"is_manager"`
}

type WorkerResponse struct {
	ID         string `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	BusinessID string `json:"business_id"`
	CreatedAt  string `json:"created_at"`
}

type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=worker manager"`
}
