package user

import (
	"time"

	"crewtask/internal/domain"

	"github.com/google/uuid"
)

// Profile is the domain user record. Its ID is the internal user id that
// task and assignment rows reference; AuthID is the credentials principal.
// The two are distinct on purpose: auth accounts can be provisioned before
// (or re-linked without touching) the domain data keyed on the profile.
type Profile struct {
	ID         uuid.UUID   `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	AuthID     uuid.UUID   `gorm:"column:auth_id;type:uuid;not null;uniqueIndex"`
	Email      string      `gorm:"column:email;type:text;not null"`
	FirstName  string      `gorm:"column:first_name;type:varchar(100);not null"`
	LastName   string      `gorm:"column:last_name;type:varchar(100);not null"`
	Role       domain.Role `gorm:"column:role;type:varchar(20);not null;default:worker"`
	BusinessID uuid.UUID   `gorm:"column:business_id;type:uuid;not null;index"`
	CreatedAt  time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (Profile) TableName() string {
	return "users"
}
