package tenant

import "gorm.io/gorm"

// Scope restricts any query to a single business. Every roster, task and
// performance read goes through this.
func Scope(businessID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("business_id = ?", businessID)
	}
}
