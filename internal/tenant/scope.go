// Package tenant scopes queries to the owning admin. Every driver,
// delivery and salary row belongs to exactly one admin; cross-admin reads
// are never allowed.
package tenant

import "gorm.io/gorm"

func Scope(adminID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("admin_id = ?", adminID)
	}
}
