package database

import (
	"gorm.io/gorm"

	"animal-shelter/internal/domain"
)

// Migrate 建表 + 外键（Adoption→Animal/Adopter, VeterinaryRecord→Animal）
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(domain.Models()...)
}
