package database

import "portfolio/internal/models"

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
		&models.Project{},
		&models.Like{},
		&models.ContactMessage{},
	}
}
