package recording

import "gorm.io/gorm"

// Migrate creates or updates the recording tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Recording{}, &Chunk{}, &StreamChunk{})
}
