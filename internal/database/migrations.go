package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/task-hierarchy-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes makes sure the indexes the visibility queries rely on exist,
// including on tables created before the index tags were added.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model any
		name  string
	}{
		// Owner lookups, optionally narrowed by status
		{&models.Task{}, "idx_tasks_owner_status"},
		// Delegation lookups
		{&models.Task{}, "idx_tasks_assigned_by"},
		{&models.Task{}, "idx_tasks_parent_task"},
		// Director report view
		{&models.Task{}, "idx_tasks_reported"},
	}

	migrator := db.Migrator()
	for _, idx := range indexes {
		if migrator.HasIndex(idx.model, idx.name) {
			continue
		}
		if err := migrator.CreateIndex(idx.model, idx.name); err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
		log.Printf("Created index %s", idx.name)
	}

	return nil
}
