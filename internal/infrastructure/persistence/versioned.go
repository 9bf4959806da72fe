package persistence

import (
	"github.com/murdhanno/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type versioned interface {
	StoredVersion() int
}

// saveVersioned inserts an aggregate that was never stored. Otherwise it
// updates the row only while it still carries the version the aggregate was
// loaded at, so a concurrent writer's change is never overwritten.
func saveVersioned(tx *gorm.DB, model any, root versioned) error {
	expected := root.StoredVersion()
	if expected == 0 {
		return tx.Omit(clause.Associations).Create(model).Error
	}

	result := tx.Model(model).
		Where("version = ?", expected).
		Select("*").
		Omit("created_at", clause.Associations).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}
