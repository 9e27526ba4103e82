package persistence

import (
	"github.com/google/uuid"
	"github.com/openbooks/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// loadLineItems fetches the line items of one document in position order
func loadLineItems(db *gorm.DB, documentID uuid.UUID, documentType string) ([]models.LineItemModel, error) {
	var items []models.LineItemModel
	err := db.
		Where("document_id = ? AND document_type = ?", documentID, documentType).
		Order("position ASC").
		Find(&items).Error
	return items, err
}

// replaceLineItems rewrites a document's line items to match the given set.
// Line items have no independent lifecycle; the document is the unit of
// consistency, so a full replace is simpler than diffing.
func replaceLineItems(db *gorm.DB, documentID uuid.UUID, documentType string, items []models.LineItemModel) error {
	if err := db.
		Where("document_id = ? AND document_type = ?", documentID, documentType).
		Delete(&models.LineItemModel{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&items).Error
}
