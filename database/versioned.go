package database

import (
	"errors"

	"academy/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SaveVersioned writes every column of model only if the row still carries
// *version, then bumps it. A concurrent writer yields models.ErrStaleRecord.
func SaveVersioned(tx *gorm.DB, model interface{}, version *uint) error {
	expected := *version
	*version = expected + 1

	res := tx.Model(model).
		Where("version = ?", expected).
		Select("*").
		Omit(clause.Associations).
		Updates(model)
	if res.Error != nil {
		*version = expected
		return res.Error
	}
	if res.RowsAffected == 0 {
		*version = expected
		return models.ErrStaleRecord
	}
	return nil
}

// NotFound maps gorm's missing-row error onto models.ErrNotFound.
func NotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}
