package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/kpiwowar/ofertomat/internal/models"
	"github.com/kpiwowar/ofertomat/internal/validation"
)

// CreateCategory adds a category with the given default margin.
// A taken name yields ErrConflict.
func (s *Store) CreateCategory(name string, defaultMargin float64) (uint, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	if !v.Empty() {
		return 0, v
	}

	var id uint
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("category %q: %w", name, ErrConflict)
		}
		cat := models.Category{Name: name, DefaultMargin: defaultMargin}
		if err := tx.Create(&cat).Error; err != nil {
			return err
		}
		id = cat.ID
		return nil
	})
	return id, err
}

// Categories lists all categories in name order.
func (s *Store) Categories() ([]models.Category, error) {
	var cats []models.Category
	if err := s.db.Order("name").Find(&cats).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// UpdateCategory renames a category and/or changes its default margin.
// Products referencing it see the new name immediately (live reference);
// offer lines do not (snapshot).
func (s *Store) UpdateCategory(id uint, name string, defaultMargin float64) error {
	v := validation.Violations{}
	validation.Required("name", name, v)
	if !v.Empty() {
		return v
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.First(&cat, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, ErrNotFound)
			}
			return err
		}
		var count int64
		if err := tx.Model(&models.Category{}).Where("name = ? AND id != ?", name, id).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("category %q: %w", name, ErrConflict)
		}
		return tx.Model(&cat).Updates(map[string]any{"name": name, "default_margin": defaultMargin}).Error
	})
}

// DeleteCategory removes a category. Its products are reassigned to the
// fallback category, never deleted. The fallback category itself cannot be
// deleted (ErrForbidden).
func (s *Store) DeleteCategory(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cat models.Category
		if err := tx.First(&cat, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("category %d: %w", id, ErrNotFound)
			}
			return err
		}
		if cat.IsFallback() {
			return fmt.Errorf("delete %q: %w", cat.Name, ErrForbidden)
		}
		fallback, err := ensureFallbackCategory(tx)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Product{}).
			Where("category_id = ?", id).
			Update("category_id", fallback.ID).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, id).Error
	})
}

// FallbackCategory returns the undeletable fallback category, creating it
// when missing.
func (s *Store) FallbackCategory() (models.Category, error) {
	var cat models.Category
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		cat, txErr = ensureFallbackCategory(tx)
		return txErr
	})
	return cat, err
}

func ensureFallbackCategory(tx *gorm.DB) (models.Category, error) {
	cat := models.Category{Name: models.FallbackCategoryName, DefaultMargin: models.DefaultMargin}
	err := tx.Where("name = ?", models.FallbackCategoryName).FirstOrCreate(&cat).Error
	return cat, err
}
