package store

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kpiwowar/ofertomat/internal/models"
	"github.com/kpiwowar/ofertomat/internal/validation"
)

// SaveOffer persists a new offer template. Items are stored in slice order
// and the rank map becomes the persisted category order.
func (s *Store) SaveOffer(title string, items []models.OfferItem, ranks map[string]int) (uint, error) {
	v := validation.Violations{}
	validation.Required("title", title, v)
	if !v.Empty() {
		return 0, v
	}

	now := time.Now()
	offer := models.Offer{Title: title, CreatedDate: now, ModifiedDate: now}
	offer.SetRankMap(ranks)

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&offer).Error; err != nil {
			return err
		}
		for i := range items {
			// Work on a copy so the caller's slice is never rewritten.
			item := items[i]
			item.ID = 0
			item.OfferID = offer.ID
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("save offer %q: %w", title, err)
	}
	return offer.ID, nil
}

// UpdateOffer rewrites an existing template: title, category order and the
// full item list. CreatedDate is kept, ModifiedDate refreshed.
func (s *Store) UpdateOffer(id uint, title string, items []models.OfferItem, ranks map[string]int) error {
	v := validation.Violations{}
	validation.Required("title", title, v)
	if !v.Empty() {
		return v
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var offer models.Offer
		if err := tx.First(&offer, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("offer %d: %w", id, ErrNotFound)
			}
			return err
		}
		offer.Title = title
		offer.ModifiedDate = time.Now()
		offer.SetRankMap(ranks)
		if err := tx.Model(&offer).Updates(map[string]any{
			"title":          offer.Title,
			"modified_date":  offer.ModifiedDate,
			"category_order": offer.CategoryOrder,
		}).Error; err != nil {
			return err
		}
		if err := tx.Where("offer_id = ?", id).Delete(&models.OfferItem{}).Error; err != nil {
			return err
		}
		for i := range items {
			item := items[i]
			item.ID = 0
			item.OfferID = id
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("update offer %d: %w", id, err)
	}
	return nil
}

// OfferByID loads a full offer, items in their stored order.
func (s *Store) OfferByID(id uint) (*models.Offer, error) {
	var offer models.Offer
	if err := s.db.First(&offer, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("offer %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	if err := s.db.Where("offer_id = ?", id).Order("id").Find(&offer.Items).Error; err != nil {
		return nil, fmt.Errorf("load offer items: %w", err)
	}
	return &offer, nil
}

// Offers lists saved templates, most recently modified first, without items.
func (s *Store) Offers() ([]models.Offer, error) {
	var offers []models.Offer
	if err := s.db.Order("modified_date DESC").Find(&offers).Error; err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// DeleteOffer removes a template and its items.
func (s *Store) DeleteOffer(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("offer_id = ?", id).Delete(&models.OfferItem{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Offer{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("offer %d: %w", id, ErrNotFound)
		}
		return nil
	})
}
