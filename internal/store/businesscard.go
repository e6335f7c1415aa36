package store

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kpiwowar/ofertomat/internal/models"
)

// BusinessCard returns the singleton card, or nil when none was saved yet.
// Absence is not an error.
func (s *Store) BusinessCard() (*models.BusinessCard, error) {
	var card models.BusinessCard
	err := s.db.Take(&card, models.BusinessCardID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load business card: %w", err)
	}
	return &card, nil
}

// SaveBusinessCard upserts the singleton row.
func (s *Store) SaveBusinessCard(company, fullName, phone, email string) error {
	card := models.BusinessCard{
		ID:       models.BusinessCardID,
		Company:  company,
		FullName: fullName,
		Phone:    phone,
		Email:    email,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&card).Error
	if err != nil {
		return fmt.Errorf("save business card: %w", err)
	}
	return nil
}
