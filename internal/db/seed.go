package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/kpiwowar/ofertomat/internal/models"
)

// SeedIfEmpty loads a small demo catalog when the product table is empty.
// Safe to run repeatedly.
func SeedIfEmpty(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	baseCategories := []models.Category{
		{Name: "Kable i przewody", DefaultMargin: 25},
		{Name: "Osprzęt elektroinstalacyjny", DefaultMargin: 35},
		{Name: "Oświetlenie", DefaultMargin: 40},
	}
	for i := range baseCategories {
		c := &baseCategories[i]
		if err := db.Where("name = ?", c.Name).FirstOrCreate(c).Error; err != nil {
			return err
		}
	}

	now := time.Now()
	products := []models.Product{
		{Code: "YDY-315", Name: "Przewód YDY 3x1,5 450/750V", Unit: "mb", PurchasePriceNet: 2.85, VATRate: 23, CategoryID: &baseCategories[0].ID, PriceUpdateDate: now},
		{Code: "YDY-325", Name: "Przewód YDY 3x2,5 450/750V", Unit: "mb", PurchasePriceNet: 4.40, VATRate: 23, CategoryID: &baseCategories[0].ID, PriceUpdateDate: now},
		{Code: "GN-2P", Name: "Gniazdo podwójne z uziemieniem", Unit: "szt.", PurchasePriceNet: 11.20, VATRate: 23, CategoryID: &baseCategories[1].ID, PriceUpdateDate: now},
		{Code: "WL-1", Name: "Łącznik pojedynczy podtynkowy", Unit: "szt.", PurchasePriceNet: 7.60, VATRate: 23, CategoryID: &baseCategories[1].ID, PriceUpdateDate: now},
		{Code: "LED-9W", Name: "Żarówka LED 9W E27", Unit: "szt.", PurchasePriceNet: 5.10, VATRate: 23, CategoryID: &baseCategories[2].ID, PriceUpdateDate: now},
	}
	for i := range products {
		p := &products[i]
		if err := db.Where("code = ?", p.Code).FirstOrCreate(p).Error; err != nil {
			return err
		}
	}
	return nil
}
