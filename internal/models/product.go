package models

import "time"

// Catalog defaults mirrored by the persistence layer and the composer.
const (
	FallbackCategoryName = "Bez kategorii"
	DefaultMargin        = 30.0
	DefaultVATRate       = 23.0
	DefaultUnit          = "szt."
)

// Category groups products and carries the margin applied to its products
// when they are added to an offer.
type Category struct {
	ID            uint    `gorm:"primaryKey"`
	Name          string  `gorm:"not null;unique"`
	DefaultMargin float64 `gorm:"not null;default:0"`
}

// IsFallback reports whether this is the undeletable fallback category.
func (c *Category) IsFallback() bool { return c.Name == FallbackCategoryName }

type Product struct {
	ID   uint   `gorm:"primaryKey"`
	Code string `gorm:"index"` // optional, not unique at schema level
	Name string `gorm:"not null;index"`
	Unit string `gorm:"not null;default:'szt.'"`
	// Net purchase price; PriceUpdateDate moves only when this changes.
	PurchasePriceNet float64 `gorm:"not null;default:0"`
	PriceUpdateDate  time.Time
	VATRate          float64   `gorm:"not null;default:23"`
	CategoryID       *uint     `gorm:"index"`
	Category         *Category `gorm:"foreignKey:CategoryID"`
}

// PriceChangeTolerance is the absolute purchase-price delta below which an
// update is considered identity-only and PriceUpdateDate stays untouched.
const PriceChangeTolerance = 0.001

// PriceChanged reports whether newPrice differs enough from the stored
// purchase price to count as a price update.
func (p *Product) PriceChanged(newPrice float64) bool {
	diff := p.PurchasePriceNet - newPrice
	if diff < 0 {
		diff = -diff
	}
	return diff > PriceChangeTolerance
}
