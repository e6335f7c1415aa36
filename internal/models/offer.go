package models

import (
	"encoding/json"
	"sort"
	"time"
)

// Offer is a persisted offer template. Items keep their insertion order
// (row id order) and CategoryOrder holds the user-defined category sequence
// as a JSON rank map, e.g. {"Kable":0,"Osprzęt":1}.
type Offer struct {
	ID            uint   `gorm:"primaryKey"`
	Title         string `gorm:"not null"`
	CreatedDate   time.Time
	ModifiedDate  time.Time   `gorm:"index"`
	CategoryOrder string      `gorm:"type:text"`
	Items         []OfferItem `gorm:"foreignKey:OfferID;constraint:OnDelete:CASCADE"`
}

// RankMap decodes the persisted category rank map. Missing or malformed
// data yields an empty map, never an error.
func (o *Offer) RankMap() map[string]int {
	m := map[string]int{}
	if o.CategoryOrder == "" {
		return m
	}
	if err := json.Unmarshal([]byte(o.CategoryOrder), &m); err != nil {
		return map[string]int{}
	}
	return m
}

// SetRankMap encodes ranks into the persisted form.
func (o *Offer) SetRankMap(ranks map[string]int) {
	if len(ranks) == 0 {
		o.CategoryOrder = "{}"
		return
	}
	b, err := json.Marshal(ranks)
	if err != nil {
		o.CategoryOrder = "{}"
		return
	}
	o.CategoryOrder = string(b)
}

// OrderedCategories returns the category names of the rank map sorted by
// (rank, name). Names absent from the map are not included.
func (o *Offer) OrderedCategories() []string {
	ranks := o.RankMap()
	names := make([]string, 0, len(ranks))
	for name := range ranks {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if ranks[names[i]] != ranks[names[j]] {
			return ranks[names[i]] < ranks[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// OfferItem is one line of an offer. Everything is snapshotted from the
// catalog at add time; later catalog edits never reach back into a saved
// offer. ProductID is informational and may be nil for free-floating lines.
type OfferItem struct {
	ID               uint `gorm:"primaryKey"`
	OfferID          uint `gorm:"not null;index"`
	ProductID        *uint
	Name             string `gorm:"not null"`
	CategoryName     string
	Unit             string
	PurchasePriceNet float64
	VATRate          float64
	Margin           float64
	Quantity         float64 `gorm:"not null;default:1"`
}

// CategoryOr returns the snapshotted category name, or fallback when the
// line never had one.
func (it *OfferItem) CategoryOr(fallback string) string {
	if it.CategoryName == "" {
		return fallback
	}
	return it.CategoryName
}
