// Package composer holds the mutable working set of an offer being built
// or edited: an ordered list of line items plus the user-defined category
// sequence. It is plain data with no storage or UI dependency; callers pass
// a *Composer around explicitly.
package composer

import (
	"errors"
	"time"

	"github.com/kpiwowar/ofertomat/internal/models"
)

// ErrAlreadyPresent is returned when a catalog product is added twice.
var ErrAlreadyPresent = errors.New("produkt jest już w ofercie")

// Direction moves a category or an item one step in its ordering.
type Direction int

const (
	Up Direction = iota
	Down
)

type Composer struct {
	Title         string
	items         []*models.OfferItem
	categoryOrder []string
}

const defaultTitle = "Oferta handlowa"

func New() *Composer {
	return &Composer{Title: defaultTitle}
}

// ItemFromProduct snapshots a catalog product into an offer line.
// categoryName and defaultMargin come from the product's category at this
// moment; the line never re-syncs with later catalog or category edits.
// defaultMargin is taken as-is, so an at-cost category (0%) stays at 0%;
// catalog reads already substitute the default margin for uncategorized
// products. An empty category name falls back to the reserved category.
func ItemFromProduct(p models.Product, categoryName string, defaultMargin float64) *models.OfferItem {
	id := p.ID
	if categoryName == "" {
		categoryName = models.FallbackCategoryName
	}
	unit := p.Unit
	if unit == "" {
		unit = models.DefaultUnit
	}
	return &models.OfferItem{
		ProductID:        &id,
		Name:             p.Name,
		CategoryName:     categoryName,
		Unit:             unit,
		PurchasePriceNet: p.PurchasePriceNet,
		VATRate:          p.VATRate,
		Margin:           defaultMargin,
		Quantity:         1.0,
	}
}

// Add appends item, keeping overall insertion order. A line whose
// ProductID matches an existing line is rejected with ErrAlreadyPresent.
// The item's category is appended to the category order when unseen; new
// categories always go to the end.
func (c *Composer) Add(item *models.OfferItem) error {
	if item.ProductID != nil {
		for _, existing := range c.items {
			if existing.ProductID != nil && *existing.ProductID == *item.ProductID {
				return ErrAlreadyPresent
			}
		}
	}
	c.items = append(c.items, item)
	c.trackCategory(item.CategoryOr(models.FallbackCategoryName))
	return nil
}

// BulkAdd adds every item not already present, in input order, and reports
// exactly which names were added and which were skipped.
func (c *Composer) BulkAdd(items []*models.OfferItem) (added, alreadyPresent []string) {
	for _, item := range items {
		if err := c.Add(item); err != nil {
			alreadyPresent = append(alreadyPresent, item.Name)
			continue
		}
		added = append(added, item.Name)
	}
	return added, alreadyPresent
}

// Remove drops the line (matched by identity). The category order is left
// alone: a category may stay ranked with zero items and renderers skip it.
func (c *Composer) Remove(item *models.OfferItem) bool {
	for i, existing := range c.items {
		if existing == item {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return true
		}
	}
	return false
}

// Recategorize moves the line to another category in place. The line keeps
// its position in the overall list; only the snapshot name changes. The new
// category is appended to the order when unseen.
func (c *Composer) Recategorize(item *models.OfferItem, category string) {
	if category == "" {
		category = models.FallbackCategoryName
	}
	item.CategoryName = category
	c.trackCategory(category)
}

// MoveCategory swaps the category with its neighbour in the order.
// Returns false (no-op) at the boundaries or for unknown names.
func (c *Composer) MoveCategory(name string, dir Direction) bool {
	idx := -1
	for i, n := range c.categoryOrder {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	swap := idx - 1
	if dir == Down {
		swap = idx + 1
	}
	if swap < 0 || swap >= len(c.categoryOrder) {
		return false
	}
	c.categoryOrder[idx], c.categoryOrder[swap] = c.categoryOrder[swap], c.categoryOrder[idx]
	return true
}

// MoveItem swaps the line with the adjacent line of the same category.
// Ranks within a category are by encounter order in the overall list, and
// the swap exchanges overall-list positions, so lines of other categories
// in between are untouched. Returns false at the boundaries.
func (c *Composer) MoveItem(categoryName string, item *models.OfferItem, dir Direction) bool {
	var peers []int
	rank := -1
	for i, existing := range c.items {
		if existing.CategoryOr(models.FallbackCategoryName) != categoryName {
			continue
		}
		if existing == item {
			rank = len(peers)
		}
		peers = append(peers, i)
	}
	if rank < 0 {
		return false
	}
	other := rank - 1
	if dir == Down {
		other = rank + 1
	}
	if other < 0 || other >= len(peers) {
		return false
	}
	i, j := peers[rank], peers[other]
	c.items[i], c.items[j] = c.items[j], c.items[i]
	return true
}

// Clear empties the working set, including the category order.
func (c *Composer) Clear() {
	c.items = nil
	c.categoryOrder = nil
}

func (c *Composer) Len() int { return len(c.items) }

// Items returns the lines in overall order. The slice is a copy; the
// pointed-to items are the live lines and may be edited in place.
func (c *Composer) Items() []*models.OfferItem {
	out := make([]*models.OfferItem, len(c.items))
	copy(out, c.items)
	return out
}

// CategoryOrder returns a copy of the current category sequence.
func (c *Composer) CategoryOrder() []string {
	out := make([]string, len(c.categoryOrder))
	copy(out, c.categoryOrder)
	return out
}

// RankMap renders the category sequence as the persisted rank form.
func (c *Composer) RankMap() map[string]int {
	ranks := make(map[string]int, len(c.categoryOrder))
	for i, name := range c.categoryOrder {
		ranks[name] = i
	}
	return ranks
}

// ToOffer serializes the working set into the persisted shape. Item order
// and category order survive a save/load round trip exactly.
func (c *Composer) ToOffer() models.Offer {
	o := models.Offer{Title: c.Title, ModifiedDate: time.Now()}
	o.SetRankMap(c.RankMap())
	o.Items = make([]models.OfferItem, len(c.items))
	for i, item := range c.items {
		o.Items[i] = *item
	}
	return o
}

// FromOffer rebuilds a working set from a persisted offer: items in stored
// order, categories by rank. Categories that appear on items but are
// missing from the rank map are appended after all ranked ones, in item
// encounter order, so the order stays total.
func FromOffer(o *models.Offer) *Composer {
	c := &Composer{Title: o.Title}
	if c.Title == "" {
		c.Title = defaultTitle
	}
	c.categoryOrder = o.OrderedCategories()
	for i := range o.Items {
		item := o.Items[i]
		c.items = append(c.items, &item)
		c.trackCategory(item.CategoryOr(models.FallbackCategoryName))
	}
	return c
}

func (c *Composer) trackCategory(name string) {
	for _, existing := range c.categoryOrder {
		if existing == name {
			return
		}
	}
	c.categoryOrder = append(c.categoryOrder, name)
}
