package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/kpiwowar/ofertomat/internal/models"
	"github.com/kpiwowar/ofertomat/internal/validation"
)

// ProductRow is a product joined with its category's name and default
// margin, as every catalog read needs both for display and for snapshotting
// offer lines.
type ProductRow struct {
	models.Product
	CategoryName  string
	DefaultMargin float64
}

// ProductCandidate is the normalized shape the importer produces and the
// batch import consumes.
type ProductCandidate struct {
	Code             string
	Name             string
	Unit             string
	PurchasePriceNet float64
	VATRate          float64
	CategoryID       *uint
}

const productJoin = "LEFT JOIN categories ON categories.id = products.category_id"

// columns shared by every joined product read; margin falls back to the
// catalog default when the product has no category.
const productColumns = "products.*, COALESCE(categories.name, '') AS category_name, COALESCE(categories.default_margin, 30.0) AS default_margin"

// CreateProduct inserts a product and stamps PriceUpdateDate.
func (s *Store) CreateProduct(code, name, unit string, purchasePriceNet, vatRate float64, categoryID *uint) (uint, error) {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.NonNegativeFloat("purchase_price_net", purchasePriceNet, v)
	validation.NonNegativeFloat("vat_rate", vatRate, v)
	if !v.Empty() {
		return 0, v
	}
	if unit == "" {
		unit = models.DefaultUnit
	}
	p := models.Product{
		Code:             code,
		Name:             name,
		Unit:             unit,
		PurchasePriceNet: purchasePriceNet,
		PriceUpdateDate:  time.Now(),
		VATRate:          vatRate,
		CategoryID:       categoryID,
	}
	if err := s.db.Create(&p).Error; err != nil {
		return 0, fmt.Errorf("create product %q: %w", name, err)
	}
	return p.ID, nil
}

// UpdateProduct rewrites a product's fields. PriceUpdateDate is refreshed
// only when the purchase price actually moved (beyond the 0.001 tolerance);
// identity-only edits leave it untouched. A non-empty code held by another
// product yields ErrConflict.
func (s *Store) UpdateProduct(id uint, code, name, unit string, purchasePriceNet, vatRate float64, categoryID *uint) error {
	v := validation.Violations{}
	validation.Required("name", name, v)
	validation.NonNegativeFloat("purchase_price_net", purchasePriceNet, v)
	validation.NonNegativeFloat("vat_rate", vatRate, v)
	if !v.Empty() {
		return v
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var existing models.Product
		if err := tx.First(&existing, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("product %d: %w", id, ErrNotFound)
			}
			return err
		}
		if code != "" {
			var count int64
			if err := tx.Model(&models.Product{}).Where("code = ? AND id != ?", code, id).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("product code %q: %w", code, ErrConflict)
			}
		}
		updates := map[string]any{
			"code":        code,
			"name":        name,
			"unit":        unit,
			"vat_rate":    vatRate,
			"category_id": categoryID,
		}
		if existing.PriceChanged(purchasePriceNet) {
			updates["purchase_price_net"] = purchasePriceNet
			updates["price_update_date"] = time.Now()
		}
		return tx.Model(&existing).Updates(updates).Error
	})
}

func (s *Store) DeleteProduct(id uint) error {
	res := s.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteProducts removes a set of products as one transaction and reports
// how many rows were actually deleted.
func (s *Store) DeleteProducts(ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var deleted int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Product{}, ids)
		deleted = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("bulk delete products: %w", err)
	}
	return deleted, nil
}

func (s *Store) ProductByID(id uint) (*ProductRow, error) {
	var row ProductRow
	err := s.db.Table("products").
		Select(productColumns).
		Joins(productJoin).
		Where("products.id = ?", id).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product %d: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &row, nil
}

// Products lists the catalog in name order, optionally limited to one
// category.
func (s *Store) Products(categoryID *uint) ([]ProductRow, error) {
	q := s.db.Table("products").
		Select(productColumns).
		Joins(productJoin).
		Order("products.name")
	if categoryID != nil {
		q = q.Where("products.category_id = ?", *categoryID)
	}
	var rows []ProductRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return rows, nil
}

// SearchProducts pages through the catalog with an optional category filter
// and a case-insensitive name/code match. It returns the page and the total
// matching count. Safe to call concurrently with composer work.
func (s *Store) SearchProducts(categoryID *uint, query string, page, pageSize int) ([]ProductRow, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}

	base := s.db.Table("products")
	if categoryID != nil {
		base = base.Where("products.category_id = ?", *categoryID)
	}
	if q := strings.TrimSpace(query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		base = base.Where("LOWER(products.name) LIKE ? OR LOWER(products.code) LIKE ?", like, like)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count products: %w", err)
	}

	var rows []ProductRow
	err := base.Session(&gorm.Session{}).
		Select(productColumns).
		Joins(productJoin).
		Order("products.name").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("search products: %w", err)
	}
	return rows, total, nil
}

// ImportProductsBatch upserts candidates keyed on code: an existing code is
// updated (price date stamped), an unseen one inserted. The whole batch is
// one transaction; the exact added/updated split is always reported.
func (s *Store) ImportProductsBatch(candidates []ProductCandidate) (added, updated int, err error) {
	now := time.Now()
	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, c := range candidates {
			var existing models.Product
			findErr := tx.Where("code = ?", c.Code).Take(&existing).Error
			switch {
			case findErr == nil:
				updates := map[string]any{
					"name":               c.Name,
					"unit":               c.Unit,
					"purchase_price_net": c.PurchasePriceNet,
					"price_update_date":  now,
					"vat_rate":           c.VATRate,
					"category_id":        c.CategoryID,
				}
				if err := tx.Model(&existing).Updates(updates).Error; err != nil {
					return err
				}
				updated++
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				p := models.Product{
					Code:             c.Code,
					Name:             c.Name,
					Unit:             c.Unit,
					PurchasePriceNet: c.PurchasePriceNet,
					PriceUpdateDate:  now,
					VATRate:          c.VATRate,
					CategoryID:       c.CategoryID,
				}
				if err := tx.Create(&p).Error; err != nil {
					return err
				}
				added++
			default:
				return findErr
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("import batch: %w", err)
	}
	s.log.Info().Int("added", added).Int("updated", updated).Msg("zaimportowano produkty")
	return added, updated, nil
}

// PriceUpdate carries one row of a bulk price change.
type PriceUpdate struct {
	ID               uint
	PurchasePriceNet float64
}

// BulkUpdatePrices applies purchase-price changes as one transaction,
// stamping PriceUpdateDate on every touched row, and reports exactly how
// many products were updated (stale ids count as not updated).
func (s *Store) BulkUpdatePrices(updates []PriceUpdate) (int, error) {
	now := time.Now()
	changed := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, u := range updates {
			res := tx.Model(&models.Product{}).
				Where("id = ?", u.ID).
				Updates(map[string]any{"purchase_price_net": u.PurchasePriceNet, "price_update_date": now})
			if res.Error != nil {
				return res.Error
			}
			changed += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("bulk price update: %w", err)
	}
	return changed, nil
}
