package repository

import (
	"gorm.io/gorm"

	"storebot/internal/catalog"
	"storebot/internal/models"
)

type dimColumn struct {
	col   string
	table string
}

// Device brand lives on the device model, hence the dm join in every query.
var dimColumns = map[catalog.Dimension]dimColumn{
	catalog.Category:    {col: "p.category_id", table: "categories"},
	catalog.Brand:       {col: "p.accessory_brand_id", table: "accessory_brands"},
	catalog.DeviceBrand: {col: "dm.device_brand_id", table: "device_brands"},
	catalog.DeviceModel: {col: "p.device_model_id", table: "device_models"},
	catalog.Series:      {col: "p.series_id", table: "series"},
	catalog.Color:       {col: "p.color_id", table: "colors"},
}

// CatalogRepository answers filter queries over active products. It
// implements catalog.Source.
type CatalogRepository struct {
	db       *gorm.DB
	products *ProductRepository
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db, products: NewProductRepository(db)}
}

func (r *CatalogRepository) base(sel catalog.Selection) *gorm.DB {
	q := r.db.Table("products AS p").
		Joins("LEFT JOIN device_models AS dm ON dm.id = p.device_model_id").
		Where("p.is_active = ?", true)
	for _, dim := range catalog.Dimensions {
		id, ok := sel[dim]
		if !ok {
			continue
		}
		col := dimColumns[dim].col
		if id == 0 {
			q = q.Where(col + " IS NULL")
		} else {
			q = q.Where(col+" = ?", id)
		}
	}
	return q
}

// CountOptions counts distinct values of dim, NULL included as its own value.
func (r *CatalogRepository) CountOptions(dim catalog.Dimension, sel catalog.Selection) (int64, error) {
	c, ok := dimColumns[dim]
	if !ok {
		return 0, nil
	}
	var n int64
	err := r.base(sel).Select("COUNT(DISTINCT COALESCE(" + c.col + ", 0))").Scan(&n).Error
	return n, err
}

type optionRow struct {
	ID        uint
	Name      *string
	SortOrder int
}

// ListOptions lists distinct values of dim ordered by sort_order then name.
// The NULL value comes back with ID 0 and an empty name.
func (r *CatalogRepository) ListOptions(dim catalog.Dimension, sel catalog.Selection, offset, limit int) ([]catalog.Option, error) {
	c, ok := dimColumns[dim]
	if !ok {
		return nil, nil
	}
	key := "COALESCE(" + c.col + ", 0)"

	var rows []optionRow
	q := r.base(sel).
		Joins("LEFT JOIN "+c.table+" AS d ON d.id = "+c.col).
		Select(key + " AS id, d.name AS name, COALESCE(d.sort_order, 0) AS sort_order").
		Group(key + ", d.name, d.sort_order").
		Order("sort_order ASC, name ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]catalog.Option, 0, len(rows))
	for _, row := range rows {
		opt := catalog.Option{ID: row.ID}
		if row.Name != nil {
			opt.Name = *row.Name
		}
		out = append(out, opt)
	}
	return out, nil
}

func (r *CatalogRepository) CountProducts(sel catalog.Selection) (int64, error) {
	var n int64
	err := r.base(sel).Count(&n).Error
	return n, err
}

// ListProducts returns matching products cheapest first; unpriced ones last.
func (r *CatalogRepository) ListProducts(sel catalog.Selection, offset, limit int) ([]models.Product, error) {
	var ids []uint
	q := r.base(sel).Order("p.price IS NULL, p.price ASC, p.id ASC")
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Pluck("p.id", &ids).Error; err != nil {
		return nil, err
	}
	return r.products.FindByIDs(ids)
}
