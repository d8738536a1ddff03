package repository

import (
	"gorm.io/gorm"

	"storebot/internal/models"
)

// ProductRepository handles product database operations.
type ProductRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// preloadProduct loads every product relation under prefix ("" for the
// product itself, "Product." for rows that reference one).
func preloadProduct(db *gorm.DB, prefix string) *gorm.DB {
	return db.
		Preload(prefix+"Category").
		Preload(prefix+"AccessoryBrand").
		Preload(prefix+"DeviceModel.DeviceBrand").
		Preload(prefix+"Series").
		Preload(prefix+"Variation").
		Preload(prefix+"Color").
		Preload(prefix+"Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("is_main DESC, id ASC")
		})
}

// FindByID returns a product with every relation loaded, active or not.
func (r *ProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	if err := preloadProduct(r.db, "").Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByIDs loads products keeping the order of ids.
func (r *ProductRepository) FindByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var found []models.Product
	if err := preloadProduct(r.db, "").Where("id IN ?", ids).Find(&found).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]models.Product, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}
	products := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

// SetActive hides or shows a product in the catalog. gorm.ErrRecordNotFound
// means there is no such product.
func (r *ProductRepository) SetActive(id uint, active bool) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := r.db.Model(&models.Product{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
