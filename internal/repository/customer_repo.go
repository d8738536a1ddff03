package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storebot/internal/models"
)

// CustomerRepository handles customer database operations.
type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

// Upsert creates the customer or refreshes the username.
func (r *CustomerRepository) Upsert(telegramID int64, username string) (*models.Customer, error) {
	customer := models.Customer{TelegramID: telegramID, Username: username}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "telegram_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username"}),
	}).Create(&customer).Error
	if err != nil {
		return nil, err
	}
	return r.FindByTelegramID(telegramID)
}

func (r *CustomerRepository) FindByTelegramID(telegramID int64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.Where("telegram_id = ?", telegramID).First(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// FindAll returns customers with pagination and username search.
func (r *CustomerRepository) FindAll(limit, page int, query string) ([]models.Customer, int64, error) {
	var customers []models.Customer
	var total int64

	db := r.db.Model(&models.Customer{})
	if query != "" {
		db = db.Where("username LIKE ?", "%"+query+"%")
	}
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	if err := db.Order("id DESC").Limit(limit).Offset(offset).Find(&customers).Error; err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

// CartRepository handles cart_items rows. UserID is the customer's telegram id.
type CartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) *CartRepository {
	return &CartRepository{db: db}
}

// FindByUser returns cart rows with products loaded, oldest first.
func (r *CartRepository) FindByUser(userID int64) ([]models.CartItem, error) {
	var items []models.CartItem
	err := preloadProduct(r.db, "Product.").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *CartRepository) FindItem(userID int64, itemID uint) (*models.CartItem, error) {
	var item models.CartItem
	err := preloadProduct(r.db, "Product.").
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AddQuantity adds qty to the user's row for the product, creating it when
// absent. The stored quantity never exceeds maxQty.
func (r *CartRepository) AddQuantity(userID int64, productID uint, qty, maxQty int) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = models.CartItem{UserID: userID, ProductID: productID, Quantity: min(qty, maxQty)}
			return tx.Create(&item).Error
		}
		if err != nil {
			return err
		}
		item.Quantity = min(item.Quantity+qty, maxQty)
		return tx.Model(&item).Update("quantity", item.Quantity).Error
	})
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartRepository) SetQuantity(userID int64, itemID uint, qty int) error {
	return r.db.Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", qty).Error
}

func (r *CartRepository) Delete(userID int64, itemID uint) error {
	return r.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&models.CartItem{}).Error
}

func (r *CartRepository) DeleteByUser(userID int64) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// CountUnits sums quantities in the user's cart.
func (r *CartRepository) CountUnits(userID int64) (int64, error) {
	var n int64
	err := r.db.Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&n).Error
	return n, err
}

// DeleteStale removes rows not touched since before.
func (r *CartRepository) DeleteStale(before time.Time) (int64, error) {
	res := r.db.Where("updated_at < ?", before).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
