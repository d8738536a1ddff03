package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storebot/internal/models"
)

var (
	ErrCartEmpty          = errors.New("cart is empty")
	ErrProductUnavailable = errors.New("product is unavailable")
)

// OrderFilter narrows FindAll. Zero fields are ignored.
type OrderFilter struct {
	StatusID   uint
	CustomerID int64
}

// OrderRepository handles orders, order items and statuses.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateFromCart turns the user's cart into an order in one transaction:
// the order row, one item per cart row with the current unit price, the
// total, and removal of the cart. Nothing is written on failure. Cart rows
// are read FOR UPDATE so a second checkout of the same cart, from any
// process, waits and then finds it empty.
func (r *OrderRepository) CreateFromCart(userID int64, statusID uint) (*models.Order, error) {
	var order models.Order
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var cart []models.CartItem
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Product").
			Where("user_id = ?", userID).
			Order("id ASC").
			Find(&cart).Error; err != nil {
			return fmt.Errorf("load cart: %w", err)
		}
		if len(cart) == 0 {
			return ErrCartEmpty
		}

		items := make([]models.OrderItem, 0, len(cart))
		total := 0
		for _, ci := range cart {
			if ci.Product == nil || !ci.Product.IsActive {
				return fmt.Errorf("%w: #%d", ErrProductUnavailable, ci.ProductID)
			}
			price := ci.Product.UnitPrice()
			total += price * ci.Quantity
			items = append(items, models.OrderItem{
				ProductID: ci.ProductID,
				Quantity:  ci.Quantity,
				Price:     price,
			})
		}

		order = models.Order{CustomerID: userID, TotalPrice: total}
		if statusID != 0 {
			order.StatusID = &statusID
		}
		if err := tx.Omit("Items", "Customer", "Status").Create(&order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return fmt.Errorf("create order items: %w", err)
		}
		if err := tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByID returns an order with items, products, status and customer.
func (r *OrderRepository) FindByID(id uint) (*models.Order, error) {
	var order models.Order
	err := preloadProduct(r.db, "Items.Product.").
		Preload("Status").
		Preload("Customer").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindBetween returns orders created in [from, to) with their items, oldest
// first.
func (r *OrderRepository) FindBetween(from, to time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := preloadProduct(r.db, "Items.Product.").
		Preload("Status").
		Preload("Customer").
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *OrderRepository) filtered(filter OrderFilter) *gorm.DB {
	db := r.db.Model(&models.Order{})
	if filter.StatusID != 0 {
		db = db.Where("status_id = ?", filter.StatusID)
	}
	if filter.CustomerID != 0 {
		db = db.Where("customer_id = ?", filter.CustomerID)
	}
	return db
}

func (r *OrderRepository) Count(filter OrderFilter) (int64, error) {
	var total int64
	err := r.filtered(filter).Count(&total).Error
	return total, err
}

// FindAll returns orders newest first with pagination.
func (r *OrderRepository) FindAll(limit, page int, filter OrderFilter) ([]models.Order, int64, error) {
	var orders []models.Order
	var total int64

	db := r.filtered(filter)
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

	err := db.Preload("Status").Preload("Customer").
		Order("id DESC").Limit(limit).Offset(offset).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *OrderRepository) UpdateStatus(orderID, statusID uint) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", orderID).Update("status_id", statusID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrderRepository) Statuses() ([]models.OrderStatus, error) {
	var statuses []models.OrderStatus
	err := r.db.Order("id ASC").Find(&statuses).Error
	return statuses, err
}

func (r *OrderRepository) FindStatus(id uint) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.Where("id = ?", id).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

func (r *OrderRepository) FindStatusByName(name string) (*models.OrderStatus, error) {
	var status models.OrderStatus
	if err := r.db.Where("name = ?", name).First(&status).Error; err != nil {
		return nil, err
	}
	return &status, nil
}

// StatusSummary is one row of the daily report.
type StatusSummary struct {
	Status  string `json:"status"`
	Orders  int64  `json:"orders"`
	Revenue int64  `json:"revenue"`
}

// SummaryBetween groups orders created in [from, to) by status.
func (r *OrderRepository) SummaryBetween(from, to time.Time) ([]StatusSummary, error) {
	var rows []StatusSummary
	err := r.db.Table("orders AS o").
		Joins("LEFT JOIN order_statuses AS s ON s.id = o.status_id").
		Where("o.created_at >= ? AND o.created_at < ?", from, to).
		Select("COALESCE(s.name, '') AS status, COUNT(*) AS orders, COALESCE(SUM(o.total_price), 0) AS revenue").
		Group("s.name").
		Order("s.name ASC").
		Scan(&rows).Error
	return rows, err
}
