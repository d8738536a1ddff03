package models

import (
	"fmt"
	"time"
)

// Default order status names, seeded at bootstrap.
const (
	OrderStatusInProgress = "В работе"
	OrderStatusDone       = "Выполнен"
	OrderStatusCanceled   = "Отменен"
)

// OrderStatus maps to the `order_statuses` table.
type OrderStatus struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;size:50;not null;uniqueIndex" json:"name"`
}

func (OrderStatus) TableName() string {
	return "order_statuses"
}

// Order maps to the `orders` table. CustomerID holds the customer's telegram id.
type Order struct {
	ID         uint         `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID int64        `gorm:"column:customer_id;not null;index" json:"customer_id"`
	CreatedAt  time.Time    `gorm:"column:created_at;autoCreateTime;index" json:"created_at"`
	StatusID   *uint        `gorm:"column:status_id" json:"status_id"`
	Status     *OrderStatus `gorm:"foreignKey:StatusID" json:"status,omitempty"`
	TotalPrice int          `gorm:"column:total_price;not null" json:"total_price"`

	Customer *Customer   `gorm:"foreignKey:CustomerID;references:TelegramID" json:"customer,omitempty"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

func (o Order) String() string {
	return fmt.Sprintf("Order #%d - %d руб", o.ID, o.TotalPrice)
}

// StatusName returns the status name or an empty string when unset.
func (o Order) StatusName() string {
	if o.Status == nil {
		return ""
	}
	return o.Status.Name
}

// OrderItem maps to the `order_items` table. Price is the unit price captured
// at checkout.
type OrderItem struct {
	ID        uint     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	OrderID   uint     `gorm:"column:order_id;not null;index" json:"order_id"`
	ProductID uint     `gorm:"column:product_id;not null" json:"product_id"`
	Quantity  int      `gorm:"column:quantity;default:1" json:"quantity"`
	Price     int      `gorm:"column:price;default:0" json:"price"`
	Product   *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
