package models

import (
	"fmt"
	"time"
)

// Customer maps to the `customers` table. TelegramID is the chat id of a
// private chat with the bot.
type Customer struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username   string    `gorm:"column:username;size:100;not null" json:"username"`
	TelegramID int64     `gorm:"column:telegram_id;uniqueIndex" json:"telegram_id"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Customer) TableName() string {
	return "customers"
}

func (c Customer) String() string {
	return fmt.Sprintf("%s (%d)", c.Username, c.TelegramID)
}

// CartItem maps to the `cart_items` table.
type CartItem struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:uq_cart_user_product,priority:1" json:"user_id"`
	ProductID uint      `gorm:"column:product_id;not null;uniqueIndex:uq_cart_user_product,priority:2" json:"product_id"`
	Quantity  int       `gorm:"column:quantity;default:1" json:"quantity"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime;index" json:"updated_at"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// LineTotal is quantity times unit price (0 for unpriced products).
func (ci CartItem) LineTotal() int {
	if ci.Product == nil {
		return 0
	}
	return ci.Product.UnitPrice() * ci.Quantity
}
