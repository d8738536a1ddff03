package shop

import (
	"fmt"
	"strings"

	"storebot/internal/models"
	"storebot/internal/pkg/utils"
)

// PriceText renders a price or "price on request".
func PriceText(p *models.Product) string {
	if p == nil || !p.HasPrice() {
		return "цена по запросу"
	}
	return utils.FormatPrice(p.UnitPrice())
}

func productName(p *models.Product, fallbackID uint) string {
	if p == nil {
		return fmt.Sprintf("Товар #%d", fallbackID)
	}
	return p.DisplayName()
}

// FormatProduct is the product card text.
func FormatProduct(p *models.Product) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>%s</b>\n", utils.Escape(p.DisplayName()))
	if p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", utils.Escape(p.Description))
	}
	fmt.Fprintf(&b, "\n💰 Цена: <b>%s</b>", PriceText(p))
	return b.String()
}

// FormatCart is the cart screen text.
func FormatCart(v *CartView) string {
	if v.Empty() {
		return "🛒 <b>Корзина пуста</b>\n\nДобавьте товары из каталога."
	}
	var b strings.Builder
	b.WriteString("🛒 <b>Корзина</b>\n\n")
	for i, it := range v.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, utils.Escape(productName(it.Product, it.ProductID)))
		if it.Product != nil && it.Product.HasPrice() {
			fmt.Fprintf(&b, "   %d × %s = %s\n", it.Quantity, utils.FormatPrice(it.Product.UnitPrice()), utils.FormatPrice(it.LineTotal()))
		} else {
			fmt.Fprintf(&b, "   %d шт., цена по запросу\n", it.Quantity)
		}
	}
	fmt.Fprintf(&b, "\nИтого: <b>%s</b>", utils.FormatPrice(v.Total))
	if v.Unpriced {
		b.WriteString("\nЦену некоторых товаров уточнит менеджер.")
	}
	return b.String()
}

func writeOrderItems(b *strings.Builder, o *models.Order) {
	for i, it := range o.Items {
		fmt.Fprintf(b, "%d. %s, %d × %s\n", i+1, utils.Escape(productName(it.Product, it.ProductID)), it.Quantity, utils.FormatPrice(it.Price))
	}
}

// FormatOrder is the customer's order details screen.
func FormatOrder(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📦 <b>Заказ #%d</b>\n", o.ID)
	fmt.Fprintf(&b, "Дата: %s\n", utils.FormatDate(o.CreatedAt))
	if name := o.StatusName(); name != "" {
		fmt.Fprintf(&b, "Статус: %s\n", utils.Escape(name))
	}
	b.WriteString("\n")
	writeOrderItems(&b, o)
	fmt.Fprintf(&b, "\nИтого: <b>%s</b>", utils.FormatPrice(o.TotalPrice))
	return b.String()
}

// FormatAdminOrder is the new-order notice sent to admins.
func FormatAdminOrder(o *models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🆕 <b>Новый заказ #%d</b>\n", o.ID)
	if o.Customer != nil {
		fmt.Fprintf(&b, "Клиент: %s\n", utils.Escape(o.Customer.String()))
	} else {
		fmt.Fprintf(&b, "Клиент: %d\n", o.CustomerID)
	}
	fmt.Fprintf(&b, "Дата: %s\n\n", utils.FormatDate(o.CreatedAt))
	writeOrderItems(&b, o)
	fmt.Fprintf(&b, "\nИтого: <b>%s</b>", utils.FormatPrice(o.TotalPrice))
	return b.String()
}

// FormatStatusChange is the notice a customer gets when staff move an order.
func FormatStatusChange(o *models.Order) string {
	return fmt.Sprintf("📦 Статус заказа #%d изменен: <b>%s</b>", o.ID, utils.Escape(o.StatusName()))
}
