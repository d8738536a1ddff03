package bot

import (
	"fmt"
	"strconv"

	tele "gopkg.in/telebot.v3"

	"storebot/internal/catalog"
	"storebot/internal/models"
	"storebot/internal/navigation"
	"storebot/internal/pkg/paging"
	"storebot/internal/pkg/utils"
	"storebot/internal/shop"
)

// Callback uniques. Arguments travel after the unique, separated by "|".
const (
	uHome     = "home"
	uBack     = "back"
	uCats     = "cats"
	uCat      = "cat"
	uOpt      = "opt"
	uPage     = "pg"
	uProd     = "prod"
	uQty      = "qty"
	uAdd      = "add"
	uCart     = "cart"
	uCartItem = "ci"
	uClear    = "clear"
	uCheckout = "checkout"
	uConfirm  = "confirm"
	uOrders   = "orders"
	uOrder    = "order"
	uInfo     = "info"
	uStatus   = "st"
	uNoop     = "noop"
)

// Quantity and cart item operations.
const (
	opOpen = "open"
	opInc  = "inc"
	opDec  = "dec"
	opDel  = "del"
)

const buttonTextLimit = 40

func idArg(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func navRow(menu *tele.ReplyMarkup) tele.Row {
	return menu.Row(menu.Data("⬅️ Назад", uBack), menu.Data("🏠 Главное меню", uHome))
}

// pagerRow returns nil when everything fits on one page. The payload is
// state|dimension|page; dimension is empty outside the options screen.
func pagerRow(menu *tele.ReplyMarkup, state navigation.State, dim catalog.Dimension, page, pages int) tele.Row {
	if !paging.Visible(pages) {
		return nil
	}
	return menu.Row(
		menu.Data("⬅️", uPage, string(state), string(dim), strconv.Itoa(paging.Prev(page, pages))),
		menu.Data(fmt.Sprintf("%d/%d", page+1, pages), uNoop),
		menu.Data("➡️", uPage, string(state), string(dim), strconv.Itoa(paging.Next(page, pages))),
	)
}

func inline(menu *tele.ReplyMarkup, rows ...tele.Row) *tele.ReplyMarkup {
	out := make([]tele.Row, 0, len(rows))
	for _, r := range rows {
		if len(r) > 0 {
			out = append(out, r)
		}
	}
	menu.Inline(out...)
	return menu
}

func mainMenuKeyboard(cartUnits int64, contactURL string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	cartText := "🛒 Корзина"
	if cartUnits > 0 {
		cartText = fmt.Sprintf("🛒 Корзина (%d)", cartUnits)
	}
	rows := []tele.Row{
		menu.Row(menu.Data("💻 Каталог", uCats)),
		menu.Row(menu.Data(cartText, uCart), menu.Data("📦 Мои заказы", uOrders)),
		menu.Row(menu.Data("❓ Инфо", uInfo)),
	}
	if contactURL != "" {
		rows = append(rows, menu.Row(menu.URL("📟 Контакты", contactURL)))
	}
	return inline(menu, rows...)
}

// optionsKeyboard lists dimension values two per row. Categories use the
// cat unique so selecting one starts a fresh selection.
func optionsKeyboard(page *catalog.OptionPage, state navigation.State) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(page.Items))
	for _, opt := range page.Items {
		text := utils.Truncate(opt.Name, buttonTextLimit)
		if page.Dimension == catalog.Category {
			btns = append(btns, menu.Data(text, uCat, idArg(opt.ID)))
		} else {
			btns = append(btns, menu.Data(text, uOpt, string(page.Dimension), idArg(opt.ID)))
		}
	}
	var scope catalog.Dimension
	if state == navigation.StateOptions {
		scope = page.Dimension
	}
	rows := menu.Split(2, btns)
	rows = append(rows, pagerRow(menu, state, scope, page.Page, page.Pages), navRow(menu))
	return inline(menu, rows...)
}

func productsKeyboard(page *catalog.ProductPage) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(page.Items)+2)
	for _, p := range page.Items {
		text := fmt.Sprintf("%s · %s", p.DisplayName(), shop.PriceText(&p))
		if p.Variation != nil {
			text = fmt.Sprintf("%s · %s", p.Variation.Name, shop.PriceText(&p))
		}
		rows = append(rows, menu.Row(menu.Data(utils.Truncate(text, buttonTextLimit), uProd, idArg(p.ID))))
	}
	rows = append(rows, pagerRow(menu, navigation.StateProducts, "", page.Page, page.Pages), navRow(menu))
	return inline(menu, rows...)
}

func productKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	return inline(menu,
		menu.Row(menu.Data("🛒 В корзину", uQty, opOpen)),
		menu.Row(menu.Data("🛒 Корзина", uCart)),
		navRow(menu),
	)
}

func quantityKeyboard(qty int) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	return inline(menu,
		menu.Row(
			menu.Data("➖", uQty, opDec),
			menu.Data(strconv.Itoa(qty), uNoop),
			menu.Data("➕", uQty, opInc),
		),
		menu.Row(menu.Data("✅ Добавить", uAdd)),
		navRow(menu),
	)
}

func cartKeyboard(view *shop.CartView) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(view.Items)+3)
	for i, it := range view.Items {
		id := idArg(it.ID)
		rows = append(rows, menu.Row(
			menu.Data(fmt.Sprintf("%d. ➖", i+1), uCartItem, id, opDec),
			menu.Data(strconv.Itoa(it.Quantity), uNoop),
			menu.Data("➕", uCartItem, id, opInc),
			menu.Data("✖️", uCartItem, id, opDel),
		))
	}
	if !view.Empty() {
		rows = append(rows,
			menu.Row(menu.Data("✅ Оформить заказ", uCheckout)),
			menu.Row(menu.Data("🗑 Очистить", uClear)),
		)
	}
	rows = append(rows, navRow(menu))
	return inline(menu, rows...)
}

func checkoutKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	return inline(menu,
		menu.Row(menu.Data("✅ Подтвердить заказ", uConfirm)),
		navRow(menu),
	)
}

func ordersKeyboard(page *shop.OrdersPage) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	rows := make([]tele.Row, 0, len(page.Items)+2)
	for _, o := range page.Items {
		text := fmt.Sprintf("#%d · %s · %s", o.ID, o.CreatedAt.Format("02.01"), utils.FormatPrice(o.TotalPrice))
		if name := o.StatusName(); name != "" {
			text += " · " + name
		}
		rows = append(rows, menu.Row(menu.Data(utils.Truncate(text, buttonTextLimit), uOrder, idArg(o.ID))))
	}
	rows = append(rows, pagerRow(menu, navigation.StateOrders, "", page.Page, page.Pages), navRow(menu))
	return inline(menu, rows...)
}

func backKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	return inline(menu, navRow(menu))
}

func orderPlacedKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	return inline(menu,
		menu.Row(menu.Data("📦 Мои заказы", uOrders)),
		menu.Row(menu.Data("🏠 Главное меню", uHome)),
	)
}

// StatusKeyboard lets admins move an order between statuses straight from
// the new-order notice. The current status is marked.
func StatusKeyboard(order *models.Order, statuses []models.OrderStatus) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	btns := make([]tele.Btn, 0, len(statuses))
	for _, st := range statuses {
		text := st.Name
		if order.StatusID != nil && *order.StatusID == st.ID {
			text = "• " + text
		}
		btns = append(btns, menu.Data(text, uStatus, idArg(order.ID), idArg(st.ID)))
	}
	return inline(menu, menu.Split(3, btns)...)
}

// RawMarkup converts an inline keyboard to the Bot API JSON shape for
// senders outside telebot. telebot only adds the "\f<unique>|" prefix to
// callback data on its own sends.
func RawMarkup(m *tele.ReplyMarkup) map[string]interface{} {
	rows := make([][]map[string]string, 0, len(m.InlineKeyboard))
	for _, row := range m.InlineKeyboard {
		out := make([]map[string]string, 0, len(row))
		for _, b := range row {
			btn := map[string]string{"text": b.Text}
			switch {
			case b.URL != "":
				btn["url"] = b.URL
			case b.Unique != "":
				data := "\f" + b.Unique
				if b.Data != "" {
					data += "|" + b.Data
				}
				btn["callback_data"] = data
			default:
				btn["callback_data"] = b.Data
			}
			out = append(out, btn)
		}
		rows = append(rows, out)
	}
	return map[string]interface{}{"inline_keyboard": rows}
}
