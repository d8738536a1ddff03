package bot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"storebot/internal/catalog"
	"storebot/internal/navigation"
	"storebot/internal/pkg/utils"
	"storebot/internal/shop"
)

const infoText = "💳 <b>О магазине</b>" +
	"\nМы продаем аксессуары для смартфонов: чехлы, зарядные устройства, кабели и наушники от разных производителей." +
	"\n\nℹ️ <b>Обратите внимание:</b>" +
	"\nИнформация, представленная в данном Telegram-боте, не является публичной офертой." +
	"\nУточнить наличие и цену можно у нашего менеджера после оформления заказа."

// screen is one rendered bot view. Photo is an absolute path or empty.
type screen struct {
	text   string
	markup *tele.ReplyMarkup
	photo  string
}

// show puts sc on screen. Callbacks edit the message they came from; a
// switch between photo and text replaces the message, since Telegram can't
// edit one into the other.
func (b *Bot) show(c tele.Context, sc screen) error {
	if c.Callback() == nil || c.Message() == nil {
		return b.send(c, sc)
	}

	wasPhoto := c.Message().Photo != nil
	var err error
	switch {
	case sc.photo == "" && !wasPhoto:
		err = c.Edit(sc.text, sc.markup)
	case sc.photo != "" && wasPhoto:
		err = c.Edit(&tele.Photo{File: tele.FromDisk(sc.photo), Caption: sc.text}, sc.markup)
	default:
		if delErr := c.Delete(); delErr != nil {
			b.logger.Debug("Failed to delete message", zap.Error(delErr))
		}
		return b.send(c, sc)
	}
	if err == nil || isNotModified(err) {
		return nil
	}
	// Message too old or already gone: fall back to a fresh one.
	b.logger.Debug("Edit failed, sending new message", zap.Error(err))
	return b.send(c, sc)
}

func (b *Bot) send(c tele.Context, sc screen) error {
	if sc.photo != "" {
		return c.Send(&tele.Photo{File: tele.FromDisk(sc.photo), Caption: sc.text}, sc.markup)
	}
	return c.Send(sc.text, sc.markup)
}

// render draws the session's current frame. Back navigation replays it
// with the restored frame.
func (b *Bot) render(c tele.Context, s *navigation.Session) error {
	sc, err := b.build(c, s)
	if err != nil {
		return err
	}
	return b.show(c, sc)
}

func (b *Bot) build(c tele.Context, s *navigation.Session) (screen, error) {
	f := s.Current
	switch f.State {
	case navigation.StateCategories:
		return b.optionsScreen(catalog.Category, catalog.Selection{}, f.Page, f.State)
	case navigation.StateOptions:
		return b.optionsScreen(f.Dimension, f.Selection, f.Page, f.State)
	case navigation.StateProducts:
		return b.productsScreen(f.Selection, f.Page)
	case navigation.StateProduct:
		return b.productScreen(f.ProductID)
	case navigation.StateQuantity:
		return b.quantityScreen(f.ProductID, s.Quantity)
	case navigation.StateCart:
		return b.cartScreen(c)
	case navigation.StateCheckout:
		return b.checkoutScreen(c)
	case navigation.StateOrders:
		return b.ordersScreen(c, f.Page)
	case navigation.StateOrder:
		return b.orderScreen(c, f.OrderID)
	case navigation.StateInfo:
		return screen{text: infoText, markup: backKeyboard()}, nil
	}
	return b.mainScreen(c)
}

func (b *Bot) mainScreen(c tele.Context) (screen, error) {
	units, err := b.shop.CartUnits(c.Sender().ID)
	if err != nil {
		b.logger.Warn("Failed to count cart", zap.Int64("user_id", c.Sender().ID), zap.Error(err))
	}
	text := "<b>Добро пожаловать</b>\nВыберите раздел:"
	return screen{text: text, markup: mainMenuKeyboard(units, b.cfg.Bot.ContactURL)}, nil
}

func (b *Bot) optionsScreen(dim catalog.Dimension, sel catalog.Selection, page int, state navigation.State) (screen, error) {
	opts, err := b.engine.Options(dim, sel, page)
	if err != nil {
		return screen{}, fmt.Errorf("options %s: %w", dim, err)
	}
	text := dim.Prompt()
	if opts.Total == 0 {
		text = "Каталог пока пуст"
	}
	return screen{text: text, markup: optionsKeyboard(opts, state)}, nil
}

func (b *Bot) productsScreen(sel catalog.Selection, page int) (screen, error) {
	products, err := b.engine.Products(sel, page)
	if err != nil {
		return screen{}, fmt.Errorf("products: %w", err)
	}
	text := "Выберите товар"
	if len(products.Items) > 0 {
		text = fmt.Sprintf("<b>%s</b>\nВыберите вариант:", utils.Escape(products.Items[0].DisplayName()))
	}
	return screen{text: text, markup: productsKeyboard(products)}, nil
}

func (b *Bot) productScreen(productID uint) (screen, error) {
	p, err := b.shop.Product(productID)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) || errors.Is(err, shop.ErrProductUnavailable) {
			return screen{}, errStale
		}
		return screen{}, err
	}
	return screen{text: shop.FormatProduct(p), markup: productKeyboard(), photo: b.imagePath(p.MainImage())}, nil
}

func (b *Bot) quantityScreen(productID uint, qty int) (screen, error) {
	p, err := b.shop.Product(productID)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) || errors.Is(err, shop.ErrProductUnavailable) {
			return screen{}, errStale
		}
		return screen{}, err
	}
	text := fmt.Sprintf("%s\n\nКоличество: <b>%d</b>", shop.FormatProduct(p), qty)
	if p.HasPrice() {
		text += fmt.Sprintf("\nСумма: <b>%s</b>", utils.FormatPrice(p.UnitPrice()*qty))
	}
	return screen{text: text, markup: quantityKeyboard(qty), photo: b.imagePath(p.MainImage())}, nil
}

func (b *Bot) cartScreen(c tele.Context) (screen, error) {
	view, err := b.shop.Cart(c.Sender().ID)
	if err != nil {
		return screen{}, err
	}
	return screen{text: shop.FormatCart(view), markup: cartKeyboard(view)}, nil
}

func (b *Bot) checkoutScreen(c tele.Context) (screen, error) {
	view, err := b.shop.Cart(c.Sender().ID)
	if err != nil {
		return screen{}, err
	}
	if view.Empty() {
		return screen{text: shop.FormatCart(view), markup: backKeyboard()}, nil
	}
	text := shop.FormatCart(view) + "\n\nПодтвердите заказ. Менеджер свяжется с вами для уточнения деталей."
	return screen{text: text, markup: checkoutKeyboard()}, nil
}

func (b *Bot) ordersScreen(c tele.Context, page int) (screen, error) {
	orders, err := b.shop.Orders(c.Sender().ID, page, b.engine.PageSize())
	if err != nil {
		return screen{}, err
	}
	text := "📦 <b>Мои заказы</b>"
	if orders.Total == 0 {
		text += "\n\nУ вас пока нет заказов."
	}
	return screen{text: text, markup: ordersKeyboard(orders)}, nil
}

func (b *Bot) orderScreen(c tele.Context, orderID uint) (screen, error) {
	order, err := b.shop.Order(c.Sender().ID, orderID)
	if err != nil {
		if errors.Is(err, shop.ErrNotFound) {
			return screen{}, errStale
		}
		return screen{}, err
	}
	return screen{text: shop.FormatOrder(order), markup: backKeyboard()}, nil
}

// imagePath resolves a stored image under the images directory. Missing
// files fall back to a text card.
func (b *Bot) imagePath(rel string) string {
	if rel == "" {
		return ""
	}
	path := rel
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.cfg.Catalog.ImagesDir, rel)
	}
	if _, err := os.Stat(path); err != nil {
		b.logger.Warn("Product image not found", zap.String("path", path))
		return ""
	}
	return path
}
