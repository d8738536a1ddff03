package bot

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"storebot/internal/catalog"
	"storebot/internal/navigation"
	"storebot/internal/pkg/utils"
	"storebot/internal/shop"
)

// ── /start and main menu ─────────────────────────────────────────────

func (b *Bot) onStart(c tele.Context, s *navigation.Session) error {
	if sender := c.Sender(); sender != nil {
		if _, err := b.shop.EnsureCustomer(sender.ID, sender.Username); err != nil {
			b.logger.Error("Failed to save customer", zap.Int64("user_id", sender.ID), zap.Error(err))
		}
	}
	s.Reset()
	return b.render(c, s)
}

func (b *Bot) onHome(c tele.Context, s *navigation.Session) error {
	s.Reset()
	return b.render(c, s)
}

func (b *Bot) onBack(c tele.Context, s *navigation.Session) error {
	if _, ok := s.Pop(); !ok {
		s.Reset()
	}
	return b.render(c, s)
}

func (b *Bot) onInfo(c tele.Context, s *navigation.Session) error {
	s.Push(navigation.Frame{State: navigation.StateInfo})
	return b.render(c, s)
}

// onPage flips the current list. State and dimension must match the current
// screen, otherwise the pager belongs to an older message.
func (b *Bot) onPage(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 3 ||
		navigation.State(args[0]) != s.Current.State ||
		catalog.Dimension(args[1]) != s.Current.Dimension {
		return errStale
	}
	f := s.Current
	f.Page = utils.ParseInt(args[2], 0)
	s.Replace(f)
	return b.render(c, s)
}

// ── Catalog ──────────────────────────────────────────────────────────

func (b *Bot) onCategories(c tele.Context, s *navigation.Session) error {
	s.Push(navigation.Frame{State: navigation.StateCategories})
	return b.render(c, s)
}

func (b *Bot) onCategory(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 1 {
		return errStale
	}
	return b.advance(c, s, catalog.Selection{catalog.Category: utils.ParseUint(args[0], 0)})
}

func (b *Bot) onOption(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 2 {
		return errStale
	}
	dim, err := catalog.ParseDimension(args[0])
	if err != nil || s.Current.State != navigation.StateOptions || s.Current.Dimension != dim {
		return errStale
	}
	sel := s.Current.Selection.Truncate(dim).With(dim, utils.ParseUint(args[1], 0))
	return b.advance(c, s, sel)
}

// advance resolves sel through the engine and pushes only the screen the
// user has to act on; auto-resolved steps never enter the history.
func (b *Bot) advance(c tele.Context, s *navigation.Session, sel catalog.Selection) error {
	step, err := b.engine.Next(sel)
	if err != nil {
		return err
	}
	switch step.Kind {
	case catalog.StepChoose:
		s.Push(navigation.Frame{State: navigation.StateOptions, Dimension: step.Dimension, Selection: step.Selection})
	case catalog.StepProducts:
		s.Push(navigation.Frame{State: navigation.StateProducts, Selection: step.Selection})
	case catalog.StepProduct:
		s.Push(navigation.Frame{State: navigation.StateProduct, Selection: step.Selection, ProductID: step.ProductID})
	default:
		b.alert(c, "Товаров с такими параметрами нет")
		return nil
	}
	return b.render(c, s)
}

func (b *Bot) onProduct(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 1 {
		return errStale
	}
	s.Push(navigation.Frame{
		State:     navigation.StateProduct,
		Selection: s.Current.Selection,
		ProductID: utils.ParseUint(args[0], 0),
	})
	return b.render(c, s)
}

// ── Quantity and cart ────────────────────────────────────────────────

func (b *Bot) onQuantity(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 1 {
		return errStale
	}
	switch args[0] {
	case opOpen:
		if s.Current.State != navigation.StateProduct {
			return errStale
		}
		f := s.Current
		f.State = navigation.StateQuantity
		s.Push(f)
		s.Quantity = 1
	case opInc, opDec:
		if s.Current.State != navigation.StateQuantity {
			return errStale
		}
		q := s.Quantity
		if args[0] == opInc {
			q++
		} else {
			q--
		}
		if q < 1 || q > shop.MaxQuantity {
			b.alert(c, fmt.Sprintf("Количество от 1 до %d", shop.MaxQuantity))
			return nil
		}
		s.Quantity = q
	default:
		return errStale
	}
	return b.render(c, s)
}

func (b *Bot) onAdd(c tele.Context, s *navigation.Session) error {
	if s.Current.State != navigation.StateQuantity {
		return errStale
	}
	qty := s.Quantity
	if qty < 1 {
		qty = 1
	}
	_, err := b.shop.AddToCart(c.Sender().ID, s.Current.ProductID, qty)
	switch {
	case errors.Is(err, shop.ErrProductUnavailable), errors.Is(err, shop.ErrNotFound):
		b.alert(c, "Товар больше недоступен")
		s.Reset()
		return b.render(c, s)
	case err != nil:
		return err
	}
	b.alert(c, fmt.Sprintf("✅ Добавлено в корзину: %d шт.", qty))
	s.Quantity = 0
	s.Pop()
	return b.render(c, s)
}

func (b *Bot) onCart(c tele.Context, s *navigation.Session) error {
	if s.Current.State != navigation.StateCart {
		s.Push(navigation.Frame{State: navigation.StateCart})
	}
	return b.render(c, s)
}

func (b *Bot) onCartItem(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 2 || s.Current.State != navigation.StateCart {
		return errStale
	}
	userID := c.Sender().ID
	itemID := utils.ParseUint(args[0], 0)

	var err error
	switch args[1] {
	case opInc:
		_, err = b.shop.ChangeQuantity(userID, itemID, 1)
	case opDec:
		_, err = b.shop.ChangeQuantity(userID, itemID, -1)
	case opDel:
		err = b.shop.RemoveItem(userID, itemID)
	default:
		return errStale
	}
	if err != nil && !errors.Is(err, shop.ErrNotFound) {
		return err
	}
	return b.render(c, s)
}

func (b *Bot) onClear(c tele.Context, s *navigation.Session) error {
	if err := b.shop.ClearCart(c.Sender().ID); err != nil {
		return err
	}
	b.alert(c, "Корзина очищена")
	return b.render(c, s)
}

// ── Checkout and orders ──────────────────────────────────────────────

func (b *Bot) onCheckout(c tele.Context, s *navigation.Session) error {
	s.Push(navigation.Frame{State: navigation.StateCheckout})
	return b.render(c, s)
}

func (b *Bot) onConfirm(c tele.Context, s *navigation.Session) error {
	if s.Current.State != navigation.StateCheckout {
		return errStale
	}
	order, err := b.shop.Checkout(c.Sender().ID)
	switch {
	case errors.Is(err, shop.ErrEmptyCart):
		b.alert(c, "Корзина пуста")
		s.Reset()
		return b.render(c, s)
	case errors.Is(err, shop.ErrProductUnavailable):
		b.alert(c, "Некоторые товары больше недоступны. Удалите их из корзины.")
		s.Replace(navigation.Frame{State: navigation.StateCart})
		return b.render(c, s)
	case err != nil:
		return err
	}

	b.logger.Info("Order placed", zap.Uint("order_id", order.ID), zap.Int64("customer_id", order.CustomerID))
	s.Reset()
	text := fmt.Sprintf("✅ <b>Заказ #%d оформлен!</b>\nМенеджер свяжется с вами в ближайшее время.\n\n%s", order.ID, shop.FormatOrder(order))
	return b.show(c, screen{text: text, markup: orderPlacedKeyboard()})
}

func (b *Bot) onOrders(c tele.Context, s *navigation.Session) error {
	s.Push(navigation.Frame{State: navigation.StateOrders})
	return b.render(c, s)
}

func (b *Bot) onOrder(c tele.Context, s *navigation.Session) error {
	args := c.Args()
	if len(args) != 1 {
		return errStale
	}
	s.Push(navigation.Frame{State: navigation.StateOrder, OrderID: utils.ParseUint(args[0], 0)})
	return b.render(c, s)
}

// ── Admin ────────────────────────────────────────────────────────────

// onStatus handles status buttons under new-order notices. It lives outside
// the navigation session: the notice is not part of the admin's screens.
func (b *Bot) onStatus(c tele.Context) error {
	if c.Sender() == nil || !b.shop.IsAdmin(c.Sender().ID) {
		return c.Respond(&tele.CallbackResponse{Text: "Недостаточно прав", ShowAlert: true})
	}
	args := c.Args()
	if len(args) != 2 {
		return c.Respond(&tele.CallbackResponse{Text: "Кнопка устарела"})
	}
	orderID := utils.ParseUint(args[0], 0)
	statusID := utils.ParseUint(args[1], 0)

	order, err := b.shop.SetOrderStatus(orderID, statusID)
	if errors.Is(err, shop.ErrNotFound) {
		return c.Respond(&tele.CallbackResponse{Text: "Заказ или статус не найден", ShowAlert: true})
	}
	if err != nil {
		b.logger.Error("Failed to set order status", zap.Uint("order_id", orderID), zap.Error(err))
		return c.Respond(&tele.CallbackResponse{Text: "Ошибка, попробуйте позже", ShowAlert: true})
	}

	b.logger.Info("Order status changed",
		zap.Uint("order_id", order.ID),
		zap.String("status", order.StatusName()),
		zap.Int64("admin_id", c.Sender().ID))

	if statuses, err := b.shop.Statuses(); err == nil {
		if err := c.Edit(StatusKeyboard(order, statuses)); err != nil && !isNotModified(err) {
			b.logger.Debug("Failed to refresh status keyboard", zap.Error(err))
		}
	}
	return c.Respond(&tele.CallbackResponse{Text: "Статус: " + order.StatusName()})
}
