// Package shop implements the cart and order workflow shared by the bot and
// the HTTP API.
package shop

import (
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storebot/internal/models"
	"storebot/internal/pkg/paging"
	"storebot/internal/repository"
)

// MaxQuantity caps a single cart line.
const MaxQuantity = 99

var (
	ErrEmptyCart          = repository.ErrCartEmpty
	ErrProductUnavailable = repository.ErrProductUnavailable
	ErrInvalidQuantity    = fmt.Errorf("quantity must be between 1 and %d", MaxQuantity)
	ErrNotFound           = errors.New("not found")
)

// Repos bundles repositories needed by the shop.
type Repos struct {
	Customer *repository.CustomerRepository
	Cart     *repository.CartRepository
	Order    *repository.OrderRepository
	Product  *repository.ProductRepository
	Admin    *repository.AdminRepository
	CronJob  *repository.CronJobRepository
}

// NewRepos builds every repository over one connection.
func NewRepos(db *gorm.DB) *Repos {
	return &Repos{
		Customer: repository.NewCustomerRepository(db),
		Cart:     repository.NewCartRepository(db),
		Order:    repository.NewOrderRepository(db),
		Product:  repository.NewProductRepository(db),
		Admin:    repository.NewAdminRepository(db),
		CronJob:  repository.NewCronJobRepository(db),
	}
}

type Service struct {
	repos  *Repos
	logger *zap.Logger
}

func NewService(repos *Repos, logger *zap.Logger) *Service {
	return &Service{repos: repos, logger: logger}
}

// CartView is the cart with totals computed.
type CartView struct {
	Items []models.CartItem `json:"items"`
	Total int               `json:"total"`
	Units int               `json:"units"`
	// Unpriced is set when some product has no listed price; Total counts
	// those lines as 0.
	Unpriced bool `json:"unpriced"`
}

func (v *CartView) Empty() bool {
	return len(v.Items) == 0
}

// OrdersPage is one page of a customer's orders, newest first.
type OrdersPage struct {
	Items []models.Order `json:"items"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Pages int            `json:"pages"`
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *Service) EnsureCustomer(telegramID int64, username string) (*models.Customer, error) {
	if username == "" {
		username = strconv.FormatInt(telegramID, 10)
	}
	c, err := s.repos.Customer.Upsert(telegramID, username)
	if err != nil {
		return nil, fmt.Errorf("upsert customer: %w", err)
	}
	return c, nil
}

// Product returns an active product for display.
func (s *Service) Product(id uint) (*models.Product, error) {
	p, err := s.repos.Product.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	if !p.IsActive {
		return nil, ErrProductUnavailable
	}
	return p, nil
}

// SetProductActive hides a product from the catalog or brings it back.
// Carts keep hidden products; checkout rejects them.
func (s *Service) SetProductActive(id uint, active bool) (*models.Product, error) {
	if err := s.repos.Product.SetActive(id, active); err != nil {
		return nil, notFound(err)
	}
	p, err := s.repos.Product.FindByID(id)
	if err != nil {
		return nil, notFound(err)
	}
	s.logger.Info("Product visibility changed", zap.Uint("product_id", id), zap.Bool("active", active))
	return p, nil
}

func (s *Service) AddToCart(telegramID int64, productID uint, qty int) (*models.CartItem, error) {
	if qty < 1 || qty > MaxQuantity {
		return nil, ErrInvalidQuantity
	}
	if _, err := s.Product(productID); err != nil {
		return nil, err
	}
	item, err := s.repos.Cart.AddQuantity(telegramID, productID, qty, MaxQuantity)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return item, nil
}

// ChangeQuantity moves a cart line by delta. The line is removed when the
// quantity drops to zero, in which case the returned item is nil.
func (s *Service) ChangeQuantity(telegramID int64, itemID uint, delta int) (*models.CartItem, error) {
	item, err := s.repos.Cart.FindItem(telegramID, itemID)
	if err != nil {
		return nil, notFound(err)
	}
	qty := item.Quantity + delta
	if qty <= 0 {
		return nil, s.RemoveItem(telegramID, itemID)
	}
	if qty > MaxQuantity {
		qty = MaxQuantity
	}
	if err := s.repos.Cart.SetQuantity(telegramID, itemID, qty); err != nil {
		return nil, fmt.Errorf("set quantity: %w", err)
	}
	item.Quantity = qty
	return item, nil
}

func (s *Service) RemoveItem(telegramID int64, itemID uint) error {
	if err := s.repos.Cart.Delete(telegramID, itemID); err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

func (s *Service) ClearCart(telegramID int64) error {
	if err := s.repos.Cart.DeleteByUser(telegramID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

func (s *Service) Cart(telegramID int64) (*CartView, error) {
	items, err := s.repos.Cart.FindByUser(telegramID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	view := &CartView{Items: items}
	for _, it := range items {
		view.Units += it.Quantity
		view.Total += it.LineTotal()
		if it.Product == nil || !it.Product.HasPrice() {
			view.Unpriced = true
		}
	}
	return view, nil
}

// CartUnits is the number shown on the main menu cart button.
func (s *Service) CartUnits(telegramID int64) (int64, error) {
	return s.repos.Cart.CountUnits(telegramID)
}

// Checkout places an order from the whole cart and queues the admin notice.
// A failed notice does not undo the order.
func (s *Service) Checkout(telegramID int64) (*models.Order, error) {
	status, err := s.repos.Order.FindStatusByName(models.OrderStatusInProgress)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("load status: %w", err)
	}
	var statusID uint
	if status != nil {
		statusID = status.ID
	}

	created, err := s.repos.Order.CreateFromCart(telegramID, statusID)
	if err != nil {
		if errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrProductUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("checkout: %w", err)
	}

	order, err := s.repos.Order.FindByID(created.ID)
	if err != nil {
		s.logger.Warn("Failed to reload order", zap.Uint("order_id", created.ID), zap.Error(err))
		order = created
	}
	s.notifyAdmins(order)
	return order, nil
}

func (s *Service) notifyAdmins(order *models.Order) {
	chats, err := s.repos.Admin.NotifyChats()
	if err != nil {
		s.logger.Error("Failed to load admin chats", zap.Error(err))
		return
	}
	if len(chats) == 0 {
		return
	}
	targets := make([]string, 0, len(chats))
	for _, id := range chats {
		targets = append(targets, strconv.FormatInt(id, 10))
	}
	notice := models.OrderNotice{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Text:       FormatAdminOrder(order),
		WithStatus: true,
	}
	ref := fmt.Sprintf("order:%d:created", order.ID)
	if _, err := s.repos.CronJob.Enqueue(models.JobKindOrderCreated, ref, notice, targets); err != nil {
		s.logger.Error("Failed to queue admin order notice", zap.Uint("order_id", order.ID), zap.Error(err))
	}
}

// Orders pages through a customer's orders. page is zero based and wraps.
func (s *Service) Orders(telegramID int64, page, size int) (*OrdersPage, error) {
	filter := repository.OrderFilter{CustomerID: telegramID}
	total, err := s.repos.Order.Count(filter)
	if err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}
	page, pages := paging.Count(total, size, page)
	out := &OrdersPage{Items: []models.Order{}, Total: total, Page: page, Pages: pages}
	if total == 0 {
		return out, nil
	}
	items, _, err := s.repos.Order.FindAll(size, page+1, filter)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	out.Items = items
	return out, nil
}

// Order returns one order. A non-zero telegramID restricts it to that
// customer's orders.
func (s *Service) Order(telegramID int64, orderID uint) (*models.Order, error) {
	order, err := s.repos.Order.FindByID(orderID)
	if err != nil {
		return nil, notFound(err)
	}
	if telegramID != 0 && order.CustomerID != telegramID {
		return nil, ErrNotFound
	}
	return order, nil
}

// AllOrders is the staff listing; page is one based like the other API lists.
func (s *Service) AllOrders(limit, page int, filter repository.OrderFilter) ([]models.Order, int64, error) {
	return s.repos.Order.FindAll(limit, page, filter)
}

// Customers lists known customers, newest first, optionally filtered by
// username.
func (s *Service) Customers(limit, page int, query string) ([]models.Customer, int64, error) {
	return s.repos.Customer.FindAll(limit, page, query)
}

func (s *Service) Statuses() ([]models.OrderStatus, error) {
	return s.repos.Order.Statuses()
}

// SetOrderStatus changes the status and queues a notice to the customer.
func (s *Service) SetOrderStatus(orderID, statusID uint) (*models.Order, error) {
	if _, err := s.repos.Order.FindStatus(statusID); err != nil {
		return nil, notFound(err)
	}
	if err := s.repos.Order.UpdateStatus(orderID, statusID); err != nil {
		return nil, notFound(err)
	}
	order, err := s.repos.Order.FindByID(orderID)
	if err != nil {
		return nil, notFound(err)
	}

	notice := models.OrderNotice{
		OrderID:    order.ID,
		CustomerID: order.CustomerID,
		Text:       FormatStatusChange(order),
	}
	ref := fmt.Sprintf("order:%d:status:%d", order.ID, statusID)
	target := strconv.FormatInt(order.CustomerID, 10)
	if _, err := s.repos.CronJob.Enqueue(models.JobKindOrderStatus, ref, notice, []string{target}); err != nil {
		s.logger.Error("Failed to queue status notice", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	return order, nil
}

func (s *Service) IsAdmin(telegramID int64) bool {
	ok, err := s.repos.Admin.IsAdmin(telegramID)
	if err != nil {
		s.logger.Warn("Admin lookup failed", zap.Int64("telegram_id", telegramID), zap.Error(err))
		return false
	}
	return ok
}
