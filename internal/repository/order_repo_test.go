package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storebot/internal/models"
	"storebot/internal/pkg/testdb"
)

func TestCreateFromCart(t *testing.T) {
	db := testdb.OpenDemo(t)
	carts := NewCartRepository(db)
	orders := NewOrderRepository(db)

	_, err := carts.AddQuantity(100, 1, 2, 99)
	require.NoError(t, err)
	_, err = carts.AddQuantity(100, 7, 3, 99)
	require.NoError(t, err)

	status, err := orders.FindStatusByName(models.OrderStatusInProgress)
	require.NoError(t, err)

	order, err := orders.CreateFromCart(100, status.ID)
	require.NoError(t, err)
	assert.Equal(t, 2*4500+3*800, order.TotalPrice)
	assert.Len(t, order.Items, 2)

	left, err := carts.FindByUser(100)
	require.NoError(t, err)
	assert.Empty(t, left)

	loaded, err := orders.FindByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusInProgress, loaded.StatusName())
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, 4500, loaded.Items[0].Price)
	require.NotNil(t, loaded.Items[0].Product)
	assert.Equal(t, "17 Pro", loaded.Items[0].Product.DeviceModel.Name)
}

func TestCreateFromCartLocksCart(t *testing.T) {
	db := testdb.OpenDemo(t)
	carts := NewCartRepository(db)
	orders := NewOrderRepository(db)

	var locked []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:locks", func(q *gorm.DB) {
		if _, ok := q.Statement.Clauses["FOR"]; ok {
			locked = append(locked, q.Statement.Table)
		}
	}))

	_, err := carts.AddQuantity(100, 1, 1, 99)
	require.NoError(t, err)
	_, err = orders.CreateFromCart(100, 0)
	require.NoError(t, err)
	assert.Contains(t, locked, "cart_items")

	_, err = orders.CreateFromCart(100, 0)
	assert.ErrorIs(t, err, ErrCartEmpty, "a repeated checkout finds the cart gone")
}

func TestCreateFromCartRollsBack(t *testing.T) {
	db := testdb.OpenDemo(t)
	carts := NewCartRepository(db)
	orders := NewOrderRepository(db)

	_, err := carts.AddQuantity(100, 1, 1, 99)
	require.NoError(t, err)
	_, err = carts.AddQuantity(100, 2, 1, 99)
	require.NoError(t, err)
	require.NoError(t, NewProductRepository(db).SetActive(2, false))

	_, err = orders.CreateFromCart(100, 0)
	require.ErrorIs(t, err, ErrProductUnavailable)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&count).Error)
	assert.Zero(t, count)

	left, err := carts.FindByUser(100)
	require.NoError(t, err)
	assert.Len(t, left, 2)

	_, err = orders.CreateFromCart(200, 0)
	assert.ErrorIs(t, err, ErrCartEmpty)
}

func TestOrderFindAllAndStatus(t *testing.T) {
	db := testdb.OpenDemo(t)
	carts := NewCartRepository(db)
	orders := NewOrderRepository(db)

	for _, user := range []int64{1, 2, 1} {
		_, err := carts.AddQuantity(user, 6, 1, 99)
		require.NoError(t, err)
		_, err = orders.CreateFromCart(user, 1)
		require.NoError(t, err)
	}

	list, total, err := orders.FindAll(10, 1, OrderFilter{CustomerID: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, list, 2)
	assert.Greater(t, list[0].ID, list[1].ID)

	require.NoError(t, orders.UpdateStatus(list[0].ID, 2))
	_, total, err = orders.FindAll(10, 1, OrderFilter{StatusID: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	assert.Error(t, orders.UpdateStatus(999, 2))

	summary, err := orders.SummaryBetween(time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	var sum int64
	for _, row := range summary {
		sum += row.Revenue
	}
	assert.EqualValues(t, 3*1500, sum)
}

func TestCartRepository(t *testing.T) {
	db := testdb.OpenDemo(t)
	carts := NewCartRepository(db)

	item, err := carts.AddQuantity(5, 3, 60, 99)
	require.NoError(t, err)
	item, err = carts.AddQuantity(5, 3, 60, 99)
	require.NoError(t, err)
	assert.Equal(t, 99, item.Quantity)

	units, err := carts.CountUnits(5)
	require.NoError(t, err)
	assert.EqualValues(t, 99, units)

	require.NoError(t, carts.SetQuantity(5, item.ID, 4))
	found, err := carts.FindItem(5, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.Quantity)
	assert.Equal(t, 4*4300, found.LineTotal())

	_, err = carts.FindItem(6, item.ID)
	assert.Error(t, err)

	removed, err := carts.DeleteStale(time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestCustomerAndAdminRepositories(t *testing.T) {
	db := testdb.Open(t)
	customers := NewCustomerRepository(db)

	c, err := customers.Upsert(42, "alice")
	require.NoError(t, err)
	c2, err := customers.Upsert(42, "alice_new")
	require.NoError(t, err)
	assert.Equal(t, c.ID, c2.ID)
	assert.Equal(t, "alice_new", c2.Username)

	admins := NewAdminRepository(db)
	require.NoError(t, admins.Ensure(models.Admin{ID: 1, ChatID: 10}))
	require.NoError(t, admins.Ensure(models.Admin{ID: 1, ChatID: 99}))
	require.NoError(t, admins.Ensure(models.Admin{ID: 2}))

	chats, err := admins.NotifyChats()
	require.NoError(t, err)
	assert.Equal(t, []int64{10, 2}, chats)

	ok, err := admins.IsAdmin(2)
	require.NoError(t, err)
	assert.True(t, ok)
}
