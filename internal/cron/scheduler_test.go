package cron

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"storebot/internal/config"
	"storebot/internal/models"
	"storebot/internal/pkg/testdb"
	"storebot/internal/repository"
	"storebot/internal/shop"
)

type sentMessage struct {
	chatID string
	text   string
	markup interface{}
}

type fakeNotifier struct {
	mu        sync.Mutex
	messages  []sentMessage
	documents []string
	replies   map[string]string
	failures  map[string]error
}

func (f *fakeNotifier) SendMessage(chatID, text string, markup interface{}) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failures[chatID]; err != nil {
		return "", err
	}
	f.messages = append(f.messages, sentMessage{chatID: chatID, text: text, markup: markup})
	if raw, ok := f.replies[chatID]; ok {
		return raw, nil
	}
	return `{"ok":true,"result":{"message_id":1}}`, nil
}

func (f *fakeNotifier) SendDocument(chatID string, data []byte, filename, caption string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents = append(f.documents, filename)
	return `{"ok":true}`, nil
}

const (
	adminChat int64 = 900
	buyer     int64 = 5005
)

type fixture struct {
	db        *gorm.DB
	svc       *shop.Service
	scheduler *Scheduler
	notifier  *fakeNotifier
}

func newFixture(t *testing.T) *fixture {
	db := testdb.OpenDemo(t)
	logger := zaptest.NewLogger(t)
	repos := shop.NewRepos(db)
	require.NoError(t, repos.Admin.Ensure(models.Admin{ID: adminChat, Username: "boss"}))

	notifier := &fakeNotifier{replies: map[string]string{}, failures: map[string]error{}}
	cfg := &config.Config{Cart: config.CartConfig{TTL: 720 * time.Hour}}
	scheduler := New(cfg, &CronRepos{
		Order:   repos.Order,
		Cart:    repos.Cart,
		Admin:   repos.Admin,
		CronJob: repos.CronJob,
	}, notifier, logger)

	svc := shop.NewService(repos, logger)
	_, err := svc.EnsureCustomer(buyer, "buyer")
	require.NoError(t, err)
	return &fixture{db: db, svc: svc, scheduler: scheduler, notifier: notifier}
}

func (f *fixture) placeOrder(t *testing.T) *models.Order {
	_, err := f.svc.AddToCart(buyer, 6, 2)
	require.NoError(t, err)
	order, err := f.svc.Checkout(buyer)
	require.NoError(t, err)
	return order
}

func jobStatus(t *testing.T, db *gorm.DB, kind string) string {
	var job models.CronJob
	require.NoError(t, db.Where("kind = ?", kind).Order("id DESC").First(&job).Error)
	return job.Status
}

func TestAdminNoticeCarriesStatusButtons(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)

	f.scheduler.processQueuedJobs()

	require.Len(t, f.notifier.messages, 1)
	msg := f.notifier.messages[0]
	assert.Equal(t, "900", msg.chatID)
	assert.Contains(t, msg.text, "Новый заказ")

	markup, ok := msg.markup.(map[string]interface{})
	require.True(t, ok)
	rows := markup["inline_keyboard"].([][]map[string]string)
	require.NotEmpty(t, rows)
	assert.Contains(t, rows[0][0]["callback_data"], "\fst|")
	assert.Contains(t, rows[0][0]["callback_data"], "|"+idString(order.ID)+"|")

	assert.Equal(t, models.JobStatusDone, jobStatus(t, f.db, models.JobKindOrderCreated))

	// Nothing left to send.
	f.scheduler.processQueuedJobs()
	assert.Len(t, f.notifier.messages, 1)
}

func TestStatusNoticeGoesToCustomer(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)
	f.scheduler.processQueuedJobs()

	statuses, err := f.svc.Statuses()
	require.NoError(t, err)
	_, err = f.svc.SetOrderStatus(order.ID, statuses[1].ID)
	require.NoError(t, err)

	f.scheduler.processQueuedJobs()
	require.Len(t, f.notifier.messages, 2)
	msg := f.notifier.messages[1]
	assert.Equal(t, "5005", msg.chatID)
	assert.Contains(t, msg.text, statuses[1].Name)
	assert.Nil(t, msg.markup)
}

func TestBlockedChatCountsAsDelivered(t *testing.T) {
	f := newFixture(t)
	f.notifier.replies["900"] = `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`
	f.placeOrder(t)

	f.scheduler.processQueuedJobs()
	assert.Equal(t, models.JobStatusDone, jobStatus(t, f.db, models.JobKindOrderCreated))

	var item models.CronJobItem
	require.NoError(t, f.db.First(&item).Error)
	assert.Equal(t, models.JobStatusDone, item.Status)
}

func TestFailedDeliveryIsRecorded(t *testing.T) {
	f := newFixture(t)
	f.notifier.failures["900"] = errors.New("connection reset")
	f.placeOrder(t)

	f.scheduler.processQueuedJobs()
	assert.Equal(t, models.JobStatusFailed, jobStatus(t, f.db, models.JobKindOrderCreated))

	var item models.CronJobItem
	require.NoError(t, f.db.First(&item).Error)
	assert.Equal(t, models.JobStatusFailed, item.Status)
	assert.Equal(t, 1, item.Attempts)
	assert.Contains(t, item.LastError, "connection reset")
}

func TestCleanupRemovesStaleCarts(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddToCart(buyer, 1, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(buyer+1, 2, 1)
	require.NoError(t, err)

	old := time.Now().Add(-800 * time.Hour)
	require.NoError(t, f.db.Model(&models.CartItem{}).Where("user_id = ?", buyer).UpdateColumn("updated_at", old).Error)

	f.scheduler.cleanup()

	var left []models.CartItem
	require.NoError(t, f.db.Find(&left).Error)
	require.Len(t, left, 1)
	assert.Equal(t, buyer+1, left[0].UserID)
}

func TestCleanupPurgesFinishedJobs(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t)
	f.scheduler.processQueuedJobs()

	f.scheduler.now = func() time.Time { return time.Now().Add(8 * 24 * time.Hour) }
	f.scheduler.cleanup()

	var jobs int64
	require.NoError(t, f.db.Model(&models.CronJob{}).Count(&jobs).Error)
	assert.Zero(t, jobs)
}

func TestDailyReport(t *testing.T) {
	f := newFixture(t)
	f.placeOrder(t)
	f.notifier.messages = nil

	f.scheduler.dailyOrderReport()

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, "900", f.notifier.messages[0].chatID)
	assert.Contains(t, f.notifier.messages[0].text, "Отчет за")
}

func TestFormatDailyReport(t *testing.T) {
	text := formatDailyReport("18.10.2026", []repository.StatusSummary{
		{Status: "В работе", Orders: 2, Revenue: 4500},
		{Status: "", Orders: 1, Revenue: 1000},
	})
	assert.Contains(t, text, "В работе: 2 шт., 4 500 ₽")
	assert.Contains(t, text, "Без статуса: 1 шт.")
	assert.Contains(t, text, "Всего: <b>3</b> на <b>5 500 ₽</b>")

	assert.Contains(t, formatDailyReport("18.10.2026", nil), "Заказов сегодня не было")
}

func TestOrdersWorkbook(t *testing.T) {
	f := newFixture(t)
	order := f.placeOrder(t)
	full, err := f.svc.Order(0, order.ID)
	require.NoError(t, err)

	data, err := ordersWorkbook([]models.Order{*full})
	require.NoError(t, err)

	book, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer book.Close()

	rows, err := book.GetRows(reportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Заказ", rows[0][0])
	assert.Equal(t, idString(order.ID), rows[1][0])
	assert.Equal(t, "2", rows[1][5])
	assert.Equal(t, "3000", rows[1][7])
}

func TestTrimErr(t *testing.T) {
	assert.Equal(t, "x", trimErr("  x "))
	assert.Equal(t, 900, utf8.RuneCountInString(trimErr(strings.Repeat("a", 2000))))

	cyrillic := trimErr(strings.Repeat("ошибка ", 300))
	assert.True(t, utf8.ValidString(cyrillic))
	assert.Equal(t, 900, utf8.RuneCountInString(cyrillic))
}

func idString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
