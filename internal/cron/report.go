package cron

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"storebot/internal/models"
	"storebot/internal/pkg/utils"
	"storebot/internal/repository"
)

const reportSheet = "Заказы"

// dailyOrderReport sends today's per-status order counts and revenue to
// every admin chat, with the orders themselves attached as a spreadsheet.
func (s *Scheduler) dailyOrderReport() {
	defer s.recoverFromPanic("dailyOrderReport")

	chats, err := s.repos.Admin.NotifyChats()
	if err != nil {
		s.logger.Error("Failed to load admin chats", zap.Error(err))
		return
	}
	if len(chats) == 0 {
		return
	}

	now := s.now()
	from := utils.StartOfDay(now)
	to := from.AddDate(0, 0, 1)

	summary, err := s.repos.Order.SummaryBetween(from, to)
	if err != nil {
		s.logger.Error("Failed to build order summary", zap.Error(err))
		return
	}
	text := formatDailyReport(now.Format("02.01.2006"), summary)

	var sheet []byte
	orders, err := s.repos.Order.FindBetween(from, to)
	if err != nil {
		s.logger.Warn("Failed to load orders for report", zap.Error(err))
	} else if len(orders) > 0 {
		if sheet, err = ordersWorkbook(orders); err != nil {
			s.logger.Warn("Failed to build orders workbook", zap.Error(err))
		}
	}
	filename := fmt.Sprintf("orders_%s.xlsx", now.Format("2006-01-02"))

	for _, chatID := range chats {
		target := strconv.FormatInt(chatID, 10)
		if err := s.deliver(target, text, nil); err != nil {
			s.logger.Warn("Failed to send daily report", zap.Int64("chat_id", chatID), zap.Error(err))
			continue
		}
		if len(sheet) == 0 {
			continue
		}
		if _, err := s.notifier.SendDocument(target, sheet, filename, "📑 Заказы за день"); err != nil {
			s.logger.Warn("Failed to send report workbook", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	}
}

func formatDailyReport(day string, summary []repository.StatusSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 <b>Отчет за %s</b>\n\n", day)
	if len(summary) == 0 {
		b.WriteString("Заказов сегодня не было.")
		return b.String()
	}

	var orders, revenue int64
	for _, row := range summary {
		name := row.Status
		if name == "" {
			name = "Без статуса"
		}
		fmt.Fprintf(&b, "%s: %d шт., %s ₽\n", utils.Escape(name), row.Orders, utils.FormatNumber(row.Revenue))
		orders += row.Orders
		revenue += row.Revenue
	}
	fmt.Fprintf(&b, "\nВсего: <b>%d</b> на <b>%s ₽</b>", orders, utils.FormatNumber(revenue))
	return b.String()
}

// ordersWorkbook lays out one row per order item.
func ordersWorkbook(orders []models.Order) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, err
	}

	headers := []string{"Заказ", "Дата", "Клиент", "Статус", "Товар", "Кол-во", "Цена (₽)", "Сумма (₽)"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(reportSheet, cell, h)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(headers), 1)
		_ = f.SetCellStyle(reportSheet, "A1", last, headerStyle)
	}

	row := 2
	for _, o := range orders {
		customer := strconv.FormatInt(o.CustomerID, 10)
		if o.Customer != nil {
			customer = o.Customer.String()
		}
		for _, it := range o.Items {
			name := fmt.Sprintf("Товар #%d", it.ProductID)
			if it.Product != nil {
				name = it.Product.DisplayName()
			}
			values := []interface{}{
				o.ID, utils.FormatDate(o.CreatedAt), customer, o.StatusName(),
				name, it.Quantity, it.Price, it.Price * it.Quantity,
			}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(reportSheet, cell, v)
			}
			row++
		}
	}
	_ = f.SetColWidth(reportSheet, "A", "D", 14)
	_ = f.SetColWidth(reportSheet, "E", "E", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
