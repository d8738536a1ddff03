package cron

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"storebot/internal/bot"
	"storebot/internal/models"
	"storebot/internal/pkg/telegram"
	"storebot/internal/pkg/utils"
)

const notificationBatchSize = 20

var queuedKinds = []string{models.JobKindOrderCreated, models.JobKindOrderStatus}

func (s *Scheduler) processQueuedJobs() {
	defer s.recoverFromPanic("processQueuedJobs")

	if s.repos == nil || s.repos.CronJob == nil {
		return
	}
	for _, kind := range queuedKinds {
		s.processNotificationJobs(kind)
	}
}

// processNotificationJobs delivers one batch of the oldest active job of
// kind. Jobs larger than a batch continue on the next tick.
func (s *Scheduler) processNotificationJobs(kind string) {
	job, err := s.repos.CronJob.NextActive(kind)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return
		}
		s.logger.Error("Failed to fetch notification job", zap.String("kind", kind), zap.Error(err))
		return
	}

	_ = s.repos.CronJob.MarkRunning(job.ID)

	var notice models.OrderNotice
	if err := json.Unmarshal([]byte(job.Payload), &notice); err != nil {
		_ = s.repos.CronJob.Abort(job.ID, models.JobStatusFailed, trimErr("invalid payload: "+err.Error()))
		return
	}

	items, err := s.repos.CronJob.PendingItems(job.ID, notificationBatchSize)
	if err != nil {
		s.logger.Error("Failed to list notification items", zap.Uint("job_id", job.ID), zap.Error(err))
		return
	}

	markup := s.noticeMarkup(notice)
	for _, item := range items {
		if err := s.deliver(item.Target, notice.Text, markup); err != nil {
			s.logger.Warn("Notification failed",
				zap.Uint("job_id", job.ID),
				zap.String("target", item.Target),
				zap.Error(err))
			_ = s.repos.CronJob.SettleItem(job.ID, item.ID, trimErr(err.Error()))
			continue
		}
		_ = s.repos.CronJob.SettleItem(job.ID, item.ID, "")
	}

	finished, err := s.repos.CronJob.Finish(job.ID)
	if err != nil {
		s.logger.Error("Failed to finish notification job", zap.Uint("job_id", job.ID), zap.Error(err))
		return
	}
	if finished {
		s.logger.Info("Notification job finished", zap.Uint("job_id", job.ID), zap.String("kind", kind))
	}
}

// noticeMarkup attaches status buttons to admin notices, built from the
// order's status at send time.
func (s *Scheduler) noticeMarkup(notice models.OrderNotice) interface{} {
	if !notice.WithStatus || s.repos.Order == nil {
		return nil
	}
	order, err := s.repos.Order.FindByID(notice.OrderID)
	if err != nil {
		s.logger.Warn("Order for notice not found", zap.Uint("order_id", notice.OrderID), zap.Error(err))
		return nil
	}
	statuses, err := s.repos.Order.Statuses()
	if err != nil || len(statuses) == 0 {
		return nil
	}
	return bot.RawMarkup(bot.StatusKeyboard(order, statuses))
}

// deliver sends one message. Chats that blocked the bot count as delivered:
// retrying them can never succeed.
func (s *Scheduler) deliver(chatID, text string, markup interface{}) error {
	chatID = strings.TrimSpace(chatID)
	if chatID == "" {
		return fmt.Errorf("empty chat id")
	}
	raw, err := s.notifier.SendMessage(chatID, text, markup)
	if err == nil {
		_, err = telegram.ParseResponse(raw)
	}
	if err != nil && telegram.IsBlockedByUser(err) {
		s.logger.Info("Chat unreachable, skipping notification", zap.String("chat_id", chatID), zap.Error(err))
		return nil
	}
	return err
}

// trimErr keeps last_error readable; Telegram errors may carry user text.
func trimErr(msg string) string {
	return utils.Truncate(strings.TrimSpace(msg), 900)
}
