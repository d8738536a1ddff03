package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"storebot/internal/models"
)

var (
	activeJobStatuses   = []string{models.JobStatusPending, models.JobStatusRunning}
	finishedJobStatuses = []string{models.JobStatusDone, models.JobStatusFailed}

	runningFirst = fmt.Sprintf("CASE WHEN status = '%s' THEN 0 ELSE 1 END", models.JobStatusRunning)
)

// CronJobRepository stores the notification queue: a job holds the message,
// its items hold one chat id each.
type CronJobRepository struct {
	db *gorm.DB
}

func NewCronJobRepository(db *gorm.DB) *CronJobRepository {
	return &CronJobRepository{db: db}
}

// Enqueue stores a job for the given chats. Empty and repeated chat ids are
// dropped. While a job with the same kind and ref is still active it is
// returned instead of a new one, so double clicks queue a single message.
func (r *CronJobRepository) Enqueue(kind, ref string, payload interface{}, chats []string) (*models.CronJob, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", kind, err)
	}

	var job *models.CronJob
	err = r.db.Transaction(func(tx *gorm.DB) error {
		if ref != "" {
			var active models.CronJob
			err := tx.Where("kind = ? AND external_ref = ? AND status IN ?", kind, ref, activeJobStatuses).
				Order("id DESC").
				Take(&active).Error
			if err == nil {
				job = &active
				return nil
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		targets := distinct(chats)
		job = &models.CronJob{
			Kind:        kind,
			Status:      models.JobStatusPending,
			ExternalRef: ref,
			Payload:     string(body),
			TotalItems:  len(targets),
		}
		if err := tx.Create(job).Error; err != nil {
			return err
		}
		if len(targets) == 0 {
			return nil
		}
		items := make([]models.CronJobItem, len(targets))
		for i, chat := range targets {
			items[i] = models.CronJobItem{JobID: job.ID, Target: chat, Status: models.JobStatusPending}
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

func distinct(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// NextActive returns the job of kind to work on: a running one first, then
// the oldest pending one. gorm.ErrRecordNotFound means the queue is empty.
func (r *CronJobRepository) NextActive(kind string) (*models.CronJob, error) {
	var job models.CronJob
	err := r.db.Where("kind = ? AND status IN ?", kind, activeJobStatuses).
		Order(runningFirst).
		Order("id ASC").
		Take(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *CronJobRepository) MarkRunning(jobID uint) error {
	return r.db.Model(&models.CronJob{}).
		Where("id = ? AND status = ?", jobID, models.JobStatusPending).
		Update("status", models.JobStatusRunning).Error
}

// PendingItems returns up to limit undelivered targets, oldest first.
func (r *CronJobRepository) PendingItems(jobID uint, limit int) ([]models.CronJobItem, error) {
	var items []models.CronJobItem
	q := r.db.Where("job_id = ? AND status = ?", jobID, models.JobStatusPending).Order("id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// SettleItem records one delivery attempt. An empty errMsg marks the item
// done, anything else marks it failed. Items that are no longer pending are
// left alone so counters are bumped once per item.
func (r *CronJobRepository) SettleItem(jobID, itemID uint, errMsg string) error {
	status := models.JobStatusDone
	jobUpdates := map[string]interface{}{
		"processed_items": gorm.Expr("processed_items + 1"),
	}
	if errMsg != "" {
		status = models.JobStatusFailed
		jobUpdates["failed_items"] = gorm.Expr("failed_items + 1")
		jobUpdates["last_error"] = errMsg
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CronJobItem{}).
			Where("id = ? AND job_id = ? AND status = ?", itemID, jobID, models.JobStatusPending).
			Updates(map[string]interface{}{
				"status":     status,
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": errMsg,
			})
		if res.Error != nil || res.RowsAffected == 0 {
			return res.Error
		}
		return tx.Model(&models.CronJob{}).Where("id = ?", jobID).Updates(jobUpdates).Error
	})
}

// Finish closes a job once no item is pending and reports whether it did.
// The job fails only when every target failed.
func (r *CronJobRepository) Finish(jobID uint) (bool, error) {
	var pending int64
	if err := r.db.Model(&models.CronJobItem{}).
		Where("job_id = ? AND status = ?", jobID, models.JobStatusPending).
		Count(&pending).Error; err != nil {
		return false, err
	}
	if pending > 0 {
		return false, nil
	}

	job, err := r.FindByID(jobID)
	if err != nil {
		return false, err
	}
	status := models.JobStatusDone
	if job.TotalItems > 0 && job.FailedItems >= job.TotalItems {
		status = models.JobStatusFailed
	}
	return true, r.Abort(jobID, status, "")
}

// Abort sets a final status without looking at the items.
func (r *CronJobRepository) Abort(jobID uint, status, lastError string) error {
	updates := map[string]interface{}{"status": status}
	if lastError != "" {
		updates["last_error"] = lastError
	}
	return r.db.Model(&models.CronJob{}).Where("id = ?", jobID).Updates(updates).Error
}

// ListItems returns every target of a job.
func (r *CronJobRepository) ListItems(jobID uint) ([]models.CronJobItem, error) {
	var items []models.CronJobItem
	err := r.db.Where("job_id = ?", jobID).Order("id ASC").Find(&items).Error
	return items, err
}

func (r *CronJobRepository) FindByID(jobID uint) (*models.CronJob, error) {
	var job models.CronJob
	if err := r.db.First(&job, jobID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// PurgeFinished deletes done and failed jobs (and their items) last updated
// before the cutoff.
func (r *CronJobRepository) PurgeFinished(before time.Time) (int64, error) {
	var purged int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.CronJob{}).
			Where("status IN ? AND updated_at < ?", finishedJobStatuses, before).
			Pluck("id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("job_id IN ?", ids).Delete(&models.CronJobItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id IN ?", ids).Delete(&models.CronJob{})
		purged = res.RowsAffected
		return res.Error
	})
	return purged, err
}
