package repository

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storebot/internal/models"
)

// AdminRepository handles bot administrators.
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) FindAll() ([]models.Admin, error) {
	var admins []models.Admin
	err := r.db.Order("id ASC").Find(&admins).Error
	return admins, err
}

func (r *AdminRepository) IsAdmin(telegramID int64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Admin{}).Where("id = ?", telegramID).Count(&count).Error
	return count > 0, err
}

// Ensure inserts the admin when missing and leaves existing rows untouched.
func (r *AdminRepository) Ensure(admin models.Admin) error {
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&admin).Error
}

// NotifyChats returns the distinct chats that receive admin notifications.
func (r *AdminRepository) NotifyChats() ([]int64, error) {
	admins, err := r.FindAll()
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(admins))
	chats := make([]int64, 0, len(admins))
	for _, a := range admins {
		id := a.NotifyChat()
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		chats = append(chats, id)
	}
	return chats, nil
}
