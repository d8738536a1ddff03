package models

// Admin maps to the `admins` table. ID is the admin's telegram user id;
// ChatID is where notifications go (defaults to ID for private chats).
type Admin struct {
	ID       int64  `gorm:"column:id;primaryKey;autoIncrement:false" json:"id"`
	Username string `gorm:"column:username;size:100" json:"username"`
	ChatID   int64  `gorm:"column:chat_id;index" json:"chat_id"`
}

func (Admin) TableName() string {
	return "admins"
}

func (a Admin) String() string {
	if a.Username != "" {
		return a.Username
	}
	return "Admin"
}

// NotifyChat returns the chat that receives admin notifications.
func (a Admin) NotifyChat() int64 {
	if a.ChatID != 0 {
		return a.ChatID
	}
	return a.ID
}
