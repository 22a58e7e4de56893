package models

import "time"

// Watcher is an email address notified about dependency status changes.
type Watcher struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	AppID     string    `gorm:"column:app_id;index" json:"-"`
	Email     string    `gorm:"column:email" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Watcher) TableName() string {
	return "watchers"
}
