package models

import "time"

// Dependency is a monitored URL. The remote service assigns ID.
type Dependency struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	AppID              string    `gorm:"column:app_id;index" json:"-"`
	Name               string    `gorm:"column:name" json:"name,omitempty"`
	URL                string    `gorm:"column:url" json:"url"`
	CheckEveryInterval int       `gorm:"column:check_every_interval" json:"check_every_interval"`
	LatestResponseCode *int      `gorm:"column:latest_response_code" json:"latest_response_code"`
	CreatedAt          time.Time `gorm:"column:created_at;autoCreateTime" json:"-"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime" json:"-"`
}

func (Dependency) TableName() string {
	return "dependencies"
}

// Checked reports whether the service has checked the URL at least once.
func (d Dependency) Checked() bool {
	return d.LatestResponseCode != nil
}
