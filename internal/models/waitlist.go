package models

import "time"

// WaitlistEntry is one normalized email address that asked to be notified at launch.
// Rows are append-only: nothing in the service updates or deletes them.
// CreatedAt is assigned by the database and read back on insert.
type WaitlistEntry struct {
	ID          uint      `gorm:"primaryKey"`
	Email       string    `gorm:"type:varchar(320);not null;uniqueIndex:idx_waitlist_email"`
	Source      string    `gorm:"type:varchar(64);not null;default:landing_page"`
	UTMSource   string    `gorm:"column:utm_source;type:varchar(255)"`
	UTMMedium   string    `gorm:"column:utm_medium;type:varchar(255)"`
	UTMCampaign string    `gorm:"column:utm_campaign;type:varchar(255)"`
	Country     string    `gorm:"type:varchar(64)"`
	City        string    `gorm:"type:varchar(128)"`
	Status      string    `gorm:"type:varchar(32);not null;default:active"`
	CreatedAt   time.Time `gorm:"<-:false;autoCreateTime:false;not null;default:CURRENT_TIMESTAMP;index:idx_waitlist_created_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist"
}

// ModelRegistry lists every model handled by --auto-migrate.
var ModelRegistry = []interface{}{
	&WaitlistEntry{},
}
