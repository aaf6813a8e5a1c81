package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog is one append-only line attributed to the acting user.
type AuditLog struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string    `gorm:"size:36;index;not null" json:"userId"`
	Action    string    `gorm:"type:text;not null" json:"action"`
	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}
