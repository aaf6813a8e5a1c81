package models

import "time"

// AnnouncementType classifies bulletin board entries
type AnnouncementType string

const (
	AnnouncementNotice  AnnouncementType = "notice"
	AnnouncementPolicy  AnnouncementType = "policy"
	AnnouncementGeneral AnnouncementType = "announcement"
)

// Valid reports whether t is a known announcement type.
func (t AnnouncementType) Valid() bool {
	switch t {
	case AnnouncementNotice, AnnouncementPolicy, AnnouncementGeneral:
		return true
	}
	return false
}

// Announcement is a clinic-wide bulletin shown to every role until it expires.
type Announcement struct {
	BaseModel
	Title       string           `gorm:"size:255;not null" json:"title"`
	Description string           `gorm:"type:text;not null" json:"description"`
	Type        AnnouncementType `gorm:"size:20;not null;index" json:"type"`
	IsTop       bool             `gorm:"index" json:"isTop"`
	ExpireDate  time.Time        `gorm:"not null;index" json:"expireDate"`
}
