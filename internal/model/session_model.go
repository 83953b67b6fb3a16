package model

import (
	"time"

	"gorm.io/datatypes"
)

// SessionSnapshot stores one serialized session aggregate per session key.
// The whole snapshot lives in a single JSON column so a save is one atomic
// row write, matching the file medium's rename semantics.
type SessionSnapshot struct {
	Key       string         `gorm:"type:varchar(255);primaryKey"`
	Snapshot  datatypes.JSON `gorm:"not null"`
	Version   int            `gorm:"not null"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (SessionSnapshot) TableName() string {
	return "session_snapshots"
}
