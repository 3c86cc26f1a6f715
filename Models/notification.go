package Models

import (
	"time"

	"gorm.io/gorm"
)

// Notification belongs to one user. The expiry notifier guarantees at most
// one unread row per (user, message) pair; the read flag is the only field
// ever mutated.
type Notification struct {
	gorm.Model
	UserID  uint      `json:"usuarioId" gorm:"index;not null"`
	Message string    `json:"mensaje" gorm:"not null"`
	Read    bool      `json:"leido" gorm:"index;not null;default:false"`
	Date    time.Time `json:"fecha" gorm:"index;not null"`
}
