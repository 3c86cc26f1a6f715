package Models

import (
	"gorm.io/gorm"
)

const (
	RoleAdmin  = "ADMIN"
	RoleDriver = "CONDUCTOR"
)

type User struct {
	gorm.Model
	Name     string `json:"nombre"`
	Email    string `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Password []byte `json:"-"`
	Role     string `json:"rol" gorm:"size:16;not null;default:CONDUCTOR"`
	DNI      string `json:"dni,omitempty" gorm:"size:16"`
	License  string `json:"brevete,omitempty" gorm:"size:16"`

	Notifications []Notification `json:"-" gorm:"foreignKey:UserID"`
}

// SessionUser is the typed principal produced once by the auth middleware and
// carried through the request; handlers never re-derive identity fields.
type SessionUser struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
	Name  string `json:"nombre"`
	Role  string `json:"rol"`
}

func (u User) Session() SessionUser {
	return SessionUser{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role}
}

func (s SessionUser) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// FCMToken is a push-notification device token registered by a user's app.
type FCMToken struct {
	gorm.Model
	UserID uint   `json:"usuarioId" gorm:"index;not null"`
	Value  string `json:"value" gorm:"size:512;uniqueIndex"`
}
