package models

import (
	"github.com/google/uuid"
	"github.com/lib/pq" // needed for pq.StringArray
	"gorm.io/gorm"
)

// User is the persisted snapshot of a registered participant. The row
// outlives the connection; the in-memory Participant does not.
type User struct {
	ID        string `gorm:"primaryKey" json:"id"` // anonymous UUID, equals the connection id
	Name      string
	Age       int
	Gender    string
	Interests pq.StringArray `gorm:"type:text[]"`
}

// BeforeCreate is a GORM hook that fills in a fresh UUID when the caller
// did not supply an id.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
