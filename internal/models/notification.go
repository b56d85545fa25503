package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Audience string

const (
	AudienceUser  Audience = "user"
	AudienceAdmin Audience = "admin"
)

type Notification struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"                bson:"_id"`
	Audience  Audience  `gorm:"type:varchar(16);index"     json:"audience"          bson:"audience"`
	SubjectID string    `gorm:"index"                      json:"subject_id"        bson:"subject_id"`
	Title     string    `gorm:"not null"                   json:"title"             bson:"title"`
	Message   string    `gorm:"type:text"                  json:"message"           bson:"message"`
	Level     string    `gorm:"type:varchar(16)"           json:"level"             bson:"level"`
	Link      string    `json:"link,omitempty"                                      bson:"link,omitempty"`
	CreatedAt time.Time `gorm:"index"                      json:"created_at"        bson:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// CompensationFailure is a dead-lettered compensating action.
type CompensationFailure struct {
	ID        uint      `gorm:"primaryKey"               json:"id"`
	OrderID   uuid.UUID `gorm:"type:uuid;index"          json:"order_id"`
	Kind      string    `gorm:"type:varchar(32);index"   json:"kind"`
	Payload   string    `gorm:"type:text;not null"       json:"payload"`
	Error     string    `gorm:"type:text"                json:"error"`
	Attempts  int       `gorm:"not null;default:1"       json:"attempts"`
	Resolved  bool      `gorm:"not null;default:false;index" json:"resolved"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
