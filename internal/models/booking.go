package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service orders use their own capitalised enumeration; it is not the
// product order one.
type BookingStatus string

const (
	BookingPending    BookingStatus = "Pending"
	BookingConfirmed  BookingStatus = "Confirmed"
	BookingInProgress BookingStatus = "In Progress"
	BookingCompleted  BookingStatus = "Completed"
	BookingCancelled  BookingStatus = "Cancelled"
)

var bookingMessages = map[BookingStatus]string{
	BookingPending:    "Awaiting confirmation.",
	BookingConfirmed:  "Confirmed; please be ready.",
	BookingInProgress: "Service is underway.",
	BookingCompleted:  "Service completed. Thank you.",
	BookingCancelled:  "Appointment cancelled.",
}

func (s BookingStatus) Valid() bool {
	_, ok := bookingMessages[s]
	return ok
}

// Message is the user-facing text sent when a booking moves to s.
func (s BookingStatus) Message() string {
	return bookingMessages[s]
}

type GroomingService struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"not null"             json:"name"`
	Price           float64        `gorm:"not null"             json:"price"`
	DurationMinutes int            `gorm:"not null;default:60"  json:"duration_minutes"`
	DeletedAt       gorm.DeletedAt `gorm:"index"                json:"-"`
}

func (g *GroomingService) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

type ServiceOrder struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey"     json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id"`
	ServiceID     uuid.UUID      `gorm:"type:uuid;not null"       json:"service_id"`
	AppointmentAt time.Time      `gorm:"not null"                 json:"appointment_at"`
	Status        BookingStatus  `gorm:"type:varchar(32);index"   json:"status"`
	Total         *float64       `json:"total"`
	Note          string         `json:"note,omitempty"`
	CreatedAt     time.Time      `gorm:"index"                    json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index"                    json:"-"`
}

func (s *ServiceOrder) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
