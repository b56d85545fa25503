package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Address is the customer_info record an order ships to.
type Address struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index"      json:"user_id,omitempty"`
	FullName   string         `gorm:"not null"             json:"full_name"`
	Phone      string         `json:"phone"`
	Line1      string         `gorm:"not null"             json:"line1"`
	City       string         `gorm:"not null"             json:"city"`
	PostalCode string         `json:"postal_code"`
	Country    string         `json:"country"`
	CreatedAt  time.Time      `json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index"                json:"-"`
}

func (a *Address) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type ShippingProvider struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"not null"             json:"name"`
	Fee    float64   `gorm:"not null;default:0"   json:"fee"`
	Active bool      `gorm:"not null;default:true" json:"active"`
}

func (s *ShippingProvider) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type PaymentMethod struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey"  json:"id"`
	Name   string    `gorm:"not null"              json:"name"`
	Active bool      `gorm:"not null;default:true" json:"active"`
}

func (p *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

type Voucher struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string     `gorm:"uniqueIndex;not null" json:"code"`
	Discount   float64    `gorm:"not null"             json:"discount"`
	UsageLimit int        `gorm:"not null;default:0"   json:"usage_limit"`
	UsedCount  int        `gorm:"not null;default:0"   json:"used_count"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

func (v *Voucher) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// Usable reports whether the voucher can be applied at now. A zero
// UsageLimit means unlimited.
func (v *Voucher) Usable(now time.Time) bool {
	if v.ExpiresAt != nil && !now.Before(*v.ExpiresAt) {
		return false
	}
	return v.UsageLimit == 0 || v.UsedCount < v.UsageLimit
}
