package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductKind string

const (
	KindFood      ProductKind = "food"
	KindAccessory ProductKind = "accessory"
)

var ProductKinds = []ProductKind{KindFood, KindAccessory}

func (k ProductKind) Valid() bool {
	return k == KindFood || k == KindAccessory
}

func (k ProductKind) Table() string {
	if k == KindAccessory {
		return "accessories"
	}
	return "foods"
}

// CatalogItem holds the columns shared by the food and accessory catalogs.
type CatalogItem struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"      json:"id"`
	Name           string         `gorm:"not null"                  json:"name"`
	CategoryID     *uuid.UUID     `gorm:"type:uuid;index"           json:"category_id,omitempty"`
	Price          float64        `gorm:"not null"                  json:"price"`
	Quantity       int            `gorm:"not null;default:0"        json:"quantity"`
	SoldCount      int            `gorm:"not null;default:0"        json:"sold_count"`
	SoldQuantity   int            `gorm:"not null;default:0"        json:"sold_quantity"`
	RemainingStock int            `gorm:"not null;default:0"        json:"remaining_stock"`
	DiscountID     *uuid.UUID     `gorm:"type:uuid"                 json:"discount_id,omitempty"`
	ShippingID     *uuid.UUID     `gorm:"type:uuid"                 json:"shipping_id,omitempty"`
	Rating         float64        `gorm:"not null;default:0"        json:"rating"`
	ReviewCount    int            `gorm:"not null;default:0"        json:"review_count"`
	RatedBy        []string       `gorm:"type:text;serializer:json" json:"rated_by"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index"                     json:"-"`
}

func (c *CatalogItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *CatalogItem) HasRated(userID uuid.UUID) bool {
	id := userID.String()
	for _, v := range c.RatedBy {
		if v == id {
			return true
		}
	}
	return false
}

type Food struct {
	CatalogItem `gorm:"embedded"`
}

func (Food) TableName() string {
	return KindFood.Table()
}

type Accessory struct {
	CatalogItem `gorm:"embedded"`
}

func (Accessory) TableName() string {
	return KindAccessory.Table()
}
