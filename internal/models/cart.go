package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cart struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey"           json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items  []CartItem `gorm:"foreignKey:CartID"              json:"items"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

type CartItem struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"                        json:"id"`
	CartID      uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"cart_id"`
	ProductID   uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_cart_product;not null" json:"product_id"`
	ProductType ProductKind `gorm:"type:varchar(16);not null"                   json:"product_type"`
	Quantity    uint        `gorm:"default:1;check:quantity > 0"                json:"quantity"`
}

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (CartItem) TableName() string {
	return "cart_items"
}
