package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusProcessing OrderStatus = "processing"
	StatusShipping   OrderStatus = "shipping"
	StatusShipped    OrderStatus = "shipped"
	StatusCompleted  OrderStatus = "completed"
	StatusCancelled  OrderStatus = "cancelled"
	StatusReturned   OrderStatus = "returned"
)

var OrderStatuses = []OrderStatus{
	StatusPending, StatusProcessing, StatusShipping, StatusShipped,
	StatusCompleted, StatusCancelled, StatusReturned,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if v == s {
			return true
		}
	}
	return false
}

type Order struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey"            json:"id"`
	UserID         *uuid.UUID     `gorm:"type:uuid;index"                 json:"user_id,omitempty"`
	CustomerInfoID *uuid.UUID     `gorm:"type:uuid;index"                 json:"customer_info_id,omitempty"`
	PaymentID      *uuid.UUID     `gorm:"type:uuid"                       json:"payment_id,omitempty"`
	ShippingID     *uuid.UUID     `gorm:"type:uuid"                       json:"shipping_id,omitempty"`
	VoucherID      *uuid.UUID     `gorm:"type:uuid"                       json:"voucher_id,omitempty"`
	CartID         *uuid.UUID     `gorm:"type:uuid"                       json:"cart_id,omitempty"`
	Status         OrderStatus    `gorm:"type:varchar(32);index"          json:"status"`
	Items          []LineItem     `gorm:"foreignKey:OrderID"              json:"products"`
	Summary        Summary        `gorm:"embedded;embeddedPrefix:summary_" json:"summary"`
	ReturnRequest  *ReturnRequest `gorm:"type:text;serializer:json"       json:"return_request,omitempty"`
	Audits         []OrderAudit   `gorm:"foreignKey:OrderID"              json:"updated_by,omitempty"`
	CreatedAt      time.Time      `gorm:"index"                           json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index"                           json:"-"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (o *Order) OwnedBy(userID uuid.UUID) bool {
	return o.UserID != nil && *o.UserID == userID
}

// Summary.Total is nullable so structurally broken rows can be detected.
type Summary struct {
	Subtotal        float64  `json:"subtotal"`
	VoucherDiscount float64  `json:"voucher_discount"`
	ShippingFee     float64  `json:"shipping_fee"`
	Total           *float64 `json:"total"`
}

type LineItem struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey"          json:"id"`
	OrderID     uuid.UUID   `gorm:"type:uuid;index;not null"      json:"order_id"`
	ProductID   uuid.UUID   `gorm:"type:uuid;index;not null"      json:"product_id"`
	ProductType ProductKind `gorm:"type:varchar(16);not null"     json:"product_type"`
	CategoryID  *uuid.UUID  `gorm:"type:uuid"                     json:"category_id,omitempty"`
	Quantity    int         `gorm:"not null;check:quantity > 0"   json:"quantity"`
	Price       float64     `gorm:"not null"                      json:"price"`
	Amount      float64     `gorm:"not null"                      json:"amount"`
	Discount    float64     `gorm:"not null;default:0"            json:"discount"`
}

func (LineItem) TableName() string {
	return "order_items"
}

func (li *LineItem) BeforeCreate(tx *gorm.DB) error {
	if li.ID == uuid.Nil {
		li.ID = uuid.New()
	}
	return nil
}

type ReturnStatus string

const (
	ReturnPending  ReturnStatus = "pending"
	ReturnApproved ReturnStatus = "approved"
	ReturnRejected ReturnStatus = "rejected"
)

type ReturnRequest struct {
	IsReturned        bool         `json:"is_returned"`
	ReturnReason      string       `json:"return_reason"`
	ReturnDescription string       `json:"return_description,omitempty"`
	RequestedAt       time.Time    `json:"requested_at"`
	RequestedBy       uuid.UUID    `json:"requested_by"`
	Status            ReturnStatus `json:"status"`
}

// OrderAudit is one entry of the append-only updatedBy trail.
type OrderAudit struct {
	ID        uint        `gorm:"primaryKey"               json:"-"`
	OrderID   uuid.UUID   `gorm:"type:uuid;index;not null" json:"-"`
	AccountID uuid.UUID   `gorm:"type:uuid;not null"       json:"account_id"`
	Status    OrderStatus `gorm:"type:varchar(32)"         json:"status"`
	UpdatedAt time.Time   `gorm:"autoCreateTime"           json:"updated_at"`
}
