package transport

import (
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

type CreateOrderItem struct {
	ProductID   uuid.UUID          `json:"product_id"   validate:"required"`
	ProductType models.ProductKind `json:"product_type" validate:"omitempty,oneof=food accessory"`
	CategoryID  *uuid.UUID         `json:"category_id"`
	Quantity    int                `json:"quantity"     validate:"gt=0"`
	Price       float64            `json:"price"        validate:"gte=0"`
	Amount      *float64           `json:"amount"       validate:"omitempty,gte=0"`
	Discount    float64            `json:"discount"     validate:"gte=0"`
}

// SummaryInput is what the client computed. Missing parts are derived from
// the lines and the shipping provider; the total is always checked.
type SummaryInput struct {
	Subtotal        *float64 `json:"subtotal"         validate:"omitempty,gte=0"`
	VoucherDiscount float64  `json:"voucher_discount" validate:"gte=0"`
	ShippingFee     *float64 `json:"shipping_fee"     validate:"omitempty,gte=0"`
	Total           *float64 `json:"total"            validate:"required"`
}

type AddressInput struct {
	FullName   string `json:"full_name"   validate:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1"       validate:"required"`
	City       string `json:"city"        validate:"required"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type CreateOrderRequest struct {
	Items          []CreateOrderItem `json:"products"         validate:"required,min=1,dive"`
	Summary        SummaryInput      `json:"summary"`
	CustomerInfoID *uuid.UUID        `json:"customer_info_id"`
	Address        *AddressInput     `json:"address"`
	ShippingID     *uuid.UUID        `json:"shipping_id"`
	PaymentID      *uuid.UUID        `json:"payment_id"`
	VoucherID      *uuid.UUID        `json:"voucher_id"`
	CartID         *uuid.UUID        `json:"cart_id"`
}

type UpdateStatusRequest struct {
	Status models.OrderStatus `json:"status" validate:"required"`
}

type ReturnOrderRequest struct {
	Reason      string `json:"return_reason"      validate:"required,max=500"`
	Description string `json:"return_description" validate:"max=2000"`
}

type RateProductRequest struct {
	Score   int    `json:"score"   validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=1000"`
}

type AddCartItemRequest struct {
	ProductID   uuid.UUID          `json:"product_id"   validate:"required"`
	ProductType models.ProductKind `json:"product_type" validate:"omitempty,oneof=food accessory"`
	Quantity    uint               `json:"quantity"     validate:"gt=0"`
}

type DeleteOneFromCartResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Deleted   bool      `json:"deleted"`
	Quantity  uint      `json:"quantity"`
}

type CreateBookingRequest struct {
	ServiceID     uuid.UUID `json:"service_id"     validate:"required"`
	AppointmentAt time.Time `json:"appointment_at" validate:"required"`
	Note          string    `json:"note"           validate:"max=1000"`
}

type UpdateBookingStatusRequest struct {
	Status models.BookingStatus `json:"status" validate:"required"`
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
}
