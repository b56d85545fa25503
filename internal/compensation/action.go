// Package compensation runs the secondary updates attached to an order
// transition. They never fail the transition: a failing action is logged
// and dead-lettered so it can be replayed later.
package compensation

import (
	"github.com/google/uuid"

	"github.com/Skotchmaster/pet_shop/internal/models"
)

type Kind string

const (
	KindSoldCount    Kind = "sold_count"
	KindVoucherUsage Kind = "voucher_usage"
	KindCartClear    Kind = "cart_clear"
	KindNotify       Kind = "notify"
)

type Action struct {
	Kind         Kind                 `json:"kind"`
	ProductType  models.ProductKind   `json:"product_type,omitempty"`
	TargetID     uuid.UUID            `json:"target_id"`
	Delta        int                  `json:"delta,omitempty"`
	OwnerID      uuid.UUID            `json:"owner_id,omitempty"`
	Notification *models.Notification `json:"notification,omitempty"`
}

func SoldCount(kind models.ProductKind, productID uuid.UUID, delta int) Action {
	return Action{Kind: KindSoldCount, ProductType: kind, TargetID: productID, Delta: delta}
}

func VoucherUsage(voucherID uuid.UUID, delta int) Action {
	return Action{Kind: KindVoucherUsage, TargetID: voucherID, Delta: delta}
}

func CartClear(cartID, ownerID uuid.UUID) Action {
	return Action{Kind: KindCartClear, TargetID: cartID, OwnerID: ownerID}
}

func Notify(n *models.Notification) Action {
	return Action{Kind: KindNotify, Notification: n}
}

// SoldCounts builds one sold_count action per line, scaled by sign.
func SoldCounts(items []models.LineItem, sign int) []Action {
	out := make([]Action, 0, len(items))
	for _, it := range items {
		out = append(out, SoldCount(it.ProductType, it.ProductID, sign*it.Quantity))
	}
	return out
}
