package service

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/pet_shop/internal/models"
	"github.com/Skotchmaster/pet_shop/internal/transport"
)

var totalTolerance = decimal.NewFromFloat(0.01)

func lineAmount(it transport.CreateOrderItem) float64 {
	if it.Amount != nil {
		return *it.Amount
	}
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2).InexactFloat64()
}

// computeSummary derives the order summary from its lines and checks the
// client's figures against it. total = subtotal - voucher + shipping.
// The discount always comes from v; a claimed discount must match it.
func computeSummary(lines []models.LineItem, in transport.SummaryInput, providerFee float64, v *models.Voucher) (models.Summary, error) {
	if in.Total == nil {
		return models.Summary{}, fmt.Errorf("%w: summary total required", ErrValidation)
	}

	subtotal := decimal.Zero
	if in.Subtotal != nil {
		subtotal = decimal.NewFromFloat(*in.Subtotal)
	} else {
		for _, li := range lines {
			subtotal = subtotal.Add(decimal.NewFromFloat(li.Amount).Sub(decimal.NewFromFloat(li.Discount)))
		}
	}

	shipping := decimal.NewFromFloat(providerFee)
	if in.ShippingFee != nil {
		shipping = decimal.NewFromFloat(*in.ShippingFee)
	}

	voucher, err := voucherDiscount(in.VoucherDiscount, v)
	if err != nil {
		return models.Summary{}, err
	}

	switch {
	case subtotal.IsNegative():
		return models.Summary{}, fmt.Errorf("%w: subtotal must be >= 0", ErrValidation)
	case shipping.IsNegative():
		return models.Summary{}, fmt.Errorf("%w: fees and discounts must be >= 0", ErrValidation)
	case voucher.GreaterThan(subtotal.Add(shipping)):
		return models.Summary{}, fmt.Errorf("%w: voucher discount exceeds order value", ErrValidation)
	}

	subtotal, voucher, shipping = subtotal.Round(2), voucher.Round(2), shipping.Round(2)
	total := subtotal.Sub(voucher).Add(shipping)
	if total.Sub(decimal.NewFromFloat(*in.Total)).Abs().GreaterThan(totalTolerance) {
		return models.Summary{}, fmt.Errorf("%w: summary total %.2f does not match computed %s", ErrValidation, *in.Total, total.StringFixed(2))
	}

	t := total.InexactFloat64()
	return models.Summary{
		Subtotal:        subtotal.InexactFloat64(),
		VoucherDiscount: voucher.InexactFloat64(),
		ShippingFee:     shipping.InexactFloat64(),
		Total:           &t,
	}, nil
}

func voucherDiscount(claimed float64, v *models.Voucher) (decimal.Decimal, error) {
	c := decimal.NewFromFloat(claimed)
	if c.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: fees and discounts must be >= 0", ErrValidation)
	}
	if v == nil {
		if c.IsPositive() {
			return decimal.Zero, fmt.Errorf("%w: voucher discount requires voucher_id", ErrValidation)
		}
		return decimal.Zero, nil
	}
	d := decimal.NewFromFloat(v.Discount)
	if c.IsPositive() && c.Sub(d).Abs().GreaterThan(totalTolerance) {
		return decimal.Zero, fmt.Errorf("%w: voucher discount %s does not match voucher %s", ErrValidation, c.StringFixed(2), d.StringFixed(2))
	}
	return d, nil
}
