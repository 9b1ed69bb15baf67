// Package pricing computes the monetary breakdown for a banquet booking.
package pricing

// GST options accepted on a booking.
const (
	GSTOn     = "on"
	GSTOff    = "off"
	GSTCustom = "custom"
)

// Discount types accepted on a booking.
const (
	DiscountPercent = "percent"
	DiscountFixed   = "fixed"
)

// Menu item pricing types.
const (
	PricingPerPlate = "per_plate"
	PricingFixed    = "fixed"
)

// DefaultGSTPercent applies when the GST option is "on".
const DefaultGSTPercent = 5.0

// PricedItem is the slice of a menu item the calculator needs.
type PricedItem struct {
	ID          string
	Price       float64
	PricingType string
}

// Discount configures the discount applied to the subtotal.
type Discount struct {
	Type  string
	Value float64
}

// GST configures how tax is applied after discount.
type GST struct {
	Option        string
	CustomPercent float64
}

// Charges is the full computed breakdown for a booking.
type Charges struct {
	FoodCharge     float64
	AddonCharge    float64
	Subtotal       float64
	DiscountAmount float64
	GSTPercent     float64
	GSTAmount      float64
	TotalAmount    float64
}

// Compute derives booking charges from the selected menu items and add-ons.
// Price overrides win over listed prices and are applied flat, never
// multiplied by guest count. Non-overridden add-ons are always flat.
// The discount amount is not capped against the subtotal; the subtotal minus
// discount is floored at zero before GST.
func Compute(menuItems, addons []PricedItem, guestCount int, discount Discount, gst GST, overrides map[string]float64) Charges {
	var food float64
	for _, item := range menuItems {
		if override, ok := overrides[item.ID]; ok {
			food += override
			continue
		}
		if item.PricingType == PricingFixed {
			food += item.Price
		} else {
			food += item.Price * float64(guestCount)
		}
	}

	var addon float64
	for _, a := range addons {
		if override, ok := overrides[a.ID]; ok {
			addon += override
		} else {
			addon += a.Price
		}
	}

	subtotal := food + addon

	var discountAmount float64
	if discount.Type == DiscountPercent {
		discountAmount = subtotal * (discount.Value / 100)
	} else {
		discountAmount = discount.Value
	}

	afterDiscount := subtotal - discountAmount
	if afterDiscount < 0 {
		afterDiscount = 0
	}

	var gstPercent float64
	switch gst.Option {
	case GSTOff:
		gstPercent = 0
	case GSTCustom:
		gstPercent = gst.CustomPercent
	default:
		gstPercent = DefaultGSTPercent
	}
	gstAmount := afterDiscount * (gstPercent / 100)

	return Charges{
		FoodCharge:     food,
		AddonCharge:    addon,
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		GSTPercent:     gstPercent,
		GSTAmount:      gstAmount,
		TotalAmount:    afterDiscount + gstAmount,
	}
}
