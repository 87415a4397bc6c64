package domain

import "time"

// CartLine is one (product, variant) entry with its price snapshot.
type CartLine struct {
	ProductID      string  `json:"productId"`
	Variant        *string `json:"variant"`
	Name           string  `json:"name"`
	ImgURL         string  `json:"imgUrl,omitempty"`
	UnitPriceCents int64   `json:"unitPriceCents"`
	Quantity       int     `json:"quantity"`
}

// Key renders the line identity the way checkout selections reference it.
func (l CartLine) Key() string {
	return LineKey(l.ProductID, l.Variant)
}

// Matches reports whether the line has the given identity.
func (l CartLine) Matches(productID string, variant *string) bool {
	return l.ProductID == productID && VariantName(l.Variant) == VariantName(variant)
}

// DisplayName appends the variant to the product name snapshot.
func (l CartLine) DisplayName() string {
	if v := VariantName(l.Variant); v != "" {
		return l.Name + " (" + v + ")"
	}
	return l.Name
}

type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartLine `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TotalCents sums price × quantity over the current lines.
func (c Cart) TotalCents() int64 {
	var total int64
	for _, l := range c.Items {
		total += l.UnitPriceCents * int64(l.Quantity)
	}
	return total
}

// LineKey builds "productId|variant" with an empty variant after the pipe when absent.
func LineKey(productID string, variant *string) string {
	return productID + "|" + VariantName(variant)
}

// VariantName dereferences an optional variant.
func VariantName(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// OptionalVariant maps an empty name to nil.
func OptionalVariant(name string) *string {
	if name == "" {
		return nil
	}
	return &name
}
