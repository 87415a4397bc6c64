package domain

import (
	"strings"
	"time"
)

type Variant struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	CategoryID  string `json:"categoryId"`
	// CategoryName is filled on reads; UncategorizedLabel when the category is gone.
	CategoryName string    `json:"categoryName,omitempty"`
	ImgURL       string    `json:"imgUrl,omitempty"`
	Variants     []Variant `json:"variants,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HasVariants reports whether the product is sold per named variant.
func (p Product) HasVariants() bool {
	return len(p.Variants) > 0
}

// Variant looks a variant up by exact name.
func (p Product) Variant(name string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// DisplayPriceCents is the minimum variant price when variants exist, else the base price.
func (p Product) DisplayPriceCents() int64 {
	if len(p.Variants) == 0 {
		return p.PriceCents
	}
	min := p.Variants[0].PriceCents
	for _, v := range p.Variants[1:] {
		if v.PriceCents < min {
			min = v.PriceCents
		}
	}
	return min
}

// Validate checks the write-time invariants that do not need the store.
func (p Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.CategoryID) == "" {
		return Invalid("Name and Category are required.")
	}
	if len(p.Variants) == 0 {
		if p.PriceCents < 0 {
			return Invalid("Price must be a valid positive number.")
		}
		return nil
	}
	seen := make(map[string]struct{}, len(p.Variants))
	for _, v := range p.Variants {
		key := strings.ToLower(strings.TrimSpace(v.Name))
		if key == "" {
			return Invalid("Variant names are required.")
		}
		if v.PriceCents < 0 {
			return Invalid("Variant prices must be valid positive numbers.")
		}
		if _, dup := seen[key]; dup {
			return Invalid("Variant names must be unique.")
		}
		seen[key] = struct{}{}
	}
	return nil
}
