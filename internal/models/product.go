// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Brand is a product manufacturer or label.
type Brand struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`
	Active bool   `json:"active"`
}

// Product is the listing unit of the catalog. Prices live on variants.
type Product struct {
	ID                int64     `json:"id"`
	Title             string    `json:"title"`
	Slug              string    `json:"slug"`
	Description       *string   `json:"description"`
	BrandID           *int64    `json:"brand_id"`
	PrimaryCategoryID *int64    `json:"primary_category_id"`
	Active            bool      `json:"active"`
	CreatedAt         time.Time `json:"created_at"`

	// Populated by store methods that join related rows.
	BrandName *string   `json:"brand_name,omitempty"`
	Variants  []Variant `json:"variants,omitempty"`
}

// Variant is a purchasable color/price combination of a product.
// Price is an integer amount in the minor currency unit.
type Variant struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Color     *string `json:"color"`
	Price     int64   `json:"price"`
	Active    bool    `json:"active"`

	// Always non-nil after a store load, ordered by position / id.
	Images []VariantImage `json:"images"`
	Sizes  []VariantSize  `json:"sizes"`
}

// PrimaryImage returns the lowest-position image, ties to the smallest id.
func (v *Variant) PrimaryImage() *VariantImage {
	var best *VariantImage
	for i := range v.Images {
		img := &v.Images[i]
		if best == nil || img.Position < best.Position ||
			(img.Position == best.Position && img.ID < best.ID) {
			best = img
		}
	}
	return best
}

// VariantImage is an image of a variant. The lowest position is primary.
type VariantImage struct {
	ID        int64  `json:"id"`
	VariantID int64  `json:"variant_id"`
	URL       string `json:"url"`
	Position  int    `json:"position"`
}

// VariantSize is a size option of a variant. Stock is nil when untracked.
type VariantSize struct {
	ID        int64  `json:"id"`
	VariantID int64  `json:"variant_id"`
	Size      string `json:"size"`
	Stock     *int   `json:"stock"`
}

// ProductSort selects the ordering of a product listing.
type ProductSort string

const (
	SortDefault   ProductSort = "default"
	SortPriceAsc  ProductSort = "price_asc"
	SortPriceDesc ProductSort = "price_desc"
	SortNew       ProductSort = "new"
)

// ParseProductSort maps a query value to a sort key. Unknown values
// fall back to SortDefault.
func ParseProductSort(s string) ProductSort {
	switch ProductSort(s) {
	case SortPriceAsc, SortPriceDesc, SortNew:
		return ProductSort(s)
	}
	return SortDefault
}

// ByPrice reports whether the sort orders by variant price.
func (s ProductSort) ByPrice() bool {
	return s == SortPriceAsc || s == SortPriceDesc
}

// VariantFilter holds the variant-level facets. A product qualifies when
// any one of its active variants satisfies every non-nil predicate.
type VariantFilter struct {
	Color    *string
	Size     *string
	MinPrice *int64
	MaxPrice *int64
}

// IsZero reports whether no variant-level predicate is set.
func (f VariantFilter) IsZero() bool {
	return f.Color == nil && f.Size == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// Matches reports whether v satisfies every predicate of the filter.
// The size predicate is checked against v.Sizes.
func (f VariantFilter) Matches(v *Variant) bool {
	if !v.Active {
		return false
	}
	if f.Color != nil && (v.Color == nil || *v.Color != *f.Color) {
		return false
	}
	if f.MinPrice != nil && v.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && v.Price > *f.MaxPrice {
		return false
	}
	if f.Size != nil {
		for _, s := range v.Sizes {
			if s.Size == *f.Size {
				return true
			}
		}
		return false
	}
	return true
}

// ProductFilter is the fully resolved listing query handed to the store.
// CategoryIDs nil means unrestricted; an empty non-nil slice matches nothing.
type ProductFilter struct {
	CategoryIDs []int64
	Text        string
	BrandID     *int64
	ExcludeID   *int64
	Variant     VariantFilter
	Sort        ProductSort
	Offset      uint64
	Limit       uint64
}

// ProductRow is one product of a listing page with its aggregate price
// over qualifying variants.
type ProductRow struct {
	ID                int64
	Title             string
	Slug              string
	BrandID           *int64
	BrandName         *string
	PrimaryCategoryID *int64
	MinPrice          int64
	MaxPrice          int64
}
