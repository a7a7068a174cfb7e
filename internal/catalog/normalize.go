// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import "storefront/internal/models"

// ListItem is one product of a listing in display form.
type ListItem struct {
	ID                  int64   `json:"id"`
	Slug                string  `json:"slug"`
	Title               string  `json:"title"`
	CategoryID          *int64  `json:"category_id"`
	BrandID             *int64  `json:"brand_id"`
	BrandName           *string `json:"brand_name"`
	Price               int64   `json:"price"`
	DefaultVariantID    *int64  `json:"default_variant_id"`
	DefaultSizeID       *int64  `json:"default_size_id"`
	DefaultVariantLabel *string `json:"default_variant_label"`
	DefaultSizeLabel    *string `json:"default_size_label"`
	ImageURL            *string `json:"image_url"`
}

// defaultVariant picks the variant that represents a product. Only variants
// passing f qualify. Price sorts pick the qualifying extreme price, anything
// else the smallest id; ties always go to the smallest id. The result does
// not depend on the order of variants.
func defaultVariant(variants []models.Variant, f models.VariantFilter, sort models.ProductSort) *models.Variant {
	var best *models.Variant
	for i := range variants {
		v := &variants[i]
		if !f.Matches(v) {
			continue
		}
		if best == nil || better(v, best, sort) {
			best = v
		}
	}
	return best
}

func better(v, cur *models.Variant, sort models.ProductSort) bool {
	switch {
	case sort == models.SortPriceAsc && v.Price != cur.Price:
		return v.Price < cur.Price
	case sort == models.SortPriceDesc && v.Price != cur.Price:
		return v.Price > cur.Price
	}
	return v.ID < cur.ID
}

// defaultSize picks the smallest-id size, restricted to the requested size
// label when one is given.
func defaultSize(v *models.Variant, want *string) *models.VariantSize {
	var best *models.VariantSize
	for i := range v.Sizes {
		s := &v.Sizes[i]
		if want != nil && s.Size != *want {
			continue
		}
		if best == nil || s.ID < best.ID {
			best = s
		}
	}
	return best
}

// normalize builds the display item for a listed product.
func normalize(row models.ProductRow, variants []models.Variant, f models.VariantFilter, sort models.ProductSort) ListItem {
	item := ListItem{
		ID:         row.ID,
		Slug:       row.Slug,
		Title:      row.Title,
		CategoryID: row.PrimaryCategoryID,
		BrandID:    row.BrandID,
		BrandName:  row.BrandName,
	}

	v := defaultVariant(variants, f, sort)
	if v == nil {
		return item
	}
	item.Price = v.Price
	item.DefaultVariantID = &v.ID
	item.DefaultVariantLabel = v.Color

	if s := defaultSize(v, f.Size); s != nil {
		item.DefaultSizeID = &s.ID
		item.DefaultSizeLabel = &s.Size
	}
	if img := v.PrimaryImage(); img != nil {
		item.ImageURL = &img.URL
	}
	return item
}
