// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Listing page size bounds.
const (
	DefaultLimit = 24
	MaxLimit     = 100

	maxPage = 1 << 31
)

// ListRequest is a parsed product listing query.
type ListRequest struct {
	Query     string
	Gender    string
	Slug      string
	BrandID   *int64
	BrandSlug string
	Variant   models.VariantFilter
	Page      uint64
	Limit     uint64
	Sort      models.ProductSort
}

// Offset returns the number of rows before the requested page.
func (r ListRequest) Offset() uint64 {
	return (r.Page - 1) * r.Limit
}

// ParseListRequest reads a listing query string. Page and limit are
// clamped to safe values instead of rejected; malformed brand ids and
// price bounds have no safe default and fail with InvalidArgument.
func ParseListRequest(q url.Values) (ListRequest, error) {
	r := ListRequest{
		Query:     param(q, "q"),
		Gender:    param(q, "gender"),
		Slug:      param(q, "slug"),
		BrandSlug: param(q, "brand_slug"),
		Page:      clampPage(param(q, "page")),
		Limit:     clampLimit(param(q, "limit")),
		Sort:      models.ParseProductSort(param(q, "sort")),
	}

	if v := param(q, "brand_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil || id <= 0 {
			return ListRequest{}, apperr.InvalidArgument("invalid brand_id %q", v)
		}
		r.BrandID = &id
	}
	if v := param(q, "color"); v != "" {
		r.Variant.Color = &v
	}
	if v := param(q, "size"); v != "" {
		r.Variant.Size = &v
	}

	var err error
	if r.Variant.MinPrice, err = priceBound(q, "min_price"); err != nil {
		return ListRequest{}, err
	}
	if r.Variant.MaxPrice, err = priceBound(q, "max_price"); err != nil {
		return ListRequest{}, err
	}
	if r.Variant.MinPrice != nil && r.Variant.MaxPrice != nil && *r.Variant.MinPrice > *r.Variant.MaxPrice {
		return ListRequest{}, apperr.InvalidArgument("min_price must not exceed max_price")
	}
	return r, nil
}

func param(q url.Values, key string) string {
	return strings.TrimSpace(q.Get(key))
}

func clampPage(v string) uint64 {
	n, err := strconv.ParseInt(v, 10, 64)
	switch {
	case err != nil || n < 1:
		return 1
	case n > maxPage:
		return maxPage
	}
	return uint64(n)
}

func clampLimit(v string) uint64 {
	n, err := strconv.ParseInt(v, 10, 64)
	switch {
	case err != nil:
		return DefaultLimit
	case n < 1:
		return 1
	case n > MaxLimit:
		return MaxLimit
	}
	return uint64(n)
}

func priceBound(q url.Values, key string) (*int64, error) {
	v := param(q, key)
	if v == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return nil, apperr.InvalidArgument("invalid %s %q", key, v)
	}
	return &n, nil
}
