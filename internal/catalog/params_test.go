// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

func TestParseListRequestDefaults(t *testing.T) {
	r, err := ParseListRequest(url.Values{})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), r.Page)
	assert.Equal(t, uint64(DefaultLimit), r.Limit)
	assert.Equal(t, models.SortDefault, r.Sort)
	assert.Equal(t, uint64(0), r.Offset())
	assert.True(t, r.Variant.IsZero())
	assert.Nil(t, r.BrandID)
}

func TestParseListRequestFields(t *testing.T) {
	q := url.Values{
		"q":          {"  runner "},
		"gender":     {"women"},
		"slug":       {"shoes"},
		"brand_id":   {"5"},
		"brand_slug": {"nike"},
		"color":      {"red"},
		"size":       {"38"},
		"min_price":  {"5000"},
		"max_price":  {"9000"},
		"page":       {"3"},
		"limit":      {"10"},
		"sort":       {"price_desc"},
	}
	r, err := ParseListRequest(q)
	require.NoError(t, err)

	assert.Equal(t, "runner", r.Query)
	assert.Equal(t, "women", r.Gender)
	assert.Equal(t, "shoes", r.Slug)
	assert.Equal(t, int64(5), *r.BrandID)
	assert.Equal(t, "nike", r.BrandSlug)
	assert.Equal(t, "red", *r.Variant.Color)
	assert.Equal(t, "38", *r.Variant.Size)
	assert.Equal(t, int64(5000), *r.Variant.MinPrice)
	assert.Equal(t, int64(9000), *r.Variant.MaxPrice)
	assert.Equal(t, uint64(3), r.Page)
	assert.Equal(t, uint64(10), r.Limit)
	assert.Equal(t, uint64(20), r.Offset())
	assert.Equal(t, models.SortPriceDesc, r.Sort)
}

func TestParseListRequestClamps(t *testing.T) {
	tests := []struct {
		page, limit         string
		wantPage, wantLimit uint64
	}{
		{"0", "0", 1, 1},
		{"-4", "-1", 1, 1},
		{"abc", "abc", 1, DefaultLimit},
		{"2.5", "", 1, DefaultLimit},
		{"7", "500", 7, MaxLimit},
		{"99999999999999", "100", maxPage, 100},
	}
	for _, tt := range tests {
		r, err := ParseListRequest(url.Values{"page": {tt.page}, "limit": {tt.limit}})
		require.NoError(t, err)
		assert.Equal(t, tt.wantPage, r.Page, "page %q", tt.page)
		assert.Equal(t, tt.wantLimit, r.Limit, "limit %q", tt.limit)
	}
}

func TestParseListRequestRejects(t *testing.T) {
	tests := []url.Values{
		{"min_price": {"-1"}},
		{"max_price": {"cheap"}},
		{"min_price": {"9000"}, "max_price": {"5000"}},
		{"brand_id": {"nike"}},
		{"brand_id": {"0"}},
	}
	for _, q := range tests {
		_, err := ParseListRequest(q)
		require.Error(t, err, "%v", q)
		assert.Equal(t, apperr.KindInvalidArgument, apperr.KindOf(err), "%v", q)
	}
}

func TestParseListRequestUnknownSort(t *testing.T) {
	r, err := ParseListRequest(url.Values{"sort": {"popular"}})
	require.NoError(t, err)
	assert.Equal(t, models.SortDefault, r.Sort)
}
