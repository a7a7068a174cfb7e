// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

var listingColumns = []string{
	"id", "title", "slug", "brand_id", "brand_name", "primary_category_id", "min_price", "max_price",
}

func TestListingBaseJoinsQualifyingVariants(t *testing.T) {
	minPrice := int64(5000)
	size := "38"
	b, err := listingBase(models.ProductFilter{
		CategoryIDs: []int64{10, 11},
		Text:        "50%",
		Variant:     models.VariantFilter{MinPrice: &minPrice, Size: &size},
	})
	require.NoError(t, err)

	query, args, err := b.ToSql()
	require.NoError(t, err)

	assert.Contains(t, query, " JOIN (SELECT v.product_id, MIN(v.price) AS min_price, MAX(v.price) AS max_price FROM product_variants v WHERE v.active AND v.price >= $1 AND EXISTS (SELECT 1 FROM product_variant_sizes s WHERE s.variant_id = v.id AND s.size = $2) GROUP BY v.product_id) q ON q.product_id = p.id")
	assert.NotContains(t, query, "LEFT JOIN (SELECT")
	assert.Contains(t, query, "WHERE p.active AND p.primary_category_id IN ($3,$4) AND p.title ILIKE $5")
	assert.Equal(t, []any{int64(5000), "38", int64(10), int64(11), `%50\%%`}, args)
}

func TestListingBaseWithoutVariantFacetsKeepsProductsWithoutVariants(t *testing.T) {
	b, err := listingBase(models.ProductFilter{})
	require.NoError(t, err)

	query, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "LEFT JOIN (SELECT v.product_id")
	assert.Contains(t, query, "COALESCE(q.min_price, 0) AS min_price")
	assert.NotContains(t, query, "primary_category_id IN")
	assert.Empty(t, args)
}

func TestListingBaseEmptyScopeMatchesNothing(t *testing.T) {
	b, err := listingBase(models.ProductFilter{CategoryIDs: []int64{}})
	require.NoError(t, err)

	query, _, err := b.ToSql()
	require.NoError(t, err)
	assert.Contains(t, query, "(1=0)")
}

func TestOrderByEndsOnProductID(t *testing.T) {
	tests := []struct {
		sort models.ProductSort
		want []string
	}{
		{models.SortPriceAsc, []string{"min_price ASC", "p.id ASC"}},
		{models.SortPriceDesc, []string{"max_price DESC", "p.id ASC"}},
		{models.SortNew, []string{"p.id DESC"}},
		{models.SortDefault, []string{"p.id ASC"}},
		{models.ProductSort("bogus"), []string{"p.id ASC"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.sort), func(t *testing.T) {
			assert.Equal(t, tt.want, orderBy(tt.sort))
		})
	}
}

func TestProductStoreListProducts(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)
	minPrice := int64(5000)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(SELECT p\.id, .* v\.price >= \$1 GROUP BY v\.product_id\) q ON q\.product_id = p\.id WHERE p\.active AND p\.primary_category_id IN \(\$2,\$3\)\) AS listing`).
		WithArgs(int64(5000), int64(10), int64(11)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`WHERE p\.active AND p\.primary_category_id IN \(\$2,\$3\) ORDER BY min_price ASC, p\.id ASC LIMIT 2 OFFSET 0`).
		WithArgs(int64(5000), int64(10), int64(11)).
		WillReturnRows(sqlmock.NewRows(listingColumns).
			AddRow(int64(2), "Sandal", "sandal", nil, nil, int64(11), int64(5000), int64(5000)).
			AddRow(int64(3), "Boot", "boot", int64(1), "Amoda", int64(10), int64(7000), int64(7000)))

	rows, total, err := s.ListProducts(context.Background(), models.ProductFilter{
		CategoryIDs: []int64{10, 11},
		Variant:     models.VariantFilter{MinPrice: &minPrice},
		Sort:        models.SortPriceAsc,
		Offset:      0,
		Limit:       2,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(5000), rows[0].MinPrice)
	assert.Nil(t, rows[0].BrandName)
	require.NotNil(t, rows[1].BrandName)
	assert.Equal(t, "Amoda", *rows[1].BrandName)
}

func TestProductStoreListProductsPastLastPage(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rows, total, err := s.ListProducts(context.Background(), models.ProductFilter{Offset: 24, Limit: 24})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	assert.Empty(t, rows)
}

func TestProductStoreVariantsForNormalizesNesting(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectQuery(`SELECT id, product_id, color, price, active FROM product_variants WHERE product_id IN \(\$1,\$2\) AND active ORDER BY id ASC`).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "color", "price", "active"}).
			AddRow(int64(10), int64(1), "black", int64(15000), true).
			AddRow(int64(11), int64(1), nil, int64(16500), true).
			AddRow(int64(20), int64(2), "brown", int64(9000), true))
	mock.ExpectQuery(`FROM product_variant_images WHERE variant_id IN \(\$1,\$2,\$3\) ORDER BY position ASC, id ASC`).
		WithArgs(int64(10), int64(11), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "variant_id", "url", "position"}).
			AddRow(int64(5), int64(10), "a.jpg", 0).
			AddRow(int64(6), int64(10), "b.jpg", 1))
	mock.ExpectQuery(`FROM product_variant_sizes WHERE variant_id IN \(\$1,\$2,\$3\) ORDER BY id ASC`).
		WithArgs(int64(10), int64(11), int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "variant_id", "size", "stock"}).
			AddRow(int64(100), int64(20), "37", 4))

	got, err := s.VariantsFor(context.Background(), []int64{1, 2}, true)
	require.NoError(t, err)
	require.Len(t, got[1], 2)
	require.Len(t, got[2], 1)

	assert.Len(t, got[1][0].Images, 2)
	assert.Equal(t, "a.jpg", got[1][0].Images[0].URL)
	assert.NotNil(t, got[1][1].Images)
	assert.Empty(t, got[1][1].Images)
	assert.NotNil(t, got[1][0].Sizes)
	assert.Equal(t, "37", got[2][0].Sizes[0].Size)
}

func TestProductStoreVariantsForEmpty(t *testing.T) {
	db, _ := newMock(t)
	s := NewProductStore(db)

	got, err := s.VariantsFor(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestProductStoreFindBySlugNotFound(t *testing.T) {
	db, mock := newMock(t)
	s := NewProductStore(db)

	mock.ExpectQuery(`FROM products p LEFT JOIN brands b ON b\.id = p\.brand_id WHERE p\.slug = \$1 AND p\.active`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.FindBySlug(context.Background(), "missing", true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestProductStoreListProductsIntegration(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	cats := NewCategoryStore(db)
	products := NewProductStore(db)

	t.Cleanup(func() {
		cleanProducts(t, db, "it-p1", "it-p2", "it-p3", "it-p4", "it-p5")
		cleanCategories(t, db, "it-list-shoes", "it-list-sandals")
	})

	shoes, err := cats.Save(ctx, &models.Category{Name: "IT Shoes", Slug: "it-list-shoes", Active: true})
	require.NoError(t, err)
	sandals, err := cats.Save(ctx, &models.Category{Name: "IT Sandals", Slug: "it-list-sandals", ParentID: &shoes.ID, Active: true})
	require.NoError(t, err)

	// Prices 4000 (excluded by the bound), 5000, 7000, 9000 and one
	// product without variants.
	fixtures := []struct {
		slug  string
		cat   int64
		price int64
	}{
		{"it-p1", shoes.ID, 4000},
		{"it-p2", sandals.ID, 9000},
		{"it-p3", shoes.ID, 5000},
		{"it-p4", sandals.ID, 7000},
		{"it-p5", shoes.ID, -1},
	}
	for _, f := range fixtures {
		p, err := products.Save(ctx, &models.Product{Title: f.slug, Slug: f.slug, PrimaryCategoryID: &f.cat, Active: true})
		require.NoError(t, err)
		if f.price >= 0 {
			_, err = products.SaveVariant(ctx, &models.Variant{ProductID: p.ID, Price: f.price, Active: true})
			require.NoError(t, err)
		}
	}

	scope, err := cats.Descendants(ctx, shoes.ID)
	require.NoError(t, err)

	minPrice := int64(5000)
	filter := models.ProductFilter{
		CategoryIDs: scope,
		Variant:     models.VariantFilter{MinPrice: &minPrice},
		Sort:        models.SortPriceAsc,
		Limit:       2,
	}
	rows, total, err := products.ListProducts(ctx, filter)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), total)
	require.Len(t, rows, 2)
	assert.Equal(t, "it-p3", rows[0].Slug)
	assert.Equal(t, "it-p4", rows[1].Slug)

	filter.Offset = 2
	rows, _, err = products.ListProducts(ctx, filter)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "it-p2", rows[0].Slug)

	// Without a variant facet the variant-less product is listed at 0.
	rows, total, err = products.ListProducts(ctx, models.ProductFilter{CategoryIDs: scope, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, uint64(5), total)
	assert.Equal(t, "it-p5", rows[4].Slug)
	assert.Equal(t, int64(0), rows[4].MinPrice)
}
