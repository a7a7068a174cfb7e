// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// ProductStore handles products, their variants, images and sizes.
type ProductStore struct {
	db *sql.DB
}

// NewProductStore returns a new ProductStore.
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// qualifyingVariants selects, per product, the price range over the active
// variants that satisfy every variant-level predicate of f. It is built
// with '?' placeholders so it can be embedded in a Dollar-format query.
func qualifyingVariants(f models.VariantFilter) (string, []any, error) {
	b := sq.Select("v.product_id", "MIN(v.price) AS min_price", "MAX(v.price) AS max_price").
		From("product_variants v").
		Where("v.active")
	if f.Color != nil {
		b = b.Where(sq.Eq{"v.color": *f.Color})
	}
	if f.MinPrice != nil {
		b = b.Where(sq.GtOrEq{"v.price": *f.MinPrice})
	}
	if f.MaxPrice != nil {
		b = b.Where(sq.LtOrEq{"v.price": *f.MaxPrice})
	}
	if f.Size != nil {
		b = b.Where("EXISTS (SELECT 1 FROM product_variant_sizes s WHERE s.variant_id = v.id AND s.size = ?)", *f.Size)
	}
	return b.GroupBy("v.product_id").ToSql()
}

// listingBase builds the filtered product query without ordering or
// pagination. Products need a qualifying variant only when a variant-level
// predicate is set; otherwise products without variants list at price 0.
func listingBase(f models.ProductFilter) (sq.SelectBuilder, error) {
	inner, innerArgs, err := qualifyingVariants(f.Variant)
	if err != nil {
		return sq.SelectBuilder{}, err
	}

	b := psql.Select(
		"p.id", "p.title", "p.slug", "p.brand_id", "b.name AS brand_name", "p.primary_category_id",
		"COALESCE(q.min_price, 0) AS min_price", "COALESCE(q.max_price, 0) AS max_price",
	).
		From("products p").
		LeftJoin("brands b ON b.id = p.brand_id")

	join := "(" + inner + ") q ON q.product_id = p.id"
	if f.Variant.IsZero() {
		b = b.LeftJoin(join, innerArgs...)
	} else {
		b = b.Join(join, innerArgs...)
	}

	b = b.Where("p.active")
	if f.CategoryIDs != nil {
		b = b.Where(sq.Eq{"p.primary_category_id": f.CategoryIDs})
	}
	if f.Text != "" {
		b = b.Where(sq.ILike{"p.title": containsPattern(f.Text)})
	}
	if f.BrandID != nil {
		b = b.Where(sq.Eq{"p.brand_id": *f.BrandID})
	}
	if f.ExcludeID != nil {
		b = b.Where(sq.NotEq{"p.id": *f.ExcludeID})
	}
	return b, nil
}

// orderBy returns the ORDER BY terms for a sort key. Every ordering ends
// on the product id so pages never overlap.
func orderBy(s models.ProductSort) []string {
	switch s {
	case models.SortPriceAsc:
		return []string{"min_price ASC", "p.id ASC"}
	case models.SortPriceDesc:
		return []string{"max_price DESC", "p.id ASC"}
	case models.SortNew:
		return []string{"p.id DESC"}
	default:
		return []string{"p.id ASC"}
	}
}

// ListProducts returns one page of qualifying products and the total number
// of qualifying products before pagination.
func (s *ProductStore) ListProducts(ctx context.Context, f models.ProductFilter) ([]models.ProductRow, uint64, error) {
	base, err := listingBase(f)
	if err != nil {
		return nil, 0, apperr.Unavailable("build product listing", err)
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(base, "listing").ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build product count", err)
	}
	var total uint64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.Unavailable("count products", err)
	}
	if total == 0 || f.Offset >= total {
		return []models.ProductRow{}, total, nil
	}

	page := base.OrderBy(orderBy(f.Sort)...).Offset(f.Offset)
	if f.Limit > 0 {
		page = page.Limit(f.Limit)
	}
	query, args, err := page.ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build product listing", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Unavailable("list products", err)
	}
	defer rows.Close()

	items := []models.ProductRow{}
	for rows.Next() {
		var r models.ProductRow
		if err := rows.Scan(
			&r.ID, &r.Title, &r.Slug, &r.BrandID, &r.BrandName, &r.PrimaryCategoryID,
			&r.MinPrice, &r.MaxPrice,
		); err != nil {
			return nil, 0, apperr.Unavailable("scan product", err)
		}
		items = append(items, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Unavailable("list products", err)
	}
	return items, total, nil
}

// VariantsFor loads the variants of the given products with their images
// and sizes. Variants are ordered by id, images by position then id and
// sizes by id. Images and Sizes are never nil.
func (s *ProductStore) VariantsFor(ctx context.Context, productIDs []int64, activeOnly bool) (map[int64][]models.Variant, error) {
	out := make(map[int64][]models.Variant, len(productIDs))
	if len(productIDs) == 0 {
		return out, nil
	}

	vb := psql.Select("id", "product_id", "color", "price", "active").
		From("product_variants").
		Where(sq.Eq{"product_id": productIDs})
	if activeOnly {
		vb = vb.Where("active")
	}
	query, args, err := vb.OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build variants", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable("list variants", err)
	}
	var variants []models.Variant
	for rows.Next() {
		v := models.Variant{Images: []models.VariantImage{}, Sizes: []models.VariantSize{}}
		if err := rows.Scan(&v.ID, &v.ProductID, &v.Color, &v.Price, &v.Active); err != nil {
			rows.Close()
			return nil, apperr.Unavailable("scan variant", err)
		}
		variants = append(variants, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list variants", err)
	}
	if len(variants) == 0 {
		return out, nil
	}

	ids := make([]int64, len(variants))
	pos := make(map[int64]int, len(variants))
	for i, v := range variants {
		ids[i] = v.ID
		pos[v.ID] = i
	}

	if err := s.loadImages(ctx, ids, func(img models.VariantImage) {
		v := &variants[pos[img.VariantID]]
		v.Images = append(v.Images, img)
	}); err != nil {
		return nil, err
	}
	if err := s.loadSizes(ctx, ids, func(sz models.VariantSize) {
		v := &variants[pos[sz.VariantID]]
		v.Sizes = append(v.Sizes, sz)
	}); err != nil {
		return nil, err
	}

	for _, v := range variants {
		out[v.ProductID] = append(out[v.ProductID], v)
	}
	return out, nil
}

func (s *ProductStore) loadImages(ctx context.Context, variantIDs []int64, add func(models.VariantImage)) error {
	query, args, err := psql.Select("id", "variant_id", "url", "position").
		From("product_variant_images").
		Where(sq.Eq{"variant_id": variantIDs}).
		OrderBy("position ASC", "id ASC").
		ToSql()
	if err != nil {
		return apperr.Unavailable("build variant images", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return apperr.Unavailable("list variant images", err)
	}
	defer rows.Close()
	for rows.Next() {
		var img models.VariantImage
		if err := rows.Scan(&img.ID, &img.VariantID, &img.URL, &img.Position); err != nil {
			return apperr.Unavailable("scan variant image", err)
		}
		add(img)
	}
	if err := rows.Err(); err != nil {
		return apperr.Unavailable("list variant images", err)
	}
	return nil
}

func (s *ProductStore) loadSizes(ctx context.Context, variantIDs []int64, add func(models.VariantSize)) error {
	query, args, err := psql.Select("id", "variant_id", "size", "stock").
		From("product_variant_sizes").
		Where(sq.Eq{"variant_id": variantIDs}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return apperr.Unavailable("build variant sizes", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return apperr.Unavailable("list variant sizes", err)
	}
	defer rows.Close()
	for rows.Next() {
		var sz models.VariantSize
		if err := rows.Scan(&sz.ID, &sz.VariantID, &sz.Size, &sz.Stock); err != nil {
			return apperr.Unavailable("scan variant size", err)
		}
		add(sz)
	}
	if err := rows.Err(); err != nil {
		return apperr.Unavailable("list variant sizes", err)
	}
	return nil
}

var productColumns = []string{
	"p.id", "p.title", "p.slug", "p.description", "p.brand_id", "p.primary_category_id",
	"p.active", "p.created_at", "b.name",
}

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Description, &p.BrandID, &p.PrimaryCategoryID,
		&p.Active, &p.CreatedAt, &p.BrandName,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// FindBySlug returns a product with its brand name and variants. With
// activeOnly set, inactive products are not found and inactive variants
// are omitted.
func (s *ProductStore) FindBySlug(ctx context.Context, slug string, activeOnly bool) (*models.Product, error) {
	b := psql.Select(productColumns...).
		From("products p").
		LeftJoin("brands b ON b.id = p.brand_id").
		Where(sq.Eq{"p.slug": slug})
	if activeOnly {
		b = b.Where("p.active")
	}
	return s.findOne(ctx, b, activeOnly, "Product not found")
}

// FindByID returns a product with all of its variants.
func (s *ProductStore) FindByID(ctx context.Context, id int64) (*models.Product, error) {
	b := psql.Select(productColumns...).
		From("products p").
		LeftJoin("brands b ON b.id = p.brand_id").
		Where(sq.Eq{"p.id": id})
	return s.findOne(ctx, b, false, "Product not found")
}

func (s *ProductStore) findOne(ctx context.Context, b sq.SelectBuilder, activeOnly bool, notFound string) (*models.Product, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build find product", err)
	}
	p, err := scanProduct(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("%s", notFound)
	}
	if err != nil {
		return nil, apperr.Unavailable("find product", err)
	}

	variants, err := s.VariantsFor(ctx, []int64{p.ID}, activeOnly)
	if err != nil {
		return nil, err
	}
	p.Variants = variants[p.ID]
	if p.Variants == nil {
		p.Variants = []models.Variant{}
	}
	return p, nil
}

// AdminProductFilter narrows the back-office product list.
type AdminProductFilter struct {
	Text       string
	CategoryID *int64
	BrandID    *int64
	Offset     uint64
	Limit      uint64
}

// AdminList returns products of any state, newest first, with the total
// count before pagination.
func (s *ProductStore) AdminList(ctx context.Context, f AdminProductFilter) ([]models.Product, uint64, error) {
	b := psql.Select(productColumns...).
		From("products p").
		LeftJoin("brands b ON b.id = p.brand_id")
	if f.Text != "" {
		b = b.Where(sq.ILike{"p.title": containsPattern(f.Text)})
	}
	if f.CategoryID != nil {
		b = b.Where(sq.Eq{"p.primary_category_id": *f.CategoryID})
	}
	if f.BrandID != nil {
		b = b.Where(sq.Eq{"p.brand_id": *f.BrandID})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(b, "listing").ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build product count", err)
	}
	var total uint64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.Unavailable("count products", err)
	}

	query, args, err := b.OrderBy("p.id DESC").Offset(f.Offset).Limit(f.Limit).ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build admin products", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Unavailable("list products", err)
	}
	defer rows.Close()

	items := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, apperr.Unavailable("scan product", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Unavailable("list products", err)
	}
	return items, total, nil
}

// Save inserts the product when ID is zero and updates it otherwise.
func (s *ProductStore) Save(ctx context.Context, p *models.Product) (*models.Product, error) {
	var err error
	if p.ID == 0 {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO products (title, slug, description, brand_id, primary_category_id, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id
		`, p.Title, p.Slug, p.Description, p.BrandID, p.PrimaryCategoryID, p.Active).Scan(&p.ID)
	} else {
		err = s.db.QueryRowContext(ctx, `
			UPDATE products SET
				title = $1, slug = $2, description = $3, brand_id = $4,
				primary_category_id = $5, active = $6
			WHERE id = $7
			RETURNING id
		`, p.Title, p.Slug, p.Description, p.BrandID, p.PrimaryCategoryID, p.Active, p.ID).Scan(&p.ID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Product not found")
	}
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("Slug already exists")
	}
	if err != nil {
		return nil, apperr.Unavailable("save product", err)
	}
	return s.FindByID(ctx, p.ID)
}

// SaveVariant inserts or updates a variant.
func (s *ProductStore) SaveVariant(ctx context.Context, v *models.Variant) (*models.Variant, error) {
	var err error
	if v.ID == 0 {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO product_variants (product_id, color, price, active)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, v.ProductID, v.Color, v.Price, v.Active).Scan(&v.ID)
	} else {
		err = s.db.QueryRowContext(ctx, `
			UPDATE product_variants SET color = $1, price = $2, active = $3
			WHERE id = $4
			RETURNING product_id
		`, v.Color, v.Price, v.Active, v.ID).Scan(&v.ProductID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Variant not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("save variant", err)
	}
	if v.Images == nil {
		v.Images = []models.VariantImage{}
	}
	if v.Sizes == nil {
		v.Sizes = []models.VariantSize{}
	}
	return v, nil
}

// DeleteVariant removes a variant with its images and sizes.
func (s *ProductStore) DeleteVariant(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM product_variants WHERE id = $1`, id); err != nil {
		return apperr.Unavailable("delete variant", err)
	}
	return nil
}

// SaveSize inserts or updates a variant size.
func (s *ProductStore) SaveSize(ctx context.Context, sz *models.VariantSize) (*models.VariantSize, error) {
	var err error
	if sz.ID == 0 {
		err = s.db.QueryRowContext(ctx, `
			INSERT INTO product_variant_sizes (variant_id, size, stock)
			VALUES ($1, $2, $3)
			RETURNING id
		`, sz.VariantID, sz.Size, sz.Stock).Scan(&sz.ID)
	} else {
		err = s.db.QueryRowContext(ctx, `
			UPDATE product_variant_sizes SET size = $1, stock = $2
			WHERE id = $3
			RETURNING variant_id
		`, sz.Size, sz.Stock, sz.ID).Scan(&sz.VariantID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Size not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("save size", err)
	}
	return sz, nil
}

// AddImage appends an image after the variant's last position.
func (s *ProductStore) AddImage(ctx context.Context, variantID int64, url string) (*models.VariantImage, error) {
	img := &models.VariantImage{VariantID: variantID, URL: url}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO product_variant_images (variant_id, url, position)
		SELECT $1, $2, COALESCE(MAX(position) + 1, 0)
		FROM product_variant_images WHERE variant_id = $1
		RETURNING id, position
	`, variantID, url).Scan(&img.ID, &img.Position)
	if err != nil {
		return nil, apperr.Unavailable("add variant image", err)
	}
	return img, nil
}

// ProductSlug is the sitemap view of a product.
type ProductSlug struct {
	Slug      string
	CreatedAt time.Time
}

// Slugs returns the slugs of all active products ordered by id.
func (s *ProductStore) Slugs(ctx context.Context) ([]ProductSlug, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug, created_at FROM products WHERE active ORDER BY id ASC`)
	if err != nil {
		return nil, apperr.Unavailable("list product slugs", err)
	}
	defer rows.Close()

	var out []ProductSlug
	for rows.Next() {
		var p ProductSlug
		if err := rows.Scan(&p.Slug, &p.CreatedAt); err != nil {
			return nil, apperr.Unavailable("scan product slug", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
