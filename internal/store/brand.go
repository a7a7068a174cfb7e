// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// BrandStore handles CRUD operations for brands.
type BrandStore struct {
	db *sql.DB
}

// NewBrandStore returns a new BrandStore.
func NewBrandStore(db *sql.DB) *BrandStore {
	return &BrandStore{db: db}
}

// List returns brands ordered by name. activeOnly hides disabled brands.
func (s *BrandStore) List(ctx context.Context, activeOnly bool) ([]models.Brand, error) {
	b := psql.Select("id", "name", "slug", "active").From("brands")
	if activeOnly {
		b = b.Where("active")
	}
	query, args, err := b.OrderBy("name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build list brands", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable("list brands", err)
	}
	defer rows.Close()

	items := []models.Brand{}
	for rows.Next() {
		var b models.Brand
		if err := rows.Scan(&b.ID, &b.Name, &b.Slug, &b.Active); err != nil {
			return nil, apperr.Unavailable("scan brand", err)
		}
		items = append(items, b)
	}
	return items, rows.Err()
}

// FindBySlug retrieves a brand by slug.
func (s *BrandStore) FindBySlug(ctx context.Context, slug string) (*models.Brand, error) {
	var b models.Brand
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, slug, active FROM brands WHERE slug = $1`, slug,
	).Scan(&b.ID, &b.Name, &b.Slug, &b.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Brand not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("find brand", err)
	}
	return &b, nil
}

// Save inserts or updates a brand.
func (s *BrandStore) Save(ctx context.Context, b *models.Brand) (*models.Brand, error) {
	var row *sql.Row
	if b.ID == 0 {
		row = s.db.QueryRowContext(ctx, `
			INSERT INTO brands (name, slug, active) VALUES ($1, $2, $3)
			RETURNING id, name, slug, active
		`, b.Name, b.Slug, b.Active)
	} else {
		row = s.db.QueryRowContext(ctx, `
			UPDATE brands SET name = $1, slug = $2, active = $3 WHERE id = $4
			RETURNING id, name, slug, active
		`, b.Name, b.Slug, b.Active, b.ID)
	}

	var out models.Brand
	err := row.Scan(&out.ID, &out.Name, &out.Slug, &out.Active)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("brand %d not found", b.ID)
	}
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("Slug already exists")
	}
	if err != nil {
		return nil, apperr.Unavailable("save brand", err)
	}
	return &out, nil
}

// Delete removes a brand. Products keep existing with no brand.
func (s *BrandStore) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM brands WHERE id = $1`, id); err != nil {
		return apperr.Unavailable("delete brand", err)
	}
	return nil
}
