// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// CategoryStore manages categories and their closure table.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

// CategoryFilter narrows List. The zero value lists every category.
type CategoryFilter struct {
	ActiveOnly bool
	GenderID   *int64
	ParentID   *int64
	RootsOnly  bool
	ExcludeID  *int64
}

var categoryColumns = []string{
	"c.id", "c.name", "c.slug", "c.parent_id", "c.gender_id",
	"c.image", "c.active", "c.created_at", "c.updated_at",
}

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.ParentID, &c.GenderID,
		&c.Image, &c.Active, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns categories matching the filter ordered by name, then id,
// so that tree children come out in a stable order.
func (s *CategoryStore) List(ctx context.Context, f CategoryFilter) ([]models.Category, error) {
	b := psql.Select(categoryColumns...).From("categories c")
	if f.ActiveOnly {
		b = b.Where("c.active")
	}
	if f.GenderID != nil {
		b = b.Where(sq.Eq{"c.gender_id": *f.GenderID})
	}
	if f.ParentID != nil {
		b = b.Where(sq.Eq{"c.parent_id": *f.ParentID})
	}
	if f.RootsOnly {
		b = b.Where(sq.Eq{"c.parent_id": nil})
	}
	if f.ExcludeID != nil {
		b = b.Where(sq.NotEq{"c.id": *f.ExcludeID})
	}
	query, args, err := b.OrderBy("c.name ASC", "c.id ASC").ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build list categories", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable("list categories", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, apperr.Unavailable("scan category", err)
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list categories", err)
	}
	return items, nil
}

// Children returns the active direct children of a category.
func (s *CategoryStore) Children(ctx context.Context, parentID int64) ([]models.Category, error) {
	return s.List(ctx, CategoryFilter{ActiveOnly: true, ParentID: &parentID})
}

// Roots returns the active root categories.
func (s *CategoryStore) Roots(ctx context.Context) ([]models.Category, error) {
	return s.List(ctx, CategoryFilter{ActiveOnly: true, RootsOnly: true})
}

// FindBySlug retrieves a category by its slug.
func (s *CategoryStore) FindBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return s.findOne(ctx, sq.Eq{"c.slug": slug}, "category %q not found", slug)
}

// FindByID retrieves a category by its id.
func (s *CategoryStore) FindByID(ctx context.Context, id int64) (*models.Category, error) {
	return s.findOne(ctx, sq.Eq{"c.id": id}, "category %d not found", id)
}

func (s *CategoryStore) findOne(ctx context.Context, pred sq.Eq, notFound string, key any) (*models.Category, error) {
	query, args, err := psql.Select(categoryColumns...).From("categories c").Where(pred).ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build find category", err)
	}
	c, err := scanCategory(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound(notFound, key)
	}
	if err != nil {
		return nil, apperr.Unavailable("find category", err)
	}
	return c, nil
}

// Descendants returns the ids of the category and all of its descendants
// from the closure table, nearest first. An id without closure rows is
// reported as not found.
func (s *CategoryStore) Descendants(ctx context.Context, id int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT descendant_id FROM category_closure
		WHERE ancestor_id = $1
		ORDER BY depth ASC, descendant_id ASC
	`, id)
	if err != nil {
		return nil, apperr.Unavailable("list category descendants", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var d int64
		if err := rows.Scan(&d); err != nil {
			return nil, apperr.Unavailable("scan category descendant", err)
		}
		ids = append(ids, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list category descendants", err)
	}
	if len(ids) == 0 {
		return nil, apperr.NotFound("category %d not found", id)
	}
	return ids, nil
}

// Ancestors returns the closure rows ending at id joined with the ancestor
// category, farthest ancestor first. The last entry is the category itself
// at depth 0.
func (s *CategoryStore) Ancestors(ctx context.Context, id int64) ([]models.CategoryAncestor, error) {
	query, args, err := psql.Select(append(categoryColumns, "cc.depth")...).
		From("category_closure cc").
		Join("categories c ON c.id = cc.ancestor_id").
		Where(sq.Eq{"cc.descendant_id": id}).
		OrderBy("cc.depth DESC").
		ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build category ancestors", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperr.Unavailable("list category ancestors", err)
	}
	defer rows.Close()

	var out []models.CategoryAncestor
	for rows.Next() {
		var a models.CategoryAncestor
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Slug, &a.ParentID, &a.GenderID,
			&a.Image, &a.Active, &a.CreatedAt, &a.UpdatedAt, &a.Depth,
		); err != nil {
			return nil, apperr.Unavailable("scan category ancestor", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list category ancestors", err)
	}
	if len(out) == 0 {
		return nil, apperr.NotFound("category %d not found", id)
	}
	return out, nil
}

// Closure returns the whole closure table.
func (s *CategoryStore) Closure(ctx context.Context) ([]models.CategoryClosure, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ancestor_id, descendant_id, depth FROM category_closure
		ORDER BY ancestor_id, depth, descendant_id
	`)
	if err != nil {
		return nil, apperr.Unavailable("list category closure", err)
	}
	defer rows.Close()

	var out []models.CategoryClosure
	for rows.Next() {
		var c models.CategoryClosure
		if err := rows.Scan(&c.AncestorID, &c.DescendantID, &c.Depth); err != nil {
			return nil, apperr.Unavailable("scan category closure", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// RebuildClosure regenerates the closure table from the parent graph.
func (s *CategoryStore) RebuildClosure(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `SELECT rebuild_category_closure()`); err != nil {
		return apperr.Unavailable("rebuild category closure", err)
	}
	return nil
}

// Save inserts the category when ID is zero, updates it otherwise, and
// rebuilds the closure table in the same transaction. A duplicate slug
// is reported as a conflict.
func (s *CategoryStore) Save(ctx context.Context, c *models.Category) (*models.Category, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable("begin save category", err)
	}
	defer tx.Rollback()

	if c.ID != 0 && c.ParentID != nil {
		var cyclic bool
		err := tx.QueryRowContext(ctx, `
			SELECT EXISTS (
				SELECT 1 FROM category_closure WHERE ancestor_id = $1 AND descendant_id = $2
			)
		`, c.ID, *c.ParentID).Scan(&cyclic)
		if err != nil {
			return nil, apperr.Unavailable("check category parent", err)
		}
		if cyclic {
			return nil, apperr.InvalidArgument("A category cannot be moved under its own descendant")
		}
	}

	var row *sql.Row
	if c.ID == 0 {
		row = tx.QueryRowContext(ctx, `
			INSERT INTO categories (name, slug, parent_id, gender_id, image, active)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id, name, slug, parent_id, gender_id, image, active, created_at, updated_at
		`, c.Name, c.Slug, c.ParentID, c.GenderID, c.Image, c.Active)
	} else {
		row = tx.QueryRowContext(ctx, `
			UPDATE categories SET
				name = $1, slug = $2, parent_id = $3, gender_id = $4,
				image = $5, active = $6, updated_at = NOW()
			WHERE id = $7
			RETURNING id, name, slug, parent_id, gender_id, image, active, created_at, updated_at
		`, c.Name, c.Slug, c.ParentID, c.GenderID, c.Image, c.Active, c.ID)
	}

	saved, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("category %d not found", c.ID)
	}
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("Slug already exists")
	}
	if err != nil {
		return nil, apperr.Unavailable("save category", err)
	}

	if _, err := tx.ExecContext(ctx, `SELECT rebuild_category_closure()`); err != nil {
		return nil, apperr.Unavailable("rebuild category closure", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, apperr.Unavailable("commit save category", err)
	}
	return saved, nil
}

// Delete removes a category. Children are re-parented to the root level
// (ON DELETE SET NULL) and the closure table is rebuilt.
func (s *CategoryStore) Delete(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Unavailable("begin delete category", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id); err != nil {
		return apperr.Unavailable("delete category", err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT rebuild_category_closure()`); err != nil {
		return apperr.Unavailable("rebuild category closure", err)
	}
	if err := tx.Commit(); err != nil {
		return apperr.Unavailable("commit delete category", err)
	}
	return nil
}

// GenderStore reads the gender grouping dimension.
type GenderStore struct {
	db *sql.DB
}

// NewGenderStore returns a new GenderStore.
func NewGenderStore(db *sql.DB) *GenderStore {
	return &GenderStore{db: db}
}

// FindByCode resolves a gender code such as "women".
func (s *GenderStore) FindByCode(ctx context.Context, code string) (*models.Gender, error) {
	var g models.Gender
	err := s.db.QueryRowContext(ctx,
		`SELECT id, code, name FROM genders WHERE code = $1`, code,
	).Scan(&g.ID, &g.Code, &g.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Gender not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("find gender", err)
	}
	return &g, nil
}

// List returns all genders ordered by id.
func (s *GenderStore) List(ctx context.Context) ([]models.Gender, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, code, name FROM genders ORDER BY id ASC`)
	if err != nil {
		return nil, apperr.Unavailable("list genders", err)
	}
	defer rows.Close()

	items := []models.Gender{}
	for rows.Next() {
		var g models.Gender
		if err := rows.Scan(&g.ID, &g.Code, &g.Name); err != nil {
			return nil, apperr.Unavailable("scan gender", err)
		}
		items = append(items, g)
	}
	return items, rows.Err()
}
