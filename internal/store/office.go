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

// OfficeStore handles pickup offices.
type OfficeStore struct {
	db *sql.DB
}

// NewOfficeStore returns a new OfficeStore.
func NewOfficeStore(db *sql.DB) *OfficeStore {
	return &OfficeStore{db: db}
}

var officeColumns = []string{
	"id", "slug", "name", "description", "address", "location_lat", "location_lng",
	"phone", "opening_hours", "active", "created_at",
}

func scanOffice(row scanner) (*models.Office, error) {
	var o models.Office
	var hours []byte
	if err := row.Scan(
		&o.ID, &o.Slug, &o.Name, &o.Description, &o.Address, &o.LocationLat, &o.LocationLng,
		&o.Phone, &hours, &o.Active, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(hours) > 0 {
		o.OpeningHours = hours
	}
	return &o, nil
}

// OfficeFilter narrows List. Query matches name, slug, address or phone.
type OfficeFilter struct {
	ActiveOnly bool
	Query      string
	Offset     uint64
	Limit      uint64
}

// List returns offices with the total count before pagination. Active
// listings are ordered by name, back-office listings newest first.
func (s *OfficeStore) List(ctx context.Context, f OfficeFilter) ([]models.Office, uint64, error) {
	b := psql.Select(officeColumns...).From("offices")
	if f.ActiveOnly {
		b = b.Where("active")
	}
	if f.Query != "" {
		p := containsPattern(f.Query)
		b = b.Where(sq.Or{
			sq.ILike{"name": p}, sq.ILike{"slug": p},
			sq.ILike{"address": p}, sq.ILike{"phone": p},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(b, "listing").ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build office count", err)
	}
	var total uint64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.Unavailable("count offices", err)
	}

	if f.ActiveOnly {
		b = b.OrderBy("name ASC", "id ASC")
	} else {
		b = b.OrderBy("created_at DESC", "id DESC")
	}
	if f.Limit > 0 {
		b = b.Offset(f.Offset).Limit(f.Limit)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build list offices", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Unavailable("list offices", err)
	}
	defer rows.Close()

	items := []models.Office{}
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, 0, apperr.Unavailable("scan office", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Unavailable("list offices", err)
	}
	return items, total, nil
}

// FindByID retrieves an office by id.
func (s *OfficeStore) FindByID(ctx context.Context, id int64) (*models.Office, error) {
	query, args, err := psql.Select(officeColumns...).From("offices").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build find office", err)
	}
	o, err := scanOffice(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Office not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("find office", err)
	}
	return o, nil
}

// Create inserts an office and returns its id.
func (s *OfficeStore) Create(ctx context.Context, o *models.Office) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO offices (slug, name, description, address, location_lat, location_lng, phone, opening_hours, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, o.Slug, o.Name, o.Description, o.Address, o.LocationLat, o.LocationLng, o.Phone,
		jsonArg(o.OpeningHours), o.Active,
	).Scan(&id)
	if isUniqueViolation(err) {
		return 0, apperr.Conflict("Slug already exists")
	}
	if err != nil {
		return 0, apperr.Unavailable("create office", err)
	}
	return id, nil
}

// Update applies a partial update. Keys of patch are column names; the
// caller is responsible for only passing known columns.
func (s *OfficeStore) Update(ctx context.Context, id int64, patch map[string]any) error {
	if len(patch) == 0 {
		return apperr.InvalidArgument("Nothing to update")
	}
	query, args, err := psql.Update("offices").SetMap(patch).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return apperr.Unavailable("build update office", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if isUniqueViolation(err) {
		return apperr.Conflict("Slug already exists")
	}
	if err != nil {
		return apperr.Unavailable("update office", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("Office not found")
	}
	return nil
}
