// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	sq "github.com/Masterminds/squirrel"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// OrderStore persists orders and their items.
type OrderStore struct {
	db *sql.DB
}

// NewOrderStore returns a new OrderStore.
func NewOrderStore(db *sql.DB) *OrderStore {
	return &OrderStore{db: db}
}

// NewOrderNumber formats an order number as YYMMDD-NNNNN.
func NewOrderNumber(now time.Time) string {
	return fmt.Sprintf("%s-%05d", now.UTC().Format("060102"), rand.IntN(100000))
}

// Create inserts the order header and its items in one transaction. If any
// item cannot be inserted nothing is kept. A duplicate number is reported
// as a conflict so the caller can retry with a fresh one.
func (s *OrderStore) Create(ctx context.Context, o *models.Order) (*models.Order, error) {
	if len(o.Items) == 0 {
		return nil, apperr.InvalidArgument("Cart is empty")
	}
	totals, err := json.Marshal(o.Totals)
	if err != nil {
		return nil, fmt.Errorf("marshal totals: %w", err)
	}
	contact, err := json.Marshal(o.GuestContact)
	if err != nil {
		return nil, fmt.Errorf("marshal contact: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperr.Unavailable("begin create order", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (number, status, payment_status, totals, guest_contact, pickup_office_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, o.Number, models.OrderPlaced, models.PaymentUnpaid, string(totals), string(contact), o.PickupOfficeID,
	).Scan(&o.ID, &o.CreatedAt)
	if isUniqueViolation(err) {
		return nil, apperr.Conflict("Order number already exists")
	}
	if err != nil {
		return nil, apperr.Unavailable("create order", err)
	}

	ins := psql.Insert("order_items").Columns(
		"order_id", "product_id", "product_variant_id", "product_variant_size_id", "unit_price", "qty",
	)
	for _, it := range o.Items {
		ins = ins.Values(o.ID, it.ProductID, it.VariantID, it.SizeID, it.UnitPrice, it.Qty)
	}
	query, args, err := ins.ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build order items", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, apperr.Unavailable("create order items", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperr.Unavailable("commit create order", err)
	}
	o.Status = models.OrderPlaced
	o.PaymentStatus = models.PaymentUnpaid
	return o, nil
}

var orderColumns = []string{
	"o.id", "o.number", "o.status", "o.payment_status", "o.totals", "o.guest_contact",
	"o.pickup_office_id", "f.name", "o.created_at",
}

func scanOrder(row scanner) (*models.Order, error) {
	var o models.Order
	var totals, contact []byte
	if err := row.Scan(
		&o.ID, &o.Number, &o.Status, &o.PaymentStatus, &totals, &contact,
		&o.PickupOfficeID, &o.PickupOffice, &o.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(totals, &o.Totals); err != nil {
		return nil, fmt.Errorf("decode totals: %w", err)
	}
	if err := json.Unmarshal(contact, &o.GuestContact); err != nil {
		return nil, fmt.Errorf("decode contact: %w", err)
	}
	return &o, nil
}

// FindByNumber returns an order with its items and their display fields.
func (s *OrderStore) FindByNumber(ctx context.Context, number string) (*models.Order, error) {
	query, args, err := psql.Select(orderColumns...).
		From("orders o").
		LeftJoin("offices f ON f.id = o.pickup_office_id").
		Where(sq.Eq{"o.number": number}).
		ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build find order", err)
	}
	o, err := scanOrder(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("find order", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT oi.id, oi.product_id, oi.product_variant_id, oi.product_variant_size_id,
			oi.unit_price, oi.qty, oi.total_price,
			p.title, p.slug, v.color, sz.size,
			(SELECT i.url FROM product_variant_images i
			 WHERE i.variant_id = oi.product_variant_id
			 ORDER BY i.position ASC, i.id ASC LIMIT 1)
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		JOIN product_variants v ON v.id = oi.product_variant_id
		LEFT JOIN product_variant_sizes sz ON sz.id = oi.product_variant_size_id
		WHERE oi.order_id = $1
		ORDER BY oi.id ASC
	`, o.ID)
	if err != nil {
		return nil, apperr.Unavailable("list order items", err)
	}
	defer rows.Close()

	o.Items = []models.OrderItem{}
	for rows.Next() {
		it := models.OrderItem{OrderID: o.ID}
		if err := rows.Scan(
			&it.ID, &it.ProductID, &it.VariantID, &it.SizeID,
			&it.UnitPrice, &it.Qty, &it.TotalPrice,
			&it.Title, &it.Slug, &it.Color, &it.Size, &it.Image,
		); err != nil {
			return nil, apperr.Unavailable("scan order item", err)
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Unavailable("list order items", err)
	}
	return o, nil
}

// OrderFilter narrows the back-office order list. Query matches the order
// number or the guest phone, case-insensitively.
type OrderFilter struct {
	Query  string
	Offset uint64
	Limit  uint64
}

// List returns orders newest first with the total count before pagination.
func (s *OrderStore) List(ctx context.Context, f OrderFilter) ([]models.Order, uint64, error) {
	b := psql.Select(orderColumns...).
		From("orders o").
		LeftJoin("offices f ON f.id = o.pickup_office_id")
	if f.Query != "" {
		pattern := containsPattern(f.Query)
		b = b.Where(sq.Or{
			sq.ILike{"o.number": pattern},
			sq.ILike{"o.guest_contact->>'phone'": pattern},
		})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").FromSelect(b, "listing").ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build order count", err)
	}
	var total uint64
	if err := s.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, apperr.Unavailable("count orders", err)
	}

	query, args, err := b.OrderBy("o.created_at DESC", "o.id DESC").Offset(f.Offset).Limit(f.Limit).ToSql()
	if err != nil {
		return nil, 0, apperr.Unavailable("build list orders", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, apperr.Unavailable("list orders", err)
	}
	defer rows.Close()

	items := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, apperr.Unavailable("scan order", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperr.Unavailable("list orders", err)
	}
	return items, total, nil
}

// UpdateStatus sets the fulfilment and/or payment status of an order.
// At least one of the two must be given.
func (s *OrderStore) UpdateStatus(ctx context.Context, number string, status *models.OrderStatus, payment *models.PaymentStatus) (*models.Order, error) {
	set := map[string]any{}
	if status != nil {
		set["status"] = string(*status)
	}
	if payment != nil {
		set["payment_status"] = string(*payment)
	}
	if len(set) == 0 {
		return nil, apperr.InvalidArgument("Nothing to update")
	}

	query, args, err := psql.Update("orders").
		SetMap(set).
		Where(sq.Eq{"number": number}).
		Suffix("RETURNING id, number, status, payment_status, created_at").
		ToSql()
	if err != nil {
		return nil, apperr.Unavailable("build update order", err)
	}

	var o models.Order
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&o.ID, &o.Number, &o.Status, &o.PaymentStatus, &o.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperr.Unavailable("update order", err)
	}
	return &o, nil
}
