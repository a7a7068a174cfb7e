// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

func TestNewOrderNumberFormat(t *testing.T) {
	at := time.Date(2026, 3, 7, 12, 0, 0, 0, time.UTC)
	re := regexp.MustCompile(`^260307-\d{5}$`)
	for range 20 {
		n := NewOrderNumber(at)
		assert.Regexp(t, re, n)
	}
}

func TestOrderStoreCreateRollsBackOnItemFailure(t *testing.T) {
	db, mock := newMock(t)
	s := NewOrderStore(db)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO orders`).
		WithArgs("260307-00001", "PLACED", "UNPAID", `{"total":9000,"currency":"AOA"}`, `{"name":"Ana","phone":"923000000"}`, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), now))
	mock.ExpectExec(`INSERT INTO order_items \(order_id,product_id,product_variant_id,product_variant_size_id,unit_price,qty\) VALUES \(\$1,\$2,\$3,\$4,\$5,\$6\)`).
		WillReturnError(errors.New("violates foreign key constraint"))
	mock.ExpectRollback()

	_, err := s.Create(context.Background(), &models.Order{
		Number:       "260307-00001",
		Totals:       models.Totals{Total: 9000, Currency: "AOA"},
		GuestContact: models.Contact{Name: "Ana", Phone: "923000000"},
		Items:        []models.OrderItem{{ProductID: 2, VariantID: 3, UnitPrice: 9000, Qty: 1}},
	})
	assert.ErrorIs(t, err, apperr.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "foreign key")
}

func TestOrderStoreCreateRejectsEmpty(t *testing.T) {
	db, _ := newMock(t)
	s := NewOrderStore(db)

	_, err := s.Create(context.Background(), &models.Order{Number: "x"})
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestOrderStoreUpdateStatusNothingToUpdate(t *testing.T) {
	db, _ := newMock(t)
	s := NewOrderStore(db)

	_, err := s.UpdateStatus(context.Background(), "260307-00001", nil, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestOrderStoreUpdateStatusUnknown(t *testing.T) {
	db, mock := newMock(t)
	s := NewOrderStore(db)
	status := models.OrderReady

	mock.ExpectQuery(`UPDATE orders SET status = \$1 WHERE number = \$2 RETURNING`).
		WithArgs("READY", "nope").
		WillReturnRows(sqlmock.NewRows([]string{"id", "number", "status", "payment_status", "created_at"}))

	_, err := s.UpdateStatus(context.Background(), "nope", &status, nil)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOrderStoreListSearch(t *testing.T) {
	db, mock := newMock(t)
	s := NewOrderStore(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM .* WHERE \(o\.number ILIKE \$1 OR o\.guest_contact->>'phone' ILIKE \$2\)\) AS listing`).
		WithArgs("%9230%", "%9230%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY o\.created_at DESC, o\.id DESC LIMIT 20 OFFSET 0`).
		WithArgs("%9230%", "%9230%").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "number", "status", "payment_status", "totals", "guest_contact", "pickup_office_id", "name", "created_at",
		}).AddRow(int64(1), "260307-00001", "PLACED", "UNPAID",
			[]byte(`{"total":9000,"currency":"AOA"}`), []byte(`{"name":"Ana","phone":"923000000"}`),
			nil, nil, time.Now()))

	items, total, err := s.List(context.Background(), OrderFilter{Query: "9230", Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(9000), items[0].Totals.Total)
	assert.Equal(t, "923000000", items[0].GuestContact.Phone)
	assert.Nil(t, items[0].PickupOffice)
}

func TestOrderStoreIntegration(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	orders := NewOrderStore(db)
	products := NewProductStore(db)

	number := NewOrderNumber(time.Now())
	t.Cleanup(func() {
		cleanOrders(t, db, number)
		cleanProducts(t, db, "it-order-product")
	})

	p, err := products.Save(ctx, &models.Product{Title: "IT Order", Slug: "it-order-product", Active: true})
	require.NoError(t, err)
	color := "black"
	v, err := products.SaveVariant(ctx, &models.Variant{ProductID: p.ID, Color: &color, Price: 4500, Active: true})
	require.NoError(t, err)
	sz, err := products.SaveSize(ctx, &models.VariantSize{VariantID: v.ID, Size: "M"})
	require.NoError(t, err)
	_, err = products.AddImage(ctx, v.ID, "https://cdn.example/a.jpg")
	require.NoError(t, err)

	_, err = orders.Create(ctx, &models.Order{
		Number:       number,
		Totals:       models.Totals{Total: 9000, Currency: "AOA"},
		GuestContact: models.Contact{Name: "Ana", Phone: "923000000"},
		Items: []models.OrderItem{
			{ProductID: p.ID, VariantID: v.ID, SizeID: &sz.ID, UnitPrice: 4500, Qty: 2},
		},
	})
	require.NoError(t, err)

	got, err := orders.FindByNumber(ctx, number)
	require.NoError(t, err)
	assert.Equal(t, models.OrderPlaced, got.Status)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(9000), got.Items[0].TotalPrice)
	assert.Equal(t, "IT Order", got.Items[0].Title)
	require.NotNil(t, got.Items[0].Size)
	assert.Equal(t, "M", *got.Items[0].Size)
	require.NotNil(t, got.Items[0].Image)
	assert.Equal(t, "https://cdn.example/a.jpg", *got.Items[0].Image)

	paid := models.PaymentPaid
	updated, err := orders.UpdateStatus(ctx, number, nil, &paid)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPaid, updated.PaymentStatus)
	assert.Equal(t, models.OrderPlaced, updated.Status)
}
