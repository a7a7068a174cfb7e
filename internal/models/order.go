// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderPlaced    OrderStatus = "PLACED"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderReady     OrderStatus = "READY"
	OrderCompleted OrderStatus = "COMPLETED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "UNPAID"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s string) bool {
	switch OrderStatus(s) {
	case OrderPlaced, OrderConfirmed, OrderReady, OrderCompleted, OrderCancelled:
		return true
	}
	return false
}

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s string) bool {
	switch PaymentStatus(s) {
	case PaymentUnpaid, PaymentPaid, PaymentRefunded:
		return true
	}
	return false
}

// Totals is the order amount stored as JSON on the order header.
type Totals struct {
	Total    int64  `json:"total"`
	Currency string `json:"currency"`
}

// Contact is the guest buyer's contact stored as JSON on the order header.
type Contact struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

// Order is an order header.
type Order struct {
	ID             int64         `json:"id"`
	Number         string        `json:"number"`
	Status         OrderStatus   `json:"status"`
	PaymentStatus  PaymentStatus `json:"payment_status"`
	Totals         Totals        `json:"totals"`
	GuestContact   Contact       `json:"guest_contact"`
	PickupOfficeID *int64        `json:"pickup_office_id"`
	PickupOffice   *string       `json:"pickup_office,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`

	Items []OrderItem `json:"items,omitempty"`
}

// OrderItem is one order line. TotalPrice is computed by the database.
type OrderItem struct {
	ID         int64  `json:"id"`
	OrderID    int64  `json:"-"`
	ProductID  int64  `json:"product_id"`
	VariantID  int64  `json:"product_variant_id"`
	SizeID     *int64 `json:"product_variant_size_id"`
	UnitPrice  int64  `json:"unit_price"`
	Qty        int    `json:"qty"`
	TotalPrice int64  `json:"total_price"`

	// Display fields joined from catalog tables on lookup.
	Title string  `json:"title,omitempty"`
	Slug  string  `json:"slug,omitempty"`
	Image *string `json:"image,omitempty"`
	Color *string `json:"color,omitempty"`
	Size  *string `json:"size,omitempty"`
}
