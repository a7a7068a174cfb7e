// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"storefront/internal/cart"
	"storefront/internal/models"
)

// Validation limits for catalog, office and checkout fields.
const (
	maxNameLen        = 200
	maxSlugLen        = 200
	maxTitleLen       = 300
	maxDescriptionLen = 100_000
	maxColorLen       = 100
	maxSizeLen        = 50
	maxPhoneLen       = 40
	maxEmailLen       = 254
	maxAddressLen     = 500
	maxOrderItems     = 100
	maxItemQty        = cart.MaxQty
)

// checkoutCurrency is the only currency orders are accepted in.
const checkoutCurrency = "AOA"

// validateRequired checks a required text field and returns the first
// error found, or "".
func validateRequired(value, msg string, maxLen int) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return msg
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Sprintf("%s is too long (max %d characters)", fieldName(msg), maxLen)
	}
	return ""
}

// validateOptional checks the length of an optional text field.
func validateOptional(value *string, field string, maxLen int) string {
	if value != nil && utf8.RuneCountInString(*value) > maxLen {
		return fmt.Sprintf("%s is too long (max %d characters)", field, maxLen)
	}
	return ""
}

// fieldName extracts the field label of a "<Field> required" message.
func fieldName(msg string) string {
	msg = strings.TrimSuffix(msg, " is required")
	return strings.TrimSuffix(msg, " required")
}

// checkoutItem is one line of a place-order request.
type checkoutItem struct {
	ID    string  `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
	Slug  string  `json:"slug,omitempty"`
	Image *string `json:"image,omitempty"`
}

// checkoutRequest is the body of POST /checkout/place-order.
type checkoutRequest struct {
	Items  []checkoutItem `json:"items"`
	Totals struct {
		Total    float64 `json:"total"`
		Currency string  `json:"currency"`
	} `json:"totals"`
	Contact struct {
		Name  string  `json:"name"`
		Phone string  `json:"phone"`
		Email *string `json:"email"`
	} `json:"contact"`
	PickupOfficeID *int64 `json:"pickup_office_id"`
}

// isWhole reports whether f is a non-negative integer value.
func isWhole(f float64) bool {
	return f >= 0 && f == float64(int64(f))
}

// validateCheckout checks a place-order request and converts it into an
// order. It returns the first validation message found, or "".
func validateCheckout(req *checkoutRequest) (*models.Order, string) {
	if len(req.Items) == 0 {
		return nil, "Cart is empty"
	}
	if len(req.Items) > maxOrderItems {
		return nil, fmt.Sprintf("Too many items (max %d)", maxOrderItems)
	}
	name := strings.TrimSpace(req.Contact.Name)
	phone := strings.TrimSpace(req.Contact.Phone)
	if name == "" || phone == "" {
		return nil, "Name and phone are required"
	}
	if utf8.RuneCountInString(name) > maxNameLen || utf8.RuneCountInString(phone) > maxPhoneLen {
		return nil, "Name or phone is too long"
	}
	if msg := validateOptional(req.Contact.Email, "Email", maxEmailLen); msg != "" {
		return nil, msg
	}
	if !isWhole(req.Totals.Total) {
		return nil, "Invalid totals.total"
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Totals.Currency))
	if currency != "" && currency != checkoutCurrency {
		return nil, "Unsupported currency"
	}
	if req.PickupOfficeID != nil && *req.PickupOfficeID <= 0 {
		return nil, "Invalid pickup office"
	}

	o := &models.Order{
		Totals:         models.Totals{Total: int64(req.Totals.Total), Currency: checkoutCurrency},
		GuestContact:   models.Contact{Name: name, Phone: phone, Email: req.Contact.Email},
		PickupOfficeID: req.PickupOfficeID,
		Items:          make([]models.OrderItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		key, msg := checkoutKey(it.ID)
		if msg != "" {
			return nil, msg
		}
		if !isWhole(it.Qty) || it.Qty < 1 || it.Qty > maxItemQty {
			return nil, "Invalid qty"
		}
		if !isWhole(it.Price) {
			return nil, "Invalid price"
		}
		o.Items = append(o.Items, models.OrderItem{
			ProductID: key.ProductID,
			VariantID: key.VariantID,
			SizeID:    key.SizeID,
			UnitPrice: int64(it.Price),
			Qty:       int(it.Qty),
			Title:     it.Title,
			Slug:      it.Slug,
			Image:     it.Image,
		})
	}
	return o, ""
}

// checkoutKey parses a cart line id "product:variant[:size]" and names
// the first part that is invalid.
func checkoutKey(id string) (cart.Key, string) {
	parts := strings.Split(id, ":")
	labels := [...]string{"Invalid product id", "Invalid variant id", "Invalid size id"}
	for i, label := range labels {
		if i == 2 && len(parts) == 2 {
			break
		}
		if i >= len(parts) || !validID(parts[i]) {
			return cart.Key{}, label
		}
	}
	if len(parts) > len(labels) {
		return cart.Key{}, "Invalid size id"
	}
	k, err := cart.ParseKey(id)
	if err != nil {
		return cart.Key{}, "Invalid product id"
	}
	return k, ""
}

// validID reports whether s is a positive decimal id that fits in int64.
func validID(s string) bool {
	if s == "" || len(s) > 18 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return strings.TrimLeft(s, "0") != ""
}
