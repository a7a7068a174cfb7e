// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/slug"
	"storefront/internal/store"
)

// --- Orders ---

// Orders serves GET /admin/orders?q=&page=&limit=. q matches the order
// number or the guest phone.
func (a *Admin) Orders(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 20, 100)
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	items, total, err := a.orders.List(r.Context(), store.OrderFilter{
		Query:  q,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items, "total": total, "page": page, "limit": limit, "q": q,
	})
}

// orderStatusView is the response of an order status update.
type orderStatusView struct {
	Number        string               `json:"number"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
}

// UpdateOrder serves PATCH /admin/orders with body {number, status?,
// paymentStatus?}.
func (a *Admin) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Number        string  `json:"number"`
		Status        *string `json:"status"`
		PaymentStatus *string `json:"paymentStatus"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	number := strings.TrimSpace(req.Number)
	if number == "" {
		writeError(w, r, apperr.InvalidArgument("Order number required"))
		return
	}

	var status *models.OrderStatus
	if req.Status != nil {
		if !models.ValidOrderStatus(*req.Status) {
			writeError(w, r, apperr.InvalidArgument("Invalid status %q", *req.Status))
			return
		}
		s := models.OrderStatus(*req.Status)
		status = &s
	}
	var payment *models.PaymentStatus
	if req.PaymentStatus != nil {
		if !models.ValidPaymentStatus(*req.PaymentStatus) {
			writeError(w, r, apperr.InvalidArgument("Invalid paymentStatus %q", *req.PaymentStatus))
			return
		}
		p := models.PaymentStatus(*req.PaymentStatus)
		payment = &p
	}

	o, err := a.orders.UpdateStatus(r.Context(), number, status, payment)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orderStatusView{
		Number:        o.Number,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		CreatedAt:     o.CreatedAt,
	})
}

// --- Offices ---

// Offices serves GET /admin/offices?q=&page=&limit=.
func (a *Admin) Offices(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 20, 100)
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	items, total, err := a.offices.List(r.Context(), store.OfficeFilter{
		Query:  q,
		Offset: (page - 1) * limit,
		Limit:  limit,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items, "total": total, "page": page, "limit": limit, "q": q,
	})
}

// Office serves GET /admin/offices/{id}.
func (a *Admin) Office(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	o, err := a.offices.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// officeRequest is the body of POST /admin/offices.
type officeRequest struct {
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Address      *string         `json:"address"`
	LocationLat  *float64        `json:"locationLat"`
	LocationLng  *float64        `json:"locationLng"`
	Phone        *string         `json:"phone"`
	OpeningHours json.RawMessage `json:"openingHours"`
	Active       *bool           `json:"active"`
}

// validateOffice checks the fields shared by create and update.
func validateOffice(o *models.Office) string {
	if msg := validateRequired(o.Slug, "slug required", maxSlugLen); msg != "" {
		return msg
	}
	if !slug.Valid(o.Slug) {
		return "slug must be lowercase letters, digits and hyphens"
	}
	if msg := validateRequired(o.Name, "name required", maxNameLen); msg != "" {
		return msg
	}
	if msg := validateOptional(o.Address, "address", maxAddressLen); msg != "" {
		return msg
	}
	if msg := validateOptional(o.Phone, "phone", maxPhoneLen); msg != "" {
		return msg
	}
	if o.LocationLat != nil && (*o.LocationLat < -90 || *o.LocationLat > 90) {
		return "locationLat out of range"
	}
	if o.LocationLng != nil && (*o.LocationLng < -180 || *o.LocationLng > 180) {
		return "locationLng out of range"
	}
	if len(o.OpeningHours) > 0 && !json.Valid(o.OpeningHours) {
		return "openingHours must be JSON"
	}
	return ""
}

// CreateOffice serves POST /admin/offices.
func (a *Admin) CreateOffice(w http.ResponseWriter, r *http.Request) {
	var req officeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	o := &models.Office{
		Slug:         strings.TrimSpace(req.Slug),
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Address:      req.Address,
		LocationLat:  req.LocationLat,
		LocationLng:  req.LocationLng,
		Phone:        req.Phone,
		OpeningHours: nullJSON(req.OpeningHours),
		Active:       req.Active == nil || *req.Active,
	}
	if msg := validateOffice(o); msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}

	id, err := a.offices.Create(r.Context(), o)
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// officeColumns maps the JSON fields an office update may carry to their
// column names.
var officeColumns = map[string]string{
	"slug":         "slug",
	"name":         "name",
	"description":  "description",
	"address":      "address",
	"locationLat":  "location_lat",
	"locationLng":  "location_lng",
	"phone":        "phone",
	"openingHours": "opening_hours",
	"active":       "active",
}

// UpdateOffice serves PATCH /admin/offices/{id}: a partial update of the
// fields present in the body. Unknown fields are ignored.
func (a *Admin) UpdateOffice(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		writeError(w, r, err)
		return
	}
	patch, err := officePatch(raw)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if len(patch) == 0 {
		writeError(w, r, apperr.InvalidArgument("Nothing to update"))
		return
	}
	if err := a.offices.Update(r.Context(), id, patch); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

// officePatch converts the fields of an update body into column values,
// validating each the way CreateOffice does.
func officePatch(raw map[string]json.RawMessage) (map[string]any, error) {
	// Start from a valid office and overlay the patch so validateOffice
	// only reports on fields that are present.
	probe := &models.Office{Slug: "x", Name: "x"}
	patch := map[string]any{}
	for field, value := range raw {
		col, ok := officeColumns[field]
		if !ok {
			continue
		}
		var err error
		switch field {
		case "slug", "name":
			var s string
			if err = json.Unmarshal(value, &s); err == nil {
				s = strings.TrimSpace(s)
				if field == "slug" {
					probe.Slug = s
				} else {
					probe.Name = s
				}
				patch[col] = s
			}
		case "description", "address", "phone":
			var s *string
			if err = json.Unmarshal(value, &s); err == nil {
				switch field {
				case "address":
					probe.Address = s
				case "phone":
					probe.Phone = s
				}
				patch[col] = s
			}
		case "locationLat", "locationLng":
			var f *float64
			if err = json.Unmarshal(value, &f); err == nil {
				if field == "locationLat" {
					probe.LocationLat = f
				} else {
					probe.LocationLng = f
				}
				patch[col] = f
			}
		case "openingHours":
			hours := nullJSON(value)
			probe.OpeningHours = hours
			if hours == nil {
				patch[col] = nil
			} else {
				patch[col] = string(hours)
			}
		case "active":
			var b bool
			if err = json.Unmarshal(value, &b); err == nil {
				patch[col] = b
			}
		}
		if err != nil {
			return nil, apperr.InvalidArgument("Invalid %s", field)
		}
	}
	if msg := validateOffice(probe); msg != "" {
		return nil, apperr.InvalidArgument("%s", msg)
	}
	return patch, nil
}

// nullJSON maps an absent or JSON null value to nil.
func nullJSON(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return trimmed
}
