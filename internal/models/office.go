// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"time"
)

// Office is a pickup point where customers collect their orders.
// OpeningHours is free-form JSON, typically day -> [[open, close]].
type Office struct {
	ID           int64           `json:"id"`
	Slug         string          `json:"slug"`
	Name         string          `json:"name"`
	Description  *string         `json:"description"`
	Address      *string         `json:"address"`
	LocationLat  *float64        `json:"location_lat"`
	LocationLng  *float64        `json:"location_lng"`
	Phone        *string         `json:"phone"`
	OpeningHours json.RawMessage `json:"opening_hours"`
	Active       bool            `json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
}
