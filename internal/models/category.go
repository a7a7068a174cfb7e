// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "time"

// Category is a node of the catalog hierarchy. ParentID is nil for roots.
// GenderID is the optional grouping attribute (women, men, kids...).
type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	ParentID  *int64    `json:"parent_id"`
	GenderID  *int64    `json:"gender_id"`
	Image     *string   `json:"image"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}

// CategoryClosure is one row of the materialized transitive closure.
// Every category has a depth-0 row pointing at itself.
type CategoryClosure struct {
	AncestorID   int64 `json:"ancestor_id"`
	DescendantID int64 `json:"descendant_id"`
	Depth        int   `json:"depth"`
}

// Gender is the grouping dimension categories can belong to.
type Gender struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// CategoryAncestor is a category reached through the closure table
// together with its distance from the queried descendant.
type CategoryAncestor struct {
	Category
	Depth int `json:"depth"`
}
