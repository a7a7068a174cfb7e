// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog is the storefront query engine: it turns flat category
// rows into trees, resolves category scope through the adjacency list or
// the closure table, and runs the faceted, paginated product listing.
package catalog

import (
	"storefront/internal/apperr"
	"storefront/internal/models"
)

// Node is a category with its children, as returned by BuildTree.
type Node struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Slug     string  `json:"slug"`
	ParentID *int64  `json:"parent_id"`
	Image    *string `json:"image,omitempty"`
	Children []*Node `json:"children"`
}

// Index is an id-keyed arena over a flat category list together with the
// parent to children adjacency. Children keep the order of the input.
// Categories whose parent is not in the list are treated as roots.
type Index struct {
	cats     []models.Category
	pos      map[int64]int
	bySlug   map[string]int
	children map[int64][]int
	roots    []int
}

// NewIndex groups categories by parent. It never fails: orphans are
// demoted to roots and duplicate ids keep their first occurrence.
func NewIndex(categories []models.Category) *Index {
	ix := &Index{
		cats:     make([]models.Category, 0, len(categories)),
		pos:      make(map[int64]int, len(categories)),
		bySlug:   make(map[string]int, len(categories)),
		children: make(map[int64][]int),
	}
	for _, c := range categories {
		if _, dup := ix.pos[c.ID]; dup {
			continue
		}
		ix.pos[c.ID] = len(ix.cats)
		ix.bySlug[c.Slug] = len(ix.cats)
		ix.cats = append(ix.cats, c)
	}
	for i, c := range ix.cats {
		if p, ok := ix.parentOf(c); ok {
			ix.children[p] = append(ix.children[p], i)
		} else {
			ix.roots = append(ix.roots, i)
		}
	}
	return ix
}

// parentOf returns the parent id of c if it resolves inside the index.
func (ix *Index) parentOf(c models.Category) (int64, bool) {
	if c.ParentID == nil {
		return 0, false
	}
	if _, ok := ix.pos[*c.ParentID]; !ok {
		return 0, false
	}
	return *c.ParentID, true
}

// Visible returns the active categories whose ancestors are all active,
// in input order. A category under an inactive parent is hidden with it;
// a parent missing from the list still demotes the category to a root.
func Visible(categories []models.Category) []models.Category {
	ix := NewIndex(categories)
	out := make([]models.Category, 0, len(ix.cats))
	for _, c := range ix.cats {
		if !c.Active {
			continue
		}
		chain, _ := ix.AncestorChain(c.ID)
		hidden := false
		for _, a := range chain {
			if !a.Active {
				hidden = true
				break
			}
		}
		if !hidden {
			out = append(out, c)
		}
	}
	return out
}

// Len returns the number of indexed categories.
func (ix *Index) Len() int {
	return len(ix.cats)
}

// Get returns the category with the given id.
func (ix *Index) Get(id int64) (models.Category, bool) {
	i, ok := ix.pos[id]
	if !ok {
		return models.Category{}, false
	}
	return ix.cats[i], true
}

// BySlug returns the category with the given slug.
func (ix *Index) BySlug(slug string) (models.Category, bool) {
	i, ok := ix.bySlug[slug]
	if !ok {
		return models.Category{}, false
	}
	return ix.cats[i], true
}

// AncestorChain returns the ancestors of id from the root down to the
// immediate parent, excluding id itself. The walk stops if it revisits a
// category so a corrupt parent graph cannot loop forever.
func (ix *Index) AncestorChain(id int64) ([]models.Category, error) {
	i, ok := ix.pos[id]
	if !ok {
		return nil, apperr.NotFound("category %d not found", id)
	}

	visited := map[int64]bool{id: true}
	var chain []models.Category
	cur := ix.cats[i]
	for {
		p, ok := ix.parentOf(cur)
		if !ok || visited[p] {
			break
		}
		visited[p] = true
		cur = ix.cats[ix.pos[p]]
		chain = append(chain, cur)
	}

	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return chain, nil
}

// DescendantIDs returns id and every category below it, breadth first.
func (ix *Index) DescendantIDs(id int64) ([]int64, error) {
	if _, ok := ix.pos[id]; !ok {
		return nil, apperr.NotFound("category %d not found", id)
	}

	visited := map[int64]bool{id: true}
	out := []int64{id}
	queue := []int64{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, ci := range ix.children[cur] {
			cid := ix.cats[ci].ID
			if visited[cid] {
				continue
			}
			visited[cid] = true
			out = append(out, cid)
			queue = append(queue, cid)
		}
	}
	return out, nil
}

// Children returns the direct children of id.
func (ix *Index) Children(id int64) []models.Category {
	return ix.collect(ix.children[id], -1)
}

// Roots returns the root categories, orphans included.
func (ix *Index) Roots() []models.Category {
	return ix.collect(ix.roots, -1)
}

// Siblings returns the categories sharing id's parent, excluding id.
// Root categories are siblings of each other.
func (ix *Index) Siblings(id int64) []models.Category {
	i, ok := ix.pos[id]
	if !ok {
		return nil
	}
	group := ix.roots
	if p, ok := ix.parentOf(ix.cats[i]); ok {
		group = ix.children[p]
	}
	return ix.collect(group, i)
}

func (ix *Index) collect(idx []int, skip int) []models.Category {
	out := make([]models.Category, 0, len(idx))
	for _, i := range idx {
		if i != skip {
			out = append(out, ix.cats[i])
		}
	}
	return out
}

// BuildTree converts a flat category list into a forest. Children follow
// the order of the input. Orphans become roots, and categories caught in a
// parent cycle (unreachable from any root) are demoted to roots as well,
// so every input category appears exactly once.
func BuildTree(categories []models.Category) []*Node {
	ix := NewIndex(categories)
	nodes := make([]*Node, len(ix.cats))
	for i, c := range ix.cats {
		nodes[i] = &Node{
			ID: c.ID, Name: c.Name, Slug: c.Slug, ParentID: c.ParentID, Image: c.Image,
			Children: []*Node{},
		}
	}

	placed := make([]bool, len(ix.cats))
	attach := func(root int) {
		placed[root] = true
		queue := []int{root}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, ci := range ix.children[ix.cats[cur].ID] {
				if placed[ci] {
					continue
				}
				placed[ci] = true
				nodes[cur].Children = append(nodes[cur].Children, nodes[ci])
				queue = append(queue, ci)
			}
		}
	}

	forest := make([]*Node, 0, len(ix.roots))
	for _, r := range ix.roots {
		attach(r)
		forest = append(forest, nodes[r])
	}
	for i := range ix.cats {
		if !placed[i] {
			attach(i)
			forest = append(forest, nodes[i])
		}
	}
	return forest
}
