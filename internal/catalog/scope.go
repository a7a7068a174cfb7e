// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/store"
)

// ScopeResolver answers ancestor and descendant queries for a category.
// Both implementations must agree on every acyclic category graph.
type ScopeResolver interface {
	// AncestorChain returns the ancestors of id from the root down to the
	// immediate parent, excluding id itself.
	AncestorChain(ctx context.Context, id int64) ([]models.Category, error)
	// DescendantIDs returns id and all of its descendants.
	DescendantIDs(ctx context.Context, id int64) ([]int64, error)
}

// ClosureReader is the closure-table part of the category store.
type ClosureReader interface {
	Ancestors(ctx context.Context, id int64) ([]models.CategoryAncestor, error)
	Descendants(ctx context.Context, id int64) ([]int64, error)
}

// ClosureResolver answers scope queries from the precomputed closure table.
type ClosureResolver struct {
	closure ClosureReader
}

// NewClosureResolver returns a resolver backed by the closure table.
func NewClosureResolver(closure ClosureReader) *ClosureResolver {
	return &ClosureResolver{closure: closure}
}

// AncestorChain returns the closure rows with depth > 0, deepest first.
func (r *ClosureResolver) AncestorChain(ctx context.Context, id int64) ([]models.Category, error) {
	rows, err := r.closure.Ancestors(ctx, id)
	if err != nil {
		return nil, err
	}
	chain := make([]models.Category, 0, len(rows))
	for _, a := range rows {
		if a.Depth > 0 {
			chain = append(chain, a.Category)
		}
	}
	return chain, nil
}

// DescendantIDs returns the closure rows with id as ancestor.
func (r *ClosureResolver) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	return r.closure.Descendants(ctx, id)
}

// CategoryLister loads flat category rows.
type CategoryLister interface {
	List(ctx context.Context, f store.CategoryFilter) ([]models.Category, error)
}

// AdjacencyResolver answers scope queries by loading every category and
// walking the parent graph in memory.
type AdjacencyResolver struct {
	categories CategoryLister
}

// NewAdjacencyResolver returns a resolver backed by in-memory traversal.
func NewAdjacencyResolver(categories CategoryLister) *AdjacencyResolver {
	return &AdjacencyResolver{categories: categories}
}

func (r *AdjacencyResolver) index(ctx context.Context) (*Index, error) {
	cats, err := r.categories.List(ctx, store.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	return NewIndex(cats), nil
}

// AncestorChain walks parent pointers from id.
func (r *AdjacencyResolver) AncestorChain(ctx context.Context, id int64) ([]models.Category, error) {
	ix, err := r.index(ctx)
	if err != nil {
		return nil, err
	}
	return ix.AncestorChain(id)
}

// DescendantIDs runs a breadth-first search from id.
func (r *AdjacencyResolver) DescendantIDs(ctx context.Context, id int64) ([]int64, error) {
	ix, err := r.index(ctx)
	if err != nil {
		return nil, err
	}
	return ix.DescendantIDs(id)
}

// Scope strategies accepted by NewScopeResolver.
const (
	ScopeClosure   = "closure"
	ScopeAdjacency = "adjacency"
)

// CategoryScopeStore is what both strategies need from the category store.
type CategoryScopeStore interface {
	ClosureReader
	CategoryLister
}

// NewScopeResolver returns the resolver for the named strategy.
func NewScopeResolver(strategy string, categories CategoryScopeStore) (ScopeResolver, error) {
	switch strategy {
	case "", ScopeClosure:
		return NewClosureResolver(categories), nil
	case ScopeAdjacency:
		return NewAdjacencyResolver(categories), nil
	default:
		return nil, fmt.Errorf("unknown catalog scope %q", strategy)
	}
}
