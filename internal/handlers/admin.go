// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"cmp"
	"context"
	"net/http"
	"slices"
	"strings"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/slug"
	"storefront/internal/store"
)

// AdminCategoryStore is the category store as the back office uses it.
type AdminCategoryStore interface {
	List(ctx context.Context, f store.CategoryFilter) ([]models.Category, error)
	Save(ctx context.Context, c *models.Category) (*models.Category, error)
	Delete(ctx context.Context, id int64) error
}

// GenderLister lists the gender groups.
type GenderLister interface {
	List(ctx context.Context) ([]models.Gender, error)
}

// AdminBrandStore is the brand store as the back office uses it.
type AdminBrandStore interface {
	List(ctx context.Context, activeOnly bool) ([]models.Brand, error)
	Save(ctx context.Context, b *models.Brand) (*models.Brand, error)
	Delete(ctx context.Context, id int64) error
}

// AdminProductStore is the product store as the back office uses it.
type AdminProductStore interface {
	AdminList(ctx context.Context, f store.AdminProductFilter) ([]models.Product, uint64, error)
	FindByID(ctx context.Context, id int64) (*models.Product, error)
	Save(ctx context.Context, p *models.Product) (*models.Product, error)
	SaveVariant(ctx context.Context, v *models.Variant) (*models.Variant, error)
	DeleteVariant(ctx context.Context, id int64) error
	SaveSize(ctx context.Context, sz *models.VariantSize) (*models.VariantSize, error)
	AddImage(ctx context.Context, variantID int64, url string) (*models.VariantImage, error)
}

// AdminOrderStore is the order store as the back office uses it.
type AdminOrderStore interface {
	List(ctx context.Context, f store.OrderFilter) ([]models.Order, uint64, error)
	UpdateStatus(ctx context.Context, number string, status *models.OrderStatus, payment *models.PaymentStatus) (*models.Order, error)
}

// AdminOfficeStore is the office store as the back office uses it.
type AdminOfficeStore interface {
	List(ctx context.Context, f store.OfficeFilter) ([]models.Office, uint64, error)
	FindByID(ctx context.Context, id int64) (*models.Office, error)
	Create(ctx context.Context, o *models.Office) (int64, error)
	Update(ctx context.Context, id int64, patch map[string]any) error
}

// ImageUploader stores a product image and returns its public URL.
type ImageUploader interface {
	UploadProductImage(ctx context.Context, productID, variantID int64, data []byte, contentType, ext string) (string, error)
}

// CacheInvalidator drops cached public responses.
type CacheInvalidator interface {
	InvalidateAll(ctx context.Context)
}

// AdminDeps holds the dependencies of the back-office handlers. Images
// and Cache may be nil.
type AdminDeps struct {
	Categories AdminCategoryStore
	Genders    GenderLister
	Brands     AdminBrandStore
	Products   AdminProductStore
	Orders     AdminOrderStore
	Offices    AdminOfficeStore
	Images     ImageUploader
	Cache      CacheInvalidator
}

// Admin groups all back-office HTTP handlers and their dependencies.
type Admin struct {
	categories AdminCategoryStore
	genders    GenderLister
	brands     AdminBrandStore
	products   AdminProductStore
	orders     AdminOrderStore
	offices    AdminOfficeStore
	images     ImageUploader
	cache      CacheInvalidator
}

// NewAdmin creates a new Admin handler group.
func NewAdmin(d AdminDeps) *Admin {
	return &Admin{
		categories: d.Categories,
		genders:    d.Genders,
		brands:     d.Brands,
		products:   d.Products,
		orders:     d.Orders,
		offices:    d.Offices,
		images:     d.Images,
		cache:      d.Cache,
	}
}

// invalidate drops cached catalog responses after a mutation.
func (a *Admin) invalidate(ctx context.Context) {
	if a.cache != nil {
		a.cache.InvalidateAll(ctx)
	}
}

// idRequest is the body of the remove endpoints.
type idRequest struct {
	ID int64 `json:"id"`
}

func decodeID(r *http.Request) (int64, error) {
	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		return 0, err
	}
	if req.ID <= 0 {
		return 0, apperr.InvalidArgument("id required")
	}
	return req.ID, nil
}

// --- Categories ---

// categoryOption is the back-office picker view of a category.
type categoryOption struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// allCategoriesByID lists every category ordered by id.
func (a *Admin) allCategoriesByID(ctx context.Context) ([]models.Category, error) {
	cats, err := a.categories.List(ctx, store.CategoryFilter{})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(cats, func(x, y models.Category) int { return cmp.Compare(x.ID, y.ID) })
	return cats, nil
}

// Categories serves GET /admin/categories.
func (a *Admin) Categories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.allCategoriesByID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]categoryOption, len(cats))
	for i, c := range cats {
		out[i] = categoryOption{ID: c.ID, Name: c.Name}
	}
	writeJSON(w, http.StatusOK, out)
}

// CategoryTree serves GET /admin/categories/tree: every category, active
// or not, as a forest.
func (a *Admin) CategoryTree(w http.ResponseWriter, r *http.Request) {
	cats, err := a.allCategoriesByID(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, catalog.BuildTree(cats))
}

// Genders serves GET /admin/categories/genders.
func (a *Admin) Genders(w http.ResponseWriter, r *http.Request) {
	genders, err := a.genders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	slices.SortFunc(genders, func(x, y models.Gender) int { return cmp.Compare(x.ID, y.ID) })
	writeJSON(w, http.StatusOK, genders)
}

// categoryRequest is the body of POST /admin/categories/save.
type categoryRequest struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	GenderID *int64  `json:"gender_id"`
	ParentID *int64  `json:"parent_id"`
	Image    *string `json:"image"`
	Active   *bool   `json:"active"`
}

// SaveCategory serves POST /admin/categories/save. The slug is derived
// from the name; a duplicate slug is a 409.
func (a *Admin) SaveCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateRequired(req.Name, "name is required", maxNameLen); msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}
	if req.ParentID != nil && req.ID != 0 {
		if *req.ParentID == req.ID {
			writeError(w, r, apperr.InvalidArgument("A category cannot be its own parent"))
			return
		}
		if err := a.checkParent(r.Context(), req.ID, *req.ParentID); err != nil {
			writeError(w, r, err)
			return
		}
	}
	name := strings.TrimSpace(req.Name)
	s := slug.Generate(name)
	if s == "" {
		writeError(w, r, apperr.InvalidArgument("name must contain letters or digits"))
		return
	}

	saved, err := a.categories.Save(r.Context(), &models.Category{
		ID:       req.ID,
		Name:     name,
		Slug:     s,
		ParentID: req.ParentID,
		GenderID: req.GenderID,
		Image:    req.Image,
		Active:   req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, saved)
}

// checkParent rejects moving id under one of its own descendants.
func (a *Admin) checkParent(ctx context.Context, id, parentID int64) error {
	cats, err := a.categories.List(ctx, store.CategoryFilter{})
	if err != nil {
		return err
	}
	below, err := catalog.NewIndex(cats).DescendantIDs(id)
	if apperr.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if slices.Contains(below, parentID) {
		return apperr.InvalidArgument("A category cannot be moved under its own descendant")
	}
	return nil
}

// RemoveCategory serves POST /admin/categories/remove.
func (a *Admin) RemoveCategory(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.categories.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// --- Brands ---

// Brands serves GET /admin/brands.
func (a *Admin) Brands(w http.ResponseWriter, r *http.Request) {
	brands, err := a.brands.List(r.Context(), false)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, brands)
}

// SaveBrand serves POST /admin/brands/save.
func (a *Admin) SaveBrand(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Active bool   `json:"active"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateRequired(req.Name, "Name required", maxNameLen); msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}
	name := strings.TrimSpace(req.Name)
	s := slug.Generate(name)
	if s == "" {
		writeError(w, r, apperr.InvalidArgument("Name must contain letters or digits"))
		return
	}

	saved, err := a.brands.Save(r.Context(), &models.Brand{ID: req.ID, Name: name, Slug: s, Active: req.Active})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	if req.ID != 0 {
		writeJSON(w, http.StatusOK, map[string]any{"updated": true, "brand": saved})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"created": true, "brand": saved})
}

// RemoveBrand serves POST /admin/brands/remove.
func (a *Admin) RemoveBrand(w http.ResponseWriter, r *http.Request) {
	id, err := decodeID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := a.brands.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
