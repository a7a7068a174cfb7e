// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"storefront/internal/apperr"
	"storefront/internal/imaging"
	"storefront/internal/models"
	"storefront/internal/slug"
	"storefront/internal/store"
)

// Upload limits.
const (
	maxUploadFiles   = 10
	maxUploadFile    = 15 << 20
	maxUploadRequest = maxUploadFiles*maxUploadFile + 1<<20
	uploadWorkers    = 3
)

// Products serves GET /admin/products?q=&category_id=&brand_id=&page=&limit=.
func (a *Admin) Products(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r, 15, 100)
	f := store.AdminProductFilter{
		Text:   strings.TrimSpace(r.URL.Query().Get("q")),
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
	if id := queryInt(r, "category_id", 0); id > 0 {
		v := int64(id)
		f.CategoryID = &v
	}
	if id := queryInt(r, "brand_id", 0); id > 0 {
		v := int64(id)
		f.BrandID = &v
	}

	items, total, err := a.products.AdminList(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items, "total": total, "page": page, "limit": limit, "q": f.Text,
	})
}

// urlID parses the {id} URL parameter.
func urlID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.InvalidArgument("Invalid id")
	}
	return id, nil
}

// Product serves GET /admin/products/{id}: the product with every variant.
func (a *Admin) Product(w http.ResponseWriter, r *http.Request) {
	id, err := urlID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := a.products.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// productRequest is the body of POST /admin/products/save.
type productRequest struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	BrandID           *int64  `json:"brand_id"`
	PrimaryCategoryID *int64  `json:"primary_category_id"`
	Description       *string `json:"description"`
	Active            *bool   `json:"active"`
}

// SaveProduct serves POST /admin/products/save. The slug is derived from
// the title.
func (a *Admin) SaveProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if msg := validateRequired(req.Title, "Title required", maxTitleLen); msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}
	if msg := validateOptional(req.Description, "Description", maxDescriptionLen); msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}
	title := strings.TrimSpace(req.Title)
	s := slug.Generate(title)
	if s == "" {
		writeError(w, r, apperr.InvalidArgument("Title must contain letters or digits"))
		return
	}

	saved, err := a.products.Save(r.Context(), &models.Product{
		ID:                req.ID,
		Title:             title,
		Slug:              s,
		Description:       req.Description,
		BrandID:           req.BrandID,
		PrimaryCategoryID: req.PrimaryCategoryID,
		Active:            req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, saved)
}

// variantRequest is the body of POST /admin/products/variants/save.
type variantRequest struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Color     *string `json:"color"`
	Price     *int64  `json:"price"`
	Active    *bool   `json:"active"`
}

// SaveVariant serves POST /admin/products/variants/save.
func (a *Admin) SaveVariant(w http.ResponseWriter, r *http.Request) {
	var req variantRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ProductID <= 0 || req.Price == nil {
		writeError(w, r, apperr.InvalidArgument("Product ID and price required"))
		return
	}
	if *req.Price < 0 {
		writeError(w, r, apperr.InvalidArgument("Invalid price"))
		return
	}
	if msg := validateOptional(req.Color, "Color", maxColorLen); msg != "" {
		writeError(w, r, apperr.InvalidArgument("%s", msg))
		return
	}

	saved, err := a.products.SaveVariant(r.Context(), &models.Variant{
		ID:        req.ID,
		ProductID: req.ProductID,
		Color:     req.Color,
		Price:     *req.Price,
		Active:    req.Active == nil || *req.Active,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, saved)
}

// RemoveVariant serves POST /admin/products/variants/remove.
func (a *Admin) RemoveVariant(w http.ResponseWriter, r *http.Request) {
	var req idRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.ID <= 0 {
		writeError(w, r, apperr.InvalidArgument("Variant ID required"))
		return
	}
	if err := a.products.DeleteVariant(r.Context(), req.ID); err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// SaveSize serves POST /admin/products/variants/sizes/save.
func (a *Admin) SaveSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID        int64  `json:"id"`
		VariantID int64  `json:"variant_id"`
		Size      string `json:"size"`
		Stock     *int   `json:"stock"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	size := strings.TrimSpace(req.Size)
	if req.VariantID <= 0 || size == "" {
		writeError(w, r, apperr.InvalidArgument("Variant ID and size required"))
		return
	}
	if len(size) > maxSizeLen {
		writeError(w, r, apperr.InvalidArgument("Size is too long (max %d characters)", maxSizeLen))
		return
	}
	stock := 0
	if req.Stock != nil {
		stock = max(0, *req.Stock)
	}

	saved, err := a.products.SaveSize(r.Context(), &models.VariantSize{
		ID:        req.ID,
		VariantID: req.VariantID,
		Size:      size,
		Stock:     &stock,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, saved)
}

// Upload serves POST /admin/products/upload: a multipart form with
// product_id, variant_id and one or more files. Each image is normalised,
// stored and appended to the variant's gallery in upload order.
func (a *Admin) Upload(w http.ResponseWriter, r *http.Request) {
	if a.images == nil {
		writeError(w, r, apperr.Unavailable("upload", errors.New("image storage is not configured")))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadRequest)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, r, apperr.InvalidArgument("Missing fields or files"))
		return
	}
	productID, _ := strconv.ParseInt(r.FormValue("product_id"), 10, 64)
	variantID, _ := strconv.ParseInt(r.FormValue("variant_id"), 10, 64)
	files := r.MultipartForm.File["files"]
	if productID <= 0 || variantID <= 0 || len(files) == 0 {
		writeError(w, r, apperr.InvalidArgument("Missing fields or files"))
		return
	}
	if len(files) > maxUploadFiles {
		writeError(w, r, apperr.InvalidArgument("Too many files (max %d)", maxUploadFiles))
		return
	}

	p, err := a.products.FindByID(r.Context(), productID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !hasVariant(p, variantID) {
		writeError(w, r, apperr.NotFound("Variant not found"))
		return
	}

	urls := make([]string, len(files))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(uploadWorkers)
	for i, fh := range files {
		g.Go(func() error {
			raw, err := readUpload(fh)
			if err != nil {
				return err
			}
			img, err := imaging.Normalize(raw)
			if errors.Is(err, imaging.ErrUnsupported) {
				return apperr.InvalidArgument("%s is not a supported image", fh.Filename)
			}
			if err != nil {
				return fmt.Errorf("normalize %s: %w", fh.Filename, err)
			}
			url, err := a.images.UploadProductImage(ctx, productID, variantID, img.Data, img.ContentType, imaging.Ext)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		writeError(w, r, err)
		return
	}

	for _, url := range urls {
		if _, err := a.products.AddImage(r.Context(), variantID, url); err != nil {
			writeError(w, r, err)
			return
		}
	}
	slog.Info("product images uploaded", "product_id", productID, "variant_id", variantID, "count", len(urls))
	a.invalidate(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "count": len(urls), "urls": urls})
}

func hasVariant(p *models.Product, variantID int64) bool {
	for _, v := range p.Variants {
		if v.ID == variantID {
			return true
		}
	}
	return false
}

// readUpload reads one uploaded file, rejecting files over the size cap.
func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > maxUploadFile {
		return nil, apperr.InvalidArgument("%s is too large (max %d MB)", fh.Filename, maxUploadFile>>20)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	raw, err := io.ReadAll(io.LimitReader(f, maxUploadFile+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", fh.Filename, err)
	}
	if len(raw) > maxUploadFile {
		return nil, apperr.InvalidArgument("%s is too large (max %d MB)", fh.Filename, maxUploadFile>>20)
	}
	return raw, nil
}
