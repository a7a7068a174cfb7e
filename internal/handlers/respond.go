// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers of the storefront API.
// Handlers are grouped by concern (public catalog, cart, checkout, auth,
// admin) and receive their dependencies through the handler struct.
package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"storefront/internal/apperr"
)

// maxJSONBody caps request bodies decoded by decodeJSON.
const maxJSONBody = 1 << 20

// writeJSON encodes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response failed", "error", err)
	}
}

// writeError maps err to its status code and writes {"error": message}.
// Server-side failures are logged with the request path.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.StatusCode(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.Message(err)})
}

// decodeJSON reads a JSON body into dst. A missing or malformed body is an
// InvalidArgument error.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidArgument("Request body is required")
		}
		return apperr.InvalidArgument("Invalid JSON body")
	}
	return nil
}

// queryInt parses a positive integer query parameter. Missing or invalid
// values fall back to def.
func queryInt(r *http.Request, key string, def uint64) uint64 {
	n, err := strconv.ParseUint(r.URL.Query().Get(key), 10, 64)
	if err != nil || n == 0 {
		return def
	}
	return n
}

// pageParams reads page and limit, clamping limit to max.
func pageParams(r *http.Request, defLimit, maxLimit uint64) (page, limit uint64) {
	page = queryInt(r, "page", 1)
	limit = min(queryInt(r, "limit", defLimit), maxLimit)
	return page, limit
}
