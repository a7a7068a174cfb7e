// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"storefront/internal/apperr"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
)

// totpIssuer names the account in authenticator apps.
const totpIssuer = "Storefront"

// UserStore is the part of the user store authentication needs.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetTOTPSecret(ctx context.Context, userID uuid.UUID, secret string) error
	EnableTOTP(ctx context.Context, userID uuid.UUID) error
	CheckPassword(user *models.User, password string) bool
}

// SessionStore creates, updates and destroys login sessions.
type SessionStore interface {
	Create(ctx context.Context, w http.ResponseWriter, data *session.Data) (string, error)
	Update(ctx context.Context, r *http.Request, data *session.Data) error
	Destroy(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// Auth groups all authentication-related HTTP handlers.
type Auth struct {
	sessions SessionStore
	users    UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions SessionStore, users UserStore) *Auth {
	return &Auth{sessions: sessions, users: users}
}

// meView is the JSON shape of the current session.
type meView struct {
	ID            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	DisplayName   string    `json:"display_name"`
	Roles         []string  `json:"roles"`
	TwoFARequired bool      `json:"two_fa_required"`
}

func viewOfSession(s *session.Data) meView {
	roles := s.Roles
	if roles == nil {
		roles = []string{}
	}
	return meView{
		ID:            s.UserID,
		Email:         s.Email,
		DisplayName:   s.DisplayName,
		Roles:         roles,
		TwoFARequired: !s.TwoFADone,
	}
}

// Login serves POST /auth/login with body {"email", "password"}. Users
// with TOTP enabled get a session that still owes a code; POST
// /auth/2fa/verify completes it.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		writeError(w, r, apperr.InvalidArgument("Email and password are required"))
		return
	}

	user, err := a.users.FindByEmail(r.Context(), email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil || !a.users.CheckPassword(user, req.Password) {
		slog.Warn("login failed", "email", email, "remote", r.RemoteAddr)
		writeError(w, r, apperr.Unauthorized("Invalid email or password"))
		return
	}

	data := session.FromUser(user, !user.Requires2FA())
	if _, err := a.sessions.Create(r.Context(), w, data); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("user logged in", "user_id", user.ID, "two_fa_pending", !data.TwoFADone)
	writeJSON(w, http.StatusOK, viewOfSession(data))
}

// Verify2FA serves POST /auth/2fa/verify with body {"code"}: it completes
// a login that is waiting for a TOTP code.
func (a *Auth) Verify2FA(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	code, err := readCode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	if !user.Requires2FA() {
		writeError(w, r, apperr.InvalidArgument("Two-factor authentication is not enabled"))
		return
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		writeError(w, r, apperr.Unauthorized("Invalid code"))
		return
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOfSession(sess))
}

// Logout serves POST /auth/logout.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	if err := a.sessions.Destroy(r.Context(), w, r); err != nil {
		slog.Warn("session destroy failed", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// Me serves GET /auth/me.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	writeJSON(w, http.StatusOK, viewOfSession(sess))
}

// TwoFASetup serves GET /auth/2fa/qr: it generates a new TOTP secret,
// stores it (not yet enabled) and returns it with a QR code PNG.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		writeError(w, r, apperr.Unavailable("generate totp", err))
		return
	}
	if err := a.users.SetTOTPSecret(r.Context(), sess.UserID, key.Secret()); err != nil {
		writeError(w, r, err)
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		writeError(w, r, apperr.Unavailable("encode qr code", err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"secret": key.Secret(),
		"url":    key.URL(),
		"qr":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAEnable serves POST /auth/2fa/enable with body {"code"}: it turns on
// TOTP once the user proves the authenticator app holds the secret.
func (a *Auth) TwoFAEnable(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	code, err := readCode(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	user, err := a.users.FindByID(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if user == nil {
		writeError(w, r, apperr.Unauthorized("Unauthorized"))
		return
	}
	if user.TOTPSecret == nil {
		writeError(w, r, apperr.InvalidArgument("Request a QR code first"))
		return
	}
	if !totp.Validate(code, *user.TOTPSecret) {
		writeError(w, r, apperr.InvalidArgument("Invalid code"))
		return
	}
	if err := a.users.EnableTOTP(r.Context(), user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	slog.Info("two-factor authentication enabled", "user_id", user.ID)
	writeJSON(w, http.StatusOK, map[string]bool{"enabled": true})
}

// readCode decodes {"code": "..."} and trims it.
func readCode(r *http.Request) (string, error) {
	var req struct {
		Code string `json:"code"`
	}
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return "", apperr.InvalidArgument("Code required")
	}
	return code, nil
}
