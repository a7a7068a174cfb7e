// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import "testing"

// TestUserIsAdmin verifies that IsAdmin returns true only when the roles
// set contains the exact admin role.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name  string
		roles []string
		want  bool
	}{
		{name: "admin role", roles: []string{"admin"}, want: true},
		{name: "admin among others", roles: []string{"customer", "admin"}, want: true},
		{name: "manager role", roles: []string{"manager"}, want: false},
		{name: "no roles", roles: nil, want: false},
		{name: "empty role", roles: []string{""}, want: false},
		{name: "uppercase ADMIN", roles: []string{"ADMIN"}, want: false},
		{name: "mixed case Admin", roles: []string{"Admin"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Roles: tt.roles}
			got := u.IsAdmin()
			if got != tt.want {
				t.Errorf("User{Roles: %q}.IsAdmin() = %v, want %v", tt.roles, got, tt.want)
			}
		})
	}
}

// TestUserRequires2FA verifies 2FA detection based on TOTPEnabled and
// TOTPSecret fields.
func TestUserRequires2FA(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	tests := []struct {
		name        string
		totpSecret  *string
		totpEnabled bool
		want        bool
	}{
		{name: "no secret and not enabled", totpSecret: nil, totpEnabled: false, want: false},
		{name: "secret set but not enabled", totpSecret: &secret, totpEnabled: false, want: false},
		{name: "enabled without secret", totpSecret: nil, totpEnabled: true, want: false},
		{name: "enabled with secret", totpSecret: &secret, totpEnabled: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TOTPSecret: tt.totpSecret, TOTPEnabled: tt.totpEnabled}
			if got := u.Requires2FA(); got != tt.want {
				t.Errorf("Requires2FA() = %v, want %v", got, tt.want)
			}
		})
	}
}
