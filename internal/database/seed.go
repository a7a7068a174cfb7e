// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// Seed populates the database with initial development data: an admin
// user with the given credentials and a small demo catalog. Each part is
// skipped when its table already has rows.
func Seed(db *sql.DB, adminEmail, adminPassword string) error {
	if err := seedAdmin(db, adminEmail, adminPassword); err != nil {
		return err
	}
	return seedCatalog(db)
}

func seedAdmin(db *sql.DB, email, password string) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("users already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, roles, totp_enabled)
		VALUES ($1, $2, $3, string_to_array($4, ','), $5)
	`, email, string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	slog.Info("database seeded with admin user", "email", email)

	return nil
}

// seedCatalog inserts genders, a two-level category tree, one brand and a
// few products, then rebuilds the closure table.
func seedCatalog(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}
	if count > 0 {
		slog.Info("catalog already seeded, skipping")
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer tx.Rollback()

	stmts := []string{
		`INSERT INTO genders (id, code, name) VALUES (1, 'women', 'Mulher'), (2, 'men', 'Homem'), (3, 'kids', 'Criança')`,
		`INSERT INTO categories (id, name, slug, parent_id, gender_id) VALUES
			(1, 'Roupa', 'women-clothing', NULL, 1),
			(2, 'Vestidos', 'women-dresses', 1, 1),
			(3, 'Calçado', 'women-shoes', NULL, 1),
			(4, 'Sandálias', 'women-sandals', 3, 1),
			(5, 'Roupa', 'men-clothing', NULL, 2),
			(6, 'Camisas', 'men-shirts', 5, 2)`,
		`SELECT setval(pg_get_serial_sequence('categories', 'id'), 6)`,
		`SELECT setval(pg_get_serial_sequence('genders', 'id'), 3)`,
		`INSERT INTO brands (id, name, slug, active) VALUES (1, 'Amoda', 'amoda', TRUE)`,
		`SELECT setval(pg_get_serial_sequence('brands', 'id'), 1)`,
		`INSERT INTO products (id, title, slug, brand_id, primary_category_id) VALUES
			(1, 'Vestido Midi', 'vestido-midi', 1, 2),
			(2, 'Sandália Rasteira', 'sandalia-rasteira', 1, 4),
			(3, 'Camisa Linho', 'camisa-linho', 1, 6)`,
		`SELECT setval(pg_get_serial_sequence('products', 'id'), 3)`,
		`INSERT INTO product_variants (id, product_id, color, price) VALUES
			(1, 1, 'preto', 15000), (2, 1, 'vermelho', 16500),
			(3, 2, 'castanho', 9000),
			(4, 3, 'branco', 12000)`,
		`SELECT setval(pg_get_serial_sequence('product_variants', 'id'), 4)`,
		`INSERT INTO product_variant_sizes (variant_id, size, stock) VALUES
			(1, 'S', 3), (1, 'M', 5), (2, 'M', 2), (3, '37', 4), (3, '38', 1), (4, 'L', 6)`,
		`SELECT rebuild_category_closure()`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}

	slog.Info("database seeded with demo catalog")
	return nil
}
