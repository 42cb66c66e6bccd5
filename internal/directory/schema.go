package directory

import (
	"fmt"
	"strings"
)

// Backend selects the database behind a Store.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendMySQL    Backend = "mysql"
	BackendPostgres Backend = "postgresql"
	BackendMemory   Backend = "memory"
)

// ParseBackend accepts the config spellings, including "postgres" and "pg".
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sqlite", "sqlite3":
		return BackendSQLite, nil
	case "mysql":
		return BackendMySQL, nil
	case "postgresql", "postgres", "pg":
		return BackendPostgres, nil
	case "memory", "mem":
		return BackendMemory, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownBackend, s)
	}
}

var supplierColumns = []string{
	"id", "group_id", "name", "product", "price", "original_price",
	"location", "latitude", "longitude", "rating",
	"delivery_radius", "delivery_charge", "image", "verified", "member_years",
	"stock_available", "updated_at",
}

var profileColumns = []string{
	"user_id", "role", "display_name", "latitude", "longitude", "updated_at",
}

var reviewColumns = []string{
	"id", "order_id", "vendor_id", "supplier_id", "rating", "comment", "created_at",
}

func createStatements(b Backend) []string {
	switch b {
	case BackendMySQL:
		return []string{`
			CREATE TABLE IF NOT EXISTS suppliers (
				id VARCHAR(191) PRIMARY KEY,
				group_id VARCHAR(191) NOT NULL DEFAULT '',
				name VARCHAR(255) NOT NULL DEFAULT '',
				product VARCHAR(255) NOT NULL DEFAULT '',
				price VARCHAR(255) NOT NULL DEFAULT '',
				original_price TEXT NOT NULL,
				location TEXT NOT NULL,
				latitude DOUBLE NOT NULL DEFAULT 0,
				longitude DOUBLE NOT NULL DEFAULT 0,
				rating DOUBLE NOT NULL DEFAULT 0,
				delivery_radius DOUBLE NOT NULL DEFAULT 0,
				delivery_charge DOUBLE NOT NULL DEFAULT 0,
				image TEXT NOT NULL,
				verified BOOLEAN NULL,
				member_years INT NULL,
				stock_available BOOLEAN NOT NULL DEFAULT TRUE,
				updated_at BIGINT NOT NULL
			)`, `
			CREATE TABLE IF NOT EXISTS profiles (
				user_id VARCHAR(191) NOT NULL,
				role VARCHAR(32) NOT NULL,
				display_name VARCHAR(255) NOT NULL DEFAULT '',
				latitude DOUBLE NULL,
				longitude DOUBLE NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (user_id, role)
			)`, `
			CREATE TABLE IF NOT EXISTS reviews (
				id VARCHAR(191) PRIMARY KEY,
				order_id VARCHAR(191) NOT NULL UNIQUE,
				vendor_id VARCHAR(191) NOT NULL DEFAULT '',
				supplier_id VARCHAR(191) NOT NULL,
				rating DOUBLE NOT NULL,
				comment TEXT NOT NULL,
				created_at BIGINT NOT NULL,
				INDEX reviews_supplier (supplier_id)
			)`}

	case BackendPostgres:
		return []string{`
			CREATE TABLE IF NOT EXISTS suppliers (
				id TEXT PRIMARY KEY,
				group_id TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				product TEXT NOT NULL DEFAULT '',
				price TEXT NOT NULL DEFAULT '',
				original_price TEXT NOT NULL DEFAULT '""',
				location TEXT NOT NULL DEFAULT '',
				latitude DOUBLE PRECISION NOT NULL DEFAULT 0,
				longitude DOUBLE PRECISION NOT NULL DEFAULT 0,
				rating DOUBLE PRECISION NOT NULL DEFAULT 0,
				delivery_radius DOUBLE PRECISION NOT NULL DEFAULT 0,
				delivery_charge DOUBLE PRECISION NOT NULL DEFAULT 0,
				image TEXT NOT NULL DEFAULT '',
				verified BOOLEAN NULL,
				member_years INTEGER NULL,
				stock_available BOOLEAN NOT NULL DEFAULT TRUE,
				updated_at BIGINT NOT NULL
			)`, `
			CREATE TABLE IF NOT EXISTS profiles (
				user_id TEXT NOT NULL,
				role TEXT NOT NULL,
				display_name TEXT NOT NULL DEFAULT '',
				latitude DOUBLE PRECISION NULL,
				longitude DOUBLE PRECISION NULL,
				updated_at BIGINT NOT NULL,
				PRIMARY KEY (user_id, role)
			)`, `
			CREATE TABLE IF NOT EXISTS reviews (
				id TEXT PRIMARY KEY,
				order_id TEXT NOT NULL UNIQUE,
				vendor_id TEXT NOT NULL DEFAULT '',
				supplier_id TEXT NOT NULL,
				rating DOUBLE PRECISION NOT NULL,
				comment TEXT NOT NULL DEFAULT '',
				created_at BIGINT NOT NULL
			)`, `
			CREATE INDEX IF NOT EXISTS reviews_supplier ON reviews (supplier_id)`}

	default: // SQLite
		return []string{`
			CREATE TABLE IF NOT EXISTS suppliers (
				id TEXT PRIMARY KEY,
				group_id TEXT NOT NULL DEFAULT '',
				name TEXT NOT NULL DEFAULT '',
				product TEXT NOT NULL DEFAULT '',
				price TEXT NOT NULL DEFAULT '',
				original_price TEXT NOT NULL DEFAULT '""',
				location TEXT NOT NULL DEFAULT '',
				latitude REAL NOT NULL DEFAULT 0,
				longitude REAL NOT NULL DEFAULT 0,
				rating REAL NOT NULL DEFAULT 0,
				delivery_radius REAL NOT NULL DEFAULT 0,
				delivery_charge REAL NOT NULL DEFAULT 0,
				image TEXT NOT NULL DEFAULT '',
				verified INTEGER NULL,
				member_years INTEGER NULL,
				stock_available INTEGER NOT NULL DEFAULT 1,
				updated_at INTEGER NOT NULL
			)`, `
			CREATE TABLE IF NOT EXISTS profiles (
				user_id TEXT NOT NULL,
				role TEXT NOT NULL,
				display_name TEXT NOT NULL DEFAULT '',
				latitude REAL NULL,
				longitude REAL NULL,
				updated_at INTEGER NOT NULL,
				PRIMARY KEY (user_id, role)
			)`, `
			CREATE TABLE IF NOT EXISTS reviews (
				id TEXT PRIMARY KEY,
				order_id TEXT NOT NULL UNIQUE,
				vendor_id TEXT NOT NULL DEFAULT '',
				supplier_id TEXT NOT NULL,
				rating REAL NOT NULL,
				comment TEXT NOT NULL DEFAULT '',
				created_at INTEGER NOT NULL
			)`, `
			CREATE INDEX IF NOT EXISTS reviews_supplier ON reviews (supplier_id)`}
	}
}

// placeholders returns "?, ?, ?" or "$1, $2, $3" depending on the backend.
func placeholders(b Backend, n, start int) string {
	ps := make([]string, n)
	for i := range ps {
		if b == BackendPostgres {
			ps[i] = fmt.Sprintf("$%d", start+i)
		} else {
			ps[i] = "?"
		}
	}
	return strings.Join(ps, ", ")
}

// ph is the i-th (1-based) bind parameter.
func ph(b Backend, i int) string {
	if b == BackendPostgres {
		return fmt.Sprintf("$%d", i)
	}
	return "?"
}

// upsertQuery builds the backend-specific INSERT ... ON CONFLICT form.
func upsertQuery(b Backend, table string, cols []string, key []string) string {
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(b, len(cols), 1))

	isKey := make(map[string]bool, len(key))
	for _, k := range key {
		isKey[k] = true
	}
	var sets []string
	for _, c := range cols {
		if isKey[c] {
			continue
		}
		if b == BackendMySQL {
			sets = append(sets, fmt.Sprintf("%s = new.%s", c, c))
		} else {
			sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
		}
	}

	if b == BackendMySQL {
		return insert + " AS new ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", ")
	}
	return insert + fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s",
		strings.Join(key, ", "), strings.Join(sets, ", "))
}
