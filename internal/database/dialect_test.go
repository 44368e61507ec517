package database

import (
	"strings"
	"testing"
)

func TestDialectSQLite(t *testing.T) {
	dialect := NewSQLiteDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "sqlite3"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for SQLite")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "sqlite"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "SELECT * FROM children WHERE id = ?"
		if got := dialect.RewriteQuery(query); got != query {
			t.Errorf("RewriteQuery should be a no-op for SQLite, got %v", got)
		}
	})

	t.Run("UpsertDailyStats", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertDailyStatsAdd(), "ON CONFLICT") {
			t.Error("UpsertDailyStatsAdd() should use ON CONFLICT")
		}
		if !strings.Contains(dialect.UpsertDailyStatsSet(), "ON CONFLICT") {
			t.Error("UpsertDailyStatsSet() should use ON CONFLICT")
		}
	})
}

func TestDialectPostgreSQL(t *testing.T) {
	dialect := NewPostgresDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "postgres"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return false for PostgreSQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "postgres"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("RewriteQuery", func(t *testing.T) {
		query := "INSERT INTO children (name) VALUES (?) ON CONFLICT DO NOTHING"
		got := dialect.RewriteQuery(query)
		if !strings.Contains(got, "$1") || strings.Contains(got, "?") {
			t.Errorf("RewriteQuery should number placeholders, got %v", got)
		}
	})
}

func TestDialectMySQL(t *testing.T) {
	dialect := NewMySQLDialect()

	t.Run("DriverName", func(t *testing.T) {
		result := dialect.DriverName()
		expected := "mysql"
		if result != expected {
			t.Errorf("DriverName() = %v, want %v", result, expected)
		}
	})

	t.Run("SupportsLastInsertId", func(t *testing.T) {
		if !dialect.SupportsLastInsertId() {
			t.Error("SupportsLastInsertId() should return true for MySQL")
		}
	})

	t.Run("MigrationsSubdir", func(t *testing.T) {
		result := dialect.MigrationsSubdir()
		expected := "mysql"
		if result != expected {
			t.Errorf("MigrationsSubdir() = %v, want %v", result, expected)
		}
	})

	t.Run("UpsertDailyStats", func(t *testing.T) {
		if !strings.Contains(dialect.UpsertDailyStatsAdd(), "ON DUPLICATE KEY") {
			t.Error("UpsertDailyStatsAdd() should use ON DUPLICATE KEY for MySQL")
		}
	})
}

func TestRewritePlaceholdersToNumbered(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			"single placeholder",
			"SELECT * FROM children WHERE id = ?",
			"SELECT * FROM children WHERE id = $1",
		},
		{
			"multiple placeholders",
			"INSERT INTO activity_scores (session_id, parent_id, score) VALUES (?, ?, ?)",
			"INSERT INTO activity_scores (session_id, parent_id, score) VALUES ($1, $2, $3)",
		},
		{
			"no placeholders",
			"SELECT COUNT(*) FROM parents",
			"SELECT COUNT(*) FROM parents",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rewritePlaceholdersToNumbered(tt.query); got != tt.want {
				t.Errorf("rewritePlaceholdersToNumbered() = %v, want %v", got, tt.want)
			}
		})
	}
}
