package database

import "testing"

func TestDialectSQLite(t *testing.T) {
	d := NewSQLiteDialect()

	if d.DriverName() != "sqlite3" {
		t.Errorf("DriverName() = %q, want %q", d.DriverName(), "sqlite3")
	}
	if dsn := d.DSN(DialectConfig{Path: "/tmp/app.db"}); dsn != "/tmp/app.db" {
		t.Errorf("DSN() = %q, want %q", dsn, "/tmp/app.db")
	}
	if !d.SupportsLastInsertId() {
		t.Error("expected SQLite to support LastInsertId")
	}
	if d.MigrationsSubdir() != "sqlite" {
		t.Errorf("MigrationsSubdir() = %q, want %q", d.MigrationsSubdir(), "sqlite")
	}

	query := "SELECT * FROM users WHERE id = ? AND email = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("RewriteQuery changed query: %q", got)
	}
}

func TestDialectMySQL(t *testing.T) {
	d := NewMySQLDialect()

	if d.DriverName() != "mysql" {
		t.Errorf("DriverName() = %q, want %q", d.DriverName(), "mysql")
	}
	if !d.SupportsLastInsertId() {
		t.Error("expected MySQL to support LastInsertId")
	}
	if d.MigrationsSubdir() != "mysql" {
		t.Errorf("MigrationsSubdir() = %q, want %q", d.MigrationsSubdir(), "mysql")
	}

	query := "SELECT * FROM users WHERE id = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("RewriteQuery changed query: %q", got)
	}
}

func TestDialectPostgres(t *testing.T) {
	d := NewPostgresDialect()

	if d.DriverName() != "postgres" {
		t.Errorf("DriverName() = %q, want %q", d.DriverName(), "postgres")
	}
	if d.SupportsLastInsertId() {
		t.Error("expected Postgres to not support LastInsertId")
	}
	if d.MigrationsSubdir() != "postgres" {
		t.Errorf("MigrationsSubdir() = %q, want %q", d.MigrationsSubdir(), "postgres")
	}
}

func TestRewriteQueryPostgres(t *testing.T) {
	d := NewPostgresDialect()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO donations (user_id, amount, message) VALUES (?, ?, ?)",
			want:  "INSERT INTO donations (user_id, amount, message) VALUES ($1, $2, $3)",
		},
		{
			name:  "no placeholders",
			query: "SELECT COUNT(*) FROM events",
			want:  "SELECT COUNT(*) FROM events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.RewriteQuery(tt.query); got != tt.want {
				t.Errorf("RewriteQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
