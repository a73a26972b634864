package database

import (
	"strings"
	"testing"
)

func TestDialects(t *testing.T) {
	tests := []struct {
		dialect      Dialect
		driver       string
		lastInsertID bool
		migrations   string
	}{
		{NewSQLiteDialect(), "sqlite3", true, "sqlite"},
		{NewPostgresDialect(), "postgres", false, "postgres"},
		{NewMySQLDialect(), "mysql", true, "mysql"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			if got := tt.dialect.DriverName(); got != tt.driver {
				t.Errorf("DriverName() = %q, want %q", got, tt.driver)
			}
			if got := tt.dialect.SupportsLastInsertId(); got != tt.lastInsertID {
				t.Errorf("SupportsLastInsertId() = %v, want %v", got, tt.lastInsertID)
			}
			if got := tt.dialect.MigrationsSubdir(); got != tt.migrations {
				t.Errorf("MigrationsSubdir() = %q, want %q", got, tt.migrations)
			}
			if !strings.Contains(tt.dialect.CreateMigrationsTableQuery(), "migrations") {
				t.Error("CreateMigrationsTableQuery() does not create the migrations table")
			}
		})
	}
}

func TestRewriteQuery(t *testing.T) {
	tests := []struct {
		name     string
		dialect  Dialect
		query    string
		expected string
	}{
		{
			name:     "SQLite no change",
			dialect:  NewSQLiteDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = ?",
		},
		{
			name:     "PostgreSQL single placeholder",
			dialect:  NewPostgresDialect(),
			query:    "SELECT * FROM users WHERE id = ?",
			expected: "SELECT * FROM users WHERE id = $1",
		},
		{
			name:     "PostgreSQL multiple placeholders",
			dialect:  NewPostgresDialect(),
			query:    "INSERT INTO users (name, email) VALUES (?, ?)",
			expected: "INSERT INTO users (name, email) VALUES ($1, $2)",
		},
		{
			name:     "MySQL no change",
			dialect:  NewMySQLDialect(),
			query:    "UPDATE users SET name = ?, email = ? WHERE id = ?",
			expected: "UPDATE users SET name = ?, email = ? WHERE id = ?",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.dialect.RewriteQuery(tt.query)
			if result != tt.expected {
				t.Errorf("RewriteQuery() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestResetSequenceQuery(t *testing.T) {
	if q := NewSQLiteDialect().ResetSequenceQuery("tasks"); q != "" {
		t.Errorf("SQLite ResetSequenceQuery() = %q, want empty", q)
	}
	if q := NewMySQLDialect().ResetSequenceQuery("tasks"); q != "" {
		t.Errorf("MySQL ResetSequenceQuery() = %q, want empty", q)
	}
	q := NewPostgresDialect().ResetSequenceQuery("tasks")
	if !strings.Contains(q, "pg_get_serial_sequence('tasks', 'id')") || !strings.HasSuffix(q, "FROM tasks") {
		t.Errorf("Postgres ResetSequenceQuery() = %q", q)
	}
}

func TestMySQLDSN(t *testing.T) {
	d := NewMySQLDialect()
	tests := []struct {
		url  string
		want string
	}{
		{"user:pw@tcp(db:3306)/chores", "user:pw@tcp(db:3306)/chores?parseTime=true"},
		{"user:pw@tcp(db:3306)/chores?charset=utf8mb4", "user:pw@tcp(db:3306)/chores?charset=utf8mb4&parseTime=true"},
		{"user:pw@tcp(db:3306)/chores?parseTime=false", "user:pw@tcp(db:3306)/chores?parseTime=false"},
	}
	for _, tt := range tests {
		if got := d.DSN(DialectConfig{URL: tt.url}); got != tt.want {
			t.Errorf("DSN(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestSQLiteDSN(t *testing.T) {
	dialect := NewSQLiteDialect()

	got := dialect.DSN(DialectConfig{Path: "./chorequest.db"})
	if got != "./chorequest.db?_foreign_keys=on&_busy_timeout=5000" {
		t.Errorf("DSN() = %v", got)
	}

	custom := "file:test.db?mode=memory"
	if got := dialect.DSN(DialectConfig{Path: custom}); got != custom {
		t.Errorf("DSN() should keep explicit options, got %v", got)
	}
}

func TestSplitStatements(t *testing.T) {
	content := `-- header comment
CREATE TABLE a (id INTEGER);

-- another
CREATE INDEX idx_a ON a(id);
`
	got := splitStatements(content)
	if len(got) != 2 {
		t.Fatalf("splitStatements() returned %d statements: %q", len(got), got)
	}
	if got[0] != "CREATE TABLE a (id INTEGER)" {
		t.Errorf("first statement = %q", got[0])
	}
	if got[1] != "CREATE INDEX idx_a ON a(id)" {
		t.Errorf("second statement = %q", got[1])
	}
}
