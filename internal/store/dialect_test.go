package store

import (
	"errors"
	"testing"
)

func TestNewDialect(t *testing.T) {
	if _, ok := NewDialect(DialectSQLite).(*SQLiteDialect); !ok {
		t.Error("sqlite should map to *SQLiteDialect")
	}
	if _, ok := NewDialect(DialectPostgres).(*PostgresDialect); !ok {
		t.Error("postgres should map to *PostgresDialect")
	}
	if _, ok := NewDialect("unknown").(*SQLiteDialect); !ok {
		t.Error("unknown dialects should default to SQLite")
	}
}

func TestDialectNames(t *testing.T) {
	tests := []struct {
		dialect Dialect
		driver  string
		goose   string
	}{
		{&SQLiteDialect{}, "sqlite", "sqlite3"},
		{&PostgresDialect{}, "postgres", "postgres"},
	}
	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.driver {
			t.Errorf("DriverName() = %q, want %q", got, tt.driver)
		}
		if got := tt.dialect.GooseDialect(); got != tt.goose {
			t.Errorf("GooseDialect() = %q, want %q", got, tt.goose)
		}
	}
}

func TestPlaceholders(t *testing.T) {
	s := &SQLiteDialect{}
	p := &PostgresDialect{}
	for _, pos := range []int{1, 2, 10} {
		if got := s.Placeholder(pos); got != "?" {
			t.Errorf("SQLite Placeholder(%d) = %q, want ?", pos, got)
		}
	}
	if got := p.Placeholder(3); got != "$3" {
		t.Errorf("Postgres Placeholder(3) = %q, want $3", got)
	}
}

func TestIsDuplicateKeyError(t *testing.T) {
	tests := []struct {
		dialect Dialect
		err     error
		want    bool
	}{
		{&SQLiteDialect{}, nil, false},
		{&SQLiteDialect{}, errors.New("UNIQUE constraint failed: unique_spawns.run_id"), true},
		{&SQLiteDialect{}, errors.New("no such table"), false},
		{&PostgresDialect{}, nil, false},
		{&PostgresDialect{}, errors.New(`pq: duplicate key value violates unique constraint "unique_spawns_pkey"`), true},
		{&PostgresDialect{}, errors.New("ERROR: 23505"), true},
		{&PostgresDialect{}, errors.New("connection refused"), false},
	}
	for _, tt := range tests {
		if got := tt.dialect.IsDuplicateKeyError(tt.err); got != tt.want {
			t.Errorf("%T.IsDuplicateKeyError(%v) = %v, want %v", tt.dialect, tt.err, got, tt.want)
		}
	}
}

func TestQueryBuilder(t *testing.T) {
	query := "SELECT creature_id FROM unique_spawns WHERE run_id = ? AND creature_id = ?"

	if got := NewQueryBuilder(&SQLiteDialect{}).Build(query); got != query {
		t.Errorf("SQLite Build changed the query: %q", got)
	}

	want := "SELECT creature_id FROM unique_spawns WHERE run_id = $1 AND creature_id = $2"
	if got := NewQueryBuilder(&PostgresDialect{}).Build(query); got != want {
		t.Errorf("Postgres Build = %q, want %q", got, want)
	}

	literal := "SELECT '?' FROM floor_history WHERE run_id = ?"
	wantLiteral := "SELECT '?' FROM floor_history WHERE run_id = $1"
	if got := NewQueryBuilder(&PostgresDialect{}).Build(literal); got != wantLiteral {
		t.Errorf("Postgres Build = %q, want %q", got, wantLiteral)
	}
}

func TestPoolDefaults(t *testing.T) {
	cfg := Config{Driver: DialectPostgres, MaxIdleConns: 2}.withPoolDefaults()
	if cfg.MaxOpenConns != 25 || cfg.MaxIdleConns != 2 || cfg.ConnMaxLifetime == 0 {
		t.Errorf("unexpected pool settings: %+v", cfg)
	}
}
