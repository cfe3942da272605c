package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("create: %w", gorm.ErrDuplicatedKey), true},
		{"pg 23505", &pgconn.PgError{Code: "23505"}, true},
		{"pg other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: enrollment.student_id, enrollment.course_id"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tc := range cases {
		if got := IsUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, got, tc.want)
		}
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", Name: "lms"}
	if got := cfg.PostgresDSN(); got != "postgres://u:p@db:5432/lms?sslmode=disable" {
		t.Fatalf("unexpected dsn: %s", got)
	}
	cfg.DSN = "postgres://explicit"
	if got := cfg.PostgresDSN(); got != "postgres://explicit" {
		t.Fatalf("explicit dsn should win, got %s", got)
	}
}
