package app

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/yungbote/lms-backend/internal/data/repos"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
	"github.com/yungbote/lms-backend/internal/services"
)

func TestSeedAdmin(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	users := repos.NewUserRepo(db, log)
	auth := services.NewAuthService(db, log, users, nil, "seed-secret", time.Hour, bcrypt.MinCost)
	ctx := context.Background()

	if err := seedAdmin(ctx, log, AdminConfig{}, auth); err != nil {
		t.Fatalf("unconfigured seed should be a no-op: %v", err)
	}

	cfg := AdminConfig{Email: "Root@Example.com", Password: "changeme1", FirstName: "Root", LastName: "User"}
	for i := 0; i < 2; i++ {
		if err := seedAdmin(ctx, log, cfg, auth); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	found, err := users.GetByEmails(ctx, nil, []string{"root@example.com"})
	if err != nil || len(found) != 1 {
		t.Fatalf("expected one admin, got %d (%v)", len(found), err)
	}
	if found[0].Role != types.RoleAdmin {
		t.Fatalf("expected admin role, got %q", found[0].Role)
	}

	if _, err := auth.Register(ctx, services.RegisterInput{
		FirstName: "Stu", LastName: "Dent", Email: "stu@example.com", Password: "abc123",
	}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := seedAdmin(ctx, log, AdminConfig{Email: "stu@example.com", Password: "x1"}, auth); err == nil {
		t.Fatalf("an existing student must not be promoted")
	}
}
