package user

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/db"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
)

func TestUserRepo(t *testing.T) {
	conn := testutil.DB(t)
	tx := testutil.Tx(t, conn)

	repo := NewUserRepo(conn, testutil.Logger(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, tx, []*types.User{
		{
			Email:     "userrepo@example.com",
			Password:  "pw",
			FirstName: "A",
			LastName:  "B",
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 {
		t.Fatalf("Create: expected 1 user, got %d", len(created))
	}
	if created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected an id to be assigned")
	}
	if created[0].Role != types.RoleStudent {
		t.Fatalf("Create: expected default role student, got %q", created[0].Role)
	}

	gotByIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(gotByIDs) != 1 || gotByIDs[0].ID != created[0].ID {
		t.Fatalf("GetByIDs: unexpected result: %+v", gotByIDs)
	}

	gotByEmails, err := repo.GetByEmails(ctx, tx, []string{created[0].Email})
	if err != nil {
		t.Fatalf("GetByEmails: %v", err)
	}
	if len(gotByEmails) != 1 || gotByEmails[0].Email != created[0].Email {
		t.Fatalf("GetByEmails: unexpected result: %+v", gotByEmails)
	}

	exists, err := repo.EmailExists(ctx, tx, created[0].Email)
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("EmailExists: expected true")
	}

	exists, err = repo.EmailExists(ctx, tx, "does-not-exist@example.com")
	if err != nil {
		t.Fatalf("EmailExists (missing): %v", err)
	}
	if exists {
		t.Fatalf("EmailExists (missing): expected false")
	}

	if err := repo.UpdateAvatarFields(ctx, tx, created[0].ID, "lms/avatars/a.png", "http://cdn/a.png"); err != nil {
		t.Fatalf("UpdateAvatarFields: %v", err)
	}
	gotByIDs, _ = repo.GetByIDs(ctx, tx, []uuid.UUID{created[0].ID})
	if gotByIDs[0].AvatarURL != "http://cdn/a.png" || gotByIDs[0].AvatarAssetID != "lms/avatars/a.png" {
		t.Fatalf("UpdateAvatarFields: unexpected row: %+v", gotByIDs[0])
	}
}

func TestUserRepoDuplicateEmail(t *testing.T) {
	conn := testutil.DB(t)
	repo := NewUserRepo(conn, testutil.Logger(t))
	ctx := context.Background()

	if _, err := repo.Create(ctx, nil, []*types.User{{Email: "dup@example.com", Password: "pw", FirstName: "A", LastName: "B"}}); err != nil {
		t.Fatalf("first Create: %v", err)
	}
	_, err := repo.Create(ctx, nil, []*types.User{{Email: "dup@example.com", Password: "pw", FirstName: "C", LastName: "D"}})
	if err == nil {
		t.Fatalf("second Create: expected unique violation")
	}
	if !db.IsUniqueViolation(err) {
		t.Fatalf("second Create: expected unique violation, got %v", err)
	}
}
