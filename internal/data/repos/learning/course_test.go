package learning

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
)

func TestCourseRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewCourseRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "courserepo@example.com", types.RoleAdmin)
	c := &types.Course{
		InstructorID: u.ID,
		Title:        "Go in practice",
		Description:  "channels and friends",
		Price:        19.5,
	}
	if _, err := repo.Create(ctx, tx, []*types.Course{c}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if c.ID == uuid.Nil {
		t.Fatalf("Create: expected an id to be assigned")
	}
	if c.Status != types.CourseStatusDraft {
		t.Fatalf("Create: expected draft status, got %q", c.Status)
	}

	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{c.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByInstructorIDs(ctx, tx, []uuid.UUID{u.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByInstructorIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.ListByStatus(ctx, tx, types.CourseStatusPublished); err != nil || len(rows) != 0 {
		t.Fatalf("ListByStatus before publish: err=%v len=%d", err, len(rows))
	}

	updated, err := repo.Update(ctx, tx, c.ID, map[string]any{"status": types.CourseStatusPublished, "title": "Go, revisited"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated == nil || updated.Title != "Go, revisited" || !updated.IsPublished() {
		t.Fatalf("Update: unexpected row: %+v", updated)
	}
	if updated.Description != "channels and friends" {
		t.Fatalf("Update: untouched fields should keep their values, got %q", updated.Description)
	}
	if rows, err := repo.ListByStatus(ctx, tx, types.CourseStatusPublished); err != nil || len(rows) != 1 {
		t.Fatalf("ListByStatus after publish: err=%v len=%d", err, len(rows))
	}

	if missing, err := repo.Update(ctx, tx, uuid.New(), map[string]any{"title": "x"}); err != nil || missing != nil {
		t.Fatalf("Update missing: row=%v err=%v", missing, err)
	}

	if err := repo.FullDeleteByIDs(ctx, tx, []uuid.UUID{c.ID}); err != nil {
		t.Fatalf("FullDeleteByIDs: %v", err)
	}
	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{c.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after FullDeleteByIDs GetByIDs: err=%v len=%d", err, len(rows))
	}
}
