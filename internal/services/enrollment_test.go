package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/lms-backend/internal/data/repos/testutil"
	types "github.com/yungbote/lms-backend/internal/domain"
)

func TestEnrollmentCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, f.db, "owner@example.com", types.RoleAdmin)
	student := testutil.SeedUser(t, ctx, f.db, "student@example.com", types.RoleStudent)
	draft := testutil.SeedCourse(t, ctx, f.db, owner.ID, types.CourseStatusDraft)
	published := testutil.SeedCourse(t, ctx, f.db, owner.ID, types.CourseStatusPublished)

	_, err := f.enrollments.Create(ctx, student.ID, draft.ID.String())
	wantKind(t, err, http.StatusBadRequest)
	wantMessage(t, err, "Cannot enroll in unpublished course")

	_, err = f.enrollments.Create(ctx, student.ID, uuid.NewString())
	wantKind(t, err, http.StatusNotFound)

	before, err := f.enrollments.IsEnrolled(ctx, student.ID, published.ID)
	if err != nil || before {
		t.Fatalf("should not be enrolled yet: %v", err)
	}

	e, err := f.enrollments.Create(ctx, student.ID, published.ID.String())
	if err != nil {
		t.Fatalf("enroll: %v", err)
	}
	if e.Progress != 0 || e.Status != types.EnrollmentActive || len(e.CompletedLessons) != 0 {
		t.Fatalf("unexpected defaults: %+v", e)
	}

	after, err := f.enrollments.IsEnrolled(ctx, student.ID, published.ID)
	if err != nil || !after {
		t.Fatalf("should be enrolled: %v", err)
	}

	_, err = f.enrollments.Create(ctx, student.ID, published.ID.String())
	wantKind(t, err, http.StatusConflict)
	wantMessage(t, err, "Already enrolled in this course")
}

func TestEnrollmentProgressAndRemoval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, f.db, "owner@example.com", types.RoleAdmin)
	student := testutil.SeedUser(t, ctx, f.db, "student@example.com", types.RoleStudent)
	course := testutil.SeedCourse(t, ctx, f.db, owner.ID, types.CourseStatusPublished)
	courseID := course.ID.String()

	_, err := f.enrollments.UpdateProgress(ctx, student.ID, courseID, UpdateEnrollmentInput{Progress: ptr(10)})
	wantKind(t, err, http.StatusNotFound)
	wantMessage(t, err, "Enrollment not found")

	testutil.SeedEnrollment(t, ctx, f.db, student.ID, course.ID)

	_, err = f.enrollments.UpdateProgress(ctx, student.ID, courseID, UpdateEnrollmentInput{Progress: ptr(101)})
	wantKind(t, err, http.StatusBadRequest)
	_, err = f.enrollments.UpdateProgress(ctx, student.ID, courseID, UpdateEnrollmentInput{Status: ptr("paused")})
	wantKind(t, err, http.StatusBadRequest)

	lessonID := uuid.New()
	updated, err := f.enrollments.UpdateProgress(ctx, student.ID, courseID, UpdateEnrollmentInput{
		Progress:         ptr(100),
		Status:           ptr(types.EnrollmentCompleted),
		CompletedLessons: &[]uuid.UUID{lessonID, lessonID},
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Progress != 100 || updated.Status != types.EnrollmentCompleted {
		t.Fatalf("unexpected enrollment: %+v", updated)
	}
	if len(updated.CompletedLessons) != 1 || updated.CompletedLessons[0] != lessonID {
		t.Fatalf("completed lessons not stored: %+v", updated.CompletedLessons)
	}

	mine, err := f.enrollments.FindByStudent(ctx, student.ID)
	if err != nil || len(mine) != 1 || mine[0].Course == nil {
		t.Fatalf("expected one enrollment with course, got %v %+v", err, mine)
	}

	res, err := f.enrollments.Remove(ctx, student.ID, courseID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if res.Message != "Successfully unenrolled from course" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	_, err = f.enrollments.FindOne(ctx, student.ID, courseID)
	wantKind(t, err, http.StatusNotFound)
	_, err = f.enrollments.Remove(ctx, student.ID, courseID)
	wantKind(t, err, http.StatusNotFound)
}
