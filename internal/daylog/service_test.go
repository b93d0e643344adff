package daylog

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"daylog/internal/database"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Day{}, &database.Activity{}, &database.SpecialActivity{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func strPtr(s string) *string { return &s }

func TestReconcile_CreatesDayWithActivities(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	day, err := svc.Reconcile(ctx, ReconcileInput{
		Date:    "2025-07-07",
		TimeIn:  strPtr("09:00:00"),
		TimeOut: strPtr("17:30:00"),
		Activities: []ActivityInput{
			{Content: "Standup", Category: strPtr("Meetings"), TimeStart: strPtr("09:15:00"), TimeEnd: strPtr("09:30:00")},
			{Content: "Code review"},
		},
		SpecialActivities: []ActivityInput{
			{Content: "Production incident", TimeStart: strPtr("14:00:00")},
		},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if day.Date != "2025-07-07" {
		t.Errorf("date = %q", day.Date)
	}
	if day.TimeIn == nil || *day.TimeIn != "09:00:00" {
		t.Errorf("time_in = %v", day.TimeIn)
	}
	if len(day.Activities) != 2 {
		t.Fatalf("activities = %d, want 2", len(day.Activities))
	}
	if len(day.SpecialActivities) != 1 {
		t.Fatalf("special activities = %d, want 1", len(day.SpecialActivities))
	}
	// GetByDate orders by start time, timed rows first.
	if day.Activities[0].Content != "Standup" {
		t.Errorf("first activity = %q", day.Activities[0].Content)
	}
}

func TestReconcile_SecondSubmitUpdatesInPlace(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	first, err := svc.Reconcile(ctx, ReconcileInput{
		Date:       "2025-07-08",
		Activities: []ActivityInput{{Content: "Draft report"}},
	})
	if err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	id := first.Activities[0].ID

	second, err := svc.Reconcile(ctx, ReconcileInput{
		Date:       "2025-07-08",
		TimeIn:     strPtr("08:45:00"),
		Activities: []ActivityInput{{ID: id, Content: "Draft and send report"}},
	})
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}

	if len(second.Activities) != 1 {
		t.Fatalf("activities = %d, want 1 (update, not insert)", len(second.Activities))
	}
	if second.Activities[0].ID != id {
		t.Errorf("activity id changed: %d -> %d", id, second.Activities[0].ID)
	}
	if second.Activities[0].Content != "Draft and send report" {
		t.Errorf("content = %q", second.Activities[0].Content)
	}
	if second.TimeIn == nil || *second.TimeIn != "08:45:00" {
		t.Errorf("time_in not updated: %v", second.TimeIn)
	}
}

func TestReconcile_DeletesListedIDs(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	day, err := svc.Reconcile(ctx, ReconcileInput{
		Date: "2025-07-09",
		Activities: []ActivityInput{
			{Content: "Keep me"},
			{Content: "Drop me"},
		},
	})
	if err != nil {
		t.Fatalf("seed reconcile: %v", err)
	}

	var dropID uint
	for _, a := range day.Activities {
		if a.Content == "Drop me" {
			dropID = a.ID
		}
	}

	after, err := svc.Reconcile(ctx, ReconcileInput{
		Date:               "2025-07-09",
		DeletedActivityIDs: []uint{dropID},
	})
	if err != nil {
		t.Fatalf("delete reconcile: %v", err)
	}
	if len(after.Activities) != 1 || after.Activities[0].Content != "Keep me" {
		t.Fatalf("unexpected surviving activities: %+v", after.Activities)
	}
}

func TestReconcile_StaleIDFallsBackToInsert(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	day, err := svc.Reconcile(ctx, ReconcileInput{
		Date:       "2025-07-10",
		Activities: []ActivityInput{{ID: 9999, Content: "Recreated row"}},
	})
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(day.Activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(day.Activities))
	}
	if day.Activities[0].ID == 9999 {
		t.Error("stale id must not be preserved on insert")
	}
}

func TestReconcile_ValidationRejectsBeforeWrite(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name string
		in   ReconcileInput
		want error
	}{
		{"bad date", ReconcileInput{Date: "07/07/2025"}, ErrInvalidDate},
		{"bad time", ReconcileInput{Date: "2025-07-11", TimeIn: strPtr("9am")}, ErrInvalidTime},
		{"empty content", ReconcileInput{Date: "2025-07-11", Activities: []ActivityInput{{Content: ""}}}, ErrEmptyContent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Reconcile(ctx, tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	// No partial Day row may exist after the rejections.
	if _, err := svc.GetByDate(ctx, "2025-07-11"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("day was created despite validation failure: %v", err)
	}
}

func TestDeleteDay_RemovesChildrenAndAllowsRecreate(t *testing.T) {
	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	if _, err := svc.Reconcile(ctx, ReconcileInput{
		Date:              "2025-07-12",
		Activities:        []ActivityInput{{Content: "a"}},
		SpecialActivities: []ActivityInput{{Content: "b"}},
	}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.DeleteDay(ctx, "2025-07-12"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.GetByDate(ctx, "2025-07-12"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("day still readable after delete: %v", err)
	}

	var orphans int64
	if err := db.Model(&database.Activity{}).Count(&orphans).Error; err != nil {
		t.Fatalf("count activities: %v", err)
	}
	if orphans != 0 {
		t.Errorf("orphaned activities = %d", orphans)
	}

	// The unique date slot must be reusable after a hard delete.
	if _, err := svc.Reconcile(ctx, ReconcileInput{Date: "2025-07-12"}); err != nil {
		t.Fatalf("recreate after delete: %v", err)
	}
}

func TestDeleteDay_MissingDate(t *testing.T) {
	svc := NewService(newTestDB(t))
	if err := svc.DeleteDay(context.Background(), "2025-01-01"); !errors.Is(err, ErrDayNotFound) {
		t.Fatalf("err = %v, want ErrDayNotFound", err)
	}
}

func TestListRange_ReturnsOnlyLoggedDaysInOrder(t *testing.T) {
	svc := NewService(newTestDB(t))
	ctx := context.Background()

	for _, date := range []string{"2025-07-03", "2025-07-01"} {
		if _, err := svc.Reconcile(ctx, ReconcileInput{Date: date}); err != nil {
			t.Fatalf("seed %s: %v", date, err)
		}
	}

	days, err := svc.ListRange(ctx, "2025-07-01", "2025-07-05")
	if err != nil {
		t.Fatalf("list range: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	if days[0].Date != "2025-07-01" || days[1].Date != "2025-07-03" {
		t.Errorf("order = %s, %s", days[0].Date, days[1].Date)
	}
}
