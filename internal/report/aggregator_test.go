package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/daylog"
)

func newTestBuilder(t *testing.T) (*Builder, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&database.User{},
		&database.ResponsibilitiesSummary{},
		&database.Day{},
		&database.Activity{},
		&database.SpecialActivity{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewBuilder(db, daylog.NewService(db), nil), db
}

func seedUser(t *testing.T, db *gorm.DB, roles []string) database.User {
	t.Helper()
	user := database.User{Name: "Jane Doe", Email: "jane@example.com"}
	if roles != nil {
		raw, _ := json.Marshal(roles)
		user.Roles = raw
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func allSections() Options {
	return Options{
		IncludeRoles:            true,
		IncludeSchedule:         true,
		IncludeResponsibilities: true,
		IncludeContributions:    true,
		IncludeDailyLog:         true,
		IncludeConclusions:      true,
	}
}

func TestDatesInRange(t *testing.T) {
	t.Run("single day", func(t *testing.T) {
		dates, err := DatesInRange("2025-07-07", "2025-07-07")
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		if len(dates) != 1 || dates[0] != "2025-07-07" {
			t.Fatalf("dates = %v", dates)
		}
	})

	t.Run("inclusive span across month end", func(t *testing.T) {
		dates, err := DatesInRange("2025-06-29", "2025-07-02")
		if err != nil {
			t.Fatalf("err = %v", err)
		}
		want := []string{"2025-06-29", "2025-06-30", "2025-07-01", "2025-07-02"}
		if len(dates) != len(want) {
			t.Fatalf("dates = %v", dates)
		}
		for i := range want {
			if dates[i] != want[i] {
				t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
			}
		}
	})

	t.Run("reversed range", func(t *testing.T) {
		if _, err := DatesInRange("2025-07-07", "2025-07-01"); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("err = %v, want ErrInvalidRange", err)
		}
	})

	t.Run("malformed date", func(t *testing.T) {
		if _, err := DatesInRange("07/01/2025", "2025-07-07"); !errors.Is(err, ErrInvalidRange) {
			t.Fatalf("err = %v, want ErrInvalidRange", err)
		}
	})
}

func TestBuild_UserNotFound(t *testing.T) {
	builder, _ := newTestBuilder(t)
	_, err := builder.Build(context.Background(), 42, "2025-07-01", "2025-07-07", Options{}, Sections{})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestBuild_SectionsGatedByFlagAndData(t *testing.T) {
	builder, db := newTestBuilder(t)
	user := seedUser(t, db, []string{"Engineer", "Mentor"})
	ctx := context.Background()

	sections := Sections{
		Title:         "July Report",
		Contributions: []Contribution{{Title: "Migration", Content: "Moved the data"}},
		Conclusions:   "A good month.",
	}

	t.Run("all flags on", func(t *testing.T) {
		doc, err := builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", allSections(), sections)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if doc.Title != "July Report" {
			t.Errorf("title = %q", doc.Title)
		}
		if doc.Role != "Engineer" || len(doc.Roles) != 2 {
			t.Errorf("roles = %v role = %q", doc.Roles, doc.Role)
		}
		if len(doc.Contributions) != 1 || doc.Conclusions == "" {
			t.Errorf("contributions/conclusions missing: %+v", doc)
		}
	})

	t.Run("flags off suppress populated data", func(t *testing.T) {
		doc, err := builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", Options{}, sections)
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if doc.Roles != nil || doc.Contributions != nil || doc.Conclusions != "" || doc.DailyLog != nil {
			t.Errorf("sections leaked past disabled flags: %+v", doc)
		}
	})

	t.Run("default title", func(t *testing.T) {
		doc, err := builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", Options{}, Sections{})
		if err != nil {
			t.Fatalf("build: %v", err)
		}
		if doc.Title != "Activity Report" {
			t.Errorf("title = %q", doc.Title)
		}
	})
}

func TestBuild_DailyLogSkipsUnloggedDates(t *testing.T) {
	builder, db := newTestBuilder(t)
	user := seedUser(t, db, nil)
	ctx := context.Background()

	days := daylog.NewService(db)
	for _, date := range []string{"2025-07-02", "2025-07-04"} {
		if _, err := days.Reconcile(ctx, daylog.ReconcileInput{
			Date:       date,
			Activities: []daylog.ActivityInput{{Content: "work on " + date}},
		}); err != nil {
			t.Fatalf("seed day %s: %v", date, err)
		}
	}

	doc, err := builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", Options{IncludeDailyLog: true}, Sections{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(doc.DailyLog) != 2 {
		t.Fatalf("daily log = %d entries, want 2", len(doc.DailyLog))
	}
	if doc.DailyLog[0].Date != "2025-07-02" || doc.DailyLog[1].Date != "2025-07-04" {
		t.Errorf("daily log order = %s, %s", doc.DailyLog[0].Date, doc.DailyLog[1].Date)
	}
	if doc.HasDailyLog() != true {
		t.Error("HasDailyLog = false")
	}
}

func TestBuild_EmptyRangeStillRenders(t *testing.T) {
	builder, db := newTestBuilder(t)
	user := seedUser(t, db, nil)

	doc, err := builder.Build(context.Background(), user.ID, "2025-07-01", "2025-07-07", Options{IncludeDailyLog: true}, Sections{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.HasDailyLog() {
		t.Error("HasDailyLog = true for empty range")
	}
	if doc.PeriodLabel != "July 1, 2025 to July 7, 2025" {
		t.Errorf("period label = %q", doc.PeriodLabel)
	}
}

func TestBuild_ResponsibilitiesFallbackAndPersist(t *testing.T) {
	builder, db := newTestBuilder(t)
	user := seedUser(t, db, nil)
	ctx := context.Background()
	opts := Options{IncludeResponsibilities: true, SaveResponsibilities: true}

	// First export supplies the text and saves it.
	doc, err := builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", opts, Sections{Responsibilities: "Keep the lights on"})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.Responsibilities != "Keep the lights on" {
		t.Errorf("responsibilities = %q", doc.Responsibilities)
	}

	// Second export supplies nothing and falls back to the stored summary.
	doc, err = builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", opts, Sections{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if doc.Responsibilities != "Keep the lights on" {
		t.Errorf("fallback responsibilities = %q", doc.Responsibilities)
	}

	// A later export with different text must not overwrite the stored one.
	if _, err := builder.Build(ctx, user.ID, "2025-07-01", "2025-07-07", opts, Sections{Responsibilities: "Different text"}); err != nil {
		t.Fatalf("build: %v", err)
	}
	var count int64
	if err := db.Model(&database.ResponsibilitiesSummary{}).Where("user_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("stored summaries = %d, want 1", count)
	}
}
