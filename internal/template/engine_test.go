package template

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/daylog"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&database.LogTemplate{}, &database.ExportTemplate{}))
	return NewEngine(db)
}

func strPtr(s string) *string { return &s }

func standardShift() Snapshot {
	return Snapshot{
		DayData: DayData{
			TimeIn:  strPtr("09:00:00"),
			TimeOut: strPtr("17:30:00"),
		},
		Activities: []daylog.ActivityInput{
			{Content: "Morning standup", Category: strPtr("Meetings"), TimeStart: strPtr("09:15:00"), TimeEnd: strPtr("09:30:00")},
			{Content: "Ticket triage"},
		},
		SpecialActivities: []daylog.ActivityInput{
			{Content: "On-call handover"},
		},
	}
}

func TestCreateAndApply_RoundTrip(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	id, err := engine.Create(ctx, KindLog, "Standard Shift", strPtr("Regular office day"), "#3388ff", standardShift())
	require.NoError(t, err)

	snap, err := engine.Apply(ctx, KindLog, id)
	require.NoError(t, err)
	require.Equal(t, SnapshotVersion, snap.Version)
	require.Equal(t, "09:00:00", *snap.DayData.TimeIn)
	require.Len(t, snap.Activities, 2)
	require.Len(t, snap.SpecialActivities, 1)
	require.Equal(t, "Morning standup", snap.Activities[0].Content)
}

func TestCreate_RequiresName(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Create(context.Background(), KindLog, "", nil, "", standardShift())
	require.ErrorIs(t, err, ErrNameRequired)
}

func TestCreate_RejectsInvalidSnapshot(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	bad := standardShift()
	bad.Activities = append(bad.Activities, daylog.ActivityInput{Content: ""})
	_, err := engine.Create(ctx, KindLog, "Broken", nil, "", bad)
	require.ErrorIs(t, err, ErrInvalidSnapshot)

	badTime := standardShift()
	badTime.DayData.TimeIn = strPtr("9am")
	_, err = engine.Create(ctx, KindLog, "Broken", nil, "", badTime)
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestCreateFromJSON_MalformedBlob(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.CreateFromJSON(context.Background(), KindExport, "Raw", nil, "", []byte(`{"dayData": [1,2,3]}`))
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestApply_MissingTemplate(t *testing.T) {
	engine := newTestEngine(t)
	_, err := engine.Apply(context.Background(), KindLog, 42)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestUnknownKind(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Create(ctx, Kind("weekly"), "X", nil, "", standardShift())
	require.ErrorIs(t, err, ErrUnknownKind)

	_, err = engine.List(ctx, Kind("weekly"))
	require.ErrorIs(t, err, ErrUnknownKind)
}

func TestList_MetadataOnly(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	_, err := engine.Create(ctx, KindExport, "Monthly", nil, "#ff0000", standardShift())
	require.NoError(t, err)

	items, err := engine.List(ctx, KindExport)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "Monthly", items[0].Name)
	require.NotEmpty(t, items[0].CreatedAt)
	// Snapshot decoding is deferred to Apply.
	require.Zero(t, items[0].Snapshot.Version)

	// The other kind's table stays untouched.
	logItems, err := engine.List(ctx, KindLog)
	require.NoError(t, err)
	require.Empty(t, logItems)
}

func TestDeleteBatch_ReportsIndependentOutcomes(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	first, err := engine.Create(ctx, KindLog, "A", nil, "", standardShift())
	require.NoError(t, err)
	second, err := engine.Create(ctx, KindLog, "B", nil, "", standardShift())
	require.NoError(t, err)

	result, err := engine.DeleteBatch(ctx, KindLog, []uint{first, 9999, second})
	require.NoError(t, err)
	require.Equal(t, 2, result.Succeeded)
	require.Equal(t, 1, result.Failed)

	items, err := engine.List(ctx, KindLog)
	require.NoError(t, err)
	require.Empty(t, items)
}
