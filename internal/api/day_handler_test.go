package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"daylog/internal/database"
	"daylog/internal/daylog"
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

func performDayRequest(t *testing.T, h *DayHandler, method, date string, body any, handler gin.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewBuffer(raw)
	} else {
		reader = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, "/v1/days/"+date, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = gin.Params{{Key: "date", Value: date}}
	c.Set("userID", uint(1))

	handler(c)
	c.Writer.WriteHeaderNow()
	return w
}

func TestSaveDay_RoundTrip(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDayHandler(daylog.NewService(newTestDB(t)))

	timeIn := "09:00:00"
	w := performDayRequest(t, h, http.MethodPut, "2025-07-07", saveDayRequest{
		TimeIn: &timeIn,
		Activities: []daylog.ActivityInput{
			{Content: "Standup"},
		},
	}, h.SaveDay)

	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d body=%s", w.Code, w.Body.String())
	}

	var saved dayResponse
	if err := json.Unmarshal(w.Body.Bytes(), &saved); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if saved.Date != "2025-07-07" || len(saved.Activities) != 1 {
		t.Fatalf("unexpected response: %+v", saved)
	}

	w = performDayRequest(t, h, http.MethodGet, "2025-07-07", nil, h.GetDay)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestSaveDay_RejectsBadInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDayHandler(daylog.NewService(newTestDB(t)))

	w := performDayRequest(t, h, http.MethodPut, "07-07-2025", saveDayRequest{}, h.SaveDay)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad date status = %d", w.Code)
	}

	w = performDayRequest(t, h, http.MethodPut, "2025-07-07", saveDayRequest{
		Activities: []daylog.ActivityInput{{Content: ""}},
	}, h.SaveDay)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty content status = %d", w.Code)
	}
}

func TestGetDay_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDayHandler(daylog.NewService(newTestDB(t)))

	w := performDayRequest(t, h, http.MethodGet, "2025-01-01", nil, h.GetDay)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestDeleteDay_ThenGetReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewDayHandler(daylog.NewService(newTestDB(t)))

	w := performDayRequest(t, h, http.MethodPut, "2025-07-07", saveDayRequest{}, h.SaveDay)
	if w.Code != http.StatusOK {
		t.Fatalf("seed status = %d", w.Code)
	}

	w = performDayRequest(t, h, http.MethodDelete, "2025-07-07", nil, h.DeleteDay)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	w = performDayRequest(t, h, http.MethodGet, "2025-07-07", nil, h.GetDay)
	if w.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d", w.Code)
	}
}
