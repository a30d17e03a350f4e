package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/ayush112812/disaster-response-platform-sub001/internal/models"
)

func setupTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testDisaster(id string) *models.Disaster {
	now := time.Now().UTC().Truncate(time.Second)
	return &models.Disaster{
		ID:           id,
		Title:        "Riverside flooding",
		LocationName: "Riverside, CA",
		Latitude:     33.95,
		Longitude:    -117.39,
		Description:  "River breached its banks overnight",
		Tags:         []string{"flood", "evacuation"},
		Severity:     models.DisasterSeverityHigh,
		Status:       models.DisasterStatusActive,
		OwnerID:      "user_1",
		AuditTrail:   []models.AuditEntry{{Action: "create", UserID: "user_1", Timestamp: now}},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestSQLiteDB_CreateAndGetDisaster(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.CreateDisaster(ctx, testDisaster("d1")); err != nil {
		t.Fatalf("CreateDisaster failed: %v", err)
	}

	got, err := db.GetDisaster(ctx, "d1")
	if err != nil {
		t.Fatalf("GetDisaster failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected disaster, got nil")
	}
	if got.Title != "Riverside flooding" {
		t.Errorf("unexpected title %q", got.Title)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "flood" {
		t.Errorf("tags did not round-trip: %v", got.Tags)
	}
	if len(got.AuditTrail) != 1 || got.AuditTrail[0].Action != "create" {
		t.Errorf("audit trail did not round-trip: %v", got.AuditTrail)
	}
}

func TestSQLiteDB_GetDisaster_Missing(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetDisaster(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetDisaster failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing id, got %+v", got)
	}
}

func TestSQLiteDB_ListDisasters_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	active := testDisaster("d1")
	resolved := testDisaster("d2")
	resolved.Status = models.DisasterStatusResolved
	resolved.Severity = models.DisasterSeverityLow
	resolved.Tags = []string{"earthquake"}

	for _, d := range []*models.Disaster{active, resolved} {
		if err := db.CreateDisaster(ctx, d); err != nil {
			t.Fatalf("CreateDisaster failed: %v", err)
		}
	}

	got, err := db.ListDisasters(ctx, Filter{Status: models.DisasterStatusActive})
	if err != nil {
		t.Fatalf("ListDisasters failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("status filter: expected [d1], got %v", got)
	}

	got, err = db.ListDisasters(ctx, Filter{Tag: "earthquake"})
	if err != nil {
		t.Fatalf("ListDisasters failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d2" {
		t.Errorf("tag filter: expected [d2], got %v", got)
	}

	got, err = db.ListDisasters(ctx, Filter{Severity: models.DisasterSeverityHigh})
	if err != nil {
		t.Fatalf("ListDisasters failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("severity filter: expected [d1], got %v", got)
	}
}

func TestSQLiteDB_ActiveDisasters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	active := testDisaster("d1")
	contained := testDisaster("d2")
	contained.Status = models.DisasterStatusContained

	db.CreateDisaster(ctx, active)
	db.CreateDisaster(ctx, contained)

	got, err := db.ActiveDisasters(ctx)
	if err != nil {
		t.Fatalf("ActiveDisasters failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != "d1" {
		t.Errorf("expected only the active disaster, got %v", got)
	}
}

func TestSQLiteDB_UpdateDisaster(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	d := testDisaster("d1")
	db.CreateDisaster(ctx, d)

	d.Status = models.DisasterStatusResolved
	d.UpdatedAt = time.Now().UTC()
	if err := db.UpdateDisaster(ctx, d); err != nil {
		t.Fatalf("UpdateDisaster failed: %v", err)
	}

	got, _ := db.GetDisaster(ctx, "d1")
	if got.Status != models.DisasterStatusResolved {
		t.Errorf("expected resolved, got %q", got.Status)
	}

	missing := testDisaster("ghost")
	if err := db.UpdateDisaster(ctx, missing); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for missing row, got %v", err)
	}
}

func TestSQLiteDB_DeleteDisaster(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	db.CreateDisaster(ctx, testDisaster("d1"))

	if err := db.DeleteDisaster(ctx, "d1"); err != nil {
		t.Fatalf("DeleteDisaster failed: %v", err)
	}
	if got, _ := db.GetDisaster(ctx, "d1"); got != nil {
		t.Error("expected disaster gone after delete")
	}
	if err := db.DeleteDisaster(ctx, "d1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows for second delete, got %v", err)
	}
}

func TestSQLiteDB_ResourcesRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	db.CreateDisaster(ctx, testDisaster("d1"))

	r := &models.Resource{
		ID:         "r1",
		DisasterID: "d1",
		Name:       "Lincoln High Shelter",
		Type:       "shelter",
		Quantity:   300,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.CreateResource(ctx, r); err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}

	got, err := db.ListResources(ctx, "d1")
	if err != nil {
		t.Fatalf("ListResources failed: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Lincoln High Shelter" {
		t.Errorf("unexpected resources %v", got)
	}

	if err := db.DeleteResource(ctx, "r1"); err != nil {
		t.Fatalf("DeleteResource failed: %v", err)
	}
	if err := db.DeleteResource(ctx, "r1"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestSQLiteDB_ReportsRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	db.CreateDisaster(ctx, testDisaster("d1"))

	r := &models.Report{
		ID:                 "rep1",
		DisasterID:         "d1",
		UserID:             "user_2",
		Content:            "Water level still rising on 5th street",
		VerificationStatus: models.VerificationPending,
		CreatedAt:          time.Now().UTC(),
	}
	if err := db.CreateReport(ctx, r); err != nil {
		t.Fatalf("CreateReport failed: %v", err)
	}

	if err := db.UpdateReportStatus(ctx, "rep1", models.VerificationVerified); err != nil {
		t.Fatalf("UpdateReportStatus failed: %v", err)
	}

	got, err := db.ListReports(ctx, "d1")
	if err != nil {
		t.Fatalf("ListReports failed: %v", err)
	}
	if len(got) != 1 || got[0].VerificationStatus != models.VerificationVerified {
		t.Errorf("unexpected reports %v", got)
	}

	if err := db.UpdateReportStatus(ctx, "ghost", models.VerificationRejected); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected ErrNoRows, got %v", err)
	}
}

func TestSQLiteDB_ChangeFeed(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db.StartFeed(ctx)

	events := make(chan ChangeEvent, 16)
	unsub := db.SubscribeChanges(TableDisasters, func(evt ChangeEvent) {
		events <- evt
	})
	defer unsub()

	d := testDisaster("d1")
	if err := db.CreateDisaster(ctx, d); err != nil {
		t.Fatalf("CreateDisaster failed: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Op != ChangeInsert || evt.Table != TableDisasters {
			t.Errorf("unexpected event %+v", evt)
		}
		if evt.New["id"] != "d1" {
			t.Errorf("expected opaque row with id d1, got %v", evt.New)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("change event never delivered")
	}

	d.Status = models.DisasterStatusResolved
	if err := db.UpdateDisaster(ctx, d); err != nil {
		t.Fatalf("UpdateDisaster failed: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Op != ChangeUpdate {
			t.Errorf("expected update event, got %+v", evt)
		}
		if evt.New["status"] != "resolved" {
			t.Errorf("expected new row state, got %v", evt.New)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("update event never delivered")
	}

	if err := db.DeleteDisaster(ctx, "d1"); err != nil {
		t.Fatalf("DeleteDisaster failed: %v", err)
	}

	select {
	case evt := <-events:
		if evt.Op != ChangeDelete {
			t.Errorf("expected delete event, got %+v", evt)
		}
		if evt.Old["id"] != "d1" {
			t.Errorf("expected old row state, got %v", evt.Old)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("delete event never delivered")
	}
}

func TestSQLiteDB_ChangeFeed_Unsubscribe(t *testing.T) {
	db := setupTestDB(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db.StartFeed(ctx)

	events := make(chan ChangeEvent, 16)
	unsub := db.SubscribeChanges(TableReports, func(evt ChangeEvent) {
		events <- evt
	})
	unsub()

	db.CreateDisaster(ctx, testDisaster("d1"))
	db.CreateReport(ctx, &models.Report{
		ID: "rep1", DisasterID: "d1", Content: "x",
		VerificationStatus: models.VerificationPending, CreatedAt: time.Now(),
	})

	select {
	case evt := <-events:
		t.Errorf("unsubscribed callback still invoked: %+v", evt)
	case <-time.After(200 * time.Millisecond):
	}
}
