package trucks

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/db/dbtest"
	"github.com/gestaozabele/coleta/internal/query"
)

func truckRow(id uuid.UUID, number string) []any {
	now := time.Date(2026, 2, 3, 9, 0, 0, 0, time.UTC)
	return []any{
		id, number, "João Lima", nil, 12000, 4.5,
		nil, nil, "available", nil, nil,
		true, now, now,
	}
}

func fptr(v float64) *float64 { return &v }
func iptr(v int) *int         { return &v }

func TestListFiltersByStatus(t *testing.T) {
	q := &dbtest.Querier{}
	q.Push([]any{int64(1)})
	q.Push(truckRow(uuid.New(), "CT-001"))

	res, err := NewService(NewRepository(q)).List(context.Background(), Filter{Status: "maintenance"}, query.NewPage(1, 10))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].FuelEfficiency == nil || *res.Items[0].FuelEfficiency != 4.5 {
		t.Fatalf("unexpected items %+v", res.Items)
	}
	if q.Calls[0].SQL != "SELECT COUNT(*) FROM collection_trucks WHERE is_active = true AND status = $1" {
		t.Fatalf("unexpected count sql %q", q.Calls[0].SQL)
	}
}

func TestCreateDuplicateNumber(t *testing.T) {
	q := &dbtest.Querier{}
	q.PushErr(&pgconn.PgError{Code: "23505", ConstraintName: "collection_trucks_truck_number_key"})

	_, err := NewService(NewRepository(q)).Create(context.Background(), CreateParams{
		TruckNumber: "CT-001", DriverName: "João", CapacityLiters: iptr(12000),
	})
	appErr := apperr.As(err)
	if appErr.Kind != apperr.KindConflict || appErr.Summary != "Truck number already exists" {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	q := &dbtest.Querier{}
	_, err := NewService(NewRepository(q)).Create(context.Background(), CreateParams{
		TruckNumber: "C1", DriverName: "J", CapacityLiters: iptr(500), FuelEfficiency: fptr(60),
	})
	appErr := apperr.As(err)
	if appErr.Kind != apperr.KindValidation || len(appErr.Details) != 4 {
		t.Fatalf("expected 4 validation details, got %v", appErr.Details)
	}
	if len(q.Calls) != 0 {
		t.Fatal("invalid input must not reach the store")
	}
}

func TestUpdateLocation(t *testing.T) {
	q := &dbtest.Querier{}
	id := uuid.New()
	row := truckRow(id, "CT-002")
	row[6], row[7] = -8.1, -34.9
	q.Push(row)

	svc := NewService(NewRepository(q))
	truck, err := svc.UpdateLocation(context.Background(), id, LocationParams{Lat: fptr(-8.1), Lng: fptr(-34.9)})
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if truck.CurrentLocationLat == nil || *truck.CurrentLocationLat != -8.1 {
		t.Fatalf("unexpected truck %+v", truck)
	}
	if args := q.Last().Args; len(args) != 3 || args[1] != -8.1 {
		t.Fatalf("unexpected args %v", args)
	}

	if _, err := svc.UpdateLocation(context.Background(), id, LocationParams{Lat: fptr(-8.1)}); apperr.As(err).Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := svc.UpdateLocation(context.Background(), id, LocationParams{Lat: fptr(100), Lng: fptr(0)}); apperr.As(err).Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeleteMissingTruck(t *testing.T) {
	q := &dbtest.Querier{}
	q.Push()

	_, err := NewService(NewRepository(q)).Delete(context.Background(), uuid.New())
	appErr := apperr.As(err)
	if appErr.Kind != apperr.KindNotFound || appErr.Summary != "Truck not found" {
		t.Fatalf("expected not found, got %v", err)
	}
}
