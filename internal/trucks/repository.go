package trucks

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestaozabele/coleta/internal/db"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
)

const dbTimeout = 3 * time.Second

const truckColumns = `id, truck_number, driver_name, driver_phone, capacity_liters, fuel_efficiency,
	current_location_lat, current_location_lng, status, last_maintenance_date, next_maintenance_date,
	is_active, created_at, updated_at`

// Repository fornece acesso à tabela collection_trucks.
type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func scanTruck(row pgx.Row) (Truck, error) {
	var t Truck
	err := row.Scan(
		&t.ID, &t.TruckNumber, &t.DriverName, &t.DriverPhone, &t.CapacityLiters, &t.FuelEfficiency,
		&t.CurrentLocationLat, &t.CurrentLocationLng, &t.Status, &t.LastMaintenanceDate, &t.NextMaintenanceDate,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Truck{}, repo.ErrNotFound
	}
	return t, err
}

// List devolve caminhões ativos, mais recentes primeiro.
func (r *Repository) List(ctx context.Context, f Filter, page query.Page) (query.Result[Truck], error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	b := query.New("collection_trucks", "is_active = true").
		Where("status = ?", f.Status)

	return query.Run(ctx, r.db, b, truckColumns, "created_at DESC", page, scanTruck)
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanTruck(r.db.QueryRow(ctx, `SELECT `+truckColumns+` FROM collection_trucks WHERE id = $1`, id))
}

// Create insere o caminhão; número repetido vira repo.ErrConflict.
func (r *Repository) Create(ctx context.Context, p CreateParams) (Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	t, err := scanTruck(r.db.QueryRow(ctx, `
		INSERT INTO collection_trucks (truck_number, driver_name, driver_phone, capacity_liters, fuel_efficiency,
			current_location_lat, current_location_lng, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, COALESCE($8, 'available'))
		RETURNING `+truckColumns,
		p.TruckNumber, p.DriverName, p.DriverPhone, p.CapacityLiters, p.FuelEfficiency,
		p.CurrentLocationLat, p.CurrentLocationLng, p.Status,
	))
	if db.IsUniqueViolation(err, "collection_trucks_truck_number_key") {
		return Truck{}, repo.ErrConflict
	}
	return t, err
}

// Update aplica merge patch.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanTruck(r.db.QueryRow(ctx, `
		UPDATE collection_trucks
		SET driver_name = COALESCE($2, driver_name),
		    driver_phone = COALESCE($3, driver_phone),
		    capacity_liters = COALESCE($4, capacity_liters),
		    fuel_efficiency = COALESCE($5, fuel_efficiency),
		    current_location_lat = COALESCE($6, current_location_lat),
		    current_location_lng = COALESCE($7, current_location_lng),
		    status = COALESCE($8, status),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+truckColumns,
		id, p.DriverName, p.DriverPhone, p.CapacityLiters, p.FuelEfficiency,
		p.CurrentLocationLat, p.CurrentLocationLng, p.Status,
	))
}

// UpdateLocation grava a posição atual do caminhão.
func (r *Repository) UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanTruck(r.db.QueryRow(ctx, `
		UPDATE collection_trucks
		SET current_location_lat = $2, current_location_lng = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+truckColumns, id, lat, lng))
}

// SoftDelete desativa o caminhão.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (Truck, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanTruck(r.db.QueryRow(ctx, `
		UPDATE collection_trucks SET is_active = false, updated_at = now()
		WHERE id = $1
		RETURNING `+truckColumns, id))
}
