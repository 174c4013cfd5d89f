// Package trucks mantém a frota de caminhões de coleta.
package trucks

import (
	"time"

	"github.com/google/uuid"
)

type Truck struct {
	ID                  uuid.UUID  `json:"id"`
	TruckNumber         string     `json:"truck_number"`
	DriverName          string     `json:"driver_name"`
	DriverPhone         *string    `json:"driver_phone"`
	CapacityLiters      int        `json:"capacity_liters"`
	FuelEfficiency      *float64   `json:"fuel_efficiency"`
	CurrentLocationLat  *float64   `json:"current_location_lat"`
	CurrentLocationLng  *float64   `json:"current_location_lng"`
	Status              string     `json:"status"`
	LastMaintenanceDate *time.Time `json:"last_maintenance_date"`
	NextMaintenanceDate *time.Time `json:"next_maintenance_date"`
	IsActive            bool       `json:"is_active"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Filter são os filtros opcionais da listagem.
type Filter struct {
	Status string
}

// CreateParams é o corpo de POST /api/trucks.
type CreateParams struct {
	TruckNumber        string   `json:"truck_number"`
	DriverName         string   `json:"driver_name"`
	DriverPhone        *string  `json:"driver_phone"`
	CapacityLiters     *int     `json:"capacity_liters"`
	FuelEfficiency     *float64 `json:"fuel_efficiency"`
	CurrentLocationLat *float64 `json:"current_location_lat"`
	CurrentLocationLng *float64 `json:"current_location_lng"`
	Status             *string  `json:"status"`
}

// UpdateParams segue merge patch: nil mantém o valor atual.
type UpdateParams struct {
	DriverName         *string  `json:"driver_name"`
	DriverPhone        *string  `json:"driver_phone"`
	CapacityLiters     *int     `json:"capacity_liters"`
	FuelEfficiency     *float64 `json:"fuel_efficiency"`
	CurrentLocationLat *float64 `json:"current_location_lat"`
	CurrentLocationLng *float64 `json:"current_location_lng"`
	Status             *string  `json:"status"`
}

// LocationParams é o corpo de PATCH /api/trucks/{id}/location.
type LocationParams struct {
	Lat *float64 `json:"current_location_lat"`
	Lng *float64 `json:"current_location_lng"`
}
