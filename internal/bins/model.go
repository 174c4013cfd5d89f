// Package bins cuida das lixeiras: cadastro, nível de enchimento, busca por proximidade e estatísticas.
package bins

import (
	"time"

	"github.com/google/uuid"
)

// Tipos de lixeira aceitos.
var Types = []string{"general", "recyclable", "organic", "hazardous"}

// Faixas de enchimento usadas nas estatísticas.
const (
	FullLevel   = 80
	MediumLevel = 50
)

// ValidType indica se t é um tipo conhecido.
func ValidType(t string) bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

type Bin struct {
	ID               uuid.UUID  `json:"id"`
	BinCode          string     `json:"bin_code"`
	LocationName     string     `json:"location_name"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	BinType          string     `json:"bin_type"`
	CapacityLiters   int        `json:"capacity_liters"`
	CurrentFillLevel int        `json:"current_fill_level"`
	SensorStatus     string     `json:"sensor_status"`
	LastEmptied      *time.Time `json:"last_emptied"`
	InstallationDate time.Time  `json:"installation_date"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// NearbyBin acrescenta a distância até o ponto de busca.
type NearbyBin struct {
	Bin
	DistanceKm float64 `json:"distance_km"`
}

// Filter são os filtros opcionais da listagem.
type Filter struct {
	BinType      string
	FillLevelMin *int
	FillLevelMax *int
	Location     string
}

// CreateParams é o corpo de POST /api/bins.
type CreateParams struct {
	BinCode          string   `json:"bin_code"`
	LocationName     string   `json:"location_name"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	BinType          string   `json:"bin_type"`
	CapacityLiters   *int     `json:"capacity_liters"`
	CurrentFillLevel *int     `json:"current_fill_level"`
}

// UpdateParams segue merge patch: nil mantém o valor atual.
type UpdateParams struct {
	LocationName     *string  `json:"location_name"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`
	BinType          *string  `json:"bin_type"`
	CapacityLiters   *int     `json:"capacity_liters"`
	CurrentFillLevel *int     `json:"current_fill_level"`
	SensorStatus     *string  `json:"sensor_status"`
}

// TypeCounts conta lixeiras ativas por tipo.
type TypeCounts struct {
	General    int64 `json:"general"`
	Recyclable int64 `json:"recyclable"`
	Organic    int64 `json:"organic"`
	Hazardous  int64 `json:"hazardous"`
}

// Statistics é a visão agregada das lixeiras ativas.
type Statistics struct {
	TotalBins        int64      `json:"total_bins"`
	FullBins         int64      `json:"full_bins"`
	MediumBins       int64      `json:"medium_bins"`
	EmptyBins        int64      `json:"empty_bins"`
	ActiveSensors    int64      `json:"active_sensors"`
	InactiveSensors  int64      `json:"inactive_sensors"`
	AverageFillLevel float64    `json:"average_fill_level"`
	BinTypes         TypeCounts `json:"bin_types"`
}
