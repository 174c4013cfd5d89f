package trucks

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/util"
)

// ErrTruckNotFound também responde a ids malformados.
var ErrTruckNotFound = apperr.NotFound("Truck not found", "No collection truck found with the provided ID")

type truckRepository interface {
	List(ctx context.Context, f Filter, page query.Page) (query.Result[Truck], error)
	Get(ctx context.Context, id uuid.UUID) (Truck, error)
	Create(ctx context.Context, p CreateParams) (Truck, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Truck, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, lat, lng float64) (Truck, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (Truck, error)
}

// Service aplica as regras da frota.
type Service struct {
	repo truckRepository
}

func NewService(r *Repository) *Service {
	return &Service{repo: r}
}

func (s *Service) List(ctx context.Context, f Filter, page query.Page) (query.Result[Truck], error) {
	res, err := s.repo.List(ctx, f, page)
	if err != nil {
		return query.Result[Truck]{}, apperr.Internal("Failed to retrieve collection trucks", err)
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Truck, error) {
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return Truck{}, mapErr(err, "Failed to retrieve collection truck")
	}
	return t, nil
}

func (s *Service) Create(ctx context.Context, p CreateParams) (Truck, error) {
	p.TruckNumber = strings.TrimSpace(p.TruckNumber)
	p.DriverName = strings.TrimSpace(p.DriverName)
	if err := validateCreate(p); err != nil {
		return Truck{}, err
	}

	t, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return Truck{}, apperr.Conflict("Truck number already exists", "A collection truck with this number already exists")
		}
		return Truck{}, apperr.Internal("Failed to create collection truck", err)
	}
	log.Info().Str("truck_id", t.ID.String()).Str("truck_number", t.TruckNumber).Msg("caminhão cadastrado")
	return t, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Truck, error) {
	if err := validateUpdate(p); err != nil {
		return Truck{}, err
	}
	t, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return Truck{}, mapErr(err, "Failed to update collection truck")
	}
	return t, nil
}

// UpdateLocation exige as duas coordenadas.
func (s *Service) UpdateLocation(ctx context.Context, id uuid.UUID, p LocationParams) (Truck, error) {
	if p.Lat == nil || p.Lng == nil || !util.ValidCoordinates(*p.Lat, *p.Lng) {
		return Truck{}, apperr.Validation("Valid current_location_lat and current_location_lng are required")
	}
	t, err := s.repo.UpdateLocation(ctx, id, *p.Lat, *p.Lng)
	if err != nil {
		return Truck{}, mapErr(err, "Failed to update truck location")
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (Truck, error) {
	t, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return Truck{}, mapErr(err, "Failed to delete collection truck")
	}
	return t, nil
}

func mapErr(err error, message string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTruckNotFound
	}
	return apperr.Internal(message, err)
}

func validateCreate(p CreateParams) error {
	var c util.Checker
	c.Check(util.MinLength(p.TruckNumber, 3), "Truck number is required and must be at least 3 characters")
	c.Check(util.MinLength(p.DriverName, 2), "Driver name is required and must be at least 2 characters")
	c.Check(p.CapacityLiters != nil && *p.CapacityLiters >= 1000 && *p.CapacityLiters <= 20000,
		"Capacity must be between 1000 and 20000 liters")
	checkCommon(&c, p.DriverPhone, p.FuelEfficiency, p.CurrentLocationLat, p.CurrentLocationLng)
	if p.Status != nil {
		c.Check(strings.TrimSpace(*p.Status) != "", "Status cannot be empty")
	}
	return c.Err()
}

func validateUpdate(p UpdateParams) error {
	var c util.Checker
	if p.DriverName != nil {
		c.Check(util.MinLength(*p.DriverName, 2), "Driver name must be at least 2 characters")
	}
	if p.CapacityLiters != nil {
		c.Check(*p.CapacityLiters >= 1000 && *p.CapacityLiters <= 20000, "Capacity must be between 1000 and 20000 liters")
	}
	checkCommon(&c, p.DriverPhone, p.FuelEfficiency, p.CurrentLocationLat, p.CurrentLocationLng)
	if p.Status != nil {
		c.Check(strings.TrimSpace(*p.Status) != "", "Status cannot be empty")
	}
	return c.Err()
}

func checkCommon(c *util.Checker, phone *string, fuel, lat, lng *float64) {
	if phone != nil && *phone != "" {
		c.Check(util.ValidatePhone(*phone) == nil, "Invalid phone number format")
	}
	if fuel != nil {
		c.Check(*fuel >= 1 && *fuel <= 50, "Fuel efficiency must be between 1 and 50 km/liter")
	}
	if lat != nil {
		c.Check(*lat >= -90 && *lat <= 90, "Latitude must be between -90 and 90")
	}
	if lng != nil {
		c.Check(*lng >= -180 && *lng <= 180, "Longitude must be between -180 and 180")
	}
}
