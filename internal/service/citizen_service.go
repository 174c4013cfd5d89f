package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/util"
)

// ErrCitizenNotFound também responde a ids malformados.
var ErrCitizenNotFound = apperr.NotFound("Citizen not found", "No citizen found with the provided ID")

// CitizenService cobre a gestão de perfis após o cadastro.
type CitizenService struct {
	repo citizenRepository
}

func NewCitizenService(r *repo.Queries) *CitizenService {
	return &CitizenService{repo: r}
}

// UpdateCitizenInput é o corpo de PUT /api/citizens/{id}; campos ausentes ficam como estão.
type UpdateCitizenInput struct {
	FirstName  *string  `json:"first_name"`
	LastName   *string  `json:"last_name"`
	Phone      *string  `json:"phone"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	PostalCode *string  `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

func (s *CitizenService) Get(ctx context.Context, id uuid.UUID) (repo.Citizen, error) {
	citizen, err := s.repo.GetCitizenByID(ctx, id)
	if err != nil {
		return repo.Citizen{}, mapCitizenErr(err, "Failed to retrieve citizen")
	}
	return citizen, nil
}

func (s *CitizenService) List(ctx context.Context, filter repo.CitizenFilter, page query.Page) (query.Result[repo.Citizen], error) {
	if filter.Role != "" && !repo.ValidRole(filter.Role) {
		return query.Result[repo.Citizen]{}, apperr.Validation("Role must be one of: citizen, operator, admin")
	}
	res, err := s.repo.ListCitizens(ctx, filter, page)
	if err != nil {
		return query.Result[repo.Citizen]{}, apperr.Internal("Failed to retrieve citizens", err)
	}
	return res, nil
}

// Update exige que o autor seja o próprio cidadão ou da equipe.
func (s *CitizenService) Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in UpdateCitizenInput) (repo.Citizen, error) {
	if err := ValidateCitizenAccess(actor, id); err != nil {
		return repo.Citizen{}, apperr.Forbidden("Access denied", "You can only update your own profile")
	}
	if err := validateCitizenUpdate(in); err != nil {
		return repo.Citizen{}, err
	}

	citizen, err := s.repo.UpdateCitizen(ctx, id, repo.UpdateCitizenParams{
		FirstName:  trimPtr(in.FirstName),
		LastName:   trimPtr(in.LastName),
		Phone:      in.Phone,
		Address:    in.Address,
		City:       in.City,
		PostalCode: in.PostalCode,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
	})
	if err != nil {
		return repo.Citizen{}, mapCitizenErr(err, "Failed to update citizen")
	}
	return citizen, nil
}

func (s *CitizenService) Deactivate(ctx context.Context, id uuid.UUID) (repo.Citizen, error) {
	citizen, err := s.repo.DeactivateCitizen(ctx, id)
	if err != nil {
		return repo.Citizen{}, mapCitizenErr(err, "Failed to deactivate citizen")
	}
	return citizen, nil
}

func mapCitizenErr(err error, message string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrCitizenNotFound
	}
	return apperr.Internal(message, err)
}

func validateRegister(in RegisterInput) error {
	var c util.Checker
	c.Check(util.ValidateEmail(in.Email) == nil, "Valid email is required")
	c.Check(util.ValidatePassword(in.Password) == nil, "Password must be at least 6 characters long")
	c.Check(util.MinLength(in.FirstName, 2), "First name is required and must be at least 2 characters")
	c.Check(util.MinLength(in.LastName, 2), "Last name is required and must be at least 2 characters")
	if in.Phone != nil && *in.Phone != "" {
		c.Check(util.ValidatePhone(*in.Phone) == nil, "Invalid phone number format")
	}
	checkOptionalCoordinates(&c, in.Latitude, in.Longitude)
	return c.Err()
}

func validateCitizenUpdate(in UpdateCitizenInput) error {
	var c util.Checker
	if in.FirstName != nil {
		c.Check(util.MinLength(*in.FirstName, 2), "First name must be at least 2 characters")
	}
	if in.LastName != nil {
		c.Check(util.MinLength(*in.LastName, 2), "Last name must be at least 2 characters")
	}
	if in.Phone != nil && *in.Phone != "" {
		c.Check(util.ValidatePhone(*in.Phone) == nil, "Invalid phone number format")
	}
	checkOptionalCoordinates(&c, in.Latitude, in.Longitude)
	return c.Err()
}

func checkOptionalCoordinates(c *util.Checker, lat, lng *float64) {
	if lat == nil && lng == nil {
		return
	}
	latVal, lngVal := 0.0, 0.0
	if lat != nil {
		latVal = *lat
	}
	if lng != nil {
		lngVal = *lng
	}
	c.Check(util.ValidCoordinates(latVal, lngVal), "Invalid coordinates")
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}
