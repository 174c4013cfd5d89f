package bins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/events"
	"github.com/gestaozabele/coleta/internal/geo"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/util"
)

// DefaultRadiusKm é o raio da busca por proximidade quando não informado.
const DefaultRadiusKm = 5.0

const (
	statsCacheKey  = "bins:statistics"
	statsGenKey    = "bins:statistics:gen"
	publishTimeout = 2 * time.Second
)

// ErrBinNotFound também responde a ids malformados.
var ErrBinNotFound = apperr.NotFound("Bin not found", "No waste bin found with the provided ID")

type binRepository interface {
	List(ctx context.Context, f Filter, page query.Page) (query.Result[Bin], error)
	Get(ctx context.Context, id uuid.UUID) (Bin, error)
	Create(ctx context.Context, p CreateParams) (Bin, error)
	Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Bin, error)
	SetFillLevel(ctx context.Context, id uuid.UUID, level int) (Bin, error)
	MarkEmptied(ctx context.Context, id uuid.UUID) (Bin, error)
	SoftDelete(ctx context.Context, id uuid.UUID) (Bin, error)
	Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]NearbyBin, error)
	Statistics(ctx context.Context) (Statistics, error)
}

type statsCache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// Service aplica as regras das lixeiras.
type Service struct {
	repo     binRepository
	cache    statsCache
	cacheTTL time.Duration
	events   events.Publisher
}

// NewService cria o serviço; cache e publisher nulos desligam cache e eventos.
func NewService(r *Repository, cache *redis.Client, cacheTTL time.Duration, pub events.Publisher) *Service {
	s := &Service{repo: r, cacheTTL: cacheTTL, events: pub}
	if cache != nil {
		s.cache = cache
	}
	if s.events == nil {
		s.events = events.Noop{}
	}
	return s
}

func (s *Service) List(ctx context.Context, f Filter, page query.Page) (query.Result[Bin], error) {
	if f.BinType != "" && !ValidType(f.BinType) {
		return query.Result[Bin]{}, apperr.Validation("Bin type must be one of: " + strings.Join(Types, ", "))
	}
	res, err := s.repo.List(ctx, f, page)
	if err != nil {
		return query.Result[Bin]{}, apperr.Internal("Failed to retrieve waste bins", err)
	}
	return res, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (Bin, error) {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return Bin{}, mapErr(err, "Failed to retrieve waste bin")
	}
	return b, nil
}

func (s *Service) Create(ctx context.Context, p CreateParams) (Bin, error) {
	p.BinCode = strings.TrimSpace(p.BinCode)
	p.LocationName = strings.TrimSpace(p.LocationName)
	if err := validateCreate(p); err != nil {
		return Bin{}, err
	}

	b, err := s.repo.Create(ctx, p)
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return Bin{}, apperr.Conflict("Bin code already exists", "A waste bin with this code already exists")
		}
		return Bin{}, apperr.Internal("Failed to create waste bin", err)
	}
	s.invalidateStats(ctx)
	log.Info().Str("bin_id", b.ID.String()).Str("bin_code", b.BinCode).Msg("lixeira cadastrada")
	return b, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Bin, error) {
	if err := validateUpdate(p); err != nil {
		return Bin{}, err
	}
	b, err := s.repo.Update(ctx, id, p)
	if err != nil {
		return Bin{}, mapErr(err, "Failed to update waste bin")
	}
	s.invalidateStats(ctx)
	return b, nil
}

// SetFillLevel rejeita leituras fora de [0,100] sem tocar no banco.
func (s *Service) SetFillLevel(ctx context.Context, id uuid.UUID, level *int) (Bin, error) {
	if level == nil || *level < 0 || *level > 100 {
		return Bin{}, apperr.Invalid("Invalid fill level", "Fill level must be between 0 and 100")
	}
	b, err := s.repo.SetFillLevel(ctx, id, *level)
	if err != nil {
		return Bin{}, mapErr(err, "Failed to update bin fill level")
	}
	s.invalidateStats(ctx)

	batch := []events.BinEvent{newEvent(events.TypeFillLevel, b)}
	if b.CurrentFillLevel >= events.FullThreshold {
		batch = append(batch, newEvent(events.TypeBinFull, b))
	}
	events.Dispatch(ctx, s.events, publishTimeout, batch...)
	return b, nil
}

func (s *Service) MarkEmptied(ctx context.Context, id uuid.UUID) (Bin, error) {
	b, err := s.repo.MarkEmptied(ctx, id)
	if err != nil {
		return Bin{}, mapErr(err, "Failed to mark bin as emptied")
	}
	s.invalidateStats(ctx)
	events.Dispatch(ctx, s.events, publishTimeout, newEvent(events.TypeEmptied, b))
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) (Bin, error) {
	b, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return Bin{}, mapErr(err, "Failed to delete waste bin")
	}
	s.invalidateStats(ctx)
	return b, nil
}

// Nearby valida centro e raio; raio nulo usa DefaultRadiusKm.
func (s *Service) Nearby(ctx context.Context, center geo.Point, radiusKm *float64) ([]NearbyBin, float64, error) {
	if err := geo.ValidateCoordinates(center.Lat, center.Lng); err != nil {
		return nil, 0, err
	}
	radius := DefaultRadiusKm
	if radiusKm != nil {
		radius = *radiusKm
	}
	if math.IsNaN(radius) || math.IsInf(radius, 0) || radius < 0 {
		return nil, 0, apperr.Validation("Radius must be a non-negative number")
	}

	found, err := s.repo.Nearby(ctx, center, radius)
	if err != nil {
		return nil, 0, apperr.Internal("Failed to retrieve nearby waste bins", err)
	}
	return found, radius, nil
}

// Statistics lê do cache quando disponível; a média sai arredondada em duas casas.
// O agregado fica sob a geração corrente, então um Set atrasado de leitura
// anterior a uma escrita nunca é servido depois dela.
func (s *Service) Statistics(ctx context.Context) (Statistics, error) {
	key, cacheable := s.statsKey(ctx)
	if cacheable {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var cached Statistics
			if json.Unmarshal(data, &cached) == nil {
				return cached, nil
			}
		}
	}

	stats, err := s.repo.Statistics(ctx)
	if err != nil {
		return Statistics{}, apperr.Internal("Failed to retrieve bin statistics", err)
	}
	stats.AverageFillLevel = math.Round(stats.AverageFillLevel*100) / 100

	if cacheable && s.cacheTTL > 0 {
		if payload, err := json.Marshal(stats); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("gravar cache de estatísticas")
			}
		}
	}
	return stats, nil
}

// statsKey deve ser lido antes da consulta ao banco.
func (s *Service) statsKey(ctx context.Context) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	gen, err := s.cache.Get(ctx, statsGenKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Warn().Err(err).Msg("ler geração do cache de estatísticas")
		return "", false
	}
	return fmt.Sprintf("%s:v%d", statsCacheKey, gen), true
}

// invalidateStats avança a geração; entradas antigas expiram pelo TTL.
func (s *Service) invalidateStats(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Incr(ctx, statsGenKey).Err(); err != nil {
		log.Warn().Err(err).Msg("invalidar cache de estatísticas")
	}
}

func newEvent(kind string, b Bin) events.BinEvent {
	return events.BinEvent{
		Type:       kind,
		BinID:      b.ID,
		BinCode:    b.BinCode,
		FillLevel:  b.CurrentFillLevel,
		OccurredAt: b.UpdatedAt,
	}
}

func mapErr(err error, message string) error {
	if errors.Is(err, repo.ErrNotFound) {
		return ErrBinNotFound
	}
	return apperr.Internal(message, err)
}

func validateCreate(p CreateParams) error {
	var c util.Checker
	c.Check(util.MinLength(p.BinCode, 3), "Bin code is required and must be at least 3 characters")
	c.Check(util.MinLength(p.LocationName, 3), "Location name is required and must be at least 3 characters")
	c.Check(p.Latitude != nil && p.Longitude != nil && util.ValidCoordinates(*p.Latitude, *p.Longitude),
		"Valid latitude and longitude are required")
	c.Check(ValidType(p.BinType), "Bin type must be one of: "+strings.Join(Types, ", "))
	c.Check(p.CapacityLiters != nil && *p.CapacityLiters >= 50 && *p.CapacityLiters <= 10000,
		"Capacity must be between 50 and 10000 liters")
	if p.CurrentFillLevel != nil {
		c.Check(*p.CurrentFillLevel >= 0 && *p.CurrentFillLevel <= 100, "Fill level must be between 0 and 100")
	}
	return c.Err()
}

func validateUpdate(p UpdateParams) error {
	var c util.Checker
	if p.LocationName != nil {
		c.Check(util.MinLength(*p.LocationName, 3), "Location name must be at least 3 characters")
	}
	if p.Latitude != nil {
		c.Check(*p.Latitude >= -90 && *p.Latitude <= 90, "Latitude must be between -90 and 90")
	}
	if p.Longitude != nil {
		c.Check(*p.Longitude >= -180 && *p.Longitude <= 180, "Longitude must be between -180 and 180")
	}
	if p.BinType != nil {
		c.Check(ValidType(*p.BinType), "Bin type must be one of: "+strings.Join(Types, ", "))
	}
	if p.CapacityLiters != nil {
		c.Check(*p.CapacityLiters >= 50 && *p.CapacityLiters <= 10000, "Capacity must be between 50 and 10000 liters")
	}
	if p.CurrentFillLevel != nil {
		c.Check(*p.CurrentFillLevel >= 0 && *p.CurrentFillLevel <= 100, "Fill level must be between 0 and 100")
	}
	if p.SensorStatus != nil {
		c.Check(strings.TrimSpace(*p.SensorStatus) != "", "Sensor status cannot be empty")
	}
	return c.Err()
}
