package http

import (
	"context"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/bins"
	"github.com/gestaozabele/coleta/internal/config"
	"github.com/gestaozabele/coleta/internal/geo"
	"github.com/gestaozabele/coleta/internal/http/middleware"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/service"
	"github.com/gestaozabele/coleta/internal/trucks"
)

// AuthAPI cobre cadastro, login e verificação de sessão.
type AuthAPI interface {
	middleware.TokenVerifier
	middleware.IdentityResolver
	Register(ctx context.Context, in service.RegisterInput) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

// CitizenAPI é a gestão de cidadãos já autenticados.
type CitizenAPI interface {
	Get(ctx context.Context, id uuid.UUID) (repo.Citizen, error)
	List(ctx context.Context, filter repo.CitizenFilter, page query.Page) (query.Result[repo.Citizen], error)
	Update(ctx context.Context, actor auth.Identity, id uuid.UUID, in service.UpdateCitizenInput) (repo.Citizen, error)
	Deactivate(ctx context.Context, id uuid.UUID) (repo.Citizen, error)
}

// BinAPI é o serviço de lixeiras.
type BinAPI interface {
	List(ctx context.Context, f bins.Filter, page query.Page) (query.Result[bins.Bin], error)
	Get(ctx context.Context, id uuid.UUID) (bins.Bin, error)
	Create(ctx context.Context, p bins.CreateParams) (bins.Bin, error)
	Update(ctx context.Context, id uuid.UUID, p bins.UpdateParams) (bins.Bin, error)
	SetFillLevel(ctx context.Context, id uuid.UUID, level *int) (bins.Bin, error)
	MarkEmptied(ctx context.Context, id uuid.UUID) (bins.Bin, error)
	Delete(ctx context.Context, id uuid.UUID) (bins.Bin, error)
	Nearby(ctx context.Context, center geo.Point, radiusKm *float64) ([]bins.NearbyBin, float64, error)
	Statistics(ctx context.Context) (bins.Statistics, error)
}

// TruckAPI é o serviço da frota.
type TruckAPI interface {
	List(ctx context.Context, f trucks.Filter, page query.Page) (query.Result[trucks.Truck], error)
	Get(ctx context.Context, id uuid.UUID) (trucks.Truck, error)
	Create(ctx context.Context, p trucks.CreateParams) (trucks.Truck, error)
	Update(ctx context.Context, id uuid.UUID, p trucks.UpdateParams) (trucks.Truck, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, p trucks.LocationParams) (trucks.Truck, error)
	Delete(ctx context.Context, id uuid.UUID) (trucks.Truck, error)
}

// Pinger é satisfeito por *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps reúne o que o roteador precisa; Redis é opcional.
type Deps struct {
	Config   *config.Config
	DB       Pinger
	Redis    *redis.Client
	Auth     AuthAPI
	Citizens CitizenAPI
	Bins     BinAPI
	Trucks   TruckAPI
}

// Handler agrega dependências das rotas HTTP.
type Handler struct {
	cfg      *config.Config
	db       Pinger
	redis    *redis.Client
	auth     AuthAPI
	citizens CitizenAPI
	bins     BinAPI
	trucks   TruckAPI

	publicLimiter *middleware.RateLimiter
	authLimiter   *middleware.RateLimiter
}

func (h *Handler) dev() bool {
	return h.cfg != nil && h.cfg.IsDevelopment()
}
