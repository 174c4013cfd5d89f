package http

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/gestaozabele/coleta/internal/http/middleware"
	"github.com/gestaozabele/coleta/internal/repo"
	"github.com/gestaozabele/coleta/internal/service"
)

// NewRouter monta o roteador HTTP com middlewares e rotas.
func NewRouter(deps Deps) (http.Handler, error) {
	if deps.Config == nil || deps.DB == nil || deps.Auth == nil {
		return nil, errors.New("router: config, banco e autenticação são obrigatórios")
	}
	if deps.Citizens == nil || deps.Bins == nil || deps.Trucks == nil {
		return nil, errors.New("router: serviços de domínio são obrigatórios")
	}

	cfg := deps.Config
	h := &Handler{
		cfg:           cfg,
		db:            deps.DB,
		redis:         deps.Redis,
		auth:          deps.Auth,
		citizens:      deps.Citizens,
		bins:          deps.Bins,
		trucks:        deps.Trucks,
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	authenticate := httpmiddleware.Authenticate(deps.Auth, deps.Auth)
	optionalAuth := httpmiddleware.OptionalAuth(deps.Auth, deps.Auth)
	requireStaff := httpmiddleware.RequireRoles(service.StaffRoles...)
	requireAdmin := httpmiddleware.RequireRoles(repo.RoleAdmin)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

		public.Get("/", h.Index)
		public.Get("/health", h.Health)
		public.Get("/ready", h.Ready)
	})

	r.Route("/api", func(api chi.Router) {
		api.Route("/citizens", func(c chi.Router) {
			c.Group(func(public chi.Router) {
				public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
				public.Post("/register", h.RegisterCitizen)
				public.Post("/login", h.LoginCitizen)
			})

			c.Group(func(private chi.Router) {
				private.Use(authenticate)
				private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

				private.Get("/me", h.Me)
				private.Put("/{id}", h.UpdateCitizen)
				private.With(requireStaff).Get("/", h.ListCitizens)
				private.With(requireStaff).Get("/{id}", h.GetCitizen)
				private.With(requireAdmin).Delete("/{id}", h.DeactivateCitizen)
			})
		})

		api.Route("/bins", func(b chi.Router) {
			b.Group(func(public chi.Router) {
				public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))
				public.Use(optionalAuth)

				public.Get("/", h.ListBins)
				public.Get("/nearby", h.NearbyBins)
				public.Get("/statistics", h.BinStatistics)
				public.Get("/{id}", h.GetBin)
			})

			b.Group(func(private chi.Router) {
				private.Use(authenticate)
				private.Use(httpmiddleware.UserRateLimit(h.authLimiter))
				private.Use(requireStaff)

				private.Post("/", h.CreateBin)
				private.Put("/{id}", h.UpdateBin)
				private.Patch("/{id}/fill-level", h.UpdateFillLevel)
				private.Patch("/{id}/emptied", h.MarkBinEmptied)
				private.With(requireAdmin).Delete("/{id}", h.DeleteBin)
			})
		})

		api.Route("/trucks", func(t chi.Router) {
			t.Use(authenticate)
			t.Use(httpmiddleware.UserRateLimit(h.authLimiter))
			t.Use(requireStaff)

			t.Get("/", h.ListTrucks)
			t.Post("/", h.CreateTruck)
			t.Get("/{id}", h.GetTruck)
			t.Put("/{id}", h.UpdateTruck)
			t.Patch("/{id}/location", h.UpdateTruckLocation)
			t.With(requireAdmin).Delete("/{id}", h.DeleteTruck)
		})

		api.Group(func(reserved chi.Router) {
			reserved.Use(authenticate)
			reserved.Use(httpmiddleware.UserRateLimit(h.authLimiter))
			h.mountStubs(reserved)
		})
	})

	return r, nil
}
