package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/auth"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
)

var (
	// ErrInvalidCredentials indica falha na autenticação.
	ErrInvalidCredentials = errors.New("credenciais inválidas")
	// ErrAccountDisabled indica conta desativada.
	ErrAccountDisabled = errors.New("conta desativada")
)

type citizenRepository interface {
	CreateCitizen(ctx context.Context, arg repo.CreateCitizenParams) (repo.Citizen, error)
	GetCitizenByEmail(ctx context.Context, email string) (repo.Citizen, error)
	GetCitizenByID(ctx context.Context, id uuid.UUID) (repo.Citizen, error)
	ListCitizens(ctx context.Context, filter repo.CitizenFilter, page query.Page) (query.Result[repo.Citizen], error)
	UpdateCitizen(ctx context.Context, id uuid.UUID, arg repo.UpdateCitizenParams) (repo.Citizen, error)
	DeactivateCitizen(ctx context.Context, id uuid.UUID) (repo.Citizen, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// AuthService concentra cadastro, login e resolução de identidade.
type AuthService struct {
	repo citizenRepository
	jwt  *auth.JWTManager
}

// NewAuthService cria novo serviço.
func NewAuthService(r *repo.Queries, jwtMgr *auth.JWTManager) *AuthService {
	return &AuthService{repo: r, jwt: jwtMgr}
}

// JWT expõe gerenciador de JWT (útil em middlewares).
func (s *AuthService) JWT() *auth.JWTManager {
	return s.jwt
}

// RegisterInput é o corpo de POST /api/citizens/register.
type RegisterInput struct {
	Email      string   `json:"email"`
	Password   string   `json:"password"`
	FirstName  string   `json:"first_name"`
	LastName   string   `json:"last_name"`
	Phone      *string  `json:"phone"`
	Address    *string  `json:"address"`
	City       *string  `json:"city"`
	PostalCode *string  `json:"postal_code"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
}

// Session é devolvida no cadastro e no login.
type Session struct {
	Citizen   repo.Citizen `json:"citizen"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// Register valida, grava com hash Argon2id e emite token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := validateRegister(in); err != nil {
		return nil, err
	}

	hash, err := auth.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal("Failed to register citizen", err)
	}

	citizen, err := s.repo.CreateCitizen(ctx, repo.CreateCitizenParams{
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Phone:        in.Phone,
		Address:      in.Address,
		City:         in.City,
		PostalCode:   in.PostalCode,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
	})
	if err != nil {
		if errors.Is(err, repo.ErrConflict) {
			return nil, apperr.Conflict("User already exists", "A citizen with this email already exists")
		}
		return nil, apperr.Internal("Failed to register citizen", err)
	}

	log.Info().Str("citizen_id", citizen.ID.String()).Msg("cidadão cadastrado")
	return s.issueSession(citizen)
}

// Login confere credenciais e emite novo token.
// Hashes bcrypt herdados são regravados em Argon2id após o sucesso.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	citizen, err := s.repo.GetCitizenByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			log.Warn().Msg("login cidadão: usuário não encontrado")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !citizen.IsActive {
		return nil, ErrAccountDisabled
	}

	ok, err := auth.Verify(password, citizen.PasswordHash)
	if err != nil {
		log.Warn().Err(err).Msg("login cidadão: verify password failed")
		return nil, ErrInvalidCredentials
	}
	if !ok {
		log.Warn().Str("citizen_id", citizen.ID.String()).Msg("login cidadão: senha inválida")
		return nil, ErrInvalidCredentials
	}

	if auth.NeedsRehash(citizen.PasswordHash) {
		s.upgradeHash(ctx, citizen.ID, password)
	}

	return s.issueSession(citizen)
}

func (s *AuthService) upgradeHash(ctx context.Context, id uuid.UUID, password string) {
	hash, err := auth.Hash(password)
	if err != nil {
		log.Error().Err(err).Msg("rehash senha legada")
		return
	}
	if err := s.repo.UpdatePasswordHash(ctx, id, hash); err != nil {
		log.Error().Err(err).Str("citizen_id", id.String()).Msg("gravar hash atualizado")
	}
}

func (s *AuthService) issueSession(citizen repo.Citizen) (*Session, error) {
	token, expires, err := s.jwt.Issue(citizen.ID, citizen.Email)
	if err != nil {
		return nil, apperr.Internal("Failed to issue token", err)
	}
	return &Session{Citizen: citizen, Token: token, ExpiresAt: expires}, nil
}

// Verify delega ao JWTManager.
func (s *AuthService) Verify(token string) (*auth.Claims, error) {
	return s.jwt.Verify(token)
}

// ResolveIdentity relê papel e status do cidadão; ausente devolve repo.ErrNotFound.
func (s *AuthService) ResolveIdentity(ctx context.Context, id uuid.UUID) (auth.Identity, error) {
	citizen, err := s.repo.GetCitizenByID(ctx, id)
	if err != nil {
		return auth.Identity{}, err
	}
	return IdentityOf(citizen), nil
}

// IdentityOf projeta o cidadão na identidade da requisição.
func IdentityOf(c repo.Citizen) auth.Identity {
	return auth.Identity{
		ID:        c.ID,
		Email:     c.Email,
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Role:      c.Role,
		IsActive:  c.IsActive,
	}
}
