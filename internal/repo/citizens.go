package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestaozabele/coleta/internal/db"
	"github.com/gestaozabele/coleta/internal/query"
)

const dbTimeout = 3 * time.Second

const citizenColumns = `id, email, password_hash, first_name, last_name, phone, address, city, postal_code,
	latitude, longitude, role, is_active, created_at, updated_at`

// Queries concentra o acesso à tabela citizens.
type Queries struct {
	db db.Querier
}

// New cria Queries sobre um pool ou transação.
func New(q db.Querier) *Queries {
	return &Queries{db: q}
}

func scanCitizen(row pgx.Row) (Citizen, error) {
	var c Citizen
	err := row.Scan(
		&c.ID, &c.Email, &c.PasswordHash, &c.FirstName, &c.LastName,
		&c.Phone, &c.Address, &c.City, &c.PostalCode,
		&c.Latitude, &c.Longitude, &c.Role, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Citizen{}, ErrNotFound
	}
	return c, err
}

// CreateCitizen insere a conta com papel padrão; email repetido vira ErrConflict.
func (q *Queries) CreateCitizen(ctx context.Context, arg CreateCitizenParams) (Citizen, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	c, err := scanCitizen(q.db.QueryRow(ctx, `
		INSERT INTO citizens (email, password_hash, first_name, last_name, phone, address, city, postal_code, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+citizenColumns,
		arg.Email, arg.PasswordHash, arg.FirstName, arg.LastName, arg.Phone,
		arg.Address, arg.City, arg.PostalCode, arg.Latitude, arg.Longitude,
	))
	if db.IsUniqueViolation(err, "citizens_email_key") {
		return Citizen{}, ErrConflict
	}
	return c, err
}

// GetCitizenByEmail busca sem diferenciar maiúsculas.
func (q *Queries) GetCitizenByEmail(ctx context.Context, email string) (Citizen, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCitizen(q.db.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE lower(email) = lower($1)`, email))
}

// GetCitizenByID devolve inclusive contas desativadas.
func (q *Queries) GetCitizenByID(ctx context.Context, id uuid.UUID) (Citizen, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCitizen(q.db.QueryRow(ctx, `SELECT `+citizenColumns+` FROM citizens WHERE id = $1`, id))
}

// ListCitizens pagina a listagem administrativa, mais recentes primeiro.
func (q *Queries) ListCitizens(ctx context.Context, filter CitizenFilter, page query.Page) (query.Result[Citizen], error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	b := query.New("citizens", "1=1").
		Where("role = ?", filter.Role).
		Where("is_active = ?", filter.IsActive)

	return query.Run(ctx, q.db, b, citizenColumns, "created_at DESC", page, scanCitizen)
}

// UpdateCitizen aplica merge patch no perfil.
func (q *Queries) UpdateCitizen(ctx context.Context, id uuid.UUID, arg UpdateCitizenParams) (Citizen, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCitizen(q.db.QueryRow(ctx, `
		UPDATE citizens
		SET first_name = COALESCE($2, first_name),
		    last_name = COALESCE($3, last_name),
		    phone = COALESCE($4, phone),
		    address = COALESCE($5, address),
		    city = COALESCE($6, city),
		    postal_code = COALESCE($7, postal_code),
		    latitude = COALESCE($8, latitude),
		    longitude = COALESCE($9, longitude),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+citizenColumns,
		id, arg.FirstName, arg.LastName, arg.Phone, arg.Address, arg.City, arg.PostalCode, arg.Latitude, arg.Longitude,
	))
}

// DeactivateCitizen desliga a conta sem removê-la.
func (q *Queries) DeactivateCitizen(ctx context.Context, id uuid.UUID) (Citizen, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCitizen(q.db.QueryRow(ctx, `
		UPDATE citizens SET is_active = false, updated_at = now()
		WHERE id = $1
		RETURNING `+citizenColumns, id))
}

// UpdatePasswordHash regrava o hash (migração de bcrypt para Argon2id).
func (q *Queries) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	cmd, err := q.db.Exec(ctx, `UPDATE citizens SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetCitizenRole altera o papel pelo email; usado pela CLI administrativa.
func (q *Queries) SetCitizenRole(ctx context.Context, email, role string) (Citizen, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanCitizen(q.db.QueryRow(ctx, `
		UPDATE citizens SET role = $2, updated_at = now()
		WHERE lower(email) = lower($1)
		RETURNING `+citizenColumns, email, role))
}
