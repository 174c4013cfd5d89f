package bins

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gestaozabele/coleta/internal/db"
	"github.com/gestaozabele/coleta/internal/geo"
	"github.com/gestaozabele/coleta/internal/query"
	"github.com/gestaozabele/coleta/internal/repo"
)

const dbTimeout = 3 * time.Second

const (
	binColumns = `id, bin_code, location_name, latitude, longitude, bin_type, capacity_liters,
	current_fill_level, sensor_status, last_emptied, installation_date, is_active, created_at, updated_at`

	listOrder = "current_fill_level DESC, created_at DESC"
)

// Repository fornece acesso à tabela waste_bins.
type Repository struct {
	db db.Querier
}

func NewRepository(q db.Querier) *Repository {
	return &Repository{db: q}
}

func scanBin(row pgx.Row) (Bin, error) {
	var b Bin
	err := row.Scan(
		&b.ID, &b.BinCode, &b.LocationName, &b.Latitude, &b.Longitude, &b.BinType, &b.CapacityLiters,
		&b.CurrentFillLevel, &b.SensorStatus, &b.LastEmptied, &b.InstallationDate, &b.IsActive, &b.CreatedAt, &b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Bin{}, repo.ErrNotFound
	}
	return b, err
}

// List devolve lixeiras ativas, mais cheias primeiro.
func (r *Repository) List(ctx context.Context, f Filter, page query.Page) (query.Result[Bin], error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	b := query.New("waste_bins", "is_active = true").
		Where("bin_type = ?", f.BinType).
		Where("current_fill_level >= ?", f.FillLevelMin).
		Where("current_fill_level <= ?", f.FillLevelMax).
		WhereLike("location_name ILIKE ?", f.Location)

	return query.Run(ctx, r.db, b, binColumns, listOrder, page, scanBin)
}

// Get devolve a lixeira mesmo se desativada.
func (r *Repository) Get(ctx context.Context, id uuid.UUID) (Bin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanBin(r.db.QueryRow(ctx, `SELECT `+binColumns+` FROM waste_bins WHERE id = $1`, id))
}

// Create insere a lixeira; código repetido vira repo.ErrConflict.
func (r *Repository) Create(ctx context.Context, p CreateParams) (Bin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	fill := 0
	if p.CurrentFillLevel != nil {
		fill = *p.CurrentFillLevel
	}

	b, err := scanBin(r.db.QueryRow(ctx, `
		INSERT INTO waste_bins (bin_code, location_name, latitude, longitude, bin_type, capacity_liters, current_fill_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+binColumns,
		p.BinCode, p.LocationName, p.Latitude, p.Longitude, p.BinType, p.CapacityLiters, fill,
	))
	if db.IsUniqueViolation(err, "waste_bins_bin_code_key") {
		return Bin{}, repo.ErrConflict
	}
	return b, err
}

// Update aplica merge patch.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (Bin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanBin(r.db.QueryRow(ctx, `
		UPDATE waste_bins
		SET location_name = COALESCE($2, location_name),
		    latitude = COALESCE($3, latitude),
		    longitude = COALESCE($4, longitude),
		    bin_type = COALESCE($5, bin_type),
		    capacity_liters = COALESCE($6, capacity_liters),
		    current_fill_level = COALESCE($7, current_fill_level),
		    sensor_status = COALESCE($8, sensor_status),
		    updated_at = now()
		WHERE id = $1
		RETURNING `+binColumns,
		id, p.LocationName, p.Latitude, p.Longitude, p.BinType, p.CapacityLiters, p.CurrentFillLevel, p.SensorStatus,
	))
}

// SetFillLevel grava a leitura do sensor.
func (r *Repository) SetFillLevel(ctx context.Context, id uuid.UUID, level int) (Bin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanBin(r.db.QueryRow(ctx, `
		UPDATE waste_bins SET current_fill_level = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+binColumns, id, level))
}

// MarkEmptied zera o nível e registra a coleta.
func (r *Repository) MarkEmptied(ctx context.Context, id uuid.UUID) (Bin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanBin(r.db.QueryRow(ctx, `
		UPDATE waste_bins SET current_fill_level = 0, last_emptied = now(), updated_at = now()
		WHERE id = $1
		RETURNING `+binColumns, id))
}

// SoftDelete desativa a lixeira.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID) (Bin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	return scanBin(r.db.QueryRow(ctx, `
		UPDATE waste_bins SET is_active = false, updated_at = now()
		WHERE id = $1
		RETURNING `+binColumns, id))
}

// Nearby devolve lixeiras ativas a até radiusKm do centro, mais próximas primeiro.
// O retângulo envolvente usa o índice (latitude, longitude); a distância exata decide.
func (r *Repository) Nearby(ctx context.Context, center geo.Point, radiusKm float64) ([]NearbyBin, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	box := geo.BoundingBox(center, radiusKm)
	sql := fmt.Sprintf(`
		SELECT %[1]s, distance_km FROM (
			SELECT %[1]s, %[2]s AS distance_km
			FROM waste_bins
			WHERE is_active = true
			  AND latitude BETWEEN $3 AND $4
			  AND longitude BETWEEN $5 AND $6
		) candidates
		WHERE distance_km <= $7
		ORDER BY distance_km, bin_code`,
		binColumns, geo.DistanceSQL("$1", "$2", "latitude", "longitude"))

	rows, err := r.db.Query(ctx, sql,
		center.Lat, center.Lng, box.MinLat, box.MaxLat, box.MinLng, box.MaxLng, radiusKm)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]NearbyBin, 0)
	for rows.Next() {
		var n NearbyBin
		if err := rows.Scan(
			&n.ID, &n.BinCode, &n.LocationName, &n.Latitude, &n.Longitude, &n.BinType, &n.CapacityLiters,
			&n.CurrentFillLevel, &n.SensorStatus, &n.LastEmptied, &n.InstallationDate, &n.IsActive, &n.CreatedAt, &n.UpdatedAt,
			&n.DistanceKm,
		); err != nil {
			return nil, err
		}
		result = append(result, n)
	}

	return result, rows.Err()
}

// Statistics agrega contagens das lixeiras ativas.
func (r *Repository) Statistics(ctx context.Context) (Statistics, error) {
	ctx, cancel := context.WithTimeout(ctx, dbTimeout)
	defer cancel()

	var s Statistics
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE current_fill_level >= $1),
			COUNT(*) FILTER (WHERE current_fill_level >= $2 AND current_fill_level < $1),
			COUNT(*) FILTER (WHERE current_fill_level < $2),
			COUNT(*) FILTER (WHERE sensor_status = 'active'),
			COUNT(*) FILTER (WHERE sensor_status = 'inactive'),
			COALESCE(AVG(current_fill_level), 0)::float8,
			COUNT(*) FILTER (WHERE bin_type = 'general'),
			COUNT(*) FILTER (WHERE bin_type = 'recyclable'),
			COUNT(*) FILTER (WHERE bin_type = 'organic'),
			COUNT(*) FILTER (WHERE bin_type = 'hazardous')
		FROM waste_bins
		WHERE is_active = true
	`, FullLevel, MediumLevel).Scan(
		&s.TotalBins, &s.FullBins, &s.MediumBins, &s.EmptyBins,
		&s.ActiveSensors, &s.InactiveSensors, &s.AverageFillLevel,
		&s.BinTypes.General, &s.BinTypes.Recyclable, &s.BinTypes.Organic, &s.BinTypes.Hazardous,
	)
	return s, err
}
