package geo

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/coleta/internal/apperr"
)

func TestValidateCoordinates(t *testing.T) {
	cases := []struct {
		lat, lng float64
		ok       bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{-23.55, -46.63, true},
		{91, 0, false},
		{-90.0001, 0, false},
		{0, 180.5, false},
		{0, -181, false},
	}
	for _, tc := range cases {
		err := ValidateCoordinates(tc.lat, tc.lng)
		if tc.ok {
			assert.NoError(t, err, "lat=%v lng=%v", tc.lat, tc.lng)
			continue
		}
		require.Error(t, err, "lat=%v lng=%v", tc.lat, tc.lng)
		assert.Equal(t, apperr.KindValidation, apperr.As(err).Kind)
	}
}

func TestDistanceIdenticalPointsIsZero(t *testing.T) {
	points := []Point{{0, 0}, {-23.5505, -46.6333}, {89.9999, 179.9999}, {-12.97, -38.5}}
	for _, p := range points {
		assert.Zero(t, Distance(p, p))
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// (0,0) a (10,10) ≈ 1568.5 km
	assert.InDelta(t, 1568.5, Distance(Point{0, 0}, Point{10, 10}), 1)
	// um grau de latitude no meridiano
	assert.InDelta(t, 111.195, Distance(Point{0, 0}, Point{1, 0}), 0.01)
	// antípodas não geram NaN
	assert.InDelta(t, 20015.09, Distance(Point{0, 0}, Point{0, 180}), 0.1)
}

func TestDistanceIsSymmetric(t *testing.T) {
	a := Point{-22.9068, -43.1729}
	b := Point{-23.5505, -46.6333}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestNearbyScenarioAtOrigin(t *testing.T) {
	center := Point{0, 0}
	near := Point{0, 0}
	far := Point{10, 10}

	assert.LessOrEqual(t, Distance(center, near), 0.0)
	assert.Greater(t, Distance(center, far), 1.0)
}

func TestBoundingBoxContainsCircle(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	centers := []Point{{0, 0}, {-23.55, -46.63}, {60, 10}, {-45, 170}}
	for _, c := range centers {
		for _, radius := range []float64{0, 0.5, 5, 50, 500} {
			box := BoundingBox(c, radius)
			for i := 0; i < 500; i++ {
				p := Point{
					Lat: c.Lat + (rng.Float64()*2-1)*10,
					Lng: c.Lng + (rng.Float64()*2-1)*10,
				}
				if p.Lat < -90 || p.Lat > 90 || p.Lng < -180 || p.Lng > 180 {
					continue
				}
				if Distance(c, p) <= radius {
					assert.True(t, box.Contains(p), "center=%v radius=%v p=%v", c, radius, p)
				}
			}
			assert.True(t, box.Contains(c))
		}
	}
}

func TestBoundingBoxNearPoleCoversAllLongitudes(t *testing.T) {
	box := BoundingBox(Point{89.99, 0}, 50)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
	assert.Equal(t, 90.0, box.MaxLat)
}

func TestBoundingBoxAcrossAntimeridian(t *testing.T) {
	box := BoundingBox(Point{0, 179.99}, 10)
	assert.Equal(t, -180.0, box.MinLng)
	assert.Equal(t, 180.0, box.MaxLng)
}

func TestDistanceSQL(t *testing.T) {
	sql := DistanceSQL("$1", "$2", "latitude", "longitude")
	assert.True(t, strings.HasPrefix(sql, "(CASE WHEN latitude = $1::float8 AND longitude = $2::float8 THEN 0"))
	assert.Contains(t, sql, "LEAST(1, GREATEST(-1,")
	assert.Contains(t, sql, "6371 * acos(")
	assert.Contains(t, sql, "cos(radians(longitude) - radians($2::float8))")
}
