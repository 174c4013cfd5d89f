// Package geo calcula distâncias na superfície terrestre em quilômetros.
package geo

import (
	"fmt"
	"math"

	"github.com/gestaozabele/coleta/internal/apperr"
)

// EarthRadiusKm é o raio médio usado em todos os cálculos.
const EarthRadiusKm = 6371.0

// boxMargin compensa arredondamento nas bordas do retângulo de pré-filtro.
const boxMargin = 1e-6

// Point é uma coordenada em graus decimais.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// ValidateCoordinates exige lat em [-90,90] e lng em [-180,180].
func ValidateCoordinates(lat, lng float64) error {
	var details []string
	if math.IsNaN(lat) || lat < -90 || lat > 90 {
		details = append(details, "Latitude must be between -90 and 90")
	}
	if math.IsNaN(lng) || lng < -180 || lng > 180 {
		details = append(details, "Longitude must be between -180 and 180")
	}
	if len(details) > 0 {
		return apperr.Validation(details...)
	}
	return nil
}

// Distance aplica a lei esférica dos cossenos; pontos idênticos resultam em 0.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}
	phi1 := radians(a.Lat)
	phi2 := radians(b.Lat)
	dLambda := radians(b.Lng - a.Lng)

	x := math.Cos(phi1)*math.Cos(phi2)*math.Cos(dLambda) + math.Sin(phi1)*math.Sin(phi2)
	return EarthRadiusKm * math.Acos(clamp(x, -1, 1))
}

// DistanceSQL gera a mesma expressão de Distance para o PostgreSQL.
// latArg/lngArg são placeholders ($n); latCol/lngCol são colunas.
func DistanceSQL(latArg, lngArg, latCol, lngCol string) string {
	lat := latArg + "::float8"
	lng := lngArg + "::float8"
	return fmt.Sprintf(
		"(CASE WHEN %[3]s = %[1]s AND %[4]s = %[2]s THEN 0::float8 ELSE %[5]g * acos(LEAST(1, GREATEST(-1, "+
			"cos(radians(%[1]s)) * cos(radians(%[3]s)) * cos(radians(%[4]s) - radians(%[2]s)) + "+
			"sin(radians(%[1]s)) * sin(radians(%[3]s))))) END)",
		lat, lng, latCol, lngCol, EarthRadiusKm)
}

// Box é o retângulo lat/lng que contém o círculo de busca.
type Box struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains indica se p está dentro do retângulo.
func (b Box) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// BoundingBox devolve o menor retângulo que contém todos os pontos a até radiusKm do centro.
// Perto dos polos ou cruzando o antimeridiano a longitude cobre toda a faixa.
func BoundingBox(center Point, radiusKm float64) Box {
	if radiusKm < 0 {
		radiusKm = 0
	}
	delta := radiusKm / EarthRadiusKm
	dLat := degrees(delta)

	box := Box{
		MinLat: math.Max(center.Lat-dLat-boxMargin, -90),
		MaxLat: math.Min(center.Lat+dLat+boxMargin, 90),
		MinLng: -180,
		MaxLng: 180,
	}

	cosLat := math.Cos(radians(center.Lat))
	sinDelta := math.Sin(delta)
	if delta >= math.Pi/2 || sinDelta >= cosLat || box.MinLat <= -90 || box.MaxLat >= 90 {
		return box
	}

	dLng := degrees(math.Asin(sinDelta / cosLat))
	minLng := center.Lng - dLng - boxMargin
	maxLng := center.Lng + dLng + boxMargin
	if minLng < -180 || maxLng > 180 {
		return box
	}
	box.MinLng = minLng
	box.MaxLng = maxLng
	return box
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
