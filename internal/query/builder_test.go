package query

import (
	"context"
	"net/url"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gestaozabele/coleta/internal/apperr"
	"github.com/gestaozabele/coleta/internal/db/dbtest"
)

func TestBuilderSkipsAbsentFilters(t *testing.T) {
	var missing *int
	empty := ""

	b := New("waste_bins", "is_active = true").
		Where("bin_type = ?", "").
		Where("bin_type = ?", &empty).
		Where("current_fill_level >= ?", missing).
		Where("id = ANY(?)", []string{}).
		Where("sensor_status = ?", nil)

	sql, args := b.CountSQL()
	assert.Equal(t, "SELECT COUNT(*) FROM waste_bins WHERE is_active = true", sql)
	assert.Empty(t, args)
}

func TestBuilderFillLevelAndOrdering(t *testing.T) {
	minFill := 80
	b := New("waste_bins", "is_active = true").
		Where("bin_type = ?", "recyclable").
		Where("current_fill_level >= ?", &minFill)

	sql, args := b.SelectSQL("id, bin_code", "current_fill_level DESC, created_at DESC", NewPage(2, 10))

	assert.Equal(t,
		"SELECT id, bin_code FROM waste_bins WHERE is_active = true AND bin_type = $1 AND current_fill_level >= $2 "+
			"ORDER BY current_fill_level DESC, created_at DESC LIMIT $3 OFFSET $4",
		sql)
	assert.Equal(t, []any{"recyclable", 80, 10, 10}, args)
}

func TestBuilderBindsValuesInsteadOfInterpolating(t *testing.T) {
	hostile := "x'; DROP TABLE waste_bins; --"
	b := New("waste_bins", "is_active = true").WhereLike("location_name ILIKE ?", hostile)

	sql, args := b.CountSQL()
	assert.NotContains(t, sql, "DROP TABLE")
	assert.Equal(t, "SELECT COUNT(*) FROM waste_bins WHERE is_active = true AND location_name ILIKE $1", sql)
	require.Len(t, args, 1)
	assert.Equal(t, `%x'; DROP TABLE waste\_bins; --%`, args[0])
}

func TestWhereLikeEscapesWildcards(t *testing.T) {
	_, args := New("waste_bins", "").WhereLike("location_name ILIKE ?", "50%_off").CountSQL()
	assert.Equal(t, []any{`%50\%\_off%`}, args)
}

func TestParsePage(t *testing.T) {
	cases := []struct {
		name  string
		query string
		want  Page
	}{
		{"defaults", "", Page{Page: 1, Limit: 10}},
		{"explicit", "page=3&limit=25", Page{Page: 3, Limit: 25}},
		{"non numeric", "page=abc&limit=xyz", Page{Page: 1, Limit: 10}},
		{"page below one", "page=0&limit=5", Page{Page: 1, Limit: 5}},
		{"negative page", "page=-4", Page{Page: 1, Limit: 10}},
		{"limit clamped up", "limit=0", Page{Page: 1, Limit: 1}},
		{"limit clamped down", "limit=500", Page{Page: 1, Limit: 100}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := url.ParseQuery(tc.query)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ParsePage(values))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, NewPage(1, 10).Offset())
	assert.Equal(t, 20, NewPage(3, 10).Offset())
	assert.Equal(t, 100, NewPage(2, 100).Offset())
}

func TestNewPagination(t *testing.T) {
	assert.Equal(t, int64(0), NewPagination(NewPage(1, 10), 0).Pages)
	assert.Equal(t, int64(1), NewPagination(NewPage(1, 10), 1).Pages)
	assert.Equal(t, int64(1), NewPagination(NewPage(1, 10), 10).Pages)
	assert.Equal(t, int64(3), NewPagination(NewPage(1, 10), 25).Pages)

	p := NewPagination(NewPage(2, 5), 11)
	assert.Equal(t, Pagination{Page: 2, Limit: 5, Total: 11, Pages: 3}, p)
}

func TestParseNumericFilters(t *testing.T) {
	values := url.Values{"fill_level_min": {"40"}, "radius": {"2.5"}, "is_active": {"false"}}

	low, err := ParseIntFilter(values, "fill_level_min")
	require.NoError(t, err)
	require.NotNil(t, low)
	assert.Equal(t, 40, *low)

	high, err := ParseIntFilter(values, "fill_level_max")
	require.NoError(t, err)
	assert.Nil(t, high)

	radius, err := ParseFloatFilter(values, "radius")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, *radius, 1e-9)

	active, err := ParseBoolFilter(values, "is_active")
	require.NoError(t, err)
	assert.False(t, *active)

	_, err = ParseIntFilter(url.Values{"fill_level_min": {"muito"}}, "fill_level_min")
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.As(err).Kind)
}

func TestRunCountsAndScans(t *testing.T) {
	q := &dbtest.Querier{}
	q.Push([]any{int64(3)})
	q.Push([]any{"a"}, []any{"b"})

	b := New("waste_bins", "is_active = true").Where("bin_type = ?", "organic")
	res, err := Run(context.Background(), q, b, "bin_code", "created_at DESC", NewPage(1, 2),
		func(row pgx.Row) (string, error) {
			var code string
			err := row.Scan(&code)
			return code, err
		})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, res.Items)
	assert.Equal(t, Pagination{Page: 1, Limit: 2, Total: 3, Pages: 2}, res.Pagination)
	require.Len(t, q.Calls, 2)
	assert.Equal(t, []any{"organic"}, q.Calls[0].Args)
	assert.Equal(t, []any{"organic", 2, 0}, q.Calls[1].Args)
}
