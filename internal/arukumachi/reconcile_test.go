package arukumachi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/kyotransit/internal/models"
)

func TestContainsNoResults(t *testing.T) {
	assert.True(t, ContainsNoResults(`<html><body><p>該当する結果が見つかりませんでした</p></body></html>`))
	assert.True(t, ContainsNoResults(`<html><body>No Matching Routes Were Found</body></html>`))
	assert.False(t, ContainsNoResults(`<html><body><div class="route">09:00発</div></body></html>`))
}

func TestMergeEmptySidesPassThrough(t *testing.T) {
	tt := []models.Route{{Summary: models.RouteSummary{DurationMin: 30}}}
	pk := []models.Route{{Legs: []models.RouteLeg{{Mode: models.ModeBus}}}}

	assert.Equal(t, tt, Merge(tt, nil))
	assert.Equal(t, pk, Merge(nil, pk))
	assert.Empty(t, Merge(nil, nil))
}

func TestMergeSyntheticLegReplacedByPacked(t *testing.T) {
	tt := []models.Route{{
		Summary: models.RouteSummary{Depart: "2025-07-07T09:00", Arrive: "2025-07-07T09:40", DurationMin: 40, FareJPY: 230},
		Legs:    []models.RouteLeg{{Mode: models.ModeBus, DurationMin: 40, FareJPY: 230}},
	}}
	pk := []models.Route{{
		Legs: []models.RouteLeg{
			{Mode: models.ModeWalk, DurationMin: 5},
			{Mode: models.ModeBus, Line: "市バス203系統", DurationMin: 30, Stops: 16},
			{Mode: models.ModeWalk, DurationMin: 3},
		},
	}}

	merged := Merge(tt, pk)
	require.Len(t, merged, 1)

	// Timetable summary stays authoritative.
	assert.Equal(t, "2025-07-07T09:00", merged[0].Summary.Depart)
	assert.Equal(t, 40, merged[0].Summary.DurationMin)

	// Packed granularity wins over the synthetic single leg; the fare the
	// HTML layer knew lands on the first vehicle leg.
	require.Len(t, merged[0].Legs, 3)
	assert.Equal(t, 0, merged[0].Legs[0].FareJPY)
	assert.Equal(t, 230, merged[0].Legs[1].FareJPY)
	assert.Equal(t, "市バス203系統", merged[0].Legs[1].Line)
}

func TestMergePerIndexBackfill(t *testing.T) {
	tt := []models.Route{{
		Summary: models.RouteSummary{DurationMin: 40, FareJPY: 230},
		Legs: []models.RouteLeg{
			{Mode: models.ModeBus, Line: "市バス203系統", From: "浄土寺", DurationMin: 30, FareJPY: 230},
			{Mode: models.ModeWalk, DurationMin: 5},
		},
	}}
	pk := []models.Route{{
		Legs: []models.RouteLeg{
			{Mode: models.ModeBus, From: "浄土寺", To: "四条烏丸", FromLat: 35.0253, FromLng: 135.7936, ToLat: 35.0038, ToLng: 135.7596, Stops: 16},
			{Mode: models.ModeWalk, DistanceKm: 0.4},
		},
	}}

	merged := Merge(tt, pk)
	require.Len(t, merged, 1)
	legs := merged[0].Legs
	require.Len(t, legs, 2)

	// HTML fields win, packed fills the gaps.
	assert.Equal(t, "市バス203系統", legs[0].Line)
	assert.Equal(t, 230, legs[0].FareJPY)
	assert.Equal(t, "四条烏丸", legs[0].To)
	assert.Equal(t, 16, legs[0].Stops)
	assert.InDelta(t, 35.0253, legs[0].FromLat, 1e-9)
	assert.InDelta(t, 0.4, legs[1].DistanceKm, 1e-9)
	assert.Equal(t, 5, legs[1].DurationMin)
}

func TestMergeExtraPackedAppended(t *testing.T) {
	tt := []models.Route{{Summary: models.RouteSummary{DurationMin: 30}}}
	pk := []models.Route{
		{Legs: []models.RouteLeg{{Mode: models.ModeBus, DurationMin: 30}}},
		{Legs: []models.RouteLeg{{Mode: models.ModeTrain, DurationMin: 20}}},
	}

	merged := Merge(tt, pk)
	require.Len(t, merged, 2)
	assert.Equal(t, models.ModeTrain, merged[1].Legs[0].Mode)
}

func TestMergeExtraTimetablePassedThrough(t *testing.T) {
	tt := []models.Route{
		{Summary: models.RouteSummary{DurationMin: 30}, Legs: []models.RouteLeg{{Mode: models.ModeBus, DurationMin: 30}}},
		{Summary: models.RouteSummary{DurationMin: 45}, Legs: []models.RouteLeg{{Mode: models.ModeBus, DurationMin: 45}}},
	}
	pk := []models.Route{{Legs: []models.RouteLeg{{Mode: models.ModeBus, Stops: 16}}}}

	merged := Merge(tt, pk)
	require.Len(t, merged, 2)
	assert.Equal(t, 45, merged[1].Summary.DurationMin)
	assert.Equal(t, 16, merged[0].Legs[0].Stops)
}
