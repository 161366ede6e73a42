package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

func testProvider(coefficients map[string]string) *refdata.Provider {
	stops := []refdata.StopRecord{
		{ID: 1, NameJa: "京都駅前", NameEn: "Kyoto Station Bus Terminal", Kind: models.KindBusStop, Operator: "市バス", Lat: 34.9862, Lng: 135.7585},
		{ID: 2, NameJa: "七条", NameEn: "Shichijo", Kind: models.KindBusStop, Operator: "市バス", Lat: 34.9906, Lng: 135.7580},
		{ID: 3, NameJa: "烏丸", NameEn: "Karasuma", Kind: models.KindTrainStation, Operator: "阪急", Lat: 35.0037, Lng: 135.7600},
		{ID: 4, NameJa: "四条烏丸", NameEn: "Shijo Karasuma", Kind: models.KindBusStop, Operator: "市バス", Lat: 35.0038, Lng: 135.7596},
		{ID: 5, NameJa: "東寺", NameEn: "Toji", Kind: models.KindBusStop, Operator: "市バス", Lat: 34.9806, Lng: 135.7476},
	}
	landmarks := []refdata.LandmarkRecord{
		{ID: 1, NameJa: "東本願寺", NameEn: "Higashi Honganji", Lat: 34.9910, Lng: 135.7588},
	}
	return refdata.NewStaticProvider(refdata.NewTables(stops, landmarks, coefficients))
}

func TestResolveExactMatch(t *testing.T) {
	r := NewCoordinateResolver(testProvider(nil))

	coord, ok := r.Resolve("四条烏丸(市バス)", "ja")
	require.True(t, ok)
	assert.InDelta(t, 35.0038, coord.Lat, 1e-9)
	assert.InDelta(t, 135.7596, coord.Lng, 1e-9)
}

func TestResolveStrippedMatch(t *testing.T) {
	r := NewCoordinateResolver(testProvider(nil))

	// Rendered pages insert a space before the operator suffix.
	coord, ok := r.Resolve("四条烏丸 (市バス)", "ja")
	require.True(t, ok)
	assert.InDelta(t, 35.0038, coord.Lat, 1e-9)
}

func TestResolveSubstringMatch(t *testing.T) {
	r := NewCoordinateResolver(testProvider(nil))

	// Packed payloads carry bare names without the operator.
	coord, ok := r.Resolve("烏丸", "ja")
	require.True(t, ok)
	assert.InDelta(t, 35.0037, coord.Lat, 1e-9)
	assert.InDelta(t, 135.7600, coord.Lng, 1e-9)
}

func TestResolveLandmark(t *testing.T) {
	r := NewCoordinateResolver(testProvider(nil))

	coord, ok := r.Resolve("東本願寺", "ja")
	require.True(t, ok)
	assert.InDelta(t, 34.9910, coord.Lat, 1e-9)
}

func TestResolveUnknownName(t *testing.T) {
	r := NewCoordinateResolver(testProvider(nil))

	_, ok := r.Resolve("存在しない停留所", "ja")
	assert.False(t, ok)
}

func TestResolveTablesNotLoaded(t *testing.T) {
	r := NewCoordinateResolver(refdata.NewProvider(nil))

	_, ok := r.Resolve("四条烏丸(市バス)", "ja")
	assert.False(t, ok)
}

func TestNearbyOrderedAscending(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(nil))

	hints, err := resolver.Nearby(models.Coordinate{Lat: 34.9870, Lng: 135.7585}, "", "", "ja")
	require.NoError(t, err)
	require.NotEmpty(t, hints)

	for i := 1; i < len(hints); i++ {
		assert.LessOrEqual(t, hints[i-1].Dist2, hints[i].Dist2, "hints must be ordered by distance")
	}
	assert.Equal(t, "京都駅前(市バス)", hints[0].Name)
}

func TestNearbyHintCountCoefficient(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(map[string]string{"hint_count/ja": "3"}))

	hints, err := resolver.Nearby(models.Coordinate{Lat: 34.9870, Lng: 135.7585}, "", "", "ja")
	require.NoError(t, err)

	// Three nearest are all bus stops, so the nearest rail station is
	// appended beyond the configured ceiling.
	require.Len(t, hints, 4)
	assert.Equal(t, "烏丸(阪急)", hints[3].Name)
}

func TestNearbySelfMatchRanksFirst(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(nil))

	// Searching from a known stop, slightly off its stored coordinate.
	hints, err := resolver.Nearby(models.Coordinate{Lat: 35.0040, Lng: 135.7590}, "四条烏丸", models.KindBusStop, "ja")
	require.NoError(t, err)
	require.NotEmpty(t, hints)

	assert.Equal(t, "四条烏丸(市バス)", hints[0].Name)
	assert.Equal(t, float64(0), hints[0].Dist2)
	assert.Equal(t, 1, hints[0].WalkMin)
}

func TestNearbyWalkMinutesClamped(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(nil))

	// Far coordinate: every estimate hits the ceiling.
	hints, err := resolver.Nearby(models.Coordinate{Lat: 35.2000, Lng: 135.9000}, "", "", "ja")
	require.NoError(t, err)
	for _, h := range hints {
		assert.GreaterOrEqual(t, h.WalkMin, 1)
		assert.LessOrEqual(t, h.WalkMin, 15)
	}
}

func TestNearbyTablesNotLoaded(t *testing.T) {
	resolver := NewNearestStopResolver(refdata.NewProvider(nil))

	_, err := resolver.Nearby(models.Coordinate{Lat: 35, Lng: 135.76}, "", "", "ja")
	assert.ErrorIs(t, err, ErrTablesNotLoaded)
}

func TestHintsForPlaceOverride(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(nil))

	coord, hints, found, err := resolver.HintsForPlace("清水寺", "ja")
	require.NoError(t, err)
	require.True(t, found)
	assert.InDelta(t, 34.9949, coord.Lat, 1e-9)
	require.Len(t, hints, 2)
	assert.Equal(t, "清水道(市バス)", hints[0].Name)
	assert.Equal(t, "五条坂(市バス)", hints[1].Name)
}

func TestHintsForPlaceOverrideAlias(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(nil))

	_, hints, found, err := resolver.HintsForPlace("Kiyomizu-dera", "en")
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, hints, 2)
	assert.Equal(t, "清水道(市バス)", hints[0].Name)
}

func TestHintsForPlaceUnknownIsNotAnError(t *testing.T) {
	resolver := NewNearestStopResolver(testProvider(nil))

	_, hints, found, err := resolver.HintsForPlace("未知の場所", "ja")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, hints)
}

func TestHintsForPlaceTablesNotLoaded(t *testing.T) {
	resolver := NewNearestStopResolver(refdata.NewProvider(nil))

	_, _, _, err := resolver.HintsForPlace("四条烏丸", "ja")
	assert.ErrorIs(t, err, ErrTablesNotLoaded)
}
