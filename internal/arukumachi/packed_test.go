package arukumachi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/kyotransit/internal/geo"
	"github.com/yourorg/kyotransit/internal/models"
	"github.com/yourorg/kyotransit/internal/refdata"
)

const samplePackedBus = "busstop$浄土寺$$$bus$市バス203系統$$0$1800$1800$h$0$16$id$busstop$四条烏丸$$$"

func TestPackedDecodeBusLeg(t *testing.T) {
	d := NewPackedDecoder(nil, nil)

	route, ok := d.Decode(samplePackedBus, "ja")
	require.True(t, ok)
	require.Len(t, route.Legs, 1)

	leg := route.Legs[0]
	assert.Equal(t, models.ModeBus, leg.Mode)
	assert.Equal(t, "市バス203系統", leg.Line)
	assert.Equal(t, 30, leg.DurationMin)
	assert.Equal(t, 16, leg.Stops)
	assert.Equal(t, "浄土寺", leg.From)
	assert.Equal(t, "四条烏丸", leg.To)

	assert.Equal(t, 30, route.Summary.DurationMin)
	assert.Equal(t, 0, route.Summary.Transfers)
}

func TestPackedDecodeWalkLeg(t *testing.T) {
	d := NewPackedDecoder(nil, nil)

	payload := "busstop$四条烏丸$$walk$400$300$$$busstop$烏丸御池$$$"
	route, ok := d.Decode(payload, "ja")
	require.True(t, ok)
	require.Len(t, route.Legs, 1)

	leg := route.Legs[0]
	assert.Equal(t, models.ModeWalk, leg.Mode)
	assert.Equal(t, 5, leg.DurationMin)
	assert.InDelta(t, 0.4, leg.DistanceKm, 1e-9)
	assert.Equal(t, "四条烏丸", leg.From)
	assert.Equal(t, "烏丸御池", leg.To)
}

func TestPackedDecodeMultiLegTransfers(t *testing.T) {
	d := NewPackedDecoder(nil, nil)

	payload := "busstop$浄土寺$$$bus$市バス203系統$$0$1800$1800$h$0$16$id$" +
		"busstop$四条烏丸$$$bus$市バス5系統$$0$600$600$h$0$4$id$busstop$京都駅前$$$"
	route, ok := d.Decode(payload, "ja")
	require.True(t, ok)
	require.Len(t, route.Legs, 2)

	assert.Equal(t, "四条烏丸", route.Legs[1].From)
	assert.Equal(t, "京都駅前", route.Legs[1].To)
	assert.Equal(t, 10, route.Legs[1].DurationMin)
	assert.Equal(t, 1, route.Summary.Transfers)
	assert.Equal(t, 40, route.Summary.DurationMin)
}

func TestPackedDecodeAttachesCoordinates(t *testing.T) {
	stops := []refdata.StopRecord{
		{ID: 1, NameJa: "浄土寺", Kind: models.KindBusStop, Operator: "市バス", Lat: 35.0253, Lng: 135.7936},
		{ID: 2, NameJa: "四条烏丸", Kind: models.KindBusStop, Operator: "市バス", Lat: 35.0038, Lng: 135.7596},
	}
	provider := refdata.NewStaticProvider(refdata.NewTables(stops, nil, nil))
	d := NewPackedDecoder(geo.NewCoordinateResolver(provider), nil)

	route, ok := d.Decode(samplePackedBus, "ja")
	require.True(t, ok)
	require.Len(t, route.Legs, 1)

	leg := route.Legs[0]
	assert.InDelta(t, 35.0253, leg.FromLat, 1e-9)
	assert.InDelta(t, 135.7936, leg.FromLng, 1e-9)
	assert.InDelta(t, 35.0038, leg.ToLat, 1e-9)
	assert.InDelta(t, 135.7596, leg.ToLng, 1e-9)
}

func TestPackedDecodeTooShort(t *testing.T) {
	d := NewPackedDecoder(nil, nil)

	_, ok := d.Decode("busstop$浄土寺$bus", "ja")
	assert.False(t, ok)
}

func TestPackedDecodeNoLegs(t *testing.T) {
	d := NewPackedDecoder(nil, nil)

	// Enough delimiters to pass the length gate, but no transit markers.
	_, ok := d.Decode("a$b$c$d$e$f$g$h$i$j$k$l", "ja")
	assert.False(t, ok)
}

func TestPackedDecodeUnknownMarkersSkipped(t *testing.T) {
	d := NewPackedDecoder(nil, nil)

	// Future marker vocabulary must not break decoding of what follows.
	payload := "zone$3$busstop$浄土寺$$$bus$市バス203系統$$0$1800$1800$h$0$16$id$busstop$四条烏丸$$$"
	route, ok := d.Decode(payload, "ja")
	require.True(t, ok)
	require.Len(t, route.Legs, 1)
	assert.Equal(t, "浄土寺", route.Legs[0].From)
}
