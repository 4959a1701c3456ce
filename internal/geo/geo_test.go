package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance_IdenticalPoints(t *testing.T) {
	p := Point{Lat: 12.9716, Lng: 77.5946}
	assert.InDelta(t, 0, Distance(p, p), 1e-9)
}

func TestDistance_Symmetry(t *testing.T) {
	a := Point{Lat: 12.9716, Lng: 77.5946}
	b := Point{Lat: 28.6139, Lng: 77.2090}
	assert.InDelta(t, Distance(a, b), Distance(b, a), 1e-9)
}

func TestDistance_OneDegreeLongitudeAtEquator(t *testing.T) {
	// One degree of longitude on the equator is about 111.19 km.
	d := Distance(Point{Lat: 0, Lng: 0}, Point{Lat: 0, Lng: 1})
	assert.InDelta(t, 111.19, d, 0.05)
}

func TestDistance_BangaloreCommute(t *testing.T) {
	// MG Road area to Koramangala, roughly 4.6 km great-circle.
	d := Distance(Point{Lat: 12.9716, Lng: 77.5946}, Point{Lat: 12.9352, Lng: 77.6245})
	assert.InDelta(t, 4.6, d, 0.2)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Point{Lat: 90, Lng: -180}.Validate())
	require.NoError(t, Point{Lat: -90, Lng: 180}.Validate())
	assert.Error(t, Point{Lat: 90.01, Lng: 0}.Validate())
	assert.Error(t, Point{Lat: -91, Lng: 0}.Validate())
	assert.Error(t, Point{Lat: 0, Lng: 180.5}.Validate())
	assert.Error(t, Point{Lat: 0, Lng: -200}.Validate())
	assert.ErrorIs(t, Point{Lat: 91, Lng: 0}.Validate(), ErrInvalidCoordinates)
}
