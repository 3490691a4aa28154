package capture

import (
	"testing"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitRegionCentersAndPads(t *testing.T) {
	a := geo.Coordinate{Lat: -6.40, Lon: 107.40}
	b := geo.Coordinate{Lat: -6.50, Lon: 107.44}

	region := FitRegion(a, b)
	assert.InDelta(t, -6.45, region.Center.Lat, 1e-9)
	assert.InDelta(t, 107.42, region.Center.Lon, 1e-9)
	assert.InDelta(t, 0.30, region.LatDelta, 1e-9)
	assert.InDelta(t, 0.12, region.LonDelta, 1e-9)
}

func TestFitRegionClampsToMinimumSpan(t *testing.T) {
	a := geo.Coordinate{Lat: -6.4174877, Lon: 107.4009516}
	b := geo.Coordinate{Lat: -6.4174872, Lon: 107.4009542}

	region := FitRegion(a, b)
	assert.Equal(t, minDelta, region.LatDelta)
	assert.Equal(t, minDelta, region.LonDelta)
}

func TestBuildPreviewInRange(t *testing.T) {
	p := BuildPreview(&models.AttendanceResult{
		DistanceM:       2,
		IsValid:         true,
		Location:        geo.Coordinate{Lat: -6.4174872, Lon: 107.4009542},
		CompanyLocation: geo.Coordinate{Lat: -6.4174877, Lon: 107.4009516},
		Msg:             "Absensi checkin berhasil",
	})

	require.NotNil(t, p.Region)
	assert.Empty(t, p.FallbackText)
	assert.Equal(t, "Absensi tercatat dalam jangkauan", p.StatusLine)
	assert.Equal(t, "Jarak dari kantor: 2 m", p.DistanceLine)
}

func TestBuildPreviewCompanyMisconfigured(t *testing.T) {
	// A company registered with latitude 0 must not produce a map
	// centered on the equator.
	p := BuildPreview(&models.AttendanceResult{
		DistanceM:       0,
		IsValid:         false,
		Location:        geo.Coordinate{Lat: -6.41, Lon: 107.40},
		CompanyLocation: geo.Coordinate{Lat: 0, Lon: 107.40},
		Msg:             "Koordinat lokasi tidak valid",
	})

	assert.Nil(t, p.Region)
	assert.NotEmpty(t, p.FallbackText)
	assert.Equal(t, "Jarak dari kantor: 0 m", p.DistanceLine)
	assert.Equal(t, "Absensi tercatat di luar jangkauan", p.StatusLine)
}

func TestBuildPreviewEmployeeFixMissing(t *testing.T) {
	p := BuildPreview(&models.AttendanceResult{
		DistanceM:       0,
		IsValid:         false,
		Location:        geo.Coordinate{Lat: 0, Lon: 0},
		CompanyLocation: geo.Coordinate{Lat: -6.41, Lon: 107.40},
	})

	assert.Nil(t, p.Region)
	assert.Equal(t, "Jarak tidak tersedia", p.DistanceLine)
}
