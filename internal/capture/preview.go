package capture

import (
	"fmt"
	"math"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
)

// minDelta keeps the confirmation map from zooming in past street level
// when the two points are nearly on top of each other.
const minDelta = 0.005

// MapRegion is a map viewport: a center with a span on each axis.
type MapRegion struct {
	Center   geo.Coordinate
	LatDelta float64
	LonDelta float64
}

// FitRegion computes the viewport framing both the employee's fix and the
// company point, with padding so neither marker sits on an edge.
func FitRegion(a, b geo.Coordinate) MapRegion {
	return MapRegion{
		Center: geo.Coordinate{
			Lat: (a.Lat + b.Lat) / 2,
			Lon: (a.Lon + b.Lon) / 2,
		},
		LatDelta: math.Max(math.Abs(a.Lat-b.Lat)*3, minDelta),
		LonDelta: math.Max(math.Abs(a.Lon-b.Lon)*3, minDelta),
	}
}

// Preview is what the confirmation screen renders after an adjudication.
// When either coordinate is unset the map is withheld and FallbackText
// explains why; the distance and status lines still display.
type Preview struct {
	Region       *MapRegion
	FallbackText string
	StatusLine   string
	DistanceLine string
	Msg          string
}

// BuildPreview turns a submission result into render instructions. The
// server's distance, validity, and message are taken as-is; the region
// math is the only client-side geo computation and is advisory only.
func BuildPreview(result *models.AttendanceResult) Preview {
	p := Preview{Msg: result.Msg}

	if result.IsValid {
		p.StatusLine = "Absensi tercatat dalam jangkauan"
	} else {
		p.StatusLine = "Absensi tercatat di luar jangkauan"
	}
	p.DistanceLine = fmt.Sprintf("Jarak dari kantor: %d m", result.DistanceM)

	if !result.Location.Valid() || !result.CompanyLocation.Valid() {
		p.FallbackText = "Koordinat lokasi tidak valid, peta tidak dapat ditampilkan"
		if !result.Location.Valid() {
			// A zero fix also makes the stored distance meaningless.
			p.DistanceLine = "Jarak tidak tersedia"
		}
		return p
	}

	region := FitRegion(result.Location, result.CompanyLocation)
	p.Region = &region
	return p
}
