package capture

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/Mohzhal/absensi/internal/geo"
)

// ErrPermissionDenied signals that the user declined a camera or location
// permission prompt. Denial is terminal for the current attempt; the flow
// never re-prompts on its own.
var ErrPermissionDenied = errors.New("izin perangkat ditolak")

// Camera produces a single still frame. Capture blocks until the user
// triggers the shutter or the prompt is declined.
type Camera interface {
	Capture(ctx context.Context) ([]byte, error)
}

// Locator produces one foreground high-accuracy fix. There is no
// continuous tracking; the fix is read at submission time so its
// freshness reflects the moment of intent.
type Locator interface {
	CurrentFix(ctx context.Context) (geo.Coordinate, error)
}

// FileCamera reads a prepared still from disk. It stands in for a real
// front-facing camera in the CLI and in tests.
type FileCamera struct {
	Path string
}

func (c *FileCamera) Capture(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return os.ReadFile(c.Path)
}

// FixedLocator always reports the same fix.
type FixedLocator struct {
	Fix geo.Coordinate
}

func (l *FixedLocator) CurrentFix(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	return l.Fix, nil
}

// Meters of northing per degree of latitude.
const metersPerDegreeLat = 111320.0

// JitterLocator reports the base fix displaced by a random offset of at
// most MaxOffsetM meters, approximating GPS noise around a real receiver.
type JitterLocator struct {
	Base       geo.Coordinate
	MaxOffsetM float64
	rng        *rand.Rand
}

func NewJitterLocator(base geo.Coordinate, maxOffsetM float64) *JitterLocator {
	return &JitterLocator{
		Base:       base,
		MaxOffsetM: maxOffsetM,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (l *JitterLocator) CurrentFix(ctx context.Context) (geo.Coordinate, error) {
	if err := ctx.Err(); err != nil {
		return geo.Coordinate{}, err
	}
	angle := l.rng.Float64() * 2 * math.Pi
	magnitude := l.rng.Float64() * l.MaxOffsetM

	dNorth := magnitude * math.Cos(angle)
	dEast := magnitude * math.Sin(angle)

	lat := l.Base.Lat + dNorth/metersPerDegreeLat
	lon := l.Base.Lon + dEast/(metersPerDegreeLat*math.Cos(l.Base.Lat*math.Pi/180))
	return geo.Coordinate{Lat: lat, Lon: lon}, nil
}

// DeniedCamera models a declined camera prompt.
type DeniedCamera struct{}

func (DeniedCamera) Capture(ctx context.Context) ([]byte, error) {
	return nil, ErrPermissionDenied
}

// DeniedLocator models a declined location prompt.
type DeniedLocator struct{}

func (DeniedLocator) CurrentFix(ctx context.Context) (geo.Coordinate, error) {
	return geo.Coordinate{}, ErrPermissionDenied
}
