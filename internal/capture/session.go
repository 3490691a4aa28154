package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
)

// State names one step of the attendance capture flow.
type State int

const (
	StateIdle State = iota
	StateDeterminingType
	StateAwaitingPhoto
	StatePhotoCaptured
	StateSubmitting
	StateResolved
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDeterminingType:
		return "determining-type"
	case StateAwaitingPhoto:
		return "awaiting-photo"
	case StatePhotoCaptured:
		return "photo-captured"
	case StateSubmitting:
		return "submitting"
	case StateResolved:
		return "resolved"
	}
	return "unknown"
}

var (
	// ErrSessionActive rejects a second capture attempt while one is in
	// flight. Nothing is mutated and no request is issued.
	ErrSessionActive = errors.New("sesi absensi masih berjalan")

	// ErrDayComplete refuses the action once both records exist for today.
	ErrDayComplete = errors.New("Anda sudah check-in dan check-out hari ini")

	ErrNoPhoto      = errors.New("foto belum diambil")
	ErrInvalidState = errors.New("aksi tidak tersedia pada tahap ini")
)

// API is the slice of the backend the capture flow consumes.
// *client.Client satisfies it.
type API interface {
	TodayAttendance(ctx context.Context) ([]models.Attendance, error)
	SubmitAttendance(ctx context.Context, attType models.AttendanceType, photo []byte, loc geo.Coordinate) (*models.AttendanceResult, error)
}

// NextAction decides the pending attendance type from today's records.
// Pure and order-independent: only the presence of a check-in and a
// check-out dated now's UTC day matters.
func NextAction(records []models.Attendance, now time.Time) (models.AttendanceType, error) {
	var hasIn, hasOut bool
	y, m, d := now.UTC().Date()
	for _, rec := range records {
		ry, rm, rd := rec.CreatedAt.UTC().Date()
		if ry != y || rm != m || rd != d {
			continue
		}
		switch rec.Type {
		case models.CheckIn:
			hasIn = true
		case models.CheckOut:
			hasOut = true
		}
	}
	switch {
	case !hasIn:
		return models.CheckIn, nil
	case !hasOut:
		return models.CheckOut, nil
	default:
		return "", ErrDayComplete
	}
}

// ActionLabel is the text for the attendance button given today's records.
func ActionLabel(records []models.Attendance, now time.Time) string {
	next, err := NextAction(records, now)
	if err != nil {
		return "Absensi hari ini sudah lengkap"
	}
	if next == models.CheckIn {
		return "Check-in Sekarang"
	}
	return "Check-out Sekarang"
}

// Session drives one attendance attempt from type determination through
// the server's adjudication. At most one attempt is active at a time;
// Begin refuses to start while another is in flight.
type Session struct {
	api     API
	camera  Camera
	locator Locator

	mu          sync.Mutex
	state       State
	pendingType models.AttendanceType
	photo       []byte
	today       []models.Attendance
	result      *models.AttendanceResult
	now         func() time.Time
}

func NewSession(api API, camera Camera, locator Locator) *Session {
	return &Session{
		api:     api,
		camera:  camera,
		locator: locator,
		state:   StateIdle,
		now:     time.Now,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) PendingType() models.AttendanceType {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pendingType
}

// Today returns the last fetched attendance list for the current day.
// It is wholly replaced on every fetch, never patched.
func (s *Session) Today() []models.Attendance {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.today
}

func (s *Session) Result() *models.AttendanceResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Begin starts an attempt: refetches today's records and resolves the
// pending type. Refused while another attempt is active, and refused
// with ErrDayComplete once both records exist.
func (s *Session) Begin(ctx context.Context) (models.AttendanceType, error) {
	s.mu.Lock()
	if s.state != StateIdle {
		s.mu.Unlock()
		return "", ErrSessionActive
	}
	s.state = StateDeterminingType
	s.result = nil
	s.mu.Unlock()

	records, err := s.api.TodayAttendance(ctx)
	if err != nil {
		s.setState(StateIdle)
		return "", err
	}

	s.mu.Lock()
	s.today = records
	next, err := NextAction(records, s.now())
	if err != nil {
		s.state = StateIdle
		s.pendingType = ""
		s.mu.Unlock()
		return "", err
	}
	s.pendingType = next
	s.state = StateAwaitingPhoto
	s.mu.Unlock()
	return next, nil
}

// TakePhoto captures one still. A declined camera prompt aborts the
// attempt entirely; any other capture error leaves the camera open for
// another try.
func (s *Session) TakePhoto(ctx context.Context) error {
	s.mu.Lock()
	if s.state != StateAwaitingPhoto {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.mu.Unlock()

	photo, err := s.camera.Capture(ctx)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) {
			s.reset()
		}
		return err
	}

	s.mu.Lock()
	s.photo = photo
	s.state = StatePhotoCaptured
	s.mu.Unlock()
	return nil
}

// Retake discards the captured photo and reopens the camera. The pending
// type survives.
func (s *Session) Retake() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePhotoCaptured {
		return ErrInvalidState
	}
	s.photo = nil
	s.state = StateAwaitingPhoto
	return nil
}

// Cancel abandons the attempt. Only defined before submission; once the
// request is in flight it runs to completion.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateIdle:
		return nil
	case StateAwaitingPhoto, StatePhotoCaptured:
		s.photo = nil
		s.pendingType = ""
		s.state = StateIdle
		return nil
	default:
		return ErrInvalidState
	}
}

// Confirm reads one location fix and issues exactly one submission. The
// fix is read here, not at capture time, so it reflects the moment of
// intent. On a declined location prompt or any submission failure the
// session falls back to the captured photo so the user can retry without
// retaking it. On success today's records are refetched before the
// result is returned.
func (s *Session) Confirm(ctx context.Context) (*models.AttendanceResult, error) {
	s.mu.Lock()
	if s.state != StatePhotoCaptured {
		s.mu.Unlock()
		return nil, ErrInvalidState
	}
	if len(s.photo) == 0 {
		s.mu.Unlock()
		return nil, ErrNoPhoto
	}
	photo := s.photo
	attType := s.pendingType
	s.state = StateSubmitting
	s.mu.Unlock()

	fix, err := s.locator.CurrentFix(ctx)
	if err != nil {
		s.setState(StatePhotoCaptured)
		return nil, err
	}

	result, err := s.api.SubmitAttendance(ctx, attType, photo, fix)
	if err != nil {
		s.setState(StatePhotoCaptured)
		return nil, err
	}

	// Truth about "today" lives on the server; replace the local view
	// rather than patching it. A failed refresh is tolerated, the next
	// Begin refetches anyway.
	records, fetchErr := s.api.TodayAttendance(ctx)

	s.mu.Lock()
	s.result = result
	if fetchErr == nil {
		s.today = records
	}
	s.state = StateResolved
	s.mu.Unlock()
	return result, nil
}

// Acknowledge consumes the resolved result and returns to idle.
func (s *Session) Acknowledge() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateResolved {
		return ErrInvalidState
	}
	s.photo = nil
	s.pendingType = ""
	s.state = StateIdle
	return nil
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.photo = nil
	s.pendingType = ""
	s.state = StateIdle
	s.mu.Unlock()
}
