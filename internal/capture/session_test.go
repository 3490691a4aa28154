package capture

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCamera struct {
	photo []byte
}

func (c *stubCamera) Capture(ctx context.Context) ([]byte, error) {
	return c.photo, nil
}

type fakeAPI struct {
	mu          sync.Mutex
	today       []models.Attendance
	todayCalls  int
	submitCalls int
	submitErr   error
	result      *models.AttendanceResult
	block       chan struct{}
}

func (f *fakeAPI) TodayAttendance(ctx context.Context) ([]models.Attendance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.todayCalls++
	return f.today, nil
}

func (f *fakeAPI) SubmitAttendance(ctx context.Context, attType models.AttendanceType, photo []byte, loc geo.Coordinate) (*models.AttendanceResult, error) {
	f.mu.Lock()
	f.submitCalls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	if f.result != nil {
		return f.result, nil
	}
	return &models.AttendanceResult{
		DistanceM: 2,
		IsValid:   true,
		Location:  loc,
		CompanyLocation: geo.Coordinate{
			Lat: -6.4174877, Lon: 107.4009516,
		},
		Msg: "Absensi " + string(attType) + " berhasil",
	}, nil
}

func (f *fakeAPI) submits() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitCalls
}

func recordAt(attType models.AttendanceType, at time.Time) models.Attendance {
	return models.Attendance{UserID: 7, Type: attType, CreatedAt: at}
}

func TestNextAction(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	checkin := recordAt(models.CheckIn, now.Add(-time.Hour))
	checkout := recordAt(models.CheckOut, now.Add(-10*time.Minute))
	yesterday := recordAt(models.CheckIn, now.Add(-24*time.Hour))

	tests := []struct {
		name    string
		records []models.Attendance
		want    models.AttendanceType
		wantErr error
	}{
		{"no records", nil, models.CheckIn, nil},
		{"checkin only", []models.Attendance{checkin}, models.CheckOut, nil},
		{"both exist", []models.Attendance{checkin, checkout}, "", ErrDayComplete},
		{"order independent", []models.Attendance{checkout, checkin}, "", ErrDayComplete},
		{"yesterday ignored", []models.Attendance{yesterday}, models.CheckIn, nil},
		{"checkout without checkin", []models.Attendance{checkout}, models.CheckIn, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextAction(tt.records, now)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActionLabel(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	checkin := recordAt(models.CheckIn, now.Add(-time.Hour))
	checkout := recordAt(models.CheckOut, now.Add(-10*time.Minute))

	assert.Equal(t, "Check-in Sekarang", ActionLabel(nil, now))
	assert.Equal(t, "Check-out Sekarang", ActionLabel([]models.Attendance{checkin}, now))
	assert.Equal(t, "Absensi hari ini sudah lengkap", ActionLabel([]models.Attendance{checkin, checkout}, now))
}

func TestBeginResolvesPendingType(t *testing.T) {
	api := &fakeAPI{today: []models.Attendance{recordAt(models.CheckIn, time.Now().UTC())}}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{Fix: geo.Coordinate{Lat: -6.4, Lon: 107.4}})

	next, err := session.Begin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.CheckOut, next)
	assert.Equal(t, StateAwaitingPhoto, session.State())
}

func TestBeginRefusedWhenDayComplete(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeAPI{today: []models.Attendance{
		recordAt(models.CheckIn, now.Add(-3*time.Hour)),
		recordAt(models.CheckOut, now.Add(-time.Minute)),
	}}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{})

	_, err := session.Begin(context.Background())
	require.ErrorIs(t, err, ErrDayComplete)
	assert.Equal(t, StateIdle, session.State())
}

func TestFullFlowSucceeds(t *testing.T) {
	api := &fakeAPI{}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{Fix: geo.Coordinate{Lat: -6.4174872, Lon: 107.4009542}})
	ctx := context.Background()

	next, err := session.Begin(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.CheckIn, next)

	require.NoError(t, session.TakePhoto(ctx))
	assert.Equal(t, StatePhotoCaptured, session.State())

	result, err := session.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, StateResolved, session.State())
	assert.Equal(t, 2, api.todayCalls, "today's records refetched after the response")

	require.NoError(t, session.Acknowledge())
	assert.Equal(t, StateIdle, session.State())
}

func TestSecondAttemptRejectedWhileSubmitting(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{Fix: geo.Coordinate{Lat: 1, Lon: 1}})
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.TakePhoto(ctx))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = session.Confirm(ctx)
	}()

	require.Eventually(t, func() bool {
		return session.State() == StateSubmitting
	}, time.Second, time.Millisecond)

	_, err = session.Begin(ctx)
	require.ErrorIs(t, err, ErrSessionActive)
	assert.Equal(t, 1, api.submits(), "the rejected attempt must not issue a request")

	close(api.block)
	<-done
}

func TestCancelIssuesNoRequest(t *testing.T) {
	api := &fakeAPI{}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{Fix: geo.Coordinate{Lat: 1, Lon: 1}})
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.TakePhoto(ctx))

	require.NoError(t, session.Cancel())
	assert.Equal(t, StateIdle, session.State())
	assert.Equal(t, models.AttendanceType(""), session.PendingType())
	assert.Equal(t, 0, api.submits())

	_, err = session.Confirm(ctx)
	require.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 0, api.submits())
}

func TestRetakeKeepsPendingType(t *testing.T) {
	api := &fakeAPI{today: []models.Attendance{recordAt(models.CheckIn, time.Now().UTC())}}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{Fix: geo.Coordinate{Lat: 1, Lon: 1}})
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.TakePhoto(ctx))

	require.NoError(t, session.Retake())
	assert.Equal(t, StateAwaitingPhoto, session.State())
	assert.Equal(t, models.CheckOut, session.PendingType())
}

func TestCameraDenialAbortsAttempt(t *testing.T) {
	api := &fakeAPI{}
	session := NewSession(api, DeniedCamera{}, &FixedLocator{Fix: geo.Coordinate{Lat: 1, Lon: 1}})
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)

	err = session.TakePhoto(ctx)
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, StateIdle, session.State())
}

func TestLocationDenialPreservesPhoto(t *testing.T) {
	api := &fakeAPI{}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, DeniedLocator{})
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.TakePhoto(ctx))

	_, err = session.Confirm(ctx)
	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.Equal(t, StatePhotoCaptured, session.State())

	// Granting location later must allow resubmission without retaking.
	session.locator = &FixedLocator{Fix: geo.Coordinate{Lat: 1, Lon: 1}}
	result, err := session.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
}

func TestSubmitFailureReturnsToPhotoCaptured(t *testing.T) {
	api := &fakeAPI{submitErr: context.DeadlineExceeded}
	session := NewSession(api, &stubCamera{photo: []byte("jpg")}, &FixedLocator{Fix: geo.Coordinate{Lat: 1, Lon: 1}})
	ctx := context.Background()

	_, err := session.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, session.TakePhoto(ctx))

	_, err = session.Confirm(ctx)
	require.Error(t, err)
	assert.Equal(t, StatePhotoCaptured, session.State())

	api.submitErr = nil
	result, err := session.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 2, api.submits())
}
