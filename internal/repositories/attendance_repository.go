package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/lib/pq"
)

// ErrAlreadyRecorded means a record of the same type already exists for the
// user today. The unique index on (user_id, type, day) is the idempotency
// guard: a double-tap can never create two rows.
var ErrAlreadyRecorded = errors.New("attendance already recorded for today")

type AttendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Save(ctx context.Context, a *models.Attendance) error {
	query := `
		INSERT INTO attendance (user_id, company_id, type, photo_url, latitude, longitude, distance_m, is_valid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		a.UserID,
		a.CompanyID,
		a.Type,
		a.PhotoURL,
		a.Latitude,
		a.Longitude,
		a.DistanceM,
		a.IsValid,
		time.Now().UTC(),
	).Scan(&a.ID, &a.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrAlreadyRecorded
	}
	return err
}

// ListByUser returns the user's records, newest first.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID int) ([]models.Attendance, error) {
	query := `
		SELECT id, user_id, company_id, type, photo_url, latitude, longitude, distance_m, is_valid, created_at
		FROM attendance
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.scanRows(r.db.QueryContext(ctx, query, userID))
}

// TodayByUser returns the user's records for the current UTC day, the set
// the client derives its next pending type from.
func (r *AttendanceRepository) TodayByUser(ctx context.Context, userID int) ([]models.Attendance, error) {
	query := `
		SELECT id, user_id, company_id, type, photo_url, latitude, longitude, distance_m, is_valid, created_at
		FROM attendance
		WHERE user_id = $1
		  AND (created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date
		ORDER BY created_at ASC
	`
	return r.scanRows(r.db.QueryContext(ctx, query, userID))
}

// ListAll returns records across users for the HR views. filter narrows the
// window: "today", "week", "month", or "" for everything.
func (r *AttendanceRepository) ListAll(ctx context.Context, filter string) ([]models.Attendance, error) {
	query := `
		SELECT a.id, a.user_id, a.company_id, a.type, a.photo_url, a.latitude, a.longitude,
		       a.distance_m, a.is_valid, a.created_at, u.name, u.nik
		FROM attendance a
		JOIN users u ON u.id = a.user_id
	`
	switch filter {
	case "today":
		query += ` WHERE (a.created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date`
	case "week":
		query += ` WHERE a.created_at > NOW() - INTERVAL '7 days'`
	case "month":
		query += ` WHERE a.created_at > NOW() - INTERVAL '30 days'`
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Attendance
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.CompanyID, &a.Type, &a.PhotoURL,
			&a.Latitude, &a.Longitude, &a.DistanceM, &a.IsValid, &a.CreatedAt,
			&a.UserName, &a.UserNIK); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// ListByCompany returns one company's records for the HR report screens.
// period narrows the window the same way ListAll's filter does.
func (r *AttendanceRepository) ListByCompany(ctx context.Context, companyID int, period string) ([]models.Attendance, error) {
	query := `
		SELECT a.id, a.user_id, a.company_id, a.type, a.photo_url, a.latitude, a.longitude,
		       a.distance_m, a.is_valid, a.created_at, u.name, u.nik
		FROM attendance a
		JOIN users u ON u.id = a.user_id
		WHERE a.company_id = $1
	`
	switch period {
	case "today":
		query += ` AND (a.created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date`
	case "week":
		query += ` AND a.created_at > NOW() - INTERVAL '7 days'`
	case "month":
		query += ` AND a.created_at > NOW() - INTERVAL '30 days'`
	}
	query += ` ORDER BY a.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Attendance
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.CompanyID, &a.Type, &a.PhotoURL,
			&a.Latitude, &a.Longitude, &a.DistanceM, &a.IsValid, &a.CreatedAt,
			&a.UserName, &a.UserNIK); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// CountPresentToday counts distinct users with a check-in today.
func (r *AttendanceRepository) CountPresentToday(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT user_id)
		FROM attendance
		WHERE type = 'checkin'
		  AND (created_at AT TIME ZONE 'UTC')::date = (NOW() AT TIME ZONE 'UTC')::date
	`).Scan(&n)
	return n, err
}

func (r *AttendanceRepository) scanRows(rows *sql.Rows, err error) ([]models.Attendance, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Attendance
	for rows.Next() {
		var a models.Attendance
		if err := rows.Scan(&a.ID, &a.UserID, &a.CompanyID, &a.Type, &a.PhotoURL,
			&a.Latitude, &a.Longitude, &a.DistanceM, &a.IsValid, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}
