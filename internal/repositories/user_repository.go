package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/lib/pq"
)

// ErrInUse means the row still owns attendance data and cannot be deleted.
var ErrInUse = errors.New("row is still referenced by attendance records")

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, nik, name, password_hash, role, company_id, is_verified, profile_photo_url`

func (r *UserRepository) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.NIK, &u.Name, &u.PasswordHash, &u.Role,
		&u.CompanyID, &u.IsVerified, &u.ProfilePhotoURL)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByNIK(ctx context.Context, nik string) (*models.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE nik = $1`, nik))
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (nik, name, password_hash, role, company_id, is_verified, profile_photo_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		u.NIK, u.Name, u.PasswordHash, u.Role, u.CompanyID, u.IsVerified, u.ProfilePhotoURL,
	).Scan(&u.ID)
}

func (r *UserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.queryUsers(ctx, `SELECT `+userColumns+` FROM users ORDER BY name`)
}

// Applicants returns unverified employee accounts awaiting HR review.
func (r *UserRepository) Applicants(ctx context.Context) ([]models.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = 'karyawan' AND is_verified = 0 ORDER BY id`)
}

// VerifiedEmployees returns the approved workforce for the HR dashboard.
func (r *UserRepository) VerifiedEmployees(ctx context.Context) ([]models.User, error) {
	return r.queryUsers(ctx,
		`SELECT `+userColumns+` FROM users WHERE role = 'karyawan' AND is_verified = 1 ORDER BY name`)
}

func (r *UserRepository) SetVerified(ctx context.Context, id, verified int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET is_verified = $1 WHERE id = $2`, verified, id)
	return err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id int, role models.Role) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
	return err
}

func (r *UserRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrInUse
	}
	return err
}

func (r *UserRepository) CountByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, role).Scan(&n)
	return n, err
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.NIK, &u.Name, &u.PasswordHash, &u.Role,
			&u.CompanyID, &u.IsVerified, &u.ProfilePhotoURL); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
