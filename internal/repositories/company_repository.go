package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/lib/pq"
)

type CompanyRepository struct {
	db *sql.DB
}

func NewCompanyRepository(db *sql.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

func (r *CompanyRepository) GetByID(ctx context.Context, id int) (*models.Company, error) {
	var c models.Company
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, address, latitude, longitude, valid_radius_m
		FROM companies WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Address, &c.Latitude, &c.Longitude, &c.ValidRadiusM)
	if err != nil {
		return nil, err
	}
	if c.ValidRadiusM <= 0 {
		c.ValidRadiusM = models.DefaultValidRadiusM
	}
	return &c, nil
}

func (r *CompanyRepository) List(ctx context.Context) ([]models.Company, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, address, latitude, longitude, valid_radius_m
		FROM companies ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []models.Company
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Address, &c.Latitude, &c.Longitude, &c.ValidRadiusM); err != nil {
			return nil, err
		}
		if c.ValidRadiusM <= 0 {
			c.ValidRadiusM = models.DefaultValidRadiusM
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *CompanyRepository) Create(ctx context.Context, c *models.Company) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO companies (name, address, latitude, longitude, valid_radius_m)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		c.Name, c.Address, c.Latitude, c.Longitude, c.ValidRadiusM,
	).Scan(&c.ID)
}

func (r *CompanyRepository) Update(ctx context.Context, c *models.Company) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE companies
		SET name = $1, address = $2, latitude = $3, longitude = $4, valid_radius_m = $5
		WHERE id = $6`,
		c.Name, c.Address, c.Latitude, c.Longitude, c.ValidRadiusM, c.ID,
	)
	return err
}

func (r *CompanyRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM companies`).Scan(&n)
	return n, err
}

func (r *CompanyRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM companies WHERE id = $1`, id)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23503" {
		return ErrInUse
	}
	return err
}
