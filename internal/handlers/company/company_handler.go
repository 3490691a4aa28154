package company

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/Mohzhal/absensi/internal/repositories"
	attendanceService "github.com/Mohzhal/absensi/internal/services/attendance"
	"github.com/go-chi/chi/v5"
)

// Store is the slice of the company repository the handlers need.
type Store interface {
	GetByID(ctx context.Context, id int) (*models.Company, error)
	List(ctx context.Context) ([]models.Company, error)
	Create(ctx context.Context, c *models.Company) error
	Update(ctx context.Context, c *models.Company) error
	Delete(ctx context.Context, id int) error
}

type Handler struct {
	repo    Store
	service *attendanceService.Service
}

func NewHandler(repo Store, service *attendanceService.Service) *Handler {
	return &Handler{repo: repo, service: service}
}

// Get handles GET /api/companies/{id}. Public: the registration screen
// lists companies before any account exists.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "ID perusahaan tidak valid")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.RespondWithError(w, http.StatusNotFound, "Perusahaan tidak ditemukan")
			return
		}
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat data perusahaan")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	companies, err := h.repo.List(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat daftar perusahaan")
		return
	}
	if companies == nil {
		companies = []models.Company{}
	}
	response.RespondWithJSON(w, http.StatusOK, companies)
}

// Create handles POST /api/companies (super-admin). A zero latitude or
// longitude is rejected up front so no company can be "registered" at the
// unset-coordinate sentinel.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := h.decodeCompany(w, r)
	if !ok {
		return
	}

	if err := h.repo.Create(r.Context(), c); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal menyimpan perusahaan")
		return
	}
	response.RespondWithJSON(w, http.StatusCreated, c)
}

// Update handles PUT /api/companies/{id} (super-admin).
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "ID perusahaan tidak valid")
		return
	}

	c, ok := h.decodeCompany(w, r)
	if !ok {
		return
	}
	c.ID = id

	if err := h.repo.Update(r.Context(), c); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memperbarui perusahaan")
		return
	}
	h.service.InvalidateCompany(r.Context(), id)
	response.RespondWithJSON(w, http.StatusOK, c)
}

// Delete handles DELETE /api/companies/{id} (super-admin).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "ID perusahaan tidak valid")
		return
	}
	if err := h.repo.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrInUse) {
			response.RespondWithError(w, http.StatusConflict, "Perusahaan masih memiliki data absensi dan tidak dapat dihapus")
			return
		}
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal menghapus perusahaan")
		return
	}
	h.service.InvalidateCompany(r.Context(), id)
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "Perusahaan dihapus"})
}

func (h *Handler) decodeCompany(w http.ResponseWriter, r *http.Request) (*models.Company, bool) {
	var c models.Company
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Data perusahaan tidak valid")
		return nil, false
	}
	if c.Name == "" {
		response.RespondWithError(w, http.StatusBadRequest, "Nama perusahaan wajib diisi")
		return nil, false
	}
	if !(geo.Coordinate{Lat: c.Latitude, Lon: c.Longitude}).Valid() {
		response.RespondWithError(w, http.StatusBadRequest, "Koordinat perusahaan tidak valid (0 berarti belum diisi)")
		return nil, false
	}
	if c.ValidRadiusM <= 0 {
		c.ValidRadiusM = models.DefaultValidRadiusM
	}
	return &c, true
}
