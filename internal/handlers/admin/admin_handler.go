package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/Mohzhal/absensi/internal/repositories"
	"github.com/go-chi/chi/v5"
)

// UserAdminStore is the slice of the user repository the admin screens need.
type UserAdminStore interface {
	List(ctx context.Context) ([]models.User, error)
	UpdateRole(ctx context.Context, id int, role models.Role) error
	Delete(ctx context.Context, id int) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
}

// CompanyCounter feeds the dashboard's company total.
type CompanyCounter interface {
	Count(ctx context.Context) (int, error)
}

// PresenceCounter feeds the dashboard's attendance-today total.
type PresenceCounter interface {
	CountPresentToday(ctx context.Context) (int, error)
}

type Handler struct {
	users     UserAdminStore
	companies CompanyCounter
	records   PresenceCounter
}

func NewHandler(users UserAdminStore, companies CompanyCounter, records PresenceCounter) *Handler {
	return &Handler{users: users, companies: companies, records: records}
}

// ListUsers handles GET /api/users (super-admin).
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat daftar user")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	response.RespondWithJSON(w, http.StatusOK, users)
}

// UpdateUserRole handles PUT /api/users/{id}/role (super-admin). The role
// must be one of the closed set.
func (h *Handler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "User ID tidak valid")
		return
	}

	var body struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Data tidak valid")
		return
	}

	role, ok := models.ParseRole(body.Role)
	if !ok {
		response.RespondWithError(w, http.StatusBadRequest, "Role tidak dikenali")
		return
	}

	if err := h.users.UpdateRole(r.Context(), id, role); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memperbarui role")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "Role diperbarui"})
}

// DeleteUser handles DELETE /api/users/{id} (super-admin). A user who
// already owns attendance rows cannot be removed; the rows are HR's audit
// trail.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "User ID tidak valid")
		return
	}
	if err := h.users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repositories.ErrInUse) {
			response.RespondWithError(w, http.StatusConflict, "User masih memiliki data absensi dan tidak dapat dihapus")
			return
		}
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal menghapus user")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "User dihapus"})
}

// DashboardStats handles GET /api/admin/dashboard-stats.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	employees, err := h.users.CountByRole(ctx, models.RoleKaryawan)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat statistik")
		return
	}
	hrCount, err := h.users.CountByRole(ctx, models.RoleHR)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat statistik")
		return
	}
	companies, err := h.companies.Count(ctx)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat statistik")
		return
	}
	presentToday, err := h.records.CountPresentToday(ctx)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat statistik")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, map[string]int{
		"total_karyawan": employees,
		"total_hr":       hrCount,
		"total_company":  companies,
		"hadir_hari_ini": presentToday,
	})
}
