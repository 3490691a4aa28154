package attendance

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/Mohzhal/absensi/internal/geo"
	"github.com/Mohzhal/absensi/internal/middleware"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/Mohzhal/absensi/internal/repositories"
	attendanceService "github.com/Mohzhal/absensi/internal/services/attendance"
	"github.com/go-chi/chi/v5"
)

const maxPhotoSize = 10 * 1024 * 1024 // 10 MB

// allowedImageTypes is the set of MIME types accepted for attendance
// photos, matched by magic-byte sniffing rather than the client-sent
// Content-Type.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Submitter adjudicates one capture attempt.
type Submitter interface {
	Submit(ctx context.Context, sub *attendanceService.Submission) (*models.AttendanceResult, error)
}

// RecordLister is the read side of the attendance repository.
type RecordLister interface {
	ListByUser(ctx context.Context, userID int) ([]models.Attendance, error)
	TodayByUser(ctx context.Context, userID int) ([]models.Attendance, error)
	ListAll(ctx context.Context, filter string) ([]models.Attendance, error)
	ListByCompany(ctx context.Context, companyID int, period string) ([]models.Attendance, error)
}

// UserStore resolves the authenticated user.
type UserStore interface {
	GetByID(ctx context.Context, id int) (*models.User, error)
}

type Handler struct {
	service Submitter
	records RecordLister
	users   UserStore
}

func NewHandler(service Submitter, records RecordLister, users UserStore) *Handler {
	return &Handler{service: service, records: records, users: users}
}

// Submit handles POST /api/attendance: one multipart request carrying the
// photo, the proposed type, and the coordinate read at submission time.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak terautentikasi")
		return
	}

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Form tidak valid")
		return
	}

	typ, ok := models.ParseAttendanceType(r.FormValue("type"))
	if !ok {
		response.RespondWithError(w, http.StatusBadRequest, "Tipe absensi tidak dikenali")
		return
	}

	lat, errLat := strconv.ParseFloat(r.FormValue("lat_backup"), 64)
	lon, errLon := strconv.ParseFloat(r.FormValue("lon_backup"), 64)
	if errLat != nil || errLon != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Koordinat lokasi tidak valid")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Foto tidak ditemukan")
		return
	}
	defer file.Close()

	photo, err := io.ReadAll(file)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal membaca foto")
		return
	}
	if !allowedImageTypes[http.DetectContentType(photo)] {
		response.RespondWithError(w, http.StatusBadRequest, "Format foto tidak didukung")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak ditemukan")
		return
	}
	if user.Role == models.RoleKaryawan && user.IsVerified == 0 {
		response.RespondWithError(w, http.StatusForbidden, "Akun Anda belum diverifikasi oleh HR/Admin")
		return
	}

	result, err := h.service.Submit(r.Context(), &attendanceService.Submission{
		User:     user,
		Type:     typ,
		Photo:    photo,
		Location: geo.Coordinate{Lat: lat, Lon: lon},
	})
	if err != nil {
		if errors.Is(err, repositories.ErrAlreadyRecorded) {
			label := "check-in"
			if typ == models.CheckOut {
				label = "check-out"
			}
			response.RespondWithError(w, http.StatusConflict, "Anda sudah melakukan "+label+" hari ini")
			return
		}
		log.Printf("Attendance submit failed for user %d: %v", userID, err)
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal menyimpan absensi")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, result)
}

// List handles GET /api/attendance. Employees get their own records; HR and
// super-admin get everyone's, optionally narrowed with ?filter=today|week|month.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak terautentikasi")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak ditemukan")
		return
	}

	var records []models.Attendance
	if user.Role == models.RoleHR || user.Role == models.RoleSuperAdmin {
		records, err = h.records.ListAll(r.Context(), r.URL.Query().Get("filter"))
	} else {
		records, err = h.records.ListByUser(r.Context(), userID)
	}
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat data absensi")
		return
	}
	if records == nil {
		records = []models.Attendance{}
	}
	response.RespondWithJSON(w, http.StatusOK, records)
}

// CompanyHistory handles GET /api/attendance/company/{companyID}?period=,
// the feed behind the HR report screens.
func (h *Handler) CompanyHistory(w http.ResponseWriter, r *http.Request) {
	companyID, err := strconv.Atoi(chi.URLParam(r, "companyID"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Company ID tidak valid")
		return
	}

	records, err := h.records.ListByCompany(r.Context(), companyID, r.URL.Query().Get("period"))
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat data absensi")
		return
	}
	if records == nil {
		records = []models.Attendance{}
	}
	response.RespondWithJSON(w, http.StatusOK, records)
}

// History handles GET /api/attendance/history/{userID}. Employees may only
// read their own history; HR and super-admin may read anyone's.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	h.userScopedList(w, r, h.records.ListByUser)
}

// Today handles GET /api/attendance/history/today/{userID}.
func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	h.userScopedList(w, r, h.records.TodayByUser)
}

func (h *Handler) userScopedList(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, userID int) ([]models.Attendance, error)) {

	requesterID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak terautentikasi")
		return
	}

	targetID, err := strconv.Atoi(chi.URLParam(r, "userID"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "User ID tidak valid")
		return
	}

	if targetID != requesterID {
		requester, err := h.users.GetByID(r.Context(), requesterID)
		if err != nil || requester.Role == models.RoleKaryawan {
			response.RespondWithError(w, http.StatusForbidden, "Akses ditolak")
			return
		}
	}

	records, err := fetch(r.Context(), targetID)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat data absensi")
		return
	}
	if records == nil {
		records = []models.Attendance{}
	}
	response.RespondWithJSON(w, http.StatusOK, records)
}
