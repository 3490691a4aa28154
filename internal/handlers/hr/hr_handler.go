package hr

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/Mohzhal/absensi/internal/middleware"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/Mohzhal/absensi/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ApplicantStore is the slice of the user repository the HR screens need.
type ApplicantStore interface {
	Applicants(ctx context.Context) ([]models.User, error)
	VerifiedEmployees(ctx context.Context) ([]models.User, error)
	SetVerified(ctx context.Context, id, verified int) error
}

type Handler struct {
	users   ApplicantStore
	manager *ws.Manager
}

func NewHandler(users ApplicantStore, manager *ws.Manager) *Handler {
	return &Handler{users: users, manager: manager}
}

// Applicants handles GET /api/hr/applicants: unverified employee accounts.
func (h *Handler) Applicants(w http.ResponseWriter, r *http.Request) {
	applicants, err := h.users.Applicants(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat daftar pelamar")
		return
	}
	if applicants == nil {
		applicants = []models.User{}
	}
	response.RespondWithJSON(w, http.StatusOK, applicants)
}

// VerifiedEmployees handles GET /api/hr/verified-employees.
func (h *Handler) VerifiedEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.users.VerifiedEmployees(r.Context())
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat daftar karyawan")
		return
	}
	if employees == nil {
		employees = []models.User{}
	}
	response.RespondWithJSON(w, http.StatusOK, employees)
}

// VerifyApplicant handles PUT /api/hr/verify-applicant/{id} with body
// {"status": "approved"|"rejected"}.
func (h *Handler) VerifyApplicant(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "ID pelamar tidak valid")
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Data verifikasi tidak valid")
		return
	}

	var verified int
	var msg string
	switch body.Status {
	case "approved":
		verified = 1
		msg = "Pelamar diterima"
	case "rejected":
		verified = 0
		msg = "Pelamar ditolak"
	default:
		response.RespondWithError(w, http.StatusBadRequest, "Status harus approved atau rejected")
		return
	}

	if err := h.users.SetVerified(r.Context(), id, verified); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memperbarui status pelamar")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": msg})
}

// LiveFeed handles GET /api/ws/attendance: upgrades to a websocket and
// streams accepted attendance events to the HR dashboard.
func (h *Handler) LiveFeed(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak terautentikasi")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Websocket upgrade failed for user %d: %v", userID, err)
		return
	}

	client := &ws.Client{
		Conn:   conn,
		Send:   make(chan []byte, 32),
		UserID: userID,
	}
	h.manager.Register(client)
	go h.manager.WritePump(client)
	go h.manager.ReadPump(client)
}
