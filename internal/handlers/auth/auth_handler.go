package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Mohzhal/absensi/internal/middleware"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/Mohzhal/absensi/internal/repositories"
	authService "github.com/Mohzhal/absensi/internal/services/auth"
)

type Handler struct {
	users      *repositories.UserRepository
	jwtService *authService.JWTService
}

func NewHandler(users *repositories.UserRepository, jwtService *authService.JWTService) *Handler {
	return &Handler{users: users, jwtService: jwtService}
}

// Login handles POST /api/auth/login. The msg strings are part of the wire
// contract: mobile clients match on them to pick friendlier guidance.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Data login tidak valid")
		return
	}

	req.NIK = strings.TrimSpace(req.NIK)
	if req.NIK == "" || req.Password == "" {
		response.RespondWithError(w, http.StatusBadRequest, "NIK dan password wajib diisi")
		return
	}

	user, err := h.users.GetByNIK(r.Context(), req.NIK)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			response.RespondWithError(w, http.StatusUnauthorized, "User tidak ditemukan")
			return
		}
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memuat data user")
		return
	}

	if !authService.CheckPasswordHash(req.Password, user.PasswordHash) {
		response.RespondWithError(w, http.StatusUnauthorized, "Password salah")
		return
	}

	token, refreshToken, err := h.jwtService.GenerateToken(user.ID, user.NIK, user.Role)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal membuat token")
		return
	}

	response.RespondWithJSON(w, http.StatusOK, models.AuthResponse{
		Token:        token,
		RefreshToken: refreshToken,
		User:         user,
	})
}

// Register handles POST /api/auth/register. New employee accounts start
// unverified and wait for HR approval before they can log their first
// attendance.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondWithError(w, http.StatusBadRequest, "Data registrasi tidak valid")
		return
	}

	req.NIK = strings.TrimSpace(req.NIK)
	req.Name = strings.TrimSpace(req.Name)
	if req.NIK == "" || req.Name == "" || req.Password == "" || req.CompanyID == 0 {
		response.RespondWithError(w, http.StatusBadRequest, "NIK, nama, password, dan perusahaan wajib diisi")
		return
	}

	if _, err := h.users.GetByNIK(r.Context(), req.NIK); err == nil {
		response.RespondWithError(w, http.StatusConflict, "NIK sudah terdaftar")
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memeriksa NIK")
		return
	}

	hash, err := authService.HashPassword(req.Password)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal memproses password")
		return
	}

	user := &models.User{
		NIK:             req.NIK,
		Name:            req.Name,
		PasswordHash:    hash,
		Role:            models.RoleKaryawan,
		CompanyID:       req.CompanyID,
		IsVerified:      0,
		ProfilePhotoURL: req.PhotoURL,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal membuat akun")
		return
	}

	response.RespondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"msg":  "Registrasi berhasil, menunggu verifikasi HR",
		"user": user,
	})
}

// Refresh handles POST /api/auth/refresh.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.RefreshToken == "" {
		response.RespondWithError(w, http.StatusUnauthorized, "Refresh token wajib diisi")
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(body.RefreshToken)
	if err != nil {
		response.RespondWithError(w, http.StatusUnauthorized, "Refresh token tidak valid atau kedaluwarsa")
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "User tidak ditemukan")
		return
	}

	token, refreshToken, err := h.jwtService.GenerateToken(user.ID, user.NIK, user.Role)
	if err != nil {
		response.RespondWithError(w, http.StatusInternalServerError, "Gagal membuat token")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, models.AuthResponse{
		Token:        token,
		RefreshToken: refreshToken,
	})
}

// Logout handles POST /api/logout by revoking the refresh token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err == nil && body.RefreshToken != "" {
		if err := h.jwtService.RevokeRefreshToken(body.RefreshToken); err != nil {
			response.RespondWithError(w, http.StatusInternalServerError, "Gagal logout")
			return
		}
	}
	response.RespondWithJSON(w, http.StatusOK, map[string]string{"msg": "Logout berhasil"})
}

// Profile handles GET /api/profile.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		response.RespondWithError(w, http.StatusUnauthorized, "User tidak terautentikasi")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		response.RespondWithError(w, http.StatusNotFound, "User tidak ditemukan")
		return
	}
	response.RespondWithJSON(w, http.StatusOK, user)
}
