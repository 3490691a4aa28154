package hr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeApplicants struct {
	applicants []models.User
	verified   []models.User
	setCalls   []struct{ id, verified int }
}

func (f *fakeApplicants) Applicants(ctx context.Context) ([]models.User, error) {
	return f.applicants, nil
}

func (f *fakeApplicants) VerifiedEmployees(ctx context.Context) ([]models.User, error) {
	return f.verified, nil
}

func (f *fakeApplicants) SetVerified(ctx context.Context, id, verified int) error {
	f.setCalls = append(f.setCalls, struct{ id, verified int }{id, verified})
	return nil
}

func newVerifyRouter(users *fakeApplicants) *chi.Mux {
	h := NewHandler(users, nil)
	router := chi.NewRouter()
	router.Put("/api/hr/verify-applicant/{id}", h.VerifyApplicant)
	router.Get("/api/hr/applicants", h.Applicants)
	router.Get("/api/hr/verified-employees", h.VerifiedEmployees)
	return router
}

func TestVerifyApplicant(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantStatus   int
		wantVerified int
	}{
		{"approved", `{"status":"approved"}`, http.StatusOK, 1},
		{"rejected", `{"status":"rejected"}`, http.StatusOK, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &fakeApplicants{}
			router := newVerifyRouter(users)

			req := httptest.NewRequest(http.MethodPut, "/api/hr/verify-applicant/5", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			require.Len(t, users.setCalls, 1)
			assert.Equal(t, 5, users.setCalls[0].id)
			assert.Equal(t, tt.wantVerified, users.setCalls[0].verified)
		})
	}
}

func TestVerifyApplicantUnknownStatus(t *testing.T) {
	users := &fakeApplicants{}
	router := newVerifyRouter(users)

	req := httptest.NewRequest(http.MethodPut, "/api/hr/verify-applicant/5", strings.NewReader(`{"status":"maybe"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, users.setCalls)
}

func TestVerifiedEmployeesList(t *testing.T) {
	users := &fakeApplicants{verified: []models.User{
		{ID: 2, Name: "Budi", Role: models.RoleKaryawan, IsVerified: 1},
	}}
	router := newVerifyRouter(users)

	req := httptest.NewRequest(http.MethodGet, "/api/hr/verified-employees", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got []models.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Budi", got[0].Name)
}

func TestApplicantsEmptyListIsNotNull(t *testing.T) {
	router := newVerifyRouter(&fakeApplicants{})

	req := httptest.NewRequest(http.MethodGet, "/api/hr/applicants", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
