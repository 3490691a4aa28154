package admin

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/repositories"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	users     []models.User
	deleteErr error
	deleted   []int
	roleCalls int
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) { return f.users, nil }

func (f *fakeUsers) UpdateRole(ctx context.Context, id int, role models.Role) error {
	f.roleCalls++
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id int) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeUsers) CountByRole(ctx context.Context, role models.Role) (int, error) {
	n := 0
	for _, u := range f.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

type fakeCompanies struct{ total int }

func (f *fakeCompanies) Count(ctx context.Context) (int, error) { return f.total, nil }

type fakePresence struct{ present int }

func (f *fakePresence) CountPresentToday(ctx context.Context) (int, error) { return f.present, nil }

func adminRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()
	r.Get("/api/users", h.ListUsers)
	r.Put("/api/users/{id}/role", h.UpdateUserRole)
	r.Delete("/api/users/{id}", h.DeleteUser)
	r.Get("/api/admin/dashboard-stats", h.DashboardStats)
	return r
}

func TestDeleteUserWithAttendanceConflicts(t *testing.T) {
	users := &fakeUsers{deleteErr: repositories.ErrInUse}
	h := NewHandler(users, &fakeCompanies{}, &fakePresence{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/7", nil)
	rec := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "tidak dapat dihapus")
}

func TestDeleteUser(t *testing.T) {
	users := &fakeUsers{}
	h := NewHandler(users, &fakeCompanies{}, &fakePresence{})

	req := httptest.NewRequest(http.MethodDelete, "/api/users/7", nil)
	rec := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []int{7}, users.deleted)
}

func TestUpdateUserRoleRejectsUnknownRole(t *testing.T) {
	users := &fakeUsers{}
	h := NewHandler(users, &fakeCompanies{}, &fakePresence{})

	req := httptest.NewRequest(http.MethodPut, "/api/users/3/role", strings.NewReader(`{"role":"manager"}`))
	rec := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, users.roleCalls)
}

func TestDashboardStats(t *testing.T) {
	users := &fakeUsers{users: []models.User{
		{ID: 1, Role: models.RoleKaryawan},
		{ID: 2, Role: models.RoleKaryawan},
		{ID: 3, Role: models.RoleHR},
	}}
	h := NewHandler(users, &fakeCompanies{total: 4}, &fakePresence{present: 2})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/dashboard-stats", nil)
	rec := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `"total_karyawan":2`)
	assert.Contains(t, body, `"total_hr":1`)
	assert.Contains(t, body, `"total_company":4`)
	assert.Contains(t, body, `"hadir_hari_ini":2`)
}

func TestListUsersEmptyListIsNotNull(t *testing.T) {
	h := NewHandler(&fakeUsers{}, &fakeCompanies{}, &fakePresence{})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	adminRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}
