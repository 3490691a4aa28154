package routes

import (
	"database/sql"
	"net/http"

	"github.com/Mohzhal/absensi/config"
	adminHandlers "github.com/Mohzhal/absensi/internal/handlers/admin"
	attendanceHandlers "github.com/Mohzhal/absensi/internal/handlers/attendance"
	authHandlers "github.com/Mohzhal/absensi/internal/handlers/auth"
	companyHandlers "github.com/Mohzhal/absensi/internal/handlers/company"
	hrHandlers "github.com/Mohzhal/absensi/internal/handlers/hr"
	"github.com/Mohzhal/absensi/internal/middleware"
	"github.com/Mohzhal/absensi/internal/models"
	"github.com/Mohzhal/absensi/internal/pkg/response"
	"github.com/Mohzhal/absensi/internal/repositories"
	attendanceService "github.com/Mohzhal/absensi/internal/services/attendance"
	authService "github.com/Mohzhal/absensi/internal/services/auth"
	"github.com/Mohzhal/absensi/internal/ws"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
	"github.com/redis/go-redis/v9"
)

// Setup wires repositories, services, and handlers onto a router.
func Setup(cfg *config.Config, database *sql.DB, redisClient *redis.Client) *chi.Mux {
	jwtAuth := jwtauth.New("HS256", []byte(cfg.JwtSecret), nil)
	jwtService := authService.NewJWTService(cfg.JwtSecret, redisClient)

	userRepo := repositories.NewUserRepository(database)
	companyRepo := repositories.NewCompanyRepository(database)
	attendanceRepo := repositories.NewAttendanceRepository(database)

	wsManager := ws.NewManager(redisClient)
	attendanceSvc := attendanceService.NewService(companyRepo, attendanceRepo, wsManager, redisClient, cfg.UploadDir)

	authHandler := authHandlers.NewHandler(userRepo, jwtService)
	companyHandler := companyHandlers.NewHandler(companyRepo, attendanceSvc)
	attendanceHandler := attendanceHandlers.NewHandler(attendanceSvc, attendanceRepo, userRepo)
	hrHandler := hrHandlers.NewHandler(userRepo, wsManager)
	adminHandler := adminHandlers.NewHandler(userRepo, companyRepo, attendanceRepo)

	router := chi.NewRouter()
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(jwtauth.Verifier(jwtAuth))
	router.Use(middleware.AddUserIDToContext())

	// Public routes
	router.Post("/api/auth/register", authHandler.Register)
	router.Post("/api/auth/login", authHandler.Login)
	router.Post("/api/auth/refresh", authHandler.Refresh)
	router.Get("/api/companies", companyHandler.List)
	router.Get("/api/companies/{id}", companyHandler.Get)
	router.Handle("/uploads/*", http.StripPrefix("/uploads", http.FileServer(http.Dir(cfg.UploadDir))))
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Authenticated routes
	router.Group(func(r chi.Router) {
		r.Use(jwtauth.Authenticator(jwtAuth))

		r.Get("/api/profile", authHandler.Profile)
		r.Post("/api/logout", authHandler.Logout)

		r.Post("/api/attendance", attendanceHandler.Submit)
		r.Get("/api/attendance", attendanceHandler.List)
		r.Get("/api/attendance/history/{userID}", attendanceHandler.History)
		r.Get("/api/attendance/history/today/{userID}", attendanceHandler.Today)
		// Older app builds hit the today endpoint without the /api prefix.
		r.Get("/attendance/history/today/{userID}", attendanceHandler.Today)

		// HR and super-admin
		r.Group(func(hr chi.Router) {
			hr.Use(middleware.RoleOnly(models.RoleHR, models.RoleSuperAdmin))
			hr.Get("/api/hr/applicants", hrHandler.Applicants)
			hr.Get("/api/hr/verified-employees", hrHandler.VerifiedEmployees)
			hr.Put("/api/hr/verify-applicant/{id}", hrHandler.VerifyApplicant)
			hr.Get("/api/attendance/company/{companyID}", attendanceHandler.CompanyHistory)
			hr.Post("/api/hr/roster/import", hrHandlers.RosterImportHandler(database, cfg.GoogleCredsFile))
			hr.Get("/api/ws/attendance", hrHandler.LiveFeed)
		})

		// Super-admin only
		r.Group(func(sr chi.Router) {
			sr.Use(middleware.RoleOnly(models.RoleSuperAdmin))
			sr.Get("/api/users", adminHandler.ListUsers)
			sr.Put("/api/users/{id}/role", adminHandler.UpdateUserRole)
			sr.Delete("/api/users/{id}", adminHandler.DeleteUser)
			sr.Get("/api/admin/dashboard-stats", adminHandler.DashboardStats)
			sr.Post("/api/companies", companyHandler.Create)
			sr.Put("/api/companies/{id}", companyHandler.Update)
			sr.Delete("/api/companies/{id}", companyHandler.Delete)
		})
	})

	return router
}
