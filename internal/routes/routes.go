package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consultorio-api/internal/audit"
	"github.com/BruksfildServices01/consultorio-api/internal/auth"
	"github.com/BruksfildServices01/consultorio-api/internal/config"
	"github.com/BruksfildServices01/consultorio-api/internal/export"
	"github.com/BruksfildServices01/consultorio-api/internal/handlers"
	"github.com/BruksfildServices01/consultorio-api/internal/infra/ratelimit"
	infraRepo "github.com/BruksfildServices01/consultorio-api/internal/infra/repository"
	"github.com/BruksfildServices01/consultorio-api/internal/logging"
	"github.com/BruksfildServices01/consultorio-api/internal/metrics"
	"github.com/BruksfildServices01/consultorio-api/internal/middleware"
	"github.com/BruksfildServices01/consultorio-api/internal/models"
	ucAgenda "github.com/BruksfildServices01/consultorio-api/internal/usecase/agenda"
	ucAppointment "github.com/BruksfildServices01/consultorio-api/internal/usecase/appointment"
	ucBlackout "github.com/BruksfildServices01/consultorio-api/internal/usecase/blackout"
	"github.com/BruksfildServices01/consultorio-api/internal/validators"
	"github.com/BruksfildServices01/consultorio-api/internal/web"
)

// Deps are the long-lived singletons built by main.
type Deps struct {
	DB       *gorm.DB
	Config   *config.Config
	Logger   *logging.Logger
	Location *time.Location

	Issuer   *auth.TokenIssuer
	Audit    *audit.Dispatcher
	Notifier ucAppointment.Notifier
	Metrics  *metrics.ClinicMetrics
	Gatherer prometheus.Gatherer

	// Limiter throttles /api/public. Nil disables it.
	Limiter ratelimit.Limiter
	// Backup is nil when no bucket is configured.
	Backup *export.Backup
}

func RegisterRoutes(r *gin.Engine, d Deps) {

	// ======================================================
	// 🌍 MIDDLEWARE GLOBAL
	// ======================================================
	r.Use(middleware.RequestLogger(d.Logger, d.Metrics))
	r.Use(middleware.CORSMiddleware())

	// ======================================================
	// 🔧 INFRA (SINGLETONS)
	// ======================================================
	cfg := d.Config
	loc := d.Location
	appointmentRepo := infraRepo.NewAppointmentGormRepository(d.DB)
	emailChecker := validators.NewEmailChecker(nil, cfg.VerifyEmailDomain)

	// ======================================================
	// 🧠 USE CASES
	// ======================================================
	createAppointmentUC := ucAppointment.NewCreateAppointment(
		appointmentRepo,
		d.Audit,
		d.Notifier,
		d.Metrics,
		loc,
		cfg.ClinicName,
	)
	availabilityUC := ucAppointment.NewGetAvailability(appointmentRepo, loc)
	rescheduleUC := ucAppointment.NewReschedule(appointmentRepo, d.Audit, loc)
	deleteAppointmentUC := ucAppointment.NewDeleteAppointment(appointmentRepo, d.Audit, loc)
	listAppointmentsUC := ucAppointment.NewListAppointments(appointmentRepo, loc)

	checkInUC := ucAppointment.NewCheckIn(appointmentRepo, d.Audit, d.Metrics, loc)
	collectPaymentUC := ucAppointment.NewCollectPayment(appointmentRepo, d.Audit, d.Metrics, loc)
	updateStatusUC := ucAppointment.NewUpdateStatus(appointmentRepo, d.Audit, d.Metrics, loc)

	getAgendaUC := ucAgenda.NewGetAgenda(appointmentRepo)
	replaceAgendaUC := ucAgenda.NewReplaceAgenda(appointmentRepo, d.Audit)

	blackoutManager := ucBlackout.NewManager(appointmentRepo, d.Audit, loc)

	// ======================================================
	// 🧩 HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(d.DB, d.Issuer, d.Audit, cfg.IsProduction())
	userHandler := handlers.NewUserHandler(d.DB, d.Audit)
	patientHandler := handlers.NewPatientHandler(d.DB, d.Audit, loc)

	appointmentHandler := handlers.NewAppointmentHandler(
		createAppointmentUC,
		availabilityUC,
		rescheduleUC,
		deleteAppointmentUC,
		listAppointmentsUC,
		loc,
	)
	frontDeskHandler := handlers.NewFrontDeskHandler(
		checkInUC,
		collectPaymentUC,
		updateStatusUC,
		listAppointmentsUC,
		d.DB,
		loc,
	)

	agendaHandler := handlers.NewAgendaHandler(getAgendaUC, replaceAgendaUC)
	blackoutHandler := handlers.NewBlackoutHandler(blackoutManager)
	paymentHandler := handlers.NewPaymentHandler(d.DB, d.Audit, loc)
	noteHandler := handlers.NewClinicalNoteHandler(d.DB, d.Audit, loc)
	reportHandler := handlers.NewReportHandler(appointmentRepo, listAppointmentsUC, loc)
	adminHandler := handlers.NewAdminHandler(d.DB, d.Backup, d.Audit)
	auditLogsHandler := handlers.NewAuditLogsHandler(d.DB, loc)
	healthHandler := handlers.NewHealthHandler(d.DB)

	publicHandler := handlers.NewPublicHandler(
		appointmentRepo,
		availabilityUC,
		createAppointmentUC,
		emailChecker,
	)
	appWebHandler := handlers.NewAppWebHandler(cfg.ClinicName)

	staff := []string{models.RoleFrontDesk, models.RoleAdmin}
	admin := middleware.RequireRoles(models.RoleAdmin)
	doctor := middleware.RequireRoles(models.RoleDoctor)
	frontDesk := middleware.RequireRoles(models.RoleFrontDesk)

	// ======================================================
	// 🩺 OPERACIONES
	// ======================================================
	r.GET("/health", healthHandler.Check)
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ======================================================
	// 🌍 PÁGINAS (HTML)
	// ======================================================
	r.SetHTMLTemplate(web.Templates())
	r.GET("/login", appWebHandler.LoginPage)

	pages := r.Group("/")
	pages.Use(middleware.PageAuth(d.Issuer))
	{
		pages.GET("/", appWebHandler.Home)
		pages.GET("/secretaria", middleware.RequireRoles(models.RoleFrontDesk), appWebHandler.FrontDesk)
		pages.GET("/administrador", admin, appWebHandler.Admin)
		pages.GET("/medico", doctor, appWebHandler.Doctor)
		pages.GET("/turnos", appWebHandler.Appointments)
		pages.GET("/pacientes", appWebHandler.Patients)
		pages.GET("/agenda", appWebHandler.Agenda)
		pages.GET("/historias", doctor, appWebHandler.History)
	}

	// ======================================================
	// 🌐 API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// 🌐 API PÚBLICA
		// ------------------------------
		publicAPI := api.Group("/public")
		publicAPI.Use(middleware.RateLimit(d.Limiter, d.Logger))
		{
			publicAPI.GET("/medicos", publicHandler.Doctors)
			publicAPI.GET("/turnos-disponibles", publicHandler.AvailableSlots)
			publicAPI.POST("/turnos", publicHandler.CreateAppointment)
		}

		// ------------------------------
		// 🔐 AUTH
		// ------------------------------
		api.POST("/auth/login", authHandler.Login)
		api.POST("/auth/logout", authHandler.Logout)

		// ------------------------------
		// 🔐 API PRIVADA
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(d.Issuer))
		{
			secured.GET("/session-info", authHandler.SessionInfo)

			// USUARIOS
			secured.GET("/usuarios", userHandler.List)
			secured.POST("/usuarios", admin, userHandler.Create)
			secured.PATCH("/usuarios/:id", admin, userHandler.Update)

			// PACIENTES
			secured.GET("/pacientes", patientHandler.List)
			secured.POST("/pacientes", patientHandler.Create)
			secured.GET("/pacientes/recepcionados", frontDeskHandler.CheckedIn)
			secured.GET("/pacientes/sala-espera", frontDeskHandler.WaitingRoom)
			secured.GET("/pacientes/:dni", patientHandler.Get)
			secured.PUT("/pacientes/:dni", frontDesk, patientHandler.Update)
			secured.DELETE("/pacientes/:dni", frontDesk, patientHandler.Delete)

			// AGENDA
			secured.GET("/agenda", agendaHandler.Get)
			secured.PUT("/agenda/:medico", middleware.RequireRoles(staff...), agendaHandler.Replace)

			// TURNOS
			secured.POST("/turnos", appointmentHandler.Create)
			secured.GET("/turnos", appointmentHandler.List)
			secured.GET("/turnos/dia", appointmentHandler.Day)
			secured.GET("/turnos/medico", appointmentHandler.ByDoctor)
			secured.GET("/turnos/mes", appointmentHandler.ByMonth)
			secured.GET("/turnos/disponibles", appointmentHandler.Available)

			secured.PUT("/turnos/recepcionar", middleware.RequireRoles(staff...), frontDeskHandler.CheckIn)
			secured.PUT("/turnos/sala-espera", middleware.RequireRoles(staff...), frontDeskHandler.CollectPayment)
			secured.PUT("/turnos/estado", doctor, frontDeskHandler.UpdateStatus)

			secured.PUT(
				"/turnos/:id/:fecha/:hora",
				middleware.RequireRoles(models.RoleFrontDesk, models.RoleDoctor),
				appointmentHandler.Reschedule,
			)
			secured.DELETE("/turnos/:id", frontDesk, appointmentHandler.DeleteByID)
			secured.DELETE("/turnos/:id/:fecha/:hora", frontDesk, appointmentHandler.DeleteByKey)

			// BLOQUEOS
			secured.GET("/bloqueos-agenda", blackoutHandler.List)
			secured.POST("/bloqueos-agenda", blackoutHandler.Create)
			secured.DELETE("/bloqueos-agenda/:id", blackoutHandler.Deactivate)

			// PAGOS
			secured.GET("/pagos", paymentHandler.List)
			secured.POST("/pagos", paymentHandler.Create)
			secured.GET("/pagos/estadisticas", paymentHandler.Stats)
			secured.GET("/pagos/exportar", admin, paymentHandler.Export)
			secured.DELETE(
				"/pagos/:id",
				middleware.RequireRoles(models.RoleFrontDesk, models.RoleDoctor),
				paymentHandler.Delete,
			)

			// HISTORIAS CLÍNICAS
			secured.POST("/historias", doctor, noteHandler.Create)
			secured.GET("/historias", noteHandler.Search)
			secured.GET("/historias/:dni", noteHandler.ByPatient)

			// REPORTES
			secured.GET("/reportes/turnos", admin, reportHandler.Appointments)
			secured.GET("/reportes/ocupacion", admin, reportHandler.Occupancy)
			secured.GET("/reportes/atenciones", admin, reportHandler.Attendances)

			// ADMIN
			secured.GET("/admin/db", admin, adminHandler.DownloadDB)
			secured.POST("/admin/backup", admin, adminHandler.Backup)
			secured.GET("/audit-logs", admin, auditLogsHandler.List)
		}
	}
}
