package router

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/journihealth/journi_backend/config"
	"github.com/journihealth/journi_backend/internal/api/http/handler"
	"github.com/journihealth/journi_backend/internal/api/http/middleware"
	"github.com/journihealth/journi_backend/internal/repository"
	"github.com/journihealth/journi_backend/internal/service/auth"
	"github.com/journihealth/journi_backend/internal/service/owner"
	"github.com/journihealth/journi_backend/internal/service/patient"
	"github.com/journihealth/journi_backend/internal/service/practice"
	"github.com/journihealth/journi_backend/internal/service/session"
	"github.com/journihealth/journi_backend/internal/service/staff"
)

// Module provides the Router to the fx graph.
var Module = fx.Module("router", fx.Provide(NewRouter))

type Params struct {
	fx.In

	Cfg         *config.Config
	AuthSvc     auth.Service
	OwnerSvc    owner.Service
	PracticeSvc practice.Service
	StaffSvc    staff.Service
	PatientSvc  patient.Service
	SessionSvc  session.Service
}

type Router struct {
	p Params
}

func NewRouter(p Params) *Router {
	return &Router{p: p}
}

func (r *Router) Register(app *fiber.App) {
	// 1. Health & Metrics
	r.registerSystemRoutes(app)

	// 2. Initialize Middlewares
	authRequired := middleware.AuthRequired(r.p.AuthSvc)
	practiceCtx := middleware.PracticeContext(r.p.AuthSvc)
	ownerOnly := middleware.RequireOwner()

	// 3. Initialize Handlers
	authH := handler.NewAuthHandler(r.p.AuthSvc, r.p.Cfg)
	ownerH := handler.NewOwnerHandler(r.p.OwnerSvc)
	practiceH := handler.NewPracticeHandler(r.p.PracticeSvc)
	staffH := handler.NewStaffHandler(r.p.StaffSvc)
	patientH := handler.NewPatientHandler(r.p.PatientSvc)
	sessionH := handler.NewSessionHandler(r.p.SessionSvc)

	api := app.Group("/api/v1")

	// 4. Delegate to sub-files
	r.registerAuthRoutes(api, authH, authRequired)
	r.registerOwnerRoutes(api, ownerH, authRequired, ownerOnly)
	r.registerPracticeRoutes(api, practiceH, authRequired, ownerOnly)
	r.registerStaffRoutes(api, staffH, authRequired, practiceCtx)
	r.registerPatientRoutes(api, patientH, sessionH, authRequired, practiceCtx)
	r.registerSessionRoutes(api, sessionH, authRequired, practiceCtx)
}

func (r *Router) registerSystemRoutes(app *fiber.App) {
	app.Get(healthcheck.LivenessEndpoint, healthcheck.New())
	app.Get(healthcheck.ReadinessEndpoint, healthcheck.New())
	app.Get(healthcheck.StartupEndpoint, healthcheck.New())

	if r.p.Cfg.Observability.Enabled && r.p.Cfg.Observability.Metrics.Enabled {
		path := r.p.Cfg.Observability.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, adaptor.HTTPHandler(promhttp.Handler()))
	}
}

// Roles admitted to staff and assignment management.
var adminRoles = []string{repository.RoleAdmin}

// Roles admitted to patient reads.
var clinicalRoles = []string{repository.RoleAdmin, repository.RoleSupervisor, repository.RoleTherapist}
