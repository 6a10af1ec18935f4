package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stocktakehq/stockaudit-backend/api/controllers"
	"github.com/stocktakehq/stockaudit-backend/api/middleware"
	"github.com/stocktakehq/stockaudit-backend/internal/addons"
	"github.com/stocktakehq/stockaudit-backend/internal/audits"
	authsvc "github.com/stocktakehq/stockaudit-backend/internal/auth"
	"github.com/stocktakehq/stockaudit-backend/internal/challans"
	"github.com/stocktakehq/stockaudit-backend/internal/damages"
	"github.com/stocktakehq/stockaudit-backend/internal/devices"
	"github.com/stocktakehq/stockaudit-backend/internal/imports"
	"github.com/stocktakehq/stockaudit-backend/internal/inventory"
	"github.com/stocktakehq/stockaudit-backend/internal/racks"
	"github.com/stocktakehq/stockaudit-backend/internal/reports"
	"github.com/stocktakehq/stockaudit-backend/internal/scans"
	"github.com/stocktakehq/stockaudit-backend/pkg/auth/session"
	"github.com/stocktakehq/stockaudit-backend/pkg/config"
	"github.com/stocktakehq/stockaudit-backend/pkg/db"
	"github.com/stocktakehq/stockaudit-backend/pkg/enums"
	"github.com/stocktakehq/stockaudit-backend/pkg/logger"
	"github.com/stocktakehq/stockaudit-backend/pkg/redis"
)

// Services bundles everything the router wires into handlers.
type Services struct {
	Auth      authsvc.Service
	Audits    audits.Service
	Racks     racks.Service
	Scans     scans.Service
	Imports   imports.Service
	Inventory inventory.Service
	Reports   reports.Service
	Damages   damages.Service
	Addons    addons.Service
	Challans  challans.Service
	Devices   devices.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	sessions session.AccessSessionChecker,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	supervisor := string(enums.MemberRoleSupervisor)
	superuser := string(enums.MemberRoleSuperuser)
	scanner := string(enums.MemberRoleScanner)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.Login(svcs.Auth, logg))
		r.Post("/refresh", controllers.Refresh(svcs.Auth, logg))
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.Logout(svcs.Auth, cfg.JWT, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessions, logg))

		r.Route("/audits", func(r chi.Router) {
			r.Get("/", controllers.ListAudits(svcs.Audits, logg))
			r.With(middleware.RequireRole(logg, supervisor, superuser)).
				Post("/", controllers.StartAudit(svcs.Audits, logg))

			r.Route("/{auditID}", func(r chi.Router) {
				r.Get("/", controllers.GetAudit(svcs.Audits, logg))

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireRole(logg, supervisor, superuser))
					r.Post("/complete", controllers.CompleteAudit(svcs.Audits, logg))
					r.Post("/cancel", controllers.CancelAudit(svcs.Audits, logg))
					r.Post("/racks", controllers.CreateRack(svcs.Racks, logg))
				})

				r.Get("/racks", controllers.ListRacks(svcs.Racks, logg))
				r.Get("/report", controllers.VarianceReport(svcs.Reports, logg))

				r.Route("/damages", func(r chi.Router) {
					r.Get("/", controllers.ListDamages(svcs.Damages, logg))
					r.Post("/", controllers.ReportDamage(svcs.Damages, logg))
				})
				r.Route("/addons", func(r chi.Router) {
					r.Get("/", controllers.ListAddons(svcs.Addons, logg))
					r.Post("/", controllers.AddAddon(svcs.Addons, logg))
				})
				r.Route("/challans", func(r chi.Router) {
					r.Get("/", controllers.ListChallans(svcs.Challans, logg))
					r.With(middleware.RequireRole(logg, supervisor, superuser)).
						Post("/", controllers.RecordChallan(svcs.Challans, logg))
				})
			})
		})

		r.Route("/racks/{rackID}", func(r chi.Router) {
			r.Get("/scans", controllers.ListScans(svcs.Scans, logg))
			r.With(middleware.RequireRole(logg, scanner, supervisor, superuser)).
				Post("/scans", controllers.IngestScans(svcs.Scans, svcs.Racks, svcs.Devices, logg))
			r.Post("/submit", controllers.SubmitRack(svcs.Racks, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(logg, supervisor, superuser))
				r.Post("/assign", controllers.AssignRack(svcs.Racks, logg))
				r.Post("/approve", controllers.ApproveRack(svcs.Racks, logg))
				r.Post("/reject", controllers.RejectRack(svcs.Racks, logg))
			})
		})

		r.Route("/damages/{damageID}", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, supervisor, superuser))
			r.Post("/verify", controllers.VerifyDamage(svcs.Damages, logg))
			r.Post("/write-off", controllers.WriteOffDamage(svcs.Damages, logg))
		})

		r.With(middleware.RequireRole(logg, supervisor, superuser)).
			Post("/inventory/import", controllers.UploadInventory(svcs.Imports, cfg.Import, logg))
		r.Get("/inventory", controllers.ListInventory(svcs.Inventory, logg))
		r.Get("/inventory/item", controllers.GetInventoryItem(svcs.Inventory, logg))

		r.Route("/devices", func(r chi.Router) {
			r.Get("/", controllers.ListDevices(svcs.Devices, logg))
			r.Post("/", controllers.RegisterDevice(svcs.Devices, logg))
		})
	})

	return r
}
