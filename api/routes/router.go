package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/forkful/forkful-backend/api/controllers"
	"github.com/forkful/forkful-backend/api/middleware"
	"github.com/forkful/forkful-backend/internal/catalog"
	"github.com/forkful/forkful-backend/internal/dispatch"
	"github.com/forkful/forkful-backend/internal/notifications"
	"github.com/forkful/forkful-backend/internal/schedules"
	"github.com/forkful/forkful-backend/pkg/config"
	"github.com/forkful/forkful-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	deps map[string]controllers.Pinger,
	schedulesService schedules.Service,
	notificationsService notifications.Service,
	dispatchService *dispatch.Service,
	catalogCache *catalog.Cache,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))
		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/schedules", func(r chi.Router) {
			r.Use(middleware.RequireRole("customer", logg))
			r.Post("/", controllers.CreateSchedule(schedulesService, logg))
			r.Get("/", controllers.ListSchedules(schedulesService, logg))
			r.Get("/{scheduleId}", controllers.GetSchedule(schedulesService, logg))
			r.Post("/{scheduleId}/pause", controllers.PauseSchedule(schedulesService, logg))
			r.Post("/{scheduleId}/resume", controllers.ResumeSchedule(schedulesService, logg))
			r.Post("/{scheduleId}/cancel", controllers.CancelSchedule(schedulesService, logg))
			r.Patch("/{scheduleId}/days", controllers.UpdateScheduleDays(schedulesService, logg))
		})

		r.Route("/v1/vendor", func(r chi.Router) {
			r.Use(middleware.RequireRole("vendor", logg))
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(notificationsService, logg))
				r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			})
			r.Route("/menu", func(r chi.Router) {
				r.Get("/", controllers.VendorMenu(catalogCache, logg))
				r.Post("/refresh", controllers.RefreshVendorMenu(catalogCache, logg))
			})
			r.Post("/orders/{orderId}/accept", controllers.AcceptOrder(dispatchService, logg))
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth, logg))
		r.Use(middleware.RequireRole("admin", logg))
		r.Get("/ping", controllers.AdminPing())
		r.Route("/v1/dispatch", func(r chi.Router) {
			r.With(middleware.OperatorKey(cfg.Auth, logg)).Post("/run", controllers.RunDispatch(dispatchService, logg))
		})
	})

	return r
}
