package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Motasaith/abdulshop-backend/api/controllers"
	ordercontrollers "github.com/Motasaith/abdulshop-backend/api/controllers/orders"
	"github.com/Motasaith/abdulshop-backend/api/middleware"
	"github.com/Motasaith/abdulshop-backend/internal/notifications"
	"github.com/Motasaith/abdulshop-backend/internal/orders"
	"github.com/Motasaith/abdulshop-backend/pkg/config"
	"github.com/Motasaith/abdulshop-backend/pkg/db"
	"github.com/Motasaith/abdulshop-backend/pkg/logger"
	"github.com/Motasaith/abdulshop-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersSvc orders.Service,
	notificationsSvc notifications.Service,
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/orders/track/{trackingNumber}", controllers.TrackOrder(ordersSvc, logg))
		r.Post("/orders/track-by-order", controllers.TrackOrderLookup(ordersSvc, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.Put("/{orderId}/pay", ordercontrollers.Pay(ordersSvc, logg))
			r.Put("/{orderId}/cancel", ordercontrollers.Cancel(ordersSvc, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsSvc, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsSvc, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsSvc, logg))
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole("admin", logg))
			r.Get("/ping", controllers.AdminPing())
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", ordercontrollers.AdminList(ordersSvc, logg))
				r.Put("/{orderId}/ship", ordercontrollers.Ship(ordersSvc, logg))
				r.Put("/{orderId}/deliver", ordercontrollers.Deliver(ordersSvc, logg))
			})
		})
	})

	return r
}
