package handlers

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chachabrian/mooveit-parcels/internal/delivery"
	"github.com/chachabrian/mooveit-parcels/internal/middleware"
	"github.com/chachabrian/mooveit-parcels/internal/models"
	"github.com/chachabrian/mooveit-parcels/internal/payments"
	"github.com/chachabrian/mooveit-parcels/internal/repository"
	"github.com/chachabrian/mooveit-parcels/internal/services"
)

// RouterDeps is everything the HTTP surface needs.
type RouterDeps struct {
	Store     *repository.Store
	Accounts  *delivery.Accounts
	Lifecycle *delivery.Lifecycle
	Riders    *delivery.Riders
	Cashouts  *delivery.Cashouts
	Tracking  *delivery.Tracking
	Gateway   payments.Gateway
	Hub       *services.Hub
	Verifier  middleware.TokenVerifier
	Log       *slog.Logger

	AllowOrigins []string
	JWTSecret    string
	JWTTTL       time.Duration
	Currency     string
	// UploadDir is served under /uploads when images are stored locally.
	UploadDir string
}

func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = d.AllowOrigins
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	if d.UploadDir != "" {
		r.Static("/uploads", d.UploadDir)
	}
	r.GET("/healthz", Healthz(d.Store))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authenticate := middleware.Authenticate(d.Verifier, d.Accounts)
	adminOnly := middleware.AdminOnly()
	riderOnly := middleware.RiderOnly()
	staffOnly := middleware.Gate(middleware.RequireRole(models.RoleRider, models.RoleAdmin))

	api := r.Group("/api")
	{
		// Public routes
		api.POST("/auth/login", Login(d.Accounts, d.JWTSecret, d.JWTTTL))
		api.POST("/auth/otp", RequestPasswordCode(d.Accounts))
		api.POST("/auth/password", SetPassword(d.Accounts))
		api.GET("/tracking/:trackingId", TrackingHistory(d.Tracking))

		protected := api.Group("/")
		protected.Use(authenticate)
		{
			protected.GET("/ws", WebSocketHandler(d.Hub))
			protected.POST("/users", SaveUser(d.Accounts))
			protected.GET("/users/:email/role", GetUserRole(d.Accounts))

			parcels := protected.Group("/parcels")
			{
				parcels.GET("", ListParcels(d.Lifecycle))
				parcels.POST("", CreateParcel(d.Lifecycle))
				parcels.GET("/:id", GetParcel(d.Lifecycle))
				parcels.DELETE("/:id", adminOnly, DeleteParcel(d.Lifecycle))
				parcels.POST("/:id/image", UploadParcelImage(d.Lifecycle))
				parcels.PATCH("/:id/assign", adminOnly, AssignParcel(d.Lifecycle))
				parcels.PATCH("/:id/pick", riderOnly, PickParcel(d.Lifecycle))
			}

			rider := protected.Group("/rider", riderOnly)
			{
				rider.GET("/parcels", ListRiderParcels(d.Lifecycle))
				rider.PATCH("/parcels/:id/status", UpdateRiderParcelStatus(d.Lifecycle))
				rider.POST("/cashout", Cashout(d.Cashouts))
				rider.GET("/earnings", RiderEarnings(d.Cashouts))
			}

			riders := protected.Group("/riders")
			{
				riders.POST("", ApplyRider(d.Riders))
				riders.GET("", adminOnly, ListRiders(d.Riders, ""))
				riders.GET("/pending", adminOnly, ListRiders(d.Riders, models.RiderPending))
				riders.GET("/approved", adminOnly, ListRiders(d.Riders, models.RiderApproved))
				riders.PATCH("/:id/status", adminOnly, SetRiderStatus(d.Riders))
			}

			protected.GET("/payments", ListPayments(d.Lifecycle))
			protected.POST("/payments", RecordPayment(d.Lifecycle))
			protected.POST("/create-payment-intent", CreatePaymentIntent(d.Gateway, d.Currency))

			protected.GET("/cashouts", staffOnly, ListCashouts(d.Cashouts))
			protected.POST("/tracking", staffOnly, AppendTracking(d.Tracking))
		}
	}

	return r
}
