package server

import (
	"context"
	"net/http"
	"time"

	"workslot/internal/auth"
	"workslot/internal/booking"
	"workslot/internal/cache"
	"workslot/internal/config"
	"workslot/internal/stats"
	"workslot/internal/user"
	"workslot/internal/workshop"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, c *cache.Cache) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestIDMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(cors.Default())

	userHandler := user.NewHandler(user.NewService(user.NewRepository(db), cfg.JWTSecret))
	workshopHandler := workshop.NewHandler(workshop.NewService(workshop.NewRepository(db), c))
	bookingHandler := booking.NewHandler(booking.NewService(booking.NewRepository(db), c))
	statsHandler := stats.NewHandler(stats.NewRepository(db))

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.RefreshToken)
	}

	router.GET("/workshops", workshopHandler.ListWorkshops)
	router.GET("/workshops/:workshopID", workshopHandler.GetWorkshop)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.GET("/bookings/my", bookingHandler.ListMyBookings)
		protected.PATCH("/bookings/:bookingID/cancel", bookingHandler.CancelBooking)

		// Booking creation is the contended path; rate-limit it separately.
		create := protected.Group("/bookings")
		create.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
		create.POST("", bookingHandler.CreateBooking)
	}

	adminMiddleware := auth.RequireRole(auth.RoleAdmin)
	admin := router.Group("/admin")
	admin.Use(authMiddleware, adminMiddleware)
	{
		admin.POST("/workshops", workshopHandler.CreateWorkshop)
		admin.DELETE("/workshops/:workshopID", workshopHandler.DeleteWorkshop)
		admin.POST("/workshops/:workshopID/slots", workshopHandler.AddTimeSlot)
		admin.GET("/bookings", bookingHandler.ListBookings)
		admin.PATCH("/bookings/:bookingID", bookingHandler.UpdateBookingStatus)
		admin.GET("/stats", statsHandler.GetStats)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the underlying engine for handler-level tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
