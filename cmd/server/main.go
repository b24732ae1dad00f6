package main

import (
	"context"
	"log"
	"zynex_site_go/config"
	"zynex_site_go/db"
	"zynex_site_go/handlers"
	"zynex_site_go/middleware"
	"zynex_site_go/models"
	"zynex_site_go/services"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Contact form storage
	contactStore, closeStore := openContactStore(cfg)
	defer closeStore()

	// Bot check for the scheduling link
	recaptcha := services.NewRecaptchaClient(cfg.RecaptchaVerifyURL, cfg.RecaptchaTimeout)
	metrics := services.NewVerificationMetrics(prometheus.DefaultRegisterer)
	verifier := services.NewConsultationVerifier(cfg.RecaptchaSecretKey, recaptcha, metrics)

	consultation := handlers.NewConsultationHandler(verifier, cfg.SchedulingURL)
	contact := handlers.NewContactHandler(services.NewContactService(contactStore, cfg))

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(echomiddleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
	}))
	e.Use(middleware.CSPNonce())

	// Make config available to handlers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("config", cfg)
			return next(c)
		}
	})

	e.GET("/healthz", handlers.HealthHandler)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Protected scheduling redirect
	e.POST("/api/verify-consultation-recaptcha", consultation.VerifyConsultationRecaptcha, middleware.VerificationRateLimiter.Middleware())
	e.POST("/book-call", consultation.BookCall, middleware.VerificationRateLimiter.Middleware())
	e.GET("/partials/book-call", handlers.BookingWidget)

	// Contact form
	e.POST("/api/contact", contact.SubmitContact, middleware.PublicFormRateLimiter.Middleware())

	// Start server
	log.Printf("Server starting on port %s", cfg.ServerPort)
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		// log.Fatal would skip the deferred close
		log.Printf("Failed to start server: %v", err)
	}
}

// openContactStore returns the configured store and a function releasing it
func openContactStore(cfg *config.Config) (services.ContactStore, func()) {
	if cfg.ContactStore == "firestore" {
		store, err := services.NewFirestoreContactStore(context.Background(), cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile, cfg.FirestoreCollection)
		if err != nil {
			log.Fatalf("Failed to initialize Firestore contact store: %v", err)
		}
		log.Printf("Contact submissions stored in Firestore collection %q", cfg.FirestoreCollection)
		return store, func() {
			if err := store.Close(); err != nil {
				log.Printf("Error closing Firestore client: %v", err)
			}
		}
	}

	// Initialize database
	if err := db.Initialize(db.Options{
		Path:        cfg.DBPath,
		TursoURL:    cfg.TursoDatabaseURL,
		TursoToken:  cfg.TursoAuthToken,
		Environment: cfg.Environment,
	}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// Run migrations
	if err := db.AutoMigrate(&models.ContactSubmission{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	return services.NewGormContactStore(db.DB), func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}
