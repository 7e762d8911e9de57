package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"equiprent/internal/api"
	"equiprent/internal/auth"
	"equiprent/internal/config"
	"equiprent/internal/repository"
	"equiprent/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"github.com/stripe/stripe-go/v82"
)

func main() {
	godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	stripe.Key = cfg.StripeSecretKey

	userRepo := repository.NewUserRepository(db)
	equipmentRepo := repository.NewEquipmentRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	jobRepo := repository.NewJobRepository(db)

	stripeService := service.NewStripeService()
	senderService := service.NewSenderService()
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	rentalService := service.NewRentalService(rentalRepo, equipmentRepo, userRepo, senderService)
	paymentService := service.NewPaymentService(rentalRepo, paymentRepo, userRepo, equipmentRepo,
		stripeService, senderService, cfg.AppBaseURL)
	jobService := service.NewJobService(jobRepo)

	authHandler := api.NewAuthHandler(authService)
	equipmentHandler := api.NewEquipmentHandler(equipmentRepo)
	rentalHandler := api.NewRentalHandler(rentalService)
	paymentHandler := api.NewPaymentHandler(paymentService)
	webhookHandler := api.NewStripeWebhookHandler(cfg.StripeWebhookSecret, cfg.StripeWebhookFallbackSecret, paymentService)
	adminHandler := api.NewAdminHandler(userRepo, rentalRepo, paymentRepo)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/api/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/equipment", equipmentHandler.ListEquipment).Methods("GET")
	r.HandleFunc("/api/webhook", webhookHandler.HandleWebhook).Methods("POST")

	// Authenticated endpoints
	requireAuth := auth.Middleware(cfg.JWTSecret)

	authed := r.PathPrefix("/api").Subrouter()
	authed.Use(requireAuth)
	authed.HandleFunc("/equipment", equipmentHandler.CreateEquipment).Methods("POST")
	authed.HandleFunc("/rentals", rentalHandler.ListRentals).Methods("GET")
	authed.HandleFunc("/rentals", rentalHandler.CreateRental).Methods("POST")
	authed.HandleFunc("/rentals/{id}/approve", rentalHandler.ApproveRental).Methods("POST")
	authed.HandleFunc("/rentals/{id}/reject", rentalHandler.RejectRental).Methods("POST")
	authed.HandleFunc("/rentals/{id}/cancel", rentalHandler.CancelRental).Methods("POST")
	authed.HandleFunc("/checkout/initiate", paymentHandler.InitiateCheckout).Methods("POST")
	authed.HandleFunc("/vendor/connect", paymentHandler.ConnectAccount).Methods("POST")
	authed.HandleFunc("/vendor/earnings", paymentHandler.VendorEarnings).Methods("GET")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(requireAuth, auth.AdminMiddleware)
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	admin.HandleFunc("/rentals", adminHandler.ListRentals).Methods("GET")
	admin.HandleFunc("/payments", adminHandler.ListPayments).Methods("GET")

	c := cron.New()
	if _, err := c.AddFunc("@hourly", func() {
		if err := jobService.CancelStalePendingRentals(); err != nil {
			log.Printf("Cron job error: %v", err)
		}
	}); err != nil {
		log.Fatalf("Failed to schedule cron job: %v", err)
	}
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{cfg.AppBaseURL}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Authorization", "Content-Type", "Stripe-Signature"}),
	)

	log.Printf("Server running on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
