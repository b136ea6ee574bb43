package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/dvornik/appointment-booking/internal/booking"
	"github.com/dvornik/appointment-booking/internal/config"
	"github.com/dvornik/appointment-booking/internal/database"
	"github.com/dvornik/appointment-booking/internal/handler"
	"github.com/dvornik/appointment-booking/internal/model"
	"github.com/dvornik/appointment-booking/internal/payment"
	"github.com/dvornik/appointment-booking/internal/queue"
	"github.com/dvornik/appointment-booking/internal/repository"
	"github.com/dvornik/appointment-booking/internal/router"
	queue_publisher "github.com/dvornik/appointment-booking/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	store := repository.NewAppointmentRepo(db)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := users.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword, cfg.BcryptCost); err != nil {
			log.Fatalf("seed admin: %v", err)
		}
		cancel()
	}

	var gateway payment.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Println("STRIPE_SECRET_KEY not set; using in-memory payment gateway (dev only)")
		gateway = payment.NewMemoryGateway()
	}

	locks := booking.NewDayLocks()
	coord := booking.NewCoordinator(store, locks)
	calendar := booking.NewCalendar(store)
	orchestrator := booking.NewOrchestrator(coord, gateway, booking.RetryPolicy{
		MaxAttempts: cfg.GatewayMaxAttempts,
		BaseDelay:   cfg.GatewayRetryBase,
		MaxDelay:    cfg.GatewayRetryMax,
	}, cfg.BookingFeeCents, cfg.Currency)

	bookingHandler := handler.NewBookingHandler(orchestrator)
	if cfg.EventsEnabled {
		bookingHandler.Publish = func(appt model.Appointment, feeCents int64) {
			ref := ""
			if appt.PaymentRef != nil {
				ref = *appt.PaymentRef
			}
			ev := queue.AppointmentConfirmedEvent{
				AppointmentID: appt.ID,
				UserID:        appt.UserID,
				Title:         appt.Title,
				StartsAt:      appt.StartTime.UTC().Format(time.RFC3339),
				EndsAt:        appt.EndTime.UTC().Format(time.RFC3339),
				FeeCents:      feeCents,
				PaymentRef:    ref,
				ConfirmedAt:   time.Now().UTC().Format(time.RFC3339),
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				_ = queue_publisher.PublishAppointmentConfirmed(ctx, ev)
			}()
		}
		go func() {
			if err := queue.StartAppointmentConsumer(); err != nil {
				log.Printf("appointment consumer stopped: %v", err)
			}
		}()
	}

	rlCfg := config.LoadRateLimitConfig()
	rdb := config.NewRedisClient()

	h := router.Handlers{
		Auth:         handler.NewAuthHandler(cfg, users, tokens),
		Slots:        handler.NewSlotHandler(calendar),
		Payments:     handler.NewPaymentHandler(orchestrator, cfg.Currency, cfg.StripePublishableKey),
		Booking:      bookingHandler,
		Appointments: handler.NewAppointmentHandler(store, coord),
		Admin:        handler.NewAdminHandler(store, coord, users, tokens),
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h.Auth)
	router.RegisterAPI(e, h, cfg.JWTSecret, rlCfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
