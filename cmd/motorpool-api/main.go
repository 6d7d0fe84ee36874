// README: Entry point; loads config, wires services, starts HTTP server and background schedulers.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"motorpool/internal/auth"
	"motorpool/internal/config"
	httptransport "motorpool/internal/http"
	"motorpool/internal/infra"
	"motorpool/internal/maps"
	"motorpool/internal/modules/email"
	"motorpool/internal/modules/identity"
	"motorpool/internal/modules/notification"
	"motorpool/internal/modules/ride"
	"motorpool/internal/modules/usage"
	"motorpool/internal/modules/vehicle"
	"motorpool/internal/realtime"
	"motorpool/internal/scheduler"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer dbPool.Close()

	redisClient := infra.NewRedis(cfg.Redis.Addr)
	defer redisClient.Close()

	publisher := realtime.NewPublisher(redisClient)
	hub := realtime.NewHub(cfg.WS, log)
	go realtime.RunBridge(ctx, redisClient, hub, log)

	identitySvc := identity.NewService(identity.NewPGStore(dbPool))
	vehicleSvc := vehicle.NewService(vehicle.NewPGStore(dbPool))
	notificationSvc := notification.NewService(notification.NewPGStore(dbPool), publisher, log)

	renderer, err := email.NewTemplateRenderer()
	if err != nil {
		log.Fatal(err)
	}
	emailSvc := email.NewService(email.NewSMTPTransport(cfg.SMTP), renderer, publisher, log)

	rideStore := ride.NewPGStore(dbPool)
	usageSvc := usage.NewService(usage.NewPGStore(dbPool), ride.NewUsageSource(rideStore), log)

	timers := scheduler.NewTimers()
	defer timers.Stop()

	var estimator ride.DistanceEstimator
	if cfg.Maps.APIKey != "" {
		est, err := maps.NewEstimator(cfg.Maps.APIKey)
		if err != nil {
			log.WithError(err).Warn("maps estimator disabled")
		} else {
			estimator = est
		}
	}

	rideSvc := ride.NewService(ride.Deps{
		Store:       rideStore,
		Vehicles:    vehicleSvc,
		Directory:   identitySvc,
		Notifier:    notificationSvc,
		Mailer:      emailSvc,
		Usage:       usageSvc,
		Scheduler:   timers,
		Estimator:   estimator,
		Log:         log,
		NoShowGrace: cfg.Sweep.GracePeriod,
	})
	vehicleSvc.SetOverlapChecker(rideSvc)

	verifier := auth.NewService(cfg.JWT.Secret, cfg.JWT.TokenTTL)

	handler := httptransport.NewRouter(httptransport.RouterDeps{
		Rides:         rideSvc,
		Vehicles:      vehicleSvc,
		Notifications: notificationSvc,
		Usage:         usageSvc,
		Hub:           hub,
		Verifier:      verifier,
		Log:           log,
	})
	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler}

	go rideSvc.RunNoShowSweeper(ctx, cfg.Sweep.Interval)
	go rideSvc.RunApprovalReminder(ctx)
	go usageSvc.RunMonthlyRollup(ctx)

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	log.WithField("addr", cfg.HTTP.Addr).Info("listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
