package main

import (
	"flag"
	"fmt"

	"Flotilla/CronJobs"
	"Flotilla/FiberConfig"
	"Flotilla/Models"
	"Flotilla/Notifications"
	"Flotilla/config"

	log "github.com/sirupsen/logrus"
)

func main() {
	seed := flag.Bool("seed", false, "wipe the database and load demo data")
	cleanup := flag.Bool("cleanup-notifications", false, "remove duplicate unread notifications and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	setupLogging(cfg.LogLevel)

	db, err := Models.Connect(cfg.Database.URL, cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("failed to connect to the database: %v", err)
	}

	if *seed {
		if err := Models.Seed(db); err != nil {
			log.Fatalf("failed to seed the database: %v", err)
		}
		log.Info("database seeded")
		return
	}

	var pusher *Notifications.Pusher
	if cfg.Firebase.CredentialsFile != "" {
		pusher, err = Notifications.NewPusher(cfg.Firebase.CredentialsFile)
		if err != nil {
			log.WithError(err).Warn("firebase unavailable, push delivery disabled")
			pusher = nil
		}
	}
	notifier := Notifications.NewNotifier(db, pusher)

	if *cleanup {
		removed, err := notifier.CleanupDuplicates()
		if err != nil {
			log.Fatalf("failed to clean duplicate notifications: %v", err)
		}
		log.Infof("removed %d duplicate notifications", removed)
		return
	}

	if cfg.Notifier.Cron != "" {
		expiryChecker := CronJobs.NewExpiryChecker(notifier, cfg.Notifier.Cron, false)
		if err := expiryChecker.Start(); err != nil {
			log.Fatalf("failed to start the expiry checker: %v", err)
		}
		defer expiryChecker.Stop()
	}

	app := FiberConfig.New(db, cfg, notifier)
	log.Infof("listening on port %s", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%s", cfg.Server.Port)); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
