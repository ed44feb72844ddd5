package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/envboard/envboard/pkg/config"
	"github.com/envboard/envboard/pkg/notifications"
	"github.com/envboard/envboard/pkg/storage"
)

func main() {
	schedule := flag.String("schedule", "0 3 * * *", "Cron schedule for the purge job")
	retention := flag.Duration("retention", 30*24*time.Hour, "How long read notifications are kept")
	runOnce := flag.Bool("once", false, "Run the purge once and exit")
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	db, err := storage.OpenPostgres(cfg.Storage)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	store := notifications.NewPostgresService(db)
	purge := func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-*retention)
		deleted, err := store.PurgeRead(ctx, cutoff)
		if err != nil {
			log.WithError(err).Error("notification purge failed")
			return
		}
		log.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff.Format(time.RFC3339),
		}).Info("purged read notifications")
	}

	if *runOnce {
		purge()
		return
	}

	c := cron.New()
	if _, err := c.AddFunc(*schedule, purge); err != nil {
		log.WithError(err).Fatal("invalid cron schedule")
	}
	c.Start()
	log.WithField("schedule", *schedule).Info("maintenance scheduler started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("stopping")
	<-c.Stop().Done()
}
