// Command castboard-seed populates a Castboard database with sample
// actors and movies. It is intended for local development and demos.
package main

import (
	"context"
	"database/sql"
	"flag"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/castboard/castboard/pkg/agency"
)

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "Postgres connection URL")
		timeout     = flag.Duration("timeout", 30*time.Second, "overall timeout for migrations and seeding")
		verbose     = flag.Bool("verbose", false, "enable debug logging")
	)
	flag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	if *databaseURL == "" {
		log.Fatal("database URL is required (set DATABASE_URL or pass -database-url)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sql.Open("postgres", *databaseURL)
	if err != nil {
		log.WithError(err).Fatal("failed to open database")
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	log.Debug("database connection established")

	if err := agency.RunMigrations(ctx, db); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Debug("migrations applied")

	actors, movies, err := agency.Seed(ctx, agency.NewPostgresStore(db))
	if err != nil {
		log.WithError(err).Fatal("seeding failed")
	}

	log.WithFields(logrus.Fields{
		"actors": actors,
		"movies": movies,
	}).Info("seed data loaded")
}
