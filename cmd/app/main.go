package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/flightdesk/api"
	"github.com/Domenick1991/flightdesk/config"
	"github.com/Domenick1991/flightdesk/internal/bootstrap"
	"github.com/Domenick1991/flightdesk/internal/cache"
	"github.com/Domenick1991/flightdesk/internal/events"
	"github.com/Domenick1991/flightdesk/internal/logging"
	"github.com/Domenick1991/flightdesk/internal/repository"
	"github.com/Domenick1991/flightdesk/internal/service/directory"
	"github.com/Domenick1991/flightdesk/internal/service/flights"
	"github.com/Domenick1991/flightdesk/internal/service/weather"
	"github.com/Domenick1991/flightdesk/internal/storage"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	log := logging.New(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		flightRepo   repository.FlightRepository
		pilotRepo    repository.PilotRepository
		aircraftRepo repository.AircraftRepository
		store        api.Pinger
	)

	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := storage.OpenPostgres(ctx, cfg.Database.PostgresDSN())
		if err != nil {
			log.Fatalf("connect postgres: %v", err)
		}
		defer pg.Close()

		flightRepo = repository.NewPGFlightRepository(pg)
		pilotRepo = repository.NewPGPilotRepository(pg)
		aircraftRepo = repository.NewPGAircraftRepository(pg)
		store = pg
	default:
		db, err := storage.Open(ctx, cfg.Database.DSN)
		if err != nil {
			log.Fatalf("initialize database: %v", err)
		}
		defer db.Close()

		flightRepo = repository.NewSQLiteFlightRepository(db, log)
		pilotRepo = repository.NewSQLitePilotRepository(db, log)
		aircraftRepo = repository.NewSQLiteAircraftRepository(db, log)
		store = db
	}
	log.WithField("driver", cfg.Database.Driver).Info("database ready")

	flightOpts := []flights.FlightServiceOption{flights.WithLogger(log)}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := events.NewProducer(cfg.Kafka.Brokers, log)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			log.WithError(err).Warn("kafka unreachable, flight events will be dropped until it recovers")
		}
		flightOpts = append(flightOpts, flights.WithEvents(producer, cfg.Kafka.FlightEventsTopic))
	}

	weatherOpts := []weather.WeatherServiceOption{weather.WithLogger(log)}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Weather.CacheTTL())
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unreachable, weather responses will not be cached")
		}
		weatherOpts = append(weatherOpts, weather.WithCache(redisCache))
	}

	svc := bootstrap.Services{
		Flights:   flights.NewFlightService(flightRepo, flightOpts...),
		Directory: directory.NewDirectoryService(pilotRepo, aircraftRepo),
		Weather:   weather.NewWeatherService(cfg.Weather, weatherOpts...),
		Store:     store,
	}

	if err := bootstrap.Run(ctx, cfg, svc, log); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
