package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ardanlabs/conf"
	"github.com/baytransit/nextrain/app/nextrain-api/webapi"
	"github.com/baytransit/nextrain/business/data/catalog"
	"github.com/baytransit/nextrain/business/support"
	"github.com/baytransit/nextrain/business/transit/actransit"
	"github.com/baytransit/nextrain/business/transit/bart"
	"github.com/baytransit/nextrain/business/transit/predictions"
	"github.com/baytransit/nextrain/foundation/agencyconf"
	"github.com/baytransit/nextrain/foundation/database"
	"github.com/baytransit/nextrain/foundation/ttlcache"
	"github.com/jmoiron/sqlx"
	"github.com/nats-io/nats.go"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "NEXTRAIN_API : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Web struct {
			Port                   int `conf:"default:8080"`
			PredictionCacheSize    int `conf:"default:512"`
			PredictionCacheSeconds int `conf:"default:30"`
		}
		DB struct {
			Engine     string `conf:"default:sqlite"`
			SQLitePath string `conf:"default:nextrain.db"`
			User       string `conf:"default:postgres"`
			Password   string `conf:"default:postgres,noprint"`
			Host       string `conf:"default:0.0.0.0"`
			Name       string `conf:"default:postgres"`
			DisableTLS bool   `conf:"default:true"`
		}
		Agencies struct {
			Path string `conf:"default:agencies.yml"`
		}
		Nats struct {
			URL               string
			PredictionSubject string `conf:"default:nextrain.predictions"`
			SupportSubject    string `conf:"default:nextrain.support"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Serve aggregated transit predictions"
	const prefix = "NEXTRAIN_API"
	if err := conf.Parse(os.Args[1:], prefix, &cfg); err != nil {
		switch err {
		case conf.ErrHelpWanted:
			usage, err := conf.Usage(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config usage: %w", err)
			}
			fmt.Println(usage)
			return nil
		case conf.ErrVersionWanted:
			version, err := conf.VersionString(prefix, &cfg)
			if err != nil {
				return fmt.Errorf("generating config version: %w", err)
			}
			fmt.Println(version)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	log.Printf("main : Started : Application initializing : version %s", build)
	defer log.Println("main: Completed")

	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Printf("main: Config :\n%v\n", out)

	registry, err := agencyconf.Load(cfg.Agencies.Path)
	if err != nil {
		return fmt.Errorf("loading agency registry: %w", err)
	}
	busAgency, ok := registry.Lookup(actransit.AgencyCode)
	if !ok {
		return fmt.Errorf("agency registry is missing %q", actransit.AgencyCode)
	}
	railAgency, ok := registry.Lookup(bart.AgencyCode)
	if !ok {
		return fmt.Errorf("agency registry is missing %q", bart.AgencyCode)
	}

	log.Println("main: Initializing database support")
	db, err := openDatabase(cfg.DB.Engine, cfg.DB.SQLitePath, database.Config{
		User:       cfg.DB.User,
		Password:   cfg.DB.Password,
		Host:       cfg.DB.Host,
		Name:       cfg.DB.Name,
		DisableTLS: cfg.DB.DisableTLS,
	})
	if err != nil {
		return fmt.Errorf("connecting to db: %w", err)
	}
	defer func() {
		log.Println("main: Database Stopping")
		if err = db.Close(); err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()
	if err = catalog.CreateSchema(db); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}

	var publisher *webapi.PredictionPublisher
	relay := support.MakeLogRelay(log)
	if len(cfg.Nats.URL) > 0 {
		natsConn, err := nats.Connect(cfg.Nats.URL)
		if err != nil {
			return fmt.Errorf("connecting to nats at %s: %w", cfg.Nats.URL, err)
		}
		defer natsConn.Close()
		publisher = webapi.MakePredictionPublisher(log, natsConn, cfg.Nats.PredictionSubject)
		relay = support.MakeNatsRelay(natsConn, cfg.Nats.SupportSubject)
	}

	bus := actransit.MakeClient(log, nil, busAgency.BaseURL, busAgency.APIKey)
	rail := bart.MakeClient(log, nil, railAgency.BaseURL, railAgency.APIKey)
	handlers := webapi.MakeHandlers(log,
		predictions.MakeService(log, bus, rail),
		bus,
		rail,
		db,
		ttlcache.New(cfg.Web.PredictionCacheSize, time.Duration(cfg.Web.PredictionCacheSeconds)*time.Second),
		publisher,
		support.MakeIntake(log, relay),
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	return webapi.RunWebService(log, handlers, cfg.Web.Port, shutdown)
}

func openDatabase(engine string, sqlitePath string, pgConfig database.Config) (*sqlx.DB, error) {
	switch engine {
	case "sqlite":
		return database.OpenSQLite(sqlitePath)
	case "postgres":
		return database.Open(pgConfig)
	default:
		return nil, fmt.Errorf("unknown database engine %q", engine)
	}
}
