package main

import (
	"fmt"
	logger "log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ardanlabs/conf"
	"github.com/baytransit/nextrain/app/catalog-loader/catalogmanager"
	"github.com/baytransit/nextrain/business/data/catalog"
	"github.com/baytransit/nextrain/business/transit/actransit"
	"github.com/baytransit/nextrain/business/transit/bart"
	"github.com/baytransit/nextrain/foundation/agencyconf"
	"github.com/baytransit/nextrain/foundation/database"
	"github.com/jmoiron/sqlx"
)

var build = "develop"

func main() {
	log := logger.New(os.Stdout, "CATALOG_LOADER : ", logger.LstdFlags|logger.Lmicroseconds|logger.Lshortfile)
	if err := run(log); err != nil {
		log.Printf("main: error: %v", err)
		os.Exit(1)
	}
}

func run(log *logger.Logger) error {
	var cfg struct {
		conf.Version
		Args conf.Args
		DB   struct {
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
		Sync struct {
			Routes       string `conf:"default:NL"`
			EverySeconds int    `conf:"default:86400"`
		}
	}
	cfg.Version.SVN = build
	cfg.Version.Desc = "Maintain the transit metadata catalog"
	const prefix = "CATALOG_LOADER"
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
		if err = db.Close(); err != nil {
			log.Printf("main: error closing database: %v", err)
		}
	}()
	if err = catalog.CreateSchema(db); err != nil {
		return fmt.Errorf("creating catalog schema: %w", err)
	}

	routes := splitRoutes(cfg.Sync.Routes)

	switch cfg.Args.Num(0) {
	case "sync":
		bus, rail, err := makeClients(log, cfg.Agencies.Path)
		if err != nil {
			return err
		}
		if err = catalogmanager.SyncCatalog(log, db, bus, rail, routes); err != nil {
			return err
		}
		return catalogmanager.ListCatalog(log, db)

	case "loop":
		bus, rail, err := makeClients(log, cfg.Agencies.Path)
		if err != nil {
			return err
		}
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		return catalogmanager.RunSyncLoop(log, db, bus, rail, routes, cfg.Sync.EverySeconds, shutdown)

	case "seed":
		seedPath := cfg.Args.Num(1)
		if len(seedPath) < 1 {
			return fmt.Errorf("expected seed csv path or url with command seed")
		}
		if strings.HasPrefix(seedPath, "http://") || strings.HasPrefix(seedPath, "https://") {
			localPath := "seed.csv"
			if err = catalogmanager.DownloadSeed(log, localPath, seedPath); err != nil {
				return err
			}
			seedPath = localPath
		}
		return catalogmanager.SeedRouteStops(log, db, seedPath)

	case "list":
		return catalogmanager.ListCatalog(log, db)

	default:
		fmt.Println("sync: replace the catalog from the upstream agency feeds")
		fmt.Println("loop: sync on an interval until interrupted")
		fmt.Println("seed <file.csv|url>: bootstrap route stops from a csv file or url")
		fmt.Println("list: list cached routes and stations")
		usage, err := conf.Usage(prefix, &cfg)
		if err != nil {
			return fmt.Errorf("generating config usage: %w", err)
		}
		fmt.Println(usage)
	}
	return nil
}

func makeClients(log *logger.Logger, agenciesPath string) (*actransit.Client, *bart.Client, error) {
	registry, err := agencyconf.Load(agenciesPath)
	if err != nil {
		return nil, nil, fmt.Errorf("loading agency registry: %w", err)
	}
	busAgency, ok := registry.Lookup(actransit.AgencyCode)
	if !ok {
		return nil, nil, fmt.Errorf("agency registry is missing %q", actransit.AgencyCode)
	}
	railAgency, ok := registry.Lookup(bart.AgencyCode)
	if !ok {
		return nil, nil, fmt.Errorf("agency registry is missing %q", bart.AgencyCode)
	}
	bus := actransit.MakeClient(log, nil, busAgency.BaseURL, busAgency.APIKey)
	rail := bart.MakeClient(log, nil, railAgency.BaseURL, railAgency.APIKey)
	return bus, rail, nil
}

func splitRoutes(routeList string) []string {
	var routes []string
	for _, piece := range strings.Split(routeList, ",") {
		route := strings.TrimSpace(piece)
		if len(route) > 0 {
			routes = append(routes, route)
		}
	}
	return routes
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
