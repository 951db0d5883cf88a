package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"golang.org/x/text/language"

	"personsdir/internal/audit"
	httpapi "personsdir/internal/http"
	"personsdir/internal/i18n"
	"personsdir/internal/imagestore"
	personhandler "personsdir/internal/person/handler"
	personmetrics "personsdir/internal/person/metrics"
	"personsdir/internal/person/models"
	"personsdir/internal/person/service"
	"personsdir/internal/person/store"
	citystore "personsdir/internal/person/store/city"
	personstore "personsdir/internal/person/store/person"
	relationstore "personsdir/internal/person/store/relation"
	"personsdir/internal/platform/config"
	"personsdir/internal/platform/httpserver"
	"personsdir/internal/platform/logger"
	platformmetrics "personsdir/internal/platform/metrics"
	redisclient "personsdir/internal/platform/redis"
	"personsdir/internal/report"
	"personsdir/pkg/platform/tx"
)

// main wires dependencies and runs the server lifecycle. An empty
// DATABASE_URL selects the in-memory stores for local runs; Redis, Kafka,
// and S3 are each optional.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// relationStore is the full edge store surface: what the person service uses
// plus the report's incoming-edge lookup.
type relationStore interface {
	service.RelationStore
	ListByTargets(ctx context.Context, personIDs []int64) ([]models.PersonRelation, error)
}

// stores is one consistent backing set, postgres or in-memory.
type stores struct {
	persons   service.PersonStore
	relations relationStore
	cities    service.CityStore
	runner    tx.Runner

	db  *sql.DB
	rdb *redisclient.Client
}

func (s *stores) close() {
	if s.rdb != nil {
		s.rdb.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	checks := map[string]func(context.Context) error{}

	backing, err := buildStores(ctx, cfg, log, checks)
	if err != nil {
		return err
	}
	defer backing.close()

	auditor, closeAuditor, err := buildAuditor(cfg, log)
	if err != nil {
		return err
	}
	defer closeAuditor()

	images, err := buildImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	tag, err := language.Parse(cfg.Server.DefaultLocale)
	if err != nil {
		tag = language.English
	}
	catalog := i18n.NewCatalog(tag)

	domainMetrics := personmetrics.New()
	svc := service.New(backing.persons, backing.relations, backing.cities, backing.runner,
		service.WithLogger(log),
		service.WithAuditPublisher(auditor),
		service.WithMetrics(domainMetrics),
		service.WithImageStore(images))
	reports := report.New(backing.persons, backing.relations, backing.cities,
		report.WithLogger(log),
		report.WithMetrics(domainMetrics))

	deps := httpapi.Deps{
		Logger:  log,
		Catalog: catalog,
		Metrics: platformmetrics.New(),
		Persons: personhandler.New(svc, catalog, log),
		Reports: report.NewHandler(reports, catalog, log),
		Checks:  checks,
	}
	if cfg.Images.Backend != "s3" {
		deps.ImageDir = cfg.Images.Dir
		deps.ImageBaseURL = cfg.Images.BaseURL
	}

	server := httpserver.New(cfg.Server.Addr, httpapi.NewRouter(deps))
	return httpserver.Run(ctx, server, log, cfg.Server.ShutdownTimeout)
}

func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger, checks map[string]func(context.Context) error) (*stores, error) {
	if cfg.Database.URL == "" {
		return buildMemoryStores(ctx, log)
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := store.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	checks["postgres"] = db.PingContext

	cityPg := citystore.NewPostgres(db)
	if err := store.SeedCities(ctx, cityPg); err != nil {
		db.Close()
		return nil, fmt.Errorf("seed cities: %w", err)
	}

	backing := &stores{
		persons:   personstore.NewPostgres(db),
		relations: relationstore.NewPostgres(db),
		cities:    cityPg,
		runner:    tx.NewSQLRunner(db),
		db:        db,
	}

	rdb, err := redisclient.New(cfg.Redis)
	if err != nil {
		log.Warn("redis unavailable, city cache disabled", "error", err)
	} else if rdb != nil {
		backing.rdb = rdb
		backing.cities = citystore.NewCached(cityPg, rdb, cfg.Redis.CityCacheTTL)
		checks["redis"] = rdb.Health
		log.Info("city cache enabled")
	}

	log.Info("using postgres stores")
	return backing, nil
}

func buildMemoryStores(ctx context.Context, log *slog.Logger) (*stores, error) {
	persons := personstore.NewInMemory()
	cities := citystore.NewInMemory()
	if err := store.SeedCities(ctx, cities); err != nil {
		return nil, fmt.Errorf("seed cities: %w", err)
	}
	if err := store.SeedDemoPersons(ctx, persons); err != nil {
		return nil, fmt.Errorf("seed demo persons: %w", err)
	}

	log.Info("using in-memory stores")
	return &stores{
		persons:   persons,
		relations: relationstore.NewInMemory(),
		cities:    cities,
		runner:    tx.NewMemoryRunner(),
	}, nil
}

func buildAuditor(cfg config.Config, log *slog.Logger) (audit.Publisher, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewNop(), func() {}, nil
	}
	auditor, err := audit.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
	if err != nil {
		return nil, nil, fmt.Errorf("connect kafka: %w", err)
	}
	log.Info("audit trail enabled", "topic", cfg.Kafka.Topic)
	closer := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := auditor.Close(ctx); err != nil {
			log.Warn("flush audit events", "error", err)
		}
	}
	return auditor, closer, nil
}

func buildImageStore(ctx context.Context, cfg config.Config) (imagestore.Store, error) {
	if cfg.Images.Backend == "s3" {
		return imagestore.NewS3(ctx, cfg.Images.S3Bucket, cfg.Images.S3Prefix, cfg.Images.S3Region)
	}
	return imagestore.NewDisk(cfg.Images.Dir, cfg.Images.BaseURL)
}
