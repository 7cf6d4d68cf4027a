package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"MegaStore/internal/cart"
	"MegaStore/internal/catalog"
	"MegaStore/internal/shop"
	"MegaStore/internal/view"
	"MegaStore/pkg/kit"
)

var (
	errMissingCatalog = errors.New("CATALOG_URL or CATALOG_FILE is required")
	errUnknownBackend = errors.New("STORE_BACKEND must be one of memory, sqlite, postgres, redis")
)

type config struct {
	Port string `envconfig:"PORT" default:"8080"`

	// Exactly one of these selects the catalog feed.
	CatalogURL  string `envconfig:"CATALOG_URL"`
	CatalogFile string `envconfig:"CATALOG_FILE"`

	StoreBackend string `envconfig:"STORE_BACKEND" default:"sqlite"`
	SQLitePath   string `envconfig:"SQLITE_PATH" default:"megastore.db"`
	PostgresDSN  string `envconfig:"POSTGRES_DSN"`
	RedisURL     string `envconfig:"REDIS_URL"`

	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"false"`
	MetricsToken   string `envconfig:"METRICS_TOKEN"`
}

func main() {
	service := "store"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	if err := godotenv.Load(); err == nil {
		log.Info("loaded .env")
	}

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatal("config", zap.Error(err))
	}

	source, err := newSource(cfg)
	if err != nil {
		log.Fatal("catalog source", zap.Error(err))
	}

	kv, err := newKV(cfg)
	if err != nil {
		log.Fatal("cart store backend", zap.Error(err), zap.String("backend", cfg.StoreBackend))
	}

	render, err := view.NewHTML()
	if err != nil {
		log.Fatal("templates", zap.Error(err))
	}

	app := shop.NewApp(source, cart.NewArchive(kv, log), render, log)

	// The feed fetch has no timeout and no retry; the state machine records
	// the terminal outcome while the server starts serving immediately.
	go func() { _ = app.Run(context.Background()) }()

	reg := prometheus.NewRegistry()
	h := shop.NewHandler(app, shop.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		MetricsEnabled: cfg.MetricsEnabled,
		MetricsToken:   cfg.MetricsToken,
	})

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func newSource(cfg config) (catalog.Source, error) {
	switch {
	case cfg.CatalogFile != "":
		return &catalog.FileSource{Path: cfg.CatalogFile}, nil
	case cfg.CatalogURL != "":
		return catalog.NewHTTPSource(cfg.CatalogURL), nil
	default:
		return nil, errMissingCatalog
	}
}

func newKV(cfg config) (cart.KV, error) {
	switch cfg.StoreBackend {
	case "memory":
		return cart.NewMemKV(), nil

	case "sqlite":
		db, err := sql.Open("sqlite", cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return cart.NewSQLiteKV(db)

	case "postgres":
		db, err := sql.Open("pgx", cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		return cart.NewPostgresKV(db)

	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return cart.NewRedisKV(redis.NewClient(opts)), nil

	default:
		return nil, errUnknownBackend
	}
}
