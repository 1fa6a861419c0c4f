package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"nemt-route-service/internal/adapters/cache"
	"nemt-route-service/internal/config"
	"nemt-route-service/internal/platform/db"
	"nemt-route-service/internal/ports"
)

// cachetool administers the shared address cache: inspect one entry, clear
// the store, or run the Postgres schema migrations.
func main() {
	var (
		command    = flag.String("cmd", "", "one of: get, reset, migrate, rollback")
		address    = flag.String("address", "", "address to look up (get)")
		mode       = flag.String("mode", "hard", "reset mode: soft or hard")
		migrations = flag.String("migrations", "migrations", "migrations directory (migrate, rollback)")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	switch *command {
	case "get":
		if *address == "" {
			log.Fatal("get: -address is required")
		}
		runGet(cfg, *address)

	case "reset":
		runReset(cfg, ports.CacheMode(*mode))

	case "migrate":
		runMigrate(cfg, *migrations, false)

	case "rollback":
		runMigrate(cfg, *migrations, true)

	default:
		flag.Usage()
		log.Fatalf("unknown command %q", *command)
	}
}

func runGet(cfg *config.Config, address string) {
	c, err := openCache(cfg)
	if err != nil {
		log.Fatal(err)
	}

	geo, present, err := c.Get(context.Background(), address)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case !present:
		fmt.Printf("%s: not cached\n", address)
	case geo == nil:
		fmt.Printf("%s: cached negative (unresolvable)\n", address)
	default:
		fmt.Printf("%s: [%v, %v]\n", address, geo.Lon, geo.Lat)
	}
}

func runReset(cfg *config.Config, mode ports.CacheMode) {
	if mode != ports.CacheSoft && mode != ports.CacheHard {
		log.Fatalf("reset: invalid mode %q", mode)
	}

	c, err := openCache(cfg)
	if err != nil {
		log.Fatal(err)
	}

	if err := c.Reset(context.Background(), mode); err != nil {
		log.Fatal(err)
	}
	log.Printf("cache reset backend=%s mode=%s", cfg.CacheBackend, mode)
}

func runMigrate(cfg *config.Config, dir string, down bool) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatal("migrate: DATABASE_URL is required")
	}

	m, err := migrate.New("file://"+dir, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal(err)
	}
	log.Println("migrations applied")
}

// openCache mirrors the server's backend selection.
func openCache(cfg *config.Config) (ports.AddressCache, error) {
	switch strings.ToLower(cfg.CacheBackend) {
	case "file":
		return cache.NewFileAddressCache(cfg.AddressStorePath)

	case "sqlite":
		sqlite, err := db.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := cache.InitSqliteSchema(sqlite); err != nil {
			return nil, err
		}
		return cache.NewSqliteAddressCache(sqlite), nil

	case "postgres":
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return nil, fmt.Errorf("open cache: DATABASE_URL is required for the postgres backend")
		}
		pg, err := db.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return cache.NewSQLAddressCache(pg), nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return cache.NewRedisAddressCache(client), nil
	}

	return nil, fmt.Errorf("open cache: unknown backend %q", cfg.CacheBackend)
}
