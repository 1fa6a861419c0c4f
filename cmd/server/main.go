package main

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	_ "modernc.org/sqlite"

	"nemt-route-service/internal/adapters/artifacts"
	"nemt-route-service/internal/adapters/cache"
	"nemt-route-service/internal/adapters/geocode"
	"nemt-route-service/internal/adapters/matrix"
	"nemt-route-service/internal/adapters/shape"
	"nemt-route-service/internal/adapters/solver"
	"nemt-route-service/internal/api"
	"nemt-route-service/internal/config"
	"nemt-route-service/internal/metrics"
	"nemt-route-service/internal/platform/db"
	"nemt-route-service/internal/ports"
	"nemt-route-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (cache backend, Nominatim, ORS, VROOM, OSRM)
// behind ports and starts the HTTP server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	cfg, err := config.Load("")
	if err != nil {
		log.Fatal(err)
	}

	metrics.RegisterDefault()

	addressCache, err := openCache(cfg)
	if err != nil {
		log.Fatal(err)
	}

	geocoder := geocode.NewNominatim(cfg.Endpoints.GeocoderURL, addressCache, cfg.Planner.GeocodeRPS)

	matrixAPI, err := matrix.NewORSMatrix(cfg.Endpoints.MatrixURL, cfg.Endpoints.MatrixAPIKey)
	if err != nil {
		log.Fatal(err)
	}

	vroom, err := solver.NewVroomClient(cfg.Endpoints.SolverURL)
	if err != nil {
		log.Fatal(err)
	}

	store, err := artifacts.NewJSONStore(cfg.PreprocessedDir, cfg.SolutionDir)
	if err != nil {
		log.Fatal(err)
	}

	pipeline := services.NewPipeline(
		services.NewPreprocessor(geocoder, matrixAPI, cfg.Planner),
		vroom,
		services.NewTranslator(shape.NewOSRMShaper(cfg.Endpoints.ShapeURL)),
		store,
	)

	router := api.NewRouter(pipeline, cfg.CacheBackend)

	// Timeouts are tuned for cold-cache planning runs (external API latency).
	log.Printf("Server listening addr=:%s cache=%s", cfg.Port, cfg.CacheBackend)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      300 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// openCache selects the address cache backend from configuration.
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
