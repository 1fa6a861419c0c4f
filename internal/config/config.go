package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Endpoints for the external collaborators. Every call the pipeline makes
// goes to one of these.
type Endpoints struct {
	// SolverURL is the VROOM-compatible optimization endpoint.
	SolverURL string `yaml:"solver_url"`
	// GeocoderURL is the Nominatim-compatible search endpoint base.
	GeocoderURL string `yaml:"geocoder_url"`
	// MatrixURL and MatrixAPIKey reach the OpenRouteService matrix API.
	MatrixURL    string `yaml:"matrix_url"`
	MatrixAPIKey string `yaml:"matrix_api_key"`
	// ShapeURL is the OSRM route endpoint base used for road shapes.
	ShapeURL string `yaml:"shape_url"`
}

// Planner holds the preprocessing defaults applied to incomplete rows.
type Planner struct {
	// MaxWaitSeconds expresses "willing to arrive this much early".
	MaxWaitSeconds int `yaml:"max_wait_seconds"`
	// ServiceSeconds is the default per-stop service time.
	ServiceSeconds int    `yaml:"service_seconds"`
	DefaultSkills  []int  `yaml:"default_skills"`
	DayStart       string `yaml:"day_start"`
	DayEnd         string `yaml:"day_end"`
	// GeocodeRPS caps calls toward the public geocoder.
	GeocodeRPS float64 `yaml:"geocode_rps"`
}

type Config struct {
	Port         string `yaml:"port"`
	CacheBackend string `yaml:"cache_backend"`

	AddressStorePath string `yaml:"address_store_path"`
	SQLitePath       string `yaml:"sqlite_path"`
	DatabaseURL      string `yaml:"-"`
	RedisAddr        string `yaml:"redis_addr"`

	PreprocessedDir string `yaml:"preprocessed_dir"`
	SolutionDir     string `yaml:"solution_dir"`

	Endpoints Endpoints `yaml:"endpoints"`
	Planner   Planner   `yaml:"planner"`
}

// Default mirrors the planner's stock constants.
func Default() *Config {
	return &Config{
		Port:             "8080",
		CacheBackend:     "file",
		AddressStorePath: "data/addresses.json",
		SQLitePath:       "data/app.db",
		PreprocessedDir:  "data/preprocessed",
		SolutionDir:      "data/solution",
		Endpoints: Endpoints{
			SolverURL:   "http://solver.vroom-project.org",
			GeocoderURL: "https://nominatim.openstreetmap.org",
			MatrixURL:   "https://api.openrouteservice.org",
			ShapeURL:    "https://router.project-osrm.org",
		},
		Planner: Planner{
			MaxWaitSeconds: 300,
			ServiceSeconds: 300,
			DefaultSkills:  []int{1, 2, 3, 4},
			DayStart:       "08:00",
			DayEnd:         "17:00",
			GeocodeRPS:     1,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file
// (CONFIG_PATH or the given path), and environment variable overrides,
// in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := Default()

	if p := Get("CONFIG_PATH", path); p != "" {
		raw, err := os.ReadFile(p)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("load config: read %q: %w", p, err)
			}
		} else if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("load config: parse %q: %w", p, err)
		}
	}

	cfg.Port = Get("PORT", cfg.Port)
	cfg.CacheBackend = Get("CACHE_BACKEND", cfg.CacheBackend)
	cfg.AddressStorePath = Get("ADDRESS_STORE", cfg.AddressStorePath)
	cfg.SQLitePath = Get("SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURL = Get("DATABASE_URL", cfg.DatabaseURL)
	cfg.RedisAddr = Get("REDIS_ADDR", cfg.RedisAddr)
	cfg.PreprocessedDir = Get("PREPROCESSED_STORE", cfg.PreprocessedDir)
	cfg.SolutionDir = Get("SOLUTION_STORE", cfg.SolutionDir)

	cfg.Endpoints.SolverURL = Get("VROOM_SERVER_URL", cfg.Endpoints.SolverURL)
	cfg.Endpoints.GeocoderURL = Get("NOMINATIM_URL", cfg.Endpoints.GeocoderURL)
	cfg.Endpoints.MatrixURL = Get("OPENROUTESERVICE_API_URL", cfg.Endpoints.MatrixURL)
	cfg.Endpoints.MatrixAPIKey = Get("OPENROUTESERVICE_API_KEY", cfg.Endpoints.MatrixAPIKey)
	cfg.Endpoints.ShapeURL = Get("OSRM_SERVER_URL", cfg.Endpoints.ShapeURL)

	if v := os.Getenv("MAX_WAIT_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("load config: MAX_WAIT_SECONDS %q: %w", v, err)
		}
		cfg.Planner.MaxWaitSeconds = n
	}

	return cfg, nil
}

// Get returns the environment value for key or the fallback when unset.
func Get(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
