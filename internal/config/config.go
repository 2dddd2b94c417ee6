package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendPostgres  = "postgres"
	BackendWordPress = "wordpress"
)

// Config holds the configuration settings for the customer service.
//
// Fields:
// - Env: The current environment (local, development, production).
// - HealthPort: The port for the monitoring server (healthz, metrics).
// - APIPort: The port for the customer API.
// - Provider: Which geocoding provider resolves addresses and with which keys.
// - Queue: Pacing and batching of the geocoding queue.
// - Backend: Where customers are read from and results written to.
// - Database: Configuration settings for the PostgreSQL database.
// - WordPress: admin-ajax endpoint of the WordPress plugin.
type Config struct {
	Env          string
	HealthPort   int
	APIPort      int
	UseGeocoding bool // UseGeocoding enables remote lookups for customers without coordinates.
	Provider     ProviderConfig
	Queue        QueueConfig
	Backend      string
	Database     PostgresConfig
	WordPress    WordPressConfig
}

// ProviderConfig selects the geocoding provider.
type ProviderConfig struct {
	Type     string   // Type is one of mapsco, google, nominatim, demo.
	Keys     []string // Keys are rotated round-robin between lookups.
	KeyStart int      // KeyStart is the index of the first key used.
	Region   string   // Region biases Google results (ccTLD).
}

// QueueConfig holds the pacing of the geocoding queue.
type QueueConfig struct {
	Delay         time.Duration
	LookupTimeout time.Duration
	FlushEvery    int
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string // Host is the database server address.
	Port     string // Port is the database server port.
	User     string // User is the database user.
	Password string // Password is the database user's password.
	Name     string // Name is the name of the database.
}

type WordPressConfig struct {
	AjaxURL string
	Nonce   string
}

// MustLoad reads the configuration from the environment, after loading a .env file
// if present (path overridable with MERIDIAN_ENV_FILE). It panics on invalid values.
func MustLoad() *Config {
	envFile := os.Getenv("MERIDIAN_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	_ = godotenv.Load(envFile)

	v := viper.New()
	v.SetEnvPrefix("meridian")
	v.AutomaticEnv()
	setDefaults(v)
	bindDatabaseEnv(v)

	healthPort, err := strconv.Atoi(v.GetString("health_port"))
	if err != nil {
		panic("failed to parse port for monitoring server from configuration")
	}

	apiPort, err := strconv.Atoi(v.GetString("api_port"))
	if err != nil {
		panic("failed to parse port for api server from configuration")
	}

	useGeocoding, err := strconv.ParseBool(v.GetString("use_geocoding"))
	if err != nil {
		panic("failed to parse use_geocoding from configuration, must be a boolean")
	}

	keyStart, err := strconv.Atoi(v.GetString("provider_key_start"))
	if err != nil {
		panic("failed to parse provider key start from configuration, must be an integer")
	}

	delay, err := time.ParseDuration(v.GetString("queue_delay"))
	if err != nil {
		panic("failed to parse queue delay from configuration")
	}

	lookupTimeout, err := time.ParseDuration(v.GetString("lookup_timeout"))
	if err != nil {
		panic("failed to parse lookup timeout from configuration")
	}

	flushEvery, err := strconv.Atoi(v.GetString("flush_every"))
	if err != nil || flushEvery < 1 {
		panic("failed to parse flush_every from configuration, must be a positive integer")
	}

	backend := strings.ToLower(v.GetString("backend"))
	if backend != BackendPostgres && backend != BackendWordPress {
		panic("unsupported storage backend, must be postgres or wordpress")
	}

	return &Config{
		Env:          v.GetString("env"),
		HealthPort:   healthPort,
		APIPort:      apiPort,
		UseGeocoding: useGeocoding,
		Provider: ProviderConfig{
			Type:     v.GetString("provider_type"),
			Keys:     splitKeys(v.GetString("provider_keys")),
			KeyStart: keyStart,
			Region:   v.GetString("provider_region"),
		},
		Queue: QueueConfig{
			Delay:         delay,
			LookupTimeout: lookupTimeout,
			FlushEvery:    flushEvery,
		},
		Backend: backend,
		Database: PostgresConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetString("db.port"),
			User:     v.GetString("db.username"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
		},
		WordPress: WordPressConfig{
			AjaxURL: v.GetString("wp_ajax_url"),
			Nonce:   v.GetString("wp_nonce"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "production")
	v.SetDefault("health_port", "8080")
	v.SetDefault("api_port", "8081")
	v.SetDefault("use_geocoding", "true")
	v.SetDefault("provider_type", "mapsco")
	v.SetDefault("provider_key_start", "0")
	v.SetDefault("provider_region", "at")
	v.SetDefault("queue_delay", "1200ms")
	v.SetDefault("lookup_timeout", "10s")
	v.SetDefault("flush_every", "100")
	v.SetDefault("backend", BackendPostgres)
	v.SetDefault("db.port", "5432")
}

// bindDatabaseEnv maps the unprefixed DB_* variables shared with other services.
func bindDatabaseEnv(v *viper.Viper) {
	_ = v.BindEnv("db.host", "DB_HOST")
	_ = v.BindEnv("db.port", "DB_PORT")
	_ = v.BindEnv("db.username", "DB_USERNAME")
	_ = v.BindEnv("db.password", "DB_PASSWORD")
	_ = v.BindEnv("db.name", "DB_NAME")
}

func splitKeys(raw string) []string {
	var keys []string
	for _, key := range strings.Split(raw, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}

	return keys
}
