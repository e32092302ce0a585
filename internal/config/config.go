package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Engine   *engineConfig
}

type dbConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"pgsql"`
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"placement"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address         string `envconfig:"PLACEMENT_ENGINE_ADDRESS" default:":3443"`
	MetricsAddress  string `envconfig:"PLACEMENT_ENGINE_METRICS_ADDRESS" default:":8080"`
	BaseUrl         string `envconfig:"PLACEMENT_ENGINE_BASE_URL" default:"https://localhost:3443"`
	LogLevel        string `envconfig:"PLACEMENT_ENGINE_LOG_LEVEL" default:"info"`
	MigrationFolder string `envconfig:"PLACEMENT_ENGINE_MIGRATIONS_FOLDER" default:""`
}

type engineConfig struct {
	// matching
	SeniorExperienceLevel int `envconfig:"PLACEMENT_ENGINE_SENIOR_LEVEL" default:"4"`
	MidExperienceLevel    int `envconfig:"PLACEMENT_ENGINE_MID_LEVEL" default:"2"`

	// recommendation feed
	RecencyWindowDays  int `envconfig:"PLACEMENT_ENGINE_RECENCY_WINDOW_DAYS" default:"7"`
	NotifyThreshold    int `envconfig:"PLACEMENT_ENGINE_NOTIFY_THRESHOLD" default:"70"`
	ImmediateThreshold int `envconfig:"PLACEMENT_ENGINE_IMMEDIATE_THRESHOLD" default:"90"`
	FanOutParallelism  int `envconfig:"PLACEMENT_ENGINE_FANOUT_PARALLELISM" default:"8"`

	// scheduler
	DeliveryTimeout time.Duration `envconfig:"PLACEMENT_ENGINE_DELIVERY_TIMEOUT" default:"5s"`
	RunInterval     time.Duration `envconfig:"PLACEMENT_ENGINE_RUN_INTERVAL" default:"15m"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}

// NewDefault returns a fresh configuration, bypassing the singleton.
// Used by tests which connect to the database of the environment.
func NewDefault() *Config {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		panic(err)
	}
	return cfg
}
