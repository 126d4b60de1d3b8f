package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"

	"github.com/parcelflow/fulfillment-system/shared/saga"
)

type Config struct {
	ServiceName string    `mapstructure:"service_name"`
	Env         string    `mapstructure:"env"`
	Port        string    `mapstructure:"port"`
	Saga        Saga      `mapstructure:"saga"`
	Store       Store     `mapstructure:"store"`
	Database    Database  `mapstructure:"database"`
	AWS         AWS       `mapstructure:"aws"`
	Telemetry   Telemetry `mapstructure:"telemetry"`
}

type Saga struct {
	// StepTimeoutSeconds bounds every action, compensation, and terminal
	// call; a timeout counts as a failure, never a retry.
	StepTimeoutSeconds int `mapstructure:"step_timeout_seconds"`

	// Collaborators maps a collaborator name to its base URL.
	Collaborators map[string]string `mapstructure:"collaborators"`

	// Steps is the ordered forward sequence and its undo mapping.
	Steps []saga.StepDefinition `mapstructure:"steps"`

	// TerminalSteps are notified of the final outcome regardless of which
	// steps ran.
	TerminalSteps []saga.TerminalStep `mapstructure:"terminal_steps"`
}

type Store struct {
	// Driver selects the saga store: "memory" (default) or "postgres".
	Driver string `mapstructure:"driver"`
}

type Database struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

type AWS struct {
	PublishEvents bool   `mapstructure:"publish_events"`
	SNSTopicArn   string `mapstructure:"sns_topic_arn"`
}

type Telemetry struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

func ReadConfig() (*Config, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return nil, fmt.Errorf("unable to get current file")
	}

	configDir := filepath.Join(filepath.Dir(filename))
	viper.SetConfigName(getConfigName())
	viper.SetConfigType("json")
	viper.AddConfigPath(configDir)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("ORCHESTRATOR")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults cover a full local topology; a config file is optional
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// StepTimeout returns the per-call timeout as a duration
func (c *Config) StepTimeout() time.Duration {
	return time.Duration(c.Saga.StepTimeoutSeconds) * time.Second
}

func getConfigName() string {
	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		return "local"
	}
	return env
}

func setDefaults() {
	viper.SetDefault("service_name", "orchestrator-service")
	viper.SetDefault("env", getEnv("ENV", "local"))
	viper.SetDefault("port", getEnv("PORT", "8080"))

	viper.SetDefault("saga.step_timeout_seconds", 10)

	// Internal DNS names in Kubernetes override these via config file or env
	viper.SetDefault("saga.collaborators", map[string]string{
		"warehouse":    getEnv("WAREHOUSE_URL", "http://localhost:5001"),
		"inventory":    getEnv("INVENTORY_URL", "http://localhost:5002"),
		"package":      getEnv("PACKAGE_URL", "http://localhost:5003"),
		"label":        getEnv("LABEL_URL", "http://localhost:5004"),
		"carrier":      getEnv("CARRIER_URL", "http://localhost:5005"),
		"pickup":       getEnv("PICKUP_URL", "http://localhost:5006"),
		"payment":      getEnv("PAYMENT_URL", "http://localhost:5007"),
		"notification": getEnv("NOTIFICATION_URL", "http://localhost:5008"),
		"tracking":     getEnv("TRACKING_URL", "http://localhost:5009"),
		"customer":     getEnv("CUSTOMER_URL", "http://localhost:5010"),
	})

	// The table is fully general; the full chain adds package, label,
	// carrier, pickup, and payment entries in the deployment config.
	viper.SetDefault("saga.steps", []map[string]string{
		{"name": "warehouse", "action_path": "/reserve_space", "compensation_path": "/cancel_reservation"},
		{"name": "inventory", "action_path": "/update_stock", "compensation_path": "/revert_stock"},
	})

	viper.SetDefault("saga.terminal_steps", []map[string]string{
		{"name": "notification", "path": "/send_confirmation"},
		{"name": "tracking", "path": "/update_status"},
		{"name": "customer", "path": "/update_history"},
	})

	viper.SetDefault("store.driver", getEnv("SAGA_STORE_DRIVER", "memory"))

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "password")
	viper.SetDefault("database.database", "fulfillment")
	viper.SetDefault("database.ssl_mode", "disable")

	viper.SetDefault("aws.publish_events", false)
	viper.SetDefault("aws.sns_topic_arn", getEnv("SNS_TOPIC_ARN", "arn:aws:sns:us-east-1:000000000000:saga-events"))

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.otlp_endpoint", getEnv("OTLP_ENDPOINT", "localhost:4318"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetDatabaseURL constructs database URL from config
func (c *Config) GetDatabaseURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Database,
		c.Database.SSLMode,
	)
}
