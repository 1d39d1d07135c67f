package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP      HTTPConfig      `mapstructure:"http"`
	DB        DBConfig        `mapstructure:"db"`
	Log       LogConfig       `mapstructure:"log"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Camera    CameraConfig    `mapstructure:"camera"`
	Grouping  GroupingConfig  `mapstructure:"grouping"`
	Retention RetentionConfig `mapstructure:"retention"`
}

type HTTPConfig struct {
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// DSN renders the connection string for the postgres driver.
func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
}

type CameraConfig struct {
	ID string `mapstructure:"id"`
}

// GroupingConfig holds the defaults applied when a grouped listing request
// omits a parameter.
type GroupingConfig struct {
	WindowSeconds       float64 `mapstructure:"window_seconds"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	Policy              string  `mapstructure:"policy"`
	MaxSimilarityBatch  int     `mapstructure:"max_similarity_batch"`
}

type RetentionConfig struct {
	Days int `mapstructure:"days"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.mode", "release")
	v.SetDefault("http.allowed_origins", []string{"*"})

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "plate_reads")
	v.SetDefault("db.sslmode", "disable")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("camera.id", "default")

	v.SetDefault("grouping.window_seconds", 5.0)
	v.SetDefault("grouping.similarity_threshold", 0.8)
	v.SetDefault("grouping.policy", "strict")
	v.SetDefault("grouping.max_similarity_batch", 20000)

	v.SetDefault("retention.days", 0)
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing order of precedence. Environment keys use
// underscores for nesting, e.g. GROUPING_WINDOW_SECONDS.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("yaml")
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.HTTP.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		return fmt.Errorf("http.mode must be one of %s, %s or %s, got %q", gin.DebugMode, gin.ReleaseMode, gin.TestMode, c.HTTP.Mode)
	}
	if math.IsNaN(c.Grouping.WindowSeconds) || math.IsInf(c.Grouping.WindowSeconds, 0) || c.Grouping.WindowSeconds < 0 {
		return errors.New("grouping.window_seconds must be a non-negative number")
	}
	if math.IsNaN(c.Grouping.SimilarityThreshold) || c.Grouping.SimilarityThreshold < 0 || c.Grouping.SimilarityThreshold > 1 {
		return errors.New("grouping.similarity_threshold must be between 0 and 1")
	}
	switch strings.ToLower(c.Grouping.Policy) {
	case "strict", "similarity":
	default:
		return fmt.Errorf("grouping.policy must be strict or similarity, got %q", c.Grouping.Policy)
	}
	if c.Grouping.MaxSimilarityBatch <= 0 {
		return errors.New("grouping.max_similarity_batch must be positive")
	}
	if c.Retention.Days < 0 {
		return errors.New("retention.days must not be negative")
	}
	return nil
}
