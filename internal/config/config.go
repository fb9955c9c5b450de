package config

import (
	"alcyxob/team-workouts/internal/domain"
	"alcyxob/team-workouts/internal/validation"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	S3         S3Config         `mapstructure:"s3"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Drafts     DraftsConfig     `mapstructure:"drafts"`
	Validation ValidationConfig `mapstructure:"validation"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type DatabaseConfig struct {
	URI  string `mapstructure:"uri"`
	Name string `mapstructure:"name"`
}

// S3Config points at the bucket saved workouts are archived to.
// An empty BucketName disables archiving.
type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// JWTConfig defines JWT specific configuration
type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

// DraftsConfig tunes the editing sessions.
type DraftsConfig struct {
	HistoryLimit       int           `mapstructure:"history_limit"`
	AutoSaveDelay      time.Duration `mapstructure:"autosave_delay"`
	AutoSaveEnabled    bool          `mapstructure:"autosave_enabled"`
	SavedResetDelay    time.Duration `mapstructure:"saved_reset_delay"`
	ValidateOnChange   bool          `mapstructure:"validate_on_change"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout"`
}

// ValidationConfig feeds validation.Config. Zero minutes leave a bound open.
type ValidationConfig struct {
	MinIntervalSeconds     int `mapstructure:"min_interval_seconds"`
	HeartRateThreshold     int `mapstructure:"heart_rate_threshold"`
	ConditioningMinMinutes int `mapstructure:"conditioning_min_minutes"`
	ConditioningMaxMinutes int `mapstructure:"conditioning_max_minutes"`
}

// Engine converts the file representation into a validation.Config.
func (v ValidationConfig) Engine() validation.Config {
	cfg := validation.DefaultConfig()
	if v.MinIntervalSeconds > 0 {
		cfg.MinIntervalSeconds = v.MinIntervalSeconds
	}
	if v.HeartRateThreshold > 0 {
		cfg.HeartRateThreshold = v.HeartRateThreshold
	}
	rules := cfg.Rules[domain.DocumentConditioning]
	rules.DurationBounds = validation.Bounds{
		Min: time.Duration(v.ConditioningMinMinutes) * time.Minute,
		Max: time.Duration(v.ConditioningMaxMinutes) * time.Minute,
	}
	cfg.Rules[domain.DocumentConditioning] = rules
	return cfg
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, drafts.autosave_delay -> DRAFTS_AUTOSAVE_DELAY
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		// No file: run on defaults and environment only
		err = nil
	} else if err != nil {
		return
	}

	// Duration strings ("3s", "1h") decode straight into time.Duration fields.
	err = v.Unmarshal(&config)
	if err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "team_workouts")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("jwt.expiration", "1h")

	v.SetDefault("drafts.history_limit", 20)
	v.SetDefault("drafts.autosave_delay", "3s")
	v.SetDefault("drafts.autosave_enabled", true)
	v.SetDefault("drafts.saved_reset_delay", "2s")
	v.SetDefault("drafts.validate_on_change", true)
	v.SetDefault("drafts.session_idle_timeout", "30m")

	v.SetDefault("validation.min_interval_seconds", validation.DefaultMinIntervalSeconds)
	v.SetDefault("validation.heart_rate_threshold", validation.DefaultHeartRateThreshold)
	v.SetDefault("validation.conditioning_min_minutes", 0)
	v.SetDefault("validation.conditioning_max_minutes", 0)
}
