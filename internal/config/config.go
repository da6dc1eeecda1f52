// Package config loads service settings from config.toml and TOUROPS_
// prefixed environment variables.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig
	Log     LogConfig
	HTTP    HTTPConfig
	Storage StorageConfig
	Backup  BackupConfig
	Metrics MetricsConfig
}

type AppConfig struct {
	Name string
	Env  string
	Port string
}

type LogConfig struct {
	Level    string // debug, info, warn, error
	Format   string // json, console
	Output   string // stdout, stderr, or file path
	SQLLevel string // silent, error, warn, info
}

type HTTPConfig struct {
	CORSAllowOrigins []string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
}

// StorageConfig selects and configures the backend. The remote store is used
// when it is configured and reachable; the local file otherwise.
type StorageConfig struct {
	Local  LocalConfig
	Remote RemoteConfig
}

type LocalConfig struct {
	Path string // sqlite file
}

type RemoteConfig struct {
	DSN             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration
}

// Configured reports whether remote credentials were provided.
func (r RemoteConfig) Configured() bool {
	return r.DSN != "" || (r.Host != "" && r.User != "")
}

// ConnString returns DSN, or builds a postgres URL from the separate fields.
func (r RemoteConfig) ConnString() string {
	if r.DSN != "" {
		return r.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(r.User, r.Password),
		Host:   fmt.Sprintf("%s:%d", r.Host, r.Port),
		Path:   r.DBName,
	}
	q := u.Query()
	q.Set("sslmode", r.SSLMode)
	if r.ConnectTimeout > 0 {
		q.Set("connect_timeout", fmt.Sprintf("%d", int(r.ConnectTimeout.Seconds())))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

const (
	BackupDriverNone = "none"
	BackupDriverFS   = "fs"
	BackupDriverS3   = "s3"
)

type BackupConfig struct {
	Driver string // none, fs, s3
	Dir    string
	S3     S3Config
}

type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	PathStyle bool
	AccessKey string
	SecretKey string
}

type MetricsConfig struct {
	Enabled bool
}

// Load reads config.toml when present, then applies environment overrides
// such as TOUROPS_STORAGE_REMOTE_HOST.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("TOUROPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:    v.GetString("log.level"),
			Format:   v.GetString("log.format"),
			Output:   v.GetString("log.output"),
			SQLLevel: v.GetString("log.sql_level"),
		},
		HTTP: HTTPConfig{
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
		},
		Storage: StorageConfig{
			Local: LocalConfig{
				Path: v.GetString("storage.local.path"),
			},
			Remote: RemoteConfig{
				DSN:             v.GetString("storage.remote.dsn"),
				Host:            v.GetString("storage.remote.host"),
				Port:            v.GetInt("storage.remote.port"),
				User:            v.GetString("storage.remote.user"),
				Password:        v.GetString("storage.remote.password"),
				DBName:          v.GetString("storage.remote.dbname"),
				SSLMode:         v.GetString("storage.remote.sslmode"),
				MaxOpenConns:    v.GetInt("storage.remote.max_open_conns"),
				MaxIdleConns:    v.GetInt("storage.remote.max_idle_conns"),
				ConnMaxLifetime: v.GetDuration("storage.remote.conn_max_lifetime"),
				ConnectTimeout:  v.GetDuration("storage.remote.connect_timeout"),
			},
		},
		Backup: BackupConfig{
			Driver: v.GetString("backup.driver"),
			Dir:    v.GetString("backup.dir"),
			S3: S3Config{
				Bucket:    v.GetString("backup.s3.bucket"),
				Prefix:    v.GetString("backup.s3.prefix"),
				Region:    v.GetString("backup.s3.region"),
				Endpoint:  v.GetString("backup.s3.endpoint"),
				PathStyle: v.GetBool("backup.s3.path_style"),
				AccessKey: v.GetString("backup.s3.access_key"),
				SecretKey: v.GetString("backup.s3.secret_key"),
			},
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics.enabled"),
		},
	}
	if !v.IsSet("metrics.enabled") {
		cfg.Metrics.Enabled = true
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "tourops"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		if cfg.App.Env == "production" {
			cfg.Log.Format = "json"
		} else {
			cfg.Log.Format = "console"
		}
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Log.SQLLevel == "" {
		cfg.Log.SQLLevel = "warn"
	}
	if len(cfg.HTTP.CORSAllowOrigins) == 0 {
		cfg.HTTP.CORSAllowOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.Storage.Local.Path == "" {
		cfg.Storage.Local.Path = "data/tourops.db"
	}
	if cfg.Storage.Remote.Port == 0 {
		cfg.Storage.Remote.Port = 5432
	}
	if cfg.Storage.Remote.DBName == "" {
		cfg.Storage.Remote.DBName = "tourops"
	}
	if cfg.Storage.Remote.SSLMode == "" {
		cfg.Storage.Remote.SSLMode = "disable"
	}
	if cfg.Storage.Remote.MaxOpenConns == 0 {
		cfg.Storage.Remote.MaxOpenConns = 10
	}
	if cfg.Storage.Remote.MaxIdleConns == 0 {
		cfg.Storage.Remote.MaxIdleConns = 5
	}
	if cfg.Storage.Remote.ConnMaxLifetime == 0 {
		cfg.Storage.Remote.ConnMaxLifetime = time.Hour
	}
	if cfg.Storage.Remote.ConnectTimeout == 0 {
		cfg.Storage.Remote.ConnectTimeout = 5 * time.Second
	}
	if cfg.Backup.Driver == "" {
		cfg.Backup.Driver = BackupDriverFS
	}
	if cfg.Backup.Dir == "" {
		cfg.Backup.Dir = "data/backups"
	}
	if cfg.Backup.S3.Prefix == "" {
		cfg.Backup.S3.Prefix = "tourops/backups"
	}
}

func (c *Config) validate() error {
	r := c.Storage.Remote
	if r.MaxIdleConns > r.MaxOpenConns {
		return fmt.Errorf("storage.remote.max_idle_conns (%d) cannot exceed storage.remote.max_open_conns (%d)",
			r.MaxIdleConns, r.MaxOpenConns)
	}
	switch c.Backup.Driver {
	case BackupDriverNone, BackupDriverFS:
	case BackupDriverS3:
		if c.Backup.S3.Bucket == "" {
			return fmt.Errorf("backup.s3.bucket is required when backup.driver is s3")
		}
	default:
		return fmt.Errorf("unknown backup.driver %q", c.Backup.Driver)
	}
	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production")
			}
		}
	}
	return nil
}
