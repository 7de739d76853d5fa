package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/districtscope/districtscope/internal/ingestion"
)

type daemonConfig struct {
	Port       string
	ConfigFile string
	APIKey     string
	Workers    int

	Storage ingestion.StorageConfig

	RedisAddr string
	RedisTTL  time.Duration

	LogLevel   string
	LogFile    string
	LogMaxSize int // megabytes
}

// loadConfig reads settings from the environment. A .env file in the
// working directory, when present, is loaded first.
func loadConfig() (daemonConfig, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return daemonConfig{}, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", "8080")
	v.SetDefault("config", "")
	v.SetDefault("api_key", "")
	v.SetDefault("workers", 0)
	v.SetDefault("storage_backend", "local")
	v.SetDefault("local_storage_path", "/tmp/districtscope-data")
	v.SetDefault("storage_bucket", "")
	v.SetDefault("storage_region", "")
	v.SetDefault("storage_endpoint", "")
	v.SetDefault("storage_access_key", "")
	v.SetDefault("storage_secret_key", "")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_ttl", "24h")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size", 100)

	cfg := daemonConfig{
		Port:       v.GetString("port"),
		ConfigFile: v.GetString("config"),
		APIKey:     v.GetString("api_key"),
		Workers:    v.GetInt("workers"),
		Storage: ingestion.StorageConfig{
			Backend:   v.GetString("storage_backend"),
			Path:      v.GetString("local_storage_path"),
			Bucket:    v.GetString("storage_bucket"),
			Region:    v.GetString("storage_region"),
			Endpoint:  v.GetString("storage_endpoint"),
			AccessKey: v.GetString("storage_access_key"),
			SecretKey: v.GetString("storage_secret_key"),
		},
		RedisAddr:  v.GetString("redis_addr"),
		RedisTTL:   v.GetDuration("redis_ttl"),
		LogLevel:   v.GetString("log_level"),
		LogFile:    v.GetString("log_file"),
		LogMaxSize: v.GetInt("log_max_size"),
	}

	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return daemonConfig{}, err
	}
	return cfg, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}

// newLogger builds the JSON logger. With a log file configured, output goes
// through a rotating writer instead of stderr.
func newLogger(cfg daemonConfig) (*slog.Logger, io.Closer) {
	level, _ := parseLevel(cfg.LogLevel)

	var out io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if cfg.LogFile != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSize,
			MaxBackups: 5,
			Compress:   true,
		}
		out, closer = lj, lj
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closer
}
