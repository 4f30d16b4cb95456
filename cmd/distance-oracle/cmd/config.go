package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cosmossdk.io/log"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/paw-chain/distance/oracle"
	"github.com/paw-chain/distance/oracle/telemetry"
)

const envPrefix = "DISTANCE_ORACLE"

// Flag names
const (
	FlagHome        = "home"
	FlagConfig      = "config"
	FlagNode        = "node"
	FlagArtifactDir = "artifact-dir"
	FlagLogLevel    = "log-level"
	FlagLogFormat   = "log-format"
	FlagWorkers     = "workers"
	FlagRPS         = "requests-per-second"
	FlagTimeout     = "timeout"
	FlagInterval    = "interval"
	FlagMetricsAddr = "metrics-addr"
	FlagOTLP        = "otlp-endpoint"
	FlagSampleRate  = "trace-sample-rate"
	FlagChainID     = "chain-id"
)

// DefaultHome is the default oracle home directory.
var DefaultHome = filepath.Join(userHome(), ".distance-oracle")

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// Config is the resolved oracle configuration: flags over environment over
// the config file over defaults.
type Config struct {
	Home        string
	ArtifactDir string
	LogLevel    string
	LogFormat   string
	Client      oracle.ClientConfig
	Workers     int
	Interval    time.Duration
	MetricsAddr string
	Telemetry   telemetry.Config
}

func persistentFlags(fs *pflag.FlagSet) {
	defaults := oracle.DefaultClientConfig()
	fs.String(FlagHome, DefaultHome, "oracle home directory")
	fs.String(FlagConfig, "", "config file (default <home>/config.toml)")
	fs.String(FlagNode, defaults.BaseURL, "node REST endpoint")
	fs.String(FlagArtifactDir, "", "artifact directory (default <home>/artifacts)")
	fs.String(FlagLogLevel, "info", "log level (trace|debug|info|warn|error)")
	fs.String(FlagLogFormat, "json", "log format (json|plain)")
	fs.Int(FlagWorkers, 0, "goroutines scoring identities (0 = GOMAXPROCS)")
	fs.Float64(FlagRPS, defaults.RequestsPerSecond, "maximum node requests per second (0 = unlimited)")
	fs.Duration(FlagTimeout, defaults.Timeout, "node request timeout")
	fs.String(FlagOTLP, "", "OTLP/HTTP trace endpoint; tracing is disabled when empty")
	fs.Float64(FlagSampleRate, 1, "trace sample rate")
	fs.String(FlagChainID, "", "chain id attached to telemetry")
}

// newViper binds flags and environment and reads the optional config file.
func newViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	path := v.GetString(FlagConfig)
	explicit := path != ""
	if !explicit {
		path = filepath.Join(v.GetString(FlagHome), "config.toml")
	}
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && (explicit || !configMissing(err)) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return v, nil
}

func configMissing(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// loadConfig resolves the configuration. Numeric values arriving as strings
// from the environment or the config file are converted leniently.
func loadConfig(v *viper.Viper) (Config, error) {
	home := v.GetString(FlagHome)
	artifactDir := v.GetString(FlagArtifactDir)
	if artifactDir == "" {
		artifactDir = filepath.Join(home, "artifacts")
	}

	workers, err := cast.ToIntE(v.Get(FlagWorkers))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagWorkers, err)
	}
	rps, err := cast.ToFloat64E(v.Get(FlagRPS))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagRPS, err)
	}
	timeout, err := cast.ToDurationE(v.Get(FlagTimeout))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagTimeout, err)
	}
	sampleRate, err := cast.ToFloat64E(v.Get(FlagSampleRate))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", FlagSampleRate, err)
	}

	cfg := Config{
		Home:        home,
		ArtifactDir: artifactDir,
		LogLevel:    v.GetString(FlagLogLevel),
		LogFormat:   v.GetString(FlagLogFormat),
		Client: oracle.ClientConfig{
			BaseURL:           v.GetString(FlagNode),
			Timeout:           timeout,
			RequestsPerSecond: rps,
			Burst:             oracle.DefaultClientConfig().Burst,
		},
		Workers: workers,
		Telemetry: telemetry.Config{
			OTLPEndpoint: v.GetString(FlagOTLP),
			SampleRate:   sampleRate,
			ChainID:      v.GetString(FlagChainID),
		},
	}

	// daemon-only flags are unbound for the other commands
	if raw := v.Get(FlagInterval); raw != nil {
		interval, err := cast.ToDurationE(raw)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", FlagInterval, err)
		}
		cfg.Interval = interval
	}
	if raw := v.Get(FlagMetricsAddr); raw != nil {
		cfg.MetricsAddr = cast.ToString(raw)
		cfg.Telemetry.PrometheusEnabled = cfg.MetricsAddr != ""
	}
	return cfg, nil
}

// newLogger builds the process logger; the level is parsed by zerolog.
func newLogger(w io.Writer, level, format string) (log.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	opts := []log.Option{log.LevelOption(lvl)}
	switch format {
	case "json":
		opts = append(opts, log.OutputJSONOption())
	case "plain", "":
		opts = append(opts, log.ColorOption(false))
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
	return log.NewLogger(w, opts...), nil
}
