package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	ServerPort      string  `mapstructure:"SERVER_PORT"`
	GrpcPort        string  `mapstructure:"GRPC_PORT"`
	GrpcAddr        string  `mapstructure:"GRPC_ADDR"`
	RPCTimeoutSecs  int     `mapstructure:"RPC_TIMEOUT_SECONDS"`
	BoardSize       int     `mapstructure:"BOARD_SIZE"`
	Komi            float64 `mapstructure:"KOMI"`
	ValueScale      float64 `mapstructure:"VALUE_SCALE"`
	WarningsEnabled bool    `mapstructure:"WARNINGS_ENABLED"`
	Playouts        int     `mapstructure:"PLAYOUTS"`
	ConstTime       float64 `mapstructure:"CONST_TIME"`
	LogLevel        string  `mapstructure:"LOG_LEVEL"`
	SearchSeed      int64   `mapstructure:"SEARCH_SEED"`
	ExpandThreshold int     `mapstructure:"EXPAND_THRESHOLD"`
	EvalThreshold   int     `mapstructure:"EVAL_THRESHOLD"`
	MaxNodes        int     `mapstructure:"MAX_NODES"`
	RedisUrl        string  `mapstructure:"REDIS_URL"`
	MongoUri        string  `mapstructure:"MONGO_URI"`
	MongoDatabase   string  `mapstructure:"MONGO_DATABASE"`
	ArchiveTTLHours int     `mapstructure:"ARCHIVE_TTL_HOURS"`
	MaxLineBytes    int     `mapstructure:"MAX_LINE_BYTES"`
}

var defaults = map[string]any{
	"SERVER_PORT":         ":8080",
	"GRPC_PORT":           ":8082",
	"GRPC_ADDR":           "",
	"RPC_TIMEOUT_SECONDS": 0,
	"BOARD_SIZE":          19,
	"KOMI":                6.5,
	"VALUE_SCALE":         0.5,
	"WARNINGS_ENABLED":    false,
	"PLAYOUTS":            1000,
	"CONST_TIME":          0.0,
	"LOG_LEVEL":           "info",
	"SEARCH_SEED":         0,
	"EXPAND_THRESHOLD":    2,
	"EVAL_THRESHOLD":      1,
	"MAX_NODES":           1 << 15,
	"REDIS_URL":           "",
	"MONGO_URI":           "",
	"MONGO_DATABASE":      "ray_analysis",
	"ARCHIVE_TTL_HOURS":   24,
	"MAX_LINE_BYTES":      16 << 20,
}

// Setup reads cfgPath (an env style file) on top of the defaults; the
// environment overrides both. A missing file is not an error.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", cfgPath, err)
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

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func (c *Config) Validate() error {
	switch {
	case c.BoardSize < 2 || c.BoardSize > 25:
		return fmt.Errorf("BOARD_SIZE must be within [2, 25], got %d", c.BoardSize)
	case c.Playouts < 1:
		return fmt.Errorf("PLAYOUTS must be positive, got %d", c.Playouts)
	case c.ConstTime < 0:
		return fmt.Errorf("CONST_TIME must not be negative, got %v", c.ConstTime)
	case c.ValueScale < 0:
		return fmt.Errorf("VALUE_SCALE must not be negative, got %v", c.ValueScale)
	case c.RPCTimeoutSecs < 0:
		return fmt.Errorf("RPC_TIMEOUT_SECONDS must not be negative, got %d", c.RPCTimeoutSecs)
	case c.MaxLineBytes < 1:
		return fmt.Errorf("MAX_LINE_BYTES must be positive, got %d", c.MaxLineBytes)
	}
	return nil
}

// NewLogger builds a production logger writing to stderr; stdout belongs to
// the protocol.
func NewLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
