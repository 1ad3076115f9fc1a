// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	"github.com/rovshanmuradov/solana-router/internal/processor"
	"github.com/rovshanmuradov/solana-router/internal/utils/logger"
)

type Config struct {
	ProgramID           string `mapstructure:"program_id"`
	TokenProgramID      string `mapstructure:"token_program_id"`
	UnknownDexPolicy    string `mapstructure:"unknown_dex_policy"`
	StrictTrailingBytes bool   `mapstructure:"strict_trailing_bytes"`
	RPCURL              string `mapstructure:"rpc_url"`
	RPCRetries          int    `mapstructure:"rpc_retries"`
	RPCRetryDelayMs     int    `mapstructure:"rpc_retry_delay_ms"`
	LogFile             string `mapstructure:"log_file"`
	DebugLogging        bool   `mapstructure:"debug_logging"`
	MetricsEnabled      bool   `mapstructure:"metrics_enabled"`
}

const (
	EnvPrefix = "SOLANA_ROUTER"

	DefaultUnknownDexPolicy = string(processor.PolicySkip)
	DefaultRPCRetries       = 3
	DefaultRPCRetryDelayMs  = 500
	DefaultLogFile          = "router.log"
)

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"program_id":            "",
		"token_program_id":      solana.TokenProgramID.String(),
		"unknown_dex_policy":    DefaultUnknownDexPolicy,
		"strict_trailing_bytes": false,
		"rpc_url":               "",
		"rpc_retries":           DefaultRPCRetries,
		"rpc_retry_delay_ms":    DefaultRPCRetryDelayMs,
		"log_file":              DefaultLogFile,
		"debug_logging":         false,
		"metrics_enabled":       false,
	}
}

// LoadConfig reads path (when not empty), applies defaults and SOLANA_ROUTER_*
// environment overrides, and validates the result.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	loadEnvironmentVariables(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	if cfg.ProgramID != "" {
		if _, err := solana.PublicKeyFromBase58(cfg.ProgramID); err != nil {
			return fmt.Errorf("invalid program_id: %w", err)
		}
	}
	if _, err := solana.PublicKeyFromBase58(cfg.TokenProgramID); err != nil {
		return fmt.Errorf("invalid token_program_id: %w", err)
	}
	if _, err := processor.ParseUnknownDexPolicy(cfg.UnknownDexPolicy); err != nil {
		return err
	}
	if cfg.RPCURL != "" {
		if err := validateURLWithCache(cfg.RPCURL, "http"); err != nil {
			return errors.New("invalid RPC URL protocol")
		}
	}
	return validateNumericParams(cfg)
}

func validateNumericParams(cfg *Config) error {
	if cfg.RPCRetries < 0 {
		return errors.New("invalid rpc_retries count")
	}
	if cfg.RPCRetryDelayMs <= 0 {
		return errors.New("invalid rpc_retry_delay_ms")
	}
	return nil
}

var urlCache sync.Map

func validateURLWithCache(rawURL string, protocol string) error {
	if _, ok := urlCache.Load(rawURL); ok {
		return nil
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, protocol) {
		return errors.New("invalid URL protocol")
	}
	urlCache.Store(rawURL, parsed)
	return nil
}

func loadEnvironmentVariables(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// ProgramKey returns the router program id, or an error when it is not set.
func (c *Config) ProgramKey() (solana.PublicKey, error) {
	if c.ProgramID == "" {
		return solana.PublicKey{}, errors.New("program_id is not configured")
	}
	return solana.PublicKeyFromBase58(c.ProgramID)
}

func (c *Config) TokenProgramKey() solana.PublicKey {
	return solana.MustPublicKeyFromBase58(c.TokenProgramID)
}

func (c *Config) Policy() processor.UnknownDexPolicy {
	return processor.UnknownDexPolicy(c.UnknownDexPolicy)
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.RPCRetryDelayMs) * time.Millisecond
}

// ProcessorOptions maps the router settings onto processor options.
func (c *Config) ProcessorOptions() []processor.Option {
	return []processor.Option{
		processor.WithUnknownDexPolicy(c.Policy()),
		processor.WithStrictDecode(c.StrictTrailingBytes),
	}
}

// LoggerConfig derives the logger settings.
func (c *Config) LoggerConfig() *logger.Config {
	lc := logger.DefaultConfig()
	lc.LogFile = c.LogFile
	lc.Development = c.DebugLogging
	return lc
}
