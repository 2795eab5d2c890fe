package config

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/viper"

	bc "github.com/launchlab/bondingcurve-go/bonding_curve"
	curvemath "github.com/launchlab/bondingcurve-go/bonding_curve/math"
)

// Config holds the platform parameters loaded from a YAML/TOML/JSON file.
// Amounts are lamports; the fee is basis points.
type Config struct {
	Authority    string `mapstructure:"authority"`
	FeeRecipient string `mapstructure:"fee_recipient"`

	FeeBasisPoints      uint16 `mapstructure:"fee_basis_points"`
	GraduationThreshold uint64 `mapstructure:"graduation_threshold"`
	MinBuyAmount        uint64 `mapstructure:"min_buy_amount"`
	MaxBuyAmount        uint64 `mapstructure:"max_buy_amount"`

	InitialVirtualTokenReserves uint64 `mapstructure:"initial_virtual_token_reserves"`
	InitialVirtualSolReserves   uint64 `mapstructure:"initial_virtual_sol_reserves"`

	JournalPath     string `mapstructure:"journal_path"`
	EventBufferSize int    `mapstructure:"event_buffer_size"`
	DebugLogging    bool   `mapstructure:"debug_logging"`
}

const DefaultEventBufferSize = 256

// Load reads the configuration file at path and applies defaults for any
// parameter it leaves unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	defaults := map[string]interface{}{
		"fee_basis_points":               bc.DefaultFeeBasisPoints,
		"graduation_threshold":           bc.DefaultGraduationThreshold,
		"initial_virtual_token_reserves": bc.DefaultVirtualTokenReserves,
		"initial_virtual_sol_reserves":   bc.DefaultVirtualSolReserves,
		"event_buffer_size":              DefaultEventBufferSize,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, validate(&cfg)
}

func validate(cfg *Config) error {
	if cfg.Authority == "" {
		return errors.New("missing authority in configuration")
	}
	if cfg.FeeRecipient == "" {
		return errors.New("missing fee_recipient in configuration")
	}
	if _, err := solana.PublicKeyFromBase58(cfg.Authority); err != nil {
		return fmt.Errorf("invalid authority: %w", err)
	}
	if _, err := solana.PublicKeyFromBase58(cfg.FeeRecipient); err != nil {
		return fmt.Errorf("invalid fee_recipient: %w", err)
	}
	if cfg.FeeBasisPoints > curvemath.MaxFeeBasisPoint {
		return fmt.Errorf("fee_basis_points %d exceeds maximum %d", cfg.FeeBasisPoints, curvemath.MaxFeeBasisPoint)
	}
	if cfg.GraduationThreshold == 0 {
		return errors.New("graduation_threshold must be positive")
	}
	if cfg.InitialVirtualTokenReserves == 0 || cfg.InitialVirtualSolReserves == 0 {
		return errors.New("initial virtual reserves must be positive")
	}
	if cfg.MaxBuyAmount != 0 && cfg.MinBuyAmount > cfg.MaxBuyAmount {
		return errors.New("min_buy_amount exceeds max_buy_amount")
	}
	if cfg.EventBufferSize <= 0 {
		return errors.New("event_buffer_size must be positive")
	}
	return nil
}

// ToPlatformConfig converts the loaded file into the engine's platform
// configuration. Validate has already checked the pubkeys parse.
func (c *Config) ToPlatformConfig() (bc.PlatformConfig, error) {
	authority, err := solana.PublicKeyFromBase58(c.Authority)
	if err != nil {
		return bc.PlatformConfig{}, fmt.Errorf("invalid authority: %w", err)
	}
	feeRecipient, err := solana.PublicKeyFromBase58(c.FeeRecipient)
	if err != nil {
		return bc.PlatformConfig{}, fmt.Errorf("invalid fee_recipient: %w", err)
	}
	return bc.PlatformConfig{
		Authority:                   authority,
		FeeRecipient:                feeRecipient,
		FeeBasisPoints:              c.FeeBasisPoints,
		GraduationThreshold:         c.GraduationThreshold,
		MinBuyAmount:                c.MinBuyAmount,
		MaxBuyAmount:                c.MaxBuyAmount,
		InitialVirtualTokenReserves: c.InitialVirtualTokenReserves,
		InitialVirtualSolReserves:   c.InitialVirtualSolReserves,
	}, nil
}
