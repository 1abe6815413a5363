/*
Package config loads engine configuration from the environment.

PURPOSE:
  Centralizes every tunable: listen address, database path, accounting
  timezone, split ratios, anomaly thresholds, and the undo window. A
  .env file in the working directory is loaded first when present;
  real environment variables win over .env values.

VALIDATION:
  Load fails fast on unparseable values, a timezone the host doesn't
  know, split ratios that don't sum to 1, or non-positive windows.
  A misconfigured engine records wrong money; refusing to start is
  the cheaper failure.

SEE ALSO:
  - ledger/ledger.go: Config consumed by the ledger service
  - cmd/server/main.go: Load call site
*/
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/warp/commission-engine/ledger"
)

// Config holds the full engine configuration.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string

	// DBPath is the SQLite database file, or ":memory:".
	DBPath string

	// Timezone is the accounting timezone for period resolution.
	Timezone *time.Location

	// Split is the validated two-party commission split.
	Split ledger.SplitPolicy

	// UndoWindow bounds how long after recording an entry can be undone.
	UndoWindow time.Duration

	// DuplicateWindow is the look-back for duplicate detection.
	DuplicateWindow time.Duration

	// ExtremeMultiplier flags entries above multiplier x period average.
	ExtremeMultiplier decimal.Decimal

	// BoundaryThreshold is minutes from local midnight that count as
	// "near the period boundary".
	BoundaryThreshold int

	// ZeroActivityDays is the inactivity horizon for the daily sweep.
	ZeroActivityDays int

	// PeriodLengthDays is the nominal period length used by stats.
	PeriodLengthDays int

	// StrictPeriodParse rejects malformed period text instead of
	// falling back to the current period.
	StrictPeriodParse bool

	// OwnerID is the always-authorized owner account.
	OwnerID ledger.UserID
}

// Load reads configuration from the environment, consulting a .env
// file when one exists.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may carry everything.
	_ = godotenv.Load()

	cfg := &Config{
		Addr:   envOr("ADDR", ":8080"),
		DBPath: envOr("DB_PATH", "./data/commission.db"),
	}

	tz := envOr("TIMEZONE", "Africa/Nairobi")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", tz, err)
	}
	cfg.Timezone = loc

	owner, err := envDecimal("SPLIT_OWNER", "0.5")
	if err != nil {
		return nil, err
	}
	partner, err := envDecimal("SPLIT_PARTNER", "0.5")
	if err != nil {
		return nil, err
	}
	cfg.Split, err = ledger.NewSplitPolicy(owner, partner)
	if err != nil {
		return nil, fmt.Errorf("split configuration: %w", err)
	}

	undoMin, err := envInt("UNDO_WINDOW_MINUTES", 5)
	if err != nil {
		return nil, err
	}
	if undoMin <= 0 {
		return nil, fmt.Errorf("UNDO_WINDOW_MINUTES must be positive, got %d", undoMin)
	}
	cfg.UndoWindow = time.Duration(undoMin) * time.Minute

	dupMin, err := envInt("DUPLICATE_WINDOW_MINUTES", 2)
	if err != nil {
		return nil, err
	}
	if dupMin <= 0 {
		return nil, fmt.Errorf("DUPLICATE_WINDOW_MINUTES must be positive, got %d", dupMin)
	}
	cfg.DuplicateWindow = time.Duration(dupMin) * time.Minute

	cfg.ExtremeMultiplier, err = envDecimal("EXTREME_MULTIPLIER", "2.0")
	if err != nil {
		return nil, err
	}
	if !cfg.ExtremeMultiplier.IsPositive() {
		return nil, fmt.Errorf("EXTREME_MULTIPLIER must be positive, got %s", cfg.ExtremeMultiplier)
	}

	if cfg.BoundaryThreshold, err = envInt("BOUNDARY_THRESHOLD_MINUTES", 5); err != nil {
		return nil, err
	}
	if cfg.ZeroActivityDays, err = envInt("ZERO_ACTIVITY_DAYS", 7); err != nil {
		return nil, err
	}
	if cfg.PeriodLengthDays, err = envInt("PERIOD_LENGTH_DAYS", 30); err != nil {
		return nil, err
	}
	if cfg.PeriodLengthDays <= 0 {
		return nil, fmt.Errorf("PERIOD_LENGTH_DAYS must be positive, got %d", cfg.PeriodLengthDays)
	}

	if cfg.StrictPeriodParse, err = envBool("STRICT_PERIOD_PARSE", false); err != nil {
		return nil, err
	}

	ownerID, err := envInt64("OWNER_USER_ID", 0)
	if err != nil {
		return nil, err
	}
	if ownerID == 0 {
		return nil, fmt.Errorf("OWNER_USER_ID is required")
	}
	cfg.OwnerID = ledger.UserID(ownerID)

	return cfg, nil
}

// LedgerConfig builds the ledger service configuration.
func (c *Config) LedgerConfig() ledger.Config {
	return ledger.Config{
		Split: c.Split,
		Resolver: ledger.Resolver{
			Location:          c.Timezone,
			BoundaryThreshold: c.BoundaryThreshold,
			Strict:            c.StrictPeriodParse,
		},
		UndoWindow:        c.UndoWindow,
		DuplicateWindow:   c.DuplicateWindow,
		ExtremeMultiplier: c.ExtremeMultiplier,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, v, err)
	}
	return n, nil
}

func envInt64(key string, fallback int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", key, v, err)
	}
	return n, nil
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s %q: %w", key, v, err)
	}
	return b, nil
}

func envDecimal(key, fallback string) (decimal.Decimal, error) {
	v := os.Getenv(key)
	if v == "" {
		v = fallback
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s %q: %w", key, v, err)
	}
	return d, nil
}
