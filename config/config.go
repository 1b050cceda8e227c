package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Host  string
	Port  string
	Store string

	Database Database
	Game     Game

	LedgerAuditInterval time.Duration
	MetricsEnabled      bool
}

type Database struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

type Game struct {
	InitialFunds   decimal.Decimal
	SessionMaxBets int
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Host:  getenv("HOST", "127.0.0.1"),
		Port:  getenv("PORT", "3000"),
		Store: strings.ToLower(getenv("STORE", StorePostgres)),
		Database: Database{
			Host:     getenv("DB_HOST", "localhost"),
			Port:     getenv("DB_PORT", "5432"),
			User:     getenv("DB_USER", "postgres"),
			Password: os.Getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME", "wintoday"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
		},
	}

	var err error
	if cfg.Database.AutoMigrate, err = getbool("DB_AUTO_MIGRATE", false); err != nil {
		return nil, err
	}
	if cfg.MetricsEnabled, err = getbool("METRICS_ENABLED", true); err != nil {
		return nil, err
	}

	funds, err := decimal.NewFromString(getenv("INITIAL_FUNDS", "100.00"))
	if err != nil {
		return nil, fmt.Errorf("invalid INITIAL_FUNDS: %w", err)
	}
	if funds.IsNegative() || !funds.Equal(funds.Truncate(2)) {
		return nil, fmt.Errorf("invalid INITIAL_FUNDS: %s", funds)
	}
	cfg.Game.InitialFunds = funds

	maxBets, err := strconv.Atoi(getenv("SESSION_MAX_BETS", "500"))
	if err != nil || maxBets < 1 {
		return nil, fmt.Errorf("invalid SESSION_MAX_BETS: %q", os.Getenv("SESSION_MAX_BETS"))
	}
	cfg.Game.SessionMaxBets = maxBets

	audit := getenv("LEDGER_AUDIT_INTERVAL", "0")
	if audit != "0" {
		if cfg.LedgerAuditInterval, err = time.ParseDuration(audit); err != nil {
			return nil, fmt.Errorf("invalid LEDGER_AUDIT_INTERVAL: %w", err)
		}
	}

	switch cfg.Store {
	case StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("unsupported STORE %q", cfg.Store)
	}
	return cfg, nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid value for %s: %s", key, v)
	}
	return b, nil
}
