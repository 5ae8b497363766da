// Package config loads the wallet core's process configuration: storage
// backend selection, RPC listen addresses, default chain endpoints, and
// logging. Environment variables are decoded with envdecode, with an
// optional .env file loaded first via godotenv so local development does
// not need exported shell variables.
package config

import (
	"fmt"
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the top-level process configuration for cmd/walletd.
type Config struct {
	LogLevel  string `env:"WALLETD_LOG_LEVEL,default=info"`
	LogFormat string `env:"WALLETD_LOG_FORMAT,default=text"`

	// StorageBackend selects the storage.Store implementation: "mem"
	// (default, process lifetime only), "postgres" (sqlstore, durable),
	// or "redis" (redisstore, holding every namespace).
	StorageBackend string `env:"WALLETD_STORAGE_BACKEND,default=mem"`
	PostgresDSN    string `env:"WALLETD_POSTGRES_DSN"`
	RedisAddr      string `env:"WALLETD_REDIS_ADDR,default=127.0.0.1:6379"`
	RedisPassword  string `env:"WALLETD_REDIS_PASSWORD"`
	RedisDB        int    `env:"WALLETD_REDIS_DB,default=0"`

	RouterListenAddr  string `env:"WALLETD_ROUTER_ADDR,default=127.0.0.1:9393"`
	BridgeListenAddr  string `env:"WALLETD_BRIDGE_ADDR,default=127.0.0.1:9394"`
	BridgeJWTSecret   string `env:"WALLETD_BRIDGE_JWT_SECRET,default=dev-only-change-me"`
	AutoLockDuration  string `env:"WALLETD_AUTO_LOCK_DURATION,default=15m"`
	MetricsListenAddr string `env:"WALLETD_METRICS_ADDR,default=127.0.0.1:9395"`

	// VaultPBKDF2Iterations is the PBKDF2-SHA256 work factor for vault
	// key derivation, per spec.md §4.1.
	VaultPBKDF2Iterations int `env:"WALLETD_VAULT_PBKDF2_ITERATIONS,default=600000"`

	// HealthSweepCron is the robfig/cron/v3 expression driving the
	// periodic network-endpoint health sweep.
	HealthSweepCron string `env:"WALLETD_HEALTH_SWEEP_CRON,default=@every 1m"`

	Chains []ChainSeed `yaml:"chains"`
}

// ChainSeed describes a chain the registry is seeded with at startup, read
// from an optional chains.yaml alongside the environment-derived Config.
type ChainSeed struct {
	ChainRef string   `yaml:"chainRef"`
	Name     string   `yaml:"name"`
	Currency string   `yaml:"currency"`
	Decimals int      `yaml:"decimals"`
	RPCUrls  []string `yaml:"rpcUrls"`
}

// Load reads a .env file (if present, ignored if missing), decodes
// environment variables into a Config, and merges in a chain seed list
// from chainsPath if that file exists.
func Load(envFile, chainsPath string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("config: load env file: %w", err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode environment: %w", err)
	}

	if chainsPath != "" {
		seeds, err := loadChainSeeds(chainsPath)
		if err != nil {
			return nil, err
		}
		cfg.Chains = seeds
	}

	return &cfg, nil
}

func loadChainSeeds(path string) ([]ChainSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultChainSeeds(), nil
		}
		return nil, fmt.Errorf("config: read chains file: %w", err)
	}

	var doc struct {
		Chains []ChainSeed `yaml:"chains"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("config: parse chains file: %w", err)
	}
	return doc.Chains, nil
}

// DefaultChainSeeds is used when no chains.yaml is present: Ethereum
// mainnet alone, enough for the bridge and dApp-facing RPC surface to
// come up with an active chain.
func DefaultChainSeeds() []ChainSeed {
	return []ChainSeed{
		{
			ChainRef: "eip155:1",
			Name:     "Ethereum Mainnet",
			Currency: "ETH",
			Decimals: 18,
			RPCUrls:  []string{"https://cloudflare-eth.com"},
		},
	}
}
