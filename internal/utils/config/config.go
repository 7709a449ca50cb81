package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/chrisjgf/ez-stablecoin/internal/types/environments"
	"github.com/chrisjgf/ez-stablecoin/internal/utils/vault"
)

type AppConfig struct {
	Environment environments.Environment
	ApiServer   ApiServerConfig
	Postgres    DBConnection
	Kraken      KrakenConfig
	Blockchain  BlockchainConfig
	Pipeline    PipelineConfig
}

type ApiServerConfig struct {
	Port           string
	AllowedOrigins string
}

type DBConnection struct {
	Host string
	Port string
	User string
	Name string
	Pass string

	SSLMode string
}

type KrakenConfig struct {
	APIKey    string
	APISecret string
	APIURL    string

	// Name of the withdrawal key pre-registered on Kraken for the
	// intermediary Optimism address.
	WithdrawalKey string
}

type BlockchainConfig struct {
	OptimismRPCEndpoint string
	BaseRPCEndpoint     string

	// Hex private key of the intermediary wallet. It holds gas on both
	// Optimism and Base and receives the exchange withdrawal.
	WalletPrivateKey string

	RecipientAddress string

	AcrossAPIURL       string
	AcrossSpokePoolOpt string
}

type PipelineConfig struct {
	StatusAPIURL string

	DepositPollInterval time.Duration
	BalancePollInterval time.Duration
	OrderPollInterval   time.Duration
	OrderMaxAttempts    int

	UptimeWebhookURL string
}

func New() *AppConfig {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// this will not override env variables if they already exist
	godotenv.Load(".env." + env)

	cfg := &AppConfig{
		Environment: environments.Environment(env),
		ApiServer: ApiServerConfig{
			Port:           envVarOrDefault("API_SERVER_PORT", "3030"),
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
		},
		Postgres: DBConnection{
			Host:    os.Getenv("DB_HOST"),
			Port:    os.Getenv("DB_PORT"),
			User:    os.Getenv("DB_USER"),
			Name:    os.Getenv("DB_NAME"),
			Pass:    os.Getenv("DB_PASS"),
			SSLMode: os.Getenv("DB_SSL_MODE"),
		},
		Kraken: KrakenConfig{
			APIKey:        os.Getenv("KRAKEN_API_KEY"),
			APISecret:     os.Getenv("KRAKEN_API_SECRET"),
			APIURL:        envVarOrDefault("KRAKEN_API_URL", "https://api.kraken.com"),
			WithdrawalKey: envVarOrDefault("KRAKEN_WITHDRAWAL_KEY", "echo_intermediary_op"),
		},
		Blockchain: BlockchainConfig{
			OptimismRPCEndpoint: os.Getenv("BLOCKCHAIN_OPTIMISM_RPC_ENDPOINT"),
			BaseRPCEndpoint:     os.Getenv("BLOCKCHAIN_BASE_RPC_ENDPOINT"),
			WalletPrivateKey:    os.Getenv("BLOCKCHAIN_WALLET_PRIVATE_KEY"),
			RecipientAddress:    os.Getenv("BLOCKCHAIN_RECIPIENT_ADDRESS"),
			AcrossAPIURL:        envVarOrDefault("ACROSS_API_URL", "https://app.across.to"),
			AcrossSpokePoolOpt:  envVarOrDefault("ACROSS_SPOKE_POOL_OPTIMISM", "0x6f26Bf09B1C792e3228e5467807a900A503c0281"),
		},
		Pipeline: PipelineConfig{
			StatusAPIURL:        envVarOrDefault("STATUS_API_URL", "http://localhost:3030"),
			DepositPollInterval: envVarAsDuration("DEPOSIT_POLL_INTERVAL", 5*time.Second),
			BalancePollInterval: envVarAsDuration("BALANCE_POLL_INTERVAL", time.Minute),
			OrderPollInterval:   envVarAsDuration("ORDER_POLL_INTERVAL", 10*time.Second),
			OrderMaxAttempts:    envVarAsInt("ORDER_MAX_ATTEMPTS", 30),
			UptimeWebhookURL:    os.Getenv("UPTIME_WEBHOOK_URL"),
		},
	}

	loadVaultSecrets(cfg)

	return cfg
}

// loadVaultSecrets overlays hot secrets from Vault's KV store when a
// Vault address is configured. Env values win so local runs keep
// working without a Vault deployment.
func loadVaultSecrets(cfg *AppConfig) {
	vaultAddr := os.Getenv("VAULT_ADDR")
	if vaultAddr == "" {
		return
	}

	vc := vault.New(
		vaultAddr,
		envVarOrDefault("VAULT_KV_SECRET_PATH", "kv/data/ez-stablecoin"),
		envVarOrDefault("VAULT_ROLE", "ez-stablecoin"),
	)

	if cfg.Kraken.APISecret == "" {
		if secret, err := vc.GetKV("KRAKEN_API_SECRET"); err == nil {
			cfg.Kraken.APISecret = secret
		}
	}
	if cfg.Kraken.APIKey == "" {
		if key, err := vc.GetKV("KRAKEN_API_KEY"); err == nil {
			cfg.Kraken.APIKey = key
		}
	}
	if cfg.Blockchain.WalletPrivateKey == "" {
		if pk, err := vc.GetKV("BLOCKCHAIN_WALLET_PRIVATE_KEY"); err == nil {
			cfg.Blockchain.WalletPrivateKey = pk
		}
	}
}

func envVarOrDefault(envName, defaultValue string) string {
	value := os.Getenv(envName)
	if value == "" {
		return defaultValue
	}
	return value
}

func envVarAsInt(envName string, defaultValue int) int {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func envVarAsDuration(envName string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(envName)
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
