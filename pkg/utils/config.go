package utils

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Provider ProviderConfig
	Fees     FeesConfig
	Payout   PayoutConfig
	API      APIConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type ProviderConfig struct {
	ACHBaseURL   string
	ACHAPIKey    string
	WalletRPCURL string
	WalletHotKey string
	Timeout      time.Duration
}

type FeesConfig struct {
	WalletPercent     float64
	WalletNetworkCost float64
	WireFlatFee       float64
}

type PayoutConfig struct {
	RetryLimit   int
	BatchWorkers int
}

type APIConfig struct {
	AdminKey string
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("PROVIDER_TIMEOUT_SECONDS", 15)
	viper.SetDefault("FEE_WALLET_PERCENT", 0.01)
	viper.SetDefault("FEE_WALLET_NETWORK_COST", 0.50)
	viper.SetDefault("FEE_WIRE_FLAT", 25.00)
	viper.SetDefault("PAYOUT_RETRY_LIMIT", 3)
	viper.SetDefault("PAYOUT_BATCH_WORKERS", 5)

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Provider: ProviderConfig{
			ACHBaseURL:   viper.GetString("ACH_BASE_URL"),
			ACHAPIKey:    viper.GetString("ACH_API_KEY"),
			WalletRPCURL: viper.GetString("WALLET_RPC_URL"),
			WalletHotKey: viper.GetString("WALLET_HOT_KEY"),
			Timeout:      time.Duration(viper.GetInt("PROVIDER_TIMEOUT_SECONDS")) * time.Second,
		},
		Fees: FeesConfig{
			WalletPercent:     viper.GetFloat64("FEE_WALLET_PERCENT"),
			WalletNetworkCost: viper.GetFloat64("FEE_WALLET_NETWORK_COST"),
			WireFlatFee:       viper.GetFloat64("FEE_WIRE_FLAT"),
		},
		Payout: PayoutConfig{
			RetryLimit:   viper.GetInt("PAYOUT_RETRY_LIMIT"),
			BatchWorkers: viper.GetInt("PAYOUT_BATCH_WORKERS"),
		},
		API: APIConfig{
			AdminKey: viper.GetString("ADMIN_API_KEY"),
		},
	}

	return config, nil
}
