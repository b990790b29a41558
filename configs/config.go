package configs

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/nuwanperera/corebank/pkg/utils"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type Config struct {
	Port          string `mapstructure:"PORT" validate:"required"`
	PrimaryDbAddr string `mapstructure:"PRIMARY_DB_ADDR" validate:"required"`
	ReplicaDbAddr string `mapstructure:"REPLICA_DB_ADDR"`
	MaxDbCons     int32  `mapstructure:"MAX_DB_CONNECTIONS" validate:"min=1"`
	MinDbCons     int32  `mapstructure:"MIN_DB_CONNECTIONS" validate:"min=1"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR" validate:"required"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB"`
	SessionTTL    time.Duration `mapstructure:"SESSION_TTL" validate:"required"`

	// LockTimeout bounds how long a ledger transaction waits for a row lock
	// before failing with Busy.
	LockTimeout time.Duration `mapstructure:"LOCK_TIMEOUT" validate:"required"`

	// TransferCreditDestination enables crediting the destination account of
	// a transfer. Off by default: the observed behavior is debit-only.
	TransferCreditDestination bool `mapstructure:"TRANSFER_CREDIT_DESTINATION"`
	// EnforceFrozenAccounts rejects debits and credits on frozen accounts.
	EnforceFrozenAccounts bool `mapstructure:"ENFORCE_FROZEN_ACCOUNTS"`

	KafkaBrokers     string `mapstructure:"KAFKA_BROKERS"`
	KafkaLedgerTopic string `mapstructure:"KAFKA_LEDGER_TOPIC"`

	AesKey string `mapstructure:"AES_KEY" validate:"required"`

	AuthRatePerMin int `mapstructure:"AUTH_RATE_PER_MIN"`
	AuthRateBurst  int `mapstructure:"AUTH_RATE_BURST"`
}

func Load(logger *zap.Logger) (*Config, error) {
	viper.SetEnvPrefix("app") // Prefix for env vars
	viper.AutomaticEnv()

	// Default values
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("MAX_DB_CONNECTIONS", "10")
	viper.SetDefault("MIN_DB_CONNECTIONS", "2")
	viper.SetDefault("SESSION_TTL", "24h")
	viper.SetDefault("LOCK_TIMEOUT", "5s")
	viper.SetDefault("ENFORCE_FROZEN_ACCOUNTS", "true")
	viper.SetDefault("KAFKA_LEDGER_TOPIC", "corebank.ledger.events")
	viper.SetDefault("AUTH_RATE_PER_MIN", "60")
	viper.SetDefault("AUTH_RATE_BURST", "120")

	// Optional: Read from config.yaml if exists
	if gin.ReleaseMode == gin.Mode() {
		viper.SetConfigName("config.prod")
	} else if gin.TestMode == gin.Mode() {
		logger.Warn("running in test mode")
		viper.SetConfigName("config.test")
	} else {
		logger.Warn("running in development mode")
		viper.SetConfigName("config.dev")
	}
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	_ = viper.ReadInConfig() // Ignore if no file

	var cfg Config
	if err := utils.ParseStructEnv(&cfg); err != nil {
		return nil, err
	}
	// Validate after unmarshal
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}
