package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	MySQL    MySQLConfig    `mapstructure:"mysql"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Strategy StrategyConfig `mapstructure:"strategy"`
	Auction  AuctionConfig  `mapstructure:"auction"`
	Leader   LeaderConfig   `mapstructure:"leader"`
	Instance InstanceConfig `mapstructure:"instance"`
}

type MySQLConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// StrategyConfig selects and tunes the concurrency-control strategies.
type StrategyConfig struct {
	Default          string        `mapstructure:"default"`
	TryLockTimeout   time.Duration `mapstructure:"trylock_timeout"`
	SemaphoreTimeout time.Duration `mapstructure:"semaphore_timeout"`
	LockLease        time.Duration `mapstructure:"lock_lease"`
	LockWait         time.Duration `mapstructure:"lock_wait"`
}

type AuctionConfig struct {
	PriceFloor      int64         `mapstructure:"price_floor"`
	ExtensionWindow time.Duration `mapstructure:"extension_window"`
}

type LeaderConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

type InstanceConfig struct {
	ID string `mapstructure:"id"`
}

func Load() (*Config, error) {
	viper.SetDefault("mysql.dsn", "auction_user:auction_pass@tcp(localhost:3306)/auction_db?parseTime=true")
	viper.SetDefault("mysql.max_open_conns", 25)
	viper.SetDefault("mysql.max_idle_conns", 10)
	viper.SetDefault("mysql.conn_max_lifetime", 5*time.Minute)
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("strategy.default", "distributed")
	viper.SetDefault("strategy.trylock_timeout", 100*time.Millisecond)
	viper.SetDefault("strategy.semaphore_timeout", 500*time.Millisecond)
	viper.SetDefault("strategy.lock_lease", 5*time.Second)
	viper.SetDefault("strategy.lock_wait", time.Second)
	viper.SetDefault("auction.price_floor", 100)
	viper.SetDefault("auction.extension_window", 30*time.Second)
	viper.SetDefault("leader.ttl", 30*time.Second)
	viper.SetDefault("instance.id", "auction-engine-1")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/auction-engine/")

	viper.AutomaticEnv()

	viper.BindEnv("mysql.dsn", "MYSQL_DSN")
	viper.BindEnv("mysql.max_open_conns", "MYSQL_MAX_OPEN_CONNS")
	viper.BindEnv("mysql.max_idle_conns", "MYSQL_MAX_IDLE_CONNS")
	viper.BindEnv("mysql.conn_max_lifetime", "MYSQL_CONN_MAX_LIFETIME")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("redis.db", "REDIS_DB")
	viper.BindEnv("strategy.default", "STRATEGY_DEFAULT")
	viper.BindEnv("strategy.trylock_timeout", "STRATEGY_TRYLOCK_TIMEOUT")
	viper.BindEnv("strategy.semaphore_timeout", "STRATEGY_SEMAPHORE_TIMEOUT")
	viper.BindEnv("strategy.lock_lease", "STRATEGY_LOCK_LEASE")
	viper.BindEnv("strategy.lock_wait", "STRATEGY_LOCK_WAIT")
	viper.BindEnv("auction.price_floor", "AUCTION_PRICE_FLOOR")
	viper.BindEnv("auction.extension_window", "AUCTION_EXTENSION_WINDOW")
	viper.BindEnv("leader.ttl", "LEADER_TTL")
	viper.BindEnv("instance.id", "INSTANCE_ID")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file; defaults and environment variables apply.
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
